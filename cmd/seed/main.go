// cmd/seed/main.go
//
// Seeds a development database with a program catalog so the checkout
// and enrollment flows have something to book against.
package main

import (
	"context"
	"log/slog"
	"os"

	"skillpadi/internal/config"
	"skillpadi/internal/database"
	"skillpadi/internal/program"
	"skillpadi/pkg/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.AppEnv)

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}

	programs := program.NewService(program.NewPostgresStore(db))
	seedPrograms := []*program.Program{
		{
			Name:            "Saturday Coding Club",
			Schedule:        "Saturdays 10am-12pm",
			Location:        "Lekki Phase 1",
			PricePerSession: 5000,
			Sessions:        8,
			SpotsTotal:      15,
		},
		{
			Name:            "Robotics Foundations",
			Schedule:        "Sundays 2pm-4pm",
			Location:        "Yaba",
			PricePerSession: 7500,
			Sessions:        6,
			SpotsTotal:      10,
		},
		{
			Name:            "Scratch for Beginners",
			Schedule:        "Wednesdays 4pm-5:30pm",
			Location:        "Online",
			PricePerSession: 3000,
			Sessions:        10,
			SpotsTotal:      25,
		},
	}

	for _, p := range seedPrograms {
		created, err := programs.Create(ctx, p)
		if err != nil {
			logger.Error("seed program", "name", p.Name, "error", err)
			os.Exit(1)
		}
		logger.Info("seeded program", "id", created.ID, "name", created.Name, "spots", created.SpotsTotal)
	}
	logger.Info("seed complete", "programs", len(seedPrograms))
}
