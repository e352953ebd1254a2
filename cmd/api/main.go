// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"skillpadi/internal/api"
	"skillpadi/internal/audit"
	"skillpadi/internal/auth"
	"skillpadi/internal/config"
	"skillpadi/internal/database"
	"skillpadi/internal/enquiry"
	"skillpadi/internal/enrollment"
	"skillpadi/internal/fulfillment"
	"skillpadi/internal/notify"
	"skillpadi/internal/payment"
	"skillpadi/internal/paystack"
	"skillpadi/internal/program"
	"skillpadi/internal/ratelimit"
	"skillpadi/internal/shop"
	"skillpadi/internal/users"
	"skillpadi/pkg/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.AppEnv)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTLPEndpoint, "skillpadi")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("shutdown tracing", "error", err)
		}
	}()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	// Stores.
	programStore := program.NewPostgresStore(db)
	userStore := users.NewPostgresStore(db)
	enrollmentStore := enrollment.NewPostgresStore(db)
	paymentStore := payment.NewPostgresStore(db)
	orderStore := shop.NewPostgresStore(db)
	enquiryStore := enquiry.NewPostgresStore(db)
	recorder := audit.NewPostgresRecorder(db)

	// Notification pipeline.
	var sinks []notify.Sink
	if cfg.HasWhatsApp() {
		sinks = append(sinks, notify.NewWhatsAppSink(cfg.WhatsAppToken, cfg.WhatsAppPhoneNumberID))
	}
	var amqpSink *notify.AMQPSink
	if cfg.RabbitMQURL != "" {
		amqpSink, err = notify.NewAMQPSink(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return err
		}
		defer amqpSink.Close()
		sinks = append(sinks, amqpSink)
	}
	dispatcher := notify.NewDispatcher(256, 2, logger, sinks...)
	defer dispatcher.Close()
	notifier := notify.NewService(userStore, dispatcher, logger)

	// Services.
	programs := program.NewService(programStore)
	enrollments := enrollment.NewService(enrollmentStore, programs, notifier, logger)
	materializer := fulfillment.NewMaterializer(
		programs, enrollmentStore, userStore, orderStore, recorder, notifier, logger)
	gateway := paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey)
	payments := payment.NewService(
		paymentStore, programs, gateway, materializer, notifier, cfg.AppURL, logger)

	// Rate limiters, shared across instances when Redis is configured.
	var checkoutLimiter, publicLimiter ratelimit.Limiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		client := redis.NewClient(opts)
		defer client.Close()
		checkoutLimiter = ratelimit.NewRedisLimiter(client, "rl:checkout", cfg.CheckoutRateMax, cfg.CheckoutRateWindow)
		publicLimiter = ratelimit.NewRedisLimiter(client, "rl:public", cfg.PublicRateMax, cfg.PublicRateWindow)
	} else {
		checkoutLimiter = ratelimit.NewMemoryLimiter(cfg.CheckoutRateMax, cfg.CheckoutRateWindow)
		publicLimiter = ratelimit.NewMemoryLimiter(cfg.PublicRateMax, cfg.PublicRateWindow)
	}

	tokens, err := auth.ParseStaticTokens(cfg.AuthTokens)
	if err != nil {
		return err
	}
	verifier := auth.NewStaticVerifier(tokens)

	// Handlers.
	programHandler := program.NewHandler(programs, logger)
	enrollmentHandler := enrollment.NewHandler(enrollments, logger)
	paymentHandler := payment.NewHandler(payments, cfg.PaystackSecretKey, recorder, logger)
	userHandler := users.NewHandler(userStore, logger)
	orderHandler := shop.NewHandler(orderStore, logger)
	enquiryHandler := enquiry.NewHandler(enquiryStore, logger)

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(api.RequestLogger(logger))

	router.Get("/healthz", observability.HealthHandler(db))

	router.Route("/api/v1", func(r chi.Router) {
		// Unauthenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(ratelimit.Middleware(publicLimiter, logger))
			r.Get("/programs", programHandler.HandleList)
			r.Get("/programs/{id}", programHandler.HandleGet)
			r.Post("/enquiries", enquiryHandler.HandleCreate)
		})

		// Gateway push; authenticated by signature, not bearer token.
		r.Post("/payments/webhook", paymentHandler.HandleWebhook)

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(verifier))
			r.Use(profileSync(userStore, logger))

			r.With(ratelimit.Middleware(checkoutLimiter, logger)).
				Post("/payments/checkout", paymentHandler.HandleCheckout)
			r.Get("/payments/verify", paymentHandler.HandleVerify)

			r.Post("/enrollments", enrollmentHandler.HandleEnroll)
			r.Get("/enrollments", enrollmentHandler.HandleList)
			r.Get("/shop/orders", orderHandler.HandleListOrders)
			r.Get("/users/me", userHandler.HandleMe)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole("admin"))
				r.Post("/programs", programHandler.HandleCreate)
				r.Delete("/programs/{id}", programHandler.HandleDeactivate)
				r.Post("/payments/{reference}/refund", paymentHandler.HandleRefund)
			})
		})
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// profileSync keeps a profile row current for every authenticated
// caller so settlement notifications have somewhere to look up a phone
// number. Failures never block the request.
func profileSync(store users.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := auth.FromContext(r.Context()); ok {
				u := &users.User{ID: p.ID, Email: p.Email, Phone: p.Phone, Role: p.Role}
				if err := store.Upsert(r.Context(), u); err != nil {
					logger.Warn("profile sync failed", "user_id", p.ID, "error", err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
