// internal/notify/whatsapp.go
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const whatsappBaseURL = "https://graph.facebook.com/v18.0"

// WhatsAppSink sends text messages through the WhatsApp Cloud API. A
// token-bucket limiter keeps bursts under the platform's messaging
// throughput cap.
type WhatsAppSink struct {
	token         string
	phoneNumberID string
	httpc         *http.Client
	limiter       *rate.Limiter
}

func NewWhatsAppSink(token, phoneNumberID string) *WhatsAppSink {
	return &WhatsAppSink{
		token:         token,
		phoneNumberID: phoneNumberID,
		httpc:         &http.Client{Timeout: 10 * time.Second},
		limiter:       rate.NewLimiter(rate.Limit(5), 10),
	}
}

func (s *WhatsAppSink) Send(ctx context.Context, msg Message) error {
	if msg.Phone == "" {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                normalizePhone(msg.Phone),
		"type":              "text",
		"text":              map[string]string{"body": msg.Text},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", whatsappBaseURL, s.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp send: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// normalizePhone rewrites local Nigerian numbers (0803...) to the
// international form (234803...) the API expects.
func normalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	p := digits.String()
	if strings.HasPrefix(p, "0") {
		return "234" + p[1:]
	}
	return p
}
