// internal/payment/handler_test.go
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"skillpadi/internal/audit"
	"skillpadi/internal/auth"
)

const testWebhookSecret = "sk_test_webhook_secret"

type stubService struct {
	Service
	webhookCalls atomic.Int64
	lastEvent    WebhookEvent
}

func (s *stubService) HandleWebhookEvent(_ context.Context, event WebhookEvent) error {
	s.webhookCalls.Add(1)
	s.lastEvent = event
	return nil
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, h *Handler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("x-paystack-signature", signature)
	}
	rr := httptest.NewRecorder()
	h.HandleWebhook(rr, req)
	return rr
}

func requireAck(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code)
	var ack map[string]bool
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ack))
	require.True(t, ack["received"])
}

func TestWebhookValidSignatureSettles(t *testing.T) {
	svc := &stubService{}
	recorder := audit.NewMemoryRecorder()
	h := NewHandler(svc, testWebhookSecret, recorder, slog.Default())

	body, err := json.Marshal(WebhookEvent{
		Event: "charge.success",
		Data:  WebhookData{ID: 1, Reference: "CHK_ABC_1234", Status: "success"},
	})
	require.NoError(t, err)

	rr := postWebhook(t, h, body, sign(testWebhookSecret, body))
	requireAck(t, rr)
	require.EqualValues(t, 1, svc.webhookCalls.Load())
	require.Equal(t, "CHK_ABC_1234", svc.lastEvent.Data.Reference)
	require.Empty(t, recorder.Events())
}

func TestWebhookBadSignatureAcksWithoutSettling(t *testing.T) {
	svc := &stubService{}
	recorder := audit.NewMemoryRecorder()
	h := NewHandler(svc, testWebhookSecret, recorder, slog.Default())

	body := []byte(`{"event":"charge.success","data":{"reference":"CHK_ABC_1234"}}`)

	// Wrong key, tampered body, missing header: all acked, none settle.
	rr := postWebhook(t, h, body, sign("wrong_secret", body))
	requireAck(t, rr)
	rr = postWebhook(t, h, body, sign(testWebhookSecret, []byte(`{"tampered":true}`)))
	requireAck(t, rr)
	rr = postWebhook(t, h, body, "")
	requireAck(t, rr)

	require.EqualValues(t, 0, svc.webhookCalls.Load())
	require.Len(t, recorder.ByKind(audit.KindWebhookBadSignature), 3)
}

func TestWebhookMalformedPayloadAcked(t *testing.T) {
	svc := &stubService{}
	recorder := audit.NewMemoryRecorder()
	h := NewHandler(svc, testWebhookSecret, recorder, slog.Default())

	body := []byte(`{"event": "charge.success", "data": `)
	rr := postWebhook(t, h, body, sign(testWebhookSecret, body))
	requireAck(t, rr)
	require.EqualValues(t, 0, svc.webhookCalls.Load())
	require.Len(t, recorder.ByKind(audit.KindWebhookBadPayload), 1)
}

func TestVerifyHandlerRequiresReference(t *testing.T) {
	h := NewHandler(&stubService{}, testWebhookSecret, audit.NewMemoryRecorder(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/verify", nil)
	rr := httptest.NewRecorder()
	h.HandleVerify(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCheckoutHandlerRequiresPrincipal(t *testing.T) {
	h := NewHandler(&stubService{}, testWebhookSecret, audit.NewMemoryRecorder(), slog.Default())

	payload, _ := json.Marshal(map[string]any{
		"items": []map[string]any{{"type": "membership", "amount": 40000}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	h.HandleCheckout(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCheckoutHandlerInvalidProgramID(t *testing.T) {
	h := NewHandler(&stubService{}, testWebhookSecret, audit.NewMemoryRecorder(), slog.Default())

	payload, _ := json.Marshal(map[string]any{
		"items":      []map[string]any{{"type": "enrollment", "amount": 30000}},
		"child_name": "Ada",
		"program_id": "not-a-uuid",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", bytes.NewReader(payload))
	rr := httptest.NewRecorder()

	ctx := auth.WithPrincipal(req.Context(), &auth.Principal{
		ID: uuid.New(), Email: "parent@example.com", Role: "parent",
	})
	h.HandleCheckout(rr, req.WithContext(ctx))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
