// internal/paystack/client_test.go
package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))

		var req InitializeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, int64(4300000), req.AmountKobo)
		require.Equal(t, "NGN", req.Currency)
		require.NotEmpty(t, req.Channels)

		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]any{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code":       "abc123",
				"reference":         req.Reference,
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_abc")
	auth, err := client.Initialize(context.Background(), InitializeRequest{
		Email:      "parent@example.com",
		AmountKobo: 4300000,
		Reference:  "CHK_TEST_1234",
	})
	require.NoError(t, err)
	require.Equal(t, "https://checkout.paystack.com/abc123", auth.AuthorizationURL)
	require.Equal(t, "CHK_TEST_1234", auth.Reference)
}

func TestInitializeRequiredFields(t *testing.T) {
	client := NewClient("http://localhost:0", "sk_test_abc")
	_, err := client.Initialize(context.Background(), InitializeRequest{Email: "x@y.z"})
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/verify/CHK_TEST_1234", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Verification successful",
			"data": map[string]any{
				"id":        987654,
				"status":    "success",
				"reference": "CHK_TEST_1234",
				"amount":    4300000,
				"channel":   "card",
				"paid_at":   "2026-08-01T10:30:00Z",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_abc")
	tx, err := client.Verify(context.Background(), "CHK_TEST_1234")
	require.NoError(t, err)
	require.Equal(t, "success", tx.Status)
	require.Equal(t, int64(4300000), tx.AmountKobo)
	require.Equal(t, "card", tx.Channel)
}

func TestVerifyGatewayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":  false,
			"message": "Transaction reference not found",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_abc")
	_, err := client.Verify(context.Background(), "CHK_UNKNOWN")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Transaction reference not found")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "down"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_abc")
	for i := 0; i < 5; i++ {
		_, err := client.Verify(context.Background(), "CHK_TEST_1234")
		require.Error(t, err)
	}
	require.EqualValues(t, 5, hits.Load())

	// The sixth call is rejected by the open breaker without reaching
	// the gateway.
	_, err := client.Verify(context.Background(), "CHK_TEST_1234")
	require.ErrorIs(t, err, ErrUnavailable)
	require.EqualValues(t, 5, hits.Load())
}

func TestValidateSignature(t *testing.T) {
	secret := "sk_test_webhook"
	body := []byte(`{"event":"charge.success"}`)

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	good := hex.EncodeToString(mac.Sum(nil))

	require.True(t, ValidateSignature(secret, body, good))
	require.False(t, ValidateSignature(secret, body, "deadbeef"))
	require.False(t, ValidateSignature(secret, []byte(`{"tampered":1}`), good))
	require.False(t, ValidateSignature("", body, good))
	require.False(t, ValidateSignature(secret, body, ""))
}
