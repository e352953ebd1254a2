// Package paystack is a thin client for the hosted-payment gateway:
// transaction initialize, verify-by-reference, and webhook signature
// validation.
package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
)

const defaultBaseURL = "https://api.paystack.co"

// ErrUnavailable wraps transport-level failures and open-breaker
// rejections; callers surface it as a retriable gateway error.
var ErrUnavailable = errors.New("payment gateway unavailable")

// Client talks to the Paystack REST API. A circuit breaker fails fast
// when the gateway is down so request handlers are not pinned for the
// full timeout during an outage.
type Client struct {
	baseURL string
	secret  string
	httpc   *http.Client
	breaker *gobreaker.CircuitBreaker[json.RawMessage]
}

func NewClient(baseURL, secret string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	settings := gobreaker.Settings{
		Name:    "paystack",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[json.RawMessage](settings),
	}
}

// InitializeRequest starts a hosted checkout session.
type InitializeRequest struct {
	Email       string         `json:"email"`
	AmountKobo  int64          `json:"amount"`
	Reference   string         `json:"reference"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Channels    []string       `json:"channels,omitempty"`
	Currency    string         `json:"currency,omitempty"`
}

// Authorization is the hosted checkout session handle returned to the
// buyer's client.
type Authorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Transaction is the gateway's view of a charge.
type Transaction struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
	AmountKobo int64 `json:"amount"`
	Channel   string `json:"channel"`
	PaidAt    string `json:"paid_at"`
}

// Initialize creates a hosted payment session for the reference.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*Authorization, error) {
	if req.Email == "" || req.AmountKobo <= 0 || req.Reference == "" {
		return nil, fmt.Errorf("email, amount and reference are required")
	}
	if req.Currency == "" {
		req.Currency = "NGN"
	}
	if len(req.Channels) == 0 {
		req.Channels = []string{"card", "bank", "ussd", "bank_transfer"}
	}

	data, err := c.do(ctx, http.MethodPost, "/transaction/initialize", req)
	if err != nil {
		return nil, err
	}
	var auth Authorization
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, fmt.Errorf("decode initialize response: %w", err)
	}
	return &auth, nil
}

// Verify fetches the transaction state for a reference.
func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	if reference == "" {
		return nil, fmt.Errorf("reference is required")
	}
	data, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}
	var tx Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	return &tx, nil
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	data, err := c.breaker.Execute(func() (json.RawMessage, error) {
		var reader *bytes.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("marshal request: %w", err)
			}
			reader = bytes.NewReader(payload)
		} else {
			reader = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.secret)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		var envelope apiEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
		}
		if !envelope.Status {
			return nil, fmt.Errorf("gateway rejected %s: %s", endpoint, envelope.Message)
		}
		return envelope.Data, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	return data, nil
}

// ValidateSignature checks the webhook signature header: a hex-encoded
// HMAC-SHA512 of the raw request body under the secret key. The
// comparison is constant time.
func ValidateSignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
