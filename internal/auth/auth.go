// Package auth consumes an externally issued credential and resolves it
// to a principal. Token issuance and verification internals live with
// the identity provider; this package only defines the capability the
// rest of the service consumes.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"skillpadi/internal/api"
)

// Principal is the authenticated caller.
type Principal struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
	Role  string    `json:"role"`
}

// Verifier resolves an opaque bearer token to a principal.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

type contextKey struct{}

// WithPrincipal returns ctx carrying p. Exposed for tests and for
// deployments that resolve the principal in their own middleware.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal placed by Middleware.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(*Principal)
	return p, ok
}

// Middleware rejects requests without a verifiable bearer token and
// stores the principal in the request context.
func Middleware(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				api.Fail(w, nil, api.Unauthorized("missing bearer token"))
				return
			}
			principal, err := verifier.Verify(r.Context(), token)
			if err != nil {
				api.Fail(w, nil, api.Unauthorized("invalid credentials"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRole gates a route on the principal's role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok || p.Role != role {
				api.Fail(w, nil, api.Forbidden("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// StaticVerifier maps fixed tokens to principals. Used in development
// and tests; deployments wire the identity provider's verifier instead.
type StaticVerifier struct {
	tokens map[string]Principal
}

func NewStaticVerifier(tokens map[string]Principal) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (*Principal, error) {
	p, ok := v.tokens[token]
	if !ok {
		return nil, fmt.Errorf("unknown token")
	}
	return &p, nil
}

// ParseStaticTokens parses the AUTH_TOKENS env format:
// token=uuid:role:email[:phone], comma separated.
func ParseStaticTokens(raw string) (map[string]Principal, error) {
	tokens := make(map[string]Principal)
	if raw == "" {
		return tokens, nil
	}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		token, spec, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("malformed token entry %q", entry)
		}
		parts := strings.Split(spec, ":")
		if len(parts) < 3 {
			return nil, fmt.Errorf("malformed principal spec %q", spec)
		}
		id, err := uuid.Parse(parts[0])
		if err != nil {
			return nil, fmt.Errorf("bad principal id in %q: %w", spec, err)
		}
		p := Principal{ID: id, Role: parts[1], Email: parts[2]}
		if len(parts) > 3 {
			p.Phone = parts[3]
		}
		tokens[token] = p
	}
	return tokens, nil
}
