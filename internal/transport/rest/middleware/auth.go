package middleware

import (
	"context"
	"net/http"
	"strings"

	"ethicscore/internal/service"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
	RequestIDKey contextKey = "requestId"
)

// Principal is the authenticated caller of a request. Operators carry an
// OperatorID; evaluators carry the user, role and project of their token.
type Principal struct {
	OperatorID string
	UserID     string
	Role       string
	ProjectID  string
}

// IsOperator reports whether the caller authenticated with an operator token
func (p *Principal) IsOperator() bool {
	return p != nil && p.OperatorID != ""
}

// CanAccessProject reports whether the caller may act on projectID
func (p *Principal) CanAccessProject(projectID string) bool {
	if p == nil {
		return false
	}
	return p.IsOperator() || p.ProjectID == projectID
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireOperator validates an operator JWT from the Authorization header
func (m *AuthMiddleware) RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateOperatorToken(token)
		if err != nil {
			if _, evalErr := m.authSvc.ValidateEvaluatorToken(token); evalErr == nil {
				http.Error(w, `{"error":"operator token required"}`, http.StatusForbidden)
				return
			}
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), PrincipalKey, &Principal{OperatorID: claims.OperatorID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth accepts either an operator or an evaluator JWT
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		principal, err := m.Authenticate(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), PrincipalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authenticate resolves a raw token into a Principal
func (m *AuthMiddleware) Authenticate(token string) (*Principal, error) {
	if claims, err := m.authSvc.ValidateOperatorToken(token); err == nil {
		return &Principal{OperatorID: claims.OperatorID}, nil
	}
	claims, err := m.authSvc.ValidateEvaluatorToken(token)
	if err != nil {
		return nil, err
	}
	return &Principal{
		UserID:    claims.UserID,
		Role:      claims.Role,
		ProjectID: claims.ProjectID,
	}, nil
}

// GetPrincipal extracts the authenticated caller from context
func GetPrincipal(ctx context.Context) *Principal {
	if v, ok := ctx.Value(PrincipalKey).(*Principal); ok {
		return v
	}
	return nil
}

// GetRequestID extracts the request id from context
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
