package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/renova-habitat/gestion-api/internal/domain"
	"go.uber.org/zap"
)

// Middleware authenticates requests using JWT bearer tokens
type Middleware struct {
	validator *Validator
	logger    *zap.Logger
}

// NewMiddleware creates the authentication middleware
func NewMiddleware(validator *Validator, logger *zap.Logger) *Middleware {
	return &Middleware{
		validator: validator,
		logger:    logger,
	}
}

// RequireAuth rejects requests without a valid bearer token
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			m.unauthorized(w, "missing bearer token")
			return
		}

		user, err := m.validator.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			m.logger.Debug("token validation failed", zap.Error(err))
			m.unauthorized(w, "invalid bearer token")
			return
		}

		ctx := WithUserContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireOrganization rejects authenticated requests whose token carries no
// organization scope. Aggregation endpoints sit behind this gate so the
// services can rely on a resolved tenant.
func (m *Middleware) RequireOrganization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := OrganizationFromContext(r.Context()); !ok {
			m.forbidden(w, "no organization scope")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) unauthorized(w http.ResponseWriter, detail string) {
	m.respondError(w, http.StatusUnauthorized, &domain.APIError{
		Type:   domain.ErrorTypeUnauthorized,
		Title:  "Unauthorized",
		Status: http.StatusUnauthorized,
		Detail: detail,
	})
}

func (m *Middleware) forbidden(w http.ResponseWriter, detail string) {
	m.respondError(w, http.StatusForbidden, &domain.APIError{
		Type:   domain.ErrorTypeForbidden,
		Title:  "Forbidden",
		Status: http.StatusForbidden,
		Detail: detail,
	})
}

func (m *Middleware) respondError(w http.ResponseWriter, status int, apiErr *domain.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiErr)
}
