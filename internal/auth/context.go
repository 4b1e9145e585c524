package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserContext holds authenticated user information for a request
type UserContext struct {
	UserID         string
	DisplayName    string
	Email          string
	Roles          []string
	OrganizationID uuid.UUID
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// OrganizationFromContext returns the tenant scope of the request.
// The second return is false when the request is unauthenticated or the
// token carries no organization claim; callers must treat that as a
// validation failure before issuing any query.
func OrganizationFromContext(ctx context.Context) (uuid.UUID, bool) {
	user, ok := FromContext(ctx)
	if !ok || user.OrganizationID == uuid.Nil {
		return uuid.Nil, false
	}
	return user.OrganizationID, true
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
