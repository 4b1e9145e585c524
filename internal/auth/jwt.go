package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/config"
)

// Claims are the JWT claims carried by a bearer token
type Claims struct {
	DisplayName    string   `json:"name,omitempty"`
	Email          string   `json:"email,omitempty"`
	Roles          []string `json:"roles,omitempty"`
	OrganizationID string   `json:"org_id,omitempty"`
	jwt.RegisteredClaims
}

// Validator parses and validates bearer tokens
type Validator struct {
	secret []byte
	issuer string
}

// NewValidator creates a token validator from the auth configuration
func NewValidator(cfg *config.AuthConfig) *Validator {
	return &Validator{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Validate parses the token string and returns the resolved user context
func (v *Validator) Validate(tokenString string) (*UserContext, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token not valid")
	}

	user := &UserContext{
		UserID:      claims.Subject,
		DisplayName: claims.DisplayName,
		Email:       claims.Email,
		Roles:       claims.Roles,
	}
	if claims.OrganizationID != "" {
		orgID, err := uuid.Parse(claims.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("invalid org_id claim: %w", err)
		}
		user.OrganizationID = orgID
	}

	return user, nil
}

// Mint issues a signed token for the given user. Used by tests and tooling.
func (v *Validator) Mint(user *UserContext, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		DisplayName:    user.DisplayName,
		Email:          user.Email,
		Roles:          user.Roles,
		OrganizationID: user.OrganizationID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
