package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultTokenTTL is how long an issued bearer token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// ErrTokenExpired is returned (wrapped in apperr.ErrUnauthenticated) when a
// token was valid once but its expiry has passed.
var ErrTokenExpired = errors.New("token expired")

// Claims carries the registered claims plus the user's ObjectID hex.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens builds a token service. A non-positive ttl falls back to
// DefaultTokenTTL.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL reports the configured token lifetime.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue signs a token for userID.
func (t *Tokens) Issue(userID primitive.ObjectID) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		UserID: userID.Hex(),
	})

	s, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Resolve verifies token and returns the user ID it was issued for.
// It depends only on the token and the secret. Every failure wraps
// apperr.ErrUnauthenticated.
func (t *Tokens) Resolve(token string) (primitive.ObjectID, error) {
	if token == "" {
		return primitive.NilObjectID, fmt.Errorf("missing token: %w", apperr.ErrUnauthenticated)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return primitive.NilObjectID, fmt.Errorf("%w: %w", ErrTokenExpired, apperr.ErrUnauthenticated)
		}
		return primitive.NilObjectID, fmt.Errorf("invalid token: %v: %w", err, apperr.ErrUnauthenticated)
	}
	if !parsed.Valid {
		return primitive.NilObjectID, fmt.Errorf("invalid token: %w", apperr.ErrUnauthenticated)
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid subject: %w", apperr.ErrUnauthenticated)
	}
	return id, nil
}
