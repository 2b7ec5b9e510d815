package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"github.com/dalemusser/stackit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Identity is the authenticated caller, loaded fresh from the users
// collection on every request.
type Identity struct {
	UserID   primitive.ObjectID
	Username string
	Email    string
	Role     string
	Avatar   string
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && strings.EqualFold(i.Role, models.RoleAdmin)
}

// IdentityFor builds an Identity from a stored user.
func IdentityFor(u models.User) *Identity {
	return &Identity{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Avatar:   u.Avatar,
	}
}

// UserLoader is the slice of the users store the middleware needs.
type UserLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the identity attached by LoadBearerUser.
func CurrentUser(r *http.Request) (*Identity, bool) {
	u, ok := r.Context().Value(currentUserKey).(*Identity)
	return u, ok && u != nil
}

// WithTestUser attaches id to the request as if LoadBearerUser had run.
func WithTestUser(r *http.Request, id *Identity) *http.Request {
	return withUser(r, id)
}

// Manager resolves bearer tokens into identities.
type Manager struct {
	tokens *Tokens
	users  UserLoader
	log    *zap.Logger
}

// NewManager wires the token service to the user store.
func NewManager(tokens *Tokens, users UserLoader, log *zap.Logger) *Manager {
	return &Manager{tokens: tokens, users: users, log: log}
}

// LoadBearerUser attaches the caller's identity when the request carries a
// valid "Authorization: Bearer <token>" header for an existing user. Bad
// tokens and unknown users continue anonymously and RequireSignedIn rejects
// them; a failing user lookup answers 500.
func (m *Manager) LoadBearerUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := m.tokens.Resolve(token)
		if err != nil {
			m.log.Debug("bearer token rejected", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		user, err := m.users.GetByID(ctx, userID)
		cancel()
		if errors.Is(err, apperr.ErrNotFound) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			m.log.Error("load bearer user failed",
				zap.String("user_id", userID.Hex()),
				zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "Server error")
			return
		}

		next.ServeHTTP(w, withUser(r, IdentityFor(user)))
	})
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// RequireSignedIn rejects requests without an identity with 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			writeMessage(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous callers with 401 and callers lacking every
// allowed role with 403.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				writeMessage(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withUser(r *http.Request, u *Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
