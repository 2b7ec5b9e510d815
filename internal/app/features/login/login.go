// internal/app/features/login/login.go
package login

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/app/system/formutil"
	"github.com/dalemusser/stackit/internal/app/system/inputval"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister handles POST /api/auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "register: decode", err)
		return
	}
	if err := inputval.CheckRegistration(in.Username, in.Email, in.Password); err != nil {
		h.ErrLog.Write(w, r, "register: validate", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, userstore.NewUser{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		h.ErrLog.Write(w, r, "register: create user", err)
		return
	}

	token, err := h.Tokens.Issue(u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "register: issue token", err)
		return
	}

	h.AuditLog.Registered(ctx, r, u.ID, u.Username)
	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()))

	uierrors.WriteJSON(w, http.StatusCreated, tokenResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    newSessionUser(u),
	})
}

// HandleLogin handles POST /api/auth/login. Unknown email and wrong
// password produce the same response.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "login: decode", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, in.Email); !ok {
			h.AuditLog.LoginFailedRateLimit(ctx, r, in.Email)
			uierrors.WriteMessage(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	if err := inputval.CheckLogin(in.Email, in.Password); err != nil {
		h.ErrLog.Write(w, r, "login: validate", err)
		return
	}

	email := userstore.NormalizeEmail(in.Email)
	u, err := h.Users.Authenticate(ctx, email, in.Password)
	if err != nil {
		if errors.Is(err, userstore.ErrBadCredentials) {
			if u.ID.IsZero() {
				h.AuditLog.LoginFailedUserNotFound(ctx, r, email)
			} else {
				h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, email)
			}
		}
		h.ErrLog.Write(w, r, "login: authenticate", err)
		return
	}

	token, err := h.Tokens.Issue(u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "login: issue token", err)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, email)

	uierrors.WriteJSON(w, http.StatusOK, tokenResponse{
		Message: "Login successful",
		Token:   token,
		User:    newSessionUser(u),
	})
}

// ServeMe handles GET /api/auth/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	me, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, me.UserID)
	if err != nil {
		h.ErrLog.Write(w, r, "me: load user", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"user": u})
}
