// internal/app/features/login/handler.go
package login

import (
	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"github.com/dalemusser/stackit/internal/app/system/auditlog"
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/app/system/ratelimit"
	"github.com/dalemusser/stackit/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves registration, login and the current-user lookup.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Users    *userstore.Store
	Tokens   *auth.Tokens
	Limiter  *ratelimit.LoginLimiter
	AuditLog *auditlog.Logger
}

func NewHandler(db *mongo.Database, tokens *auth.Tokens, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Users:    userstore.New(db),
		Tokens:   tokens,
		Limiter:  limiter,
		AuditLog: audit,
	}
}

// sessionUser is the user block returned with a token.
type sessionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar"`
}

type tokenResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    sessionUser `json:"user"`
}

func newSessionUser(u models.User) sessionUser {
	return sessionUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Avatar:   u.Avatar,
	}
}
