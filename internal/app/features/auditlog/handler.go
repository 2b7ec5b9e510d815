// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	"github.com/dalemusser/stackit/internal/app/store/audit"
	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Events *audit.Store
	Users  *userstore.Store
}

// NewHandler constructs an audit log Handler bound to the given Mongo
// database and logger.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
		Events: audit.New(db),
		Users:  userstore.New(db),
	}
}
