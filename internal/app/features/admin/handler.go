// internal/app/features/admin/handler.go
package admin

import (
	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	answerstore "github.com/dalemusser/stackit/internal/app/store/answers"
	questionstore "github.com/dalemusser/stackit/internal/app/store/questions"
	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"github.com/dalemusser/stackit/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the moderation endpoints. Every route requires the admin
// role, and deletes here are hard deletes.
type Handler struct {
	DB        *mongo.Database
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	AuditLog  *auditlog.Logger
	Users     *userstore.Store
	Questions *questionstore.Store
	Answers   *answerstore.Store
}

// NewHandler constructs an admin Handler bound to the given Mongo database
// and logger.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Log:       logger,
		ErrLog:    errLog,
		AuditLog:  audit,
		Users:     userstore.New(db),
		Questions: questionstore.New(db),
		Answers:   answerstore.New(db),
	}
}
