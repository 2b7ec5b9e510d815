// internal/app/features/profile/handler.go
package profile

import (
	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	answerstore "github.com/dalemusser/stackit/internal/app/store/answers"
	questionstore "github.com/dalemusser/stackit/internal/app/store/questions"
	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"github.com/dalemusser/stackit/internal/app/system/uploads"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// activityLimit caps the questions and answers listed on a profile.
const activityLimit = 50

// Handler owns all user profile handlers.
type Handler struct {
	DB        *mongo.Database
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	Users     *userstore.Store
	Questions *questionstore.Store
	Answers   *answerstore.Store
	Storage   uploads.Store
	MaxUpload int64
}

// NewHandler constructs a Handler bound to the given Mongo database,
// avatar storage and logger.
func NewHandler(db *mongo.Database, storage uploads.Store, maxUpload int64, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Log:       logger,
		ErrLog:    errLog,
		Users:     userstore.New(db),
		Questions: questionstore.New(db),
		Answers:   answerstore.New(db),
		Storage:   storage,
		MaxUpload: maxUpload,
	}
}
