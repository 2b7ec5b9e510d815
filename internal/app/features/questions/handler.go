// internal/app/features/questions/handler.go
package questions

import (
	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	answerstore "github.com/dalemusser/stackit/internal/app/store/answers"
	questionstore "github.com/dalemusser/stackit/internal/app/store/questions"
	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"github.com/dalemusser/stackit/internal/app/system/voting"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB        *mongo.Database
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	Questions *questionstore.Store
	Answers   *answerstore.Store
	Users     *userstore.Store
	Votes     *voting.Engine
}

// NewHandler constructs a questions Handler bound to the given Mongo
// database and logger.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Log:       logger,
		ErrLog:    errLog,
		Questions: questionstore.New(db),
		Answers:   answerstore.New(db),
		Users:     userstore.New(db),
		Votes:     voting.New(db),
	}
}
