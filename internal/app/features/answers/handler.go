// internal/app/features/answers/handler.go
package answers

import (
	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	answerstore "github.com/dalemusser/stackit/internal/app/store/answers"
	questionstore "github.com/dalemusser/stackit/internal/app/store/questions"
	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"github.com/dalemusser/stackit/internal/app/system/acceptance"
	"github.com/dalemusser/stackit/internal/app/system/notify"
	"github.com/dalemusser/stackit/internal/app/system/voting"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves answer creation, editing, voting and acceptance. The
// acceptance protocol and dispatcher are shared process-wide so accepts on
// one question serialize across requests.
type Handler struct {
	DB        *mongo.Database
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	Questions *questionstore.Store
	Answers   *answerstore.Store
	Users     *userstore.Store
	Votes     *voting.Engine
	Accept    *acceptance.Protocol
	Notifier  *notify.Dispatcher
}

func NewHandler(db *mongo.Database, accept *acceptance.Protocol, notifier *notify.Dispatcher, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Log:       logger,
		ErrLog:    errLog,
		Questions: questionstore.New(db),
		Answers:   answerstore.New(db),
		Users:     userstore.New(db),
		Votes:     voting.New(db),
		Accept:    accept,
		Notifier:  notifier,
	}
}
