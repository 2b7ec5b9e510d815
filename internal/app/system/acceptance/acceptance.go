// Package acceptance marks one answer of a question as accepted.
//
// The question's accepted_answer pointer is the source of truth. Accept
// writes the pointer first, then clears the flag on every sibling and sets
// it on the target, all inside a transaction when the server supports one.
// Accepts on the same question are serialized in-process, and a final
// reconcile pass forces the flags to match whatever pointer won, so
// concurrent accepts from separate processes still converge on one
// accepted answer.
package acceptance

import (
	"context"
	"fmt"

	"github.com/dalemusser/stackit/internal/app/policy/contentpolicy"
	answerstore "github.com/dalemusser/stackit/internal/app/store/answers"
	questionstore "github.com/dalemusser/stackit/internal/app/store/questions"
	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/app/system/notify"
	"github.com/dalemusser/stackit/internal/app/system/txn"
	"github.com/dalemusser/stackit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrNotQuestionAuthor is returned when anyone but the question's author
// tries to accept an answer.
var ErrNotQuestionAuthor = apperr.Forbidden("Only question author can accept answers")

// Notifier is the slice of the notification dispatcher Accept needs.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notice) bool
}

type Protocol struct {
	db        *mongo.Database
	questions *questionstore.Store
	answers   *answerstore.Store
	notifier  Notifier
	log       *zap.Logger
	locks     *keyedMutex
}

func New(db *mongo.Database, questions *questionstore.Store, answers *answerstore.Store, notifier Notifier, log *zap.Logger) *Protocol {
	return &Protocol{
		db:        db,
		questions: questions,
		answers:   answers,
		notifier:  notifier,
		log:       log,
		locks:     newKeyedMutex(),
	}
}

// Accept makes answerID the accepted answer of its question on behalf of
// actor and returns the question and answer as stored afterward.
func (p *Protocol) Accept(ctx context.Context, answerID primitive.ObjectID, actor *auth.Identity) (models.Question, models.Answer, error) {
	if actor == nil || actor.UserID.IsZero() {
		return models.Question{}, models.Answer{}, apperr.ErrUnauthenticated
	}

	a, err := p.answers.GetActive(ctx, answerID)
	if err != nil {
		return models.Question{}, models.Answer{}, err
	}
	q, err := p.questions.GetActive(ctx, a.QuestionID)
	if err != nil {
		return models.Question{}, models.Answer{}, err
	}
	if !contentpolicy.CanAccept(actor, q.AuthorID) {
		return models.Question{}, models.Answer{}, ErrNotQuestionAuthor
	}

	unlock := p.locks.Lock(q.ID)
	defer unlock()

	// An accept queued behind the lock must see what the previous one wrote.
	q, err = p.questions.GetByID(ctx, q.ID)
	if err != nil {
		return models.Question{}, models.Answer{}, err
	}
	a, err = p.answers.GetByID(ctx, a.ID)
	if err != nil {
		return models.Question{}, models.Answer{}, err
	}
	already := a.IsAccepted && q.AcceptedAnswer != nil && *q.AcceptedAnswer == a.ID

	err = txn.Run(ctx, p.db, p.log, func(ctx context.Context) error {
		if err := p.questions.SetAccepted(ctx, q.ID, a.ID); err != nil {
			return err
		}
		if err := p.answers.ClearAcceptedExcept(ctx, q.ID, a.ID); err != nil {
			return err
		}
		_, err := p.answers.MarkAccepted(ctx, a.ID)
		return err
	})
	if err != nil {
		return models.Question{}, models.Answer{}, fmt.Errorf("accept answer %s: %w", a.ID.Hex(), err)
	}

	q, err = p.reconcile(ctx, q.ID)
	if err != nil {
		return models.Question{}, models.Answer{}, err
	}
	a, err = p.answers.GetByID(ctx, a.ID)
	if err != nil {
		return models.Question{}, models.Answer{}, err
	}

	if !already {
		qid, aid := q.ID, a.ID
		p.notifier.Notify(ctx, notify.Notice{
			Type:        models.NotifyAccept,
			RecipientID: a.AuthorID,
			SenderID:    actor.UserID,
			Message:     notify.AcceptedMessage(q.Title),
			QuestionID:  &qid,
			AnswerID:    &aid,
		})
	}
	return q, a, nil
}

// reconcile re-reads the question's pointer and makes the answer flags
// agree with it.
func (p *Protocol) reconcile(ctx context.Context, questionID primitive.ObjectID) (models.Question, error) {
	q, err := p.questions.GetByID(ctx, questionID)
	if err != nil {
		return models.Question{}, err
	}
	if q.AcceptedAnswer == nil {
		return q, nil
	}

	accepted, err := p.answers.AcceptedIDs(ctx, questionID)
	if err != nil {
		return models.Question{}, err
	}
	if len(accepted) == 1 && accepted[0] == *q.AcceptedAnswer {
		return q, nil
	}

	p.log.Info("reconciling accepted answer flags",
		zap.String("question_id", questionID.Hex()),
		zap.String("accepted_answer", q.AcceptedAnswer.Hex()),
		zap.Int("flagged", len(accepted)))
	if err := p.answers.ClearAcceptedExcept(ctx, questionID, *q.AcceptedAnswer); err != nil {
		return models.Question{}, err
	}
	if _, err := p.answers.MarkAccepted(ctx, *q.AcceptedAnswer); err != nil {
		return models.Question{}, err
	}
	return q, nil
}
