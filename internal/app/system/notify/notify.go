// Package notify creates and reads user inbox notifications.
//
// Notify is best effort: a failed insert is logged and dropped so the action
// that triggered it still succeeds. A user is never notified of their own
// action.
package notify

import (
	"context"
	"fmt"

	questionstore "github.com/dalemusser/stackit/internal/app/store/questions"
	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"github.com/dalemusser/stackit/internal/app/system/paging"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"github.com/dalemusser/stackit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notice describes one notification to deliver.
type Notice struct {
	Type        string
	RecipientID primitive.ObjectID
	SenderID    primitive.ObjectID
	Message     string
	QuestionID  *primitive.ObjectID
	AnswerID    *primitive.ObjectID
}

// AnsweredMessage is the text sent to a question author when someone answers.
func AnsweredMessage(username, title string) string {
	return fmt.Sprintf("%s answered your question: %s", username, title)
}

// AcceptedMessage is the text sent to an answer author on acceptance.
func AcceptedMessage(title string) string {
	return "Your answer was accepted for: " + title
}

// Store is the notification persistence the dispatcher writes through.
type Store interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	List(ctx context.Context, recipientID primitive.ObjectID, page paging.Page) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
}

type Dispatcher struct {
	store     Store
	users     *userstore.Store
	questions *questionstore.Store
	log       *zap.Logger
}

// New builds a dispatcher. users and questions resolve the sender and
// question title shown in List.
func New(store Store, users *userstore.Store, questions *questionstore.Store, log *zap.Logger) *Dispatcher {
	return &Dispatcher{store: store, users: users, questions: questions, log: log}
}

// Notify records n unless the recipient is the sender. It reports whether a
// record was written.
func (d *Dispatcher) Notify(ctx context.Context, n Notice) bool {
	if n.RecipientID.IsZero() || n.RecipientID == n.SenderID {
		return false
	}
	if !models.IsValidNotificationType(n.Type) {
		d.log.Warn("notification dropped: unknown type", zap.String("type", n.Type))
		return false
	}

	// The triggering request may finish before the insert does.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Short())
	defer cancel()

	_, err := d.store.Create(ctx, models.Notification{
		RecipientID:       n.RecipientID,
		SenderID:          n.SenderID,
		Type:              n.Type,
		Message:           n.Message,
		RelatedQuestionID: n.QuestionID,
		RelatedAnswerID:   n.AnswerID,
	})
	if err != nil {
		d.log.Warn("notification dropped",
			zap.String("type", n.Type),
			zap.String("recipient_id", n.RecipientID.Hex()),
			zap.Error(err))
		return false
	}
	return true
}

// QuestionRef names the question a notification points at.
type QuestionRef struct {
	ID    primitive.ObjectID `json:"_id"`
	Title string             `json:"title"`
}

// Item is a notification as returned to its recipient. Sender and
// RelatedQuestion are nil when the referenced record no longer exists.
type Item struct {
	models.Notification
	Sender          *models.AuthorSummary `json:"sender"`
	RelatedQuestion *QuestionRef          `json:"relatedQuestion"`
	Link            string                `json:"link,omitempty"`
}

// Inbox is one page of a user's notifications. UnreadCount covers the whole
// inbox, not just the page.
type Inbox struct {
	Notifications []Item `json:"notifications"`
	UnreadCount   int64  `json:"unreadCount"`
}

// List returns a page of userID's notifications, newest first.
func (d *Dispatcher) List(ctx context.Context, userID primitive.ObjectID, page paging.Page) (Inbox, error) {
	rows, err := d.store.List(ctx, userID, page)
	if err != nil {
		return Inbox{}, err
	}
	unread, err := d.store.CountUnread(ctx, userID)
	if err != nil {
		return Inbox{}, err
	}

	senderIDs := make([]primitive.ObjectID, 0, len(rows))
	questionIDs := make([]primitive.ObjectID, 0, len(rows))
	for _, n := range rows {
		if !n.SenderID.IsZero() {
			senderIDs = append(senderIDs, n.SenderID)
		}
		if n.RelatedQuestionID != nil {
			questionIDs = append(questionIDs, *n.RelatedQuestionID)
		}
	}
	senders, err := d.users.Summaries(ctx, senderIDs)
	if err != nil {
		return Inbox{}, err
	}
	titles, err := d.questions.TitlesByID(ctx, questionIDs)
	if err != nil {
		return Inbox{}, err
	}

	items := make([]Item, 0, len(rows))
	for _, n := range rows {
		it := Item{Notification: n}
		if s, ok := senders[n.SenderID]; ok {
			it.Sender = &s
		}
		if n.RelatedQuestionID != nil {
			it.Link = "/questions/" + n.RelatedQuestionID.Hex()
			if title, ok := titles[*n.RelatedQuestionID]; ok {
				it.RelatedQuestion = &QuestionRef{ID: *n.RelatedQuestionID, Title: title}
			}
		}
		items = append(items, it)
	}
	return Inbox{Notifications: items, UnreadCount: unread}, nil
}

// MarkRead marks one of userID's notifications read.
func (d *Dispatcher) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	return d.store.MarkRead(ctx, id, userID)
}

// MarkAllRead marks every notification of userID read. Repeating it changes
// nothing.
func (d *Dispatcher) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return d.store.MarkAllRead(ctx, userID)
}
