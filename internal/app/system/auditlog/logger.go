// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/stackit/internal/app/store/audit"
	"github.com/dalemusser/stackit/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// Config selects where each category of audit event goes.
type Config struct {
	// Auth covers registration and login events.
	Auth string
	// Admin covers moderation actions.
	Admin string
}

// Logger writes audit events to MongoDB (via audit.Store) and zap, as
// configured per category. A nil *Logger is a no-op.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func (l *Logger) mode(category string) string {
	switch category {
	case audit.CategoryAuth:
		return l.config.Auth
	case audit.CategoryAdmin:
		return l.config.Admin
	}
	return ModeAll
}

// Log records event according to its category's mode. Storage failures are
// logged and never returned.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	mode := l.mode(event.Category)
	if mode == ModeOff {
		return
	}
	if mode == ModeAll || mode == ModeLog {
		l.logToZap(event)
	}
	if (mode == ModeAll || mode == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func requestEvent(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

// Registered logs a new account.
func (l *Logger) Registered(ctx context.Context, r *http.Request, userID primitive.ObjectID, username string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventRegistered, true)
	e.UserID = &userID
	e.Details = map[string]string{"username": username}
	l.Log(ctx, e)
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	e.UserID = &userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedUserNotFound logs a login attempt for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedUserNotFound, false)
	e.FailureReason = "user not found"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a login attempt with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword, false)
	e.UserID = &userID
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a login attempt rejected by the login limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, false)
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// --- Admin Events ---

func (l *Logger) adminEvent(ctx context.Context, r *http.Request, eventType string, actorID primitive.ObjectID, userID *primitive.ObjectID, details map[string]string) {
	e := requestEvent(r, audit.CategoryAdmin, eventType, true)
	e.ActorID = &actorID
	e.UserID = userID
	e.Details = details
	l.Log(ctx, e)
}

// UserDeleted logs an admin hard-deleting a user.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, targetUserID primitive.ObjectID, username string) {
	l.adminEvent(ctx, r, audit.EventUserDeleted, actorID, &targetUserID, map[string]string{"username": username})
}

// UserPromoted logs an admin granting the admin role.
func (l *Logger) UserPromoted(ctx context.Context, r *http.Request, actorID, targetUserID primitive.ObjectID, username string) {
	l.adminEvent(ctx, r, audit.EventUserPromoted, actorID, &targetUserID, map[string]string{"username": username})
}

// QuestionDeleted logs an admin hard-deleting a question.
func (l *Logger) QuestionDeleted(ctx context.Context, r *http.Request, actorID, questionID primitive.ObjectID, title string) {
	l.adminEvent(ctx, r, audit.EventQuestionDeleted, actorID, nil, map[string]string{
		"question_id": questionID.Hex(),
		"title":       title,
	})
}

// AnswerDeleted logs an admin hard-deleting an answer.
func (l *Logger) AnswerDeleted(ctx context.Context, r *http.Request, actorID, answerID, questionID primitive.ObjectID) {
	l.adminEvent(ctx, r, audit.EventAnswerDeleted, actorID, nil, map[string]string{
		"answer_id":   answerID.Hex(),
		"question_id": questionID.Hex(),
	})
}
