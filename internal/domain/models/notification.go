// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types. Only answer and accept are produced today; the rest
// are accepted by the schema so older records keep decoding.
const (
	NotifyAnswer  = "answer"
	NotifyComment = "comment"
	NotifyMention = "mention"
	NotifyVote    = "vote"
	NotifyAccept  = "accept"
)

// IsValidNotificationType reports whether t is a known notification type.
func IsValidNotificationType(t string) bool {
	switch t {
	case NotifyAnswer, NotifyComment, NotifyMention, NotifyVote, NotifyAccept:
		return true
	}
	return false
}

// Notification is an inbox entry for RecipientID. Records are only ever
// created by the notification dispatcher and only IsRead changes afterward.
type Notification struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	RecipientID       primitive.ObjectID  `bson:"recipient_id" json:"recipient"`
	SenderID          primitive.ObjectID  `bson:"sender_id" json:"senderId"`
	Type              string              `bson:"type" json:"type"`
	Message           string              `bson:"message" json:"message"`
	RelatedQuestionID *primitive.ObjectID `bson:"related_question_id,omitempty" json:"relatedQuestionId,omitempty"`
	RelatedAnswerID   *primitive.ObjectID `bson:"related_answer_id,omitempty" json:"relatedAnswerId,omitempty"`
	IsRead            bool                `bson:"is_read" json:"isRead"`
	CreatedAt         time.Time           `bson:"created_at" json:"createdAt"`
}
