// Package validators creates the application's collections and attaches
// JSON-Schema validators to them.
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/stackit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("questions", questionsSchema())
	ensure("answers", answersSchema())
	ensure("notifications", notificationsSchema())

	// Written only by the audit logger; no validator.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var objectIDArray = bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "username_ci", "email", "password_hash", "role"},
			"properties": bson.M{
				"username":        bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"username_ci":     bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"email":           bson.M{"bsonType": "string", "minLength": 3},
				"password_hash":   bson.M{"bsonType": "string", "minLength": 1},
				"role":            bson.M{"enum": bson.A{models.RoleMember, models.RoleAdmin}},
				"reputation":      bson.M{"bsonType": bson.A{"int", "long"}},
				"bio":             bson.M{"bsonType": "string"},
				"avatar":          bson.M{"bsonType": "string"},
				"questions_asked": objectIDArray,
				"answers_given":   objectIDArray,
			},
		},
	}
}

func questionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "description", "author_id", "is_active", "created_at"},
			"properties": bson.M{
				"title":           bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"description":     bson.M{"bsonType": "string"},
				"tags":            bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"author_id":       bson.M{"bsonType": "objectId"},
				"answers":         objectIDArray,
				"accepted_answer": bson.M{"bsonType": "objectId"},
				"upvoters":        objectIDArray,
				"downvoters":      objectIDArray,
				"views":           bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"is_active":       bson.M{"bsonType": "bool"},
				"created_at":      bson.M{"bsonType": "date"},
				"updated_at":      bson.M{"bsonType": "date"},
			},
		},
	}
}

func answersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"content", "author_id", "question_id", "is_active", "created_at"},
			"properties": bson.M{
				"content":     bson.M{"bsonType": "string", "minLength": 1},
				"author_id":   bson.M{"bsonType": "objectId"},
				"question_id": bson.M{"bsonType": "objectId"},
				"upvoters":    objectIDArray,
				"downvoters":  objectIDArray,
				"is_accepted": bson.M{"bsonType": "bool"},
				"is_active":   bson.M{"bsonType": "bool"},
				"created_at":  bson.M{"bsonType": "date"},
				"updated_at":  bson.M{"bsonType": "date"},
			},
		},
	}
}

func notificationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"recipient_id", "type", "message", "is_read", "created_at"},
			"properties": bson.M{
				"recipient_id":        bson.M{"bsonType": "objectId"},
				"sender_id":           bson.M{"bsonType": "objectId"},
				"type":                bson.M{"enum": bson.A{models.NotifyAnswer, models.NotifyComment, models.NotifyMention, models.NotifyVote, models.NotifyAccept}},
				"message":             bson.M{"bsonType": "string"},
				"related_question_id": bson.M{"bsonType": "objectId"},
				"related_answer_id":   bson.M{"bsonType": "objectId"},
				"is_read":             bson.M{"bsonType": "bool"},
				"created_at":          bson.M{"bsonType": "date"},
			},
		},
	}
}
