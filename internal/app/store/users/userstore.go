package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateEmail is returned when another account already uses the email.
	ErrDuplicateEmail = apperr.Conflict("User with this email already exists")
	// ErrDuplicateUsername is returned when the username (ignoring case) is taken.
	ErrDuplicateUsername = apperr.Conflict("Username already taken")
	// ErrBadCredentials is returned by Authenticate for an unknown email or
	// wrong password; callers cannot tell which.
	ErrBadCredentials = apperr.Invalid("Invalid credentials")
)

// bcryptCost is a variable so tests can lower it.
var bcryptCost = bcrypt.DefaultCost

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// NormalizeEmail trims and lower-cases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, apperr.FromMongo(err, "User")
	}
	return u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": NormalizeEmail(email)}).Decode(&u); err != nil {
		return models.User{}, apperr.FromMongo(err, "User")
	}
	return u, nil
}

// NewUser is the input to Create.
type NewUser struct {
	Username string
	Email    string
	Password string
	Role     string // defaults to member
}

// Create hashes the password and inserts a new user. Duplicate email or
// username (case-insensitive) yields ErrDuplicateEmail / ErrDuplicateUsername.
func (s *Store) Create(ctx context.Context, in NewUser) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return models.User{}, err
	}

	role := in.Role
	if role == "" {
		role = models.RoleMember
	}

	now := time.Now().UTC()
	u := models.User{
		ID:             primitive.NewObjectID(),
		Username:       strings.TrimSpace(in.Username),
		Email:          NormalizeEmail(in.Email),
		PasswordHash:   string(hash),
		Role:           role,
		QuestionsAsked: []primitive.ObjectID{},
		AnswersGiven:   []primitive.ObjectID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	u.UsernameCI = text.Fold(u.Username)

	// Check first so the caller gets the specific message; the unique
	// indexes still settle races.
	if err := s.checkUnique(ctx, u.Email, u.UsernameCI, primitive.NilObjectID); err != nil {
		return models.User{}, err
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, dupErr(err)
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) checkUnique(ctx context.Context, email, usernameCI string, exclude primitive.ObjectID) error {
	or := []bson.M{{"username_ci": usernameCI}}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	filter := bson.M{"$or": or}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}

	var existing struct {
		Email string `bson:"email"`
	}
	err := s.c.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"email": 1})).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return err
	}
	if email != "" && existing.Email == email {
		return ErrDuplicateEmail
	}
	return ErrDuplicateUsername
}

func dupErr(err error) error {
	if strings.Contains(err.Error(), "username_ci") {
		return ErrDuplicateUsername
	}
	return ErrDuplicateEmail
}

// Authenticate returns the user for email when password matches.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.User{}, ErrBadCredentials
		}
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return u, ErrBadCredentials
	}
	return u, nil
}

// ProfileUpdate holds the optional fields of a profile edit.
type ProfileUpdate struct {
	Username *string
	Bio      *string
}

// UpdateProfile applies upd to the user and returns the updated record.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		ci := text.Fold(name)
		if err := s.checkUnique(ctx, "", ci, id); err != nil {
			return models.User{}, err
		}
		set["username"] = name
		set["username_ci"] = ci
	}
	if upd.Bio != nil {
		set["bio"] = strings.TrimSpace(*upd.Bio)
	}
	return s.findAndSet(ctx, id, set)
}

// SetAvatar stores the avatar URL.
func (s *Store) SetAvatar(ctx context.Context, id primitive.ObjectID, url string) (models.User, error) {
	return s.findAndSet(ctx, id, bson.M{"avatar": url, "updated_at": time.Now().UTC()})
}

// Promote grants the admin role. Promoting an admin is a no-op.
func (s *Store) Promote(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findAndSet(ctx, id, bson.M{"role": models.RoleAdmin, "updated_at": time.Now().UTC()})
}

// PromoteByEmail grants the admin role to the account with email.
func (s *Store) PromoteByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"email": NormalizeEmail(email)},
		bson.M{"$set": bson.M{"role": models.RoleAdmin, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return models.User{}, apperr.FromMongo(err, "User")
	}
	return u, nil
}

func (s *Store) findAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (models.User, error) {
	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, dupErr(err)
		}
		return models.User{}, apperr.FromMongo(err, "User")
	}
	return u, nil
}

// AddQuestion records that the user asked questionID.
func (s *Store) AddQuestion(ctx context.Context, userID, questionID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$addToSet": bson.M{"questions_asked": questionID}})
	return err
}

// AddAnswer records that the user wrote answerID.
func (s *Store) AddAnswer(ctx context.Context, userID, answerID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$addToSet": bson.M{"answers_given": answerID}})
	return err
}

// List returns every user, newest first.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Delete removes the user record. Content they authored is left in place.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Summaries loads the author view of each user in ids. Missing users are
// absent from the map.
func (s *Store) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.AuthorSummary, error) {
	out := make(map[primitive.ObjectID]models.AuthorSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := s.c.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"username": 1, "avatar": 1, "reputation": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var a models.AuthorSummary
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, cur.Err()
}
