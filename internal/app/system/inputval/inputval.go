// Package inputval holds the request-field rules shared by the auth,
// questions, answers and users features. Each Check* function returns an
// *apperr.ValidationError listing every failed rule, or nil.
package inputval

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stackit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field limits.
const (
	UsernameMin    = 3
	UsernameMax    = 30
	PasswordMin    = 6
	BioMax         = 500
	SearchQueryMax = 200
)

var usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// IsValidEmail reports whether s is a bare address (no display name) with
// a well-formed local part and domain.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || domain == "" {
		return false
	}
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return true
}

// IsValidUsername reports whether s is 3-30 letters, digits or underscores.
func IsValidUsername(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= UsernameMin && n <= UsernameMax && usernameRE.MatchString(s)
}

// NormalizeTags lower-cases and trims tags, dropping empties and repeats
// while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// CheckRegistration validates a sign-up request.
func CheckRegistration(username, email, password string) error {
	var v apperr.ValidationError
	if n := utf8.RuneCountInString(username); n < UsernameMin || n > UsernameMax {
		v.Add("username", "Username must be between 3 and 30 characters")
	} else if !usernameRE.MatchString(username) {
		v.Add("username", "Username can only contain letters, numbers, and underscores")
	}
	if !IsValidEmail(email) {
		v.Add("email", "Please provide a valid email")
	}
	if utf8.RuneCountInString(password) < PasswordMin {
		v.Add("password", "Password must be at least 6 characters long")
	}
	return v.OrNil()
}

// CheckLogin validates a login request.
func CheckLogin(email, password string) error {
	var v apperr.ValidationError
	if !IsValidEmail(email) {
		v.Add("email", "Please provide a valid email")
	}
	if password == "" {
		v.Add("password", "Password is required")
	}
	return v.OrNil()
}

func checkTitle(v *apperr.ValidationError, title string) {
	if n := utf8.RuneCountInString(strings.TrimSpace(title)); n < models.QuestionTitleMin || n > models.QuestionTitleMax {
		v.Add("title", "Title must be between 10 and 200 characters")
	}
}

func checkDescription(v *apperr.ValidationError, description string) {
	if htmlsanitize.TextLength(description) < models.QuestionBodyMin {
		v.Add("description", "Description must be at least 20 characters")
	}
}

func checkTags(v *apperr.ValidationError, tags []string) {
	if n := len(NormalizeTags(tags)); n < models.QuestionTagsMin || n > models.QuestionTagsMax {
		v.Add("tags", "Please provide 1-5 tags")
	}
}

// CheckNewQuestion validates every field of a question being created.
func CheckNewQuestion(title, description string, tags []string) error {
	var v apperr.ValidationError
	checkTitle(&v, title)
	checkDescription(&v, description)
	checkTags(&v, tags)
	return v.OrNil()
}

// CheckQuestionEdit validates only the fields present in an edit.
func CheckQuestionEdit(title, description *string, tags []string, tagsSet bool) error {
	var v apperr.ValidationError
	if title != nil {
		checkTitle(&v, *title)
	}
	if description != nil {
		checkDescription(&v, *description)
	}
	if tagsSet {
		checkTags(&v, tags)
	}
	return v.OrNil()
}

// CheckAnswer validates answer content.
func CheckAnswer(content string) error {
	var v apperr.ValidationError
	if htmlsanitize.TextLength(content) < models.AnswerBodyMin {
		v.Add("content", "Answer must be at least 20 characters")
	}
	return v.OrNil()
}

// CheckNewAnswer validates answer content and the hex id of the question
// being answered.
func CheckNewAnswer(content, questionID string) error {
	var v apperr.ValidationError
	if htmlsanitize.TextLength(content) < models.AnswerBodyMin {
		v.Add("content", "Answer must be at least 20 characters")
	}
	if !primitive.IsValidObjectID(questionID) {
		v.Add("questionId", "Valid question ID is required")
	}
	return v.OrNil()
}

// CheckProfile validates the optional fields of a profile update.
func CheckProfile(username, bio *string) error {
	var v apperr.ValidationError
	if username != nil {
		if n := utf8.RuneCountInString(*username); n < UsernameMin || n > UsernameMax {
			v.Add("username", "Username must be between 3 and 30 characters")
		} else if !usernameRE.MatchString(*username) {
			v.Add("username", "Username can only contain letters, numbers, and underscores")
		}
	}
	if bio != nil && utf8.RuneCountInString(*bio) > BioMax {
		v.Add("bio", "Bio must be less than 500 characters")
	}
	return v.OrNil()
}
