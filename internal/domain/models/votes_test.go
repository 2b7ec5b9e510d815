package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestVotes_Score(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	tests := []struct {
		name  string
		votes Votes
		want  int
	}{
		{name: "empty", votes: Votes{}, want: 0},
		{name: "one up", votes: Votes{Upvoters: []primitive.ObjectID{a}}, want: 1},
		{name: "one down", votes: Votes{Downvoters: []primitive.ObjectID{a}}, want: -1},
		{name: "mixed", votes: Votes{Upvoters: []primitive.ObjectID{a, b}, Downvoters: []primitive.ObjectID{c}}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.votes.Score(); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVotes_VoteOf(t *testing.T) {
	up, down, none := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	v := Votes{Upvoters: []primitive.ObjectID{up}, Downvoters: []primitive.ObjectID{down}}

	if got := v.VoteOf(up); got != VoteUp {
		t.Errorf("VoteOf(up) = %q, want %q", got, VoteUp)
	}
	if got := v.VoteOf(down); got != VoteDown {
		t.Errorf("VoteOf(down) = %q, want %q", got, VoteDown)
	}
	if got := v.VoteOf(none); got != "" {
		t.Errorf("VoteOf(none) = %q, want empty", got)
	}
}

func TestIsValidVote(t *testing.T) {
	for _, dir := range []string{"up", "down", "none"} {
		if !IsValidVote(dir) {
			t.Errorf("IsValidVote(%q) = false, want true", dir)
		}
	}
	for _, dir := range []string{"", "UP", "sideways"} {
		if IsValidVote(dir) {
			t.Errorf("IsValidVote(%q) = true, want false", dir)
		}
	}
}

func TestQuestion_DerivedFields(t *testing.T) {
	q := Question{
		Answers: []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()},
		Votes:   Votes{Downvoters: []primitive.ObjectID{primitive.NewObjectID()}},
	}
	if q.AnswerCount() != 2 {
		t.Errorf("AnswerCount() = %d, want 2", q.AnswerCount())
	}
	if q.VoteScore() != -1 {
		t.Errorf("VoteScore() = %d, want -1", q.VoteScore())
	}
}

func TestQuestion_VotesInlineInBSON(t *testing.T) {
	voter := primitive.NewObjectID()
	q := Question{ID: primitive.NewObjectID(), Votes: Votes{Upvoters: []primitive.ObjectID{voter}}}

	raw, err := bson.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := doc["upvoters"]; !ok {
		t.Error("expected upvoters at top level of the document")
	}
	if _, ok := doc["votes"]; ok {
		t.Error("did not expect a nested votes document")
	}
}

func TestIsValidNotificationType(t *testing.T) {
	for _, typ := range []string{NotifyAnswer, NotifyComment, NotifyMention, NotifyVote, NotifyAccept} {
		if !IsValidNotificationType(typ) {
			t.Errorf("IsValidNotificationType(%q) = false", typ)
		}
	}
	if IsValidNotificationType("like") {
		t.Error("IsValidNotificationType(\"like\") = true")
	}
}
