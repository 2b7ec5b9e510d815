package answerstore_test

import (
	"errors"
	"testing"

	answerstore "github.com/dalemusser/stackit/internal/app/store/answers"
	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const body = "<p>This answer is comfortably longer than twenty characters.</p>"

func TestStore_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := answerstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	qid := primitive.NewObjectID()
	author := primitive.NewObjectID()

	first, err := store.Create(ctx, qid, author, body)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !first.IsActive || first.IsAccepted || first.VoteScore() != 0 {
		t.Errorf("unexpected initial state: %+v", first)
	}
	second, _ := store.Create(ctx, qid, author, body)
	third, _ := store.Create(ctx, qid, author, body)
	_, _ = store.Create(ctx, primitive.NewObjectID(), author, body)

	if err := store.SoftDelete(ctx, first.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if _, err := store.MarkAccepted(ctx, third.ID); err != nil {
		t.Fatalf("MarkAccepted failed: %v", err)
	}

	list, err := store.ListByQuestion(ctx, qid)
	if err != nil {
		t.Fatalf("ListByQuestion failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 active answers, got %d", len(list))
	}
	if list[0].ID != third.ID || list[1].ID != second.ID {
		t.Errorf("expected accepted answer first, got %s then %s", list[0].ID.Hex(), list[1].ID.Hex())
	}

	if _, err := store.GetActive(ctx, first.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for soft-deleted answer, got %v", err)
	}
}

func TestStore_UpdateContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := answerstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := store.Create(ctx, primitive.NewObjectID(), primitive.NewObjectID(), body)
	got, err := store.UpdateContent(ctx, a.ID, "<p>Edited content that is long enough.</p>")
	if err != nil {
		t.Fatalf("UpdateContent failed: %v", err)
	}
	if got.Content != "<p>Edited content that is long enough.</p>" {
		t.Errorf("content = %q", got.Content)
	}

	_ = store.SoftDelete(ctx, a.ID)
	if _, err := store.UpdateContent(ctx, a.ID, body); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound editing a deleted answer, got %v", err)
	}
}

func TestStore_ClearAcceptedExcept(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := answerstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	qid := primitive.NewObjectID()
	author := primitive.NewObjectID()
	a, _ := store.Create(ctx, qid, author, body)
	b, _ := store.Create(ctx, qid, author, body)
	_, _ = store.MarkAccepted(ctx, a.ID)
	_, _ = store.MarkAccepted(ctx, b.ID)

	if err := store.ClearAcceptedExcept(ctx, qid, b.ID); err != nil {
		t.Fatalf("ClearAcceptedExcept failed: %v", err)
	}
	ids, err := store.AcceptedIDs(ctx, qid)
	if err != nil {
		t.Fatalf("AcceptedIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != b.ID {
		t.Errorf("accepted = %v, want only %s", ids, b.ID.Hex())
	}
}

func TestStore_HardDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := answerstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := store.Create(ctx, primitive.NewObjectID(), primitive.NewObjectID(), body)
	if n, err := store.HardDelete(ctx, a.ID); err != nil || n != 1 {
		t.Fatalf("HardDelete = %d, %v", n, err)
	}
	if _, err := store.GetByID(ctx, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound after hard delete, got %v", err)
	}
	if n, _ := store.HardDelete(ctx, a.ID); n != 0 {
		t.Errorf("second HardDelete removed %d", n)
	}
}
