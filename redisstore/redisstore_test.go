package redisstore

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/korjavin/quizbot/quiz"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := New(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store, mr
}

func TestInsertIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id, inserted, err := store.Bank.Insert(ctx, "Вопрос про Москву", "Москва.")
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if !inserted {
		t.Fatal("first insert reported inserted=false")
	}

	again, inserted, err := store.Bank.Insert(ctx, "Вопрос про Москву", "Совсем другой ответ")
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if inserted {
		t.Error("duplicate insert reported inserted=true")
	}
	if again != id {
		t.Errorf("duplicate insert returned different id: %s vs %s", again, id)
	}

	record, err := store.Bank.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.FullAnswer != "Москва." || record.CleanAnswer != "москва" {
		t.Errorf("record overwritten by duplicate insert: %+v", record)
	}
}

func TestInsertCompletesAfterPartialWrite(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	// An insert that died between writing the hash and registering the
	// id leaves the hash behind but no set member. Re-running the load
	// must finish the job, not report a duplicate.
	record := quiz.NewQuestionRecord("Вопрос про Байкал", "Байкал.")
	mr.HSet(questionKeyPrefix+record.ID,
		"question_text", record.Question,
		"full_answer", record.FullAnswer,
		"clean_answer", record.CleanAnswer,
	)

	id, inserted, err := store.Bank.Insert(ctx, "Вопрос про Байкал", "Байкал.")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !inserted {
		t.Error("re-ingestion of an incomplete record reported inserted=false")
	}
	if id != record.ID {
		t.Errorf("id = %s, want %s", id, record.ID)
	}

	sampled, err := store.Bank.SampleRandom(ctx)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if sampled != record.ID {
		t.Errorf("sampled %s, want %s", sampled, record.ID)
	}
	if _, err := store.Bank.Get(ctx, sampled); err != nil {
		t.Errorf("sampled id has no record behind it: %v", err)
	}
}

func TestSampleRandomEmptyBank(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.Bank.SampleRandom(context.Background()); !errors.Is(err, quiz.ErrBankEmpty) {
		t.Errorf("expected ErrBankEmpty, got %v", err)
	}
}

func TestGetUnknownQuestion(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.Bank.Get(context.Background(), "deadbeef"); !errors.Is(err, quiz.ErrQuestionNotFound) {
		t.Errorf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Sessions.Get(ctx, "u1"); !errors.Is(err, quiz.ErrNoSession) {
		t.Fatalf("expected ErrNoSession before create, got %v", err)
	}

	session, err := store.Sessions.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.TriesUsed != 1 || session.Score != 0 || session.CurrentQuestionID != "" {
		t.Errorf("unexpected initial session: %+v", session)
	}

	session.CurrentQuestionID = "q1"
	session.TriesUsed = 2
	session.Score = -1
	if err := store.Sessions.Update(ctx, session); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.Sessions.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != session {
		t.Errorf("got %+v, want %+v", got, session)
	}

	if err := store.Sessions.Delete(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Sessions.Get(ctx, "u1"); !errors.Is(err, quiz.ErrNoSession) {
		t.Errorf("expected ErrNoSession after delete, got %v", err)
	}
}
