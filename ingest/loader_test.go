package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/korjavin/quizbot/quiz"
)

type fakeBank struct {
	records map[string]quiz.QuestionRecord
}

func newFakeBank() *fakeBank {
	return &fakeBank{records: make(map[string]quiz.QuestionRecord)}
}

func (f *fakeBank) Insert(_ context.Context, questionText, fullAnswer string) (string, bool, error) {
	record := quiz.NewQuestionRecord(questionText, fullAnswer)
	if _, ok := f.records[record.ID]; ok {
		return record.ID, false, nil
	}
	f.records[record.ID] = record
	return record.ID, true, nil
}

func (f *fakeBank) Get(_ context.Context, id string) (quiz.QuestionRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return quiz.QuestionRecord{}, quiz.ErrQuestionNotFound
	}
	return record, nil
}

func (f *fakeBank) SampleRandom(_ context.Context) (string, error) {
	for id := range f.records {
		return id, nil
	}
	return "", quiz.ErrBankEmpty
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.txt",
		"Вопрос 1:\nПервый вопрос\n\nОтвет:\nМосква.\n\nВопрос 2:\nВторой вопрос\n\nОтвет:\nПариж.\n")

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Same question again plus a new one; the duplicate must be a no-op.
	writeFile(t, sub, "two.txt",
		"Вопрос 1:\nПервый вопрос\n\nОтвет:\nМосква.\n\nВопрос 3:\nТретий вопрос\n\nОтвет:\nБайкал.\n")

	bank := newFakeBank()
	report, err := LoadDir(context.Background(), bank, dir, "utf-8", nil)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	if report.Found != 4 {
		t.Errorf("Found = %d, want 4", report.Found)
	}
	if report.Added != 3 {
		t.Errorf("Added = %d, want 3", report.Added)
	}
	if report.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", report.Duplicates)
	}
	if len(report.Files) != 2 {
		t.Errorf("Files = %d, want 2", len(report.Files))
	}
	if len(bank.records) != 3 {
		t.Errorf("bank holds %d records, want 3", len(bank.records))
	}

	// Re-running the whole load changes nothing.
	again, err := LoadDir(context.Background(), bank, dir, "utf-8", nil)
	if err != nil {
		t.Fatalf("second LoadDir: %v", err)
	}
	if again.Added != 0 || again.Duplicates != 4 {
		t.Errorf("second run Added = %d, Duplicates = %d; want 0 and 4", again.Added, again.Duplicates)
	}
}

func TestLoadDirPrecomputesCleanAnswer(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.txt",
		"Вопрос 1:\nСтолица Франции\n\nОтвет:\n\"Париж (столица Франции)\".\n")

	bank := newFakeBank()
	if _, err := LoadDir(context.Background(), bank, dir, "utf-8", nil); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	id, err := bank.SampleRandom(context.Background())
	if err != nil {
		t.Fatalf("bank empty after load: %v", err)
	}
	record, err := bank.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if record.CleanAnswer != "париж" {
		t.Errorf("CleanAnswer = %q, want %q", record.CleanAnswer, "париж")
	}
}
