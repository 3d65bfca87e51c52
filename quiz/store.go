package quiz

import (
	"context"
	"errors"
)

var (
	// ErrNoSession is returned by SessionStore.Get when the user has not
	// started (or has cancelled) the game.
	ErrNoSession = errors.New("no session for user")
	// ErrQuestionNotFound is returned by QuestionBank.Get for an unknown id.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrBankEmpty is returned by QuestionBank.SampleRandom when the bank
	// holds no records.
	ErrBankEmpty = errors.New("question bank is empty")
)

// QuestionBank is the read-mostly store of question records. It is mutated
// only by the offline loader, never concurrently with live traffic.
type QuestionBank interface {
	// Insert stores a new record derived from the question text. When a
	// record with the same derived id already exists it is a no-op and
	// inserted is false; the existing record is never overwritten.
	Insert(ctx context.Context, questionText, fullAnswer string) (id string, inserted bool, err error)
	// Get returns the record for id or ErrQuestionNotFound.
	Get(ctx context.Context, id string) (QuestionRecord, error)
	// SampleRandom picks a question id uniformly over all known ids, or
	// returns ErrBankEmpty.
	SampleRandom(ctx context.Context) (string, error)
}

// SessionStore keeps one mutable Session per user.
type SessionStore interface {
	// Create sets the initial session for the user, overwriting any prior
	// session.
	Create(ctx context.Context, userID string) (Session, error)
	// Get returns the user's session or ErrNoSession.
	Get(ctx context.Context, userID string) (Session, error)
	// Update writes all mutable session fields in a single atomic write.
	// The engine serializes calls per user, so a whole-record write is a
	// safe field merge.
	Update(ctx context.Context, session Session) error
	// Delete removes the user's session. Deleting a missing session is
	// not an error.
	Delete(ctx context.Context, userID string) error
}
