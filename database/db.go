package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/korjavin/quizbot/quiz"
)

// DB owns the sqlite connection and exposes the two stores backed by it.
type DB struct {
	conn *sql.DB

	Bank     *Bank
	Sessions *Sessions
}

// New opens (or creates) the sqlite database and initializes tables.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer; funneling everything through one
	// connection avoids SQLITE_BUSY under concurrent session updates.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err = createTables(db); err != nil {
		return nil, err
	}

	return &DB{
		conn:     db,
		Bank:     &Bank{conn: db},
		Sessions: &Sessions{conn: db},
	}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			question_text TEXT NOT NULL,
			full_answer TEXT NOT NULL,
			clean_answer TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			user_id TEXT PRIMARY KEY,
			current_question_id TEXT NOT NULL DEFAULT '',
			tries_used INTEGER NOT NULL DEFAULT 1,
			score INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

// Bank implements quiz.QuestionBank on the questions table.
type Bank struct {
	conn *sql.DB
}

// Insert stores a question record unless its derived id is already known.
func (b *Bank) Insert(ctx context.Context, questionText, fullAnswer string) (string, bool, error) {
	record := quiz.NewQuestionRecord(questionText, fullAnswer)

	res, err := b.conn.ExecContext(ctx,
		"INSERT OR IGNORE INTO questions (id, question_text, full_answer, clean_answer) VALUES (?, ?, ?, ?)",
		record.ID, record.Question, record.FullAnswer, record.CleanAnswer,
	)
	if err != nil {
		return "", false, fmt.Errorf("insert question: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return "", false, err
	}
	return record.ID, affected > 0, nil
}

// Get returns the question record for id or quiz.ErrQuestionNotFound.
func (b *Bank) Get(ctx context.Context, id string) (quiz.QuestionRecord, error) {
	record := quiz.QuestionRecord{ID: id}
	err := b.conn.QueryRowContext(ctx,
		"SELECT question_text, full_answer, clean_answer FROM questions WHERE id = ?", id,
	).Scan(&record.Question, &record.FullAnswer, &record.CleanAnswer)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.QuestionRecord{}, quiz.ErrQuestionNotFound
	}
	if err != nil {
		return quiz.QuestionRecord{}, fmt.Errorf("get question %s: %w", id, err)
	}
	return record, nil
}

// SampleRandom picks a question id uniformly over all stored questions.
func (b *Bank) SampleRandom(ctx context.Context) (string, error) {
	var id string
	err := b.conn.QueryRowContext(ctx,
		"SELECT id FROM questions ORDER BY RANDOM() LIMIT 1",
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", quiz.ErrBankEmpty
	}
	if err != nil {
		return "", fmt.Errorf("sample question: %w", err)
	}
	return id, nil
}

// Sessions implements quiz.SessionStore on the sessions table.
type Sessions struct {
	conn *sql.DB
}

// Create sets the initial session for the user, overwriting any prior one.
func (s *Sessions) Create(ctx context.Context, userID string) (quiz.Session, error) {
	session := quiz.NewSession(userID)
	_, err := s.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO sessions (user_id, current_question_id, tries_used, score) VALUES (?, ?, ?, ?)",
		session.UserID, session.CurrentQuestionID, session.TriesUsed, session.Score,
	)
	if err != nil {
		return quiz.Session{}, fmt.Errorf("create session %s: %w", userID, err)
	}
	return session, nil
}

// Get returns the user's session or quiz.ErrNoSession.
func (s *Sessions) Get(ctx context.Context, userID string) (quiz.Session, error) {
	session := quiz.Session{UserID: userID}
	err := s.conn.QueryRowContext(ctx,
		"SELECT current_question_id, tries_used, score FROM sessions WHERE user_id = ?", userID,
	).Scan(&session.CurrentQuestionID, &session.TriesUsed, &session.Score)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.Session{}, quiz.ErrNoSession
	}
	if err != nil {
		return quiz.Session{}, fmt.Errorf("get session %s: %w", userID, err)
	}
	return session, nil
}

// Update writes all mutable session fields in one statement.
func (s *Sessions) Update(ctx context.Context, session quiz.Session) error {
	_, err := s.conn.ExecContext(ctx,
		"UPDATE sessions SET current_question_id = ?, tries_used = ?, score = ? WHERE user_id = ?",
		session.CurrentQuestionID, session.TriesUsed, session.Score, session.UserID,
	)
	if err != nil {
		return fmt.Errorf("update session %s: %w", session.UserID, err)
	}
	return nil
}

// Delete removes the user's session. Deleting a missing session is a no-op.
func (s *Sessions) Delete(ctx context.Context, userID string) error {
	_, err := s.conn.ExecContext(ctx, "DELETE FROM sessions WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", userID, err)
	}
	return nil
}
