// Package redisstore backs the question bank and session store with redis,
// using the flat hash-per-record schema plus a set of known question ids.
package redisstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/korjavin/quizbot/quiz"
)

const (
	sessionKeyPrefix  = "session:"
	questionKeyPrefix = "question:"
	questionIDsKey    = "question_ids"
)

// Store owns the redis client and exposes the two stores backed by it.
type Store struct {
	client *redis.Client

	Bank     *Bank
	Sessions *Sessions
}

// New connects to redis by URL (redis://...) and verifies the connection.
func New(ctx context.Context, redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Store{
		client:   client,
		Bank:     &Bank{client: client},
		Sessions: &Sessions{client: client},
	}, nil
}

// Close releases the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Bank implements quiz.QuestionBank on redis hashes plus an id set.
type Bank struct {
	client *redis.Client
}

// Insert stores a question record unless its derived id is already in the
// id set. Ingestion is offline and single-writer, so a membership check
// followed by two writes is race-free here.
func (b *Bank) Insert(ctx context.Context, questionText, fullAnswer string) (string, bool, error) {
	record := quiz.NewQuestionRecord(questionText, fullAnswer)

	known, err := b.client.SIsMember(ctx, questionIDsKey, record.ID).Result()
	if err != nil {
		return "", false, fmt.Errorf("check question id: %w", err)
	}
	if known {
		return record.ID, false, nil
	}

	// The hash goes in before the id is registered: an insert
	// interrupted between the two leaves an unsampleable hash that the
	// next run completes, never a sampleable id with no record behind
	// it.
	err = b.client.HSet(ctx, questionKeyPrefix+record.ID, map[string]any{
		"question_text": record.Question,
		"full_answer":   record.FullAnswer,
		"clean_answer":  record.CleanAnswer,
	}).Err()
	if err != nil {
		return "", false, fmt.Errorf("store question %s: %w", record.ID, err)
	}

	if err := b.client.SAdd(ctx, questionIDsKey, record.ID).Err(); err != nil {
		return "", false, fmt.Errorf("register question id: %w", err)
	}
	return record.ID, true, nil
}

// Get returns the question record for id or quiz.ErrQuestionNotFound.
func (b *Bank) Get(ctx context.Context, id string) (quiz.QuestionRecord, error) {
	fields, err := b.client.HGetAll(ctx, questionKeyPrefix+id).Result()
	if err != nil {
		return quiz.QuestionRecord{}, fmt.Errorf("get question %s: %w", id, err)
	}
	if len(fields) == 0 {
		return quiz.QuestionRecord{}, quiz.ErrQuestionNotFound
	}
	return quiz.QuestionRecord{
		ID:          id,
		Question:    fields["question_text"],
		FullAnswer:  fields["full_answer"],
		CleanAnswer: fields["clean_answer"],
	}, nil
}

// SampleRandom picks a question id uniformly from the id set.
func (b *Bank) SampleRandom(ctx context.Context) (string, error) {
	id, err := b.client.SRandMember(ctx, questionIDsKey).Result()
	if err == redis.Nil {
		return "", quiz.ErrBankEmpty
	}
	if err != nil {
		return "", fmt.Errorf("sample question: %w", err)
	}
	return id, nil
}

// Sessions implements quiz.SessionStore, one hash per user.
type Sessions struct {
	client *redis.Client
}

// Create sets the initial session for the user, overwriting any prior one.
func (s *Sessions) Create(ctx context.Context, userID string) (quiz.Session, error) {
	session := quiz.NewSession(userID)
	if err := s.write(ctx, session); err != nil {
		return quiz.Session{}, fmt.Errorf("create session %s: %w", userID, err)
	}
	return session, nil
}

// Get returns the user's session or quiz.ErrNoSession.
func (s *Sessions) Get(ctx context.Context, userID string) (quiz.Session, error) {
	fields, err := s.client.HGetAll(ctx, sessionKeyPrefix+userID).Result()
	if err != nil {
		return quiz.Session{}, fmt.Errorf("get session %s: %w", userID, err)
	}
	if len(fields) == 0 {
		return quiz.Session{}, quiz.ErrNoSession
	}

	triesUsed, err := strconv.Atoi(fields["tries_used"])
	if err != nil {
		return quiz.Session{}, fmt.Errorf("session %s: bad tries_used %q", userID, fields["tries_used"])
	}
	score, err := strconv.Atoi(fields["score"])
	if err != nil {
		return quiz.Session{}, fmt.Errorf("session %s: bad score %q", userID, fields["score"])
	}

	return quiz.Session{
		UserID:            userID,
		CurrentQuestionID: fields["current_question_id"],
		TriesUsed:         triesUsed,
		Score:             score,
	}, nil
}

// Update writes all mutable session fields in a single HSET.
func (s *Sessions) Update(ctx context.Context, session quiz.Session) error {
	if err := s.write(ctx, session); err != nil {
		return fmt.Errorf("update session %s: %w", session.UserID, err)
	}
	return nil
}

// Delete removes the user's session. Deleting a missing session is a no-op.
func (s *Sessions) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", userID, err)
	}
	return nil
}

func (s *Sessions) write(ctx context.Context, session quiz.Session) error {
	return s.client.HSet(ctx, sessionKeyPrefix+session.UserID, map[string]any{
		"current_question_id": session.CurrentQuestionID,
		"tries_used":          session.TriesUsed,
		"score":               session.Score,
	}).Err()
}
