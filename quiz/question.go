package quiz

import (
	"crypto/md5"
	"encoding/hex"
)

// QuestionRecord is an immutable stored question/answer pair. CleanAnswer is
// precomputed with DeriveCleanAnswer at ingestion time.
type QuestionRecord struct {
	ID          string
	Question    string
	FullAnswer  string
	CleanAnswer string
}

// QuestionID derives the bank identifier for a question purely from its
// text, so re-ingesting identical text dedups to the same record.
func QuestionID(questionText string) string {
	sum := md5.Sum([]byte(questionText))
	return hex.EncodeToString(sum[:])
}

// NewQuestionRecord builds a record with its derived id and canonical
// answer filled in.
func NewQuestionRecord(questionText, fullAnswer string) QuestionRecord {
	return QuestionRecord{
		ID:          QuestionID(questionText),
		Question:    questionText,
		FullAnswer:  fullAnswer,
		CleanAnswer: DeriveCleanAnswer(fullAnswer),
	}
}
