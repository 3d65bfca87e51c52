package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/korjavin/quizbot/quiz"
)

// FileReport is the per-file outcome of a load run.
type FileReport struct {
	Path  string
	Found int
	Added int
}

// Report sums up a load run. Duplicates counts questions whose id was
// already in the bank; those are not errors.
type Report struct {
	Files      []FileReport
	Found      int
	Added      int
	Duplicates int
}

// LoadDir recursively reads every file under dir, parses question/answer
// pairs and inserts them into the bank. Unreadable files are logged and
// skipped; a failing bank insert aborts the run because it means the store
// is down, not that the input is bad.
func LoadDir(ctx context.Context, bank quiz.QuestionBank, dir, charset string, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var report Report
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		content, err := ReadFile(path, charset)
		if err != nil {
			logger.Warn("ingest_file_unreadable", "path", path, "error", err.Error())
			return nil
		}

		pairs := ParsePairs(content)
		fileReport := FileReport{Path: path, Found: len(pairs)}

		for _, pair := range pairs {
			_, inserted, err := bank.Insert(ctx, pair.Question, pair.Answer)
			if err != nil {
				return fmt.Errorf("insert question from %s: %w", path, err)
			}
			if inserted {
				fileReport.Added++
			} else {
				report.Duplicates++
			}
		}

		logger.Info("ingest_file_done", "path", path,
			"found", fileReport.Found, "added", fileReport.Added)

		report.Files = append(report.Files, fileReport)
		report.Found += fileReport.Found
		report.Added += fileReport.Added
		return nil
	})
	if err != nil {
		return report, err
	}

	logger.Info("ingest_done", "files", len(report.Files),
		"found", report.Found, "added", report.Added, "duplicates", report.Duplicates)
	return report, nil
}
