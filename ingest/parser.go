// Package ingest parses plain-text question archives and loads them into a
// question bank.
package ingest

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	questionMarker = "Вопрос"
	answerMarker   = "Ответ:"
)

// Pair is one question/answer pair extracted from a source file.
type Pair struct {
	Question string
	Answer   string
}

// ParsePairs extracts question/answer pairs from file content. Blocks are
// separated by a blank line; a question block starts with the question
// marker and contributes its remaining lines joined by spaces, an answer
// block starts with the answer marker and contributes its second line with
// the trailing character stripped. Pairs are matched in file order;
// malformed or unmatched blocks are skipped.
func ParsePairs(content string) []Pair {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var pairs []Pair
	var question, answer string
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(block, "\n")
		switch {
		case strings.HasPrefix(lines[0], questionMarker):
			if len(lines) > 1 {
				question = strings.Join(lines[1:], " ")
			}
		case strings.HasPrefix(lines[0], answerMarker):
			if len(lines) > 1 {
				answer = trimLastRune(lines[1])
			}
		}
		if question != "" && answer != "" {
			pairs = append(pairs, Pair{Question: question, Answer: answer})
			question, answer = "", ""
		}
	}
	return pairs
}

func trimLastRune(s string) string {
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

// ReadFile reads a source file and decodes it from the given charset into
// UTF-8. The historical archives are KOI8-R encoded.
func ReadFile(path, charset string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	decoder, err := decoderFor(charset)
	if err != nil {
		return "", err
	}

	var r io.Reader = f
	if decoder != nil {
		r = transform.NewReader(f, decoder)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(content), nil
}

func decoderFor(charset string) (transform.Transformer, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "koi8-r", "koi8r":
		return charmap.KOI8R.NewDecoder(), nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported charset: %s", charset)
	}
}
