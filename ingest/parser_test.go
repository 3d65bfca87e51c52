package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const sampleContent = "Чемпионат Калуги\n" +
	"\n" +
	"Вопрос 1:\n" +
	"Столица России\n" +
	"состоит из шести букв.\n" +
	"\n" +
	"Ответ:\n" +
	"Москва.\n" +
	"\n" +
	"Вопрос 2:\n" +
	"Столица Франции.\n" +
	"\n" +
	"Ответ:\n" +
	"Париж (столица Франции).\n"

func TestParsePairs(t *testing.T) {
	pairs := ParsePairs(sampleContent)
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}

	if pairs[0].Question != "Столица России состоит из шести букв." {
		t.Errorf("question lines not joined by spaces: %q", pairs[0].Question)
	}
	if pairs[0].Answer != "Москва" {
		t.Errorf("trailing character not stripped: %q", pairs[0].Answer)
	}
	if pairs[1].Answer != "Париж (столица Франции)" {
		t.Errorf("second answer = %q", pairs[1].Answer)
	}
}

func TestParsePairsSkipsMalformedBlocks(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    int
	}{
		{"empty input", "", 0},
		{"question without answer", "Вопрос 1:\nТекст\n", 0},
		{"answer block with one line", "Вопрос 1:\nТекст\n\nОтвет:\n", 0},
		{"question block with one line", "Вопрос 1:\n\nОтвет:\nМосква.\n", 0},
		{"unrelated blocks ignored", "Комментарий\nеще строка\n\nВопрос 1:\nТекст\n\nОтвет:\nМосква.\n", 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pairs := ParsePairs(tc.content)
			if len(pairs) != tc.want {
				t.Errorf("got %d pairs, want %d", len(pairs), tc.want)
			}
		})
	}
}

func TestParsePairsHandlesCRLF(t *testing.T) {
	content := "Вопрос 1:\r\nТекст\r\n\r\nОтвет:\r\nМосква.\r\n"
	pairs := ParsePairs(content)
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	if pairs[0].Answer != "Москва" {
		t.Errorf("answer = %q", pairs[0].Answer)
	}
}

func TestReadFileKOI8R(t *testing.T) {
	encoded, _, err := transform.String(charmap.KOI8R.NewEncoder(), sampleContent)
	if err != nil {
		t.Fatalf("encode sample: %v", err)
	}

	path := filepath.Join(t.TempDir(), "kaluga.txt")
	if err := os.WriteFile(path, []byte(encoded), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	content, err := ReadFile(path, "koi8-r")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if content != sampleContent {
		t.Errorf("KOI8-R round trip mismatch:\n%q\nwant\n%q", content, sampleContent)
	}
}

func TestReadFileUnknownCharset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.txt")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path, "ebcdic"); err == nil {
		t.Error("expected error for unsupported charset")
	}
}
