package quiz

import "strings"

// cutset of characters trimmed from both ends of an answer: quotation
// marks, spaces and periods.
const answerCutset = "\"'. "

// NormalizeForMatching turns raw answer text into its canonical comparable
// form. The same function is applied to the expected answer at ingestion
// time and to user input at match time; comparing strings produced by
// anything else is a bug.
func NormalizeForMatching(text string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(text), answerCutset))
}

// DeriveCleanAnswer builds the canonical expected answer from the full
// display answer. Source answers often carry parenthetical alternatives or
// trailing commentary after a period, so the shorter of the pre-period and
// pre-parenthesis prefixes is the most specific literal answer.
func DeriveCleanAnswer(fullAnswer string) string {
	answer := NormalizeForMatching(fullAnswer)

	beforePeriod, _, _ := strings.Cut(answer, ".")
	beforeParen, _, _ := strings.Cut(answer, "(")

	// Both candidates are prefixes of the same string, so byte length
	// orders them the same way rune length would.
	shorter := beforePeriod
	if len(beforeParen) < len(shorter) {
		shorter = beforeParen
	}

	return NormalizeForMatching(shorter)
}
