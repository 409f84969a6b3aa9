package security

import (
	"regexp"
	"strings"
)

var reSelectKeyword = regexp.MustCompile(`(?i)\bselect\b`)

// ExtractQuery pulls the candidate read statement out of free oracle text.
// The candidate starts at the first whole-word SELECT and runs to the first
// ';' (excluded) or the end of the text. Without a terminator a closing
// code fence also ends it. ok is false when the text has no SELECT.
func ExtractQuery(text string) (string, bool) {
	loc := reSelectKeyword.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	candidate := text[loc[0]:]

	if end := strings.IndexByte(candidate, ';'); end != -1 {
		candidate = candidate[:end]
	} else if fence := strings.Index(candidate, "```"); fence != -1 {
		candidate = candidate[:fence]
	}

	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", false
	}
	return candidate, true
}
