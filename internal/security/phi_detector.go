package security

import (
	"regexp"
	"strings"
)

var phiPatterns = map[string]*regexp.Regexp{
	"ssn":           regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	"date of birth": regexp.MustCompile(`(?i)\b(dob|date\s+of\s+birth|born\s+on)\b\s*:?\s*\d{1,4}[/-]\d{1,2}[/-]\d{1,4}`),
	"mrn":           regexp.MustCompile(`(?i)\b(mrn|medical\s+record\s+(number|no\.?|#))\s*:?\s*[a-z0-9-]{4,}`),
}

// phiPatternOrder keeps Detect deterministic.
var phiPatternOrder = []string{"ssn", "date of birth", "mrn"}

// PHIDetector flags personal health identifiers typed into a question.
// Hospital cost questions never need them, so they are refused rather
// than forwarded to a third-party oracle.
type PHIDetector struct {
	keywords []string
	disabled bool
}

// NewDisabledPHIDetector returns a detector that never matches.
func NewDisabledPHIDetector() *PHIDetector {
	return &PHIDetector{disabled: true}
}

func NewPHIDetector(keywords []string) *PHIDetector {
	lower := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(strings.ToLower(k)); k != "" {
			lower = append(lower, k)
		}
	}
	return &PHIDetector{keywords: lower}
}

// Detect returns true and what matched when the text carries PHI.
func (d *PHIDetector) Detect(text string) (bool, string) {
	if d.disabled {
		return false, ""
	}
	for _, name := range phiPatternOrder {
		if phiPatterns[name].MatchString(text) {
			return true, name
		}
	}
	lower := strings.ToLower(text)
	for _, kw := range d.keywords {
		if strings.Contains(lower, kw) {
			return true, kw
		}
	}
	return false, ""
}
