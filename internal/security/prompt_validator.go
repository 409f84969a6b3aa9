package security

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const MaxQuestionLength = 2000

// injectionPatterns catch attempts to override the system contract or pull
// the contract text back out.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(the\s+)?(previous|prior|above)\s+(instructions|rules)`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(the\s+)?(previous|prior|above)\s+(instructions|rules)`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?(the\s+)?(previous|prior|above)\s+(instructions|rules)`),
	regexp.MustCompile(`(?i)override\s+(all\s+)?(the\s+)?(previous|prior|above)\s+(instructions|rules)`),
	regexp.MustCompile(`(?i)new\s+(context|instructions)\s*:`),
	regexp.MustCompile(`(?i)change\s+context\s*:`),
	regexp.MustCompile(`(?i)instead\s+of\s+the\s+above`),
	regexp.MustCompile(`(?i)(reveal|print|repeat|show)\s+(me\s+)?(your|the)\s+system\s+prompt`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+`),
	regexp.MustCompile(`(?i)\b(drop|truncate|alter)\s+table\b|\bdelete\s+from\b|\binsert\s+into\b`),
}

// PromptValidator screens questions before they reach the oracle.
type PromptValidator struct {
	maxLength int
}

func NewPromptValidator(maxLength int) *PromptValidator {
	if maxLength <= 0 {
		maxLength = MaxQuestionLength
	}
	return &PromptValidator{maxLength: maxLength}
}

// ValidationResult contains validation outcome
type ValidationResult struct {
	Valid   bool
	Message string
}

// Validate checks a question for size and injection phrasing.
func (v *PromptValidator) Validate(question string) ValidationResult {
	if strings.TrimSpace(question) == "" {
		return ValidationResult{Valid: false, Message: "question cannot be empty"}
	}

	if n := utf8.RuneCountInString(question); n > v.maxLength {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("question too long: %d chars (max %d)", n, v.maxLength),
		}
	}

	for _, pattern := range injectionPatterns {
		if pattern.MatchString(question) {
			return ValidationResult{
				Valid:   false,
				Message: "question contains instructions that cannot be processed",
			}
		}
	}

	return ValidationResult{Valid: true, Message: "ok"}
}
