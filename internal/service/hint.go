package service

import "strings"

// RenderHint selects how a result set is summarised.
type RenderHint int

const (
	HintGeneric RenderHint = iota
	HintCheapest
	HintTopRated
)

func (h RenderHint) String() string {
	switch h {
	case HintCheapest:
		return "cheapest"
	case HintTopRated:
		return "top_rated"
	default:
		return "generic"
	}
}

var cheapestKeywords = []string{
	"cheapest", "lowest cost", "least expensive", "lowest price", "most affordable",
}

var topRatedKeywords = []string{
	"best rating", "highest rating", "highest rated", "best rated", "top rated",
}

// ClassifyHint derives the render hint from the question text.
// Cost phrasing wins when a question mentions both.
func ClassifyHint(question string) RenderHint {
	lower := strings.ToLower(question)

	for _, kw := range cheapestKeywords {
		if strings.Contains(lower, kw) {
			return HintCheapest
		}
	}
	for _, kw := range topRatedKeywords {
		if strings.Contains(lower, kw) {
			return HintTopRated
		}
	}
	return HintGeneric
}
