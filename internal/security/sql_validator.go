package security

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrQueryRejected wraps every validation failure.
var ErrQueryRejected = errors.New("query rejected")

// SanitizedQuery is a single read-only statement that passed QueryValidator.
type SanitizedQuery string

func (q SanitizedQuery) String() string { return string(q) }

// AllowedRelations are the only tables generated SQL may read.
var AllowedRelations = []string{"providers", "ratings"}

var (
	reComment = regexp.MustCompile(`--|/\*`)

	// write, DDL, privilege and session verbs; matched after literals are masked
	reWriteVerb = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|truncate|grant|revoke|copy|merge|call|do|vacuum|reindex|cluster|lock|listen|notify|set|reset|prepare|execute|deallocate|discard|comment|refresh|into)\b`)

	sqlDangerousPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bpg_sleep\w*\s*\(`),
		regexp.MustCompile(`(?i)\bpg_read_\w+\s*\(`),
		regexp.MustCompile(`(?i)\bpg_ls_\w+\s*\(`),
		regexp.MustCompile(`(?i)\bpg_stat_file\s*\(`),
		regexp.MustCompile(`(?i)\bpg_(terminate|cancel)_backend\s*\(`),
		regexp.MustCompile(`(?i)\bpg_reload_conf\s*\(`),
		regexp.MustCompile(`(?i)\blo_\w+\s*\(`),
		regexp.MustCompile(`(?i)\bdblink\w*\s*\(`),
		regexp.MustCompile(`(?i)\bset_config\s*\(`),
		regexp.MustCompile(`(?i)\b(nextval|setval)\s*\(`),
	}

	reTrailingLimit = regexp.MustCompile(`(?is)\blimit\s+(\d+|all)(\s+offset\s+\d+)?\s*$`)
	reTrailingFetch = regexp.MustCompile(`(?is)\bfetch\s+(?:first|next)\s+(?:(\d+)\s+)?rows?\s+only\s*$`)
	reLeadingSelect = regexp.MustCompile(`(?i)^select\b`)
)

// QueryValidator hardens generated SQL before it reaches the store.
type QueryValidator struct {
	maxRows   int
	allowList bool
	relations map[string]bool
}

// NewQueryValidator returns a validator that clamps results to maxRows.
// With allowList set, only AllowedRelations may appear after FROM or JOIN.
func NewQueryValidator(maxRows int, allowList bool) *QueryValidator {
	rel := make(map[string]bool, len(AllowedRelations))
	for _, r := range AllowedRelations {
		rel[r] = true
	}
	return &QueryValidator{maxRows: maxRows, allowList: allowList, relations: rel}
}

// Validate checks a candidate statement and returns it with a bounded LIMIT.
func (v *QueryValidator) Validate(sql string) (SanitizedQuery, error) {
	trimmed := strings.TrimSpace(sql)
	trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty statement", ErrQueryRejected)
	}
	if !reLeadingSelect.MatchString(trimmed) {
		return "", fmt.Errorf("%w: only SELECT statements are allowed", ErrQueryRejected)
	}

	masked, err := maskQuoted(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQueryRejected, err)
	}
	if strings.Contains(masked, ";") {
		return "", fmt.Errorf("%w: multiple statements", ErrQueryRejected)
	}
	if reComment.MatchString(masked) {
		return "", fmt.Errorf("%w: comments are not allowed", ErrQueryRejected)
	}
	if m := reWriteVerb.FindString(masked); m != "" {
		return "", fmt.Errorf("%w: disallowed keyword %q", ErrQueryRejected, strings.ToUpper(m))
	}
	for _, pattern := range sqlDangerousPatterns {
		if pattern.MatchString(masked) {
			return "", fmt.Errorf("%w: disallowed function call", ErrQueryRejected)
		}
	}

	if v.allowList {
		for _, rel := range referencedRelations(tokenize(masked)) {
			if !v.relations[rel] {
				return "", fmt.Errorf("%w: relation %q is not queryable", ErrQueryRejected, rel)
			}
		}
	}

	return SanitizedQuery(v.boundLimit(trimmed)), nil
}

// boundLimit appends a LIMIT, or clamps a trailing LIMIT or
// FETCH FIRST n ROWS ONLY that exceeds the ceiling.
func (v *QueryValidator) boundLimit(sql string) string {
	if v.maxRows <= 0 {
		return sql
	}
	ceiling := strconv.Itoa(v.maxRows)
	if m := reTrailingFetch.FindStringSubmatchIndex(sql); m != nil {
		if m[2] == -1 {
			// FETCH FIRST ROW ONLY
			return sql
		}
		return v.clamp(sql, m[2], m[3], ceiling)
	}
	if m := reTrailingLimit.FindStringSubmatchIndex(sql); m != nil {
		return v.clamp(sql, m[2], m[3], ceiling)
	}
	return sql + " LIMIT " + ceiling
}

// clamp replaces the row count at sql[start:end] when it is over the ceiling
// or not a number (LIMIT ALL).
func (v *QueryValidator) clamp(sql string, start, end int, ceiling string) string {
	if n, err := strconv.Atoi(sql[start:end]); err == nil && n <= v.maxRows {
		return sql
	}
	return sql[:start] + ceiling + sql[end:]
}

// maskQuoted prepares sql for lexical checks. String literal contents
// become spaces, and quoted identifiers lose their quotes with any
// non-identifier byte turned into '_', so "pg_sleep"(1) reads as pg_sleep(1)
// and AS "'" cannot open a literal. Escape strings (E'..'), Unicode escapes
// (U&'..', U&"..") and dollar quoting change how quotes nest and are
// refused outright.
func maskQuoted(sql string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(sql))
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch c {
		case '\'':
			if escapePrefixed(sql, i) {
				return "", errors.New("escape string literals are not allowed")
			}
			if unicodePrefixed(sql, i) {
				return "", errors.New("unicode escape literals are not allowed")
			}
			end := closingQuote(sql, i)
			if end == -1 {
				return "", errors.New("unterminated string literal")
			}
			sb.WriteByte('\'')
			sb.WriteString(strings.Repeat(" ", end-i-1))
			sb.WriteByte('\'')
			i = end
		case '"':
			if unicodePrefixed(sql, i) {
				return "", errors.New("unicode escape identifiers are not allowed")
			}
			end := closingQuote(sql, i)
			if end == -1 {
				return "", errors.New("unterminated quoted identifier")
			}
			for j := i + 1; j < end; j++ {
				if isIdentPart(sql[j]) && sql[j] != '$' {
					sb.WriteByte(sql[j])
				} else {
					sb.WriteByte('_')
				}
			}
			i = end
		case '$':
			// a$b is an identifier; $1 and $tag$ are not
			if i == 0 || !isIdentPart(sql[i-1]) {
				return "", errors.New("dollar quoting and parameters are not allowed")
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}

// closingQuote returns the index of the quote closing the one at open,
// skipping doubled quotes, or -1.
func closingQuote(sql string, open int) int {
	q := sql[open]
	for j := open + 1; j < len(sql); j++ {
		if sql[j] != q {
			continue
		}
		if j+1 < len(sql) && sql[j+1] == q {
			j++
			continue
		}
		return j
	}
	return -1
}

// escapePrefixed reports E'...' where E stands alone as a token.
func escapePrefixed(sql string, quote int) bool {
	if quote < 1 || (sql[quote-1] != 'e' && sql[quote-1] != 'E') {
		return false
	}
	return quote < 2 || !isIdentPart(sql[quote-2])
}

// unicodePrefixed reports U&'...' and U&"...".
func unicodePrefixed(sql string, quote int) bool {
	if quote < 2 || sql[quote-1] != '&' || (sql[quote-2] != 'u' && sql[quote-2] != 'U') {
		return false
	}
	return quote < 3 || !isIdentPart(sql[quote-3])
}

type token struct {
	text  string
	ident bool
}

func tokenize(sql string) []token {
	var out []token
	for i := 0; i < len(sql); {
		c := sql[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\'':
			j := strings.IndexByte(sql[i+1:], '\'')
			if j == -1 {
				return out
			}
			out = append(out, token{text: "''"})
			i += j + 2
		case isIdentStart(c) || c == '"':
			j := i
			for j < len(sql) && (isIdentPart(sql[j]) || sql[j] == '.' || sql[j] == '"') {
				j++
			}
			out = append(out, token{text: sql[i:j], ident: true})
			i = j
		default:
			out = append(out, token{text: string(c)})
			i++
		}
	}
	return out
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '$' || (c >= '0' && c <= '9')
}

var clauseEnd = map[string]bool{
	"where": true, "group": true, "order": true, "limit": true, "offset": true,
	"having": true, "join": true, "inner": true, "left": true, "right": true,
	"full": true, "cross": true, "natural": true, "on": true, "using": true,
	"union": true, "intersect": true, "except": true, "window": true, "fetch": true,
	"for": true,
}

// referencedRelations lists table names that follow FROM or JOIN in query
// scope. FROM inside function calls such as EXTRACT(YEAR FROM x) is skipped.
func referencedRelations(tokens []token) []string {
	var rels []string
	// one entry per open paren: true when it opens a subquery
	scope := []bool{true}
	inQuery := func() bool { return scope[len(scope)-1] }

	lower := func(i int) string {
		if i < 0 || i >= len(tokens) {
			return ""
		}
		return strings.ToLower(tokens[i].text)
	}

	for i := 0; i < len(tokens); i++ {
		switch t := lower(i); t {
		case "(":
			next := lower(i + 1)
			scope = append(scope, next == "select" || next == "with")
		case ")":
			if len(scope) > 1 {
				scope = scope[:len(scope)-1]
			}
		case "from", "join":
			if !inQuery() {
				continue
			}
			i = collectRelations(tokens, i+1, t == "from", lower, &rels) - 1
		}
	}
	return rels
}

// collectRelations reads one relation (JOIN) or a comma list (FROM) starting
// at i and returns the index where scanning should resume.
func collectRelations(tokens []token, i int, list bool, lower func(int) string, rels *[]string) int {
	for i < len(tokens) {
		for lower(i) == "lateral" || lower(i) == "only" {
			i++
		}
		if lower(i) == "(" {
			// derived table: the caller's scan handles its contents
			return i
		}
		if i < len(tokens) && tokens[i].ident {
			*rels = append(*rels, normalizeRelation(tokens[i].text))
			i++
		}
		if !list {
			return i
		}
		// skip alias tokens up to the next list item or clause boundary
		for i < len(tokens) {
			t := lower(i)
			if t == "," {
				i++
				break
			}
			if t == ")" || t == "(" || clauseEnd[t] {
				return i
			}
			i++
		}
		if i >= len(tokens) || lower(i-1) != "," {
			return i
		}
	}
	return i
}

func normalizeRelation(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, `"`, ""))
	return strings.TrimPrefix(name, "public.")
}
