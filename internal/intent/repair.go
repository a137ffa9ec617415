package intent

import (
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
)

// RepairPass is one pure text transform applied to a malformed model answer.
type RepairPass struct {
	Name  string
	Apply func(string) string
}

const scoreFieldName = "intentScore"

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unquotedKey   = regexp.MustCompile(`([{,])\s*([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// RepairPasses is the ordered normalization ladder. Parsing is attempted
// before the first pass and after each one.
var RepairPasses = []RepairPass{
	{Name: "strip-fences", Apply: StripFences},
	{Name: "collapse-whitespace", Apply: CollapseWhitespace},
	{Name: "quote-keys", Apply: QuoteKeys},
	{Name: "restore-opening-brace", Apply: RestoreOpeningBrace},
	{Name: "balance-braces", Apply: BalanceBraces},
	{Name: "drop-trailing-commas", Apply: DropTrailingCommas},
}

// Normalize runs the repair ladder and returns the first text that is valid
// JSON, the name of the last pass applied ("" when no pass was needed) and
// whether a valid text was reached. Valid input is returned unchanged.
func Normalize(text string) (string, string, bool) {
	if json.Valid([]byte(text)) {
		return text, "", true
	}

	current := text
	for _, pass := range RepairPasses {
		current = pass.Apply(current)
		if json.Valid([]byte(current)) {
			return current, pass.Name, true
		}
	}
	return current, "", false
}

// StripFences removes a Markdown code fence around the answer.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```JSON"):
		s = s[len("```JSON"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// CollapseWhitespace folds every whitespace run, line breaks included, into one space.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// QuoteKeys wraps bare object keys in double quotes.
func QuoteKeys(s string) string {
	return unquotedKey.ReplaceAllString(s, `$1"$2":`)
}

// RestoreOpeningBrace rebuilds the object start when the answer begins in the
// middle of the object, i.e. the intentScore field shows up before any '{'.
func RestoreOpeningBrace(s string) string {
	field := strings.Index(s, scoreFieldName)
	if field < 0 {
		return s
	}
	if brace := strings.Index(s, "{"); brace >= 0 && brace < field {
		return s
	}
	rest := strings.TrimPrefix(s[field+len(scoreFieldName):], `"`)
	return `{"` + scoreFieldName + `"` + rest
}

// BalanceBraces appends or prepends curly braces until the counts match.
func BalanceBraces(s string) string {
	open := strings.Count(s, "{")
	closing := strings.Count(s, "}")
	switch {
	case open > closing:
		return s + strings.Repeat("}", open-closing)
	case closing > open:
		return strings.Repeat("{", closing-open) + s
	default:
		return s
	}
}

// DropTrailingCommas removes commas directly before a closing brace or bracket.
func DropTrailingCommas(s string) string {
	return trailingComma.ReplaceAllString(s, "$1")
}
