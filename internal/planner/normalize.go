package planner

import "strings"

// Normalize strips the formatting artifacts models habitually wrap around
// JSON output. The stages run in a fixed order and are each idempotent:
// code-fence removal, smart-quote normalization, whitespace trim. The
// result may still be invalid JSON; Normalize never fails.
func Normalize(raw string) string {
	s := stripCodeFences(raw)
	s = normalizeSmartQuotes(s)
	return strings.TrimSpace(s)
}

// stripCodeFences removes Markdown fence markers, both labeled and bare.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	return strings.ReplaceAll(s, "```", "")
}

// smartQuoteReplacer maps typographic quotes to their ASCII forms. Double
// quotes become ", single quotes become ' (the extractor may later convert
// those to double quotes inside string values).
var smartQuoteReplacer = strings.NewReplacer(
	"“", `"`, // left double
	"”", `"`, // right double
	"„", `"`, // low double
	"‘", "'", // left single
	"’", "'", // right single
	"‚", "'", // low single
)

func normalizeSmartQuotes(s string) string {
	return smartQuoteReplacer.Replace(s)
}
