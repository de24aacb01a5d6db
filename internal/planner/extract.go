package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel failures for the extractor. ErrNoJSON means the text contains no
// object or array delimiters at all; ErrUnrepairable means a payload was
// located but no repair stage yields valid JSON.
var (
	ErrNoJSON       = errors.New("no JSON payload found in model output")
	ErrUnrepairable = errors.New("JSON payload could not be repaired")
)

// Shape selects which delimiters bound the expected payload.
type Shape int

const (
	// ShapeObject expects {...} (the weekly-plan path).
	ShapeObject Shape = iota
	// ShapeArray expects [...] (the alternatives path).
	ShapeArray
)

// RepairOutcome tags how much work it took to obtain parseable JSON. It
// drives logging and control flow only and is never persisted.
type RepairOutcome int

const (
	// RepairNone: the normalized text parsed directly.
	RepairNone RepairOutcome = iota
	// RepairApplied: slicing and/or syntactic repairs were needed.
	RepairApplied
	// RepairFailed: every repair stage was exhausted without success.
	RepairFailed
)

func (o RepairOutcome) String() string {
	switch o {
	case RepairNone:
		return "direct"
	case RepairApplied:
		return "repaired"
	default:
		return "failed"
	}
}

// repairStage is one named syntactic repair, applied in declared order.
type repairStage struct {
	name  string
	apply func(string) string
}

// repairStages lists the repairs in escalation order. The bare-value
// quoting pass is deliberately last: it is the most aggressive and can
// mangle text that a lighter repair would have fixed.
var repairStages = []repairStage{
	{"strip_trailing_commas", stripTrailingCommas},
	{"quote_bare_keys", quoteBareKeys},
	{"convert_single_quotes", convertSingleQuotes},
	{"quote_bare_values", quoteBareValues},
}

// ExtractJSON locates the JSON payload inside normalized text and coerces
// it into parseable form. Attempts run in strict order, short-circuiting on
// the first candidate that validates: direct parse, delimiter slice, then
// each repair stage in sequence. Text that is already valid JSON is
// returned byte-for-byte, so a direct parse and an extracted parse of valid
// input always agree.
func ExtractJSON(text string, shape Shape) ([]byte, RepairOutcome, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, RepairFailed, fmt.Errorf("%w: empty text", ErrNoJSON)
	}

	if json.Valid([]byte(trimmed)) {
		return []byte(trimmed), RepairNone, nil
	}

	open, closing := delimitersFor(shape)
	slice, ok := sliceDelimited(trimmed, open, closing)
	if !ok {
		return nil, RepairFailed, fmt.Errorf("%w: no %q...%q region", ErrNoJSON, open, closing)
	}

	if json.Valid([]byte(slice)) {
		return []byte(slice), RepairApplied, nil
	}

	candidate := slice
	for _, stage := range repairStages {
		candidate = stage.apply(candidate)
		if json.Valid([]byte(candidate)) {
			return []byte(candidate), RepairApplied, nil
		}
	}

	return nil, RepairFailed, fmt.Errorf("%w: all repair stages exhausted", ErrUnrepairable)
}

func delimitersFor(shape Shape) (byte, byte) {
	if shape == ShapeArray {
		return '[', ']'
	}
	return '{', '}'
}

// sliceDelimited cuts the text between the first opening and last closing
// delimiter, discarding any prose the model wrapped around the payload.
func sliceDelimited(s string, open, closing byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, closing)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// stripTrailingCommas removes commas that directly precede a closing } or ].
func stripTrailingCommas(s string) string {
	for {
		changed := false
		var b strings.Builder
		b.Grow(len(s))
		for i := 0; i < len(s); i++ {
			if s[i] == ',' {
				j := i + 1
				for j < len(s) && isSpace(s[j]) {
					j++
				}
				if j < len(s) && (s[j] == '}' || s[j] == ']') {
					changed = true
					continue
				}
			}
			b.WriteByte(s[i])
		}
		if !changed {
			return s
		}
		s = b.String()
	}
}

// bareKeyPattern matches an unquoted identifier used as an object key:
// preceded by { or , and immediately followed by a colon. The letter class
// is Unicode-aware because the expected day keys are accented Italian words.
var bareKeyPattern = regexp.MustCompile(`([{,]\s*)([\p{L}_][\p{L}\p{N}_]*)\s*:`)

func quoteBareKeys(s string) string {
	return bareKeyPattern.ReplaceAllString(s, `${1}"${2}":`)
}

// convertSingleQuotes rewrites single-quoted string tokens as double-quoted
// ones. Apostrophes inside double-quoted strings (common in Italian food
// names) are left untouched.
func convertSingleQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inDouble := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '"' && (i == 0 || s[i-1] != '\\') {
			inDouble = !inDouble
			b.WriteByte(ch)
			continue
		}
		if ch == '\'' && !inDouble {
			if j := strings.IndexByte(s[i+1:], '\''); j >= 0 {
				b.WriteString(strconv.Quote(s[i+1 : i+1+j]))
				i += j + 1
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// quoteBareValues is the aggressive final pass: any scalar value token that
// is not a number, true, false, null, or already a string/object/array gets
// wrapped in double quotes.
func quoteBareValues(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '"' && (i == 0 || s[i-1] != '\\') {
			inString = !inString
		}
		b.WriteByte(ch)
		if inString || ch != ':' {
			continue
		}
		j := i + 1
		for j < len(s) && isSpace(s[j]) {
			b.WriteByte(s[j])
			j++
		}
		if j >= len(s) || s[j] == '"' || s[j] == '{' || s[j] == '[' {
			i = j - 1
			continue
		}
		k := j
		for k < len(s) && s[k] != ',' && s[k] != '}' && s[k] != ']' && s[k] != '\n' {
			k++
		}
		token := strings.TrimSpace(s[j:k])
		if token == "" || isJSONScalar(token) {
			b.WriteString(s[j:k])
		} else {
			b.WriteString(strconv.Quote(token))
		}
		i = k - 1
	}
	return b.String()
}

func isJSONScalar(token string) bool {
	switch token {
	case "true", "false", "null":
		return true
	}
	_, err := strconv.ParseFloat(token, 64)
	return err == nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
