// Package recovery repairs the structured text returned by the proposal
// service. The raw reply is untrusted: it routinely arrives wrapped in prose
// or code fences, with smart quotes, trailing commas, bare keys, or truncated
// mid-structure. Recovery runs an ordered pipeline of transforms and always
// returns a parseable proposal; the worst case is a well-formed empty one.
package recovery

import (
	"encoding/json"
	"regexp"
	"strings"
)

// NeutralScore replaces a missing or zero confidence score on an entry
const NeutralScore = 10

// corruptionThreshold is the heuristic count above which the first parse
// attempt is skipped and the text goes straight to surgical repair.
const corruptionThreshold = 6

// Entry is one proposed placement inside a proposal
type Entry struct {
	Worker  string `json:"worker"`
	Slot    string `json:"slot"`
	Segment string `json:"segment,omitempty"`
	Role    string `json:"role,omitempty"`
	Score   int    `json:"score,omitempty"`
}

// Proposal is the typed representation of an assignment plan recovered from
// raw service output
type Proposal struct {
	Day         string  `json:"day,omitempty"`
	Assignments []Entry `json:"assignments"`
}

// Empty reports whether the proposal carries no usable assignments
func (p *Proposal) Empty() bool {
	return p == nil || len(p.Assignments) == 0
}

// EmptyProposal returns the explicit "no assignments" payload
func EmptyProposal() *Proposal {
	return &Proposal{Assignments: []Entry{}}
}

// Pre-compiled patterns shared by the pipeline stages.
var (
	fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")

	duplicateCommaPattern = regexp.MustCompile(`,\s*,`)
	trailingCommaPattern  = regexp.MustCompile(`,\s*([}\]])`)
	leadingCommaPattern   = regexp.MustCompile(`([{\[])\s*,`)
	bareKeyPattern        = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_-]*)\s*:`)
	nullValuePattern      = regexp.MustCompile(`:\s*null\b`)

	emptyFieldRunPattern = regexp.MustCompile(`(?:"[^"]*"\s*:\s*""\s*,?\s*){3,}`)
	bareValuePattern     = regexp.MustCompile(`([:,[]\s*)([A-Za-z_][A-Za-z0-9_ -]*?)(\s*[,}\]])`)
	emptyObjectPattern   = regexp.MustCompile(`\{(?:\s*"[^"]*"\s*:\s*""\s*,?)+\s*\}`)
)

// Recover runs the full repair pipeline over raw service output. It never
// fails: unparseable input degrades to an empty proposal for the caller to
// reject. Already-valid text is decoded as-is before any rewrite stage runs:
// the rewrites are regex-based and not string-aware, so on a valid proposal
// whose string values happen to contain separator-like text they would do
// damage instead of repair.
func Recover(raw string) *Proposal {
	text := ExtractEnvelope(raw)
	if text == "" {
		return EmptyProposal()
	}

	if p, ok := parse(text); ok {
		return p
	}

	text = NormalizePunctuation(text)
	text = CleanStructure(text)

	if CorruptionScore(text) <= corruptionThreshold {
		if p, ok := parse(text); ok {
			return p
		}
	}

	if p, ok := parse(SurgicalRepair(text)); ok {
		return p
	}
	return EmptyProposal()
}

// ExtractEnvelope strips code fences and surrounding prose, isolating the
// substring between the first opening brace and the last closing brace. A
// bare top-level array is wrapped into the canonical object shape. Returns
// "" when no structure is present at all.
func ExtractEnvelope(s string) string {
	s = strings.TrimSpace(s)

	if m := fencePattern.FindStringSubmatch(s); len(m) > 1 {
		s = strings.TrimSpace(m[1])
	}

	braceStart := strings.Index(s, "{")
	bracketStart := strings.Index(s, "[")

	// Some replies root the assignment list directly in an array; when the
	// array opens first it owns the envelope.
	if bracketStart >= 0 && (braceStart < 0 || bracketStart < braceStart) {
		if end := strings.LastIndex(s, "]"); end > bracketStart {
			return `{"assignments": ` + s[bracketStart:end+1] + `}`
		}
	}

	if end := strings.LastIndex(s, "}"); braceStart >= 0 && end > braceStart {
		return s[braceStart : end+1]
	}
	return ""
}

// NormalizePunctuation replaces non-ASCII look-alikes for structural
// punctuation with their ASCII equivalents and rewrites single-quoted
// strings as double-quoted.
func NormalizePunctuation(s string) string {
	s = punctuationReplacer.Replace(s)
	return normalizeSingleQuotes(s)
}

var punctuationReplacer = strings.NewReplacer(
	"“", `"`, // left double quotation
	"”", `"`, // right double quotation
	"„", `"`, // double low-9 quotation
	"‘", "'", // left single quotation
	"’", "'", // right single quotation
	"‚", "'", // single low-9 quotation
	"，", ",", // fullwidth comma
	"、", ",", // ideographic comma
	"：", ":", // fullwidth colon
	"；", ",", // fullwidth semicolon
	"｛", "{", // fullwidth braces
	"｝", "}",
)

// normalizeSingleQuotes converts single-quoted string literals to
// double-quoted ones, leaving apostrophes inside double-quoted strings alone.
func normalizeSingleQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inDouble := false
	inSingle := false
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		switch {
		case r == '\\' && (inDouble || inSingle):
			b.WriteRune(r)
			escaped = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			b.WriteRune(r)
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			b.WriteRune('"')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanStructure removes separator noise and quotes bare property names.
// Null leaf values become empty strings so the decode step can apply the
// documented defaults. Each rewrite is idempotent on already-clean text.
func CleanStructure(s string) string {
	for {
		next := duplicateCommaPattern.ReplaceAllString(s, ",")
		if next == s {
			break
		}
		s = next
	}
	s = leadingCommaPattern.ReplaceAllString(s, "$1")
	s = trailingCommaPattern.ReplaceAllString(s, "$1")
	s = bareKeyPattern.ReplaceAllString(s, `$1"$2":`)
	s = nullValuePattern.ReplaceAllString(s, `: ""`)
	return s
}

// CorruptionScore counts patterns that indicate irrecoverable corruption:
// runs of three or more empty fields, clusters of bare identifiers standing
// where quoted values belong, and orphaned commas that survived cleanup.
func CorruptionScore(s string) int {
	n := 3 * len(emptyFieldRunPattern.FindAllString(s, -1))
	n += len(duplicateCommaPattern.FindAllString(s, -1))

	for _, m := range bareValuePattern.FindAllStringSubmatch(s, -1) {
		if !jsonKeyword(strings.TrimSpace(m[2])) {
			n++
		}
	}
	return n
}

func jsonKeyword(tok string) bool {
	return tok == "true" || tok == "false" || tok == "null"
}

// SurgicalRepair is the aggressive second rewrite pass: it quotes remaining
// bare value tokens, drops sub-objects whose fields are all empty, truncates
// to the last well-formed closing sequence, and re-runs structural cleanup.
func SurgicalRepair(s string) string {
	s = bareValuePattern.ReplaceAllStringFunc(s, func(m string) string {
		parts := bareValuePattern.FindStringSubmatch(m)
		tok := strings.TrimSpace(parts[2])
		if jsonKeyword(tok) {
			return m
		}
		return parts[1] + `"` + tok + `"` + parts[3]
	})

	s = emptyObjectPattern.ReplaceAllString(s, "")
	s = closeTruncated(s)
	return CleanStructure(s)
}

// closeTruncated balances a structure cut off mid-stream. If the text ever
// returns to depth zero it is truncated there; otherwise the missing closers
// (and a terminating quote, if a string was left open) are appended.
func closeTruncated(s string) string {
	var stack []byte
	inString := false
	escaped := false
	lastBalanced := -1

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					lastBalanced = i
				}
			}
		}
	}

	if len(stack) == 0 && !inString {
		if lastBalanced >= 0 {
			return s[:lastBalanced+1]
		}
		return s
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	// A dangling separator before the appended closers would re-break the
	// parse; cleanup handles it in the caller.
	return b.String()
}

// rawEntry tolerates the field spellings the service alternates between.
type rawEntry struct {
	Worker   string `json:"worker"`
	WorkerID string `json:"worker_id"`
	Slot     string `json:"slot"`
	SlotID   string `json:"slot_id"`
	Segment  string `json:"segment"`
	Role     string `json:"role"`
	Score    int    `json:"score"`
}

type rawProposal struct {
	Day         string     `json:"day"`
	Assignments []rawEntry `json:"assignments"`
	Entries     []rawEntry `json:"entries"`
}

// parse attempts to decode cleaned text into a proposal, applying the safe
// defaults for missing leaf values and dropping entries without a worker or
// slot reference.
func parse(text string) (*Proposal, bool) {
	var raw rawProposal
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, false
	}

	entries := raw.Assignments
	if len(entries) == 0 {
		entries = raw.Entries
	}

	p := &Proposal{Day: raw.Day, Assignments: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		worker := coalesce(e.Worker, e.WorkerID)
		slot := coalesce(e.Slot, e.SlotID)
		if worker == "" || slot == "" {
			continue
		}
		role := e.Role
		if role == "" {
			role = "Member"
		}
		score := e.Score
		if score == 0 {
			score = NeutralScore
		}
		p.Assignments = append(p.Assignments, Entry{
			Worker:  worker,
			Slot:    slot,
			Segment: e.Segment,
			Role:    role,
			Score:   score,
		})
	}
	return p, true
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
