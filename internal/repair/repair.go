// Package repair patches the malformed MOIN connection dump into Turtle that a
// strict parser accepts. It is a pure text-to-text transform: no I/O, no errors.
package repair

import (
	"regexp"
	"strings"
)

// DefaultPrefixLine is prepended to every repaired document. The parser needs a
// resolvable default prefix even when the file only uses named ones.
const DefaultPrefixLine = "@prefix : <urn:x-default:> ."

var (
	// bare http(s) token; trailing punctuation is stripped afterwards
	urlRegex = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `]+`)

	// number glued to the statement terminator, e.g. "12.5." or "7."
	numberTerminatorRegex = regexp.MustCompile(`(\d)\.$`)
)

// Stats reports what the structural repair did.
type Stats struct {
	Lines        int // lines in the repaired document
	BlocksOpened int // connect-to blocks that got a nested opening bracket
	BlocksClosed int // doubled closing brackets
	URLsEscaped  int
	BlankRemoved int
}

// Repair runs all repair steps in order with the MOIN vocabulary and returns
// the repaired document.
func Repair(raw string) string {
	out, _ := defaultEngine.Repair(raw)
	return out
}

// RepairWithStats is Repair plus counters for logging.
func RepairWithStats(raw string) (string, Stats) {
	return defaultEngine.Repair(raw)
}

// Repair runs all repair steps in order on raw.
func (e *Engine) Repair(raw string) (string, Stats) {
	var stats Stats

	text := normalizeBrackets(raw)
	lines := splitLines(text)
	lines = injectDefaultPrefix(lines)

	lines, stats.URLsEscaped = escapeURLs(lines)
	lines = separateNumericTerminators(lines)
	lines, stats.BlocksOpened, stats.BlocksClosed = e.nestConnections(lines)

	before := len(lines)
	lines = removeBlankLines(lines)
	stats.BlankRemoved = before - len(lines)
	stats.Lines = len(lines)

	return strings.Join(lines, "\n") + "\n", stats
}

// normalizeBrackets deletes the reification opener and turns the closer into a
// statement separator so the subject/predicate binds to what follows.
func normalizeBrackets(text string) string {
	text = strings.ReplaceAll(text, "<<", "")
	return strings.ReplaceAll(text, ">>", ";")
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func injectDefaultPrefix(lines []string) []string {
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == DefaultPrefixLine {
		return lines
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, DefaultPrefixLine)
	return append(out, lines...)
}

// escapeURLs wraps bare URLs in angle brackets. Tokens already delimited on
// either side, or sitting inside a string literal, are left alone.
func escapeURLs(lines []string) ([]string, int) {
	out := make([]string, len(lines))
	count := 0

	for i, line := range lines {
		matches := urlRegex.FindAllStringIndex(line, -1)
		if len(matches) == 0 {
			out[i] = line
			continue
		}

		var b strings.Builder
		last := 0
		for _, m := range matches {
			start, end := m[0], m[1]
			// trailing Turtle punctuation belongs to the statement, not the URL
			for end > start && strings.ContainsRune(".;,", rune(line[end-1])) {
				end--
			}
			if end == start {
				continue
			}
			if start > 0 && line[start-1] == '<' {
				continue
			}
			if end < len(line) && line[end] == '>' {
				continue
			}
			if insideLiteral(line, start) {
				continue
			}

			b.WriteString(line[last:start])
			b.WriteByte('<')
			b.WriteString(line[start:end])
			b.WriteByte('>')
			last = end
			count++
		}
		b.WriteString(line[last:])
		out[i] = b.String()
	}

	return out, count
}

// insideLiteral reports whether pos falls between an odd number of unescaped
// double quotes on the line.
func insideLiteral(line string, pos int) bool {
	quotes := 0
	for i := 0; i < pos; i++ {
		if line[i] == '"' && (i == 0 || line[i-1] != '\\') {
			quotes++
		}
	}
	return quotes%2 == 1
}

func separateNumericTerminators(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if !numberTerminatorRegex.MatchString(trimmed) || insideLiteral(trimmed, len(trimmed)-1) {
			out[i] = line
			continue
		}
		out[i] = numberTerminatorRegex.ReplaceAllString(trimmed, "$1 .")
	}
	return out
}

func removeBlankLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
