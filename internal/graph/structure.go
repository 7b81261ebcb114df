package graph

import (
	"regexp"
	"strconv"
)

type position struct {
	line, col int
}

// checkBrackets verifies that property-list brackets balance. The decoder
// tolerates a stray "]" before a terminator and a "[" left open at end of
// input, which are exactly the shapes a broken nesting repair leaves behind.
// Brackets inside string literals, IRIs and comments are ignored.
func checkBrackets(text string) *ParseError {
	var open []position
	line, col := 1, 0

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			line, col = line+1, 0
			continue
		}
		col++

		switch r {
		case '\\':
			if i+1 < len(runes) && runes[i+1] != '\n' {
				i++
				col++
			}
		case '#':
			for i+1 < len(runes) && runes[i+1] != '\n' {
				i++
			}
		case '<':
			for i+1 < len(runes) && runes[i+1] != '\n' {
				i++
				col++
				if runes[i] == '>' {
					break
				}
			}
		case '"', '\'':
			i, line, col = skipString(runes, i, line, col)
		case '[':
			open = append(open, position{line, col})
		case ']':
			if len(open) == 0 {
				return &ParseError{Line: line, Column: col, Message: `unexpected "]" with no open "["`, Err: ErrRepairIncomplete}
			}
			open = open[:len(open)-1]
		}
	}

	if len(open) > 0 {
		p := open[len(open)-1]
		return &ParseError{Line: p.line, Column: p.col, Message: `"[" is never closed`, Err: ErrRepairIncomplete}
	}
	return nil
}

// skipString advances past the literal whose opening quote is at runes[i] and
// returns the index of its closing quote with the updated position. Short
// literals end at the line break if unterminated; the decoder reports those.
func skipString(runes []rune, i, line, col int) (int, int, int) {
	quote := runes[i]
	long := i+2 < len(runes) && runes[i+1] == quote && runes[i+2] == quote
	if long {
		i += 2
		col += 2
	}

	for i+1 < len(runes) {
		i++
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes) && runes[i+1] != '\n':
			i++
			col += 2
		case r == '\n':
			if !long {
				return i - 1, line, col
			}
			line, col = line+1, 0
		case r == quote && !long:
			return i, line, col + 1
		case r == quote && long && i+2 < len(runes) && runes[i+1] == quote && runes[i+2] == quote:
			return i + 2, line, col + 3
		default:
			col++
		}
	}
	return i, line, col
}

// tokenKinds names the decoder's token kinds, which its messages report by
// number, in declaration order.
var tokenKinds = []string{
	"end of input", "end of line", "illegal token",
	"IRI", "relative IRI", "blank node",
	"literal", "long literal", "integer", "double", "decimal", "boolean",
	`"@"`, "language tag", `"^^"`,
	`"."`, `";"`, `","`, `"a"`,
	"@prefix", "prefix label", "prefixed name", "@base", "PREFIX", "BASE",
	`"[]"`, `"["`, `"]"`, `"("`, `")"`,
}

var tokenNumberRegex = regexp.MustCompile(`\b(got|unexpected) (\d+)\b`)

// readableTokens rewrites "got 20" and "unexpected 27" with token names.
func readableTokens(msg string) string {
	return tokenNumberRegex.ReplaceAllStringFunc(msg, func(m string) string {
		sub := tokenNumberRegex.FindStringSubmatch(m)
		n, err := strconv.Atoi(sub[2])
		if err != nil || n < 0 || n >= len(tokenKinds) {
			return m
		}
		return sub[1] + " " + tokenKinds[n]
	})
}
