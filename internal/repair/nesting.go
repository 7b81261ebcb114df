package repair

import (
	"fmt"
	"regexp"
	"strings"
)

// Vocabulary names the entity namespace and the connectsTo predicate as they
// appear in the source, in both short and fully-qualified spelling.
type Vocabulary struct {
	EntityPrefix   string // "moin"
	EntityIRI      string // "http://moin-project.org/data/"
	OntologyPrefix string // "moino"
	OntologyIRI    string // "http://moin-project.org/ontology/"
	ConnectsTo     string // local name of the predicate, "connectsTo"
}

// MOINVocabulary is the vocabulary of the MOIN connection dump.
var MOINVocabulary = Vocabulary{
	EntityPrefix:   "moin",
	EntityIRI:      "http://moin-project.org/data/",
	OntologyPrefix: "moino",
	OntologyIRI:    "http://moin-project.org/ontology/",
	ConnectsTo:     "connectsTo",
}

var defaultEngine = NewEngine(MOINVocabulary)

// Engine holds the compiled line recognizers for one vocabulary.
type Engine struct {
	opener *regexp.Regexp
}

// NewEngine compiles the connect-to recognizer for vocab.
func NewEngine(vocab Vocabulary) *Engine {
	pattern := fmt.Sprintf(`^(\s*(?:%s:\S+|<%s[^>\s]*>)\s+)(%s:%s|<%s%s>)`,
		regexp.QuoteMeta(vocab.EntityPrefix),
		regexp.QuoteMeta(vocab.EntityIRI),
		regexp.QuoteMeta(vocab.OntologyPrefix),
		regexp.QuoteMeta(vocab.ConnectsTo),
		regexp.QuoteMeta(vocab.OntologyIRI),
		regexp.QuoteMeta(vocab.ConnectsTo),
	)
	return &Engine{opener: regexp.MustCompile(pattern)}
}

type nestState int

const (
	stateIdle nestState = iota
	stateAwaitingClose
)

// nestConnections moves the trips that follow a connect-to assertion inside
// its target: "X connectsTo" becomes "X connectsTo [ connectsTo", and the
// block's closing "] ." becomes "]] .". One forward pass, one state bit; a
// second opener inside an open block is passed through.
func (e *Engine) nestConnections(lines []string) ([]string, int, int) {
	out := make([]string, 0, len(lines))
	state := stateIdle
	opened, closed := 0, 0

	for i, line := range lines {
		last := i == len(lines)-1

		switch state {
		case stateIdle:
			nested, ok := e.openBlock(line)
			if !ok {
				break
			}
			line = nested
			opened++
			state = stateAwaitingClose

			// a block written on a single line ends where it starts
			if last || endsStatement(line) {
				line = closeBlock(line)
				closed++
				state = stateIdle
			}

		case stateAwaitingClose:
			if strings.TrimSpace(line) == "] ." || last {
				line = closeBlock(line)
				closed++
				state = stateIdle
			}
		}

		out = append(out, line)
	}

	return out, opened, closed
}

// openBlock inserts the nested opening marker after the connectsTo predicate.
// Lines whose predicate is already followed by "[" are left alone so that
// repairing twice equals repairing once.
func (e *Engine) openBlock(line string) (string, bool) {
	loc := e.opener.FindStringSubmatchIndex(line)
	if loc == nil {
		return line, false
	}

	predStart, predEnd := loc[4], loc[5]
	rest := line[predEnd:]
	// the short form must end the token: connectsToStation is another predicate
	if !strings.HasSuffix(line[predStart:predEnd], ">") && rest != "" && !strings.ContainsAny(rest[:1], " \t[") {
		return line, false
	}
	if strings.HasPrefix(strings.TrimLeft(rest, " \t"), "[") {
		return line, false
	}

	predicate := line[predStart:predEnd]
	return line[:predEnd] + " [ " + predicate + rest, true
}

func endsStatement(line string) bool {
	return strings.HasSuffix(strings.TrimRight(line, " \t"), ".")
}

// closeBlock balances the bracket opened by openBlock on this line.
func closeBlock(line string) string {
	trimmed := strings.TrimRight(line, " \t")
	switch {
	case strings.HasSuffix(trimmed, "] ."):
		return strings.TrimSuffix(trimmed, "] .") + "]] ."
	case strings.HasSuffix(trimmed, "]"):
		return trimmed + "] ."
	case strings.HasSuffix(trimmed, "."):
		return strings.TrimRight(strings.TrimSuffix(trimmed, "."), " \t") + " ] ."
	case strings.TrimSpace(trimmed) == "":
		return "] ."
	default:
		return trimmed + " ] ."
	}
}
