// Package graph parses repaired Turtle into an immutable in-memory triple set
// and answers conjunctive pattern queries over it.
package graph

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/knakk/rdf"
)

// TermKind distinguishes the three RDF term kinds.
type TermKind int

const (
	KindIRI TermKind = iota
	KindBlank
	KindLiteral
)

// Term is an RDF term. For literals Value is the lexical form.
type Term struct {
	Kind  TermKind
	Value string
}

// IRI builds an IRI term.
func IRI(value string) Term { return Term{Kind: KindIRI, Value: value} }

// Literal builds a literal term.
func Literal(value string) Term { return Term{Kind: KindLiteral, Value: value} }

// Blank builds a blank node term.
func Blank(id string) Term { return Term{Kind: KindBlank, Value: id} }

func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	default:
		return strconv.Quote(t.Value)
	}
}

// Triple is a single (subject, predicate, object) statement.
type Triple struct {
	S, P, O Term
}

// Graph is a set of triples. It is built once by Parse and read-only afterwards.
type Graph struct {
	triples     []Triple
	bySubject   map[Term][]int
	byPredicate map[Term][]int
}

// ErrRepairIncomplete marks a document the repair step did not make parseable.
var ErrRepairIncomplete = errors.New("repaired document still violates the grammar")

// ParseError carries the parser diagnostic, positioned in the repaired text.
type ParseError struct {
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Message)
	default:
		return "parse error: " + e.Message
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRepairIncomplete) match any parse failure.
func (e *ParseError) Is(target error) bool { return target == ErrRepairIncomplete }

// positionRegex matches the "line:col: message" and "line:col message" forms
// of decoder errors.
var positionRegex = regexp.MustCompile(`^(\d+):(\d+):? (.*)$`)

// Parse binds the namespace prefixes and parses repaired Turtle into a Graph.
// Declarations inside the document take precedence over the bindings.
func Parse(repaired string, ns Namespaces) (*Graph, error) {
	if pe := checkBrackets(repaired); pe != nil {
		return nil, pe
	}

	header := ns.prefixDeclarations()
	doc := strings.Join(header, "\n") + "\n" + repaired

	dec := rdf.NewTripleDecoder(strings.NewReader(doc), rdf.Turtle)

	g := newGraph()
	for {
		tr, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			pe := newParseError(err, len(header))
			if pe.Line == 0 {
				pe.Line = locateLine(doc, err.Error(), len(header))
			}
			return nil, pe
		}

		triple, err := convertTriple(tr)
		if err != nil {
			return nil, &ParseError{Message: err.Error(), Err: err}
		}
		g.add(triple)
	}

	return g, nil
}

func newParseError(err error, headerLines int) *ParseError {
	pe := &ParseError{Message: readableTokens(err.Error()), Err: err}
	m := positionRegex.FindStringSubmatch(err.Error())
	if m == nil {
		return pe
	}
	line, _ := strconv.Atoi(m[1])
	col, _ := strconv.Atoi(m[2])
	// shift back past the injected prefix lines
	if line > headerLines {
		line -= headerLines
	}
	pe.Line = line
	pe.Column = col
	pe.Message = readableTokens(m[3])
	return pe
}

// locateLine finds the line an unpositioned decoder error belongs to: the
// shortest line prefix of doc that fails with the same message. Returns 0 if
// no prefix reproduces it.
func locateLine(doc, msg string, headerLines int) int {
	lines := strings.SplitAfter(doc, "\n")
	fails := func(n int) bool {
		err := firstError(strings.Join(lines[:n], ""))
		return err != nil && err.Error() == msg
	}
	if !fails(len(lines)) {
		return 0
	}

	lo, hi := 1, len(lines)
	for lo < hi {
		mid := (lo + hi) / 2
		if fails(mid) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if lo <= headerLines {
		return lo
	}
	return lo - headerLines
}

func firstError(doc string) error {
	dec := rdf.NewTripleDecoder(strings.NewReader(doc), rdf.Turtle)
	for {
		_, err := dec.Decode()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func convertTriple(tr rdf.Triple) (Triple, error) {
	s, err := convertTerm(tr.Subj)
	if err != nil {
		return Triple{}, err
	}
	p, err := convertTerm(tr.Pred)
	if err != nil {
		return Triple{}, err
	}
	o, err := convertTerm(tr.Obj)
	if err != nil {
		return Triple{}, err
	}
	return Triple{S: s, P: p, O: o}, nil
}

func convertTerm(t rdf.Term) (Term, error) {
	switch t.Type() {
	case rdf.TermIRI:
		return IRI(t.String()), nil
	case rdf.TermBlank:
		return Blank(strings.TrimPrefix(t.String(), "_:")), nil
	case rdf.TermLiteral:
		return Literal(t.String()), nil
	default:
		return Term{}, fmt.Errorf("unsupported term %q", t.String())
	}
}

func newGraph() *Graph {
	return &Graph{
		bySubject:   make(map[Term][]int),
		byPredicate: make(map[Term][]int),
	}
}

// New builds a graph from triples, dropping duplicates. Useful for fixtures.
func New(triples ...Triple) *Graph {
	g := newGraph()
	for _, t := range triples {
		g.add(t)
	}
	return g
}

func (g *Graph) add(t Triple) {
	for _, i := range g.bySubject[t.S] {
		if g.triples[i] == t {
			return
		}
	}
	idx := len(g.triples)
	g.triples = append(g.triples, t)
	g.bySubject[t.S] = append(g.bySubject[t.S], idx)
	g.byPredicate[t.P] = append(g.byPredicate[t.P], idx)
}

// Len returns the number of distinct triples.
func (g *Graph) Len() int { return len(g.triples) }

// Triples returns a copy of all triples.
func (g *Graph) Triples() []Triple {
	out := make([]Triple, len(g.triples))
	copy(out, g.triples)
	return out
}

// Subjects returns each distinct subject once, in first-seen order.
func (g *Graph) Subjects() []Term {
	seen := make(map[Term]bool, len(g.bySubject))
	out := make([]Term, 0, len(g.bySubject))
	for _, t := range g.triples {
		if !seen[t.S] {
			seen[t.S] = true
			out = append(out, t.S)
		}
	}
	return out
}

// Objects returns the objects of all triples with the given subject and predicate.
func (g *Graph) Objects(subject, predicate Term) []Term {
	var out []Term
	for _, i := range g.bySubject[subject] {
		if g.triples[i].P == predicate {
			out = append(out, g.triples[i].O)
		}
	}
	return out
}
