package graph

// Node is one position of a triple pattern: either a variable or a fixed term.
type Node struct {
	Var  string
	Term Term
}

// Var returns a variable node.
func Var(name string) Node { return Node{Var: name} }

// Fixed returns a node that only matches term.
func Fixed(term Term) Node { return Node{Term: term} }

func (n Node) isVar() bool { return n.Var != "" }

// Pattern is a triple pattern.
type Pattern struct {
	S, P, O Node
}

// Binding maps variable names to the terms they matched.
type Binding map[string]Term

// Select returns every binding that satisfies all patterns at once. Patterns
// are joined in the order given, so put the most selective first.
func (g *Graph) Select(patterns ...Pattern) []Binding {
	var results []Binding
	g.solve(patterns, Binding{}, &results)
	return results
}

func (g *Graph) solve(patterns []Pattern, b Binding, results *[]Binding) {
	if len(patterns) == 0 {
		out := make(Binding, len(b))
		for k, v := range b {
			out[k] = v
		}
		*results = append(*results, out)
		return
	}

	p := patterns[0]
	for _, idx := range g.candidates(p, b) {
		t := g.triples[idx]
		next, ok := extend(b, p, t)
		if !ok {
			continue
		}
		g.solve(patterns[1:], next, results)
	}
}

// candidates narrows the scan with the subject index when the subject is
// known, otherwise with the predicate index.
func (g *Graph) candidates(p Pattern, b Binding) []int {
	if s, ok := resolve(p.S, b); ok {
		return g.bySubject[s]
	}
	if pred, ok := resolve(p.P, b); ok {
		return g.byPredicate[pred]
	}
	all := make([]int, len(g.triples))
	for i := range all {
		all[i] = i
	}
	return all
}

func resolve(n Node, b Binding) (Term, bool) {
	if !n.isVar() {
		return n.Term, true
	}
	t, ok := b[n.Var]
	return t, ok
}

// extend returns b plus the bindings needed for t to match p, or false if it cannot.
func extend(b Binding, p Pattern, t Triple) (Binding, bool) {
	next := b
	copied := false

	for _, pair := range [3]struct {
		node Node
		term Term
	}{{p.S, t.S}, {p.P, t.P}, {p.O, t.O}} {
		if !pair.node.isVar() {
			if pair.node.Term != pair.term {
				return nil, false
			}
			continue
		}
		if bound, ok := next[pair.node.Var]; ok {
			if bound != pair.term {
				return nil, false
			}
			continue
		}
		if !copied {
			next = make(Binding, len(b)+3)
			for k, v := range b {
				next[k] = v
			}
			copied = true
		}
		next[pair.node.Var] = pair.term
	}

	return next, true
}
