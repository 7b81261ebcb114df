package graph

import (
	"sort"
	"testing"
)

func TestSelectJoinsThroughBlankNodes(t *testing.T) {
	ns := DefaultNamespaces()
	connects := ns.Ontology("connectsTo")
	hasTrip := ns.Ontology("hasTrip")
	duration := ns.Ontology("duration")

	g := New(
		Triple{ns.Entity("A"), connects, Blank("c1")},
		Triple{Blank("c1"), connects, ns.Entity("B")},
		Triple{Blank("c1"), hasTrip, Blank("t1")},
		Triple{Blank("t1"), duration, Literal("PT5M")},
		Triple{ns.Entity("B"), connects, Blank("c2")},
		Triple{Blank("c2"), connects, ns.Entity("C")},
		Triple{Blank("c2"), hasTrip, Blank("t2")},
		Triple{Blank("t2"), duration, Literal("PT7M")},
	)

	got := g.Select(
		Pattern{Var("src"), Fixed(connects), Var("c")},
		Pattern{Var("c"), Fixed(connects), Var("dst")},
		Pattern{Var("c"), Fixed(hasTrip), Var("trip")},
		Pattern{Var("trip"), Fixed(duration), Var("d")},
	)

	if len(got) != 2 {
		t.Fatalf("expected 2 bindings, got %d: %v", len(got), got)
	}

	var pairs []string
	for _, b := range got {
		pairs = append(pairs, b["src"].Value+">"+b["dst"].Value+"="+b["d"].Value)
	}
	sort.Strings(pairs)

	want := []string{
		ns.EntityIRI + "A>" + ns.EntityIRI + "B=PT5M",
		ns.EntityIRI + "B>" + ns.EntityIRI + "C=PT7M",
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("binding %d = %q, want %q", i, pairs[i], want[i])
		}
	}
}

func TestSelectNoMatch(t *testing.T) {
	g := New(Triple{IRI("urn:a"), IRI("urn:p"), Literal("x")})

	if got := g.Select(Pattern{Var("s"), Fixed(IRI("urn:q")), Var("o")}); len(got) != 0 {
		t.Errorf("expected no bindings, got %v", got)
	}
}

func TestSelectRepeatedVariable(t *testing.T) {
	g := New(
		Triple{IRI("urn:a"), IRI("urn:p"), IRI("urn:a")},
		Triple{IRI("urn:a"), IRI("urn:p"), IRI("urn:b")},
	)

	got := g.Select(Pattern{Var("x"), Fixed(IRI("urn:p")), Var("x")})
	if len(got) != 1 || got[0]["x"] != IRI("urn:a") {
		t.Errorf("expected only the self-loop to match, got %v", got)
	}
}

func TestNewDropsDuplicates(t *testing.T) {
	tr := Triple{IRI("urn:a"), IRI("urn:p"), Literal("x")}
	g := New(tr, tr, tr)

	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
	if subjects := g.Subjects(); len(subjects) != 1 {
		t.Errorf("Subjects() = %v", subjects)
	}
}
