package extract

import (
	"testing"

	"github.com/dominic0df/2023-amse/internal/graph"
	"github.com/dominic0df/2023-amse/internal/repair"
)

var ns = graph.DefaultNamespaces()

func tr(s, p, o graph.Term) graph.Triple { return graph.Triple{S: s, P: p, O: o} }

// fixture: Bremerhaven connects to Marl with two trips; Marl has its own
// block to Dorsten with one trip that must not leak into Bremerhaven's rows.
func fixtureGraph() *graph.Graph {
	connects := ns.Ontology("connectsTo")
	hasTrip := ns.Ontology("hasTrip")
	duration := ns.Ontology("duration")
	transport := ns.Ontology("transportType")

	return graph.New(
		tr(ns.Entity("Bremerhaven"), connects, graph.Blank("b1")),
		tr(graph.Blank("b1"), connects, ns.Entity("Marl")),
		tr(graph.Blank("b1"), hasTrip, graph.Blank("t1")),
		tr(graph.Blank("t1"), duration, graph.Literal("PT322M")),
		tr(graph.Blank("t1"), transport, ns.Ontology("Car")),
		tr(graph.Blank("b1"), hasTrip, graph.Blank("t2")),
		tr(graph.Blank("t2"), duration, graph.Literal("PT9134.0S")),
		tr(graph.Blank("t2"), transport, ns.Ontology("Train")),
		tr(graph.Blank("t2"), ns.Ontology("drivingDistance"), graph.Literal("412.3")),

		tr(ns.Entity("Marl"), connects, graph.Blank("b2")),
		tr(graph.Blank("b2"), connects, ns.Entity("Dorsten")),
		tr(graph.Blank("b2"), hasTrip, graph.Blank("t3")),
		tr(graph.Blank("t3"), duration, graph.Literal("PT12M")),
		tr(graph.Blank("t3"), transport, ns.Ontology("Bus")),
	)
}

func TestConnectionsNoCrossProduct(t *testing.T) {
	rows := Connections(fixtureGraph(), ns)

	var fromBremerhaven []ConnectionRow
	for _, r := range rows {
		if r.Source == ns.EntityIRI+"Bremerhaven" {
			fromBremerhaven = append(fromBremerhaven, r)
		}
	}

	if len(fromBremerhaven) != 2 {
		t.Fatalf("expected 2 Bremerhaven rows, got %d: %+v", len(fromBremerhaven), fromBremerhaven)
	}
	for _, r := range fromBremerhaven {
		if r.ConnectedTo != ns.EntityIRI+"Marl" {
			t.Errorf("row paired with wrong destination: %+v", r)
		}
		if r.Duration == "PT12M" {
			t.Errorf("Marl's trip leaked into Bremerhaven: %+v", r)
		}
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 rows total, got %d", len(rows))
	}
}

func TestConnectionsOrderingAndOptionals(t *testing.T) {
	rows := Connections(fixtureGraph(), ns)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	want := []struct{ source, dest, duration string }{
		{"Bremerhaven", "Marl", "PT322M"},
		{"Bremerhaven", "Marl", "PT9134.0S"},
		{"Marl", "Dorsten", "PT12M"},
	}
	for i, w := range want {
		r := rows[i]
		if r.Source != ns.EntityIRI+w.source || r.ConnectedTo != ns.EntityIRI+w.dest || r.Duration != w.duration {
			t.Errorf("row %d = %+v, want %v", i, r, w)
		}
	}

	if rows[0].DrivingDistance != nil {
		t.Errorf("expected no driving distance on first trip, got %q", *rows[0].DrivingDistance)
	}
	if rows[1].DrivingDistance == nil || *rows[1].DrivingDistance != "412.3" {
		t.Errorf("expected driving distance 412.3 on second trip, got %v", rows[1].DrivingDistance)
	}
	if rows[1].StartTime != nil || rows[1].EndTime != nil {
		t.Errorf("unexpected start/end times: %+v", rows[1])
	}
}

func TestConnectionsIgnoresSiblingForm(t *testing.T) {
	connects := ns.Ontology("connectsTo")
	hasTrip := ns.Ontology("hasTrip")

	// unrepaired shape: trips are siblings of the connect-to assertion
	g := graph.New(
		tr(ns.Entity("A"), connects, ns.Entity("B")),
		tr(ns.Entity("A"), hasTrip, graph.Blank("t1")),
		tr(graph.Blank("t1"), ns.Ontology("duration"), graph.Literal("PT5M")),
		tr(graph.Blank("t1"), ns.Ontology("transportType"), ns.Ontology("Car")),
		tr(ns.Entity("B"), connects, ns.Entity("C")),
		tr(ns.Entity("B"), hasTrip, graph.Blank("t2")),
		tr(graph.Blank("t2"), ns.Ontology("duration"), graph.Literal("PT7M")),
		tr(graph.Blank("t2"), ns.Ontology("transportType"), ns.Ontology("Car")),
	)

	if rows := Connections(g, ns); len(rows) != 0 {
		t.Errorf("expected no rows from sibling form, got %+v", rows)
	}
}

func TestConnectionsFromRepairedText(t *testing.T) {
	raw := `moin:Bremerhaven moino:connectsTo moin:Marl ;
    moino:hasTrip [ moino:duration "PT322M" ; moino:transportType moino:Car ] ,
        [ moino:duration "PT9134.0S" ; moino:transportType moino:Train
    ] .
moin:Marl moino:population 83000 .
`
	g, err := graph.Parse(repair.Repair(raw), ns)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	rows := Connections(g, ns)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(rows), rows)
	}
	for _, r := range rows {
		if r.Source != ns.EntityIRI+"Bremerhaven" || r.ConnectedTo != ns.EntityIRI+"Marl" {
			t.Errorf("unexpected pairing %+v", r)
		}
	}
}

func TestTowns(t *testing.T) {
	g := graph.New(
		tr(ns.Entity("Bremerhaven"), ns.Ontology("population"), graph.Literal("113000")),
		tr(ns.Entity("M%C3%BCllheim"), ns.Ontology("population"), graph.Literal("19000")),
		tr(ns.Entity("Bad_Oeynhausen"), ns.Ontology("population"), graph.Literal("49000")),
		tr(graph.Blank("b1"), ns.Ontology("duration"), graph.Literal("PT5M")),
		tr(graph.IRI("http://schema.org/Place"), ns.Ontology("label"), graph.Literal("x")),
		// objects alone never make a town
		tr(ns.Entity("Bremerhaven"), ns.Ontology("connectsTo"), ns.Entity("Nowhere")),
	)

	towns := Towns(g, ns)

	for _, want := range []string{"Bremerhaven", "Müllheim", "Bad_Oeynhausen"} {
		if !towns.Contains(want) {
			t.Errorf("expected town %q in %v", want, towns.Sorted())
		}
	}
	if towns.Len() != 3 {
		t.Errorf("expected 3 towns, got %v", towns.Sorted())
	}
}
