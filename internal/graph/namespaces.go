package graph

import "sort"

// Namespaces is the fixed set of prefix bindings used to resolve the source
// document. It is a plain value: copy it, never mutate a shared one.
type Namespaces struct {
	EntityPrefix   string
	EntityIRI      string
	OntologyPrefix string
	OntologyIRI    string
	SchemaIRI      string
	DBpediaIRI     string
	WikidataIRI    string
}

// DefaultNamespaces returns the MOIN bindings.
func DefaultNamespaces() Namespaces {
	return Namespaces{
		EntityPrefix:   "moin",
		EntityIRI:      "http://moin-project.org/data/",
		OntologyPrefix: "moino",
		OntologyIRI:    "http://moin-project.org/ontology/",
		SchemaIRI:      "http://schema.org/",
		DBpediaIRI:     "http://dbpedia.org/resource/",
		WikidataIRI:    "http://www.wikidata.org/entity/",
	}
}

// Bindings returns prefix -> IRI for all five namespaces.
func (ns Namespaces) Bindings() map[string]string {
	return map[string]string{
		ns.EntityPrefix:   ns.EntityIRI,
		ns.OntologyPrefix: ns.OntologyIRI,
		"schema":          ns.SchemaIRI,
		"dbr":             ns.DBpediaIRI,
		"wd":              ns.WikidataIRI,
	}
}

// Ontology returns the IRI term of an ontology-namespace local name.
func (ns Namespaces) Ontology(local string) Term {
	return IRI(ns.OntologyIRI + local)
}

// Entity returns the IRI term of an entity-namespace local name.
func (ns Namespaces) Entity(local string) Term {
	return IRI(ns.EntityIRI + local)
}

// prefixDeclarations renders the bindings as Turtle @prefix lines in a stable order.
func (ns Namespaces) prefixDeclarations() []string {
	bindings := ns.Bindings()
	prefixes := make([]string, 0, len(bindings))
	for p := range bindings {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	lines := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		lines = append(lines, "@prefix "+p+": <"+bindings[p]+"> .")
	}
	return lines
}
