package scoring

import (
	"github.com/yoockh/interviewpilot/internal/models"
)

// Concept is a topic checked in candidate answers. Matches always contains
// Name itself first, followed by its synonyms.
type Concept struct {
	Name    string
	Matches []string
}

// ConceptSet is ordered: base concepts first, technology concepts last.
type ConceptSet []Concept

func (cs ConceptSet) Names() []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func (cs ConceptSet) Has(name string) bool {
	for _, c := range cs {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Model holds the static concept tables per interview kind.
type Model struct {
	hr        ConceptSet
	technical ConceptSet
}

func NewModel(hr, technical []Concept) *Model {
	return &Model{hr: withNames(hr), technical: withNames(technical)}
}

// DefaultModel returns the built-in HR and technical tables.
func DefaultModel() *Model {
	return NewModel(hrConcepts, technicalConcepts)
}

// ConceptsFor builds the concept table for one interview. Technologies are
// only added for technical interviews; each becomes a singleton concept
// unless a concept of that name already exists.
func (m *Model) ConceptsFor(kind models.Kind, technologies []string) ConceptSet {
	var base ConceptSet
	if kind == models.KindHR {
		base = m.hr
	} else {
		base = m.technical
	}

	out := make(ConceptSet, 0, len(base)+len(technologies))
	out = append(out, base...)
	if kind == models.KindHR {
		return out
	}
	for _, t := range models.NormalizeTechnologies(technologies) {
		if out.Has(t) {
			continue
		}
		out = append(out, Concept{Name: t, Matches: []string{t}})
	}
	return out
}

func withNames(in []Concept) ConceptSet {
	out := make(ConceptSet, 0, len(in))
	for _, c := range in {
		matches := make([]string, 0, len(c.Matches)+1)
		matches = append(matches, c.Name)
		for _, m := range c.Matches {
			if m != "" && m != c.Name {
				matches = append(matches, m)
			}
		}
		out = append(out, Concept{Name: c.Name, Matches: matches})
	}
	return out
}

var hrConcepts = []Concept{
	{Name: "introduction", Matches: []string{"intro", "about me", "my name", "this is"}},
	{Name: "background", Matches: []string{"education", "degree", "academics", "university", "college", "engineering", "be", "b.e", "btech", "b.tech"}},
	{Name: "experience", Matches: []string{"internship", "work", "project", "projects", "exp", "professional"}},
	{Name: "goals", Matches: []string{"aspirations", "aim", "objective", "future", "career goals", "five years"}},
	{Name: "teamwork", Matches: []string{"team", "collaboration", "collaborate", "pair", "group"}},
	{Name: "feedback", Matches: []string{"review", "retro", "improve", "improvement", "criticism"}},
	{Name: "strengths", Matches: []string{"strong at", "good at", "skill", "skills"}},
	{Name: "weaknesses", Matches: []string{"weak at", "need to improve", "improving"}},
	{Name: "challenge", Matches: []string{"challenging", "problem", "difficult", "issue", "blocking"}},
	{Name: "communication", Matches: []string{"communicate", "explain", "present", "presentation"}},
	{Name: "conflict", Matches: []string{"disagree", "argument", "resolution", "resolve"}},
	{Name: "motivation", Matches: []string{"interested", "why", "passion"}},
}

var technicalConcepts = []Concept{
	{Name: "architecture", Matches: []string{"design", "system design", "components", "layers"}},
	{Name: "design patterns", Matches: []string{"singleton", "factory", "observer", "adapter", "strategy"}},
	{Name: "testing", Matches: []string{"unit test", "integration test", "e2e", "jest", "vitest", "cypress"}},
	{Name: "performance", Matches: []string{"optimize", "profiling", "memo", "cache", "lazy load"}},
	{Name: "optimization", Matches: []string{"optimize", "tuning", "profiling"}},
	{Name: "scalability", Matches: []string{"scale", "load", "throughput", "concurrency"}},
	{Name: "security", Matches: []string{"auth", "authorization", "xss", "csrf", "sql injection", "owasp"}},
	{Name: "api", Matches: []string{"rest", "graphql", "endpoint", "http", "request", "response"}},
	{Name: "state management", Matches: []string{"state", "redux", "context", "store"}},
	{Name: "debugging", Matches: []string{"bug", "debug", "trace", "log", "breakpoint"}},
}
