package scoring

import (
	"reflect"
	"testing"

	"github.com/yoockh/interviewpilot/internal/models"
)

func TestConceptsForHR(t *testing.T) {
	cs := DefaultModel().ConceptsFor(models.KindHR, []string{"react"})
	if len(cs) != 12 {
		t.Fatalf("expected 12 HR concepts, got %d", len(cs))
	}
	if cs.Has("react") {
		t.Fatal("technologies must not be added to HR interviews")
	}
	if cs[0].Name != "introduction" || cs[11].Name != "motivation" {
		t.Fatalf("unexpected HR order: %v", cs.Names())
	}
}

func TestConceptsForTechnicalAddsTechnology(t *testing.T) {
	cs := DefaultModel().ConceptsFor(models.KindTechnical, []string{"react"})
	if len(cs) != 11 {
		t.Fatalf("expected 10 base concepts + react, got %d: %v", len(cs), cs.Names())
	}
	last := cs[len(cs)-1]
	if last.Name != "react" || !reflect.DeepEqual(last.Matches, []string{"react"}) {
		t.Fatalf("expected trailing singleton react concept, got %+v", last)
	}
}

func TestConceptsForTechnicalDeduplicates(t *testing.T) {
	cs := DefaultModel().ConceptsFor(models.KindTechnical, []string{" Go ", "go", "API", "", "testing", "Redux"})
	want := []string{
		"architecture", "design patterns", "testing", "performance", "optimization",
		"scalability", "security", "api", "state management", "debugging",
		"go", "redux",
	}
	if got := cs.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
}

func TestConceptsForIsDeterministic(t *testing.T) {
	m := DefaultModel()
	a := m.ConceptsFor(models.KindTechnical, []string{"kafka", "docker"})
	b := m.ConceptsFor(models.KindTechnical, []string{"kafka", "docker"})
	if !reflect.DeepEqual(a, b) {
		t.Fatal("expected identical concept tables for identical inputs")
	}
}

func TestConceptsForDoesNotMutateBaseTable(t *testing.T) {
	m := DefaultModel()
	_ = m.ConceptsFor(models.KindTechnical, []string{"rust"})
	if cs := m.ConceptsFor(models.KindTechnical, nil); len(cs) != 10 {
		t.Fatalf("base technical table leaked a technology: %v", cs.Names())
	}
}

func TestConceptMatchesStartWithName(t *testing.T) {
	for _, c := range DefaultModel().ConceptsFor(models.KindHR, nil) {
		if len(c.Matches) == 0 || c.Matches[0] != c.Name {
			t.Fatalf("concept %q must match its own name first, got %v", c.Name, c.Matches)
		}
	}
}
