package scoring

import (
	"math"
	"strings"
	"unicode"

	"github.com/yoockh/interviewpilot/internal/models"
)

// Result is a keyword-coverage score. It measures vocabulary overlap with the
// concept table, not the correctness of the answers.
type Result struct {
	Score   int      `json:"score"`
	Matched []string `json:"matched"`
	Total   int      `json:"total"`
}

// Top returns at most n matched concepts in concept-table order.
func (r Result) Top(n int) []string {
	if n < 0 || n >= len(r.Matched) {
		return append([]string(nil), r.Matched...)
	}
	return append([]string(nil), r.Matched[:n]...)
}

type Scorer struct {
	model *Model
}

func NewScorer(model *Model) *Scorer {
	if model == nil {
		model = DefaultModel()
	}
	return &Scorer{model: model}
}

func (s *Scorer) Model() *Model { return s.model }

// Score computes coverage over the interview's candidate turns.
func (s *Scorer) Score(iv *models.Interview) Result {
	concepts := s.model.ConceptsFor(iv.Kind, iv.Technologies)
	return ScoreText(AnswerBlob(iv.Turns), concepts)
}

// ScoreText scores an already normalized answer blob.
func ScoreText(blob string, concepts ConceptSet) Result {
	matched := make([]string, 0, len(concepts))
	for _, c := range concepts {
		for _, m := range c.Matches {
			if m != "" && strings.Contains(blob, m) {
				matched = append(matched, c.Name)
				break
			}
		}
	}

	total := len(concepts)
	if total < 1 {
		total = 1
	}
	ratio := math.Min(1, float64(len(matched))/float64(total))
	return Result{
		Score:   int(math.Round(ratio * 100)),
		Matched: matched,
		Total:   total,
	}
}

// AnswerBlob normalizes candidate turns and joins them with newlines so a
// phrase cannot match across two answers.
func AnswerBlob(turns []models.Turn) string {
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		if t.Speaker != models.SpeakerCandidate {
			continue
		}
		if n := Normalize(t.Text); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "\n")
}

// Normalize lower-cases s, turns everything except letters, digits and
// whitespace into spaces and collapses runs of whitespace.
func Normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		default:
			return ' '
		}
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}
