package questions

import (
	"context"
	"errors"
	"strings"

	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/scoring"
	"github.com/yoockh/interviewpilot/internal/utils"
)

// Bank is an ordered question bank. Next returns the first question matching
// the filter that comes after filter.AfterID, or utils.ErrNotFound.
type Bank interface {
	Next(ctx context.Context, f models.QuestionFilter) (*models.Question, error)
	Get(ctx context.Context, id string) (*models.Question, error)
}

// BankSource asks bank questions in order. When the previous question had
// keywords and the answer mentions none of them it asks the same question
// again, at most maxRepeats times in a row.
type BankSource struct {
	bank       Bank
	maxRepeats int
}

func NewBankSource(bank Bank, maxRepeats int) *BankSource {
	if bank == nil {
		bank = NewStaticBank(BuiltinQuestions())
	}
	if maxRepeats < 0 {
		maxRepeats = 0
	}
	return &BankSource{bank: bank, maxRepeats: maxRepeats}
}

func (s *BankSource) NextPrompt(ctx context.Context, c Context) (Prompt, error) {
	if len(c.History) == 0 {
		return Prompt{Text: Greeting, Source: "bank"}, nil
	}

	last := c.LastQuestion()
	if last != nil && last.QuestionID != "" && last.RepeatCount < s.maxRepeats {
		q, err := s.bank.Get(ctx, last.QuestionID)
		switch {
		case err == nil:
			if len(q.Keywords) > 0 && !mentionsAny(c.LastAnswer(), q.Keywords) {
				return Prompt{Text: q.Text, QuestionID: q.ID, Repeat: true, Source: "bank"}, nil
			}
		case errors.Is(err, utils.ErrNotFound):
			// question was removed from the bank; move on
		default:
			return Prompt{}, err
		}
	}

	f := models.QuestionFilter{
		Category:   c.Kind,
		Difficulty: c.Difficulty,
		Role:       c.Role,
		Techs:      c.Technologies,
		AfterID:    c.PreviousQuestionID(),
	}
	q, err := s.bank.Next(ctx, f)
	if errors.Is(err, utils.ErrNotFound) && f.AfterID != "" {
		// bank exhausted, start over
		f.AfterID = ""
		q, err = s.bank.Next(ctx, f)
	}
	if errors.Is(err, utils.ErrNotFound) {
		return Prompt{Text: fallbackQuestion(c), Source: "fallback"}, nil
	}
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{Text: q.Text, QuestionID: q.ID, Source: "bank"}, nil
}

func mentionsAny(answer string, keywords []string) bool {
	blob := scoring.Normalize(answer)
	for _, k := range keywords {
		if k = scoring.Normalize(k); k != "" && strings.Contains(blob, k) {
			return true
		}
	}
	return false
}

// fallbackQuestion is used when the bank has nothing for the filter.
func fallbackQuestion(c Context) string {
	if c.Kind == models.KindHR {
		hr := []string{
			"Tell me about a challenging project you worked on and how you handled it.",
			"How do you handle feedback from teammates or managers?",
			"Describe a time you had to resolve a conflict in a team.",
		}
		i := len(c.History) / 2
		if i >= len(hr) {
			i = len(hr) - 1
		}
		return hr[i]
	}

	switch c.Difficulty {
	case models.DifficultyIntermediate:
		return "How would you design a simple REST API for a todo app? Outline the main endpoints and data model."
	case models.DifficultyAdvanced:
		return "Describe how you would approach scaling a read-heavy web application."
	default:
		return "Can you explain the difference between a stack and a queue?"
	}
}
