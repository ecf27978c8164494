package questions

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/utils"
)

// StaticBank is an in-memory Bank. It backs the memory store and the
// terminal practice mode.
type StaticBank struct {
	mu sync.RWMutex
	qs []models.Question
}

func NewStaticBank(qs []models.Question) *StaticBank {
	b := &StaticBank{qs: append([]models.Question(nil), qs...)}
	b.sort()
	return b
}

func (b *StaticBank) sort() {
	sort.SliceStable(b.qs, func(i, j int) bool {
		if b.qs[i].OrderNo != b.qs[j].OrderNo {
			return b.qs[i].OrderNo < b.qs[j].OrderNo
		}
		return b.qs[i].ID < b.qs[j].ID
	})
}

func (b *StaticBank) Get(_ context.Context, id string) (*models.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := range b.qs {
		if b.qs[i].ID == id {
			q := b.qs[i]
			return &q, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (b *StaticBank) Next(_ context.Context, f models.QuestionFilter) (*models.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	past := f.AfterID == ""
	if !past && !b.contains(f.AfterID) {
		past = true
	}
	for i := range b.qs {
		q := b.qs[i]
		if !past {
			if q.ID == f.AfterID {
				past = true
			}
			continue
		}
		if Matches(&q, f) {
			return &q, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (b *StaticBank) contains(id string) bool {
	for i := range b.qs {
		if b.qs[i].ID == id {
			return true
		}
	}
	return false
}

func (b *StaticBank) List(_ context.Context, f models.QuestionFilter) ([]models.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := []models.Question{}
	for i := range b.qs {
		if Matches(&b.qs[i], f) {
			out = append(out, b.qs[i])
			if f.Limit > 0 && len(out) == f.Limit {
				break
			}
		}
	}
	return out, nil
}

func (b *StaticBank) Insert(_ context.Context, q *models.Question) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	b.qs = append(b.qs, *q)
	b.sort()
	return nil
}

// Matches applies the bank filter rules: empty difficulty, role or techs on a
// question match anything.
func Matches(q *models.Question, f models.QuestionFilter) bool {
	if f.Category != "" && q.Category != f.Category {
		return false
	}
	if f.Difficulty != "" && q.Difficulty != "" && q.Difficulty != f.Difficulty {
		return false
	}
	if f.Role != "" && q.Role != "" && !strings.EqualFold(q.Role, f.Role) {
		return false
	}
	if len(f.Techs) > 0 && len(q.Techs) > 0 && !overlaps(q.Techs, f.Techs) {
		return false
	}
	return true
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if strings.EqualFold(x, y) {
				return true
			}
		}
	}
	return false
}

// BuiltinQuestions is the bank shipped with the binary.
func BuiltinQuestions() []models.Question {
	hr := func(id, text string, d models.Difficulty, order int, kw ...string) models.Question {
		return models.Question{ID: id, Category: models.KindHR, Text: text, Difficulty: d, OrderNo: order, Keywords: pq.StringArray(kw)}
	}
	tech := func(id, text string, d models.Difficulty, order int, techs []string, kw ...string) models.Question {
		return models.Question{
			ID: id, Category: models.KindTechnical, Text: text, Difficulty: d, OrderNo: order,
			Techs: pq.StringArray(techs), Keywords: pq.StringArray(kw),
		}
	}

	return []models.Question{
		hr("sample-hr-1", "Tell me about yourself.", "", 10),
		hr("sample-hr-2", "What are your strengths and weaknesses?", "", 20, "strength", "weak", "good at", "improve"),
		hr("sample-hr-3", "Describe a challenging situation and how you handled it.", "", 30, "challeng", "problem", "difficult", "handled", "solved"),
		hr("sample-hr-4", "How do you handle feedback from teammates or managers?", "", 40, "feedback", "review", "improve", "criticism"),
		hr("sample-hr-5", "Describe a time you had to resolve a conflict in a team.", "", 50, "conflict", "disagree", "resolve", "team"),
		hr("sample-hr-6", "Where do you see yourself in five years?", "", 60, "goal", "future", "year", "grow"),
		hr("sample-hr-7", "Why are you interested in this role?", "", 70, "interest", "passion", "because", "why"),

		tech("sample-tech-0", "Can you explain the difference between a stack and a queue?", models.DifficultyBeginner, 5, nil, "lifo", "fifo", "first", "last"),
		tech("sample-tech-1", "What are React hooks and why are they useful?", models.DifficultyBeginner, 10, []string{"react"}, "state", "effect", "function"),
		tech("sample-tech-2", "Explain the virtual DOM and reconciliation in React.", models.DifficultyIntermediate, 20, []string{"react"}, "diff", "dom", "render"),
		tech("sample-tech-3", "How do you optimize performance in a large React application?", models.DifficultyAdvanced, 30, []string{"react"}, "memo", "lazy", "render", "profil"),
		tech("sample-tech-4", "What is the difference between unit and integration tests?", models.DifficultyBeginner, 40, nil, "unit", "integration", "test"),
		tech("sample-tech-5", "How would you design a simple REST API for a todo app? Outline the main endpoints and data model.", models.DifficultyIntermediate, 50, nil, "get", "post", "endpoint", "rest"),
		tech("sample-tech-6", "How do you track down a bug that only happens in production?", models.DifficultyIntermediate, 60, nil, "log", "trace", "reproduce", "debug"),
		tech("sample-tech-7", "Describe how you would approach scaling a read-heavy web application.", models.DifficultyAdvanced, 70, nil, "cache", "replica", "scale", "load"),
		tech("sample-tech-8", "How do you protect a web API against common security attacks?", models.DifficultyAdvanced, 80, nil, "auth", "inject", "xss", "csrf", "valid"),
	}
}
