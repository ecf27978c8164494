package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/questions"
	"github.com/yoockh/interviewpilot/internal/utils"
)

type mapCache struct {
	mu   sync.Mutex
	vals map[string]any
	hits int
}

func (c *mapCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vals[key]
	if !ok {
		return false, nil
	}
	c.hits++
	*(dst.(*[]models.Question)) = v.([]models.Question)
	return true, nil
}

func (c *mapCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals[key] = val
	return nil
}

func (c *mapCache) Del(_ context.Context, keys ...string) error { return nil }

func TestListPracticeFallsBackToSamples(t *testing.T) {
	svc := NewQuestionService(questions.NewStaticBank(nil), nil, 0, nil)

	rows, err := svc.ListPractice(context.Background(), models.QuestionFilter{Category: models.KindTechnical, Difficulty: models.DifficultyAdvanced})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) == 0 {
		t.Fatal("expected sample questions")
	}
	for _, q := range rows {
		if q.Category != models.KindTechnical || q.Difficulty != models.DifficultyAdvanced {
			t.Fatalf("sample does not match filter: %+v", q)
		}
	}
}

func TestListPracticeUsesCache(t *testing.T) {
	bank := questions.NewStaticBank(nil)
	c := &mapCache{vals: map[string]any{}}
	svc := NewQuestionService(bank, c, time.Minute, nil)
	ctx := context.Background()

	first, err := svc.ListPractice(ctx, models.QuestionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.ListPractice(ctx, models.QuestionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if c.hits != 1 || len(first) != len(second) {
		t.Fatalf("expected second call to hit the cache, hits=%d", c.hits)
	}
}

func TestListPracticeRejectsUnknownType(t *testing.T) {
	svc := NewQuestionService(questions.NewStaticBank(nil), nil, 0, nil)
	if _, err := svc.ListPractice(context.Background(), models.QuestionFilter{Category: "sales"}); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func TestCreateQuestion(t *testing.T) {
	bank := questions.NewStaticBank(nil)
	svc := NewQuestionService(bank, nil, 0, nil)
	ctx := context.Background()

	q, err := svc.Create(ctx, &models.Question{
		Category: models.KindTechnical,
		Text:     "  What is a goroutine? ",
		Techs:    []string{"Go", "go"},
		Keywords: []string{"Thread", "lightweight"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if q.ID == "" || q.Text != "What is a goroutine?" || len(q.Techs) != 1 || q.Keywords[0] != "thread" {
		t.Fatalf("unexpected question: %+v", q)
	}

	rows, _ := svc.ListPractice(ctx, models.QuestionFilter{Category: models.KindTechnical, Techs: []string{"go"}})
	if len(rows) != 1 || rows[0].ID != q.ID {
		t.Fatalf("expected the new question to be listed, got %+v", rows)
	}

	if _, err := svc.Create(ctx, &models.Question{Category: models.KindHR}); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for empty text, got %v", err)
	}
}
