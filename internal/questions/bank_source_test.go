package questions

import (
	"context"
	"errors"
	"testing"

	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/utils"
)

func asked(text, id string, repeat int) models.Turn {
	return models.Turn{Speaker: models.SpeakerInterviewer, Text: text, QuestionID: id, RepeatCount: repeat}
}

func answered(text string) models.Turn {
	return models.Turn{Speaker: models.SpeakerCandidate, Text: text}
}

func hrContext(history ...models.Turn) Context {
	return Context{Kind: models.KindHR, Difficulty: models.DifficultyBeginner, History: history}
}

func TestBankSourceGreetsOnEmptyHistory(t *testing.T) {
	p, err := NewBankSource(nil, 1).NextPrompt(context.Background(), hrContext())
	if err != nil {
		t.Fatal(err)
	}
	if p.Text != Greeting || p.Repeat || p.QuestionID != "" {
		t.Fatalf("unexpected greeting prompt: %+v", p)
	}
}

func TestBankSourceAsksFirstQuestionAfterGreeting(t *testing.T) {
	p, err := NewBankSource(nil, 1).NextPrompt(context.Background(),
		hrContext(asked(Greeting, "", 0), answered("Yes, let's start")))
	if err != nil {
		t.Fatal(err)
	}
	if p.QuestionID != "sample-hr-1" || p.Repeat {
		t.Fatalf("expected first HR question, got %+v", p)
	}
}

func TestBankSourceRepeatsOffTopicAnswer(t *testing.T) {
	src := NewBankSource(nil, 1)
	c := hrContext(asked("What are your strengths and weaknesses?", "sample-hr-2", 0), answered("I like pizza"))

	p, err := src.NextPrompt(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Repeat || p.QuestionID != "sample-hr-2" {
		t.Fatalf("expected a repeat of sample-hr-2, got %+v", p)
	}

	// already repeated once: move on
	c.History[0].RepeatCount = 1
	p, err = src.NextPrompt(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	if p.Repeat || p.QuestionID != "sample-hr-3" {
		t.Fatalf("expected next question after max repeats, got %+v", p)
	}
}

func TestBankSourceMovesOnWhenAnswerMentionsKeyword(t *testing.T) {
	p, err := NewBankSource(nil, 1).NextPrompt(context.Background(),
		hrContext(asked("What are your strengths and weaknesses?", "sample-hr-2", 0), answered("I'm GOOD AT planning.")))
	if err != nil {
		t.Fatal(err)
	}
	if p.Repeat || p.QuestionID != "sample-hr-3" {
		t.Fatalf("expected sample-hr-3, got %+v", p)
	}
}

func TestBankSourceWrapsAroundWhenExhausted(t *testing.T) {
	p, err := NewBankSource(nil, 0).NextPrompt(context.Background(),
		hrContext(asked("Why are you interested in this role?", "sample-hr-7", 0), answered("passion")))
	if err != nil {
		t.Fatal(err)
	}
	if p.QuestionID != "sample-hr-1" {
		t.Fatalf("expected wrap to sample-hr-1, got %+v", p)
	}
}

func TestBankSourceFiltersByTechnology(t *testing.T) {
	src := NewBankSource(nil, 1)
	c := Context{
		Kind:         models.KindTechnical,
		Difficulty:   models.DifficultyBeginner,
		Technologies: []string{"go"},
		History:      []models.Turn{asked(Greeting, "", 0), answered("sure")},
	}
	p, err := src.NextPrompt(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	if p.QuestionID != "sample-tech-0" {
		t.Fatalf("expected sample-tech-0, got %+v", p)
	}

	c.History = append(c.History, asked(p.Text, p.QuestionID, 0), answered("a queue is FIFO"))
	p, err = src.NextPrompt(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	// sample-tech-1 is react only
	if p.QuestionID != "sample-tech-4" {
		t.Fatalf("expected sample-tech-4, got %+v", p)
	}
}

func TestBankSourceFallsBackOnEmptyBank(t *testing.T) {
	p, err := NewBankSource(NewStaticBank(nil), 1).NextPrompt(context.Background(),
		hrContext(asked(Greeting, "", 0), answered("yes")))
	if err != nil {
		t.Fatal(err)
	}
	if p.Source != "fallback" || p.Text == "" {
		t.Fatalf("expected fallback prompt, got %+v", p)
	}
}

type brokenBank struct{ err error }

func (b brokenBank) Next(context.Context, models.QuestionFilter) (*models.Question, error) {
	return nil, b.err
}

func (b brokenBank) Get(context.Context, string) (*models.Question, error) { return nil, b.err }

func TestBankSourcePropagatesBankErrors(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := NewBankSource(brokenBank{err: boom}, 1).NextPrompt(context.Background(),
		hrContext(asked("Tell me about yourself.", "q-1", 0), answered("hello")))
	if !errors.Is(err, boom) {
		t.Fatalf("expected bank error, got %v", err)
	}
}

func TestBankSourceSkipsDeletedQuestion(t *testing.T) {
	_, err := NewBankSource(brokenBank{err: utils.ErrNotFound}, 1).NextPrompt(context.Background(),
		hrContext(asked("Tell me about yourself.", "q-1", 0), answered("hello")))
	if err != nil {
		t.Fatalf("expected fallback, got %v", err)
	}
}

func TestStaticBankInsertAndList(t *testing.T) {
	b := NewStaticBank(BuiltinQuestions())
	q := &models.Question{Category: models.KindHR, Text: "What motivates you?", OrderNo: 1}
	if err := b.Insert(context.Background(), q); err != nil {
		t.Fatal(err)
	}
	if q.ID == "" {
		t.Fatal("expected id to be assigned")
	}

	list, err := b.List(context.Background(), models.QuestionFilter{Category: models.KindHR, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != q.ID {
		t.Fatalf("expected inserted question first, got %+v", list)
	}
}
