package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/repositories"
	"github.com/yoockh/interviewpilot/internal/utils"
)

func newSession(t *testing.T, store repositories.TranscriptStore, user string, at time.Time) *models.Interview {
	t.Helper()
	iv := &models.Interview{UserID: user, Kind: models.KindHR, Difficulty: models.DifficultyBeginner, StartedAt: at}
	if err := store.CreateSession(context.Background(), iv); err != nil {
		t.Fatalf("create: %v", err)
	}
	return iv
}

func TestAppendTurnAssignsSequence(t *testing.T) {
	ctx := context.Background()
	store := NewInterviewRepo()
	iv := newSession(t, store, "u1", time.Time{})
	if iv.ID == "" || iv.StartedAt.IsZero() {
		t.Fatal("expected id and start time to be assigned")
	}

	for i, text := range []string{"hello", "hi", "question"} {
		turn := &models.Turn{Speaker: models.SpeakerInterviewer, Text: text}
		if err := store.AppendTurn(ctx, iv.ID, turn); err != nil {
			t.Fatal(err)
		}
		if turn.Seq != i+1 || turn.ID == "" || turn.InterviewID != iv.ID {
			t.Fatalf("unexpected turn: %+v", turn)
		}
	}

	got, err := store.GetSession(ctx, iv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Turns) != 3 || got.Turns[2].Text != "question" {
		t.Fatalf("unexpected turns: %+v", got.Turns)
	}
}

func TestClosedSessionIsImmutable(t *testing.T) {
	ctx := context.Background()
	store := NewInterviewRepo()
	iv := newSession(t, store, "u1", time.Time{})

	if err := store.CloseSession(ctx, iv.ID, repositories.Closing{Score: 40, Summary: "done", EndedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := store.CloseSession(ctx, iv.ID, repositories.Closing{Score: 90}); !errors.Is(err, utils.ErrClosed) {
		t.Fatalf("expected ErrClosed on second close, got %v", err)
	}
	if err := store.AppendTurn(ctx, iv.ID, &models.Turn{Speaker: models.SpeakerCandidate, Text: "late"}); !errors.Is(err, utils.ErrClosed) {
		t.Fatalf("expected ErrClosed on append, got %v", err)
	}

	got, _ := store.GetSession(ctx, iv.ID)
	if *got.Score != 40 || *got.Summary != "done" || len(got.Turns) != 0 {
		t.Fatalf("closed session was mutated: %+v", got)
	}
}

func TestConcurrentCloseSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	store := NewInterviewRepo()
	iv := newSession(t, store, "u1", time.Time{})

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			if err := store.CloseSession(ctx, iv.ID, repositories.Closing{Score: score, EndedAt: time.Now()}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one close to win, got %d", wins)
	}
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	store := NewInterviewRepo()
	if _, err := store.GetSession(ctx, "nope"); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.AppendTurn(ctx, "nope", &models.Turn{Text: "x"}); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.CloseSession(ctx, "nope", repositories.Closing{}); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirstAndIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewInterviewRepo()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	older := newSession(t, store, "u1", base)
	newer := newSession(t, store, "u1", base.Add(time.Hour))
	newSession(t, store, "u2", base.Add(2*time.Hour))

	list, err := store.ListSessionsByParticipant(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Fatalf("unexpected order: %+v", list)
	}

	// returned values are copies
	list[0].Role = "changed"
	got, _ := store.GetSession(ctx, newer.ID)
	if got.Role == "changed" {
		t.Fatal("store leaked internal state")
	}
}

func TestCreateSessionStoresOpeningTurns(t *testing.T) {
	ctx := context.Background()
	store := NewInterviewRepo()
	iv := &models.Interview{
		UserID: "u1",
		Kind:   models.KindHR,
		Turns:  []models.Turn{{Speaker: models.SpeakerInterviewer, Text: "Hi!"}},
	}
	if err := store.CreateSession(ctx, iv); err != nil {
		t.Fatal(err)
	}
	if iv.Turns[0].Seq != 1 || iv.Turns[0].ID == "" || iv.Turns[0].InterviewID != iv.ID {
		t.Fatalf("opening turn not numbered: %+v", iv.Turns[0])
	}

	next := &models.Turn{Speaker: models.SpeakerCandidate, Text: "hello"}
	if err := store.AppendTurn(ctx, iv.ID, next); err != nil {
		t.Fatal(err)
	}
	if next.Seq != 2 {
		t.Fatalf("expected seq 2 after the opening turn, got %d", next.Seq)
	}
}
