// Package repositories defines the persistence contracts shared by the
// postgres, mongo and memory backends.
package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yoockh/interviewpilot/internal/models"
)

// Closing is what a session is closed with.
type Closing struct {
	Score   int
	Summary string
	EndedAt time.Time
}

// TranscriptStore is the durable log of interviews and their turns.
//
// AppendTurn and CloseSession fail with utils.ErrClosed once a session is
// closed and with utils.ErrNotFound for unknown ids. CloseSession only ever
// succeeds once per session.
type TranscriptStore interface {
	// CreateSession assigns ID and StartedAt when unset and stores the
	// session together with the turns it carries, all or nothing.
	CreateSession(ctx context.Context, iv *models.Interview) error
	// AppendTurn assigns ID, Seq, InterviewID and CreatedAt.
	AppendTurn(ctx context.Context, interviewID string, t *models.Turn) error
	CloseSession(ctx context.Context, interviewID string, c Closing) error
	// GetSession returns the session with its turns ordered by Seq.
	GetSession(ctx context.Context, interviewID string) (*models.Interview, error)
	// ListSessionsByParticipant returns sessions without turns, newest first.
	ListSessionsByParticipant(ctx context.Context, userID string) ([]models.Interview, error)
}

// QuestionRepository is the admin-editable question bank.
type QuestionRepository interface {
	Next(ctx context.Context, f models.QuestionFilter) (*models.Question, error)
	Get(ctx context.Context, id string) (*models.Question, error)
	List(ctx context.Context, f models.QuestionFilter) ([]models.Question, error)
	Insert(ctx context.Context, q *models.Question) error
}

// NumberTurns assigns the fields AppendTurn would to turns written along
// with a new session.
func NumberTurns(interviewID string, turns []models.Turn) {
	for i := range turns {
		t := &turns[i]
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now().UTC()
		}
		t.InterviewID = interviewID
		t.Seq = i + 1
	}
}
