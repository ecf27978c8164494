// Package memory keeps interviews in process memory. Used by tests, the
// terminal practice mode and STORE_BACKEND=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/repositories"
	"github.com/yoockh/interviewpilot/internal/utils"
)

type interviewRepo struct {
	mu   sync.RWMutex
	rows map[string]*models.Interview
}

func NewInterviewRepo() repositories.TranscriptStore {
	return &interviewRepo{rows: make(map[string]*models.Interview)}
}

func (r *interviewRepo) CreateSession(_ context.Context, iv *models.Interview) error {
	if iv.ID == "" {
		iv.ID = uuid.NewString()
	}
	if iv.StartedAt.IsZero() {
		iv.StartedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[iv.ID]; ok {
		return utils.E(utils.CodeConflict, "memory.CreateSession", "interview already exists", nil)
	}
	repositories.NumberTurns(iv.ID, iv.Turns)
	r.rows[iv.ID] = clone(iv)
	return nil
}

func (r *interviewRepo) AppendTurn(_ context.Context, interviewID string, t *models.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[interviewID]
	if !ok {
		return utils.ErrNotFound
	}
	if row.Closed() {
		return utils.ErrClosed
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.InterviewID = interviewID
	t.Seq = len(row.Turns) + 1
	row.Turns = append(row.Turns, cloneTurn(*t))
	return nil
}

func (r *interviewRepo) CloseSession(_ context.Context, interviewID string, c repositories.Closing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[interviewID]
	if !ok {
		return utils.ErrNotFound
	}
	if row.Closed() {
		return utils.ErrClosed
	}
	endedAt := c.EndedAt.UTC()
	score := c.Score
	summary := c.Summary
	row.EndedAt, row.Score, row.Summary = &endedAt, &score, &summary
	return nil
}

func (r *interviewRepo) GetSession(_ context.Context, interviewID string) (*models.Interview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[interviewID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return clone(row), nil
}

func (r *interviewRepo) ListSessionsByParticipant(_ context.Context, userID string) ([]models.Interview, error) {
	r.mu.RLock()
	out := []models.Interview{}
	for _, row := range r.rows {
		if row.UserID != userID {
			continue
		}
		c := clone(row)
		c.Turns = nil
		out = append(out, *c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// clone copies everything a caller could mutate through pointers or slices.
func clone(in *models.Interview) *models.Interview {
	out := *in
	out.Technologies = append([]string(nil), in.Technologies...)
	if in.EndedAt != nil {
		v := *in.EndedAt
		out.EndedAt = &v
	}
	if in.Score != nil {
		v := *in.Score
		out.Score = &v
	}
	if in.Summary != nil {
		v := *in.Summary
		out.Summary = &v
	}
	out.Turns = make([]models.Turn, len(in.Turns))
	for i, t := range in.Turns {
		out.Turns[i] = cloneTurn(t)
	}
	return &out
}

func cloneTurn(t models.Turn) models.Turn {
	if t.Metadata != nil {
		m := make(map[string]any, len(t.Metadata))
		for k, v := range t.Metadata {
			m[k] = v
		}
		t.Metadata = m
	}
	return t
}
