package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/repositories"
	"github.com/yoockh/interviewpilot/internal/utils"
)

type interviewRepo struct {
	db *gorm.DB
}

func NewInterviewRepo(db *gorm.DB) repositories.TranscriptStore {
	return &interviewRepo{db: db}
}

func (r *interviewRepo) CreateSession(ctx context.Context, iv *models.Interview) error {
	if iv.ID == "" {
		iv.ID = uuid.NewString()
	}
	if iv.StartedAt.IsZero() {
		iv.StartedAt = time.Now().UTC()
	}
	repositories.NumberTurns(iv.ID, iv.Turns)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(iv).Error; err != nil {
			return err
		}
		if len(iv.Turns) == 0 {
			return nil
		}
		return tx.Create(&iv.Turns).Error
	})
}

// Ids are uuid columns; anything else can only be an unknown interview and
// would otherwise surface as a Postgres syntax error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// AppendTurn locks the interview row so seq numbers and the closed check are
// consistent across instances.
func (r *interviewRepo) AppendTurn(ctx context.Context, interviewID string, t *models.Turn) error {
	if !validID(interviewID) {
		return utils.ErrNotFound
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var iv models.Interview
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "ended_at").
			Where("id = ?", interviewID).
			Take(&iv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotFound
		}
		if err != nil {
			return err
		}
		if iv.Closed() {
			return utils.ErrClosed
		}

		var last int
		if err := tx.Model(&models.Turn{}).
			Where("interview_id = ?", interviewID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&last).Error; err != nil {
			return err
		}

		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now().UTC()
		}
		t.InterviewID = interviewID
		t.Seq = last + 1
		return tx.Create(t).Error
	})
}

func (r *interviewRepo) CloseSession(ctx context.Context, interviewID string, c repositories.Closing) error {
	if !validID(interviewID) {
		return utils.ErrNotFound
	}
	res := r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("id = ? AND ended_at IS NULL", interviewID).
		Updates(map[string]any{
			"ended_at": c.EndedAt.UTC(),
			"score":    c.Score,
			"summary":  c.Summary,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Interview{}).Where("id = ?", interviewID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return utils.ErrNotFound
	}
	return utils.ErrClosed
}

func (r *interviewRepo) GetSession(ctx context.Context, interviewID string) (*models.Interview, error) {
	if !validID(interviewID) {
		return nil, utils.ErrNotFound
	}
	var iv models.Interview
	err := r.db.WithContext(ctx).
		Preload("Turns", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Where("id = ?", interviewID).
		Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (r *interviewRepo) ListSessionsByParticipant(ctx context.Context, userID string) ([]models.Interview, error) {
	rows := []models.Interview{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&rows).Error
	return rows, err
}
