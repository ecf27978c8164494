package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/repositories"
	"github.com/yoockh/interviewpilot/internal/utils"
)

type questionRepo struct {
	db *gorm.DB
}

func NewQuestionRepo(db *gorm.DB) repositories.QuestionRepository {
	return &questionRepo{db: db}
}

// filtered applies the same rules as questions.Matches: an empty difficulty,
// role or tech list on a row matches anything.
func (r *questionRepo) filtered(ctx context.Context, f models.QuestionFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Question{})
	if f.Category != "" {
		q = q.Where("category_key = ?", f.Category)
	}
	if f.Difficulty != "" {
		q = q.Where("(difficulty IS NULL OR difficulty = '' OR difficulty = ?)", f.Difficulty)
	}
	if f.Role != "" {
		q = q.Where("(role IS NULL OR role = '' OR LOWER(role) = LOWER(?))", f.Role)
	}
	if len(f.Techs) > 0 {
		q = q.Where("(techs IS NULL OR cardinality(techs) = 0 OR techs && ?)", pq.Array(f.Techs))
	}
	return q
}

func (r *questionRepo) Next(ctx context.Context, f models.QuestionFilter) (*models.Question, error) {
	q := r.filtered(ctx, f)
	if f.AfterID != "" {
		after, err := r.Get(ctx, f.AfterID)
		switch {
		case err == nil:
			q = q.Where("(order_no, id) > (?, ?)", after.OrderNo, after.ID)
		case !errors.Is(err, utils.ErrNotFound):
			return nil, err
		}
	}

	var row models.Question
	err := q.Order("order_no ASC, id ASC").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *questionRepo) Get(ctx context.Context, id string) (*models.Question, error) {
	if !validID(id) {
		// built-in ids are not uuids and never stored here
		return nil, utils.ErrNotFound
	}
	var row models.Question
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *questionRepo) List(ctx context.Context, f models.QuestionFilter) ([]models.Question, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	rows := []models.Question{}
	err := r.filtered(ctx, f).Order("order_no ASC, id ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *questionRepo) Insert(ctx context.Context, q *models.Question) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(q).Error
}
