package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/interviewpilot/internal/cache"
	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/questions"
	"github.com/yoockh/interviewpilot/internal/repositories"
	"github.com/yoockh/interviewpilot/internal/utils"
)

const (
	defaultPracticeLimit = 50
	maxPracticeLimit     = 200
)

type QuestionService interface {
	// ListPractice returns bank questions for the filter, or built-in samples
	// when the bank has none.
	ListPractice(ctx context.Context, f models.QuestionFilter) ([]models.Question, error)
	Create(ctx context.Context, q *models.Question) (*models.Question, error)
}

type questionService struct {
	repo    repositories.QuestionRepository
	cache   cache.Cache
	ttl     time.Duration
	samples []models.Question
	log     *logrus.Logger
}

func NewQuestionService(repo repositories.QuestionRepository, c cache.Cache, ttl time.Duration, log *logrus.Logger) QuestionService {
	if c == nil {
		c = cache.Nop{}
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &questionService{repo: repo, cache: c, ttl: ttl, samples: questions.BuiltinQuestions(), log: log}
}

func practiceKey(f models.QuestionFilter) string {
	return fmt.Sprintf("practice:%s:%s:%s:%s:%d",
		f.Category, f.Difficulty, strings.ToLower(f.Role), strings.Join(f.Techs, ","), f.Limit)
}

func (s *questionService) ListPractice(ctx context.Context, f models.QuestionFilter) ([]models.Question, error) {
	const op = "QuestionService.ListPractice"

	if f.Category == "" {
		f.Category = models.KindHR
	}
	if !f.Category.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "type must be hr or technical", nil)
	}
	if f.Difficulty != "" && !f.Difficulty.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown difficulty", nil)
	}
	if f.Limit <= 0 {
		f.Limit = defaultPracticeLimit
	}
	if f.Limit > maxPracticeLimit {
		f.Limit = maxPracticeLimit
	}
	f.Techs = models.NormalizeTechnologies(f.Techs)
	f.AfterID = ""

	key := practiceKey(f)
	var cached []models.Question
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.log.WithError(err).Warn("practice cache read failed")
	} else if hit {
		return cached, nil
	}

	rows, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list questions", err)
	}
	if len(rows) == 0 {
		rows = s.sampleQuestions(f)
	}

	if err := s.cache.SetJSON(ctx, key, rows, s.ttl); err != nil {
		s.log.WithError(err).Warn("practice cache write failed")
	}
	return rows, nil
}

func (s *questionService) sampleQuestions(f models.QuestionFilter) []models.Question {
	out := []models.Question{}
	for i := range s.samples {
		if questions.Matches(&s.samples[i], f) {
			out = append(out, s.samples[i])
			if len(out) == f.Limit {
				break
			}
		}
	}
	return out
}

func (s *questionService) Create(ctx context.Context, q *models.Question) (*models.Question, error) {
	const op = "QuestionService.Create"

	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "question text is required", nil)
	}
	if !q.Category.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "type must be hr or technical", nil)
	}
	if q.Difficulty != "" && !q.Difficulty.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown difficulty", nil)
	}
	q.Role = strings.TrimSpace(q.Role)
	q.Techs = pq.StringArray(models.NormalizeTechnologies(q.Techs))
	q.Keywords = pq.StringArray(models.NormalizeTechnologies(q.Keywords))
	q.ID = ""

	if err := s.repo.Insert(ctx, q); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save question", err)
	}
	// cached listings expire on their own TTL
	return q, nil
}
