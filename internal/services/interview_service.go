package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/yoockh/interviewpilot/internal/events"
	"github.com/yoockh/interviewpilot/internal/locker"
	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/questions"
	"github.com/yoockh/interviewpilot/internal/repositories"
	"github.com/yoockh/interviewpilot/internal/scoring"
	"github.com/yoockh/interviewpilot/internal/utils"
)

type Reason string

const (
	ReasonCompleted Reason = "completed"
	ReasonStopped   Reason = "stopped"
)

type StartInput struct {
	UserID       string
	Kind         models.Kind
	Role         string
	Technologies []string
	Difficulty   models.Difficulty
}

// Question is an interviewer turn as handed to the candidate.
type Question struct {
	Seq         int    `json:"seq"`
	Text        string `json:"question"`
	QuestionID  string `json:"question_id,omitempty"`
	RepeatCount int    `json:"repeat_count"`
}

// Result is the final outcome of a closed interview.
type Result struct {
	InterviewID string    `json:"interview_id"`
	Reason      Reason    `json:"reason"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Matched     []string  `json:"matched"`
	TopMatched  []string  `json:"matched_top"`
	Summary     string    `json:"message"`
	EndedAt     time.Time `json:"ended_at"`
}

// Reply answers SubmitAnswer: either the next question or, when Done, the
// final result.
type Reply struct {
	Done     bool
	Question *Question
	Result   *Result
}

type ScorePoint struct {
	InterviewID string      `json:"interview_id"`
	Kind        models.Kind `json:"type"`
	Score       int         `json:"score"`
	EndedAt     time.Time   `json:"ended_at"`
}

type Progress struct {
	Completed    int          `json:"completed"`
	AverageScore int          `json:"average_score"`
	Series       []ScorePoint `json:"series"`
}

type InterviewService interface {
	Start(ctx context.Context, in StartInput) (*models.Interview, *Question, error)
	SubmitAnswer(ctx context.Context, interviewID, text string) (*Reply, error)
	Stop(ctx context.Context, interviewID string) (*Result, error)
	Get(ctx context.Context, interviewID string) (*models.Interview, error)
	GetTranscript(ctx context.Context, interviewID string) ([]models.Turn, error)
	ListByParticipant(ctx context.Context, userID string) ([]models.Interview, error)
	Progress(ctx context.Context, userID string) (*Progress, error)
}

type InterviewOptions struct {
	// MaxQuestions caps interviewer turns, the greeting included.
	MaxQuestions    int
	SummaryTop      int
	QuestionTimeout time.Duration

	Locker    locker.Locker
	Publisher events.Publisher
	Logger    *logrus.Logger
	Now       func() time.Time
}

type interviewService struct {
	store  repositories.TranscriptStore
	source questions.Source
	scorer *scoring.Scorer

	opts InterviewOptions
	log  *logrus.Logger
}

func NewInterviewService(store repositories.TranscriptStore, source questions.Source, scorer *scoring.Scorer, opts InterviewOptions) InterviewService {
	if scorer == nil {
		scorer = scoring.NewScorer(nil)
	}
	if opts.MaxQuestions <= 0 {
		opts.MaxQuestions = 12
	}
	if opts.SummaryTop <= 0 {
		opts.SummaryTop = 5
	}
	if opts.QuestionTimeout <= 0 {
		opts.QuestionTimeout = 30 * time.Second
	}
	if opts.Locker == nil {
		opts.Locker = locker.NewLocal()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &interviewService{store: store, source: source, scorer: scorer, opts: opts, log: opts.Logger}
}

func (s *interviewService) Start(ctx context.Context, in StartInput) (*models.Interview, *Question, error) {
	const op = "InterviewService.Start"

	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, nil, utils.E(utils.CodeInvalidArgument, op, "participant is required", nil)
	}
	if !in.Kind.Valid() {
		return nil, nil, utils.E(utils.CodeInvalidArgument, op, fmt.Sprintf("unknown interview type %q", in.Kind), nil)
	}
	if in.Difficulty == "" {
		in.Difficulty = models.DifficultyBeginner
	}
	if !in.Difficulty.Valid() {
		return nil, nil, utils.E(utils.CodeInvalidArgument, op, fmt.Sprintf("unknown difficulty %q", in.Difficulty), nil)
	}

	iv := &models.Interview{
		ID:           uuid.NewString(),
		UserID:       userID,
		Kind:         in.Kind,
		Technologies: models.NormalizeTechnologies(in.Technologies),
		Difficulty:   in.Difficulty,
		StartedAt:    s.opts.Now(),
	}
	if in.Kind == models.KindTechnical {
		iv.Role = strings.TrimSpace(in.Role)
	}

	// ask first so an upstream failure leaves nothing behind
	p, err := s.ask(ctx, op, iv)
	if err != nil {
		return nil, nil, err
	}

	// the session and its opening turn are written together
	iv.Turns = []models.Turn{*s.interviewerTurn(iv, p)}
	if err := s.store.CreateSession(ctx, iv); err != nil {
		return nil, nil, s.storeErr(op, err)
	}
	turn := &iv.Turns[0]

	s.log.WithFields(logrus.Fields{
		"session_id": iv.ID,
		"user_id":    iv.UserID,
		"type":       iv.Kind,
		"difficulty": iv.Difficulty,
	}).Info("interview started")

	q := questionOf(turn)
	s.publish(ctx, iv.ID, events.TypeQuestion, q)
	return iv, q, nil
}

func (s *interviewService) SubmitAnswer(ctx context.Context, interviewID, text string) (*Reply, error) {
	const op = "InterviewService.SubmitAnswer"

	unlock, err := s.lock(ctx, op, interviewID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	iv, err := s.load(ctx, op, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Closed() {
		return nil, utils.E(utils.CodeInvalidState, op, "interview already closed", nil)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "answer text is required", nil)
	}

	answer := &models.Turn{Speaker: models.SpeakerCandidate, Text: text, CreatedAt: s.opts.Now()}
	if err := s.store.AppendTurn(ctx, interviewID, answer); err != nil {
		return nil, s.storeErr(op, err)
	}
	iv.Turns = append(iv.Turns, *answer)

	if iv.InterviewerTurns() >= s.opts.MaxQuestions {
		res, err := s.finish(ctx, op, iv, ReasonCompleted)
		if err != nil {
			return nil, err
		}
		return &Reply{Done: true, Result: res}, nil
	}

	p, err := s.ask(ctx, op, iv)
	if err != nil {
		s.publish(ctx, interviewID, events.TypeError, map[string]any{"message": "could not get the next question", "retryable": true})
		return nil, err
	}

	turn := s.interviewerTurn(iv, p)
	if err := s.store.AppendTurn(ctx, interviewID, turn); err != nil {
		return nil, s.storeErr(op, err)
	}

	q := questionOf(turn)
	s.publish(ctx, interviewID, events.TypeQuestion, q)
	return &Reply{Question: q}, nil
}

func (s *interviewService) Stop(ctx context.Context, interviewID string) (*Result, error) {
	const op = "InterviewService.Stop"

	unlock, err := s.lock(ctx, op, interviewID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	iv, err := s.load(ctx, op, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Closed() {
		return nil, utils.E(utils.CodeInvalidState, op, "interview already closed", nil)
	}
	return s.finish(ctx, op, iv, ReasonStopped)
}

func (s *interviewService) Get(ctx context.Context, interviewID string) (*models.Interview, error) {
	return s.load(ctx, "InterviewService.Get", interviewID)
}

func (s *interviewService) GetTranscript(ctx context.Context, interviewID string) ([]models.Turn, error) {
	iv, err := s.load(ctx, "InterviewService.GetTranscript", interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Turns == nil {
		return []models.Turn{}, nil
	}
	return iv.Turns, nil
}

func (s *interviewService) ListByParticipant(ctx context.Context, userID string) ([]models.Interview, error) {
	const op = "InterviewService.ListByParticipant"

	if strings.TrimSpace(userID) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "participant is required", nil)
	}
	rows, err := s.store.ListSessionsByParticipant(ctx, userID)
	if err != nil {
		return nil, s.storeErr(op, err)
	}
	return rows, nil
}

func (s *interviewService) Progress(ctx context.Context, userID string) (*Progress, error) {
	rows, err := s.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &Progress{Series: []ScorePoint{}}
	sum := 0
	for _, iv := range rows {
		if !iv.Closed() || iv.Score == nil {
			continue
		}
		p.Series = append(p.Series, ScorePoint{InterviewID: iv.ID, Kind: iv.Kind, Score: *iv.Score, EndedAt: *iv.EndedAt})
		sum += *iv.Score
	}
	sort.SliceStable(p.Series, func(i, j int) bool { return p.Series[i].EndedAt.Before(p.Series[j].EndedAt) })

	p.Completed = len(p.Series)
	if p.Completed > 0 {
		p.AverageScore = int(math.Round(float64(sum) / float64(p.Completed)))
	}
	return p, nil
}

// Summary renders the closing message shown to the candidate.
func Summary(reason Reason, r scoring.Result, top []string) string {
	prefix := "Interview complete."
	if reason == ReasonStopped {
		prefix = "Interview stopped."
	}
	msg := fmt.Sprintf("%s Score: %d/100. You covered %d of %d key topics", prefix, r.Score, len(r.Matched), r.Total)
	if len(top) > 0 {
		msg += " (e.g., " + strings.Join(top, ", ") + ")"
	}
	return msg + "."
}

func (s *interviewService) finish(ctx context.Context, op string, iv *models.Interview, reason Reason) (*Result, error) {
	r := s.scorer.Score(iv)
	top := r.Top(s.opts.SummaryTop)
	res := &Result{
		InterviewID: iv.ID,
		Reason:      reason,
		Score:       r.Score,
		Total:       r.Total,
		Matched:     r.Matched,
		TopMatched:  top,
		Summary:     Summary(reason, r, top),
		EndedAt:     s.opts.Now(),
	}

	err := s.store.CloseSession(ctx, iv.ID, repositories.Closing{Score: res.Score, Summary: res.Summary, EndedAt: res.EndedAt})
	if err != nil {
		return nil, s.storeErr(op, err)
	}

	s.log.WithFields(logrus.Fields{
		"session_id": iv.ID,
		"reason":     reason,
		"score":      res.Score,
		"questions":  iv.InterviewerTurns(),
	}).Info("interview closed")

	s.publish(ctx, iv.ID, events.TypeComplete, res)
	return res, nil
}

// ask runs the question source under QuestionTimeout. Any failure there is
// reported as retryable.
func (s *interviewService) ask(ctx context.Context, op string, iv *models.Interview) (questions.Prompt, error) {
	qctx, cancel := context.WithTimeout(ctx, s.opts.QuestionTimeout)
	defer cancel()

	p, err := s.source.NextPrompt(qctx, questions.Context{
		Kind:         iv.Kind,
		Role:         iv.Role,
		Technologies: iv.Technologies,
		Difficulty:   iv.Difficulty,
		History:      iv.Turns,
	})
	if err == nil && strings.TrimSpace(p.Text) == "" {
		err = errors.New("empty prompt")
	}
	if err != nil {
		s.log.WithError(err).WithField("session_id", iv.ID).Warn("question source failed")
		if errors.Is(err, context.DeadlineExceeded) {
			return questions.Prompt{}, utils.E(utils.CodeTimeout, op, "question source timed out", err)
		}
		return questions.Prompt{}, utils.E(utils.CodeUnavailable, op, "question source unavailable", err)
	}
	p.Text = strings.TrimSpace(p.Text)
	return p, nil
}

func (s *interviewService) interviewerTurn(iv *models.Interview, p questions.Prompt) *models.Turn {
	t := &models.Turn{
		Speaker:    models.SpeakerInterviewer,
		Text:       p.Text,
		QuestionID: p.QuestionID,
		CreatedAt:  s.opts.Now(),
	}
	if p.Repeat {
		if prev := iv.LastInterviewerTurn(); prev != nil {
			t.RepeatCount = prev.RepeatCount + 1
			if t.QuestionID == "" {
				t.QuestionID = prev.QuestionID
			}
		}
	}
	if p.Source != "" {
		t.Metadata = datatypes.JSONMap{"source": p.Source}
	}
	return t
}

func (s *interviewService) lock(ctx context.Context, op, interviewID string) (func(), error) {
	if strings.TrimSpace(interviewID) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview id is required", nil)
	}
	unlock, err := s.opts.Locker.Lock(ctx, interviewID)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "interview is busy, try again", err)
	}
	return unlock, nil
}

func (s *interviewService) load(ctx context.Context, op, interviewID string) (*models.Interview, error) {
	iv, err := s.store.GetSession(ctx, interviewID)
	if err != nil {
		return nil, s.storeErr(op, err)
	}
	return iv, nil
}

// storeErr translates store failures. Anything that is not a sentinel is an
// outage of the store and retryable.
func (s *interviewService) storeErr(op string, err error) error {
	switch {
	case errors.Is(err, utils.ErrNotFound):
		return utils.E(utils.CodeNotFound, op, "interview not found", err)
	case errors.Is(err, utils.ErrClosed):
		return utils.E(utils.CodeInvalidState, op, "interview already closed", err)
	case utils.IsCode(err, utils.CodeConflict):
		return utils.E(utils.CodeConflict, op, "interview already exists", err)
	case errors.Is(err, context.DeadlineExceeded):
		return utils.E(utils.CodeTimeout, op, "transcript store timed out", err)
	default:
		return utils.E(utils.CodeUnavailable, op, "transcript store unavailable", err)
	}
}

func (s *interviewService) publish(ctx context.Context, interviewID, typ string, data any) {
	ev := events.Event{Type: typ, InterviewID: interviewID, Data: data, At: s.opts.Now()}
	if err := s.opts.Publisher.Publish(ctx, ev); err != nil {
		s.log.WithError(err).WithField("session_id", interviewID).Warn("publish event failed")
	}
}

func questionOf(t *models.Turn) *Question {
	return &Question{Seq: t.Seq, Text: t.Text, QuestionID: t.QuestionID, RepeatCount: t.RepeatCount}
}
