package services

import (
	"context"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yoockh/interviewpilot/internal/models"
	mongorepo "github.com/yoockh/interviewpilot/internal/repositories/mongo"
	"github.com/yoockh/interviewpilot/internal/utils"
)

// room for a data:audio/...;base64, prefix
var maxAudioBase64 = base64.StdEncoding.EncodedLen(MaxAudioBytes) + 64

// AudioJob is one queued spoken answer, as carried on the audio stream.
type AudioJob struct {
	InterviewID string
	ChunkIndex  int64
	Language    string
}

func (j AudioJob) Values() map[string]any {
	return map[string]any{
		"interview_id": j.InterviewID,
		"chunk_index":  strconv.FormatInt(j.ChunkIndex, 10),
		"language":     j.Language,
		"ts_unix":      strconv.FormatInt(time.Now().UTC().Unix(), 10),
	}
}

// ParseAudioJob reads a stream message; ok is false for malformed entries.
func ParseAudioJob(values map[string]any) (AudioJob, bool) {
	str := func(k string) string {
		s, _ := values[k].(string)
		return s
	}
	j := AudioJob{InterviewID: str("interview_id"), Language: str("language")}
	n, err := strconv.ParseInt(str("chunk_index"), 10, 64)
	if j.InterviewID == "" || err != nil || n <= 0 {
		return AudioJob{}, false
	}
	j.ChunkIndex = n
	return j, true
}

type BufferService interface {
	// Enqueue stores the answer audio as pending and queues it for the
	// workers.
	Enqueue(ctx context.Context, interviewID string, chunkIndex int64, audioURL, audioBase64 *string, language string) (*models.AudioAnswer, error)
	Get(ctx context.Context, interviewID string, chunkIndex int64) (*models.AudioAnswer, error)
	MarkSTT(ctx context.Context, interviewID string, chunkIndex int64, rawText string, confidence float64, status string) error
	MarkAnswer(ctx context.Context, interviewID string, chunkIndex int64, status string, processingMS int64) error
	ListByInterview(ctx context.Context, interviewID string, limit int64) ([]models.AudioAnswer, error)
}

type bufferService struct {
	buffers mongorepo.BufferRepository
	rdb     *redis.Client
	stream  string
	ttl     time.Duration
}

func NewBufferService(buffers mongorepo.BufferRepository, rdb *redis.Client, stream string, ttl time.Duration) BufferService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if stream == "" {
		stream = "audio:stream"
	}
	return &bufferService{buffers: buffers, rdb: rdb, stream: stream, ttl: ttl}
}

func (s *bufferService) Enqueue(ctx context.Context, interviewID string, chunkIndex int64, audioURL, audioBase64 *string, language string) (*models.AudioAnswer, error) {
	const op = "BufferService.Enqueue"

	if interviewID == "" || chunkIndex <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id is required and chunk_index must be > 0", nil)
	}
	if audioURL == nil && audioBase64 == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "audio_base64 or audio_url required", nil)
	}
	// urls are read from object storage only, never fetched
	if audioURL != nil && !strings.HasPrefix(*audioURL, "gs://") {
		return nil, utils.E(utils.CodeInvalidArgument, op, "audio_url must be a gs:// path", nil)
	}
	if audioBase64 != nil && len(*audioBase64) > maxAudioBase64 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "audio too large (max 15MB)", nil)
	}

	now := time.Now().UTC()
	doc := &models.AudioAnswer{
		InterviewID: interviewID,
		ChunkIndex:  chunkIndex,
		AudioURL:    audioURL,
		AudioBase64: audioBase64,

		STTStatus:    models.StatusPending,
		AnswerStatus: models.StatusPending,

		Timestamp: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.buffers.Insert(ctx, doc); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to insert audio answer", err)
	}

	job := AudioJob{InterviewID: interviewID, ChunkIndex: chunkIndex, Language: language}
	if err := s.rdb.XAdd(ctx, &redis.XAddArgs{Stream: s.stream, Values: job.Values()}).Err(); err != nil {
		_ = s.buffers.UpdateSTT(ctx, interviewID, chunkIndex, "", 0, models.StatusFailed)
		return nil, utils.E(utils.CodeUnavailable, op, "failed to enqueue audio", err)
	}
	return doc, nil
}

func (s *bufferService) Get(ctx context.Context, interviewID string, chunkIndex int64) (*models.AudioAnswer, error) {
	const op = "BufferService.Get"

	a, err := s.buffers.Get(ctx, interviewID, chunkIndex)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "audio answer not found or expired", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load audio answer", err)
	}
	return a, nil
}

func (s *bufferService) MarkSTT(ctx context.Context, interviewID string, chunkIndex int64, rawText string, confidence float64, status string) error {
	const op = "BufferService.MarkSTT"

	if interviewID == "" || chunkIndex <= 0 || status == "" {
		return utils.E(utils.CodeInvalidArgument, op, "interview_id, chunk_index (>0), and status are required", nil)
	}
	if err := s.buffers.UpdateSTT(ctx, interviewID, chunkIndex, rawText, confidence, status); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update stt fields", err)
	}
	return nil
}

func (s *bufferService) MarkAnswer(ctx context.Context, interviewID string, chunkIndex int64, status string, processingMS int64) error {
	const op = "BufferService.MarkAnswer"

	if interviewID == "" || chunkIndex <= 0 || status == "" {
		return utils.E(utils.CodeInvalidArgument, op, "interview_id, chunk_index (>0), and status are required", nil)
	}
	if err := s.buffers.UpdateAnswer(ctx, interviewID, chunkIndex, status, processingMS); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update answer status", err)
	}
	return nil
}

func (s *bufferService) ListByInterview(ctx context.Context, interviewID string, limit int64) ([]models.AudioAnswer, error) {
	const op = "BufferService.ListByInterview"

	if interviewID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id is required", nil)
	}
	out, err := s.buffers.ListByInterview(ctx, interviewID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list audio answers", err)
	}
	return out, nil
}
