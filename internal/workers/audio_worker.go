package workers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/interviewpilot/internal/events"
	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/providers/stt"
	"github.com/yoockh/interviewpilot/internal/services"
	"github.com/yoockh/interviewpilot/internal/storage"
	"github.com/yoockh/interviewpilot/internal/utils"
)

var errAudioTooLarge = fmt.Errorf("audio larger than %d bytes", services.MaxAudioBytes)

// AudioWorkerPool consumes queued spoken answers: transcribe, then submit the
// text as the candidate's answer.
type AudioWorkerPool struct {
	Redis      *redis.Client
	Buffers    services.BufferService
	Interviews services.InterviewService
	Events     events.Publisher
	NumWorkers int

	STT stt.Provider
	// Audio reads audio_url values. Only gs:// objects are accepted; the
	// store itself refuses buckets other than its own.
	Audio storage.Opener

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
	Language       string
}

func (p *AudioWorkerPool) defaults() {
	if p.Stream == "" {
		p.Stream = "audio:stream"
	}
	if p.Group == "" {
		p.Group = "audio-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 5
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
	if p.Events == nil {
		p.Events = events.Nop{}
	}
}

func (p *AudioWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Buffers == nil || p.Interviews == nil || p.STT == nil {
		return errors.New("AudioWorkerPool missing dependency: Redis/Buffers/Interviews/STT must be set")
	}
	p.defaults()

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	p.Logger.WithFields(logrus.Fields{"stream": p.Stream, "group": p.Group, "workers": p.NumWorkers}).Info("audio workers started")
	return nil
}

func (p *AudioWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				job, ok := services.ParseAudioJob(msg.Values)
				if !ok {
					p.Logger.WithField("redis_id", msg.ID).Warn("dropping malformed audio job")
				} else {
					p.Process(ctx, job)
				}
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func normalizeLanguage(v string) string {
	v = strings.TrimSpace(v)
	switch v {
	case "id", "id-ID":
		return "id-ID"
	case "en", "en-US":
		return "en-US"
	default:
		return v
	}
}

// Process handles one job end to end. Failures are reported on the
// interview's event channel and recorded on the buffer row.
func (p *AudioWorkerPool) Process(ctx context.Context, job services.AudioJob) {
	p.defaults()
	log := p.Logger.WithFields(logrus.Fields{
		"session_id":  job.InterviewID,
		"chunk_index": job.ChunkIndex,
	})

	status := func(st, message string) {
		p.publish(ctx, job.InterviewID, events.TypeStatus, map[string]any{
			"status": st, "message": message, "chunk_index": job.ChunkIndex,
		})
	}
	fail := func(code utils.Code, message string) {
		p.publish(ctx, job.InterviewID, events.TypeError, map[string]any{
			"code": code, "message": message, "chunk_index": job.ChunkIndex,
		})
	}

	row, err := p.Buffers.Get(ctx, job.InterviewID, job.ChunkIndex)
	if err != nil {
		log.WithError(err).Warn("audio answer missing")
		fail(utils.CodeOf(err), "audio answer not found")
		return
	}

	audio, err := p.loadAudio(ctx, row)
	if err != nil {
		log.WithError(err).Warn("audio unreadable")
		_ = p.Buffers.MarkSTT(ctx, job.InterviewID, job.ChunkIndex, "", 0, models.StatusFailed)
		msg := "could not read audio"
		if errors.Is(err, errAudioTooLarge) {
			msg = "audio is too large (max 15MB)"
		}
		fail(utils.CodeInvalidArgument, msg)
		return
	}

	// STT
	_ = p.Buffers.MarkSTT(ctx, job.InterviewID, job.ChunkIndex, "", 0, models.StatusProcessing)
	status(models.StatusProcessing, "transcribing answer")

	language := normalizeLanguage(job.Language)
	if language == "" {
		language = p.Language
	}
	text, conf, err := p.STT.Transcribe(ctx, audio, language)
	if err != nil {
		log.WithError(err).Error("stt failed")
		_ = p.Buffers.MarkSTT(ctx, job.InterviewID, job.ChunkIndex, "", 0, models.StatusFailed)
		fail(utils.CodeUnavailable, "speech to text failed")
		return
	}
	text = strings.TrimSpace(text)
	_ = p.Buffers.MarkSTT(ctx, job.InterviewID, job.ChunkIndex, text, conf, models.StatusDone)

	if text == "" {
		_ = p.Buffers.MarkAnswer(ctx, job.InterviewID, job.ChunkIndex, models.StatusFailed, 0)
		fail(utils.CodeInvalidArgument, "no speech detected, please try again")
		return
	}
	p.publish(ctx, job.InterviewID, events.TypeTranscript, map[string]any{
		"chunk_index": job.ChunkIndex, "text": text, "confidence": conf,
	})

	// answer; the interview service publishes the next question itself
	start := time.Now()
	_ = p.Buffers.MarkAnswer(ctx, job.InterviewID, job.ChunkIndex, models.StatusProcessing, 0)

	if _, err := p.Interviews.SubmitAnswer(ctx, job.InterviewID, text); err != nil {
		log.WithError(err).Warn("submit answer failed")
		_ = p.Buffers.MarkAnswer(ctx, job.InterviewID, job.ChunkIndex, models.StatusFailed, time.Since(start).Milliseconds())
		var ae *utils.AppError
		msg := "failed to submit answer"
		if errors.As(err, &ae) && ae.Message != "" {
			msg = ae.Message
		}
		fail(utils.CodeOf(err), msg)
		return
	}
	_ = p.Buffers.MarkAnswer(ctx, job.InterviewID, job.ChunkIndex, models.StatusDone, time.Since(start).Milliseconds())
}

func (p *AudioWorkerPool) loadAudio(ctx context.Context, row *models.AudioAnswer) ([]byte, error) {
	if row.AudioBase64 != nil && *row.AudioBase64 != "" {
		raw := *row.AudioBase64
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:] // strip data:...;base64,
		}
		if base64.StdEncoding.DecodedLen(len(raw)) > services.MaxAudioBytes+2 {
			return nil, errAudioTooLarge
		}
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, err
		}
		return checkAudio(b)
	}
	if row.AudioURL == nil || *row.AudioURL == "" {
		return nil, errors.New("audio answer has no audio")
	}

	url := *row.AudioURL
	if !strings.HasPrefix(url, "gs://") {
		return nil, fmt.Errorf("unsupported audio url %q", url)
	}
	if p.Audio == nil {
		return nil, errors.New("gs:// audio but no object storage configured")
	}
	body, err := p.Audio.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	b, err := io.ReadAll(io.LimitReader(body, services.MaxAudioBytes+1))
	if err != nil {
		return nil, err
	}
	return checkAudio(b)
}

func checkAudio(b []byte) ([]byte, error) {
	switch {
	case len(b) == 0:
		return nil, errors.New("empty audio")
	case len(b) > services.MaxAudioBytes:
		return nil, errAudioTooLarge
	}
	return b, nil
}

func (p *AudioWorkerPool) publish(ctx context.Context, interviewID, typ string, data any) {
	ev := events.Event{Type: typ, InterviewID: interviewID, Data: data}
	if err := p.Events.Publish(ctx, ev); err != nil {
		p.Logger.WithError(err).WithField("session_id", interviewID).Warn("publish event failed")
	}
}
