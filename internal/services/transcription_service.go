package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/interviewpilot/internal/providers/stt"
	"github.com/yoockh/interviewpilot/internal/storage"
	"github.com/yoockh/interviewpilot/internal/utils"
)

// MaxAudioBytes bounds one spoken answer.
const MaxAudioBytes = 15 << 20

type Transcript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
	AudioPath  string  `json:"audio_path,omitempty"`
}

type TranscriptionService interface {
	// Transcribe converts one answer recording to text. The recording is
	// archived first when an uploader is configured.
	Transcribe(ctx context.Context, interviewID, filename string, audio []byte, language string) (*Transcript, error)
}

type transcriptionService struct {
	stt      stt.Provider
	uploader storage.Uploader
	language string
	timeout  time.Duration
	log      *logrus.Logger
}

func NewTranscriptionService(p stt.Provider, uploader storage.Uploader, language string, log *logrus.Logger) TranscriptionService {
	if language == "" {
		language = "en-US"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &transcriptionService{stt: p, uploader: uploader, language: language, timeout: 60 * time.Second, log: log}
}

func (s *transcriptionService) Transcribe(ctx context.Context, interviewID, filename string, audio []byte, language string) (*Transcript, error) {
	const op = "TranscriptionService.Transcribe"

	if s.stt == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "speech to text is not configured", nil)
	}
	if len(audio) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "no audio file uploaded", nil)
	}
	if len(audio) > MaxAudioBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, fmt.Sprintf("audio larger than %d bytes", MaxAudioBytes), nil)
	}
	if language == "" {
		language = s.language
	}

	out := &Transcript{}
	if s.uploader != nil && interviewID != "" {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
		if ext == "" {
			ext = "webm"
		}
		name := storage.ObjectName(interviewID, uuid.NewString()+"."+ext)
		p, err := s.uploader.Upload(ctx, name, "audio/"+ext, bytes.NewReader(audio))
		if err != nil {
			// archiving is best effort
			s.log.WithError(err).WithField("session_id", interviewID).Warn("audio archive failed")
		} else {
			out.AudioPath = p
		}
	}

	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, conf, err := s.stt.Transcribe(tctx, audio, language)
	if err != nil {
		if tctx.Err() == context.DeadlineExceeded {
			return nil, utils.E(utils.CodeTimeout, op, "speech to text timed out", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "failed to transcribe audio", err)
	}
	out.Text = strings.TrimSpace(text)
	out.Confidence = conf
	return out, nil
}
