package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AudioAnswer is a spoken answer queued for transcription.
type AudioAnswer struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InterviewID string             `bson:"interview_id" json:"interview_id"`
	ChunkIndex  int64              `bson:"chunk_index" json:"chunk_index"`

	AudioURL    *string `bson:"audio_url,omitempty" json:"audio_url,omitempty"`
	AudioBase64 *string `bson:"audio_base64,omitempty" json:"-"`

	RawText       string  `bson:"raw_text,omitempty" json:"raw_text,omitempty"`
	STTStatus     string  `bson:"stt_status" json:"stt_status"` // pending|processing|done|failed
	STTConfidence float64 `bson:"stt_confidence,omitempty" json:"stt_confidence,omitempty"`

	AnswerStatus string `bson:"answer_status" json:"answer_status"` // pending|processing|done|failed

	ProcessingTimeMS int64     `bson:"processing_time_ms,omitempty" json:"processing_time_ms,omitempty"`
	Timestamp        time.Time `bson:"timestamp" json:"timestamp"`

	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"` // for TTL index
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)
