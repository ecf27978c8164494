package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	TypeQuestion   = "question"
	TypeComplete   = "complete"
	TypeTranscript = "transcript"
	TypeStatus     = "status"
	TypeError      = "error"
)

// Event is what WebSocket clients of an interview receive.
type Event struct {
	Type        string    `json:"type"`
	InterviewID string    `json:"interview_id"`
	Data        any       `json:"data,omitempty"`
	At          time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Channel is the pub/sub channel carrying one interview's events.
func Channel(interviewID string) string {
	return "interview:" + interviewID + ":events"
}

type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, Channel(ev.InterviewID), b).Err()
}

// Nop drops every event; used when Redis is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
