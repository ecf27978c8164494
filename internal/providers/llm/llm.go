package llm

import (
	"context"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role Role
	Text string
}

// Request is one chat completion: a system instruction plus the conversation.
type Request struct {
	System      string
	Messages    []Message
	Temperature float32
	MaxTokens   int32
}

type Provider interface {
	// StreamAnswer returns a stream of text chunks (incremental).
	StreamAnswer(ctx context.Context, req Request) (chunks <-chan string, errs <-chan error)
	Name() string
	Close() error
}

// Collect drains a stream into one string. A stream error wins over any text
// received before it.
func Collect(ctx context.Context, p Provider, req Request) (string, error) {
	chunks, errs := p.StreamAnswer(ctx, req)

	var full strings.Builder
	for chunk := range chunks {
		full.WriteString(chunk)
	}
	if err := <-errs; err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(full.String()), nil
}
