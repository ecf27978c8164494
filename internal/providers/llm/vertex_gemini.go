package llm

import (
	"context"
	"errors"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

type VertexGemini struct {
	client    *vertexgenai.Client
	modelName string
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	return &VertexGemini{client: c, modelName: modelName}, nil
}

func (v *VertexGemini) Name() string { return "vertex:" + v.modelName }

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) StreamAnswer(ctx context.Context, req Request) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	if len(req.Messages) == 0 {
		close(out)
		errs <- errors.New("vertex gemini: request has no messages")
		close(errs)
		return out, errs
	}

	// a model per request: temperature and system prompt differ per interview
	m := v.client.GenerativeModel(v.modelName)
	if req.System != "" {
		m.SystemInstruction = &vertexgenai.Content{Parts: []vertexgenai.Part{vertexgenai.Text(req.System)}}
	}
	if req.Temperature > 0 {
		m.SetTemperature(req.Temperature)
	}
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(req.MaxTokens)
	}

	chat := m.StartChat()
	history := req.Messages[:len(req.Messages)-1]
	for _, msg := range history {
		chat.History = append(chat.History, &vertexgenai.Content{
			Role:  vertexRole(msg.Role),
			Parts: []vertexgenai.Part{vertexgenai.Text(msg.Text)},
		})
	}
	last := req.Messages[len(req.Messages)-1]

	go func() {
		defer close(out)
		defer close(errs)

		it := chat.SendMessageStream(ctx, vertexgenai.Text(last.Text))
		for {
			resp, err := it.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				errs <- err
				return
			}

			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					if t, ok := part.(vertexgenai.Text); ok && string(t) != "" {
						out <- string(t)
					}
				}
			}
		}
	}()

	return out, errs
}

func vertexRole(r Role) string {
	if r == RoleAssistant {
		return "model"
	}
	return "user"
}
