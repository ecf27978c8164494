package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiAPI talks to the Gemini API with an API key, for deployments
// without a Vertex AI project.
type GeminiAPI struct {
	client    *genai.Client
	modelName string
}

func NewGeminiAPI(ctx context.Context, apiKey, model string) (*GeminiAPI, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}
	return &GeminiAPI{client: client, modelName: model}, nil
}

func (g *GeminiAPI) Name() string { return "gemini:" + g.modelName }

func (g *GeminiAPI) Close() error { return nil }

func (g *GeminiAPI) StreamAnswer(ctx context.Context, req Request) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg.Role == RoleAssistant {
			contents = append(contents, genai.NewContentFromText(msg.Text, genai.RoleModel))
		} else {
			contents = append(contents, genai.NewContentFromText(msg.Text, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(req.Temperature)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = req.MaxTokens
	}

	go func() {
		defer close(out)
		defer close(errs)

		if len(contents) == 0 {
			errs <- errors.New("gemini: request has no messages")
			return
		}

		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.modelName, contents, cfg) {
			if err != nil {
				errs <- fmt.Errorf("generate content: %w", err)
				return
			}
			for _, cand := range resp.Candidates {
				if cand == nil || cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					if part != nil && part.Text != "" {
						out <- part.Text
					}
				}
			}
		}
	}()

	return out, errs
}
