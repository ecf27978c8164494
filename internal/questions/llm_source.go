package questions

import (
	"context"

	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/providers/llm"
)

const defaultMaxTokens = 180

type LLMSource struct {
	provider  llm.Provider
	maxTokens int32
}

func NewLLMSource(p llm.Provider) *LLMSource {
	return &LLMSource{provider: p, maxTokens: defaultMaxTokens}
}

func (s *LLMSource) NextPrompt(ctx context.Context, c Context) (Prompt, error) {
	req := llm.Request{
		System:      SystemPrompt(c),
		Messages:    chatMessages(c.History),
		Temperature: Temperature(c.Difficulty),
		MaxTokens:   s.maxTokens,
	}

	text, err := llm.Collect(ctx, s.provider, req)
	if err != nil {
		return Prompt{}, err
	}

	if text == "" {
		if len(c.History) == 0 {
			return Prompt{Text: Greeting, Source: s.provider.Name()}, nil
		}
		return Prompt{
			Text:       ClarifyPrompt,
			QuestionID: c.PreviousQuestionID(),
			Repeat:     true,
			Source:     s.provider.Name(),
		}, nil
	}
	return Prompt{Text: text, Source: s.provider.Name()}, nil
}

// chatMessages maps turns onto chat roles. Chat models expect the last
// message to come from the user, so a nudge is appended when it would not.
func chatMessages(history []models.Turn) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+1)
	for _, t := range history {
		role := llm.RoleUser
		if t.Speaker == models.SpeakerInterviewer {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Text: t.Text})
	}

	switch {
	case len(msgs) == 0:
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Text: "Please begin the interview."})
	case msgs[len(msgs)-1].Role == llm.RoleAssistant:
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Text: "Please continue."})
	}
	return msgs
}
