// Package questions decides what the interviewer says next.
package questions

import (
	"context"

	"github.com/yoockh/interviewpilot/internal/models"
)

const (
	Greeting      = "Hi! How are you doing today? Shall we start the interview?"
	ClarifyPrompt = "Could you please clarify your last answer?"
)

// Context is everything a Source may look at. History is the full turn list,
// oldest first; it is empty for the opening prompt.
type Context struct {
	Kind         models.Kind
	Role         string
	Technologies []string
	Difficulty   models.Difficulty
	History      []models.Turn
}

// LastQuestion returns the most recent interviewer turn, or nil.
func (c Context) LastQuestion() *models.Turn {
	for i := len(c.History) - 1; i >= 0; i-- {
		if c.History[i].Speaker == models.SpeakerInterviewer {
			return &c.History[i]
		}
	}
	return nil
}

func (c Context) PreviousQuestionID() string {
	if t := c.LastQuestion(); t != nil {
		return t.QuestionID
	}
	return ""
}

// LastAnswer returns the text of the most recent candidate turn.
func (c Context) LastAnswer() string {
	for i := len(c.History) - 1; i >= 0; i-- {
		if c.History[i].Speaker == models.SpeakerCandidate {
			return c.History[i].Text
		}
	}
	return ""
}

// Prompt is the next interviewer utterance. Repeat marks a re-ask of the
// previous question; QuestionID then names that question.
type Prompt struct {
	Text       string
	QuestionID string
	Repeat     bool
	Source     string
}

type Source interface {
	NextPrompt(ctx context.Context, c Context) (Prompt, error)
}
