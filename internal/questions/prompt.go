package questions

import (
	"strings"

	"github.com/yoockh/interviewpilot/internal/models"
)

// SystemPrompt builds the interviewer instruction for an LLM.
func SystemPrompt(c Context) string {
	var b strings.Builder
	b.WriteString("You are an expert interviewer conducting a structured interview.\n")

	if c.Kind == models.KindHR {
		b.WriteString("Interview type: HR round. Focus on communication, culture fit, past experiences.\n")
	} else {
		role := c.Role
		if role == "" {
			role = "general"
		}
		focus := "general CS fundamentals"
		if len(c.Technologies) > 0 {
			focus = strings.Join(c.Technologies, ", ")
		}
		b.WriteString("Interview type: Technical round for role: " + role + " with focus on: " + focus + ".\n")
	}

	lvl := c.Difficulty
	if lvl == "" {
		lvl = models.DifficultyBeginner
	}
	b.WriteString("Target difficulty: " + string(lvl) + ".\n")
	b.WriteString("Guidelines:\n" +
		"- Start with BASIC, foundational questions first (definitions, simple concepts).\n" +
		"- Only increase difficulty GRADUALLY after the candidate demonstrates mastery (2 clear correct answers in a row).\n" +
		"- Avoid advanced or niche topics until later stages.\n" +
		"- Ask ONE concise question at a time. Do NOT provide the answer.\n" +
		"- Prefer practical, scenario-based questions but keep them simple initially.\n" +
		"- If earlier answers were weak or it's the beginning, remain at beginner level.\n")

	if len(c.History) == 0 {
		b.WriteString("\nFor your next message: write a short, friendly greeting and ask if we can start the interview " +
			"(no technical content yet). Example: \"" + Greeting + "\"")
		return b.String()
	}

	b.WriteString("\nNow, as Interviewer, ask the next SINGLE " + opener(lvl) +
		" question (only ramp up after two strong answers). Reply with the question only.")
	return b.String()
}

func opener(d models.Difficulty) string {
	switch d {
	case models.DifficultyIntermediate:
		return "intermediate-level"
	case models.DifficultyAdvanced:
		return "advanced-ready"
	default:
		return "beginner-friendly"
	}
}

// Temperature grows with difficulty so harder interviews vary more.
func Temperature(d models.Difficulty) float32 {
	switch d {
	case models.DifficultyAdvanced:
		return 0.9
	case models.DifficultyIntermediate:
		return 0.7
	default:
		return 0.5
	}
}
