package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Kind string

const (
	KindHR        Kind = "hr"
	KindTechnical Kind = "technical"
)

func (k Kind) Valid() bool { return k == KindHR || k == KindTechnical }

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

type Speaker string

const (
	SpeakerInterviewer Speaker = "interviewer"
	SpeakerCandidate   Speaker = "candidate"
)

// Interview is one interview attempt by one participant. EndedAt, Score and
// Summary are either all nil (open) or all set (closed).
type Interview struct {
	ID           string         `gorm:"column:id;type:uuid;primaryKey" bson:"_id" json:"id"`
	UserID       string         `gorm:"column:user_id;type:text;index" bson:"user_id" json:"user_id"`
	Kind         Kind           `gorm:"column:type;type:text" bson:"type" json:"type"`
	Role         string         `gorm:"column:role;type:text" bson:"role,omitempty" json:"role,omitempty"`
	Technologies pq.StringArray `gorm:"column:techs;type:text[]" bson:"techs" json:"techs"`
	Difficulty   Difficulty     `gorm:"column:difficulty;type:text" bson:"difficulty" json:"difficulty"`

	Turns []Turn `gorm:"foreignKey:InterviewID;constraint:OnDelete:CASCADE" bson:"turns" json:"turns,omitempty"`

	StartedAt time.Time  `gorm:"column:started_at;type:timestamptz;index" bson:"started_at" json:"started_at"`
	EndedAt   *time.Time `gorm:"column:ended_at;type:timestamptz" bson:"ended_at" json:"ended_at,omitempty"`
	Score     *int       `gorm:"column:score;type:integer" bson:"score" json:"score,omitempty"`
	Summary   *string    `gorm:"column:summary;type:text" bson:"summary" json:"summary,omitempty"`
}

func (Interview) TableName() string { return "interviews" }

func (i *Interview) Closed() bool { return i.EndedAt != nil }

// InterviewerTurns counts the questions asked so far, repeats included.
func (i *Interview) InterviewerTurns() int {
	n := 0
	for _, t := range i.Turns {
		if t.Speaker == SpeakerInterviewer {
			n++
		}
	}
	return n
}

// LastInterviewerTurn returns nil when nothing has been asked yet.
func (i *Interview) LastInterviewerTurn() *Turn {
	for j := len(i.Turns) - 1; j >= 0; j-- {
		if i.Turns[j].Speaker == SpeakerInterviewer {
			return &i.Turns[j]
		}
	}
	return nil
}

type Turn struct {
	ID          string  `gorm:"column:id;type:uuid;primaryKey" bson:"id" json:"id"`
	InterviewID string  `gorm:"column:interview_id;type:uuid;index:idx_turn_seq,unique" bson:"-" json:"-"`
	Seq         int     `gorm:"column:seq;type:integer;index:idx_turn_seq,unique" bson:"seq" json:"seq"`
	Speaker     Speaker `gorm:"column:sender;type:text" bson:"sender" json:"sender"`
	Text        string  `gorm:"column:text;type:text" bson:"text" json:"text"`

	// interviewer turns only
	QuestionID  string            `gorm:"column:question_id;type:text" bson:"question_id,omitempty" json:"question_id,omitempty"`
	RepeatCount int               `gorm:"column:repeat_count;type:integer" bson:"repeat_count,omitempty" json:"repeat_count,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"column:metadata;type:jsonb" bson:"metadata,omitempty" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" bson:"created_at" json:"created_at"`
}

func (Turn) TableName() string { return "interview_turns" }

// NormalizeTechnologies trims, lower-cases and deduplicates, keeping first
// occurrence order.
func NormalizeTechnologies(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
