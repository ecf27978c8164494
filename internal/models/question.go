package models

import (
	"time"

	"github.com/lib/pq"
)

// Question is a question-bank entry. Keywords are used to decide whether an
// answer stayed on topic.
type Question struct {
	ID         string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Category   Kind           `gorm:"column:category_key;type:text;index:idx_question_filter" json:"type"`
	Text       string         `gorm:"column:question;type:text" json:"question"`
	Answer     string         `gorm:"column:answer;type:text" json:"answer,omitempty"`
	Difficulty Difficulty     `gorm:"column:difficulty;type:text;index:idx_question_filter" json:"difficulty"`
	Role       string         `gorm:"column:role;type:text" json:"role,omitempty"`
	Techs      pq.StringArray `gorm:"column:techs;type:text[]" json:"techs,omitempty"`
	Keywords   pq.StringArray `gorm:"column:keywords;type:text[]" json:"keywords,omitempty"`
	OrderNo    int            `gorm:"column:order_no;type:integer;default:0" json:"order_no"`
	CreatedAt  time.Time      `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Question) TableName() string { return "questions" }

type QuestionFilter struct {
	Category   Kind
	Difficulty Difficulty // empty = any
	Role       string
	Techs      []string
	AfterID    string
	Limit      int
}
