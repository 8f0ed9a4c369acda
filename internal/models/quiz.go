package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// QuizQuestion is a multiple-choice question attached to a course quiz.
type QuizQuestion struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CourseID      uint           `gorm:"index;not null" json:"course_id"`
	Prompt        string         `gorm:"type:text;not null" json:"prompt"`
	Options       datatypes.JSON `gorm:"type:json" json:"-"`
	CorrectAnswer int            `gorm:"not null" json:"-"`
	Position      int            `gorm:"not null;default:0" json:"position"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// SetOptions serializes the answer choices into the JSON column.
func (q *QuizQuestion) SetOptions(options []string) {
	q.Options = marshalJSONList(options)
}

// OptionList returns the stored answer choices.
func (q QuizQuestion) OptionList() []string {
	var options []string
	if len(q.Options) == 0 || json.Unmarshal(q.Options, &options) != nil {
		return []string{}
	}
	return options
}

// QuizAttempt stores the latest answers of a student for a course quiz.
type QuizAttempt struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	StudentID   uint           `gorm:"not null;uniqueIndex:idx_quiz_attempts_student_course" json:"student_id"`
	CourseID    uint           `gorm:"not null;uniqueIndex:idx_quiz_attempts_student_course" json:"course_id"`
	Answers     datatypes.JSON `gorm:"type:json" json:"-"`
	Score       int            `gorm:"not null;default:0" json:"score"`
	SubmittedAt time.Time      `gorm:"not null" json:"submitted_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// SetAnswers serializes the chosen option indexes.
func (a *QuizAttempt) SetAnswers(answers []int) {
	a.Answers = marshalJSONList(answers)
}

// AnswerList returns the stored option indexes in question order.
func (a QuizAttempt) AnswerList() []int {
	var answers []int
	if len(a.Answers) == 0 || json.Unmarshal(a.Answers, &answers) != nil {
		return []int{}
	}
	return answers
}

func marshalJSONList[T any](values []T) datatypes.JSON {
	if values == nil {
		values = []T{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(data)
}
