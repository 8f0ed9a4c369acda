package dto

import "github.com/noah-isme/gema-course-api/internal/models"

// QuizQuestionInput describes one question appended by a course manager.
type QuizQuestionInput struct {
	Prompt        string   `json:"prompt" validate:"required,min=3"`
	Options       []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectAnswer int      `json:"correct_answer" validate:"gte=0"`
}

// QuizQuestionCreateRequest appends questions to a course quiz.
type QuizQuestionCreateRequest struct {
	Questions []QuizQuestionInput `json:"questions" validate:"required,min=1,dive"`
}

// QuizSubmitRequest carries the chosen option index per question.
type QuizSubmitRequest struct {
	CourseID uint  `json:"course_id" validate:"required,gt=0"`
	Answers  []int `json:"answers" validate:"required,min=1,dive,gte=0"`
}

// QuizQuestionResponse hides the correct answer from students.
type QuizQuestionResponse struct {
	ID       uint     `json:"id"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	Position int      `json:"position"`
}

// QuizStateResponse is the gate decision for a student and course.
type QuizStateResponse struct {
	Locked          bool                   `json:"locked"`
	Percent         int                    `json:"percent"`
	Attempted       bool                   `json:"attempted"`
	Score           *int                   `json:"score,omitempty"`
	Questions       []QuizQuestionResponse `json:"questions,omitempty"`
	PreviousAnswers []int                  `json:"previousAnswers,omitempty"`
}

// QuizSubmitResponse reports the stored score.
type QuizSubmitResponse struct {
	Score             int  `json:"score"`
	Total             int  `json:"total"`
	CertificateIssued bool `json:"certificate_issued"`
}

// NewQuizQuestionResponse converts a question model into a DTO.
func NewQuizQuestionResponse(model models.QuizQuestion) QuizQuestionResponse {
	return QuizQuestionResponse{
		ID:       model.ID,
		Prompt:   model.Prompt,
		Options:  model.OptionList(),
		Position: model.Position,
	}
}

// NewQuizQuestionResponseSlice converts question models into DTOs.
func NewQuizQuestionResponseSlice(items []models.QuizQuestion) []QuizQuestionResponse {
	out := make([]QuizQuestionResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewQuizQuestionResponse(item))
	}
	return out
}
