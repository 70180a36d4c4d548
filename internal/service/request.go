package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexInt decodes from a JSON number or a numeric JSON string.
// Browser clients send select values and object keys as strings.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	v, err := strconv.Atoi(string(bytes.TrimSpace(data)))
	if err != nil {
		return fmt.Errorf("invalid integer %s", data)
	}
	*n = FlexInt(v)
	return nil
}

// CreateQuestionRequest represents the request to create a new question.
// Pointer fields distinguish an absent value from a zero value.
type CreateQuestionRequest struct {
	Question   *string  `json:"question" validate:"required"`
	Answer     *string  `json:"answer" validate:"required"`
	Difficulty *FlexInt `json:"difficulty" validate:"required"`
	Category   *FlexInt `json:"category" validate:"required"`
}

// SearchRequest represents a question search
type SearchRequest struct {
	SearchTerm *string `json:"searchTerm" validate:"required"`
}

// QuizCategory identifies the category a quiz is played in
type QuizCategory struct {
	ID   *FlexInt `json:"id" validate:"required"`
	Type string   `json:"type"`
}

// NextQuizRequest represents the request for the next quiz question
type NextQuizRequest struct {
	PreviousQuestions []int         `json:"previous_questions"`
	QuizCategory      *QuizCategory `json:"quiz_category" validate:"required"`
}
