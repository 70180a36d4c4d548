package domain

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// QuestionsPerPage is the fixed window size of a question listing page.
const QuestionsPerPage = 10

// QuestionRepository defines the interface for question-related operations
type QuestionRepository interface {
	// List retrieves every question ordered by id
	List(ctx context.Context) ([]*Question, error)

	// Count returns the number of stored questions
	Count(ctx context.Context) (int, error)

	// GetByID retrieves a question by its ID
	GetByID(ctx context.Context, id int) (*Question, error)

	// Create inserts a new question and fills in its store-assigned ID
	Create(ctx context.Context, question *Question) error

	// Delete deletes a question
	Delete(ctx context.Context, id int) error

	// Search retrieves questions whose text contains term, ignoring case
	Search(ctx context.Context, term string) ([]*Question, error)

	// ListByCategory retrieves every question of a category
	ListByCategory(ctx context.Context, categoryID int) ([]*Question, error)

	// CountByCategory returns the number of questions of a category
	CountByCategory(ctx context.Context, categoryID int) (int, error)

	// NextUnseen retrieves the lowest-id question of a category whose id is not in exclude
	NextUnseen(ctx context.Context, categoryID int, exclude []int) (*Question, error)
}

// Question represents a trivia question
type Question struct {
	ID         int    `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   int    `json:"category"`
	Difficulty int    `json:"difficulty"`
}
