package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

// QuestionPage is one fixed-size window of the full question listing
type QuestionPage struct {
	Questions       []*domain.Question
	TotalQuestions  int
	Categories      map[int]string
	CurrentCategory *string
}

// QuestionList is an unpaginated set of questions
type QuestionList struct {
	Questions       []*domain.Question
	TotalQuestions  int
	CurrentCategory *string
}

// CatalogService answers the question bank queries
type CatalogService struct {
	questions  domain.QuestionRepository
	categories domain.CategoryRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(questions domain.QuestionRepository, categories domain.CategoryRepository) *CatalogService {
	return &CatalogService{
		questions:  questions,
		categories: categories,
	}
}

// ListCategories returns every category as id -> type
func (s *CatalogService) ListCategories(ctx context.Context) (map[int]string, error) {
	const op = "list categories"

	categories, err := s.categoryMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(categories) == 0 {
		return nil, fail(op, ErrNotFound, nil)
	}
	return categories, nil
}

// ListQuestions returns page (1-based) of all questions.
//
// A page whose offset equals the total count is still served and comes
// back empty; only an offset beyond the total is not found.
func (s *CatalogService) ListQuestions(ctx context.Context, page int) (*QuestionPage, error) {
	const op = "list questions"

	// Pages start at 1; zero and negative pages are rejected rather than served empty.
	if page < 1 {
		return nil, fail(op, ErrInvalidRequest, nil)
	}

	categories, err := s.categoryMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	total, err := s.questions.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// page-1 > total/size is offset > total without the overflowing multiply
	if total == 0 || page-1 > total/domain.QuestionsPerPage {
		return nil, fail(op, ErrNotFound, nil)
	}
	offset := (page - 1) * domain.QuestionsPerPage

	return &QuestionPage{
		Questions:      window(questions, offset, domain.QuestionsPerPage),
		TotalQuestions: total,
		Categories:     categories,
	}, nil
}

// CreateQuestion stores a new question. Every field is required.
func (s *CatalogService) CreateQuestion(ctx context.Context, req CreateQuestionRequest) (*domain.Question, error) {
	const op = "create question"

	if req.Question == nil || req.Answer == nil || req.Difficulty == nil || req.Category == nil {
		return nil, fail(op, ErrInvalidRequest, nil)
	}

	question := &domain.Question{
		Question:   *req.Question,
		Answer:     *req.Answer,
		Difficulty: int(*req.Difficulty),
		Category:   int(*req.Category),
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, fail(op, ErrUnprocessable, err)
	}
	return question, nil
}

// DeleteQuestion removes the question with id
func (s *CatalogService) DeleteQuestion(ctx context.Context, id int) error {
	const op = "delete question"

	if _, err := s.questions.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return fail(op, ErrNotFound, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.questions.Delete(ctx, id); err != nil {
		return fail(op, ErrUnprocessable, err)
	}
	return nil
}

// SearchQuestions returns every question whose text contains the term, ignoring case
func (s *CatalogService) SearchQuestions(ctx context.Context, req SearchRequest) (*QuestionList, error) {
	const op = "search questions"

	if req.SearchTerm == nil {
		return nil, fail(op, ErrInvalidRequest, nil)
	}

	questions, err := s.questions.Search(ctx, *req.SearchTerm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(questions) == 0 {
		return nil, fail(op, ErrNotFound, nil)
	}

	return &QuestionList{
		Questions:      questions,
		TotalQuestions: len(questions),
	}, nil
}

// ListQuestionsByCategory returns every question of a category.
//
// Only a category that is both absent and unreferenced is not found; an
// existing category without questions yields an empty list.
func (s *CatalogService) ListQuestionsByCategory(ctx context.Context, categoryID int) (*QuestionList, error) {
	const op = "list questions by category"

	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil && !errors.Is(err, domain.ErrCategoryNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	count, err := s.questions.CountByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if count == 0 && category == nil {
		return nil, fail(op, ErrNotFound, nil)
	}
	// questions point at a category row that does not exist
	if category == nil {
		return nil, fail(op, ErrNotFound, domain.NewStoreError(domain.CauseNotFound, domain.ErrCategoryNotFound))
	}

	questions, err := s.questions.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if questions == nil {
		questions = []*domain.Question{}
	}

	return &QuestionList{
		Questions:       questions,
		TotalQuestions:  count,
		CurrentCategory: &category.Type,
	}, nil
}

// NextQuizQuestion picks a question of the quiz category that is not in
// the previous questions. The lowest remaining id is returned.
func (s *CatalogService) NextQuizQuestion(ctx context.Context, req NextQuizRequest) (*domain.Question, error) {
	const op = "next quiz question"

	if req.QuizCategory == nil || req.QuizCategory.ID == nil {
		return nil, fail(op, ErrInvalidRequest, nil)
	}
	previous := req.PreviousQuestions
	if previous == nil {
		previous = []int{}
	}

	question, err := s.questions.NextUnseen(ctx, int(*req.QuizCategory.ID), previous)
	if err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return nil, fail(op, ErrNotFound, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return question, nil
}

func (s *CatalogService) categoryMap(ctx context.Context) (map[int]string, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.CategoryMap(categories), nil
}

// window returns items[offset:offset+size], clamped to the slice bounds
func window(items []*domain.Question, offset, size int) []*domain.Question {
	if offset >= len(items) {
		return []*domain.Question{}
	}
	end := offset + size
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
