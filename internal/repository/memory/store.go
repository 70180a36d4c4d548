// Package memory keeps questions and categories in process memory.
// It backs STORE_DRIVER=memory and the service and handler tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

// Store holds the tables shared by the question and category repositories
type Store struct {
	mu         sync.RWMutex
	nextID     int
	questions  []domain.Question
	categories []domain.Category
}

// NewStore creates a store seeded with categories
func NewStore(categories ...domain.Category) *Store {
	s := &Store{nextID: 1}
	s.categories = append(s.categories, categories...)
	slices.SortFunc(s.categories, func(a, b domain.Category) int { return a.ID - b.ID })
	return s
}

// Questions returns a repository over the store's questions
func (s *Store) Questions() *QuestionRepository {
	return &QuestionRepository{store: s}
}

// Categories returns a repository over the store's categories
func (s *Store) Categories() *CategoryRepository {
	return &CategoryRepository{store: s}
}

// Ping reports the store as reachable
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// QuestionRepository implements the domain.QuestionRepository interface
type QuestionRepository struct {
	store *Store
}

// List returns every question ordered by id
func (r *QuestionRepository) List(ctx context.Context) ([]*domain.Question, error) {
	return r.filter(ctx, func(*domain.Question) bool { return true })
}

// Count returns the number of questions
func (r *QuestionRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.NewStoreError(domain.CauseConnectivity, err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.questions), nil
}

// GetByID returns a copy of the question with id
func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError(domain.CauseConnectivity, err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if i := r.store.indexOf(id); i >= 0 {
		q := r.store.questions[i]
		return &q, nil
	}
	return nil, domain.NewStoreError(domain.CauseNotFound, domain.ErrQuestionNotFound)
}

// Create stores a question and assigns its ID
func (r *QuestionRepository) Create(ctx context.Context, question *domain.Question) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError(domain.CauseConnectivity, err)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	question.ID = r.store.nextID
	r.store.nextID++
	r.store.questions = append(r.store.questions, *question)
	return nil
}

// Delete removes the question with id
func (r *QuestionRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError(domain.CauseConnectivity, err)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	i := r.store.indexOf(id)
	if i < 0 {
		return domain.NewStoreError(domain.CauseNotFound, domain.ErrQuestionNotFound)
	}
	r.store.questions = slices.Delete(r.store.questions, i, i+1)
	return nil
}

// Search returns questions whose text contains term, ignoring case
func (r *QuestionRepository) Search(ctx context.Context, term string) ([]*domain.Question, error) {
	term = strings.ToLower(term)
	return r.filter(ctx, func(q *domain.Question) bool {
		return strings.Contains(strings.ToLower(q.Question), term)
	})
}

// ListByCategory returns the questions of a category
func (r *QuestionRepository) ListByCategory(ctx context.Context, categoryID int) ([]*domain.Question, error) {
	return r.filter(ctx, func(q *domain.Question) bool { return q.Category == categoryID })
}

// CountByCategory returns the number of questions in a category
func (r *QuestionRepository) CountByCategory(ctx context.Context, categoryID int) (int, error) {
	questions, err := r.ListByCategory(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	return len(questions), nil
}

// NextUnseen returns the lowest-id question of a category not in exclude
func (r *QuestionRepository) NextUnseen(ctx context.Context, categoryID int, exclude []int) (*domain.Question, error) {
	questions, err := r.filter(ctx, func(q *domain.Question) bool {
		return q.Category == categoryID && !slices.Contains(exclude, q.ID)
	})
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.NewStoreError(domain.CauseNotFound, domain.ErrQuestionNotFound)
	}
	return questions[0], nil
}

func (r *QuestionRepository) filter(ctx context.Context, keep func(*domain.Question) bool) ([]*domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError(domain.CauseConnectivity, err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.Question
	for _, q := range r.store.questions {
		if keep(&q) {
			out = append(out, &q)
		}
	}
	return out, nil
}

// questions are appended with increasing ids, so the slice stays sorted
func (s *Store) indexOf(id int) int {
	i, found := slices.BinarySearchFunc(s.questions, id, func(q domain.Question, id int) int { return q.ID - id })
	if !found {
		return -1
	}
	return i
}

// CategoryRepository implements the domain.CategoryRepository interface
type CategoryRepository struct {
	store *Store
}

// List returns every category ordered by id
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError(domain.CauseConnectivity, err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*domain.Category, 0, len(r.store.categories))
	for _, c := range r.store.categories {
		out = append(out, &c)
	}
	return out, nil
}

// GetByID returns the category with id
func (r *CategoryRepository) GetByID(ctx context.Context, id int) (*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError(domain.CauseConnectivity, err)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, c := range r.store.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, domain.NewStoreError(domain.CauseNotFound, domain.ErrCategoryNotFound)
}
