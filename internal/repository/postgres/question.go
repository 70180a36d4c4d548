package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zizouhuweidi/trivia/internal/domain"
)

const questionColumns = `id, question, answer, category, difficulty`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// QuestionRepository implements the domain.QuestionRepository interface
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{
		pool: pool,
	}
}

// List retrieves every question ordered by id
func (r *QuestionRepository) List(ctx context.Context) ([]*domain.Question, error) {
	return r.query(ctx, "failed to list questions", `
		SELECT `+questionColumns+`
		FROM questions
		ORDER BY id
	`)
}

// Count returns the number of stored questions
func (r *QuestionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count); err != nil {
		return 0, storeError("failed to count questions", err)
	}
	return count, nil
}

// GetByID retrieves a question by its ID
func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*domain.Question, error) {
	var question domain.Question
	err := r.pool.QueryRow(ctx, `
		SELECT `+questionColumns+`
		FROM questions
		WHERE id = $1
	`, id).Scan(
		&question.ID,
		&question.Question,
		&question.Answer,
		&question.Category,
		&question.Difficulty,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewStoreError(domain.CauseNotFound, domain.ErrQuestionNotFound)
		}
		return nil, storeError("failed to get question", err)
	}
	return &question, nil
}

// Create inserts a new question
func (r *QuestionRepository) Create(ctx context.Context, question *domain.Question) error {
	query := `
		INSERT INTO questions (question, answer, category, difficulty)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		question.Question,
		question.Answer,
		question.Category,
		question.Difficulty,
	).Scan(&question.ID)
	if err != nil {
		return storeError("failed to create question", err)
	}
	return nil
}

// Delete deletes a question
func (r *QuestionRepository) Delete(ctx context.Context, id int) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return storeError("failed to delete question", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewStoreError(domain.CauseNotFound, domain.ErrQuestionNotFound)
	}
	return nil
}

// Search retrieves questions whose text contains term, ignoring case.
// LIKE metacharacters in term match literally.
func (r *QuestionRepository) Search(ctx context.Context, term string) ([]*domain.Question, error) {
	return r.query(ctx, "failed to search questions", `
		SELECT `+questionColumns+`
		FROM questions
		WHERE question ILIKE '%' || $1 || '%'
		ORDER BY id
	`, likeEscaper.Replace(term))
}

// ListByCategory retrieves every question of a category
func (r *QuestionRepository) ListByCategory(ctx context.Context, categoryID int) ([]*domain.Question, error) {
	return r.query(ctx, "failed to list questions by category", `
		SELECT `+questionColumns+`
		FROM questions
		WHERE category = $1
		ORDER BY id
	`, categoryID)
}

// CountByCategory returns the number of questions of a category
func (r *QuestionRepository) CountByCategory(ctx context.Context, categoryID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions WHERE category = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, storeError("failed to count questions by category", err)
	}
	return count, nil
}

// NextUnseen retrieves the first question of a category that is not excluded
func (r *QuestionRepository) NextUnseen(ctx context.Context, categoryID int, exclude []int) (*domain.Question, error) {
	// a NULL array would make the predicate NULL for every row
	if exclude == nil {
		exclude = []int{}
	}

	var question domain.Question
	err := r.pool.QueryRow(ctx, `
		SELECT `+questionColumns+`
		FROM questions
		WHERE category = $1 AND NOT (id = ANY($2::int[]))
		ORDER BY id
		LIMIT 1
	`, categoryID, exclude).Scan(
		&question.ID,
		&question.Question,
		&question.Answer,
		&question.Category,
		&question.Difficulty,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewStoreError(domain.CauseNotFound, domain.ErrQuestionNotFound)
		}
		return nil, storeError("failed to get next question", err)
	}
	return &question, nil
}

func (r *QuestionRepository) query(ctx context.Context, msg, sql string, args ...any) ([]*domain.Question, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeError(msg, err)
	}

	questions, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[domain.Question])
	if err != nil {
		return nil, storeError(msg, err)
	}
	return questions, nil
}
