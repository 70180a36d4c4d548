package domain

import "context"

// CategoryRepository defines the read-only category operations
type CategoryRepository interface {
	// List retrieves all categories ordered by id
	List(ctx context.Context) ([]*Category, error)

	// GetByID retrieves a category by its ID
	GetByID(ctx context.Context, id int) (*Category, error)
}

// Category groups questions under a display label
type Category struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// CategoryMap flattens categories into id -> type pairs.
func CategoryMap(categories []*Category) map[int]string {
	m := make(map[int]string, len(categories))
	for _, c := range categories {
		m[c.ID] = c.Type
	}
	return m
}
