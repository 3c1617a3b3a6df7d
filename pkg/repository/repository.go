package repository

import (
	"context"
)

// Repository is a typed gorm store for simple lookups by example.
type Repository[T any] interface {
	FindOne(ctx context.Context, query *T) (*T, error)
	// Update applies fields to the row with resourceID and reports how many rows changed.
	Update(ctx context.Context, resourceID any, fields map[string]any) (int64, error)
}
