package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Service interface {
	// Log records an entry made by username; an empty username records it without an actor.
	Log(ctx context.Context, username string, message string) error
	// Failure records an actor-less entry for a failed step and alerts operators.
	Failure(ctx context.Context, message string) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *ActivityLog) error
}

var (
	ErrEmptyMessage = errors.New("empty_message")
)
