package repository

import (
	"context"

	"github.com/smallbiznis/addonhook/internal/activity/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.ActivityLog) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO activity_logs (id, username, message, failure, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Username,
		entry.Message,
		entry.Failure,
		entry.CreatedAt,
	).Error
}
