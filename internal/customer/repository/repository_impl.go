package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/addonhook/internal/customer/domain"
	"github.com/smallbiznis/addonhook/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	if id == 0 {
		return nil, nil
	}
	return repository.ProvideStore[domain.Customer](db).FindOne(ctx, &domain.Customer{ID: id})
}
