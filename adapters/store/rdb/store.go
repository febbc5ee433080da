package rdb

import (
	"github.com/kompox/cloudmeta/domain"
	"gorm.io/gorm"
)

// NewRepositories opens dbURL, migrates the schema and returns the repositories.
func NewRepositories(dbURL string) (*domain.Repositories, error) {
	db, err := OpenFromURL(dbURL)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return Repositories(db), nil
}

// Repositories wraps an already migrated DB.
func Repositories(db *gorm.DB) *domain.Repositories {
	return &domain.Repositories{
		Provider:  NewProviderRepository(db),
		Operation: NewOperationRepository(db),
	}
}
