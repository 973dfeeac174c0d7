// Package user persists registered accounts.
package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillsenselab/shelfmark/internal/database"
	apperrors "github.com/skillsenselab/shelfmark/internal/errors"
	"github.com/skillsenselab/shelfmark/internal/model"
)

// Repository provides CRUD over users. All methods take a context and use
// the injected storage handle; there is no package-level connection.
type Repository struct {
	db *database.DB
}

// NewRepository creates a user repository backed by db.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. A duplicate email surfaces as ALREADY_EXISTS;
// the unique index makes the check-and-insert atomic under concurrent
// registrations.
func (r *Repository) Create(ctx context.Context, email, passwordHash string) (*model.User, error) {
	u := &model.User{Email: email, PasswordHash: passwordHash}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(u)
	if res.Error != nil {
		return nil, apperrors.Database("create user", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.AlreadyExists("user")
	}
	return u, nil
}

// FindByEmail returns the user with the given email, or NOT_FOUND.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Database("find user by email", err)
	}
	return &u, nil
}

// FindByID returns the user with the given id, or NOT_FOUND.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Database("find user by id", err)
	}
	return &u, nil
}
