// Package book persists each user's saved favorites.
package book

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

// CreateInput carries the client-supplied fields for a save request.
type CreateInput struct {
	GoogleBookID string
	Title        string
	Authors      string
	ImageURL     string
	Comment      string
}

// Repository provides CRUD over saved books. Every operation is scoped to an
// owning user: a row is never readable or mutable through another user's id,
// and ownership mismatches are indistinguishable from absence.
type Repository struct {
	db *database.DB
}

// NewRepository creates a book repository backed by db.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a book for the owner. Saving the same GoogleBookID twice is
// idempotent: the insert runs with ON CONFLICT DO NOTHING against the
// (user_id, google_book_id) unique index, and when no row was inserted the
// existing one is returned with created=false. Concurrent saves of the same
// pair therefore produce exactly one row.
func (r *Repository) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*model.SavedBook, bool, error) {
	b := &model.SavedBook{
		UserID:       ownerID,
		GoogleBookID: in.GoogleBookID,
		Title:        in.Title,
		Authors:      in.Authors,
		ImageURL:     in.ImageURL,
		Comment:      in.Comment,
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "google_book_id"}},
			DoNothing: true,
		}).
		Create(b)
	if res.Error != nil {
		return nil, false, apperrors.Database("save book", res.Error)
	}
	if res.RowsAffected == 0 {
		existing, err := r.findByKey(ctx, ownerID, in.GoogleBookID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return b, true, nil
}

// List returns the owner's saved books, most recently saved first.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID) ([]model.SavedBook, error) {
	books := []model.SavedBook{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&books).Error
	if err != nil {
		return nil, apperrors.Database("list books", err)
	}
	return books, nil
}

// UpdateComment mutates only the comment of the owner's book. A bookID that
// does not exist or belongs to another user yields NOT_FOUND.
func (r *Repository) UpdateComment(ctx context.Context, ownerID, bookID uuid.UUID, comment string) (*model.SavedBook, error) {
	res := r.db.WithContext(ctx).
		Model(&model.SavedBook{}).
		Where("id = ? AND user_id = ?", bookID, ownerID).
		Update("comment", comment)
	if res.Error != nil {
		return nil, apperrors.Database("update book", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound("book")
	}

	var b model.SavedBook
	if err := r.db.WithContext(ctx).Where("id = ?", bookID).First(&b).Error; err != nil {
		return nil, apperrors.Database("reload book", err)
	}
	return &b, nil
}

// Delete removes the owner's book. A bookID that does not exist or belongs
// to another user yields NOT_FOUND.
func (r *Repository) Delete(ctx context.Context, ownerID, bookID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", bookID, ownerID).
		Delete(&model.SavedBook{})
	if res.Error != nil {
		return apperrors.Database("delete book", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("book")
	}
	return nil
}

func (r *Repository) findByKey(ctx context.Context, ownerID uuid.UUID, googleBookID string) (*model.SavedBook, error) {
	var b model.SavedBook
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND google_book_id = ?", ownerID, googleBookID).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Row vanished between conflict and lookup (concurrent delete).
			return nil, apperrors.NotFound("book")
		}
		return nil, apperrors.Database("find book", err)
	}
	return &b, nil
}
