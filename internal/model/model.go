// Package model defines the persisted entities. JSON tags for SavedBook keep
// the Spanish field names the mobile client already speaks.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel contains common fields for all database models.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// BeforeCreate generates a UUID if not already set.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// User is a registered account. The password hash is never serialized.
type User struct {
	BaseModel
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
}

// SavedBook is a favorite saved by one user. At most one row may exist per
// (UserID, GoogleBookID) pair; the composite unique index backs the
// insert-or-return-existing behavior of the repository.
type SavedBook struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_book" json:"usuarioId"`
	GoogleBookID string    `gorm:"not null;uniqueIndex:idx_user_book" json:"googleBookId"`
	Title        string    `gorm:"not null" json:"titulo"`
	Authors      string    `json:"autores"`
	ImageURL     string    `json:"imagenUrl"`
	Comment      string    `json:"comentario"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"fechaGuardado"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate generates a UUID if not already set.
func (b *SavedBook) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All returns every model for auto-migration.
func All() []interface{} {
	return []interface{}{&User{}, &SavedBook{}}
}
