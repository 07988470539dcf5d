package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is a rating with an optional comment, left by a user on a book.
// The review workflow keeps at most one review per (user, book) pair; there
// is deliberately no unique constraint here, the replacement is procedural.
type Review struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);index;not null" json:"user_id"`
	BookID    string    `gorm:"type:varchar(36);index;not null" json:"book_id"`
	Comment   string    `gorm:"type:varchar(1000)" json:"comment,omitempty"`
	Rating    int       `gorm:"not null" json:"rating"`
	CreatedAt time.Time `json:"timestamp"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}
