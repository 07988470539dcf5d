package models

import (
	"time"

	"gorm.io/gorm"
)

// BookCopy is a single physical copy of a book. A copy on maintenance is
// never lendable; whether it is on loan derives from its open loans.
type BookCopy struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	BookID        string    `gorm:"type:varchar(36);index;not null" json:"book_id"`
	OnMaintenance bool      `gorm:"default:false" json:"on_maintenance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Book  Book   `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Loans []Loan `gorm:"foreignKey:BookCopyID" json:"loans,omitempty"`
}

func (BookCopy) TableName() string {
	return "book_copies"
}

func (bc *BookCopy) BeforeCreate(tx *gorm.DB) error {
	if bc.ID == "" {
		bc.ID = generateUUID()
	}
	return nil
}
