package models

import (
	"time"

	"gorm.io/gorm"
)

// Author is a writer of one or more books.
type Author struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	FirstName string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string    `gorm:"type:varchar(100);not null;index" json:"last_name"`
	Portrait  string    `gorm:"type:varchar(255)" json:"portrait,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Books []Book `gorm:"many2many:book_authors" json:"books,omitempty"`
}

func (Author) TableName() string {
	return "authors"
}

func (a *Author) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = generateUUID()
	}
	return nil
}

// FullName formats the author as "Last, First".
func (a *Author) FullName() string {
	return a.LastName + ", " + a.FirstName
}

// URL is the canonical API path of the author.
func (a *Author) URL() string {
	return "/api/authors/" + a.ID
}

// Serialize returns the author in the shape the search API exposes.
func (a *Author) Serialize() map[string]interface{} {
	return map[string]interface{}{
		"full_name":  a.FullName(),
		"first_name": a.FirstName,
		"last_name":  a.LastName,
		"url":        a.URL(),
	}
}
