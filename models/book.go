package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Book is a catalog entry; physical lendable units are BookCopy rows.
type Book struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title     string    `gorm:"type:varchar(200);not null;index" json:"title"`
	Summary   string    `gorm:"type:text" json:"summary"`
	Cover     string    `gorm:"type:varchar(255)" json:"cover,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Authors []Author   `gorm:"many2many:book_authors" json:"authors,omitempty"`
	Copies  []BookCopy `gorm:"foreignKey:BookID" json:"copies,omitempty"`
}

func (Book) TableName() string {
	return "books"
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = generateUUID()
	}
	return nil
}

// AuthorList joins all author names with semicolons. Authors must be preloaded.
func (b *Book) AuthorList() string {
	names := make([]string, 0, len(b.Authors))
	for i := range b.Authors {
		names = append(names, b.Authors[i].FullName())
	}
	return strings.Join(names, "; ")
}

// URL is the canonical API path of the book.
func (b *Book) URL() string {
	return "/api/books/" + b.ID
}

// Serialize returns the book in the shape the search API exposes.
// Authors must be preloaded.
func (b *Book) Serialize() map[string]interface{} {
	authors := make([]string, 0, len(b.Authors))
	for i := range b.Authors {
		authors = append(authors, b.Authors[i].FullName())
	}
	return map[string]interface{}{
		"title":   b.Title,
		"authors": authors,
		"summary": b.Summary,
		"cover":   b.Cover,
		"url":     b.URL(),
	}
}
