package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"openshelf_go/models"
)

// CatalogService manages books, authors and copies, and answers the
// derived queries (availability, average rating) the rest of the system
// is built on.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a catalog service over the given database.
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// BookRequest is the payload for creating or updating a book.
type BookRequest struct {
	Title     string   `json:"title" binding:"required,max=200"`
	Summary   string   `json:"summary" binding:"required,max=10000"`
	Cover     string   `json:"cover" binding:"omitempty,url"`
	AuthorIDs []string `json:"author_ids" binding:"required,min=1"`
}

// AuthorRequest is the payload for creating or updating an author.
type AuthorRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Portrait  string `json:"portrait" binding:"omitempty,url"`
}

// BookCopyRequest is the payload for creating or updating a book copy.
type BookCopyRequest struct {
	OnMaintenance bool `json:"on_maintenance"`
}

// CopyInfo is a copy plus its derived on-loan state.
type CopyInfo struct {
	models.BookCopy
	OnLoan bool `json:"on_loan"`
}

// ==================== Books ====================

// ListBooks returns one page of books ordered by creation.
func (s *CatalogService) ListBooks(page, limit int) ([]models.Book, int64, error) {
	var total int64
	if err := s.db.Model(&models.Book{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	var books []models.Book
	if err := s.db.
		Preload("Authors").
		Order("created_at").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&books).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	return books, total, nil
}

// GetBook returns one book with its authors, or ErrNotFound.
func (s *CatalogService) GetBook(id string) (*models.Book, error) {
	var book models.Book
	if err := s.db.Preload("Authors").First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

// CreateBook creates a book and links its authors.
func (s *CatalogService) CreateBook(req *BookRequest) (*models.Book, error) {
	authors, err := s.resolveAuthors(req.AuthorIDs)
	if err != nil {
		return nil, err
	}

	book := models.Book{
		Title:   req.Title,
		Summary: req.Summary,
		Cover:   req.Cover,
		Authors: authors,
	}
	if err := s.db.Create(&book).Error; err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return &book, nil
}

// UpdateBook updates a book's fields and replaces its author set.
func (s *CatalogService) UpdateBook(id string, req *BookRequest) (*models.Book, error) {
	book, err := s.GetBook(id)
	if err != nil {
		return nil, err
	}

	authors, err := s.resolveAuthors(req.AuthorIDs)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title":   req.Title,
			"summary": req.Summary,
			"cover":   req.Cover,
		}
		if err := tx.Model(book).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update book: %w", err)
		}
		if err := tx.Model(book).Association("Authors").Replace(authors); err != nil {
			return fmt.Errorf("failed to replace authors: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	book.Authors = authors
	return book, nil
}

// DeleteBook removes a book and everything hanging off it: copies, the
// loans on those copies, reviews, and the author join rows.
func (s *CatalogService) DeleteBook(id string) error {
	book, err := s.GetBook(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		copyIDs := tx.Model(&models.BookCopy{}).Select("id").Where("book_id = ?", id)
		if err := tx.Where("book_copy_id IN (?)", copyIDs).Delete(&models.Loan{}).Error; err != nil {
			return fmt.Errorf("failed to delete loans: %w", err)
		}
		if err := tx.Where("book_id = ?", id).Delete(&models.BookCopy{}).Error; err != nil {
			return fmt.Errorf("failed to delete copies: %w", err)
		}
		if err := tx.Where("book_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews: %w", err)
		}
		if err := tx.Model(book).Association("Authors").Clear(); err != nil {
			return fmt.Errorf("failed to unlink authors: %w", err)
		}
		if err := tx.Delete(book).Error; err != nil {
			return fmt.Errorf("failed to delete book: %w", err)
		}
		return nil
	})
}

// resolveAuthors loads the given author ids, failing when any is unknown.
func (s *CatalogService) resolveAuthors(ids []string) ([]models.Author, error) {
	var authors []models.Author
	if err := s.db.Where("id IN ?", ids).Find(&authors).Error; err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}
	if len(authors) != len(ids) {
		return nil, ErrNotFound
	}
	return authors, nil
}

// ==================== Authors ====================

// ListAuthors returns one page of authors ordered by creation.
func (s *CatalogService) ListAuthors(page, limit int) ([]models.Author, int64, error) {
	var total int64
	if err := s.db.Model(&models.Author{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count authors: %w", err)
	}

	var authors []models.Author
	if err := s.db.
		Order("created_at").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&authors).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list authors: %w", err)
	}
	return authors, total, nil
}

// GetAuthor returns one author, or ErrNotFound.
func (s *CatalogService) GetAuthor(id string) (*models.Author, error) {
	var author models.Author
	if err := s.db.First(&author, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get author: %w", err)
	}
	return &author, nil
}

// BooksByAuthor returns one page of the author's books.
func (s *CatalogService) BooksByAuthor(authorID string, page, limit int) ([]models.Book, int64, error) {
	if _, err := s.GetAuthor(authorID); err != nil {
		return nil, 0, err
	}

	joined := s.db.Model(&models.Book{}).
		Joins("JOIN book_authors ON book_authors.book_id = books.id").
		Where("book_authors.author_id = ?", authorID)

	var total int64
	if err := joined.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	var books []models.Book
	if err := joined.
		Preload("Authors").
		Order("books.created_at").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&books).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	return books, total, nil
}

// CreateAuthor creates an author.
func (s *CatalogService) CreateAuthor(req *AuthorRequest) (*models.Author, error) {
	author := models.Author{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Portrait:  req.Portrait,
	}
	if err := s.db.Create(&author).Error; err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}
	return &author, nil
}

// UpdateAuthor updates an author's fields.
func (s *CatalogService) UpdateAuthor(id string, req *AuthorRequest) (*models.Author, error) {
	author, err := s.GetAuthor(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"portrait":   req.Portrait,
	}
	if err := s.db.Model(author).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update author: %w", err)
	}
	return author, nil
}

// DeleteAuthor removes an author and their book join rows. The books
// themselves survive, co-authored or not.
func (s *CatalogService) DeleteAuthor(id string) error {
	author, err := s.GetAuthor(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(author).Association("Books").Clear(); err != nil {
			return fmt.Errorf("failed to unlink books: %w", err)
		}
		if err := tx.Delete(author).Error; err != nil {
			return fmt.Errorf("failed to delete author: %w", err)
		}
		return nil
	})
}

// ==================== Copies ====================

// ListCopies returns all copies of a book, each with its on-loan state.
func (s *CatalogService) ListCopies(bookID string) ([]CopyInfo, error) {
	if _, err := s.GetBook(bookID); err != nil {
		return nil, err
	}

	var copies []models.BookCopy
	if err := s.db.Where("book_id = ?", bookID).Order("created_at").Find(&copies).Error; err != nil {
		return nil, fmt.Errorf("failed to list copies: %w", err)
	}

	var onLoanIDs []string
	if err := s.db.Model(&models.Loan{}).
		Where("return_date IS NULL").
		Pluck("book_copy_id", &onLoanIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to load open loans: %w", err)
	}
	onLoan := make(map[string]bool, len(onLoanIDs))
	for _, id := range onLoanIDs {
		onLoan[id] = true
	}

	infos := make([]CopyInfo, 0, len(copies))
	for _, c := range copies {
		infos = append(infos, CopyInfo{BookCopy: c, OnLoan: onLoan[c.ID]})
	}
	return infos, nil
}

// GetCopy returns one copy, or ErrNotFound.
func (s *CatalogService) GetCopy(id string) (*models.BookCopy, error) {
	var copy models.BookCopy
	if err := s.db.First(&copy, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get copy: %w", err)
	}
	return &copy, nil
}

// CreateCopy adds a copy to a book.
func (s *CatalogService) CreateCopy(bookID string, req *BookCopyRequest) (*models.BookCopy, error) {
	if _, err := s.GetBook(bookID); err != nil {
		return nil, err
	}

	copy := models.BookCopy{
		BookID:        bookID,
		OnMaintenance: req.OnMaintenance,
	}
	if err := s.db.Create(&copy).Error; err != nil {
		return nil, fmt.Errorf("failed to create copy: %w", err)
	}
	return &copy, nil
}

// UpdateCopy sets a copy's maintenance flag.
func (s *CatalogService) UpdateCopy(id string, req *BookCopyRequest) (*models.BookCopy, error) {
	copy, err := s.GetCopy(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(copy).Update("on_maintenance", req.OnMaintenance).Error; err != nil {
		return nil, fmt.Errorf("failed to update copy: %w", err)
	}
	return copy, nil
}

// DeleteCopy removes a copy and its loans.
func (s *CatalogService) DeleteCopy(id string) error {
	copy, err := s.GetCopy(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_copy_id = ?", id).Delete(&models.Loan{}).Error; err != nil {
			return fmt.Errorf("failed to delete loans: %w", err)
		}
		if err := tx.Delete(copy).Error; err != nil {
			return fmt.Errorf("failed to delete copy: %w", err)
		}
		return nil
	})
}

// ==================== Derived queries ====================

// availableCopiesQuery selects the copies of a book that are neither on
// maintenance nor on an open loan.
func availableCopiesQuery(db *gorm.DB, bookID string) *gorm.DB {
	openLoanCopies := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Loan{}).
		Select("book_copy_id").
		Where("return_date IS NULL")

	return db.
		Where("book_id = ? AND on_maintenance = ?", bookID, false).
		Where("id NOT IN (?)", openLoanCopies).
		Order("created_at")
}

// AvailableCopies returns the lendable copies of a book.
func (s *CatalogService) AvailableCopies(bookID string) ([]models.BookCopy, error) {
	var copies []models.BookCopy
	if err := availableCopiesQuery(s.db, bookID).Find(&copies).Error; err != nil {
		return nil, fmt.Errorf("failed to load available copies: %w", err)
	}
	return copies, nil
}

// AvailableCount returns how many copies of a book are lendable.
func (s *CatalogService) AvailableCount(bookID string) (int64, error) {
	var count int64
	if err := availableCopiesQuery(s.db, bookID).Model(&models.BookCopy{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count available copies: %w", err)
	}
	return count, nil
}

// AverageRating returns the book's mean rating rounded to one decimal, or
// nil when it has no reviews.
func (s *CatalogService) AverageRating(bookID string) (*float64, error) {
	var avg sql.NullFloat64
	if err := s.db.Model(&models.Review{}).
		Where("book_id = ?", bookID).
		Select("AVG(rating)").
		Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("failed to average ratings: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	rounded := math.Round(avg.Float64*10) / 10
	return &rounded, nil
}
