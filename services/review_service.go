package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"openshelf_go/models"
)

// ReviewService enforces the review contract: only past borrowers review,
// one review per (user, book), replacement on resubmission.
type ReviewService struct {
	db *gorm.DB
}

// NewReviewService creates a review service over the given database.
func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// SubmitReviewRequest is the JSON review payload.
type SubmitReviewRequest struct {
	Comment string `json:"comment" binding:"omitempty,max=1000"`
	Rating  int    `json:"rating" binding:"required,min=1,max=10"`
}

// CanReview reports whether the user has ever borrowed a copy of the book.
func (s *ReviewService) CanReview(userID, bookID string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Loan{}).
		Joins("JOIN book_copies ON book_copies.id = loans.book_copy_id").
		Where("loans.borrower_id = ? AND book_copies.book_id = ?", userID, bookID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check borrow history: %w", err)
	}
	return count > 0, nil
}

// UserReview returns the user's review of the book, or nil when none exists.
func (s *ReviewService) UserReview(userID, bookID string) (*models.Review, error) {
	var review models.Review
	err := s.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	return &review, nil
}

// Submit stores the user's review of the book, replacing any earlier one.
// The rating must be in [1,10]; the user must have borrowed the book at
// some point, otherwise ErrNotFound.
func (s *ReviewService) Submit(userID, bookID string, req *SubmitReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 10 {
		return nil, ErrInvalidReview
	}

	var book models.Book
	if err := s.db.Select("id").First(&book, "id = ?", bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up book: %w", err)
	}

	allowed, err := s.CanReview(userID, bookID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotFound
	}

	review := models.Review{
		UserID:  userID,
		BookID:  bookID,
		Comment: req.Comment,
		Rating:  req.Rating,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND book_id = ?", userID, bookID).
			Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete previous review: %w", err)
		}
		if err := tx.Create(&review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// BookReviews returns all reviews of a book, newest first.
func (s *ReviewService) BookReviews(bookID string) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.db.
		Preload("User").
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	return reviews, nil
}
