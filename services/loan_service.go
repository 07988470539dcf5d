package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"openshelf_go/models"
)

// LoanService runs the checkout workflow and answers the loan ledger
// queries.
type LoanService struct {
	db    *gorm.DB
	carts *CartService
}

// NewLoanService creates a loan service over the given database and carts.
func NewLoanService(db *gorm.DB, carts *CartService) *LoanService {
	return &LoanService{db: db, carts: carts}
}

// CheckoutDetails is the preview and result shape of a checkout: the books
// involved and the dates every created loan carries.
type CheckoutDetails struct {
	Books       []models.Book `json:"books"`
	LoanDate    time.Time     `json:"loan_date"`
	DueBackDate time.Time     `json:"due_back_date"`
	Loans       []models.Loan `json:"loans,omitempty"`
}

// UpdateLoanRequest is the payload for the permissioned loan update; a set
// return date closes the loan.
type UpdateLoanRequest struct {
	LoanDate    *time.Time `json:"loan_date"`
	DueBackDate *time.Time `json:"due_back_date"`
	ReturnDate  *time.Time `json:"return_date"`
}

// loanDates computes the fixed three-week lending window from today.
func loanDates() (time.Time, time.Time) {
	loanDate := models.DateOnly(time.Now())
	return loanDate, loanDate.AddDate(0, 0, models.LoanPeriodDays)
}

// CheckoutPreview returns the books in the cart with the dates a checkout
// executed now would use. ErrEmptyCart when the cart is empty.
func (s *LoanService) CheckoutPreview(ctx context.Context, userID string) (*CheckoutDetails, error) {
	books, err := s.carts.Books(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrEmptyCart
	}

	loanDate, dueBackDate := loanDates()
	return &CheckoutDetails{
		Books:       books,
		LoanDate:    loanDate,
		DueBackDate: dueBackDate,
	}, nil
}

// Checkout converts the user's cart into loans: one available copy per
// book, loan date today, due back in three weeks. The whole conversion is
// one transaction; when any book has no available copy it rolls back with
// an *UnavailableBooksError and the cart is left untouched. On success the
// cart is cleared.
func (s *LoanService) Checkout(ctx context.Context, userID string) (*CheckoutDetails, error) {
	books, err := s.carts.Books(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrEmptyCart
	}

	loanDate, dueBackDate := loanDates()

	var loans []models.Loan
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var unavailable []string
		for i := range books {
			var copy models.BookCopy
			err := availableCopiesQuery(tx, books[i].ID).First(&copy).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				unavailable = append(unavailable, books[i].Title)
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to find available copy: %w", err)
			}

			loan := models.Loan{
				BookCopyID:  copy.ID,
				BorrowerID:  userID,
				LoanDate:    loanDate,
				DueBackDate: dueBackDate,
			}
			if err := tx.Create(&loan).Error; err != nil {
				return fmt.Errorf("failed to create loan: %w", err)
			}
			loans = append(loans, loan)
		}
		if len(unavailable) > 0 {
			return &UnavailableBooksError{Titles: unavailable}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		return nil, err
	}

	return &CheckoutDetails{
		Books:       books,
		LoanDate:    loanDate,
		DueBackDate: dueBackDate,
		Loans:       loans,
	}, nil
}

// Borrowed returns the user's open loans, earliest due first.
func (s *LoanService) Borrowed(userID string) ([]models.Loan, error) {
	var loans []models.Loan
	if err := s.db.
		Preload("BookCopy.Book.Authors").
		Where("borrower_id = ? AND return_date IS NULL", userID).
		Order("due_back_date").
		Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("failed to load borrowed loans: %w", err)
	}
	return loans, nil
}

// ActiveLoans returns every open loan system-wide, earliest due first.
func (s *LoanService) ActiveLoans() ([]models.Loan, error) {
	var loans []models.Loan
	if err := s.db.
		Preload("BookCopy.Book.Authors").
		Preload("Borrower").
		Where("return_date IS NULL").
		Order("due_back_date").
		Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("failed to load active loans: %w", err)
	}
	return loans, nil
}

// GetLoan returns one loan, or ErrNotFound.
func (s *LoanService) GetLoan(id string) (*models.Loan, error) {
	var loan models.Loan
	if err := s.db.First(&loan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return &loan, nil
}

// UpdateLoan patches a loan's dates; setting a return date closes it.
func (s *LoanService) UpdateLoan(id string, req *UpdateLoanRequest) (*models.Loan, error) {
	loan, err := s.GetLoan(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.LoanDate != nil {
		updates["loan_date"] = models.DateOnly(*req.LoanDate)
	}
	if req.DueBackDate != nil {
		updates["due_back_date"] = models.DateOnly(*req.DueBackDate)
	}
	if req.ReturnDate != nil {
		updates["return_date"] = models.DateOnly(*req.ReturnDate)
	}
	if len(updates) == 0 {
		return loan, nil
	}

	if err := s.db.Model(loan).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}
	return loan, nil
}

// DeleteLoan removes a loan record.
func (s *LoanService) DeleteLoan(id string) error {
	loan, err := s.GetLoan(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(loan).Error; err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	return nil
}
