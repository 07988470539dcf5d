package models

import (
	"time"

	"gorm.io/gorm"
)

// LoanPeriodDays is the fixed lending period applied at checkout.
const LoanPeriodDays = 21

// Loan links a book copy to a borrower. A loan with no return date is open;
// at most one open loan exists per copy, enforced by the checkout workflow.
type Loan struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	BookCopyID  string     `gorm:"type:varchar(36);index;not null" json:"book_copy_id"`
	BorrowerID  string     `gorm:"type:varchar(36);index;not null" json:"borrower_id"`
	LoanDate    time.Time  `gorm:"not null" json:"loan_date"`
	DueBackDate time.Time  `gorm:"not null;index" json:"due_back_date"`
	ReturnDate  *time.Time `json:"return_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	BookCopy BookCopy `gorm:"foreignKey:BookCopyID" json:"book_copy,omitempty"`
	Borrower User     `gorm:"foreignKey:BorrowerID" json:"borrower,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

func (l *Loan) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

// IsOverdue reports whether the loan is open past its due date, as of now.
func (l *Loan) IsOverdue() bool {
	return l.IsOverdueAt(time.Now())
}

// IsOverdueAt is the pure form of IsOverdue: open and due on or before the
// given day. Comparison is by calendar date, not instant.
func (l *Loan) IsOverdueAt(now time.Time) bool {
	if l.ReturnDate != nil {
		return false
	}
	return !DateOnly(l.DueBackDate).After(DateOnly(now))
}
