package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"openshelf_go/models"
)

func newLoanFixture(t *testing.T) (*gorm.DB, *LoanService, *CartService) {
	t.Helper()
	db := newTestDB(t)
	carts := NewCartService(db, NewMemoryCartStore())
	return db, NewLoanService(db, carts), carts
}

func Test_Checkout_CreatesLoansAndClearsCart(t *testing.T) {
	ctx := context.Background()
	db, svc, carts := newLoanFixture(t)

	user := createTestUser(t, db, "alice")
	first := createTestBook(t, db, "Jane Eyre")
	second := createTestBook(t, db, "Shirley")
	createTestCopy(t, db, first.ID, false)
	createTestCopy(t, db, second.ID, false)

	for _, id := range []string{first.ID, second.ID} {
		_, err := carts.Toggle(ctx, user.ID, id)
		require.NoError(t, err)
	}

	details, err := svc.Checkout(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, details.Loans, 2)

	today := models.DateOnly(time.Now())
	for _, loan := range details.Loans {
		assert.Equal(t, user.ID, loan.BorrowerID)
		assert.True(t, loan.LoanDate.Equal(today))
		assert.True(t, loan.DueBackDate.Equal(today.AddDate(0, 0, models.LoanPeriodDays)))
		assert.Nil(t, loan.ReturnDate)
	}

	ids, err := carts.Contents(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, ids, "cart must be cleared after checkout")
}

func Test_Checkout_EmptyCart(t *testing.T) {
	db, svc, _ := newLoanFixture(t)
	user := createTestUser(t, db, "bob")

	_, err := svc.Checkout(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.CheckoutPreview(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func Test_Checkout_UnavailableBookAbortsEverything(t *testing.T) {
	ctx := context.Background()
	db, svc, carts := newLoanFixture(t)

	user := createTestUser(t, db, "carol")
	stocked := createTestBook(t, db, "Stocked")
	sold := createTestBook(t, db, "Sold Out")
	createTestCopy(t, db, stocked.ID, false)
	// "Sold Out" only has a maintenance copy.
	createTestCopy(t, db, sold.ID, true)

	for _, id := range []string{stocked.ID, sold.ID} {
		_, err := carts.Toggle(ctx, user.ID, id)
		require.NoError(t, err)
	}

	_, err := svc.Checkout(ctx, user.ID)
	var unavailable *UnavailableBooksError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"Sold Out"}, unavailable.Titles)

	// Nothing committed, cart intact.
	var count int64
	db.Model(&models.Loan{}).Count(&count)
	assert.Zero(t, count)

	ids, err := carts.Contents(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func Test_Checkout_SkipsOnLoanCopies(t *testing.T) {
	ctx := context.Background()
	db, svc, carts := newLoanFixture(t)

	owner := createTestUser(t, db, "owner")
	user := createTestUser(t, db, "dave")
	book := createTestBook(t, db, "Popular")
	taken := createTestCopy(t, db, book.ID, false)
	free := createTestCopy(t, db, book.ID, false)

	createTestLoan(t, db, &models.Loan{
		BookCopyID:  taken.ID,
		BorrowerID:  owner.ID,
		LoanDate:    models.DateOnly(time.Now()),
		DueBackDate: models.DateOnly(time.Now()).AddDate(0, 0, models.LoanPeriodDays),
	})

	_, err := carts.Toggle(ctx, user.ID, book.ID)
	require.NoError(t, err)

	details, err := svc.Checkout(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, details.Loans, 1)
	assert.Equal(t, free.ID, details.Loans[0].BookCopyID)
}

func Test_CheckoutPreview_LeavesCartAlone(t *testing.T) {
	ctx := context.Background()
	db, svc, carts := newLoanFixture(t)

	user := createTestUser(t, db, "erin")
	book := createTestBook(t, db, "Previewed")

	_, err := carts.Toggle(ctx, user.ID, book.ID)
	require.NoError(t, err)

	details, err := svc.CheckoutPreview(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, details.Books, 1)
	assert.Empty(t, details.Loans)

	ids, err := carts.Contents(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	var count int64
	db.Model(&models.Loan{}).Count(&count)
	assert.Zero(t, count, "preview must not create loans")
}

func Test_Borrowed_OnlyOpenLoansEarliestDueFirst(t *testing.T) {
	db, svc, _ := newLoanFixture(t)

	user := createTestUser(t, db, "frank")
	other := createTestUser(t, db, "grace")
	book := createTestBook(t, db, "Ledger")
	a := createTestCopy(t, db, book.ID, false)
	b := createTestCopy(t, db, book.ID, false)
	c := createTestCopy(t, db, book.ID, false)
	d := createTestCopy(t, db, book.ID, false)

	today := models.DateOnly(time.Now())
	returned := today

	late := createTestLoan(t, db, &models.Loan{
		BookCopyID: a.ID, BorrowerID: user.ID,
		LoanDate: today, DueBackDate: today.AddDate(0, 0, 21),
	})
	soon := createTestLoan(t, db, &models.Loan{
		BookCopyID: b.ID, BorrowerID: user.ID,
		LoanDate: today.AddDate(0, 0, -14), DueBackDate: today.AddDate(0, 0, 7),
	})
	createTestLoan(t, db, &models.Loan{
		BookCopyID: c.ID, BorrowerID: user.ID,
		LoanDate: today.AddDate(0, 0, -30), DueBackDate: today.AddDate(0, 0, -9),
		ReturnDate: &returned,
	})
	createTestLoan(t, db, &models.Loan{
		BookCopyID: d.ID, BorrowerID: other.ID,
		LoanDate: today, DueBackDate: today.AddDate(0, 0, 21),
	})

	loans, err := svc.Borrowed(user.ID)
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.Equal(t, soon.ID, loans[0].ID)
	assert.Equal(t, late.ID, loans[1].ID)
	assert.Equal(t, "Ledger", loans[0].BookCopy.Book.Title)
}

func Test_ActiveLoans_CoversAllBorrowers(t *testing.T) {
	db, svc, _ := newLoanFixture(t)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	book := createTestBook(t, db, "Shared")
	a := createTestCopy(t, db, book.ID, false)
	b := createTestCopy(t, db, book.ID, false)

	today := models.DateOnly(time.Now())
	createTestLoan(t, db, &models.Loan{
		BookCopyID: a.ID, BorrowerID: alice.ID,
		LoanDate: today, DueBackDate: today.AddDate(0, 0, 21),
	})
	createTestLoan(t, db, &models.Loan{
		BookCopyID: b.ID, BorrowerID: bob.ID,
		LoanDate: today, DueBackDate: today.AddDate(0, 0, 21),
	})

	loans, err := svc.ActiveLoans()
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.NotEmpty(t, loans[0].Borrower.Username)
}

func Test_UpdateLoan_ReturnDateClosesLoan(t *testing.T) {
	db, svc, _ := newLoanFixture(t)

	user := createTestUser(t, db, "henry")
	book := createTestBook(t, db, "Due Back")
	copy := createTestCopy(t, db, book.ID, false)

	today := models.DateOnly(time.Now())
	loan := createTestLoan(t, db, &models.Loan{
		BookCopyID: copy.ID, BorrowerID: user.ID,
		LoanDate: today.AddDate(0, 0, -21), DueBackDate: today.AddDate(0, 0, -1),
	})
	assert.True(t, loan.IsOverdueAt(time.Now()))

	now := time.Now()
	updated, err := svc.UpdateLoan(loan.ID, &UpdateLoanRequest{ReturnDate: &now})
	require.NoError(t, err)
	require.NotNil(t, updated.ReturnDate)
	assert.False(t, updated.IsOverdueAt(time.Now()))

	// The copy is available again.
	count, err := NewCatalogService(db).AvailableCount(book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func Test_DeleteLoan(t *testing.T) {
	db, svc, _ := newLoanFixture(t)

	user := createTestUser(t, db, "iris")
	book := createTestBook(t, db, "Erased")
	copy := createTestCopy(t, db, book.ID, false)

	today := models.DateOnly(time.Now())
	loan := createTestLoan(t, db, &models.Loan{
		BookCopyID: copy.ID, BorrowerID: user.ID,
		LoanDate: today, DueBackDate: today.AddDate(0, 0, 21),
	})

	require.NoError(t, svc.DeleteLoan(loan.ID))

	_, err := svc.GetLoan(loan.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeleteLoan("missing"), ErrNotFound)
}
