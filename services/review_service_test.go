package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"openshelf_go/models"
)

// lendTo records a returned loan so the user has borrow history for the book.
func lendTo(t *testing.T, db *gorm.DB, userID, bookID string) {
	t.Helper()
	copy := createTestCopy(t, db, bookID, false)
	returned := models.DateOnly(time.Now())
	createTestLoan(t, db, &models.Loan{
		BookCopyID:  copy.ID,
		BorrowerID:  userID,
		LoanDate:    returned.AddDate(0, 0, -21),
		DueBackDate: returned,
		ReturnDate:  &returned,
	})
}

func Test_Submit_RequiresBorrowHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	user := createTestUser(t, db, "alice")
	book := createTestBook(t, db, "Unborrowed")

	_, err := svc.Submit(user.ID, book.ID, &SubmitReviewRequest{Rating: 8})
	assert.ErrorIs(t, err, ErrNotFound)

	lendTo(t, db, user.ID, book.ID)

	review, err := svc.Submit(user.ID, book.ID, &SubmitReviewRequest{Comment: "great", Rating: 8})
	require.NoError(t, err)
	assert.Equal(t, 8, review.Rating)
	assert.Equal(t, "great", review.Comment)
}

func Test_Submit_ReplacesEarlierReview(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	user := createTestUser(t, db, "bob")
	book := createTestBook(t, db, "Reread")
	lendTo(t, db, user.ID, book.ID)

	_, err := svc.Submit(user.ID, book.ID, &SubmitReviewRequest{Comment: "first pass", Rating: 5})
	require.NoError(t, err)

	_, err = svc.Submit(user.ID, book.ID, &SubmitReviewRequest{Comment: "better on reread", Rating: 9})
	require.NoError(t, err)

	var count int64
	db.Model(&models.Review{}).Where("user_id = ? AND book_id = ?", user.ID, book.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	review, err := svc.UserReview(user.ID, book.ID)
	require.NoError(t, err)
	require.NotNil(t, review)
	assert.Equal(t, 9, review.Rating)
	assert.Equal(t, "better on reread", review.Comment)
}

func Test_Submit_UnknownBook(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	user := createTestUser(t, db, "carol")

	_, err := svc.Submit(user.ID, "missing", &SubmitReviewRequest{Rating: 7})
	assert.ErrorIs(t, err, ErrNotFound)
}

func Test_Submit_RatingBounds(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	user := createTestUser(t, db, "dave")
	book := createTestBook(t, db, "Rated")
	lendTo(t, db, user.ID, book.ID)

	for _, rating := range []int{0, -1, 11} {
		_, err := svc.Submit(user.ID, book.ID, &SubmitReviewRequest{Rating: rating})
		assert.ErrorIs(t, err, ErrInvalidReview, "rating %d must be rejected", rating)
	}

	for _, rating := range []int{1, 10} {
		_, err := svc.Submit(user.ID, book.ID, &SubmitReviewRequest{Rating: rating})
		assert.NoError(t, err, "rating %d must be accepted", rating)
	}
}

func Test_CanReview(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	reader := createTestUser(t, db, "erin")
	stranger := createTestUser(t, db, "frank")
	book := createTestBook(t, db, "History")
	lendTo(t, db, reader.ID, book.ID)

	ok, err := svc.CanReview(reader.ID, book.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanReview(stranger.ID, book.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func Test_UserReview_NilWhenMissing(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	user := createTestUser(t, db, "grace")
	book := createTestBook(t, db, "Quiet")

	review, err := svc.UserReview(user.ID, book.ID)
	require.NoError(t, err)
	assert.Nil(t, review)
}

func Test_BookReviews_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	book := createTestBook(t, db, "Discussed")
	older := createTestUser(t, db, "older")
	newer := createTestUser(t, db, "newer")

	require.NoError(t, db.Create(&models.Review{
		UserID: older.ID, BookID: book.ID, Rating: 6,
		CreatedAt: time.Now().Add(-time.Hour),
	}).Error)
	require.NoError(t, db.Create(&models.Review{
		UserID: newer.ID, BookID: book.ID, Rating: 9,
		CreatedAt: time.Now(),
	}).Error)

	reviews, err := svc.BookReviews(book.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, newer.ID, reviews[0].UserID)
	assert.Equal(t, "newer", reviews[0].User.Username)
}
