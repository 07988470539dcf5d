package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"openshelf_go/models"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Author{},
		&models.Book{},
		&models.BookCopy{},
		&models.Loan{},
		&models.Review{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestAuthor(t *testing.T, db *gorm.DB, firstName, lastName string) *models.Author {
	t.Helper()
	author := &models.Author{FirstName: firstName, LastName: lastName}
	require.NoError(t, db.Create(author).Error)
	return author
}

func createTestBook(t *testing.T, db *gorm.DB, title string, authors ...*models.Author) *models.Book {
	t.Helper()
	book := &models.Book{Title: title, Summary: "summary of " + title}
	for _, a := range authors {
		book.Authors = append(book.Authors, *a)
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func createTestCopy(t *testing.T, db *gorm.DB, bookID string, onMaintenance bool) *models.BookCopy {
	t.Helper()
	copy := &models.BookCopy{BookID: bookID, OnMaintenance: onMaintenance}
	require.NoError(t, db.Create(copy).Error)
	return copy
}

func createTestLoan(t *testing.T, db *gorm.DB, loan *models.Loan) *models.Loan {
	t.Helper()
	require.NoError(t, db.Create(loan).Error)
	return loan
}
