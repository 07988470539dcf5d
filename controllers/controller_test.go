package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"openshelf_go/config"
	"openshelf_go/middleware"
	"openshelf_go/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// useTestDB points the shared database at an isolated in-memory instance.
func useTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.MigrateModels(db))

	previous := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = previous })
	return db
}

// asUser fakes an authenticated request context.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Next()
	}
}

func seedBook(t *testing.T, db *gorm.DB, title string, authors ...*models.Author) *models.Book {
	t.Helper()
	book := &models.Book{Title: title, Summary: "summary of " + title}
	for _, a := range authors {
		book.Authors = append(book.Authors, *a)
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "hashed"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func Test_SearchBooks_RejectsBlankQuery(t *testing.T) {
	useTestDB(t)

	r := gin.New()
	sc := NewSearchController()
	r.GET("/api/search/books", sc.SearchBooks)

	for _, path := range []string{
		"/api/search/books",
		"/api/search/books?query=",
		"/api/search/books?query=%20%20",
	} {
		w := doRequest(r, http.MethodGet, path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func Test_SearchBooks_ReturnsMatches(t *testing.T) {
	db := useTestDB(t)
	seedBook(t, db, "War and Peace")

	r := gin.New()
	sc := NewSearchController()
	r.GET("/api/search/books", sc.SearchBooks)

	w := doRequest(r, http.MethodGet, "/api/search/books?query=war")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Code int `json:"code"`
		Data struct {
			Query string        `json:"query"`
			Books []models.Book `json:"books"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 20000, body.Code)
	assert.Equal(t, "war", body.Data.Query)
	require.Len(t, body.Data.Books, 1)
	assert.Equal(t, "War and Peace", body.Data.Books[0].Title)
}

func Test_BookSearchAPI_BareArrayAndAbsenceRule(t *testing.T) {
	db := useTestDB(t)
	author := &models.Author{FirstName: "Leo", LastName: "Tolstoy"}
	require.NoError(t, db.Create(author).Error)
	seedBook(t, db, "Anna Karenina", author)

	r := gin.New()
	sc := NewSearchController()
	r.GET("/api/search/book", sc.BookSearchAPI)

	// Absent parameter is 404.
	w := doRequest(r, http.MethodGet, "/api/search/book")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Present-but-empty still searches and returns a bare array.
	w = doRequest(r, http.MethodGet, "/api/search/book?query=")
	require.Equal(t, http.StatusOK, w.Code)

	var all []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 1)

	w = doRequest(r, http.MethodGet, "/api/search/book?query=karenina")
	require.Equal(t, http.StatusOK, w.Code)

	var matches []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "Anna Karenina", matches[0]["title"])
	assert.Equal(t, "/api/books/"+seedID(t, db, "Anna Karenina"), matches[0]["url"])
}

// seedID looks a book up by title.
func seedID(t *testing.T, db *gorm.DB, title string) string {
	t.Helper()
	var book models.Book
	require.NoError(t, db.First(&book, "title = ?", title).Error)
	return book.ID
}

func Test_AuthorSearchAPI(t *testing.T) {
	db := useTestDB(t)
	require.NoError(t, db.Create(&models.Author{FirstName: "Fyodor", LastName: "Dostoevsky"}).Error)

	r := gin.New()
	sc := NewSearchController()
	r.GET("/api/search/author", sc.AuthorSearchAPI)

	w := doRequest(r, http.MethodGet, "/api/search/author?query=dosto")
	require.Equal(t, http.StatusOK, w.Code)

	var matches []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "Dostoevsky, Fyodor", matches[0]["full_name"])
}

func Test_ToggleCart_CreatedAndNotFound(t *testing.T) {
	db := useTestDB(t)
	user := seedUser(t, db, "shopper")
	book := seedBook(t, db, "In the Cart")

	r := gin.New()
	cc := NewCartController()
	r.POST("/api/cart/toggle/:id", asUser(user.ID), cc.ToggleCart)
	r.GET("/api/cart", asUser(user.ID), cc.GetCart)

	w := doRequest(r, http.MethodPost, "/api/cart/toggle/"+book.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, fmt.Sprintf("Added book %s to cart", book.ID), body.Message)

	w = doRequest(r, http.MethodGet, "/api/cart")
	require.Equal(t, http.StatusOK, w.Code)

	var cart struct {
		Data struct {
			Books []models.Book `json:"books"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	require.Len(t, cart.Data.Books, 1)

	w = doRequest(r, http.MethodPost, "/api/cart/toggle/no-such-book")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func Test_Pagination_Bounds(t *testing.T) {
	cases := []struct {
		query string
		page  int
		limit int
	}{
		{"", 1, 20},
		{"?page=3&limit=50", 3, 50},
		{"?page=0&limit=0", 1, 20},
		{"?page=-2&limit=500", 1, 20},
		{"?page=abc&limit=xyz", 1, 20},
	}

	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/api/books"+tc.query, nil)

		page, limit := pagination(c)
		assert.Equal(t, tc.page, page, tc.query)
		assert.Equal(t, tc.limit, limit, tc.query)
	}
}
