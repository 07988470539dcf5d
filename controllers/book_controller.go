package controllers

import (
	"github.com/gin-gonic/gin"

	"openshelf_go/config"
	"openshelf_go/middleware"
	"openshelf_go/services"
	"openshelf_go/utils"
)

// BookController serves the book listing, detail and permissioned CRUD.
type BookController struct {
	catalog *services.CatalogService
	reviews *services.ReviewService
}

// NewBookController creates a book controller over the shared database.
func NewBookController() *BookController {
	return &BookController{
		catalog: services.NewCatalogService(config.DB),
		reviews: services.NewReviewService(config.DB),
	}
}

// GetBooks lists books, 20 per page.
func (bc *BookController) GetBooks(c *gin.Context) {
	page, limit := pagination(c)

	books, total, err := bc.catalog.ListBooks(page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Paginate(c, books, total, page, limit)
}

// GetBook returns the book detail: authors, availability, average rating,
// its reviews, and for an authenticated requester their own review plus
// whether they may review.
func (bc *BookController) GetBook(c *gin.Context) {
	bookID := c.Param("id")

	book, err := bc.catalog.GetBook(bookID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	available, err := bc.catalog.AvailableCount(bookID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	rating, err := bc.catalog.AverageRating(bookID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	reviews, err := bc.reviews.BookReviews(bookID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	detail := gin.H{
		"book":             book,
		"available_copies": available,
		"average_rating":   rating,
		"reviews":          reviews,
	}

	if userID := c.GetString(middleware.ContextUserID); userID != "" {
		userReview, err := bc.reviews.UserReview(userID, bookID)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		canReview, err := bc.reviews.CanReview(userID, bookID)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		detail["user_review"] = userReview
		detail["can_review"] = canReview
	}

	utils.Success(c, detail)
}

// CreateBook creates a book. Requires the add_book permission.
func (bc *BookController) CreateBook(c *gin.Context) {
	var req services.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, err.Error(), nil)
		return
	}

	book, err := bc.catalog.CreateBook(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Created(c, "book created", book)
}

// UpdateBook updates a book. Requires the change_book permission.
func (bc *BookController) UpdateBook(c *gin.Context) {
	var req services.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, err.Error(), nil)
		return
	}

	book, err := bc.catalog.UpdateBook(c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Success(c, book)
}

// DeleteBook deletes a book and its dependents. Requires delete_book.
func (bc *BookController) DeleteBook(c *gin.Context) {
	if err := bc.catalog.DeleteBook(c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "book deleted", nil)
}
