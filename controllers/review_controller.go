package controllers

import (
	"github.com/gin-gonic/gin"

	"openshelf_go/config"
	"openshelf_go/middleware"
	"openshelf_go/services"
	"openshelf_go/utils"
)

// ReviewController serves the review submission endpoint.
type ReviewController struct {
	reviews *services.ReviewService
}

// NewReviewController creates a review controller over the shared database.
func NewReviewController() *ReviewController {
	return &ReviewController{
		reviews: services.NewReviewService(config.DB),
	}
}

// SubmitReview posts or replaces the requester's review of a book.
// 400 for a malformed payload or out-of-range rating, 404 when the book is
// unknown or the requester never borrowed it, 201 on success.
func (rc *ReviewController) SubmitReview(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	bookID := c.Param("id")

	var req services.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, "invalid review", nil)
		return
	}

	review, err := rc.reviews.Submit(userID, bookID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Created(c, "review saved", review)
}
