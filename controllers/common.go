package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"openshelf_go/services"
	"openshelf_go/utils"
)

// defaultPageSize is the listing page size.
const defaultPageSize = 20

// pagination reads page/limit query parameters with sane bounds.
func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultPageSize
	}
	return page, limit
}

// handleServiceError maps service errors onto the response envelope.
func handleServiceError(c *gin.Context, err error) {
	var unavailable *services.UnavailableBooksError
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFound(c, "")
	case errors.Is(err, services.ErrEmptyCart):
		utils.NotFound(c, "cart is empty")
	case errors.Is(err, services.ErrInvalidReview):
		utils.ValidationFailed(c, "invalid review", nil)
	case errors.As(err, &unavailable):
		utils.ValidationFailed(c, unavailable.Error(), gin.H{"unavailable": unavailable.Titles})
	default:
		utils.InternalError(c, "")
	}
}
