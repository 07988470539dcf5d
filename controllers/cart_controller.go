package controllers

import (
	"github.com/gin-gonic/gin"

	"openshelf_go/config"
	"openshelf_go/middleware"
	"openshelf_go/services"
	"openshelf_go/utils"
)

// CartController serves the cart view and the toggle endpoint.
type CartController struct {
	carts *services.CartService
}

// NewCartController creates a cart controller over the shared database and
// the process-wide cart store.
func NewCartController() *CartController {
	return &CartController{
		carts: services.NewCartService(config.DB, services.DefaultCartStore()),
	}
}

// GetCart returns the books currently in the requester's cart.
func (cc *CartController) GetCart(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	books, err := cc.carts.Books(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Success(c, gin.H{"books": books})
}

// ToggleCart adds the book to the cart or removes it when present.
// Responds 201 with a message either way; 404 for an unknown book id.
func (cc *CartController) ToggleCart(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	message, err := cc.carts.Toggle(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Created(c, message, nil)
}
