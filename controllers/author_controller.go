package controllers

import (
	"github.com/gin-gonic/gin"

	"openshelf_go/config"
	"openshelf_go/services"
	"openshelf_go/utils"
)

// AuthorController serves the author listing, detail and permissioned CRUD.
type AuthorController struct {
	catalog *services.CatalogService
}

// NewAuthorController creates an author controller over the shared database.
func NewAuthorController() *AuthorController {
	return &AuthorController{
		catalog: services.NewCatalogService(config.DB),
	}
}

// GetAuthors lists authors, 20 per page.
func (ac *AuthorController) GetAuthors(c *gin.Context) {
	page, limit := pagination(c)

	authors, total, err := ac.catalog.ListAuthors(page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Paginate(c, authors, total, page, limit)
}

// GetAuthor returns the author detail with a page of their books.
func (ac *AuthorController) GetAuthor(c *gin.Context) {
	authorID := c.Param("id")
	page, limit := pagination(c)

	author, err := ac.catalog.GetAuthor(authorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	books, total, err := ac.catalog.BooksByAuthor(authorID, page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"author":      author,
		"books":       books,
		"books_total": total,
	})
}

// CreateAuthor creates an author. Requires the add_author permission.
func (ac *AuthorController) CreateAuthor(c *gin.Context) {
	var req services.AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, err.Error(), nil)
		return
	}

	author, err := ac.catalog.CreateAuthor(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Created(c, "author created", author)
}

// UpdateAuthor updates an author. Requires the change_author permission.
func (ac *AuthorController) UpdateAuthor(c *gin.Context) {
	var req services.AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, err.Error(), nil)
		return
	}

	author, err := ac.catalog.UpdateAuthor(c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Success(c, author)
}

// DeleteAuthor deletes an author; their books survive. Requires
// the delete_author permission.
func (ac *AuthorController) DeleteAuthor(c *gin.Context) {
	if err := ac.catalog.DeleteAuthor(c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "author deleted", nil)
}
