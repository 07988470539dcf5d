package controllers

import (
	"github.com/gin-gonic/gin"

	"openshelf_go/config"
	"openshelf_go/services"
	"openshelf_go/utils"
)

// BookCopyController serves the copy list of a book and permissioned CRUD.
type BookCopyController struct {
	catalog *services.CatalogService
}

// NewBookCopyController creates a copy controller over the shared database.
func NewBookCopyController() *BookCopyController {
	return &BookCopyController{
		catalog: services.NewCatalogService(config.DB),
	}
}

// GetCopies lists all copies of a book with their on-loan state.
func (cc *BookCopyController) GetCopies(c *gin.Context) {
	copies, err := cc.catalog.ListCopies(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Success(c, gin.H{"copies": copies})
}

// CreateCopy adds a copy to a book. Requires the add_bookcopy permission.
func (cc *BookCopyController) CreateCopy(c *gin.Context) {
	var req services.BookCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, err.Error(), nil)
		return
	}

	copy, err := cc.catalog.CreateCopy(c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Created(c, "copy created", copy)
}

// UpdateCopy sets a copy's maintenance flag. Requires change_bookcopy.
func (cc *BookCopyController) UpdateCopy(c *gin.Context) {
	var req services.BookCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, err.Error(), nil)
		return
	}

	copy, err := cc.catalog.UpdateCopy(c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Success(c, copy)
}

// DeleteCopy removes a copy and its loans. Requires delete_bookcopy.
func (cc *BookCopyController) DeleteCopy(c *gin.Context) {
	if err := cc.catalog.DeleteCopy(c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "copy deleted", nil)
}
