package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"openshelf_go/config"
	"openshelf_go/services"
	"openshelf_go/utils"
)

// SearchController serves both search variants: the validated listing
// routes and the raw JSON array routes.
type SearchController struct {
	search *services.SearchService
}

// NewSearchController creates a search controller over the shared database
// and Redis cache.
func NewSearchController() *SearchController {
	return &SearchController{
		search: services.NewSearchService(config.DB, config.GetRedisClient()),
	}
}

// SearchBooks is the validated book search: the trimmed query must be
// non-empty, otherwise 404.
func (sc *SearchController) SearchBooks(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		utils.NotFound(c, "missing search query")
		return
	}

	books, err := sc.search.SearchBooks(c.Request.Context(), query)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Success(c, gin.H{
		"query": query,
		"books": books,
	})
}

// SearchAuthors is the validated author search: the trimmed query must be
// non-empty, otherwise 404.
func (sc *SearchController) SearchAuthors(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		utils.NotFound(c, "missing search query")
		return
	}

	authors, err := sc.search.SearchAuthors(c.Request.Context(), query)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Success(c, gin.H{
		"query":   query,
		"authors": authors,
	})
}

// BookSearchAPI is the raw variant: 404 only when the query parameter is
// entirely absent, and the body is the bare serialized array.
func (sc *SearchController) BookSearchAPI(c *gin.Context) {
	query, exists := c.GetQuery("query")
	if !exists {
		utils.NotFound(c, "missing search query")
		return
	}

	books, err := sc.search.SearchBooks(c.Request.Context(), query)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sc.search.SerializeBooks(books))
}

// AuthorSearchAPI is the raw variant for authors.
func (sc *SearchController) AuthorSearchAPI(c *gin.Context) {
	query, exists := c.GetQuery("query")
	if !exists {
		utils.NotFound(c, "missing search query")
		return
	}

	authors, err := sc.search.SearchAuthors(c.Request.Context(), query)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sc.search.SerializeAuthors(authors))
}
