package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"openshelf_go/controllers"
	"openshelf_go/middleware"
	"openshelf_go/models"
)

// SetupRoutes registers the API routes on the engine.
func SetupRoutes(r *gin.Engine) {
	r.Use(middleware.CORS())
	r.Use(middleware.Logger())

	// The catalog root redirects to the book listing.
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/api/books")
	})

	api := r.Group("/api")
	{
		// ====== Auth routes (no authentication) ======
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.NewAuthController().Register)
			auth.POST("/login", controllers.NewAuthController().Login)
		}

		// ====== Book routes ======
		bookController := controllers.NewBookController()
		copyController := controllers.NewBookCopyController()
		reviewController := controllers.NewReviewController()
		books := api.Group("/books")
		{
			books.GET("", bookController.GetBooks)
			books.GET("/:id", middleware.OptionalAuth(), bookController.GetBook)
			books.POST("", middleware.AuthMiddleware(), middleware.RequirePermission(models.PermAddBook), bookController.CreateBook)
			books.PUT("/:id", middleware.AuthMiddleware(), middleware.RequirePermission(models.PermChangeBook), bookController.UpdateBook)
			books.DELETE("/:id", middleware.AuthMiddleware(), middleware.RequirePermission(models.PermDeleteBook), bookController.DeleteBook)

			books.GET("/:id/copies", copyController.GetCopies)
			books.POST("/:id/copies", middleware.AuthMiddleware(), middleware.RequirePermission(models.PermAddBookCopy), copyController.CreateCopy)

			books.POST("/:id/review", middleware.AuthMiddleware(), reviewController.SubmitReview)
		}

		// ====== Copy routes ======
		copies := api.Group("/copies")
		{
			copies.PUT("/:id", middleware.AuthMiddleware(), middleware.RequirePermission(models.PermChangeBookCopy), copyController.UpdateCopy)
			copies.DELETE("/:id", middleware.AuthMiddleware(), middleware.RequirePermission(models.PermDeleteBookCopy), copyController.DeleteCopy)
		}

		// ====== Author routes ======
		authorController := controllers.NewAuthorController()
		authors := api.Group("/authors")
		{
			authors.GET("", authorController.GetAuthors)
			authors.GET("/:id", authorController.GetAuthor)
			authors.POST("", middleware.AuthMiddleware(), middleware.RequirePermission(models.PermAddAuthor), authorController.CreateAuthor)
			authors.PUT("/:id", middleware.AuthMiddleware(), middleware.RequirePermission(models.PermChangeAuthor), authorController.UpdateAuthor)
			authors.DELETE("/:id", middleware.AuthMiddleware(), middleware.RequirePermission(models.PermDeleteAuthor), authorController.DeleteAuthor)
		}

		// ====== Search routes ======
		searchController := controllers.NewSearchController()
		search := api.Group("/search")
		{
			// Validated listing variants.
			search.GET("/books", searchController.SearchBooks)
			search.GET("/authors", searchController.SearchAuthors)
			// Raw array variants.
			search.GET("/book", searchController.BookSearchAPI)
			search.GET("/author", searchController.AuthorSearchAPI)
		}

		// ====== Cart and checkout routes ======
		cartController := controllers.NewCartController()
		loanController := controllers.NewLoanController()
		cart := api.Group("/cart", middleware.AuthMiddleware())
		{
			cart.GET("", cartController.GetCart)
			cart.POST("/toggle/:id", cartController.ToggleCart)
		}
		api.GET("/checkout", middleware.AuthMiddleware(), loanController.GetCheckout)
		api.POST("/checkout", middleware.AuthMiddleware(), loanController.PostCheckout)
		api.GET("/borrowed", middleware.AuthMiddleware(), loanController.GetBorrowed)

		// ====== Loan ledger routes ======
		loans := api.Group("/loans", middleware.AuthMiddleware())
		{
			loans.GET("", middleware.RequirePermission(models.PermViewLoan), loanController.GetActiveLoans)
			loans.PUT("/:id", middleware.RequirePermission(models.PermChangeLoan), loanController.UpdateLoan)
			loans.DELETE("/:id", middleware.RequirePermission(models.PermDeleteLoan), loanController.DeleteLoan)
		}
	}
}
