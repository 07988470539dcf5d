package controllers

import (
	"github.com/gin-gonic/gin"

	"openshelf_go/config"
	"openshelf_go/middleware"
	"openshelf_go/models"
	"openshelf_go/services"
	"openshelf_go/utils"
)

// LoanController serves checkout, the borrower's loan view and the
// permissioned loan ledger operations.
type LoanController struct {
	loans *services.LoanService
}

// NewLoanController creates a loan controller over the shared database and
// the process-wide cart store.
func NewLoanController() *LoanController {
	carts := services.NewCartService(config.DB, services.DefaultCartStore())
	return &LoanController{
		loans: services.NewLoanService(config.DB, carts),
	}
}

// GetCheckout previews the checkout: cart books plus the loan and due-back
// dates an immediate checkout would use. 404 when the cart is empty.
func (lc *LoanController) GetCheckout(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	preview, err := lc.loans.CheckoutPreview(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Success(c, preview)
}

// PostCheckout converts the cart into loans. All-or-nothing: when any book
// has no available copy nothing is loaned and the cart stays intact.
func (lc *LoanController) PostCheckout(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	result, err := lc.loans.Checkout(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Created(c, "checkout complete", result)
}

// GetBorrowed returns the requester's open loans, earliest due first,
// each flagged with its overdue state.
func (lc *LoanController) GetBorrowed(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	loans, err := lc.loans.Borrowed(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Success(c, gin.H{"loans": withOverdue(loans)})
}

// GetActiveLoans returns every open loan. Requires the view_loan permission.
func (lc *LoanController) GetActiveLoans(c *gin.Context) {
	loans, err := lc.loans.ActiveLoans()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Success(c, gin.H{"loans": withOverdue(loans)})
}

// UpdateLoan patches a loan's dates; setting return_date closes the loan.
// Requires the change_loan permission.
func (lc *LoanController) UpdateLoan(c *gin.Context) {
	var req services.UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, err.Error(), nil)
		return
	}

	loan, err := lc.loans.UpdateLoan(c.Param("id"), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.Success(c, loan)
}

// DeleteLoan removes a loan record. Requires the delete_loan permission.
func (lc *LoanController) DeleteLoan(c *gin.Context) {
	if err := lc.loans.DeleteLoan(c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "loan deleted", nil)
}

// loanView is a loan plus its overdue state at response time.
type loanView struct {
	models.Loan
	IsOverdue bool `json:"is_overdue"`
}

// withOverdue decorates loans with their current overdue state.
func withOverdue(loans []models.Loan) []loanView {
	views := make([]loanView, 0, len(loans))
	for i := range loans {
		views = append(views, loanView{Loan: loans[i], IsOverdue: loans[i].IsOverdue()})
	}
	return views
}
