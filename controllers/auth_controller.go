package controllers

import (
	"github.com/gin-gonic/gin"

	"openshelf_go/config"
	"openshelf_go/services"
	"openshelf_go/utils"
)

// AuthController serves registration and login.
type AuthController struct {
	auth *services.AuthService
}

// NewAuthController creates an auth controller over the shared database.
func NewAuthController() *AuthController {
	return &AuthController{
		auth: services.NewAuthService(config.DB),
	}
}

// Register creates a new member account and returns a token.
func (ac *AuthController) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, err.Error(), nil)
		return
	}

	user, token, err := ac.auth.Register(&req)
	if err != nil {
		utils.ValidationFailed(c, err.Error(), nil)
		return
	}
	utils.Created(c, "registered", gin.H{
		"user":  user,
		"token": token,
	})
}

// Login verifies credentials and returns a token.
func (ac *AuthController) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, err.Error(), nil)
		return
	}

	user, token, err := ac.auth.Login(&req)
	if err != nil {
		utils.Unauthorized(c, err.Error())
		return
	}
	utils.Success(c, gin.H{
		"user":  user,
		"token": token,
	})
}
