package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"openshelf_go/config"
	"openshelf_go/models"
)

// AuthService handles registration and login. Permission grants are an
// administrative concern; newly registered members get none.
type AuthService struct {
	db         *gorm.DB
	jwtService *config.JWTService
}

// NewAuthService creates an auth service over the given database.
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{
		db:         db,
		jwtService: config.GetJWTService(),
	}
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=100"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a user with a hashed password and signs a token.
func (as *AuthService) Register(req *RegisterRequest) (*models.User, string, error) {
	var existing models.User
	if err := as.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return nil, "", errors.New("username already exists")
	}
	if err := as.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, "", errors.New("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := as.db.Create(&user).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := as.jwtService.GenerateToken(user.ID, user.Username, user.PermissionList())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return &user, token, nil
}

// Login verifies the credentials and signs a token carrying the user's
// permission strings.
func (as *AuthService) Login(req *LoginRequest) (*models.User, string, error) {
	var user models.User
	if err := as.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", errors.New("invalid email or password")
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, "", errors.New("invalid email or password")
	}

	token, err := as.jwtService.GenerateToken(user.ID, user.Username, user.PermissionList())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return &user, token, nil
}
