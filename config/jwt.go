package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig holds the token signing settings.
type JWTConfig struct {
	SecretKey      string
	ExpirationTime time.Duration
	Issuer         string
}

// GetJWTConfig reads the JWT settings from the environment.
func GetJWTConfig() *JWTConfig {
	return &JWTConfig{
		SecretKey:      GetEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		ExpirationTime: time.Hour * 24 * 7,
		Issuer:         "openshelf",
	}
}

// Claims carries the authenticated user plus their permission strings.
type Claims struct {
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// JWTService signs and validates tokens.
type JWTService struct {
	config *JWTConfig
}

// NewJWTService creates a JWT service instance.
func NewJWTService() *JWTService {
	return &JWTService{
		config: GetJWTConfig(),
	}
}

// GenerateToken signs a token for a user.
func (s *JWTService) GenerateToken(userID, username string, permissions []string) (string, error) {
	claims := &Claims{
		UserID:      userID,
		Username:    username,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.ExpirationTime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    s.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SecretKey))
}

// ValidateToken parses and verifies a token string.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

var jwtService *JWTService

// GetJWTService returns the shared JWT service instance.
func GetJWTService() *JWTService {
	if jwtService == nil {
		jwtService = NewJWTService()
	}
	return jwtService
}
