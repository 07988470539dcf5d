package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the unified JSON envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PageResponse is the envelope for paginated listings.
type PageResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// Business status codes.
const (
	CodeSuccess             = 20000
	CodeError               = 40000
	CodeUnauthorized        = 40100
	CodeForbidden           = 40300
	CodeNotFound            = 40400
	CodeValidationError     = 42200
	CodeInternalServerError = 50000
)

var codeMessages = map[int]string{
	CodeSuccess:             "success",
	CodeError:               "operation failed",
	CodeUnauthorized:        "authentication required",
	CodeForbidden:           "permission denied",
	CodeNotFound:            "resource not found",
	CodeValidationError:     "validation failed",
	CodeInternalServerError: "internal server error",
}

// GetCodeMessage returns the default message for a business code.
func GetCodeMessage(code int) string {
	if msg, exists := codeMessages[code]; exists {
		return msg
	}
	return "unknown error"
}

// Success writes a 200 response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: GetCodeMessage(CodeSuccess),
		Data:    data,
	})
}

// SuccessWithMessage writes a 200 response with a custom message.
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// Created writes a 201 response, used by resource-creating operations.
func Created(c *gin.Context, message string, data interface{}) {
	if message == "" {
		message = GetCodeMessage(CodeSuccess)
	}
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = GetCodeMessage(CodeUnauthorized)
	}
	c.JSON(http.StatusUnauthorized, Response{
		Code:    CodeUnauthorized,
		Message: message,
	})
}

// Forbidden writes a 403 response.
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = GetCodeMessage(CodeForbidden)
	}
	c.JSON(http.StatusForbidden, Response{
		Code:    CodeForbidden,
		Message: message,
	})
}

// NotFound writes a 404 response.
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = GetCodeMessage(CodeNotFound)
	}
	c.JSON(http.StatusNotFound, Response{
		Code:    CodeNotFound,
		Message: message,
	})
}

// ValidationFailed writes a 400 response with the per-field error map.
func ValidationFailed(c *gin.Context, message string, fields interface{}) {
	if message == "" {
		message = GetCodeMessage(CodeValidationError)
	}
	c.JSON(http.StatusBadRequest, Response{
		Code:    CodeValidationError,
		Message: message,
		Data:    fields,
	})
}

// InternalError writes a 500 response.
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = GetCodeMessage(CodeInternalServerError)
	}
	c.JSON(http.StatusInternalServerError, Response{
		Code:    CodeInternalServerError,
		Message: message,
	})
}

// Paginate writes a 200 response with paging metadata.
func Paginate(c *gin.Context, data interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, PageResponse{
		Code:    CodeSuccess,
		Message: GetCodeMessage(CodeSuccess),
		Data:    data,
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}
