package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// =============================================================================
// JSON Response Types
// =============================================================================
//
// Every /api endpoint answers with one of these envelopes:
// - success: {"data": ...}
// - error:   {"error": {"code": ..., "message": ..., "details": [...]}}

// ErrorCode defines standard error codes for programmatic handling
type ErrorCode string

const (
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"      // 400 - Malformed request
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR" // 400 - Validation failed
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"        // 404 - List or todo missing
	ErrCodeConflict   ErrorCode = "CONFLICT"         // 409 - Duplicate list title
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"   // 500 - Unexpected error
)

// ErrorDetail provides additional context for validation errors
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ErrorResponse is the standard error response structure
type ErrorResponse struct {
	Error struct {
		Code    ErrorCode     `json:"code"`
		Message string        `json:"message"`
		Details []ErrorDetail `json:"details,omitempty"`
	} `json:"error"`
}

// DataResponse wraps a single resource
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// ListResponse wraps a collection of resources
type ListResponse[T any] struct {
	Data []T `json:"data"`
}

// RespondData sends a 200 OK with a single data object
func RespondData[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, DataResponse[T]{Data: data})
}

// RespondCreated sends a 201 Created response with the created resource
// Also sets the Location header if path is provided
func RespondCreated[T any](c *gin.Context, data T, locationPath string) {
	if locationPath != "" {
		c.Header("Location", locationPath)
	}
	c.JSON(http.StatusCreated, DataResponse[T]{Data: data})
}

// RespondList sends a 200 OK with a list of items
func RespondList[T any](c *gin.Context, data []T) {
	// Ensure empty array instead of null
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, ListResponse[T]{Data: data})
}

// RespondNoContent sends a 204 No Content response
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func respondError(c *gin.Context, status int, code ErrorCode, message string, details []ErrorDetail) {
	resp := ErrorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	c.JSON(status, resp)
}

// RespondBadRequest sends a 400 Bad Request error
func RespondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, ErrCodeBadRequest, message, nil)
}

// RespondValidationError sends a 400 Bad Request with validation details
func RespondValidationError(c *gin.Context, message string, details []ErrorDetail) {
	respondError(c, http.StatusBadRequest, ErrCodeValidation, message, details)
}

// RespondNotFound sends a 404 Not Found error
func RespondNotFound(c *gin.Context, message string) {
	respondError(c, http.StatusNotFound, ErrCodeNotFound, message, nil)
}

// RespondConflict sends a 409 Conflict error
func RespondConflict(c *gin.Context, message string) {
	respondError(c, http.StatusConflict, ErrCodeConflict, message, nil)
}

// RespondInternalError sends a 500 Internal Server Error
func RespondInternalError(c *gin.Context, message string) {
	respondError(c, http.StatusInternalServerError, ErrCodeInternal, message, nil)
}
