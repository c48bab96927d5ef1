// Package response renders the JSON envelope shared by every endpoint.
package response

import (
	"net/http"

	deliverycontext "librarian/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

const (
	TypeSuccess = "success"
	TypeError   = "error"
)

// SuccessResponse defines the structure for successful responses
type SuccessResponse struct {
	Type    string    `json:"type"`
	Message string    `json:"message"`
	Data    any       `json:"data"`
	Meta    *MetaInfo `json:"meta"`
}

// LoginResponse carries the bearer token next to the user profile.
type LoginResponse struct {
	SuccessResponse
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// ErrorResponse defines the structure for error responses
type ErrorResponse struct {
	Type       string    `json:"type"`
	Message    string    `json:"message"`              // User-friendly error message
	Code       string    `json:"code"`                 // Machine-readable error code, e.g., "VALIDATION_FAILED"
	Suggestion string    `json:"suggestion,omitempty"` // How the caller can fix the request
	Details    any       `json:"details,omitempty"`    // Additional error context (only for 4xx errors)
	Meta       *MetaInfo `json:"meta"`
}

// MetaInfo represents response metadata
type MetaInfo struct {
	RequestID string `json:"request_id"` // Request tracking ID
}

func meta(c echo.Context) *MetaInfo {
	return &MetaInfo{RequestID: deliverycontext.RequestID(c)}
}

// Success returns a successful response
func Success(c echo.Context, statusCode int, data any, message string) error {
	return c.JSON(statusCode, SuccessResponse{
		Type:    TypeSuccess,
		Message: message,
		Data:    data,
		Meta:    meta(c),
	})
}

// OK returns a 200 success response
func OK(c echo.Context, data any, message string) error {
	return Success(c, http.StatusOK, data, message)
}

// Created returns a 201 success response
func Created(c echo.Context, data any, message string) error {
	return Success(c, http.StatusCreated, data, message)
}

// Login returns a 200 response with the token at the top level and the
// profile under data.
func Login(c echo.Context, token string, expiresIn int64, profile any, message string) error {
	return c.JSON(http.StatusOK, LoginResponse{
		SuccessResponse: SuccessResponse{
			Type:    TypeSuccess,
			Message: message,
			Data:    profile,
			Meta:    meta(c),
		},
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: expiresIn,
	})
}

// Error returns an error response
func Error(c echo.Context, statusCode int, errorCode, message, suggestion string, details any) error {
	// Details should not be included for 5xx errors or authentication/authorization errors
	if statusCode >= http.StatusInternalServerError || statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		details = nil
	}
	if s, ok := details.(string); ok && s == "" {
		details = nil
	}

	return c.JSON(statusCode, ErrorResponse{
		Type:       TypeError,
		Message:    message,
		Code:       errorCode,
		Suggestion: suggestion,
		Details:    details,
		Meta:       meta(c),
	})
}

// BindingError returns a binding error response
func BindingError(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, "INVALID_INPUT", message, "check the request body is valid JSON with the documented fields", nil)
}

// InternalServerError returns a 500 error
func InternalServerError(c echo.Context) error {
	return Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error, please try again later", "", nil)
}
