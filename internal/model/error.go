package model

import "fmt"

// Standard error codes for API responses
const (
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeInvalidImage     = "INVALID_IMAGE"
	ErrCodeNoFieldsToUpdate = "NO_FIELDS_TO_UPDATE"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeUnauthorised     = "UNAUTHORIZED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// DomainError is a business-logic error with a stable code that the
// HTTP layer maps to a status.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// MissingFieldError reports a required request field that was absent.
func MissingFieldError(field string) *DomainError {
	return NewDomainError(ErrCodeMissingField, fmt.Sprintf("%s is required", field))
}

// Common domain errors
var (
	ErrProductNotFound  = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrNoFieldsToUpdate = NewDomainError(ErrCodeNoFieldsToUpdate, "No fields provided to update")
	ErrNotAnImage       = NewDomainError(ErrCodeInvalidImage, "Only image uploads are accepted")
)
