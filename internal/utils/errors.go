package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error; it decides the HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindTooManyRequests
)

// AppError carries a stable API error code and a client-safe message.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches AppErrors by code so sentinels work with errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// Status maps the error kind to an HTTP status code.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindInvalid:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WithMessage returns a copy of e with a more specific client message.
func (e *AppError) WithMessage(msg string) *AppError {
	cp := *e
	cp.Message = msg
	return &cp
}

// Wrap returns a copy of e that wraps cause.
func (e *AppError) Wrap(cause error) *AppError {
	cp := *e
	cp.Err = cause
	return &cp
}

// NewInvalid builds a validation error with a custom message.
func NewInvalid(message string) *AppError {
	return &AppError{Kind: KindInvalid, Code: "INVALID_REQUEST", Message: message}
}

// AsAppError unwraps err into an AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Common application errors used across services.
var (
	ErrInvalidRequest     = &AppError{Kind: KindInvalid, Code: "INVALID_REQUEST", Message: "Invalid request"}
	ErrMissingToken       = &AppError{Kind: KindUnauthorized, Code: "UNAUTHORIZED", Message: "No token provided"}
	ErrInvalidToken       = &AppError{Kind: KindUnauthorized, Code: "INVALID_TOKEN", Message: "Invalid token"}
	ErrForbidden          = &AppError{Kind: KindForbidden, Code: "FORBIDDEN", Message: "Insufficient permissions"}
	ErrInvalidCredentials = &AppError{Kind: KindUnauthorized, Code: "INVALID_CREDENTIALS", Message: "Invalid credentials"}
	ErrAccountInactive    = &AppError{Kind: KindUnauthorized, Code: "ACCOUNT_INACTIVE", Message: "Account is deactivated"}
	ErrTooManyAttempts    = &AppError{Kind: KindTooManyRequests, Code: "TOO_MANY_REQUESTS", Message: "Too many failed login attempts"}

	ErrProductNotFound = &AppError{Kind: KindNotFound, Code: "PRODUCT_NOT_FOUND", Message: "Product not found"}
	ErrVariantNotFound = &AppError{Kind: KindNotFound, Code: "VARIANT_NOT_FOUND", Message: "Variant not found"}
	ErrSKUExists       = &AppError{Kind: KindConflict, Code: "SKU_EXISTS", Message: "SKU already exists"}

	ErrOrderNotFound           = &AppError{Kind: KindNotFound, Code: "ORDER_NOT_FOUND", Message: "Order not found"}
	ErrInvalidStatusTransition = &AppError{Kind: KindInvalid, Code: "INVALID_STATUS_TRANSITION", Message: "Order status transition not allowed"}
	ErrAWBRequired             = &AppError{Kind: KindInvalid, Code: "AWB_REQUIRED", Message: "AWB number is required to ship an order"}
	ErrAWBExists               = &AppError{Kind: KindConflict, Code: "AWB_EXISTS", Message: "AWB number is already used by another order"}

	ErrEmptyCart               = &AppError{Kind: KindInvalid, Code: "EMPTY_CART", Message: "Cart is empty"}
	ErrInvalidShippingMethod   = &AppError{Kind: KindInvalid, Code: "INVALID_SHIPPING_METHOD", Message: "Unknown shipping method"}
	ErrInvalidPaymentMethod    = &AppError{Kind: KindInvalid, Code: "INVALID_PAYMENT_METHOD", Message: "Unknown payment method"}
	ErrAgeConfirmationRequired = &AppError{Kind: KindInvalid, Code: "AGE_CONFIRMATION_REQUIRED", Message: "Age confirmation is required for age-restricted products"}
	ErrInsufficientStock       = &AppError{Kind: KindConflict, Code: "INSUFFICIENT_STOCK", Message: "Insufficient stock"}
	ErrProductUnavailable      = &AppError{Kind: KindConflict, Code: "PRODUCT_UNAVAILABLE", Message: "Product is no longer available"}

	ErrNoFilesUploaded = &AppError{Kind: KindInvalid, Code: "NO_FILES", Message: "No files were uploaded successfully"}
)
