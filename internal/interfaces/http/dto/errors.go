package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeInvalidCredentials is used when login credentials are wrong
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	// ErrCodeAccountInactive is used when a deactivated account authenticates
	ErrCodeAccountInactive = "ERR_ACCOUNT_INACTIVE"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeTokenRevoked is used when the token was blacklisted
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeInsufficientStock is used when stock cannot cover the request
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	// ErrCodeCartEmpty is used when checkout starts from an empty cart
	ErrCodeCartEmpty = "ERR_CART_EMPTY"
	// ErrCodeCategoryInUse is used when deleting a category with products
	ErrCodeCategoryInUse = "ERR_CATEGORY_IN_USE"
)

// Payment error codes
const (
	// ErrCodePaymentAlreadyPaid is used when an order is already settled
	ErrCodePaymentAlreadyPaid = "ERR_PAYMENT_ALREADY_PAID"
	// ErrCodePaymentNotSucceeded is used when the provider reports anything but success
	ErrCodePaymentNotSucceeded = "ERR_PAYMENT_NOT_SUCCEEDED"
	// ErrCodePaymentAmountMismatch is used when the settled amount differs from the order
	ErrCodePaymentAmountMismatch = "ERR_PAYMENT_AMOUNT_MISMATCH"
	// ErrCodePaymentInvalidIntent is used when the intent does not belong to the order
	ErrCodePaymentInvalidIntent = "ERR_PAYMENT_INVALID_INTENT"
	// ErrCodePaymentNotConfigured is used when the requested provider has no credentials
	ErrCodePaymentNotConfigured = "ERR_PAYMENT_NOT_CONFIGURED"
	// ErrCodePaymentProviderDown is used when the provider cannot be reached
	ErrCodePaymentProviderDown = "ERR_PAYMENT_PROVIDER_UNAVAILABLE"
	// ErrCodePaymentProviderError is used when the provider rejected the request
	ErrCodePaymentProviderError = "ERR_PAYMENT_PROVIDER_ERROR"
	// ErrCodeWebhookInvalid is used when a webhook signature fails verification
	ErrCodeWebhookInvalid = "ERR_WEBHOOK_INVALID"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeAccountInactive:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeCartEmpty:         http.StatusUnprocessableEntity,
	ErrCodeCategoryInUse:     http.StatusConflict,

	// Payment errors. Provider outages surface as 502 so callers can
	// tell "retry later" apart from "your request is wrong".
	ErrCodePaymentAlreadyPaid:    http.StatusConflict,
	ErrCodePaymentNotSucceeded:   http.StatusUnprocessableEntity,
	ErrCodePaymentAmountMismatch: http.StatusUnprocessableEntity,
	ErrCodePaymentInvalidIntent:  http.StatusUnprocessableEntity,
	ErrCodePaymentNotConfigured:  http.StatusServiceUnavailable,
	ErrCodePaymentProviderDown:   http.StatusBadGateway,
	ErrCodePaymentProviderError:  http.StatusBadGateway,
	ErrCodeWebhookInvalid:        http.StatusBadRequest,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the wire format
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INTERNAL_ERROR":       ErrCodeInternal,

	"INVALID_CREDENTIALS": ErrCodeInvalidCredentials,
	"ACCOUNT_INACTIVE":    ErrCodeAccountInactive,
	"TOKEN_EXPIRED":       ErrCodeTokenExpired,
	"TOKEN_INVALID":       ErrCodeTokenInvalid,
	"TOKEN_REVOKED":       ErrCodeTokenRevoked,
	"TOKEN_MAX_REFRESH":   ErrCodeTokenExpired,
	"TOKEN_ERROR":         ErrCodeTokenInvalid,
	"INVALID_PASSWORD":    ErrCodeInvalidCredentials,

	"INSUFFICIENT_STOCK":  ErrCodeInsufficientStock,
	"PRODUCT_NOT_FOUND":   ErrCodeNotFound,
	"PRODUCT_UNAVAILABLE": ErrCodeBusinessRule,
	"CART_EMPTY":          ErrCodeCartEmpty,
	"CART_ITEM_NOT_FOUND": ErrCodeNotFound,
	"CATEGORY_IN_USE":     ErrCodeCategoryInUse,
	"INVALID_CATEGORY":    ErrCodeInvalidInput,
	"USER_NOT_FOUND":      ErrCodeNotFound,

	"ALREADY_PAID":           ErrCodePaymentAlreadyPaid,
	"NOT_PAID":               ErrCodeInvalidState,
	"INVALID_PAYMENT_METHOD": ErrCodeInvalidInput,
	"INVALID_ADDRESS":        ErrCodeInvalidInput,
	"INVALID_PRICE":          ErrCodeInvalidInput,
	"INVALID_QUANTITY":       ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the wire format.
// Codes already in the wire format or unknown pass through as-is.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := DomainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
