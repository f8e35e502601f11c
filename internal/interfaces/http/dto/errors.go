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
	// ErrCodeValidation is the base code for request validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidQuantity is used for non-positive order quantities
	ErrCodeInvalidQuantity = "ERR_INVALID_QUANTITY"
	// ErrCodeInvalidCost is used for negative unit costs
	ErrCodeInvalidCost = "ERR_INVALID_COST"
	// ErrCodeInvalidName is used for empty or oversized names
	ErrCodeInvalidName = "ERR_INVALID_NAME"
	// ErrCodeInvalidReference is used when a required referenced ID is empty
	ErrCodeInvalidReference = "ERR_INVALID_REFERENCE"
	// ErrCodeInvalidDeliveryDate is used when the expected delivery precedes the order date
	ErrCodeInvalidDeliveryDate = "ERR_INVALID_DELIVERY_DATE"
	// ErrCodeInvalidStatus is used for unknown status filters
	ErrCodeInvalidStatus = "ERR_INVALID_STATUS"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeItemNotFound is used when an order line does not exist
	ErrCodeItemNotFound = "ERR_ITEM_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeDuplicateSubmission is used when an idempotency key was already processed
	ErrCodeDuplicateSubmission = "ERR_DUPLICATE_SUBMISSION"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeReceiptRejected is used when a receipt fails validation
	ErrCodeReceiptRejected = "ERR_RECEIPT_REJECTED"
	// ErrCodeNegativeFinalCost is used when a discount drives the final cost below zero
	ErrCodeNegativeFinalCost = "ERR_NEGATIVE_FINAL_COST"
	// ErrCodeNoItems is used when sending an order without lines
	ErrCodeNoItems = "ERR_NO_ITEMS"
	// ErrCodeDuplicateMedicine is used when a medicine is ordered twice
	ErrCodeDuplicateMedicine = "ERR_DUPLICATE_MEDICINE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidArgument is used for negative amounts and percentages
	ErrCodeInvalidArgument = "ERR_INVALID_ARGUMENT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeInvalidQuantity:     http.StatusBadRequest,
	ErrCodeInvalidCost:         http.StatusBadRequest,
	ErrCodeInvalidName:         http.StatusBadRequest,
	ErrCodeInvalidReference:    http.StatusBadRequest,
	ErrCodeInvalidDeliveryDate: http.StatusBadRequest,
	ErrCodeInvalidStatus:       http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeItemNotFound:        http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateSubmission: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeReceiptRejected:   http.StatusUnprocessableEntity,
	ErrCodeNegativeFinalCost: http.StatusUnprocessableEntity,
	ErrCodeNoItems:           http.StatusUnprocessableEntity,
	ErrCodeDuplicateMedicine: http.StatusUnprocessableEntity,

	// Input errors
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidArgument: http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes.
// Several field-level domain codes collapse onto one API code.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ITEM_NOT_FOUND":       ErrCodeItemNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"DUPLICATE_SUBMISSION": ErrCodeDuplicateSubmission,

	"INVALID_STATE":       ErrCodeInvalidState,
	"INVALID_ORDER_STATE": ErrCodeInvalidState,
	"ALREADY_ACTIVE":      ErrCodeInvalidState,
	"ALREADY_INACTIVE":    ErrCodeInvalidState,
	"RECEIPT_REJECTED":    ErrCodeReceiptRejected,
	"NEGATIVE_FINAL_COST": ErrCodeNegativeFinalCost,
	"NO_ITEMS":            ErrCodeNoItems,
	"DUPLICATE_MEDICINE":  ErrCodeDuplicateMedicine,

	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_ARGUMENT":      ErrCodeInvalidArgument,
	"INVALID_QUANTITY":      ErrCodeInvalidQuantity,
	"INVALID_COST":          ErrCodeInvalidCost,
	"INVALID_NAME":          ErrCodeInvalidName,
	"INVALID_MEDICINE_NAME": ErrCodeInvalidName,
	"INVALID_SUPPLIER_NAME": ErrCodeInvalidName,
	"INVALID_PO_NUMBER":     ErrCodeInvalidName,
	"INVALID_MEDICINE":      ErrCodeInvalidReference,
	"INVALID_SUPPLIER":      ErrCodeInvalidReference,
	"INVALID_DEPARTMENT":    ErrCodeInvalidReference,
	"INVALID_DELIVERY_DATE": ErrCodeInvalidDeliveryDate,
	"INVALID_STATUS":        ErrCodeInvalidStatus,
	"VALIDATION_ERROR":      ErrCodeValidation,
	"BAD_REQUEST":           ErrCodeBadRequest,
	"INTERNAL_ERROR":        ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes that are already in the API format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
