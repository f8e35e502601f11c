package dto

// Response represents a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code       string             `json:"code"`
	Message    string             `json:"message"`
	RequestID  string             `json:"request_id,omitempty"`
	Details    []ValidationDetail `json:"details,omitempty"`
	Violations []ViolationDetail  `json:"violations,omitempty"`
}

// ValidationDetail describes one request field that failed binding validation
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ViolationDetail describes one reason a receipt was rejected.
// ItemID is empty for order-level violations.
type ViolationDetail struct {
	Kind         string `json:"kind"`
	ItemID       string `json:"item_id,omitempty"`
	Field        string `json:"field"`
	Message      string `json:"message"`
	MaxRemaining *int   `json:"max_remaining,omitempty"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			totalPages++
		}
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// NewValidationErrorResponse creates a validation error response with per-field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// NewReceiptRejectedResponse lists every violation of a rejected receipt
func NewReceiptRejectedResponse(message, requestID string, violations []ViolationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeReceiptRejected, message, requestID)
	resp.Error.Violations = violations
	return resp
}
