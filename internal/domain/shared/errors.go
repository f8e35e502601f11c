package shared

// DomainError is a business rule failure with a stable machine-readable code.
// Handlers map the code to an HTTP status and echo Message to the client.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches on Code alone, so errors.Is(err, ErrNotFound) holds for any
// NOT_FOUND error whatever its message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// Sentinels shared by both bounded contexts.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidArgument     = NewDomainError("INVALID_ARGUMENT", "Invalid numeric argument")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrDuplicateSubmission = NewDomainError("DUPLICATE_SUBMISSION", "This submission has already been processed")
)
