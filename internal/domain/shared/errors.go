package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
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

// Common domain errors
var (
	ErrNotFound        = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists   = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput    = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState    = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrMalformedRecord = NewDomainError("MALFORMED_RECORD", "Raw record could not be parsed")
	ErrMissingMapping  = NewDomainError("MISSING_MAPPING", "Required field mapping configuration is missing")
	ErrTimeRangeGap    = NewDomainError("TIME_RANGE_GAP", "Time dimension does not cover the observed order-date range")
	ErrUnknownPlatform = NewDomainError("UNKNOWN_PLATFORM", "Platform key is not registered")
)
