package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// External collaborators
	ErrTransport = errors.New("transport failure")

	// Import errors
	ErrImportFailed = errors.New("import failed")
)

// Placement errors
var (
	ErrAvailabilityBound = errors.New("availability is already bound to a training")
	ErrStudentArchived   = errors.New("student is archived")
	ErrNotEligible       = errors.New("student klass does not match period section and level")
)

// Domain model errors
var (
	ErrKlassAlreadyExists       = errors.New("klass with this name already exists")
	ErrKlassHasStudents         = errors.New("klass still has students and cannot be deleted")
	ErrCorporationAlreadyExists = errors.New("corporation with this name and city already exists")
	ErrInvalidPeriodDates       = errors.New("period start date is after end date")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewValidationError creates a new custom error for a failed precondition
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewTransportError wraps a delivery failure of an external collaborator (SMTP)
func NewTransportError(message string, cause error) error {
	return &CustomError{
		Err:     errors.Join(ErrTransport, cause),
		Message: message,
	}
}

// NewImportError reports a fatal import failure. The message is shown to the user as is.
func NewImportError(message string) error {
	return &CustomError{
		Err:     ErrImportFailed,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context. Code,
// when set, overrides the error code the HTTP layer derives from Err.
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// UserMessage returns the message meant for the end user: the CustomError message when
// present in the chain, the error text otherwise.
func UserMessage(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return err.Error()
}
