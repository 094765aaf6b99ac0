package apperror

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// The service error taxonomy is NotFound (404), Validation (400) and
// Conflict (409). Modules declare their sentinels through these so the
// HTTP mapping lives in one place.

// NotFound creates an AppError for an absent (or deliberately hidden) entity.
func NotFound(message string) *AppError {
	return New(404, message)
}

// Validation creates an AppError for malformed input or an illegal state.
func Validation(message string) *AppError {
	return New(400, message)
}

// Conflict creates an AppError for a uniqueness violation.
func Conflict(message string) *AppError {
	return New(409, message)
}
