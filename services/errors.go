package services

// Kind classifies a service error; the HTTP boundary maps each kind onto a
// status code.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the service-level error carried to the HTTP boundary.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// E builds a service error with a message for the client.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func invalid(fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}
