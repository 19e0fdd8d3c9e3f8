package errors

import (
	"fmt"
	"time"
)

// Error is a coded error carrying the client and category it occurred for.
type Error struct {
	Code     Code   `json:"code"`
	Message  string `json:"message"`
	Client   string `json:"client,omitempty"`
	Category string `json:"category,omitempty"`

	Timestamp time.Time `json:"timestamp"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Client != "" {
		return fmt.Sprintf("%s: %s (client: %s)", e.Code, e.Message, e.Client)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithCause attaches the originating error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithClient records the messaging client the error belongs to.
func (e *Error) WithClient(client string) *Error {
	e.Client = client
	return e
}

// WithCategory records the routing category in effect.
func (e *Error) WithCategory(category string) *Error {
	e.Category = category
	return e
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a code.
func Wrap(err error, code Code, message string) *Error {
	return New(code, message).WithCause(err)
}

// Wrapf wraps an existing error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// GetCode extracts the code from an error, defaulting to CodeInternal.
func GetCode(err error) Code {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return CodeInternal
}

// IsConfigError reports whether err belongs to the configuration category.
func IsConfigError(err error) bool {
	return Category(GetCode(err)) == "configuration"
}

// IsRoutingMiss reports whether err is a routing miss or unknown-client skip.
func IsRoutingMiss(err error) bool {
	return Category(GetCode(err)) == "routing"
}

// IsDeliveryFailure reports whether err is a caught send failure.
func IsDeliveryFailure(err error) bool {
	return Category(GetCode(err)) == "delivery"
}

// IsAuthExpiry reports whether err signals rejected credentials.
func IsAuthExpiry(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == CodeAuthExpired
	}
	return false
}
