package host

import (
	"errors"
	"fmt"

	"github.com/roach88/memberreg/internal/registry"
)

// ErrorCode categorizes host rejections.
type ErrorCode string

const (
	// CodeNotInitialized indicates an execute or query before instantiate.
	CodeNotInitialized ErrorCode = "NotInitialized"

	// CodeAlreadyInitialized indicates a second instantiate.
	CodeAlreadyInitialized ErrorCode = "AlreadyInitialized"

	// CodeInvalidMessage indicates a request that failed schema validation
	// or decoding.
	CodeInvalidMessage ErrorCode = "InvalidMessage"
)

// Error is a host-level rejection. It never reaches the registry.
type Error struct {
	Code    ErrorCode
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func newNotInitialized() *Error {
	return &Error{Code: CodeNotInitialized, Message: "registry has not been instantiated"}
}

func newAlreadyInitialized() *Error {
	return &Error{Code: CodeAlreadyInitialized, Message: "registry is already instantiated"}
}

func newInvalidMessage(kind string, err error) *Error {
	return &Error{Code: CodeInvalidMessage, Message: "invalid " + kind + " message", Err: err}
}

// IsNotInitialized returns true if err is a NotInitialized rejection.
func IsNotInitialized(err error) bool {
	return hasCode(err, CodeNotInitialized)
}

// IsAlreadyInitialized returns true if err is an AlreadyInitialized rejection.
func IsAlreadyInitialized(err error) bool {
	return hasCode(err, CodeAlreadyInitialized)
}

// IsInvalidMessage returns true if err is an InvalidMessage rejection.
func IsInvalidMessage(err error) bool {
	return hasCode(err, CodeInvalidMessage)
}

func hasCode(err error, code ErrorCode) bool {
	var he *Error
	if errors.As(err, &he) {
		return he.Code == code
	}
	return false
}

// Code returns the rejection code carried by err: a registry code or a
// host code. Infrastructure errors have no code.
func Code(err error) (string, bool) {
	if code, ok := registry.CodeOf(err); ok {
		return string(code), true
	}
	var he *Error
	if errors.As(err, &he) {
		return string(he.Code), true
	}
	return "", false
}

// isRejection reports whether err is a terminal rejection that is recorded
// in the transaction log, as opposed to an infrastructure failure that
// rolls the call back.
func isRejection(err error) bool {
	_, ok := Code(err)
	return ok
}
