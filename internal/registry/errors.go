package registry

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a registry rejection.
type ErrorCode string

const (
	// CodeUnauthorized indicates the caller is not the owner.
	CodeUnauthorized ErrorCode = "Unauthorized"

	// CodeAlreadyAdded indicates the identity is already a member.
	CodeAlreadyAdded ErrorCode = "AlreadyAdded"

	// CodeNotExist indicates the identity is not a member.
	CodeNotExist ErrorCode = "NotExist"
)

// Error is a terminal registry rejection. The set of values is closed:
// ErrUnauthorized, ErrAlreadyAdded and ErrNotExist are the only instances
// returned by this package, so callers may compare with == or errors.Is.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code, so wrapped copies still match
// the sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "caller is not the owner"}
	ErrAlreadyAdded = &Error{Code: CodeAlreadyAdded, Message: "member already added"}
	ErrNotExist     = &Error{Code: CodeNotExist, Message: "member does not exist"}
)

// CodeOf returns the registry error code carried by err, if any.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) (ErrorCode, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Code, true
	}
	return "", false
}

// IsUnauthorized reports whether err is an Unauthorized rejection.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// IsAlreadyAdded reports whether err is an AlreadyAdded rejection.
func IsAlreadyAdded(err error) bool { return errors.Is(err, ErrAlreadyAdded) }

// IsNotExist reports whether err is a NotExist rejection.
func IsNotExist(err error) bool { return errors.Is(err, ErrNotExist) }
