// Package apperr defines the closed set of failures the domain layer reports.
//
// Repositories translate storage and transport errors into one of these kinds;
// use cases and handlers only ever see *Error values. Anything else reaching
// the interactor boundary is coerced to KindUnexpected.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNetwork            Kind = "network"
	KindInvalidCredential  Kind = "invalid_credential"
	KindUserAlreadyExists  Kind = "user_already_exists"
	KindUserDoesNotExist   Kind = "user_does_not_exist"
	KindFailedToSaveTest   Kind = "failed_to_save_the_test"
	KindFailedToUploadFile Kind = "failed_to_upload_the_image"
	KindValidation         Kind = "validation"
	KindNotFound           Kind = "not_found"
	KindUnexpected         Kind = "unexpected"
)

var messages = map[Kind]string{
	KindNetwork:            "network error, check the connection and try again",
	KindInvalidCredential:  "invalid email or password",
	KindUserAlreadyExists:  "a user with this email already exists",
	KindUserDoesNotExist:   "user does not exist",
	KindFailedToSaveTest:   "failed to save the test",
	KindFailedToUploadFile: "failed to upload the image",
	KindValidation:         "validation failed",
	KindNotFound:           "not found",
	KindUnexpected:         "unexpected error",
}

type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind) *Error {
	return &Error{Kind: kind, Message: messages[kind]}
}

// Wrap attaches the underlying cause for logging; the cause never reaches clients.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Message: messages[kind], cause: cause}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrNetwork           = New(KindNetwork)
	ErrInvalidCredential = New(KindInvalidCredential)
	ErrUserAlreadyExists = New(KindUserAlreadyExists)
	ErrUserDoesNotExist  = New(KindUserDoesNotExist)
	ErrFailedToSaveTest  = New(KindFailedToSaveTest)
	ErrFailedToUpload    = New(KindFailedToUploadFile)
	ErrValidation        = New(KindValidation)
	ErrNotFound          = New(KindNotFound)
	ErrUnexpected        = New(KindUnexpected)
)

// Coerce returns err as an *Error, mapping foreign errors to KindUnexpected.
func Coerce(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(KindUnexpected, err)
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return Coerce(err).Kind
}
