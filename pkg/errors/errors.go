package errors

import (
	"errors"
	"fmt"
)

var (
	ErrURLNotFound        = NewError("URL_NOT_FOUND", "archive url not found in manifest")
	ErrManifestUnreadable = NewError("MANIFEST_UNREADABLE", "manifest could not be read")
	ErrDownloadFailed     = NewError("DOWNLOAD_FAILED", "failed to download the file")
	ErrInvalidArchive     = NewError("INVALID_ARCHIVE", "archive is malformed")
	ErrUnsafeEntry        = NewError("UNSAFE_ENTRY", "archive entry escapes destination")
	ErrFilesystem         = NewError("FILESYSTEM_ERROR", "filesystem operation failed")
	ErrValidation         = NewError("VALIDATION_ERROR", "validation failed")
	ErrInternal           = NewError("INTERNAL_ERROR", "internal error")
)

const (
	DetailStatusCode = "status_code"
	DetailPath       = "path"
	DetailField      = "field"
	DetailMessage    = "message"
)

type FatalError interface {
	error
	IsFatal() bool
}

type Error struct {
	Code    string
	Message string
	Details map[string]interface{}
	Cause   error
	fatal   bool
}

func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	msg := e.Message

	if detailMsg, ok := e.Details[DetailMessage].(string); ok && detailMsg != "" {
		msg = detailMsg
	}

	if status, ok := e.Details[DetailStatusCode].(int); ok {
		msg = fmt.Sprintf("%s (status code %d)", msg, status)
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on code so sentinel values compare equal to derived copies.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func (e *Error) IsFatal() bool {
	return e.fatal
}

func (e *Error) WithCause(cause error) *Error {
	err := e.clone()
	err.Cause = cause
	return err
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := e.clone()
	err.Details[key] = value
	return err
}

func (e *Error) AsFatal() *Error {
	err := e.clone()
	err.fatal = true
	return err
}

func (e *Error) clone() *Error {
	err := *e
	err.Details = make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		err.Details[k] = v
	}
	return &err
}

func Wrap(err error, appErr *Error) *Error {
	if err == nil {
		return nil
	}
	return appErr.WithCause(err)
}

func Code(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsNotFound(err error) bool {
	return Code(err) == ErrURLNotFound.Code
}

func IsDownloadFailed(err error) bool {
	return Code(err) == ErrDownloadFailed.Code
}

func IsValidation(err error) bool {
	return Code(err) == ErrValidation.Code
}

// StatusCode returns the upstream HTTP status carried by a DOWNLOAD_FAILED error.
// Transport failures carry none.
func StatusCode(err error) (int, bool) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return 0, false
	}
	status, ok := appErr.Details[DetailStatusCode].(int)
	return status, ok
}
