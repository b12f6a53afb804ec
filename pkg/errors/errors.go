package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuth means the refresh credential was rejected by the token
	// endpoint. Fatal to the invocation; the caller must prompt
	// re-authorization. Never retried.
	ErrAuth = NewError("AUTH_ERROR", "mailbox authorization failed", http.StatusUnauthorized)

	// ErrSource is a transient mailbox API failure. Retried with backoff;
	// exhaustion at the listing level is fatal, at the per-message level
	// the message is skipped.
	ErrSource = NewError("SOURCE_ERROR", "mailbox source unavailable", http.StatusBadGateway)

	// ErrNormalization marks a malformed or unparseable message. Always
	// absorbed: the message is skipped, never the batch.
	ErrNormalization = NewError("NORMALIZATION_ERROR", "message could not be normalized", http.StatusUnprocessableEntity)

	// ErrSummarization is a completion-service failure (quota, rate limit,
	// malformed response). Always absorbed into a failed-status record.
	ErrSummarization = NewError("SUMMARIZATION_ERROR", "summarization failed", http.StatusServiceUnavailable)

	// ErrNotSupported marks an operation this service knows about but does
	// not execute, e.g. running a non-email agent kind.
	ErrNotSupported = NewError("NOT_SUPPORTED", "operation not supported", http.StatusNotImplemented)

	ErrNotFound           = NewError("NOT_FOUND", "resource not found", http.StatusNotFound)
	ErrValidation         = NewError("VALIDATION_ERROR", "validation failed", http.StatusBadRequest)
	ErrInternal           = NewError("INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
	ErrConflict           = NewError("CONFLICT", "resource conflict", http.StatusConflict)
	ErrTimeout            = NewError("TIMEOUT", "operation timed out", http.StatusRequestTimeout)
	ErrServiceUnavailable = NewError("SERVICE_UNAVAILABLE", "service unavailable", http.StatusServiceUnavailable)
)

type RetryableError interface {
	error
	IsRetryable() bool
}

type FatalError interface {
	error
	IsFatal() bool
}

type Error struct {
	Code      string
	Message   string
	Status    int
	Details   map[string]interface{}
	Cause     error
	retryable *bool
}

func NewError(code, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
		Details: make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	msg := e.Message

	if len(e.Details) > 0 {
		if detailMsg, ok := e.Details["message"].(string); ok && detailMsg != "" {
			msg = detailMsg
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) IsRetryable() bool {
	if e.retryable != nil {
		return *e.retryable
	}
	if e.Cause != nil {
		var retryableErr RetryableError
		if errors.As(e.Cause, &retryableErr) {
			return retryableErr.IsRetryable()
		}
		var fatalErr FatalError
		if errors.As(e.Cause, &fatalErr) {
			return !fatalErr.IsFatal()
		}
	}
	return e.Code == ErrSource.Code || e.Code == ErrTimeout.Code
}

func (e *Error) IsFatal() bool {
	if e.retryable != nil {
		return !*e.retryable
	}

	if e.Cause != nil {
		var fatalErr FatalError
		if errors.As(e.Cause, &fatalErr) {
			return fatalErr.IsFatal()
		}
	}

	return e.Code == ErrAuth.Code || e.Code == ErrValidation.Code || e.Code == ErrNotFound.Code
}

func (e *Error) WithCause(cause error) *Error {
	err := *e
	err.Cause = cause
	return &err
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := *e
	if err.Details == nil {
		err.Details = make(map[string]interface{})
	}
	err.Details[key] = value
	return &err
}

func (e *Error) AsRetryable() *Error {
	err := *e
	retryable := true
	err.retryable = &retryable
	return &err
}

func (e *Error) AsFatal() *Error {
	err := *e
	retryable := false
	err.retryable = &retryable
	return &err
}

func Wrap(err error, appErr *Error) *Error {
	if err == nil {
		return nil
	}
	return appErr.WithCause(err)
}

func IsAuth(err error) bool {
	return hasCode(err, ErrAuth.Code)
}

func IsSource(err error) bool {
	return hasCode(err, ErrSource.Code)
}

func IsNormalization(err error) bool {
	return hasCode(err, ErrNormalization.Code)
}

func IsSummarization(err error) bool {
	return hasCode(err, ErrSummarization.Code)
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrNotFound.Code)
}

func IsValidation(err error) bool {
	return hasCode(err, ErrValidation.Code)
}

func IsConflict(err error) bool {
	return hasCode(err, ErrConflict.Code)
}

func hasCode(err error, code string) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func ToHTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

func ToErrorResponse(err error) map[string]interface{} {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = ErrInternal.WithCause(err)
	}

	response := map[string]interface{}{
		"error":      appErr.Message,
		"error_code": appErr.Code,
	}

	// The web layer turns the two expected outage modes into actionable
	// guidance instead of a bare error string.
	switch appErr.Code {
	case ErrAuth.Code:
		response["error"] = "mailbox authorization failed, please reconnect your account"
	case ErrSummarization.Code:
		response["error"] = "summarization service unavailable, please try again later"
	}

	if len(appErr.Details) > 0 {
		response["details"] = appErr.Details
	}

	return response
}
