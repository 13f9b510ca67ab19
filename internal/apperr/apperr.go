// Package apperr defines the tagged error taxonomy shared by the scoring pipeline and its adapters.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the category of a failure. It decides how callers react (and which status the
// HTTP layer maps it to); the Code inside an Error is finer grained.
type Kind string

const (
	// KindClient is a malformed or missing client input
	KindClient Kind = "client"
	// KindTooLarge is a client input above a configured limit
	KindTooLarge Kind = "too_large"
	// KindValidation is a semantic validation failure inside the core
	KindValidation Kind = "validation"
	// KindAuth is a missing or invalid credential
	KindAuth Kind = "auth"
	// KindRateLimit is a rejected request over the per-client budget
	KindRateLimit Kind = "rate_limit"
	// KindBackend is an LLM or embedding backend failure, including unusable replies
	KindBackend Kind = "backend"
	// KindInternal is anything unclassified
	KindInternal Kind = "internal"
)

// Well-known error codes.
const (
	CodeValidation       = "validation_error"
	CodeInvalidInput     = "invalid_input"
	CodeMissingInput     = "missing_input"
	CodeBothProvided     = "both_provided"
	CodeEmptyText        = "empty_text"
	CodeTextTooLarge     = "text_too_large"
	CodeEmptyUpload      = "empty_upload"
	CodeUploadTooLarge   = "upload_too_large"
	CodeUndecodable      = "undecodable_upload"
	CodeNoText           = "no_text"
	CodeAuth             = "auth_error"
	CodeRateLimited      = "rate_limited"
	CodeBackend          = "llm_backend_error"
	CodeGenerationFailed = "generation_failed"
	CodeScoringFailed    = "scoring_failed"
	CodeEmbeddingFailed  = "embedding_failed"
	CodeInternal         = "internal_error"
)

// Error is a failure tagged with a kind, a machine-readable code and a human message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Kinder is implemented by errors from other packages that know their own kind.
type Kinder interface {
	ErrorKind() Kind
}

// New creates an Error without a cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap creates an Error around a cause.
func Wrap(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

// Validation returns a KindValidation error with the standard code.
func Validation(message string) *Error {
	return New(KindValidation, CodeValidation, message)
}

// Client returns a KindClient error.
func Client(code, message string) *Error {
	return New(KindClient, code, message)
}

// TooLarge returns a KindTooLarge error.
func TooLarge(code, message string) *Error {
	return New(KindTooLarge, code, message)
}

// Backend returns a KindBackend error around a cause.
func Backend(code, message string, cause error) *Error {
	return Wrap(KindBackend, code, message, cause)
}

// KindOf classifies err. Tagged errors win over Kinder implementations; nil has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	var k Kinder
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return KindInternal
}

// CodeOf returns the machine-readable code for err.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	switch KindOf(err) {
	case KindBackend:
		return CodeBackend
	case KindAuth:
		return CodeAuth
	case KindRateLimit:
		return CodeRateLimited
	case KindValidation:
		return CodeValidation
	default:
		return CodeInternal
	}
}

// MessageOf returns the human-readable message for err. Unclassified errors are not
// echoed to clients.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if KindOf(err) == KindInternal {
		return "internal server error"
	}
	return err.Error()
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
