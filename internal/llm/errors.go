package llm

import (
	"fmt"

	"github.com/jonathan/resume-scorer/internal/apperr"
)

// BackendError is returned for every failed chat call: transport errors, timeouts,
// non-success statuses and replies without usable content.
type BackendError struct {
	Provider   Provider
	Model      string
	StatusCode int
	Message    string
	Cause      error
}

func (e *BackendError) Error() string {
	msg := fmt.Sprintf("%s chat failed (model %s)", e.Provider, e.Model)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// ErrorKind classifies every BackendError as a backend failure.
func (e *BackendError) ErrorKind() apperr.Kind {
	return apperr.KindBackend
}

func newBackendError(p Provider, model string, status int, msg string, cause error) *BackendError {
	return &BackendError{Provider: p, Model: model, StatusCode: status, Message: msg, Cause: cause}
}
