package common

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the application error taxonomy. Callers match with
// errors.Is; the HTTP layer maps them onto status codes.
var (
	// ErrNotFound: a template or document id does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicateName: a template name collides with an existing one.
	ErrDuplicateName = errors.New("duplicate template name")
	// ErrModelUnavailable: the completion collaborator is unreachable or
	// returned an API-level error. Transient; callers may retry.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrMalformedModelOutput: the model responded, but not with parseable
	// JSON. Non-fatal; batch callers degrade to a placeholder field.
	ErrMalformedModelOutput = errors.New("malformed model output")
	// ErrMixedTemplates: an export selection spans more than one template.
	ErrMixedTemplates = errors.New("documents use different templates")
	// ErrTransportFailure: mailbox connect/login/select failed. Aborts the
	// current scan only.
	ErrTransportFailure = errors.New("mail transport failure")
	// ErrInvalidInput: request validation failure.
	ErrInvalidInput = errors.New("invalid input")
)

// WrapError annotates err with a message, preserving errors.Is matching.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
