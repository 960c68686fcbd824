// Package llm turns document text into structured field/value data via a
// completion collaborator.
package llm

import "context"

// Completer is the completion collaborator. Implementations request JSON
// mode and return the raw message content. Unreachable or API-level failures
// surface as ErrModelUnavailable.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
