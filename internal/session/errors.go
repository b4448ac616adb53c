package session

import (
	"errors"
	"fmt"

	"taletable/internal/llm/client"
)

var (
	// ErrSessionBusy is returned when a turn is started while another one is in flight.
	ErrSessionBusy = errors.New("session: a turn is already in flight")
	// ErrNoActiveTurn is returned by Cancel when nothing can be cancelled.
	ErrNoActiveTurn = errors.New("session: no active turn")
	// ErrCancelled marks a user-initiated abort. It is not a failure.
	ErrCancelled = errors.New("session: turn cancelled")
)

// ProviderError is a remote or network failure during a call.
type ProviderError struct {
	Kind    client.ErrorKind
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("provider %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("provider %s: %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func newProviderError(err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProviderError{Kind: client.Classify(err), Message: err.Error(), Err: err}
}

func emptyResponseError() *ProviderError {
	return &ProviderError{
		Kind:    client.KindEmptyResponse,
		Message: "the model returned no text, the response may have been blocked",
	}
}
