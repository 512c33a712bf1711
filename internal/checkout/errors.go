package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart aborts an attempt before anything is sent.
	ErrEmptyCart = errors.New("checkout: cart is empty")

	// ErrSubmitInProgress rejects a second submit for a cart that is already
	// being submitted.
	ErrSubmitInProgress = errors.New("checkout: submission already in progress")

	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("checkout: order transport failed")
)

// TransportError wraps the cause of a failed POST to the order endpoint.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("checkout: order transport failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
