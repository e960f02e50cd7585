// internal/dmx/errors.go
package dmx

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned when more than MaxChannels levels are supplied
	ErrOutOfRange = errors.New("dmx frame supports at most 512 channels")

	// ErrPortRequired is returned when levels are submitted without a port path
	ErrPortRequired = errors.New("port path is required")

	// ErrControllerClosed is returned once the controller has been shut down
	ErrControllerClosed = errors.New("dmx controller is shut down")
)

// ValidationError reports a rejected level update. The frame is left unchanged.
type ValidationError struct {
	Count int
	Err   error
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Err, ErrOutOfRange) {
		return fmt.Sprintf("invalid levels: got %d values, %v", e.Count, e.Err)
	}
	return fmt.Sprintf("invalid request: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure reported by the serial transport
type TransportError struct {
	Op   string
	Port string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport %s on %s failed: %v", e.Op, e.Port, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
