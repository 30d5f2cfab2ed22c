package flow

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/muurk/appinstall/internal/manifest"
)

// ErrNoOperations is the failure reported when a controller has no
// Operations collaborator
var ErrNoOperations = errors.New("no operations configured")

// UnknownStateError reports a controller holding a value outside the defined
// states. It signals a programming defect and is never recovered from.
type UnknownStateError struct {
	State State
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("unknown state: %d", int(e.State))
}

// InvalidActivationError describes an activation received while the flow
// cannot accept one. It is delivered to the Notifier, never returned.
type InvalidActivationError struct {
	State State
}

func (e *InvalidActivationError) Error() string {
	return fmt.Sprintf("invalid installation state: %s", e.State)
}

// Op identifies an asynchronous operation of the flow
type Op string

const (
	OpManifest Op = "manifest"
	OpInstall  Op = "install"
)

// ErrorType represents the category of an operation failure
type ErrorType int

const (
	// ErrTypeManifest indicates the manifest could not be retrieved
	ErrTypeManifest ErrorType = iota
	// ErrTypeInvalidManifest indicates the manifest was retrieved but is unusable
	ErrTypeInvalidManifest
	// ErrTypeInstall indicates the installation itself failed
	ErrTypeInstall
	// ErrTypeTimeout indicates the operation exceeded its deadline
	ErrTypeTimeout
	// ErrTypeNetwork indicates a network-level failure
	ErrTypeNetwork
	// ErrTypeUnknown indicates an unclassified failure
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeManifest:
		return "Manifest Error"
	case ErrTypeInvalidManifest:
		return "Invalid Manifest"
	case ErrTypeInstall:
		return "Install Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// OperationError records why the flow entered StateFailed
type OperationError struct {
	Op   Op
	Type ErrorType
	Err  error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Op, e.Type, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *OperationError) Unwrap() error {
	return e.Err
}

// newOperationError classifies err for the given operation
func newOperationError(op Op, err error) *OperationError {
	if err == nil {
		err = errors.New("operation failed without an error")
	}
	return &OperationError{Op: op, Type: classify(op, err), Err: err}
}

func classify(op Op, err error) ErrorType {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTypeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTypeTimeout
		}
		return ErrTypeNetwork
	}
	if errors.Is(err, manifest.ErrInvalid) {
		return ErrTypeInvalidManifest
	}
	switch op {
	case OpManifest:
		return ErrTypeManifest
	case OpInstall:
		return ErrTypeInstall
	default:
		return ErrTypeUnknown
	}
}

// IsUnknownState checks if an error is an unknown-state error
func IsUnknownState(err error) bool {
	var target *UnknownStateError
	return errors.As(err, &target)
}

// IsTimeout checks if an error is an operation timeout
func IsTimeout(err error) bool {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type == ErrTypeTimeout
	}
	return false
}

// ShortMessage returns a concise, user-facing description of a failure
func ShortMessage(err error) string {
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		return err.Error()
	}

	switch opErr.Type {
	case ErrTypeManifest:
		return "Could not load the app manifest"
	case ErrTypeInvalidManifest:
		return "The app manifest is not installable"
	case ErrTypeInstall:
		return "Installation failed"
	case ErrTypeTimeout:
		return fmt.Sprintf("The %s step timed out", opErr.Op)
	case ErrTypeNetwork:
		return "Network error - check connection"
	default:
		return opErr.Error()
	}
}
