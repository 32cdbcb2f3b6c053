// Package kernelerr provides typed error handling and fatal-halt reporting
// for the grasskernel core.
//
// The kernel has almost no concept of a recoverable error: resource
// exhaustion, invariant violations, unknown traps and directed-IPC misses
// are all fatal by design (see spec.md §7). This package gives those
// conditions a typed shape so tests can assert on *which* invariant broke,
// while still funneling every one of them through Halt.
package kernelerr

import (
	"errors"
	"fmt"
)

// Kind classifies a kernel error.
type Kind int

const (
	// KindOOM indicates the heap or a queue could not satisfy an allocation.
	KindOOM Kind = iota
	// KindInvariant indicates a structural invariant was violated.
	KindInvariant
	// KindUnknownTrap indicates an unrecognized interrupt or exception id.
	KindUnknownTrap
	// KindDirectedIPCMiss indicates a send targeted a nonexistent PID.
	KindDirectedIPCMiss
	// KindNotFound indicates a lookup (e.g. proc_pcb_find) failed.
	KindNotFound
	// KindInternal indicates any other internal failure.
	KindInternal
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindOOM:
		return "out of memory"
	case KindInvariant:
		return "invariant violation"
	case KindUnknownTrap:
		return "unknown trap"
	case KindDirectedIPCMiss:
		return "directed ipc miss"
	case KindNotFound:
		return "not found"
	case KindInternal:
		return "internal error"
	default:
		return "unknown error"
	}
}

// KernelError is a fatal (or at minimum fatal-by-policy) kernel condition.
type KernelError struct {
	// Op is the operation that detected the failure (e.g. "proc_free").
	Op string
	// Kind classifies the error.
	Kind Kind
	// Detail is additional free-form context (e.g. the offending pid).
	Detail string
	// Err is the wrapped underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *KernelError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Op
	if e.Detail != "" {
		msg += ": " + e.Detail
	} else {
		msg += ": " + e.Kind.String()
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error.
func (e *KernelError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is a *KernelError of the same Kind.
func (e *KernelError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	t, ok := target.(*KernelError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates a KernelError with no wrapped cause.
func New(kind Kind, op, detail string) *KernelError {
	return &KernelError{Op: op, Kind: kind, Detail: detail}
}

// Wrap wraps err with a kind and operation.
func Wrap(err error, kind Kind, op string) *KernelError {
	return &KernelError{Op: op, Kind: kind, Err: err}
}

// WrapWithDetail wraps err with a kind, operation, and extra detail.
func WrapWithDetail(err error, kind Kind, op, detail string) *KernelError {
	return &KernelError{Op: op, Kind: kind, Detail: detail, Err: err}
}

// IsKind reports whether err is a KernelError of the given kind.
func IsKind(err error, kind Kind) bool {
	var kerr *KernelError
	if errors.As(err, &kerr) {
		return kerr.Kind == kind
	}
	return false
}

// GetKind returns the kind of err if it is a KernelError.
func GetKind(err error) (Kind, bool) {
	var kerr *KernelError
	if errors.As(err, &kerr) {
		return kerr.Kind, true
	}
	return 0, false
}

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// OnFatal is invoked by Halt after logging. Tests rely on the default
// panic so a FATAL kernel condition can be asserted on (via
// assert.Panics) without killing the test binary; production wiring
// (cmd.Execute) sets it to os.Exit(1) instead, since a library
// constructor like kernel.New should never call os.Exit itself.
var OnFatal func(err error) = func(err error) { panic(err) }

// Halt reports a fatal kernel condition. Per spec.md §7 every taxonomy
// entry (resource exhaustion, invariant violation, unknown trap, directed
// IPC miss) bubbles here: there is no unwinding, no recovery.
func Halt(err error) {
	halt(err)
	OnFatal(err)
}
