package engine

import (
	"errors"
	"fmt"
)

// Kind classifies a step or plan failure. The kind decides the engine's
// reaction: transient failures may be retried, permission failures fall
// back to documented alternatives, configuration failures abort before
// any action runs, precondition failures are final.
type Kind int

const (
	// KindPrecondition means a required external tool or artifact is
	// missing. Fatal for the step, never retried.
	KindPrecondition Kind = iota
	// KindTransient means a network or API failure that may succeed on
	// retry.
	KindTransient
	// KindPermission means a privileged action was denied. Triggers the
	// step's documented fallback; not fatal to the whole run.
	KindPermission
	// KindConfig means the plan itself is invalid (cycle, unknown step
	// id). Detected during validation, before execution starts.
	KindConfig
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindTransient:
		return "transient"
	case KindPermission:
		return "permission"
	case KindConfig:
		return "configuration"
	default:
		return "unknown"
	}
}

// Error is a classified provisioning error. Remedy, when set, is the exact
// manual command the operator can run instead.
type Error struct {
	Kind   Kind
	Op     string // operation that failed, e.g. "apt-get install zsh"
	Msg    string
	Remedy string
	Err    error
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	msg := e.Msg
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewPreconditionError reports a missing required external tool.
func NewPreconditionError(op, msg string) *Error {
	return &Error{Kind: KindPrecondition, Op: op, Msg: msg}
}

// NewTransientError reports a retryable network or API failure.
func NewTransientError(op, msg string, err error) *Error {
	return &Error{Kind: KindTransient, Op: op, Msg: msg, Err: err}
}

// NewPermissionError reports a denied privileged action.
func NewPermissionError(op, msg, remedy string) *Error {
	return &Error{Kind: KindPermission, Op: op, Msg: msg, Remedy: remedy}
}

// NewConfigError reports an invalid plan.
func NewConfigError(msg string, err error) *Error {
	return &Error{Kind: KindConfig, Msg: msg, Err: err}
}

// kindOf extracts the Kind from err, or -1 when err is unclassified.
func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Kind(-1)
}

// IsTransient reports whether err is classified as transient.
func IsTransient(err error) bool {
	return kindOf(err) == KindTransient
}

// IsPermission reports whether err is classified as a permission failure.
func IsPermission(err error) bool {
	return kindOf(err) == KindPermission
}

// IsPrecondition reports whether err is classified as a missing precondition.
func IsPrecondition(err error) bool {
	return kindOf(err) == KindPrecondition
}

// IsConfig reports whether err is a plan configuration error.
func IsConfig(err error) bool {
	return kindOf(err) == KindConfig || errors.Is(err, ErrCyclicDependency) ||
		errors.Is(err, ErrMissingDep) || errors.Is(err, ErrDuplicateStep) ||
		errors.Is(err, ErrUnknownStep)
}

// RemedyOf returns the manual fallback command attached to err, or "".
func RemedyOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Remedy
	}
	return ""
}
