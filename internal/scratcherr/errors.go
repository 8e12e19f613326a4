// Package scratcherr implements the error taxonomy of §7: every error kind a
// compile or a run can raise, and whether it is fatal or merely degrades the
// affected script.
package scratcherr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the taxonomy of errors the compile core can raise.
type Kind string

const (
	ParseShape     Kind = "ParseShapeError"
	UnknownOpcode  Kind = "UnknownOpcodeError"
	TypeViolation  Kind = "TypeViolationError"
	HelperFailure  Kind = "RuntimeHelperError"
	CloudWriteFail Kind = "CloudWriteError"
)

// BlockLocation pins an error to a block within a target's block graph.
type BlockLocation struct {
	TargetName string
	BlockID    string
	Opcode     string
}

func (l BlockLocation) String() string {
	if l.BlockID == "" {
		return l.TargetName
	}
	return fmt.Sprintf("%s:%s(%s)", l.TargetName, l.BlockID, l.Opcode)
}

// CompileError is returned by the IR generator and optimizer. Fatal errors
// prevent project start; non-fatal ones are logged and the offending block
// (or script) is skipped.
type CompileError struct {
	Kind     Kind
	Message  string
	Location BlockLocation
	Fatal    bool
	cause    error
}

func (e *CompileError) Error() string {
	if e.Location.BlockID == "" && e.Location.TargetName == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Location, e.Message)
}

func (e *CompileError) Unwrap() error { return e.cause }

// New builds a non-fatal CompileError.
func New(kind Kind, loc BlockLocation, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

// Fatal builds a CompileError that must abort project start.
func Fatal(kind Kind, loc BlockLocation, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc, Fatal: true}
}

// Wrap attaches scratcherr context to a lower-level error (e.g. a JSON decode
// failure surfaced while resolving a mutation), preserving its stack via
// github.com/pkg/errors so callers can still %+v it during diagnosis.
func Wrap(kind Kind, loc BlockLocation, cause error, msg string) *CompileError {
	return &CompileError{Kind: kind, Message: msg, Location: loc, cause: errors.Wrap(cause, msg)}
}

// HelperError is the structured status a block helper (§4.7) returns; the
// calling script proceeds or retires based on its documented contract, it is
// never escalated to a CompileError.
type HelperError struct {
	Op      string
	Message string
}

func (e *HelperError) Error() string { return fmt.Sprintf("helper %s: %s", e.Op, e.Message) }

// NewHelperError reports a non-fatal helper failure (§7 Runtime helper
// failure): logged by the caller, the script keeps running or retires per
// the helper's own contract.
func NewHelperError(op, format string, args ...interface{}) *HelperError {
	return &HelperError{Op: op, Message: fmt.Sprintf(format, args...)}
}


