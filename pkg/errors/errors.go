package errors

import (
	"fmt"
)

// ParseError reports a package spec that does not match the name[comparator version] grammar.
type ParseError struct {
	Spec    string
	Message string
}

// NewParseError constructs a ParseError.
func NewParseError(spec, message string) error {
	return &ParseError{Spec: spec, Message: message}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("parse error: package spec %q: %s", e.Spec, e.Message)
}

// UnparseableVersionError reports a version string outside the supported versioning grammar.
type UnparseableVersionError struct {
	Version string
}

// NewUnparseableVersionError constructs an UnparseableVersionError.
func NewUnparseableVersionError(version string) error {
	return &UnparseableVersionError{Version: version}
}

func (e *UnparseableVersionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("unparseable version %q", e.Version)
}

// ConfigError captures malformed requirement declarations or settings.
type ConfigError struct {
	Path    string
	Field   string
	Message string
	Err     error
}

// NewConfigError constructs a ConfigError.
func NewConfigError(field, message string, err error) error {
	return &ConfigError{Field: field, Message: message, Err: err}
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	prefix := "config error"
	if e.Path != "" {
		prefix = fmt.Sprintf("config error: %s", e.Path)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ToolUnavailableError indicates the package manager is absent and could not be bootstrapped.
type ToolUnavailableError struct {
	Interpreter string
	Reason      string
	Err         error
}

// NewToolUnavailableError constructs a ToolUnavailableError.
func NewToolUnavailableError(interpreter, reason string, err error) error {
	return &ToolUnavailableError{Interpreter: interpreter, Reason: reason, Err: err}
}

func (e *ToolUnavailableError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("pip unavailable for %s: %s: %v", e.Interpreter, e.Reason, e.Err)
	}
	return fmt.Sprintf("pip unavailable for %s: %s", e.Interpreter, e.Reason)
}

// Unwrap exposes the underlying error.
func (e *ToolUnavailableError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ProbeError represents a failed listing of installed packages.
type ProbeError struct {
	Output string
	Err    error
}

// NewProbeError constructs a ProbeError.
func NewProbeError(output string, err error) error {
	return &ProbeError{Output: output, Err: err}
}

func (e *ProbeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Output != "" {
		return fmt.Sprintf("listing installed packages failed: %v: %s", e.Err, e.Output)
	}
	return fmt.Sprintf("listing installed packages failed: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *ProbeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CheckerFailure records a custom checker that errored or panicked. It is never
// returned to callers of the evaluator; it is logged and the requirement counted missing.
type CheckerFailure struct {
	Spec string
	Err  error
}

// NewCheckerFailure constructs a CheckerFailure.
func NewCheckerFailure(spec string, err error) error {
	return &CheckerFailure{Spec: spec, Err: err}
}

func (e *CheckerFailure) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("checker for %s failed: %v", e.Spec, e.Err)
}

// Unwrap exposes the underlying error.
func (e *CheckerFailure) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InstallFailure is the per-package outcome of a pip install that could not be
// launched or exited non-zero.
type InstallFailure struct {
	Spec     string
	ExitCode int
	Err      error
}

// NewInstallFailure constructs an InstallFailure.
func NewInstallFailure(spec string, exitCode int, err error) error {
	return &InstallFailure{Spec: spec, ExitCode: exitCode, Err: err}
}

func (e *InstallFailure) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("installing %s failed (exit %d): %v", e.Spec, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("installing %s failed (exit %d)", e.Spec, e.ExitCode)
}

// Unwrap exposes the underlying error.
func (e *InstallFailure) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
