// Package domain provides shared domain types and the error taxonomy used
// across all modules.
package domain

import (
	"errors"
	"fmt"
)

// The error taxonomy distinguishes four failure classes:
//
//   - ValidationError: malformed or missing input, rejected before any work
//   - BusinessRuleError: well-formed request that violates a domain rule
//     (insufficient funds/quantity, price mismatch, duplicate registration)
//   - NotFoundError: a referenced entity does not exist
//   - ExecutionError: an infrastructure failure (persistence, external API)
//     wrapped so callers never see raw driver errors
//
// Validation and business-rule failures are reported synchronously to the
// caller; nothing is retried automatically.

// ValidationError indicates malformed or missing input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf creates a ValidationError with a formatted message.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// BusinessRuleError indicates a request that violates a domain rule.
type BusinessRuleError struct {
	Msg string
}

func (e *BusinessRuleError) Error() string { return e.Msg }

// BusinessRulef creates a BusinessRuleError with a formatted message.
func BusinessRulef(format string, args ...interface{}) error {
	return &BusinessRuleError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates a missing entity.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// NotFoundf creates a NotFoundError with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// ExecutionError wraps an infrastructure failure (persistence, external API).
type ExecutionError struct {
	Op  string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Executionf wraps err as an ExecutionError for the named operation.
func Executionf(op string, err error) error {
	return &ExecutionError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsBusinessRule reports whether err is a BusinessRuleError.
func IsBusinessRule(err error) bool {
	var be *BusinessRuleError
	return errors.As(err, &be)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsExecution reports whether err is an ExecutionError.
func IsExecution(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}

// Innermost returns the taxonomy error wrapped inside err, so transaction
// wrappers and retry layers do not hide the failure classification. When err
// wraps no taxonomy error it is returned unchanged.
func Innermost(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	var be *BusinessRuleError
	if errors.As(err, &be) {
		return be
	}
	var ne *NotFoundError
	if errors.As(err, &ne) {
		return ne
	}
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee
	}
	return err
}
