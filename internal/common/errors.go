// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Precondition errors surfaced to callers. These are never substituted
	// with defaults; the caller decides how to recover.
	ErrNoBaseline      = errors.New("no baseline established for user")
	ErrMissingCategory = errors.New("transaction is missing a category")
	ErrTooFewClasses   = errors.New("training data must contain at least 2 distinct categories")
	ErrTooFewSamples   = errors.New("stratified split requires at least 2 samples per category")
	ErrNotTrained      = errors.New("classifier has not been trained")
	ErrNoTransactions  = errors.New("no transactions to process")

	// Persistence errors.
	ErrModelCorrupted = errors.New("model artifact corrupted")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
