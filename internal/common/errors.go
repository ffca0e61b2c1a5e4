// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Structural errors abort a run before any row is touched.
	ErrStructural        = errors.New("structural error")
	ErrMissingWorksheet  = errors.New("required worksheet not found")
	ErrMissingColumns    = errors.New("required columns not found")
	ErrDuplicateGrouping = errors.New("duplicate grouping for product tier")

	// Assignment errors.
	ErrUnknownProduct = errors.New("unknown product")
	ErrNoSelection    = errors.New("no campaigns selected")

	// Output errors.
	ErrNothingToWrite = errors.New("no campaigns were changed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// StructuralError reports a document that lacks a required worksheet or column.
type StructuralError struct {
	Err    error
	Sheet  string
	Detail string
}

func (e *StructuralError) Error() string {
	msg := "structural error"
	if e.Sheet != "" {
		msg = fmt.Sprintf("%s in worksheet %q", msg, e.Sheet)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both ErrStructural and the specific cause to errors.Is.
func (e *StructuralError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStructural}
	}
	return []error{ErrStructural, e.Err}
}

// NewStructuralError creates a structural error for a worksheet.
func NewStructuralError(sheet, detail string, err error) error {
	return &StructuralError{Sheet: sheet, Detail: detail, Err: err}
}

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
