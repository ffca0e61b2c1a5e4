// Package storage persists an audit trail of optimizer runs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/portfolio-optimizer/internal/engine"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateResult ensures a run result carries a run context.
func validateResult(result *engine.RunResult) error {
	if result == nil || result.Context == nil {
		return fmt.Errorf("%w: run result", ErrNilParameter)
	}
	return validateString(result.Context.ID, "run id")
}
