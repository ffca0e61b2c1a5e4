package common

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuralError(t *testing.T) {
	tests := []struct {
		err      error
		name     string
		expected string
		cause    error
	}{
		{
			name:     "sheet, detail and cause",
			err:      NewStructuralError("Portfolios", "could not find portfolio name or portfolio id columns", ErrMissingColumns),
			expected: `structural error in worksheet "Portfolios": could not find portfolio name or portfolio id columns: required columns not found`,
			cause:    ErrMissingColumns,
		},
		{
			name:     "detail only",
			err:      NewStructuralError("", "could not find portfolios worksheet", ErrMissingWorksheet),
			expected: "structural error: could not find portfolios worksheet: required worksheet not found",
			cause:    ErrMissingWorksheet,
		},
		{
			name:     "no cause",
			err:      NewStructuralError("Sheet1", "", nil),
			expected: `structural error in worksheet "Sheet1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
			assert.ErrorIs(t, tt.err, ErrStructural)
			if tt.cause != nil {
				assert.ErrorIs(t, tt.err, tt.cause)
			}

			wrapped := fmt.Errorf("prepare: %w", tt.err)
			var se *StructuralError
			require.True(t, errors.As(wrapped, &se))
		})
	}
}

func TestUserError(t *testing.T) {
	err := NewUserError("Could not read bulk.xlsx", ErrMissingWorksheet)
	assert.Equal(t, "Could not read bulk.xlsx: required worksheet not found", err.Error())
	assert.ErrorIs(t, err, ErrMissingWorksheet)

	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestSetupLoggerTo(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	tests := []struct {
		format   string
		expected string
	}{
		{format: "json", expected: `"msg":"Failed to save"`},
		{format: "console", expected: `msg="Failed to save"`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, SetupLoggerTo(&buf, slog.LevelInfo, tt.format))

			LogError(errors.New("disk full"), "Failed to save", Fields{"path": "/tmp/out.xlsx"})
			slog.Debug("hidden")

			assert.Contains(t, buf.String(), tt.expected)
			assert.Contains(t, buf.String(), "disk full")
			assert.Contains(t, buf.String(), "/tmp/out.xlsx")
			assert.NotContains(t, buf.String(), "hidden")
		})
	}
}
