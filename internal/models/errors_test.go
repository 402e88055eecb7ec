package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   func(error) bool
		code string
	}{
		{"not found", NewNotFoundError("Pane", "Ops"), IsNotFound, CodeNotFound},
		{"programming", NewProgrammingError("trying to remove invalid home %q", "x"), IsProgrammingError, CodeProgrammingError},
		{"conflict", NewConflictError("Dashboard \"Ops\" already exists"), IsConflict, CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)
			assert.True(t, tt.is(wrapped))
			assert.Equal(t, tt.code, CodeOf(wrapped))
		})
	}
}

func TestInternalErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal server error: connection reset", err.Error())
	assert.Equal(t, "", CodeOf(cause))
}
