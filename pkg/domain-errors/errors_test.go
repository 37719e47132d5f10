package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "field is required")
	require.Error(t, err)
	assert.Equal(t, "field is required", err.Error())
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestWrap(t *testing.T) {
	t.Run("wraps the cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeInternal, "failed to look up client")

		assert.Equal(t, "failed to look up client: connection refused", err.Error())
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, CodeInternal, CodeOf(err))
	})

	t.Run("nil cause returns nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})
}

func TestCodeOf(t *testing.T) {
	t.Run("uncoded errors are internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	})

	t.Run("finds code through wrapping", func(t *testing.T) {
		inner := New(CodeNotFound, "client not found")
		outer := fmt.Errorf("verify: %w", inner)
		assert.Equal(t, CodeNotFound, CodeOf(outer))
	})
}

func TestHasCode(t *testing.T) {
	err := New(CodeConflict, "client already registered")
	assert.True(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
}
