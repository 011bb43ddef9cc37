package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsSentinelUntouched(t *testing.T) {
	clone := Clone(ErrStateConflict, "exam already graded")

	assert.Equal(t, "exam already graded", clone.Message)
	assert.Equal(t, http.StatusConflict, clone.Status)
	assert.Equal(t, "operation not allowed in current state", ErrStateConflict.Message)
	assert.Equal(t, ErrNotFound.Message, Clone(ErrNotFound, "").Message)
	assert.Nil(t, Clone(nil, "x"))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("create enrollment: %w", Clone(ErrValidation, "rank must be between 1 and 3"))
	e := FromError(wrapped)
	require.NotNil(t, e)
	assert.Equal(t, ErrValidation.Code, e.Code)

	cause := errors.New("connection reset")
	e = FromError(cause)
	assert.Equal(t, ErrInternal.Code, e.Code)
	assert.Equal(t, http.StatusInternalServerError, e.Status)
	assert.ErrorIs(t, e, cause)
	assert.Equal(t, "internal server error: connection reset", e.Error())
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("reserve: %w", Clone(ErrNoSeatsAvailable, "no QUOTA seats"))
	assert.True(t, HasCode(err, ErrNoSeatsAvailable.Code))
	assert.False(t, HasCode(err, ErrStateConflict.Code))
	assert.False(t, HasCode(errors.New("plain"), ErrInternal.Code))
	assert.False(t, HasCode(nil, ErrInternal.Code))
}
