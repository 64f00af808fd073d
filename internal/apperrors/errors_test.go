package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("loading application: %w", NotFound("no doctor profile"))

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsPermission(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "date is required", MessageOf(Validation("%s is required", "date")))
	assert.Equal(t, "boom", MessageOf(errors.New("boom")))
	assert.Equal(t, "", MessageOf(nil))
}

func TestNetworkUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Network("request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsNetwork(err))
	assert.Contains(t, err.Error(), "connection refused")
}
