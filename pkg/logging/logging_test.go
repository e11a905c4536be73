package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, pretty := range []bool{true, false} {
		logger, sync, err := New("debug", pretty)
		require.NoError(t, err)
		require.NotNil(t, logger)
		logger.WithField("pretty", pretty).Debug("logger ready")
		_ = sync()
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New("loud", false)
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().WithFields(map[string]any{"a": 1}).Info("dropped")
	})
}
