package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIDStableAcrossLoggers(t *testing.T) {
	first, err := NewLogger("server")
	require.NoError(t, err)
	defer first.Close()

	second, err := NewLogger("client")
	require.NoError(t, err)
	defer second.Close()

	assert.NotEmpty(t, first.RunID())
	assert.Equal(t, first.RunID(), second.RunID(), "one run ID per process")
	assert.Equal(t, first.LogPath(), second.LogPath(), "components share the run log file")
}

func TestLoggerWritesAllLevels(t *testing.T) {
	logger, err := NewLogger("test")
	require.NoError(t, err)
	defer logger.Close()

	logger.Debugf("debug %d", 1)
	logger.Infof("info %s", "x")
	logger.Warnf("warn")
	logger.Errorf("error: %v", assert.AnError)
}

func TestDiscardLogger(t *testing.T) {
	logger := Discard()

	logger.Debugf("dropped")
	logger.Infof("dropped")
	logger.Warnf("dropped")
	logger.Errorf("dropped")

	assert.NotEmpty(t, logger.RunID())
	assert.Empty(t, logger.LogPath())
	assert.NoError(t, logger.Close())
}

func TestCloseIsIdempotent(t *testing.T) {
	logger, err := NewLogger("test")
	require.NoError(t, err)

	require.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}
