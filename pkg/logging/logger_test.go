package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	local, err := New("local", "")
	require.NoError(t, err)
	assert.True(t, local.Core().Enabled(zapcore.DebugLevel))

	prod, err := New("production", "")
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, prod.Core().Enabled(zapcore.InfoLevel))

	warn, err := New("production", "warn")
	require.NoError(t, err)
	assert.False(t, warn.Core().Enabled(zapcore.InfoLevel))

	_, err = New("local", "loud")
	assert.Error(t, err)
}
