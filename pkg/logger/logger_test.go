package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	log, err := New("debug")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New("")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))

	_, err = New("chatty")
	require.Error(t, err)
}

func TestMust_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		Must(New("chatty"))
	})
}

func TestNamed_NilBase(t *testing.T) {
	log := Named(nil, "svc")
	require.NotNil(t, log)
	log.Info("discarded")
}
