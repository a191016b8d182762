package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSilent_Lifecycle(t *testing.T) {
	s := NewSilent(zap.NewNop())
	require.NoError(t, s.Init())
	assert.True(t, s.Running())
	assert.ErrorIs(t, s.Init(), ErrAlreadyRunning)
	s.Shutdown()
	assert.False(t, s.Running())
	require.NoError(t, s.Init())
}
