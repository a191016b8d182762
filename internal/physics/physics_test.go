package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHeadless_Step(t *testing.T) {
	h := NewHeadless(zap.NewNop())
	_, err := h.Add(Body{})
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, h.Step(1), ErrNotInitialized)

	require.NoError(t, h.Init())
	i, err := h.Add(Body{X: 1, VX: 2, VY: -1})
	require.NoError(t, err)

	require.NoError(t, h.Step(0.5))
	require.NoError(t, h.Step(0.5))
	b, ok := h.Body(i)
	require.True(t, ok)
	assert.InDelta(t, 3.0, b.X, 1e-6)
	assert.InDelta(t, -1.0, b.Y, 1e-6)
	assert.Equal(t, uint64(2), h.Steps())

	h.Shutdown()
	_, ok = h.Body(i)
	assert.False(t, ok)
}
