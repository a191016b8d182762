package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/horizonengine/harness/internal/core/event"
)

const sampleScript = `
close_when_done: true
steps:
  - frames: 2
  - resize: [1920, 1080]
  - minimize: true
    frames: 2
  - restore: true
`

func newWindow(t *testing.T, script *EventScript, flags WindowFlags) *HeadlessWindow {
	t.Helper()
	b := NewHeadless(script, zap.NewNop())
	require.NoError(t, b.Init())
	t.Cleanup(b.Shutdown)
	w, err := b.CreateWindow(WindowConfig{Width: 1280, Height: 720, Title: "test", Flags: flags})
	require.NoError(t, err)
	return w.(*HeadlessWindow)
}

func TestParseEventScript(t *testing.T) {
	s, err := ParseEventScript([]byte(sampleScript))
	require.NoError(t, err)
	assert.True(t, s.CloseWhenDone)
	require.Len(t, s.Steps, 4)
	assert.Equal(t, &[2]uint32{1920, 1080}, s.Steps[1].Resize)
	assert.Equal(t, 6, s.Len())
}

func TestParseEventScript_Invalid(t *testing.T) {
	tests := map[string]string{
		"negative frames":    "steps:\n  - frames: -1\n",
		"minimize + restore": "steps:\n  - minimize: true\n    restore: true\n",
		"zero resize":        "steps:\n  - resize: [0, 10]\n",
		"not yaml":           "steps: [",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseEventScript([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestHeadlessWindow_ReplaysScript(t *testing.T) {
	s, err := ParseEventScript([]byte(sampleScript))
	require.NoError(t, err)
	w := newWindow(t, s, FlagResizable)

	type snap struct {
		state WindowState
		w, h  uint32
		close bool
	}
	var got []snap
	for i := 0; i < 7; i++ {
		w.ProcessEvents()
		got = append(got, snap{w.State(), w.Width(), w.Height(), w.ShouldClose()})
	}
	assert.Equal(t, []snap{
		{StateActive, 1280, 720, false},
		{StateActive, 1280, 720, false},
		{StateActive, 1920, 1080, false},
		{StateMinimized, 1920, 1080, false},
		{StateMinimized, 1920, 1080, false},
		{StateActive, 1920, 1080, false},
		{StateActive, 1920, 1080, true}, // exhausted + close_when_done
	}, got)
	assert.Equal(t, 7, w.Polls())
}

func TestHeadlessWindow_NonResizableIgnoresResize(t *testing.T) {
	w := newWindow(t, nil, 0)
	w.InjectResize(640, 480)
	w.ProcessEvents()
	assert.Equal(t, uint32(1280), w.Width())
	assert.Equal(t, uint32(720), w.Height())
}

func TestHeadlessWindow_InjectedEventsApplyOnNextPoll(t *testing.T) {
	w := newWindow(t, nil, FlagResizable)
	var resizes []event.WindowResized
	event.Subscribe(w.Events(), func(ev event.WindowResized) { resizes = append(resizes, ev) })

	w.InjectResize(800, 600)
	w.InjectClose()
	assert.False(t, w.ShouldClose())
	assert.Equal(t, uint32(1280), w.Width())

	w.ProcessEvents()
	assert.True(t, w.ShouldClose())
	assert.Equal(t, uint32(800), w.Width())
	assert.Equal(t, []event.WindowResized{{Width: 800, Height: 600}}, resizes)
}

func TestHeadlessWindow_NoScriptStaysOpen(t *testing.T) {
	w := newWindow(t, nil, FlagResizable)
	for i := 0; i < 100; i++ {
		w.ProcessEvents()
	}
	assert.False(t, w.ShouldClose())
	assert.Equal(t, StateActive, w.State())
}

func TestHeadless_Lifecycle(t *testing.T) {
	b := NewHeadless(nil, zap.NewNop())
	_, err := b.CreateWindow(WindowConfig{Width: 1, Height: 1})
	assert.ErrorIs(t, err, ErrBackendNotInitialized)

	require.NoError(t, b.Init())
	_, err = b.CreateWindow(WindowConfig{Width: 0, Height: 1})
	assert.Error(t, err)

	w1, err := b.CreateWindow(WindowConfig{Width: 1, Height: 1})
	require.NoError(t, err)
	w2, err := b.CreateWindow(WindowConfig{Width: 1, Height: 1})
	require.NoError(t, err)
	assert.NotEqual(t, w1.NativeHandle(), w2.NativeHandle())

	b.SetInputContext(w2)
	assert.Same(t, w2, b.InputContext())

	b.Shutdown()
	assert.True(t, w1.ShouldClose(), "shutdown closes open windows")
	assert.Nil(t, b.InputContext())
}
