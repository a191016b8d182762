package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversOnNextPump(t *testing.T) {
	b := NewBus()
	var got []WindowResized
	Subscribe(b, func(ev WindowResized) { got = append(got, ev) })

	Emit(b, WindowResized{Width: 800, Height: 600})
	assert.Empty(t, got, "emit must not dispatch synchronously")
	assert.Equal(t, 1, b.Pending())

	assert.Equal(t, 1, b.Pump())
	assert.Equal(t, []WindowResized{{800, 600}}, got)

	assert.Equal(t, 0, b.Pump(), "events are delivered once")
	assert.Len(t, got, 1)
}

func TestBus_PreservesEmissionOrderAcrossTypes(t *testing.T) {
	b := NewBus()
	var trace []string
	Subscribe(b, func(WindowMinimized) { trace = append(trace, "min") })
	Subscribe(b, func(WindowRestored) { trace = append(trace, "restore") })
	Subscribe(b, func(ev WindowResized) { trace = append(trace, "resize") })

	Emit(b, WindowMinimized{})
	Emit(b, WindowRestored{})
	Emit(b, WindowResized{Width: 1, Height: 1})
	Emit(b, WindowMinimized{})
	b.Pump()

	assert.Equal(t, []string{"min", "restore", "resize", "min"}, trace)
}

func TestBus_EmitDuringDispatchDefersToNextPump(t *testing.T) {
	b := NewBus()
	closes := 0
	Subscribe(b, func(WindowMinimized) { Emit(b, WindowCloseRequested{}) })
	Subscribe(b, func(WindowCloseRequested) { closes++ })

	Emit(b, WindowMinimized{})
	b.Pump()
	assert.Equal(t, 0, closes)
	b.Pump()
	assert.Equal(t, 1, closes)
}

func TestBus_NoSubscribers(t *testing.T) {
	b := NewBus()
	Emit(b, WindowCloseRequested{})
	assert.Equal(t, 1, b.Pump())
}
