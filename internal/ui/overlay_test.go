package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameRate_RollingAverage(t *testing.T) {
	var f FrameRate
	assert.Equal(t, float32(0), f.FPS())

	for i := 0; i < 10; i++ {
		f.Add(1.0 / 60)
	}
	assert.InDelta(t, 60, f.FPS(), 0.01)

	// a full window of slower frames pushes the old samples out
	for i := 0; i < rateWindow; i++ {
		f.Add(1.0 / 30)
	}
	assert.InDelta(t, 30, f.FPS(), 0.01)
}

func TestOverlay_Placement(t *testing.T) {
	view := Rect{Pos: Vec2{0, 20}, Size: Vec2{1280, 700}}
	tests := []struct {
		corner int
		pos    Vec2
		pivot  Vec2
	}{
		{0, Vec2{10, 30}, Vec2{0, 0}},
		{1, Vec2{1270, 30}, Vec2{1, 0}},
		{2, Vec2{10, 710}, Vec2{0, 1}},
		{3, Vec2{1270, 710}, Vec2{1, 1}},
	}
	for _, tt := range tests {
		o := NewOverlay(tt.corner)
		opts := o.Placement(view)
		assert.True(t, opts.Anchored, "corner %d", tt.corner)
		assert.True(t, opts.NoMove)
		assert.Equal(t, tt.pos, opts.Pos, "corner %d", tt.corner)
		assert.Equal(t, tt.pivot, opts.Pivot, "corner %d", tt.corner)
		assert.InDelta(t, 0.35, opts.BgAlpha, 1e-6)
	}

	free := NewOverlay(-1).Placement(view)
	assert.False(t, free.Anchored)
	assert.False(t, free.NoMove)
}

func TestOverlay_Draw(t *testing.T) {
	o := NewOverlay(0)
	for i := 0; i < 5; i++ {
		o.Observe(0.004)
	}
	rec := NewRecorder(1280, 720)
	o.Draw(rec)

	assert.Equal(t, []string{"Horizon Engine", "FPS: 250.0 (4.00 ms/frame)"}, rec.Texts())
	kinds := make([]string, len(rec.Ops))
	for i, op := range rec.Ops {
		kinds[i] = op.Kind
	}
	assert.Equal(t, []string{"begin", "text", "separator", "text", "end"}, kinds)
}

func TestOverlay_HighFrameRateHasNoGrouping(t *testing.T) {
	o := NewOverlay(0)
	for i := 0; i < 10; i++ {
		o.Observe(0.0004)
	}
	assert.Equal(t, "FPS: 2500.0 (0.40 ms/frame)", o.frameLine())
}

func TestOverlay_NoSamples(t *testing.T) {
	assert.Equal(t, "FPS: 0.0 (0.00 ms/frame)", NewOverlay(0).frameLine())
}

func TestRecorder_NewFrame(t *testing.T) {
	rec := NewRecorder(10, 10)
	rec.Text("stale")
	rec.NewFrame(640, 480)
	assert.Empty(t, rec.Ops)
	assert.Equal(t, Vec2{640, 480}, rec.Viewport().Size)
}
