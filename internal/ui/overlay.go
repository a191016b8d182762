package ui

import "fmt"

const (
	overlayPadding = 10
	overlayAlpha   = 0.35
	rateWindow     = 120
)

// FrameRate keeps a rolling average over the last 120 frame deltas.
type FrameRate struct {
	samples [rateWindow]float32
	next    int
	count   int
	sum     float32
}

// Add records one frame delta in seconds.
func (f *FrameRate) Add(dt float32) {
	if f.count == rateWindow {
		f.sum -= f.samples[f.next]
	} else {
		f.count++
	}
	f.samples[f.next] = dt
	f.sum += dt
	f.next = (f.next + 1) % rateWindow
}

// FPS returns frames per second over the window, or 0 before any sample.
func (f *FrameRate) FPS() float32 {
	if f.count == 0 || f.sum <= 0 {
		return 0
	}
	return float32(f.count) / f.sum
}

// Overlay is the corner-anchored diagnostic panel.
type Overlay struct {
	// Corner: 0 top-left, 1 top-right, 2 bottom-left, 3 bottom-right, -1 free.
	Corner int
	Title  string
	rate   FrameRate
}

func NewOverlay(corner int) *Overlay {
	return &Overlay{
		Corner: corner,
		Title:  "Horizon Engine",
	}
}

// Observe feeds a frame delta into the rate estimate.
func (o *Overlay) Observe(dt float32) { o.rate.Add(dt) }

// FPS returns the current rolling frame rate.
func (o *Overlay) FPS() float32 { return o.rate.FPS() }

// Placement returns the panel options for the configured corner.
func (o *Overlay) Placement(view Rect) PanelOptions {
	opts := PanelOptions{BgAlpha: overlayAlpha}
	if o.Corner == -1 {
		return opts
	}
	right, bottom := o.Corner&1 != 0, o.Corner&2 != 0
	opts.Anchored = true
	opts.NoMove = true
	if right {
		opts.Pos.X = view.Pos.X + view.Size.X - overlayPadding
		opts.Pivot.X = 1
	} else {
		opts.Pos.X = view.Pos.X + overlayPadding
	}
	if bottom {
		opts.Pos.Y = view.Pos.Y + view.Size.Y - overlayPadding
		opts.Pivot.Y = 1
	} else {
		opts.Pos.Y = view.Pos.Y + overlayPadding
	}
	return opts
}

// Draw emits the overlay panel onto c.
func (o *Overlay) Draw(c Canvas) {
	if c.Begin("Overlay", o.Placement(c.Viewport())) {
		c.Text(o.Title)
		c.Separator()
		c.Text(o.frameLine())
	}
	c.End()
}

func (o *Overlay) frameLine() string {
	fps := o.rate.FPS()
	var ms float32
	if fps > 0 {
		ms = 1000 / fps
	}
	return fmt.Sprintf("FPS: %.1f (%.2f ms/frame)", fps, ms)
}
