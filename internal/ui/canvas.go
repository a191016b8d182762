// Package ui is the immediate-mode drawing surface handed to applications
// and the diagnostic overlay drawn on top of it.
package ui

// Vec2 is a screen-space point or size in pixels.
type Vec2 struct {
	X, Y float32
}

// Rect is a viewport work area.
type Rect struct {
	Pos  Vec2
	Size Vec2
}

// PanelOptions place a panel for the current frame.
type PanelOptions struct {
	Anchored bool // Pos/Pivot are applied; otherwise the panel floats
	Pos      Vec2
	Pivot    Vec2 // 0..1 fraction of the panel's own size
	BgAlpha  float32
	NoMove   bool
}

// Canvas is the immediate-mode UI surface for one frame.
type Canvas interface {
	Viewport() Rect
	Begin(title string, opts PanelOptions) bool
	Text(s string)
	Separator()
	End()
}

// Layer is a Canvas that is restarted at the beginning of every frame.
type Layer interface {
	Canvas
	NewFrame(width, height float32)
}

// Op is one recorded canvas call.
type Op struct {
	Kind  string // "begin", "text", "separator", "end"
	Title string
	Text  string
	Opts  PanelOptions
}

// Recorder is a Canvas that records calls, used by headless runs.
type Recorder struct {
	View Rect
	Ops  []Op
}

func NewRecorder(width, height float32) *Recorder {
	return &Recorder{View: Rect{Size: Vec2{width, height}}}
}

// NewFrame drops recorded ops and resizes the viewport.
func (r *Recorder) NewFrame(width, height float32) {
	r.View = Rect{Size: Vec2{width, height}}
	r.Ops = r.Ops[:0]
}

func (r *Recorder) Viewport() Rect { return r.View }

func (r *Recorder) Begin(title string, opts PanelOptions) bool {
	r.Ops = append(r.Ops, Op{Kind: "begin", Title: title, Opts: opts})
	return true
}

func (r *Recorder) Text(s string) { r.Ops = append(r.Ops, Op{Kind: "text", Text: s}) }
func (r *Recorder) Separator()    { r.Ops = append(r.Ops, Op{Kind: "separator"}) }
func (r *Recorder) End()          { r.Ops = append(r.Ops, Op{Kind: "end"}) }

// Texts returns the recorded text lines in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == "text" {
			out = append(out, op.Text)
		}
	}
	return out
}
