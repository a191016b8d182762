package platform

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/horizonengine/harness/internal/core/event"
)

// EventScript is a scripted sequence of window events, one entry per call to
// ProcessEvents.
type EventScript struct {
	CloseWhenDone bool         `yaml:"close_when_done"`
	Steps         []ScriptStep `yaml:"steps"`
}

// ScriptStep emits its events on the first of Frames polls (default 1).
type ScriptStep struct {
	Frames   int        `yaml:"frames"`
	Resize   *[2]uint32 `yaml:"resize"`
	Minimize bool       `yaml:"minimize"`
	Restore  bool       `yaml:"restore"`
	Close    bool       `yaml:"close"`
}

// LoadEventScript reads a YAML event script from disk.
func LoadEventScript(path string) (*EventScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event script %s: %w", path, err)
	}
	return ParseEventScript(data)
}

// ParseEventScript decodes a YAML event script.
func ParseEventScript(data []byte) (*EventScript, error) {
	var s EventScript
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse event script: %w", err)
	}
	for i, st := range s.Steps {
		if st.Frames < 0 {
			return nil, fmt.Errorf("event script step %d: negative frames %d", i, st.Frames)
		}
		if st.Minimize && st.Restore {
			return nil, fmt.Errorf("event script step %d: minimize and restore are exclusive", i)
		}
		if st.Resize != nil && (st.Resize[0] == 0 || st.Resize[1] == 0) {
			return nil, fmt.Errorf("event script step %d: zero resize extent", i)
		}
	}
	return &s, nil
}

// Len returns the number of polls the script covers.
func (s *EventScript) Len() int {
	n := 0
	for _, st := range s.Steps {
		n += st.frames()
	}
	return n
}

func (st ScriptStep) frames() int {
	if st.Frames == 0 {
		return 1
	}
	return st.Frames
}

// emit queues the step's events on bus in a fixed order.
func (st ScriptStep) emit(bus *event.Bus) {
	if st.Minimize {
		event.Emit(bus, event.WindowMinimized{})
	}
	if st.Restore {
		event.Emit(bus, event.WindowRestored{})
	}
	if st.Resize != nil {
		event.Emit(bus, event.WindowResized{Width: st.Resize[0], Height: st.Resize[1]})
	}
	if st.Close {
		event.Emit(bus, event.WindowCloseRequested{})
	}
}

// cursor walks a script one poll at a time.
type cursor struct {
	script *EventScript
	step   int
	frame  int
}

// next emits the events due at this poll. It reports false once the script
// is exhausted.
func (c *cursor) next(bus *event.Bus) bool {
	if c.script == nil || c.step >= len(c.script.Steps) {
		return false
	}
	st := c.script.Steps[c.step]
	if c.frame == 0 {
		st.emit(bus)
	}
	c.frame++
	if c.frame >= st.frames() {
		c.step++
		c.frame = 0
	}
	return true
}
