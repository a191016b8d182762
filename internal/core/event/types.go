package event

// Window events delivered by a windowing backend's event pump.

type WindowResized struct {
	Width  uint32
	Height uint32
}

type WindowMinimized struct{}

type WindowRestored struct{}

type WindowCloseRequested struct{}
