// Package render defines the render backend contract used by the frame loop
// and selects the device all render resources are created on.
package render

// DeviceMask selects the physical devices a resource or operation is affine
// to. Bit i refers to physical device index i.
type DeviceMask uint32

const DeviceMaskAll DeviceMask = 0xffffffff

// MaskOf returns the mask with only device id set.
func MaskOf(id uint32) DeviceMask { return 1 << id }

// Has reports whether device id is in the mask.
func (m DeviceMask) Has(id uint32) bool { return id < 32 && m&MaskOf(id) != 0 }

// CreateFlags configure backend creation.
type CreateFlags uint32

const (
	FlagValidationLayers CreateFlags = 1 << iota
	FlagSurface
)

// SwapChain is an opaque backend handle.
type SwapChain uint64

// PhysicalDevice describes one enumerated GPU.
type PhysicalDevice struct {
	ID   uint32
	Name string
}

// Backend is the render backend. Methods are called from the main loop
// goroutine only; BeginFrame, EndFrame and PresentSwapChain may block.
type Backend interface {
	PhysicalDevices() []PhysicalDevice
	// CreateRenderDevices creates one logical device per id and returns the
	// mask of the primary one.
	CreateRenderDevices(ids []uint32) (DeviceMask, error)
	CreateSwapChain(mask DeviceMask, nativeWindow uint64) (SwapChain, error)
	// ResizeSwapChain resizes sc towards *width x *height and writes back the
	// extent the backend actually negotiated.
	ResizeSwapChain(sc SwapChain, width, height *uint32) error
	PresentSwapChain(sc SwapChain) error
	DestroySwapChain(sc SwapChain)
	BeginFrame() error
	EndFrame() error
	Destroy()
}
