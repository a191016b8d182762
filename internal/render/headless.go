package render

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrUnknownSwapChain = errors.New("unknown swap chain")
	ErrFrameState       = errors.New("frame begin/end mismatch")
)

// HeadlessOptions configure a Headless backend.
type HeadlessOptions struct {
	Flags       CreateFlags
	DeviceCount int
	// MaxWidth and MaxHeight clamp swap chain extents; zero disables clamping.
	MaxWidth  uint32
	MaxHeight uint32
}

// Headless is a render backend that performs no GPU work. It tracks swap
// chains and frame state with the same rules a real backend enforces and
// counts every call it receives.
type Headless struct {
	mu         sync.Mutex
	opts       HeadlessOptions
	devices    []PhysicalDevice
	created    DeviceMask
	swapChains map[SwapChain]*swapChainState
	nextSC     SwapChain
	inFrame    bool
	destroyed  bool
	stats      HeadlessStats
	log        *zap.Logger

	// Fault injection for tests.
	FailDevices   error
	FailSwapChain error
	FailPresent   error
}

type swapChainState struct {
	mask          DeviceMask
	width, height uint32
}

// HeadlessStats counts backend calls.
type HeadlessStats struct {
	Resizes      int
	Presents     int
	FramesBegun  int
	FramesEnded  int
	SwapChains   int
	DeviceCreate int
}

// CreateHeadless creates the backend. It corresponds to the backend creation
// entry point and is paired with Destroy.
func CreateHeadless(opts HeadlessOptions, log *zap.Logger) *Headless {
	if opts.DeviceCount < 0 {
		opts.DeviceCount = 0
	}
	devices := make([]PhysicalDevice, opts.DeviceCount)
	for i := range devices {
		devices[i] = PhysicalDevice{ID: uint32(i), Name: fmt.Sprintf("Headless GPU %d", i)}
	}
	log.Info("render backend created",
		zap.Bool("validation_layers", opts.Flags&FlagValidationLayers != 0),
		zap.Bool("surface", opts.Flags&FlagSurface != 0),
		zap.Int("devices", len(devices)))
	return &Headless{
		opts:       opts,
		devices:    devices,
		swapChains: make(map[SwapChain]*swapChainState),
		log:        log,
	}
}

func (h *Headless) PhysicalDevices() []PhysicalDevice {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]PhysicalDevice, len(h.devices))
	copy(out, h.devices)
	return out
}

func (h *Headless) CreateRenderDevices(ids []uint32) (DeviceMask, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.FailDevices != nil {
		return 0, h.FailDevices
	}
	if len(ids) == 0 {
		return 0, ErrNoRenderDevice
	}
	for _, id := range ids {
		if int(id) >= len(h.devices) {
			return 0, fmt.Errorf("physical device %d: %w", id, ErrNoRenderDevice)
		}
		h.created |= MaskOf(id)
	}
	h.stats.DeviceCreate += len(ids)
	return MaskOf(ids[0]), nil
}

func (h *Headless) CreateSwapChain(mask DeviceMask, nativeWindow uint64) (SwapChain, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.FailSwapChain != nil {
		return 0, h.FailSwapChain
	}
	if h.opts.Flags&FlagSurface == 0 {
		return 0, errors.New("backend created without surface support")
	}
	if mask == 0 || mask&h.created != mask {
		return 0, fmt.Errorf("device mask %#x not created", uint32(mask))
	}
	if nativeWindow == 0 {
		return 0, errors.New("nil native window handle")
	}
	h.nextSC++
	sc := h.nextSC
	h.swapChains[sc] = &swapChainState{mask: mask}
	h.stats.SwapChains++
	return sc, nil
}

func (h *Headless) ResizeSwapChain(sc SwapChain, width, height *uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.swapChains[sc]
	if !ok {
		return ErrUnknownSwapChain
	}
	if h.opts.MaxWidth > 0 && *width > h.opts.MaxWidth {
		*width = h.opts.MaxWidth
	}
	if h.opts.MaxHeight > 0 && *height > h.opts.MaxHeight {
		*height = h.opts.MaxHeight
	}
	st.width, st.height = *width, *height
	h.stats.Resizes++
	h.log.Debug("swap chain resized", zap.Uint32("width", *width), zap.Uint32("height", *height))
	return nil
}

func (h *Headless) PresentSwapChain(sc SwapChain) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.swapChains[sc]; !ok {
		return ErrUnknownSwapChain
	}
	if h.inFrame {
		return fmt.Errorf("present inside open frame: %w", ErrFrameState)
	}
	if h.FailPresent != nil {
		return h.FailPresent
	}
	h.stats.Presents++
	return nil
}

func (h *Headless) DestroySwapChain(sc SwapChain) {
	h.mu.Lock()
	delete(h.swapChains, sc)
	h.mu.Unlock()
}

func (h *Headless) BeginFrame() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inFrame {
		return fmt.Errorf("begin frame twice: %w", ErrFrameState)
	}
	h.inFrame = true
	h.stats.FramesBegun++
	return nil
}

func (h *Headless) EndFrame() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.inFrame {
		return fmt.Errorf("end frame without begin: %w", ErrFrameState)
	}
	h.inFrame = false
	h.stats.FramesEnded++
	return nil
}

func (h *Headless) Destroy() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return
	}
	if n := len(h.swapChains); n > 0 {
		h.log.Warn("render backend destroyed with live swap chains", zap.Int("count", n))
	}
	h.swapChains = map[SwapChain]*swapChainState{}
	h.destroyed = true
	h.log.Info("render backend destroyed")
}

// Stats returns a snapshot of the call counters.
func (h *Headless) Stats() HeadlessStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}

// Extent returns the negotiated size of sc.
func (h *Headless) Extent(sc SwapChain) (width, height uint32, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.swapChains[sc]
	if !ok {
		return 0, 0, false
	}
	return st.width, st.height, true
}

// LiveSwapChains returns how many swap chains have not been destroyed.
func (h *Headless) LiveSwapChains() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.swapChains)
}
