package render

import (
	"errors"
	"fmt"
)

var ErrNoRenderDevice = errors.New("no render device available")

// DeviceSet is the enumerated device list plus the selected primary device.
type DeviceSet struct {
	Devices     []PhysicalDevice
	PrimaryID   uint32
	PrimaryMask DeviceMask
}

// SelectPrimaryDevice enumerates devices on b and creates exactly one logical
// device at index. The returned mask must be passed unchanged to every
// resource creation call.
func SelectPrimaryDevice(b Backend, index uint32) (DeviceSet, error) {
	devices := b.PhysicalDevices()
	if len(devices) == 0 {
		return DeviceSet{}, ErrNoRenderDevice
	}
	if int(index) >= len(devices) {
		return DeviceSet{}, fmt.Errorf("device index %d of %d: %w", index, len(devices), ErrNoRenderDevice)
	}
	id := devices[index].ID
	mask, err := b.CreateRenderDevices([]uint32{id})
	if err != nil {
		return DeviceSet{}, fmt.Errorf("create render device %d: %w", id, err)
	}
	if mask != MaskOf(id) {
		return DeviceSet{}, fmt.Errorf("backend returned mask %#x for device %d", uint32(mask), id)
	}
	return DeviceSet{Devices: devices, PrimaryID: id, PrimaryMask: mask}, nil
}
