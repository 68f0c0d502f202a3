package animtex

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle provides GPU device access from the host application.
//
// It is an alias for gpucontext.DeviceProvider, so hosts already wired into
// the gpucontext ecosystem can hand their provider to animtex directly.
// animtex RECEIVES the device from the host, it does not create one.
type DeviceHandle = gpucontext.DeviceProvider

// ErrNoHAL is returned when a device provider does not expose the
// underlying HAL device and queue.
var ErrNoHAL = errors.New("animtex: device provider does not expose HAL types")

// NewFromProvider creates an animated texture from a gpucontext device
// provider. The provider must additionally expose HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue, as gogpu hosts do.
// Config.Device and Config.Queue are filled in from the provider.
func NewFromProvider(h DeviceHandle, cfg Config) (*Texture, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := h.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, ErrNoHAL
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, ErrNoHAL
	}

	cfg.Device = device
	cfg.Queue = queue
	return New(cfg)
}
