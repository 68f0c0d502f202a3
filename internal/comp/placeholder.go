package comp

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Placeholder is a 1x1 transparent texture handed out while an animation is
// still fetching or decoding, so hosts can bind the texture slot before any
// real pixels exist.
type Placeholder struct {
	device hal.Device
	tex    hal.Texture
	view   hal.TextureView
}

// NewPlaceholder creates the 1x1 transparent placeholder texture.
func NewPlaceholder(device hal.Device, queue hal.Queue) (*Placeholder, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "animtex_placeholder",
		Size:          hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create placeholder texture: %w", err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "animtex_placeholder_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create placeholder view: %w", err)
	}

	err = queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		[]byte{0, 0, 0, 0},
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: 4, RowsPerImage: 1},
		&hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	)
	if err != nil {
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("upload placeholder texture: %w", err)
	}

	return &Placeholder{device: device, tex: tex, view: view}, nil
}

// View returns the placeholder texture view.
func (p *Placeholder) View() hal.TextureView { return p.view }

// Destroy releases the placeholder texture. Safe to call multiple times.
func (p *Placeholder) Destroy() {
	if p.view != nil {
		p.device.DestroyTextureView(p.view)
		p.view = nil
	}
	if p.tex != nil {
		p.device.DestroyTexture(p.tex)
		p.tex = nil
	}
}
