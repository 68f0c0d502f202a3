package comp

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Patch is the pixel data for a single animation frame, uploaded once into
// its own GPU texture.
type Patch struct {
	// Pixels holds tightly packed premultiplied RGBA8 data,
	// Width*Height*4 bytes.
	Pixels []byte

	// Width and Height are the patch dimensions in pixels.
	Width  int
	Height int
}

// PatchStore owns one GPU texture and view per animation frame. Textures are
// immutable after upload; the compositor samples them on every draw of the
// corresponding frame.
type PatchStore struct {
	device hal.Device
	queue  hal.Queue

	textures []hal.Texture
	views    []hal.TextureView
}

// NewPatchStore creates an empty store bound to the given device and queue.
func NewPatchStore(device hal.Device, queue hal.Queue) (*PatchStore, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	return &PatchStore{device: device, queue: queue}, nil
}

// Upload creates and fills one texture per patch. On any failure the store
// destroys everything it created and returns the error; a store that failed
// Upload holds no GPU resources.
func (ps *PatchStore) Upload(patches []Patch) error {
	for i, p := range patches {
		if p.Width <= 0 || p.Height <= 0 {
			ps.Destroy()
			return fmt.Errorf("%w: patch %d is %dx%d", ErrInvalidSize, i, p.Width, p.Height)
		}
		if want := p.Width * p.Height * 4; len(p.Pixels) != want {
			ps.Destroy()
			return fmt.Errorf("%w: patch %d has %d bytes, want %d", ErrBadPatch, i, len(p.Pixels), want)
		}

		w := uint32(p.Width)
		h := uint32(p.Height)
		tex, err := ps.device.CreateTexture(&hal.TextureDescriptor{
			Label:         fmt.Sprintf("animtex_patch_%d", i),
			Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        gputypes.TextureFormatRGBA8Unorm,
			Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
		})
		if err != nil {
			ps.Destroy()
			return fmt.Errorf("create patch texture %d: %w", i, err)
		}
		ps.textures = append(ps.textures, tex)

		view, err := ps.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label:         fmt.Sprintf("animtex_patch_%d_view", i),
			Format:        gputypes.TextureFormatRGBA8Unorm,
			Dimension:     gputypes.TextureViewDimension2D,
			Aspect:        gputypes.TextureAspectAll,
			MipLevelCount: 1,
		})
		if err != nil {
			ps.Destroy()
			return fmt.Errorf("create patch texture view %d: %w", i, err)
		}
		ps.views = append(ps.views, view)

		err = ps.queue.WriteTexture(
			&hal.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
			},
			p.Pixels,
			&hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  w * 4,
				RowsPerImage: h,
			},
			&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		)
		if err != nil {
			ps.Destroy()
			return fmt.Errorf("upload patch texture %d: %w", i, err)
		}
	}
	return nil
}

// Len returns the number of uploaded patches.
func (ps *PatchStore) Len() int { return len(ps.views) }

// View returns the texture view for patch i.
func (ps *PatchStore) View(i int) hal.TextureView { return ps.views[i] }

// Destroy releases all patch textures and views. Safe to call multiple
// times or on a store that never uploaded.
func (ps *PatchStore) Destroy() {
	for _, v := range ps.views {
		if v != nil {
			ps.device.DestroyTextureView(v)
		}
	}
	ps.views = nil
	for _, t := range ps.textures {
		if t != nil {
			ps.device.DestroyTexture(t)
		}
	}
	ps.textures = nil
}
