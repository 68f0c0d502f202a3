// Package comp implements GPU patch compositing for animated textures.
//
// A Compositor owns a persistent canvas texture and a pair of render
// pipelines that draw single patch quads onto it. The canvas attachment is
// loaded rather than cleared on every draw, so successive patches accumulate
// into the full animation frame. A PatchStore holds one immutable GPU texture
// per animation frame, uploaded once at decode time.
//
// The package speaks the wgpu HAL directly and receives its device and queue
// from the caller; it never creates or owns a GPU device.
package comp

import (
	"errors"

	"github.com/gogpu/wgpu/hal"
)

// Compositing errors.
var (
	// ErrNilDevice is returned when a constructor receives a nil device
	// or queue.
	ErrNilDevice = errors.New("comp: nil device or queue")

	// ErrInvalidSize is returned for non-positive canvas or patch
	// dimensions.
	ErrInvalidSize = errors.New("comp: invalid dimensions")

	// ErrDestroyed is returned when drawing with a destroyed compositor.
	ErrDestroyed = errors.New("comp: compositor destroyed")

	// ErrBadPatch is returned when patch pixel data does not match its
	// dimensions.
	ErrBadPatch = errors.New("comp: patch pixel data length mismatch")

	// ErrNoView is returned when DrawParams lacks a patch texture view.
	ErrNoView = errors.New("comp: draw params missing texture view")
)

// Affine is a 2D affine transform in row-major 2x3 layout:
//
//	| a  b  c |
//	| d  e  f |
//
// It places the unit patch quad within [0,1] canvas space.
type Affine struct {
	A, B, C float32
	D, E, F float32
}

// IdentityAffine returns the identity transform.
func IdentityAffine() Affine {
	return Affine{A: 1, E: 1}
}

// Mode selects the compositing behavior for a single draw.
// Values match the mode uniform in composite.wgsl.
type Mode uint32

const (
	// ModeBlend composites with premultiplied source-over blending.
	ModeBlend Mode = 0

	// ModeOpaque writes texels directly, discarding fully transparent
	// ones in the fragment shader.
	ModeOpaque Mode = 1

	// ModeClear writes transparent black over the quad.
	ModeClear Mode = 2

	// ModeReplace writes texels directly, including fully transparent
	// ones.
	ModeReplace Mode = 3
)

// DrawParams describes a single patch draw. All parameters are explicit;
// nothing is captured from ambient state.
type DrawParams struct {
	// View is the patch texture to sample. Required for ModeBlend and
	// ModeOpaque; ignored for ModeClear but must still be non-nil to
	// satisfy the bind group layout.
	View hal.TextureView

	// Transform places the unit quad within [0,1] canvas space.
	Transform Affine

	// Mode selects blending, opaque write, or clear.
	Mode Mode
}
