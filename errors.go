package animtex

import "errors"

// Sentinel errors returned by animtex. Wrapped errors carry the underlying
// cause; match with errors.Is.
var (
	// ErrEmptySequence is returned when a decoded animation contains no
	// frames. A texture whose source decodes to an empty sequence never
	// becomes ready.
	ErrEmptySequence = errors.New("animtex: animation has no frames")

	// ErrDecode is returned when fetching or decoding the animation source
	// fails. The completion callback receives this wrapped around the
	// decoder's error.
	ErrDecode = errors.New("animtex: decode animation")

	// ErrResourceCreation is returned when a GPU resource (texture, buffer,
	// pipeline) cannot be created.
	ErrResourceCreation = errors.New("animtex: create GPU resource")

	// ErrFrameBounds is returned when a frame's patch rectangle extends
	// outside the canvas.
	ErrFrameBounds = errors.New("animtex: frame patch exceeds canvas bounds")

	// ErrPixelLength is returned when a frame's pixel data does not match
	// its patch dimensions.
	ErrPixelLength = errors.New("animtex: frame pixel data length mismatch")

	// ErrNilDevice is returned when Config lacks a GPU device or queue.
	ErrNilDevice = errors.New("animtex: nil device or queue")

	// ErrNilLoop is returned when Config lacks a render loop.
	ErrNilLoop = errors.New("animtex: nil render loop")

	// ErrNilFetch is returned when Config lacks a fetch function.
	ErrNilFetch = errors.New("animtex: nil fetch function")
)
