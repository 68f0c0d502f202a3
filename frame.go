package animtex

import (
	"fmt"
	"time"
)

// Blend selects how a frame's patch is composited onto the canvas.
type Blend uint8

const (
	// BlendSourceOver composites the patch with premultiplied alpha
	// blending. Transparent texels leave the canvas unchanged.
	BlendSourceOver Blend = iota

	// BlendOpaque writes patch texels directly, discarding fully
	// transparent ones so they do not punch holes into accumulated
	// pixels. GIF frames with palette transparency composite this way.
	BlendOpaque

	// BlendReplace overwrites the patch rectangle including transparent
	// texels. WebP frames with the no-blend flag composite this way.
	BlendReplace
)

// String returns the blend mode name.
func (b Blend) String() string {
	switch b {
	case BlendSourceOver:
		return "source-over"
	case BlendOpaque:
		return "opaque"
	case BlendReplace:
		return "replace"
	default:
		return fmt.Sprintf("Blend(%d)", uint8(b))
	}
}

// Rect is a pixel rectangle on the animation canvas.
type Rect struct {
	Left, Top     int
	Width, Height int
}

// Frame is a single animation frame: a patch of RGBA pixels placed at an
// offset on the canvas, shown for Delay before the next frame is due.
type Frame struct {
	// Pixels holds tightly packed RGBA8 data,
	// PatchWidth*PatchHeight*4 bytes.
	Pixels []byte

	// PatchWidth and PatchHeight are the patch dimensions in pixels.
	PatchWidth  int
	PatchHeight int

	// OffsetLeft and OffsetTop place the patch's top-left corner on the
	// canvas, measured from the canvas top-left.
	OffsetLeft int
	OffsetTop  int

	// Delay is how long the frame is shown. Zero or negative means the
	// frame advances on the next scheduler tick.
	Delay time.Duration

	// Blend selects the compositing mode for this frame's patch.
	Blend Blend

	// Clear, when non-nil, is a canvas rectangle zeroed before this
	// frame's patch is drawn. Decoders set it for frames that follow a
	// dispose-to-background frame.
	Clear *Rect
}

// Bounds returns the patch rectangle on the canvas.
func (f *Frame) Bounds() Rect {
	return Rect{
		Left:   f.OffsetLeft,
		Top:    f.OffsetTop,
		Width:  f.PatchWidth,
		Height: f.PatchHeight,
	}
}

// Sequence is a decoded animation: an ordered list of frames plus the canvas
// dimensions they composite onto.
type Sequence struct {
	// Frames in display order. Never empty for a valid sequence.
	Frames []Frame

	// CanvasWidth and CanvasHeight are the full animation dimensions.
	// Every patch lies within the canvas.
	CanvasWidth  int
	CanvasHeight int

	// LoopCount is the number of times the animation plays.
	// Zero means loop forever.
	LoopCount int
}

// Validate checks the sequence invariants: at least one frame, positive
// canvas dimensions, every patch within canvas bounds, and pixel data
// matching patch dimensions. It returns the first violation found, wrapped
// around the matching sentinel error.
func (s *Sequence) Validate() error {
	if len(s.Frames) == 0 {
		return ErrEmptySequence
	}
	if s.CanvasWidth <= 0 || s.CanvasHeight <= 0 {
		return fmt.Errorf("%w: canvas %dx%d", ErrFrameBounds, s.CanvasWidth, s.CanvasHeight)
	}
	for i := range s.Frames {
		f := &s.Frames[i]
		if f.PatchWidth <= 0 || f.PatchHeight <= 0 {
			return fmt.Errorf("%w: frame %d patch %dx%d", ErrFrameBounds, i, f.PatchWidth, f.PatchHeight)
		}
		if f.OffsetLeft < 0 || f.OffsetTop < 0 ||
			f.OffsetLeft+f.PatchWidth > s.CanvasWidth ||
			f.OffsetTop+f.PatchHeight > s.CanvasHeight {
			return fmt.Errorf("%w: frame %d at (%d,%d) size %dx%d, canvas %dx%d",
				ErrFrameBounds, i, f.OffsetLeft, f.OffsetTop,
				f.PatchWidth, f.PatchHeight, s.CanvasWidth, s.CanvasHeight)
		}
		if want := f.PatchWidth * f.PatchHeight * 4; len(f.Pixels) != want {
			return fmt.Errorf("%w: frame %d has %d bytes, want %d",
				ErrPixelLength, i, len(f.Pixels), want)
		}
		if c := f.Clear; c != nil {
			if c.Left < 0 || c.Top < 0 ||
				c.Left+c.Width > s.CanvasWidth ||
				c.Top+c.Height > s.CanvasHeight {
				return fmt.Errorf("%w: frame %d clear rect at (%d,%d) size %dx%d",
					ErrFrameBounds, i, c.Left, c.Top, c.Width, c.Height)
			}
		}
	}
	return nil
}
