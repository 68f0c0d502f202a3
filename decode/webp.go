package decode

import (
	"fmt"

	"github.com/deepteams/webp/animation"
	"github.com/gogpu/animtex"

	// Registers the VP8/VP8L frame decoder with the animation package.
	_ "github.com/deepteams/webp"
)

// WebP decodes animated WebP containers via github.com/deepteams/webp.
//
// Frame offsets, durations and per-frame blend/dispose flags map directly
// onto the frame sequence: BlendAlpha frames composite source-over,
// BlendNone frames overwrite their rectangle, and a DisposeBackground frame
// clears its rectangle before the next frame draws.
type WebP struct{}

var _ Decoder = WebP{}

// CanDecode reports whether data carries a RIFF/WEBP header.
func (WebP) CanDecode(data []byte) bool {
	return hasPrefix(data, 0, "RIFF") && hasPrefix(data, 8, "WEBP")
}

// Decode parses the full WebP animation into a frame sequence. Still WebP
// images decode as a single full-canvas frame.
func (WebP) Decode(data []byte) (*animtex.Sequence, error) {
	anim, err := animation.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode webp: %w", err)
	}
	if len(anim.Frames) == 0 {
		return nil, animtex.ErrEmptySequence
	}
	// DecodeBytes only demuxes the container; frame bitstreams decode
	// to pixels here.
	if err := anim.DecodeFramesParallel(); err != nil {
		return nil, fmt.Errorf("decode webp frames: %w", err)
	}

	seq := &animtex.Sequence{
		Frames:       make([]animtex.Frame, 0, len(anim.Frames)),
		CanvasWidth:  anim.CanvasWidth,
		CanvasHeight: anim.CanvasHeight,
		LoopCount:    anim.LoopCount,
	}

	var clear *animtex.Rect
	for i := range anim.Frames {
		src := &anim.Frames[i]
		if src.Image == nil {
			return nil, fmt.Errorf("decode webp: %w", animation.ErrNilImage)
		}
		b := src.Image.Bounds()

		blend := animtex.BlendSourceOver
		if src.Blend == animation.BlendNone {
			blend = animtex.BlendReplace
		}

		f := animtex.Frame{
			Pixels:      premultiplied(src.Image),
			PatchWidth:  b.Dx(),
			PatchHeight: b.Dy(),
			OffsetLeft:  src.OffsetX,
			OffsetTop:   src.OffsetY,
			Delay:       src.Duration,
			Blend:       blend,
			Clear:       clear,
		}
		seq.Frames = append(seq.Frames, f)

		clear = nil
		if src.Dispose == animation.DisposeBackground {
			r := f.Bounds()
			clear = &r
		}
	}
	// The last frame's disposal applies on loop wrap-around, before frame 0
	// draws again. Harmless on the first play: the canvas starts transparent.
	if clear != nil && seq.Frames[0].Clear == nil {
		seq.Frames[0].Clear = clear
	}

	return validated(seq, "webp")
}
