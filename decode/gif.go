package decode

import (
	"bytes"
	"fmt"
	"image/gif"
	"time"

	"github.com/gogpu/animtex"
)

// gifDefaultDelay replaces a zero frame delay. Encoders that write 0 mean
// "as fast as possible", which renderers conventionally treat as 100ms.
const gifDefaultDelay = 100 * time.Millisecond

// GIF decodes animated GIF containers via image/gif.
//
// Each GIF frame's bounds become the patch rectangle and canvas offsets;
// the patch is kept as-is rather than flattened, so compositing happens on
// the GPU. Frames composite in opaque mode: GIF pixels are either fully
// opaque or fully transparent, and transparent ones must not overwrite
// accumulated canvas pixels.
type GIF struct{}

var _ Decoder = GIF{}

// CanDecode reports whether data starts with a GIF87a or GIF89a header.
func (GIF) CanDecode(data []byte) bool {
	return hasPrefix(data, 0, "GIF87a") || hasPrefix(data, 0, "GIF89a")
}

// Decode parses the full GIF animation into a frame sequence.
func (GIF) Decode(data []byte) (*animtex.Sequence, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, animtex.ErrEmptySequence
	}

	cw, ch := g.Config.Width, g.Config.Height
	if cw == 0 || ch == 0 {
		b := g.Image[0].Bounds()
		cw, ch = b.Max.X, b.Max.Y
	}

	seq := &animtex.Sequence{
		Frames:       make([]animtex.Frame, 0, len(g.Image)),
		CanvasWidth:  cw,
		CanvasHeight: ch,
		LoopCount:    gifLoopCount(g.LoopCount),
	}

	// A frame disposed to background clears its rectangle before the
	// next frame draws. DisposalPrevious is treated as DisposalNone;
	// it is vanishingly rare and restoring a snapshot would require a
	// canvas readback.
	var clear *animtex.Rect
	for i, img := range g.Image {
		b := img.Bounds()
		f := animtex.Frame{
			Pixels:      premultiplied(img),
			PatchWidth:  b.Dx(),
			PatchHeight: b.Dy(),
			OffsetLeft:  b.Min.X,
			OffsetTop:   b.Min.Y,
			Delay:       gifFrameDelay(g, i),
			Blend:       animtex.BlendOpaque,
			Clear:       clear,
		}
		seq.Frames = append(seq.Frames, f)

		clear = nil
		if i < len(g.Disposal) && g.Disposal[i] == gif.DisposalBackground {
			r := f.Bounds()
			clear = &r
		}
	}
	// The last frame's disposal applies on loop wrap-around, before frame 0
	// draws again. Harmless on the first play: the canvas starts transparent.
	if clear != nil && seq.Frames[0].Clear == nil {
		seq.Frames[0].Clear = clear
	}

	return validated(seq, "gif")
}

// gifFrameDelay converts a GIF delay (hundredths of a second) to a
// duration, substituting the conventional default for zero.
func gifFrameDelay(g *gif.GIF, idx int) time.Duration {
	var delay time.Duration
	if idx < len(g.Delay) {
		delay = time.Duration(g.Delay[idx]) * 10 * time.Millisecond
	}
	if delay <= 0 {
		delay = gifDefaultDelay
	}
	return delay
}

// gifLoopCount maps image/gif loop semantics onto Sequence.LoopCount.
// image/gif: 0 loops forever, -1 plays once, n restarts n times.
func gifLoopCount(n int) int {
	switch {
	case n == 0:
		return 0
	case n < 0:
		return 1
	default:
		return n + 1
	}
}
