package decode

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/deepteams/webp/animation"
	"github.com/gogpu/animtex"
)

// encodeTestWebP builds a 16x16 two-frame animated WebP: a full-canvas red
// frame followed by an 8x8 green patch at (4,6). The first frame uses
// no-blend and disposes to background; the second blends with alpha. Frames
// are encoded losslessly so pixel values round-trip exactly. Offsets must be
// even; the container stores them halved.
func encodeTestWebP(t *testing.T) []byte {
	t.Helper()

	red := image.NewRGBA(image.Rect(0, 0, 16, 16))
	draw.Draw(red, red.Bounds(), image.NewUniform(color.RGBA{255, 0, 0, 255}), image.Point{}, draw.Src)

	green := image.NewRGBA(image.Rect(0, 0, 8, 8))
	draw.Draw(green, green.Bounds(), image.NewUniform(color.RGBA{0, 255, 0, 255}), image.Point{}, draw.Src)

	var buf bytes.Buffer
	enc := animation.NewEncoder(&buf, 16, 16, &animation.EncodeOptions{
		LoopCount: 3,
		Lossless:  true,
		Quality:   100,
	})
	if enc == nil {
		t.Fatal("NewEncoder returned nil")
	}

	frames := []struct {
		img              image.Image
		duration         time.Duration
		offsetX, offsetY int
		blend            animation.BlendMethod
		dispose          animation.DisposeMethod
	}{
		{red, 80 * time.Millisecond, 0, 0, animation.BlendNone, animation.DisposeBackground},
		{green, 120 * time.Millisecond, 4, 6, animation.BlendAlpha, animation.DisposeNone},
	}
	for i, f := range frames {
		// The frame encoder is registered by this package's blank import
		// of the root webp package.
		bs, err := animation.FrameEncoderFunc(f.img, true, 100)
		if err != nil {
			t.Fatalf("encode frame %d: %v", i, err)
		}
		if err := enc.AddRawFrame(bs, f.duration, f.offsetX, f.offsetY, f.blend, f.dispose); err != nil {
			t.Fatalf("add frame %d: %v", i, err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	return buf.Bytes()
}

func TestWebPDecode(t *testing.T) {
	data := encodeTestWebP(t)

	if !(WebP{}).CanDecode(data) {
		t.Fatal("CanDecode rejected encoded WebP")
	}

	seq, err := (WebP{}).Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if seq.CanvasWidth != 16 || seq.CanvasHeight != 16 {
		t.Errorf("canvas %dx%d, want 16x16", seq.CanvasWidth, seq.CanvasHeight)
	}
	if seq.LoopCount != 3 {
		t.Errorf("loop count %d, want 3", seq.LoopCount)
	}
	if len(seq.Frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(seq.Frames))
	}

	f0 := seq.Frames[0]
	if f0.PatchWidth != 16 || f0.PatchHeight != 16 || f0.OffsetLeft != 0 || f0.OffsetTop != 0 {
		t.Errorf("frame 0 patch %dx%d at (%d,%d), want 16x16 at (0,0)",
			f0.PatchWidth, f0.PatchHeight, f0.OffsetLeft, f0.OffsetTop)
	}
	if f0.Delay != 80*time.Millisecond {
		t.Errorf("frame 0 delay %v, want 80ms", f0.Delay)
	}
	if f0.Blend != animtex.BlendReplace {
		t.Errorf("frame 0 blend %v, want replace", f0.Blend)
	}
	if f0.Clear != nil {
		t.Error("frame 0 has a clear rect")
	}
	// First pixel is opaque red, premultiplied RGBA.
	if f0.Pixels[0] != 255 || f0.Pixels[1] != 0 || f0.Pixels[2] != 0 || f0.Pixels[3] != 255 {
		t.Errorf("frame 0 pixel(0,0) = %v, want red", f0.Pixels[:4])
	}

	f1 := seq.Frames[1]
	if f1.PatchWidth != 8 || f1.PatchHeight != 8 || f1.OffsetLeft != 4 || f1.OffsetTop != 6 {
		t.Errorf("frame 1 patch %dx%d at (%d,%d), want 8x8 at (4,6)",
			f1.PatchWidth, f1.PatchHeight, f1.OffsetLeft, f1.OffsetTop)
	}
	if f1.Delay != 120*time.Millisecond {
		t.Errorf("frame 1 delay %v, want 120ms", f1.Delay)
	}
	if f1.Blend != animtex.BlendSourceOver {
		t.Errorf("frame 1 blend %v, want source-over", f1.Blend)
	}
	// Frame 0 disposed to background, so frame 1 clears frame 0's rect.
	if f1.Clear == nil {
		t.Fatal("frame 1 missing clear rect after background disposal")
	}
	if *f1.Clear != (animtex.Rect{Left: 0, Top: 0, Width: 16, Height: 16}) {
		t.Errorf("frame 1 clear rect %+v", *f1.Clear)
	}
	if f1.Pixels[0] != 0 || f1.Pixels[1] != 255 || f1.Pixels[2] != 0 || f1.Pixels[3] != 255 {
		t.Errorf("frame 1 pixel(0,0) = %v, want green", f1.Pixels[:4])
	}

	if err := seq.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestWebPDecodeCorrupt(t *testing.T) {
	if _, err := (WebP{}).Decode([]byte("RIFF\x00\x00\x00\x00WEBPgarbage")); err == nil {
		t.Error("Decode of corrupt WebP returned nil error")
	}
}
