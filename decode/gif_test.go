package decode

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"
	"time"

	"github.com/gogpu/animtex"
)

var testPalette = color.Palette{
	color.RGBA{0, 0, 0, 0},     // 0: transparent
	color.RGBA{255, 0, 0, 255}, // 1: red
	color.RGBA{0, 255, 0, 255}, // 2: green
	color.RGBA{0, 0, 255, 255}, // 3: blue
}

// encodeTestGIF builds an 8x8 two-frame GIF: a full-canvas red frame
// followed by a 4x4 green patch at (2,2). The first frame disposes to
// background and carries a 50ms delay; the second frame's delay is zero.
func encodeTestGIF(t *testing.T) []byte {
	t.Helper()

	full := image.NewPaletted(image.Rect(0, 0, 8, 8), testPalette)
	for i := range full.Pix {
		full.Pix[i] = 1
	}

	patch := image.NewPaletted(image.Rect(2, 2, 6, 6), testPalette)
	for i := range patch.Pix {
		patch.Pix[i] = 2
	}
	patch.Pix[0] = 0 // one transparent pixel

	var buf bytes.Buffer
	err := gif.EncodeAll(&buf, &gif.GIF{
		Image:    []*image.Paletted{full, patch},
		Delay:    []int{5, 0},
		Disposal: []byte{gif.DisposalBackground, gif.DisposalNone},
	})
	if err != nil {
		t.Fatalf("encode test gif: %v", err)
	}
	return buf.Bytes()
}

func TestGIFDecode(t *testing.T) {
	data := encodeTestGIF(t)

	if !(GIF{}).CanDecode(data) {
		t.Fatal("CanDecode rejected encoded GIF")
	}

	seq, err := (GIF{}).Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if seq.CanvasWidth != 8 || seq.CanvasHeight != 8 {
		t.Errorf("canvas %dx%d, want 8x8", seq.CanvasWidth, seq.CanvasHeight)
	}
	if len(seq.Frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(seq.Frames))
	}

	f0 := seq.Frames[0]
	if f0.PatchWidth != 8 || f0.PatchHeight != 8 || f0.OffsetLeft != 0 || f0.OffsetTop != 0 {
		t.Errorf("frame 0 patch %dx%d at (%d,%d), want 8x8 at (0,0)",
			f0.PatchWidth, f0.PatchHeight, f0.OffsetLeft, f0.OffsetTop)
	}
	if f0.Delay != 50*time.Millisecond {
		t.Errorf("frame 0 delay %v, want 50ms", f0.Delay)
	}
	if f0.Blend != animtex.BlendOpaque {
		t.Errorf("frame 0 blend %v, want opaque", f0.Blend)
	}
	if f0.Clear != nil {
		t.Error("frame 0 has a clear rect")
	}
	// First pixel is opaque red, premultiplied RGBA.
	if f0.Pixels[0] != 255 || f0.Pixels[1] != 0 || f0.Pixels[2] != 0 || f0.Pixels[3] != 255 {
		t.Errorf("frame 0 pixel(0,0) = %v, want red", f0.Pixels[:4])
	}

	f1 := seq.Frames[1]
	if f1.PatchWidth != 4 || f1.PatchHeight != 4 || f1.OffsetLeft != 2 || f1.OffsetTop != 2 {
		t.Errorf("frame 1 patch %dx%d at (%d,%d), want 4x4 at (2,2)",
			f1.PatchWidth, f1.PatchHeight, f1.OffsetLeft, f1.OffsetTop)
	}
	// Zero delay gets the conventional default.
	if f1.Delay != gifDefaultDelay {
		t.Errorf("frame 1 delay %v, want %v", f1.Delay, gifDefaultDelay)
	}
	// Frame 0 disposed to background, so frame 1 clears frame 0's rect.
	if f1.Clear == nil {
		t.Fatal("frame 1 missing clear rect after background disposal")
	}
	if *f1.Clear != (animtex.Rect{Left: 0, Top: 0, Width: 8, Height: 8}) {
		t.Errorf("frame 1 clear rect %+v", *f1.Clear)
	}
	// The transparent pixel stays fully transparent after
	// premultiplication.
	if f1.Pixels[3] != 0 {
		t.Errorf("frame 1 transparent pixel alpha = %d, want 0", f1.Pixels[3])
	}

	// The sequence passes its own validation.
	if err := seq.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestGIFWrapAroundDisposal(t *testing.T) {
	// The last frame disposes to background, which takes effect when the
	// animation wraps back to frame 0.
	full := image.NewPaletted(image.Rect(0, 0, 8, 8), testPalette)
	for i := range full.Pix {
		full.Pix[i] = 1
	}
	patch := image.NewPaletted(image.Rect(2, 2, 6, 6), testPalette)
	for i := range patch.Pix {
		patch.Pix[i] = 2
	}

	var buf bytes.Buffer
	err := gif.EncodeAll(&buf, &gif.GIF{
		Image:    []*image.Paletted{full, patch},
		Delay:    []int{5, 5},
		Disposal: []byte{gif.DisposalNone, gif.DisposalBackground},
	})
	if err != nil {
		t.Fatalf("encode test gif: %v", err)
	}

	seq, err := (GIF{}).Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if seq.Frames[0].Clear == nil {
		t.Fatal("frame 0 missing clear rect after trailing background disposal")
	}
	if *seq.Frames[0].Clear != (animtex.Rect{Left: 2, Top: 2, Width: 4, Height: 4}) {
		t.Errorf("frame 0 clear rect %+v", *seq.Frames[0].Clear)
	}
	if seq.Frames[1].Clear != nil {
		t.Error("frame 1 has a clear rect")
	}
}

func TestGIFDecodeCorrupt(t *testing.T) {
	if _, err := (GIF{}).Decode([]byte("GIF89a garbage")); err == nil {
		t.Error("Decode of corrupt GIF returned nil error")
	}
}

func TestGIFLoopCount(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"forever", 0, 0},
		{"play once", -1, 1},
		{"three restarts", 3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gifLoopCount(tt.in); got != tt.want {
				t.Errorf("gifLoopCount(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestRegisteredDetector(t *testing.T) {
	// Importing this package registers the detector with animtex.
	data := encodeTestGIF(t)
	seq, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(seq.Frames) != 2 {
		t.Errorf("got %d frames, want 2", len(seq.Frames))
	}
}
