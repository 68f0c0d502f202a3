// Package decode turns animated image containers into frame sequences.
//
// Two decoders are bundled: GIF (image/gif) and animated WebP
// (github.com/deepteams/webp). Detect sniffs the container magic bytes and
// returns the matching decoder, so callers normally never pick one by hand.
// Both decoders emit patches in premultiplied RGBA8, ready for GPU upload.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/animtex"
)

// ErrUnknownFormat is returned by Detect for data that is neither GIF nor
// animated WebP.
var ErrUnknownFormat = errors.New("decode: unknown animation format")

// Decoder converts an encoded animation into a frame sequence.
type Decoder interface {
	// CanDecode reports whether the data looks like this decoder's
	// format, judged by magic bytes only.
	CanDecode(data []byte) bool

	// Decode parses the full animation. The returned sequence is
	// validated: it has at least one frame and every patch lies within
	// the canvas.
	Decode(data []byte) (*animtex.Sequence, error)
}

// decoders in sniffing order.
var decoders = []Decoder{GIF{}, WebP{}}

func init() {
	// Importing this package enables auto-detection on animtex.Config
	// with a nil Decoder.
	animtex.RegisterDetector(func(data []byte) (animtex.Decoder, error) {
		d, err := Detect(data)
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}

// Detect returns the decoder whose magic bytes match data, or
// ErrUnknownFormat.
func Detect(data []byte) (Decoder, error) {
	for _, d := range decoders {
		if d.CanDecode(data) {
			return d, nil
		}
	}
	return nil, ErrUnknownFormat
}

// Decode detects the container format and decodes it in one step.
func Decode(data []byte) (*animtex.Sequence, error) {
	d, err := Detect(data)
	if err != nil {
		return nil, err
	}
	return d.Decode(data)
}

// hasPrefix reports whether data starts with the given magic at offset.
func hasPrefix(data []byte, offset int, magic string) bool {
	if len(data) < offset+len(magic) {
		return false
	}
	return bytes.Equal(data[offset:offset+len(magic)], []byte(magic))
}

// premultiplied converts any image into tightly packed premultiplied RGBA8
// bytes. image.RGBA stores premultiplied components, so a single draw into
// an RGBA destination performs both the color model conversion and the
// premultiplication.
func premultiplied(src image.Image) []byte {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst.Pix
}

// validated runs sequence validation and wraps violations as decode errors.
func validated(seq *animtex.Sequence, format string) (*animtex.Sequence, error) {
	if err := seq.Validate(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return seq, nil
}
