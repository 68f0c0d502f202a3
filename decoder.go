package animtex

import (
	"errors"
	"sync"
)

// Decoder converts encoded animation data into a frame sequence.
// The decode subpackage provides GIF and WebP implementations.
type Decoder interface {
	Decode(data []byte) (*Sequence, error)
}

// ErrNoDecoder is returned when no decoder is configured and no detector
// has been registered. Importing the decode subpackage registers one.
var ErrNoDecoder = errors.New("animtex: no decoder available")

var (
	detectorMu sync.RWMutex
	detector   func(data []byte) (Decoder, error)
)

// RegisterDetector installs the format detector used when Config.Decoder is
// nil. The decode subpackage calls this from its init, so importing it is
// enough to enable auto-detection:
//
//	import _ "github.com/gogpu/animtex/decode"
func RegisterDetector(fn func(data []byte) (Decoder, error)) {
	detectorMu.Lock()
	detector = fn
	detectorMu.Unlock()
}

// detectDecoder resolves a decoder for raw data via the registered
// detector.
func detectDecoder(data []byte) (Decoder, error) {
	detectorMu.RLock()
	fn := detector
	detectorMu.RUnlock()
	if fn == nil {
		return nil, ErrNoDecoder
	}
	return fn(data)
}
