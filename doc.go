// Package animtex plays animated image sequences (GIF, animated WebP) as a
// live GPU texture.
//
// Animation frames arrive as patches: sub-rectangles with canvas offsets and
// per-frame delays. Each patch is uploaded to its own GPU texture once, and a
// cyclic scheduler composites the due patch onto a persistent accumulation
// texture without clearing it, so partial frames build up into the full
// canvas exactly as the container format intends. The accumulation texture is
// the externally visible handle; hosts bind it like any other 2D texture.
//
// animtex receives the GPU device from the host, it does not create one.
// Construct a Texture with an existing hal.Device and hal.Queue (or through
// NewFromProvider when the host exposes a gpucontext device provider) and a
// Loop stepped from the host render loop:
//
//	loop := animtex.NewLoop()
//	tex, err := animtex.New(animtex.Config{
//	    Device: device,
//	    Queue:  queue,
//	    Loop:   loop,
//	    Fetch:  animtex.FetchBytes(gifData),
//	    OnReady: func(err error) { ... },
//	})
//
//	// Inside the host render loop:
//	loop.Step(time.Now())
//	view := tex.View() // 1x1 transparent placeholder until ready
//
// Fetching and decoding run asynchronously; View returns a placeholder until
// the first frame has been composited. Close releases every GPU resource and
// is safe to call at any point, including before decoding finishes.
package animtex
