package animtex

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/animtex/internal/comp"
)

// Config configures an animated Texture.
type Config struct {
	// Device and Queue are the host's GPU handles. Required.
	Device hal.Device
	Queue  hal.Queue

	// Loop is the render loop the texture subscribes to once its
	// animation is decoded. Required.
	Loop *Loop

	// Fetch retrieves the encoded animation. It runs on a background
	// goroutine; the context is canceled when the texture is closed.
	// Required. See FetchBytes and FetchURL.
	Fetch func(ctx context.Context) ([]byte, error)

	// Decoder parses the fetched data. When nil, the registered format
	// detector picks one by magic bytes (import the decode subpackage).
	Decoder Decoder

	// OnReady is invoked exactly once: with nil after the first frame
	// has been composited, or with the error that prevented the texture
	// from ever becoming ready. Optional. The callback runs on the
	// goroutine that completed the work; it must not block.
	OnReady func(err error)

	// Now is the clock used for frame scheduling. Defaults to time.Now.
	Now func() time.Time

	// Logger overrides the package-level logger for this texture.
	Logger *slog.Logger
}

// Texture is an animated image sequence playing onto a GPU texture.
//
// Construction starts an asynchronous fetch and decode. Until the first
// frame has been composited, View returns a 1x1 transparent placeholder so
// hosts can bind the texture slot immediately. Once ready, View returns the
// accumulation canvas, which updates in place as the render loop ticks.
//
// All methods are safe for concurrent use.
type Texture struct {
	mu sync.Mutex

	device  hal.Device
	queue   hal.Queue
	loop    *Loop
	onReady func(error)
	now     func() time.Time
	log     *slog.Logger

	placeholder *comp.Placeholder
	engine      *comp.Compositor
	store       *comp.PatchStore
	sched       *Scheduler
	sub         *Subscription

	frames  []Frame
	canvasW int
	canvasH int

	// pending is a frame index whose draw failed (or has not happened
	// yet) and is retried on the next tick. -1 when nothing is pending.
	pending int

	ready    bool
	notified bool
	closed   bool

	cancelFetch context.CancelFunc
}

// New creates an animated texture and starts fetching its source.
// The returned texture is immediately usable: View yields the placeholder
// until the animation is ready.
func New(cfg Config) (*Texture, error) {
	if cfg.Device == nil || cfg.Queue == nil {
		return nil, ErrNilDevice
	}
	if cfg.Loop == nil {
		return nil, ErrNilLoop
	}
	if cfg.Fetch == nil {
		return nil, ErrNilFetch
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = Logger()
	}

	placeholder, err := comp.NewPlaceholder(cfg.Device, cfg.Queue)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceCreation, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &Texture{
		device:      cfg.Device,
		queue:       cfg.Queue,
		loop:        cfg.Loop,
		onReady:     cfg.OnReady,
		now:         cfg.Now,
		log:         cfg.Logger,
		placeholder: placeholder,
		pending:     -1,
		cancelFetch: cancel,
	}

	go t.load(ctx, cfg.Fetch, cfg.Decoder)
	return t, nil
}

// load runs the asynchronous fetch and decode, then hands the sequence to
// finish. A texture closed mid-flight discards the result silently.
func (t *Texture) load(ctx context.Context, fetch func(context.Context) ([]byte, error), dec Decoder) {
	data, err := fetch(ctx)
	if err != nil {
		t.finish(nil, fmt.Errorf("%w: %w", ErrDecode, err))
		return
	}
	if dec == nil {
		dec, err = detectDecoder(data)
		if err != nil {
			t.finish(nil, fmt.Errorf("%w: %w", ErrDecode, err))
			return
		}
	}
	seq, err := dec.Decode(data)
	if err != nil {
		t.finish(nil, fmt.Errorf("%w: %w", ErrDecode, err))
		return
	}
	if err := seq.Validate(); err != nil {
		t.finish(nil, fmt.Errorf("%w: %w", ErrDecode, err))
		return
	}
	t.finish(seq, nil)
}

// finish installs the decoded sequence, builds the GPU resources, and
// subscribes to the render loop. On any failure the completion callback
// fires with the error and the texture stays on its placeholder.
func (t *Texture) finish(seq *Sequence, loadErr error) {
	t.mu.Lock()

	if t.closed {
		// Closed while fetching or decoding: nothing GPU-side was
		// created for the animation, so there is nothing to free and
		// nobody left to notify.
		t.mu.Unlock()
		return
	}

	if loadErr != nil {
		t.log.Warn("animation load failed", "err", loadErr)
		t.notifyLocked(loadErr)
		return
	}

	store, err := comp.NewPatchStore(t.device, t.queue)
	if err != nil {
		t.failResourcesLocked(err)
		return
	}
	patches := make([]comp.Patch, len(seq.Frames))
	for i := range seq.Frames {
		f := &seq.Frames[i]
		patches[i] = comp.Patch{
			Pixels: f.Pixels,
			Width:  f.PatchWidth,
			Height: f.PatchHeight,
		}
	}
	if err := store.Upload(patches); err != nil {
		t.failResourcesLocked(err)
		return
	}

	engine, err := comp.New(comp.Config{
		Device:       t.device,
		Queue:        t.queue,
		CanvasWidth:  seq.CanvasWidth,
		CanvasHeight: seq.CanvasHeight,
	})
	if err != nil {
		store.Destroy()
		t.failResourcesLocked(err)
		return
	}

	delays := make([]time.Duration, len(seq.Frames))
	for i := range seq.Frames {
		delays[i] = seq.Frames[i].Delay
	}
	sched, err := NewScheduler(delays, seq.LoopCount)
	if err != nil {
		engine.Destroy()
		store.Destroy()
		t.notifyLocked(err)
		return
	}

	t.store = store
	t.engine = engine
	t.sched = sched
	t.frames = seq.Frames
	t.canvasW = seq.CanvasWidth
	t.canvasH = seq.CanvasHeight
	t.sched.Start(t.now())

	// Frame 0 is due immediately; the first tick draws it and flips
	// readiness.
	t.pending = 0
	t.sub = t.loop.Subscribe(t.tick)

	t.log.Debug("animation decoded",
		"frames", len(t.frames),
		"canvas_w", t.canvasW,
		"canvas_h", t.canvasH)
	t.mu.Unlock()
}

// failResourcesLocked reports a GPU resource failure and releases the lock.
func (t *Texture) failResourcesLocked(err error) {
	wrapped := fmt.Errorf("%w: %w", ErrResourceCreation, err)
	t.log.Warn("animation GPU setup failed", "err", wrapped)
	t.notifyLocked(wrapped)
}

// notifyLocked fires the one-shot completion callback and releases the
// lock. The callback runs outside the lock so it may call back into the
// texture.
func (t *Texture) notifyLocked(err error) {
	var cb func(error)
	if !t.notified {
		t.notified = true
		cb = t.onReady
	}
	t.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

// tick runs once per render loop step. It retries any pending draw, then
// asks the scheduler whether the current frame's delay has elapsed and
// composites the next patch if so. Draw failures are transient: the frame
// is left pending and retried on the next tick.
func (t *Texture) tick(now time.Time) {
	t.mu.Lock()

	if t.closed || t.engine == nil {
		t.mu.Unlock()
		return
	}

	if t.pending >= 0 {
		if err := t.drawLocked(t.pending); err != nil {
			t.log.Debug("patch draw failed, will retry", "frame", t.pending, "err", err)
			t.mu.Unlock()
			return
		}
		t.pending = -1
		if !t.ready {
			t.ready = true
			t.log.Debug("animation ready")
			t.notifyLocked(nil)
			t.mu.Lock()
			if t.closed {
				t.mu.Unlock()
				return
			}
		}
	}

	if advanced, idx := t.sched.Tick(now); advanced {
		if err := t.drawLocked(idx); err != nil {
			t.pending = idx
			t.log.Debug("patch draw failed, will retry", "frame", idx, "err", err)
		}
	}
	t.mu.Unlock()
}

// drawLocked composites frame idx onto the canvas: an optional rect clear
// first (frames following a dispose-to-background frame), then the patch
// with its blend mode.
func (t *Texture) drawLocked(idx int) error {
	f := &t.frames[idx]

	if f.Clear != nil {
		err := t.engine.Draw(comp.DrawParams{
			View:      t.store.View(idx),
			Transform: affineOf(Placement(*f.Clear, t.canvasW, t.canvasH)),
			Mode:      comp.ModeClear,
		})
		if err != nil {
			return err
		}
	}

	mode := comp.ModeBlend
	switch f.Blend {
	case BlendOpaque:
		mode = comp.ModeOpaque
	case BlendReplace:
		mode = comp.ModeReplace
	}

	return t.engine.Draw(comp.DrawParams{
		View:      t.store.View(idx),
		Transform: affineOf(Placement(f.Bounds(), t.canvasW, t.canvasH)),
		Mode:      mode,
	})
}

// affineOf converts a Matrix to the compositor's float32 affine.
func affineOf(m Matrix) comp.Affine {
	return comp.Affine{
		A: float32(m.A), B: float32(m.B), C: float32(m.C),
		D: float32(m.D), E: float32(m.E), F: float32(m.F),
	}
}

// View returns the texture view hosts bind for sampling: the accumulation
// canvas once the animation is ready, the 1x1 transparent placeholder
// before that, and nil after Close.
func (t *Texture) View() hal.TextureView {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	if t.ready && t.engine != nil {
		return t.engine.View()
	}
	if t.placeholder != nil {
		return t.placeholder.View()
	}
	return nil
}

// Ready reports whether the first frame has been composited and View
// returns the live canvas.
func (t *Texture) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ready
}

// Size returns the dimensions of the texture View currently exposes:
// 1x1 before the animation is ready, the canvas size after.
func (t *Texture) Size() (w, h int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ready && t.engine != nil {
		return t.canvasW, t.canvasH
	}
	return 1, 1
}

// FrameCount returns the number of decoded frames, zero before decoding
// completes.
func (t *Texture) FrameCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.frames)
}

// CurrentFrame returns the index of the frame currently on the canvas.
func (t *Texture) CurrentFrame() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sched == nil {
		return 0
	}
	return t.sched.Index()
}

// Close releases every resource the texture owns: the render loop
// subscription first, then patch textures, the compositing pipeline and
// geometry, the accumulation canvas, and finally the placeholder. Close is
// idempotent and safe to call while fetching or decoding is still in
// flight; the in-flight result is then discarded.
func (t *Texture) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.cancelFetch()

	sub := t.sub
	store := t.store
	engine := t.engine
	placeholder := t.placeholder
	t.sub = nil
	t.store = nil
	t.engine = nil
	t.placeholder = nil
	t.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
	if store != nil {
		store.Destroy()
	}
	if engine != nil {
		engine.Destroy()
	}
	if placeholder != nil {
		placeholder.Destroy()
	}
	t.log.Debug("animated texture closed")
}
