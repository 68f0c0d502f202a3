package comp

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// drawTimeout bounds the fence wait for a single patch draw.
const drawTimeout = 5 * time.Second

// Compositor draws patch quads onto a persistent canvas texture. The canvas
// is cleared to transparent exactly once at creation; every draw afterwards
// loads the previous contents, so patches accumulate into the full frame.
//
// The canvas texture doubles as the externally visible resource: View
// returns the same view hosts bind for sampling. There is no staging or
// swap step between compositing and visibility.
//
// Compositor is not safe for concurrent use; the owning texture serializes
// draws.
type Compositor struct {
	device hal.Device
	queue  hal.Queue

	width  uint32
	height uint32

	canvasTex  hal.Texture
	canvasView hal.TextureView

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout

	// blendPipeline composites with premultiplied source-over blending.
	// opaquePipeline writes texels straight through; the fragment shader
	// handles transparent-texel discard and rect clears.
	blendPipeline  hal.RenderPipeline
	opaquePipeline hal.RenderPipeline

	vertBuf    hal.Buffer
	idxBuf     hal.Buffer
	uniformBuf hal.Buffer

	destroyed bool
}

// Config holds compositor creation parameters.
type Config struct {
	Device hal.Device
	Queue  hal.Queue

	// CanvasWidth and CanvasHeight are the full animation dimensions.
	CanvasWidth  int
	CanvasHeight int
}

// New creates a compositor with its canvas texture, pipelines and quad
// geometry. The canvas starts fully transparent. On failure every resource
// created so far is released.
func New(cfg Config) (*Compositor, error) {
	if cfg.Device == nil || cfg.Queue == nil {
		return nil, ErrNilDevice
	}
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		return nil, fmt.Errorf("%w: canvas %dx%d", ErrInvalidSize, cfg.CanvasWidth, cfg.CanvasHeight)
	}

	c := &Compositor{
		device: cfg.Device,
		queue:  cfg.Queue,
		width:  uint32(cfg.CanvasWidth),
		height: uint32(cfg.CanvasHeight),
	}
	if err := c.createResources(); err != nil {
		c.Destroy()
		return nil, err
	}
	if err := c.clearCanvas(); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

// View returns the canvas texture view. Hosts bind this view to sample the
// current animation frame; its identity is stable for the compositor's
// lifetime.
func (c *Compositor) View() hal.TextureView { return c.canvasView }

// Size returns the canvas dimensions in pixels.
func (c *Compositor) Size() (w, h int) { return int(c.width), int(c.height) }

func (c *Compositor) createResources() error {
	// Validate the shader before handing it to the backend, matching how
	// compute shaders are checked ahead of pipeline creation.
	if _, err := naga.Compile(compositeShaderSource); err != nil {
		return fmt.Errorf("validate composite shader: %w", err)
	}

	shader, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "animtex_composite_shader",
		Source: hal.ShaderSource{WGSL: compositeShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile composite shader: %w", err)
	}
	c.shader = shader

	// Bind group layout:
	//   Binding 0: Uniforms (uniform buffer, vertex+fragment)
	//   Binding 1: patch texture (texture_2d, fragment)
	bindLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "animtex_composite_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create composite bind layout: %w", err)
	}
	c.bindLayout = bindLayout

	pipeLayout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "animtex_composite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{c.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create composite pipeline layout: %w", err)
	}
	c.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	blendPipeline, err := c.createPipeline("animtex_composite_blend", &premulBlend)
	if err != nil {
		return err
	}
	c.blendPipeline = blendPipeline

	opaquePipeline, err := c.createPipeline("animtex_composite_opaque", nil)
	if err != nil {
		return err
	}
	c.opaquePipeline = opaquePipeline

	vertBuf, err := c.createAndUploadBuffer("animtex_quad_verts", buildQuadVertexData(),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	c.vertBuf = vertBuf

	idxBuf, err := c.createAndUploadBuffer("animtex_quad_indices", buildQuadIndexData(),
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	c.idxBuf = idxBuf

	uniformBuf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "animtex_composite_uniform",
		Size:  compositeUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create composite uniform: %w", err)
	}
	c.uniformBuf = uniformBuf

	canvasTex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "animtex_canvas",
		Size:          hal.Extent3D{Width: c.width, Height: c.height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("create canvas texture: %w", err)
	}
	c.canvasTex = canvasTex

	canvasView, err := c.device.CreateTextureView(canvasTex, &hal.TextureViewDescriptor{
		Label:         "animtex_canvas_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create canvas view: %w", err)
	}
	c.canvasView = canvasView

	return nil
}

// createPipeline builds one render pipeline variant. blend nil means texels
// write straight through without blending.
func (c *Compositor) createPipeline(label string, blend *gputypes.BlendState) (hal.RenderPipeline, error) {
	pipeline, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: c.pipeLayout,
		Vertex: hal.VertexState{
			Module:     c.shader,
			EntryPoint: "vs_main",
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     c.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatRGBA8Unorm,
					Blend:     blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", label, err)
	}
	return pipeline, nil
}

// quadVertexLayout returns the vertex buffer layout for the compositing
// pipeline. Matches VertexInput in composite.wgsl:
//
//	location 0: position (vec2<f32>)
//	location 1: uv (vec2<f32>)
func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: quadVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // uv
			},
		},
	}
}

// clearCanvas runs an empty render pass with a clear load op, establishing
// the transparent initial canvas. All later passes load.
func (c *Compositor) clearCanvas() error {
	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "animtex_clear_encoder",
	})
	if err != nil {
		return fmt.Errorf("create clear encoder: %w", err)
	}
	if err := encoder.BeginEncoding("animtex_clear"); err != nil {
		return fmt.Errorf("begin clear encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "animtex_clear_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       c.canvasView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	rp.End()

	return c.submit(encoder)
}

// Draw composites a single patch onto the canvas. The canvas attachment is
// loaded, never cleared, so prior pixels survive outside the quad. Errors
// are transient from the caller's perspective: the canvas keeps its previous
// contents and the draw may simply be retried.
func (c *Compositor) Draw(p DrawParams) error {
	if c.destroyed {
		return ErrDestroyed
	}
	if p.View == nil {
		return ErrNoView
	}

	if err := c.queue.WriteBuffer(c.uniformBuf, 0, makeCompositeUniform(p.Transform, p.Mode)); err != nil {
		return fmt.Errorf("write composite uniform: %w", err)
	}

	bindGroup, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "animtex_composite_bind",
		Layout: c.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: c.uniformBuf.NativeHandle(), Offset: 0, Size: compositeUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: p.View.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create composite bind group: %w", err)
	}
	defer c.device.DestroyBindGroup(bindGroup)

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "animtex_composite_encoder",
	})
	if err != nil {
		return fmt.Errorf("create composite encoder: %w", err)
	}
	if err := encoder.BeginEncoding("animtex_composite"); err != nil {
		return fmt.Errorf("begin composite encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "animtex_composite_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    c.canvasView,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})

	pipeline := c.blendPipeline
	if p.Mode != ModeBlend {
		pipeline = c.opaquePipeline
	}
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, c.vertBuf, 0)
	rp.SetIndexBuffer(c.idxBuf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(quadIndexCount, 1, 0, 0, 0)
	rp.End()

	return c.submit(encoder)
}

// submit finishes encoding, submits and waits for completion, so the
// uniform buffer and command buffer can be reused on the next draw.
func (c *Compositor) submit(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	idx, err := c.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	// The HAL synchronizes internally; completion is observed by polling
	// the queue's submission index.
	deadline := time.Now().Add(drawTimeout)
	for c.queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return fmt.Errorf("wait for GPU: submission %d timed out", idx)
		}
		time.Sleep(100 * time.Microsecond)
	}
	return nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (c *Compositor) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := c.queue.WriteBuffer(buf, 0, data); err != nil {
		c.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}
	return buf, nil
}

// Destroy releases all GPU resources in reverse creation order: pipelines
// and geometry first, the canvas texture last. Safe to call multiple times
// or on a partially constructed compositor.
func (c *Compositor) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true

	if c.opaquePipeline != nil {
		c.device.DestroyRenderPipeline(c.opaquePipeline)
		c.opaquePipeline = nil
	}
	if c.blendPipeline != nil {
		c.device.DestroyRenderPipeline(c.blendPipeline)
		c.blendPipeline = nil
	}
	if c.pipeLayout != nil {
		c.device.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = nil
	}
	if c.bindLayout != nil {
		c.device.DestroyBindGroupLayout(c.bindLayout)
		c.bindLayout = nil
	}
	if c.shader != nil {
		c.device.DestroyShaderModule(c.shader)
		c.shader = nil
	}
	if c.uniformBuf != nil {
		c.device.DestroyBuffer(c.uniformBuf)
		c.uniformBuf = nil
	}
	if c.idxBuf != nil {
		c.device.DestroyBuffer(c.idxBuf)
		c.idxBuf = nil
	}
	if c.vertBuf != nil {
		c.device.DestroyBuffer(c.vertBuf)
		c.vertBuf = nil
	}
	if c.canvasView != nil {
		c.device.DestroyTextureView(c.canvasView)
		c.canvasView = nil
	}
	if c.canvasTex != nil {
		c.device.DestroyTexture(c.canvasTex)
		c.canvasTex = nil
	}
}
