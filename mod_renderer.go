package physlines

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/physlines/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

type LineVertex struct {
	Position [3]float32 `layout:"float3" location:"0"`
	Color    [4]float32 `layout:"float4" location:"1"`
}

type cameraUniform struct {
	ViewProj mgl32.Mat4
}

// RendererModule draws debug lines and overlay text onto the window
// surface. It needs the PlatformWindowModule installed first.
type RendererModule struct {
	Display DisplayConfig
}

type rendererState struct {
	gpu        *GpuState
	clearColor wgpu.Color

	linePipeline  *wgpu.RenderPipeline
	lineBindGroup *wgpu.BindGroup
	lineBuffer    *wgpu.Buffer
	cameraBuffer  *wgpu.Buffer
	lineVertices  []LineVertex

	textPipeline  *wgpu.RenderPipeline
	textBindGroup *wgpu.BindGroup
	textBuffer    *wgpu.Buffer
	atlasView     *wgpu.TextureView
	sampler       *wgpu.Sampler
}

func (m RendererModule) Install(app *App, cmd *Commands) {
	ws, ok := Resource[WindowState](app)
	if !ok {
		panic("RendererModule needs a WindowState, install PlatformWindowModule first")
	}
	ensureTextResources(app, cmd)
	atlas, _ := Resource[TextAtlas](app)
	if !cmd.HasResource(DebugLines{}) {
		cmd.AddResources(&DebugLines{})
	}
	if !cmd.HasResource(ActiveCamera{}) {
		cmd.AddResources(&ActiveCamera{})
	}

	state, err := newRendererState(ws, atlas, m.Display)
	if err != nil {
		panic(err)
	}
	cmd.AddResources(state)
	app.Logger().Infof("renderer ready, surface %dx%d", state.gpu.surfaceConfig.Width, state.gpu.surfaceConfig.Height)

	app.UseSystem(
		System(rendererResizeSystem).
			InStage(PreRender).
			RunAlways(),
	)
	app.UseSystem(
		System(renderSystem).
			InStage(Render).
			RunAlways(),
	)
	app.UseSystem(
		System(rendererReleaseSystem).
			InStage(PostRender).
			InState(OnEnter(StateQuit)),
	)
}

func newRendererState(ws *WindowState, atlas *TextAtlas, display DisplayConfig) (*rendererState, error) {
	gpu, err := createGpuState(ws, display.VSync)
	if err != nil {
		return nil, err
	}
	c := display.ClearColor
	r := &rendererState{
		gpu:        gpu,
		clearColor: wgpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]},
	}

	r.linePipeline, err = createRenderPipeline(pipelineDescriptor{
		name:       "Debug Lines",
		shaderCode: shaders.LinesWGSL,
		vertexType: LineVertex{},
		topology:   wgpu.PrimitiveTopologyLineList,
	}, gpu)
	if err != nil {
		return nil, err
	}
	r.cameraBuffer, err = createUniformBuffer("Camera", cameraUniform{ViewProj: mgl32.Ident4()}, gpu)
	if err != nil {
		return nil, fmt.Errorf("camera buffer: %w", err)
	}
	r.lineBindGroup, err = createBindGroup(r.linePipeline, 0, []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: r.cameraBuffer, Size: wgpu.WholeSize},
	}, gpu.device)
	if err != nil {
		return nil, fmt.Errorf("line bind group: %w", err)
	}

	r.textPipeline, err = createRenderPipeline(pipelineDescriptor{
		name:       "Overlay Text",
		shaderCode: shaders.TextWGSL,
		vertexType: TextVertex{},
		topology:   wgpu.PrimitiveTopologyTriangleList,
	}, gpu)
	if err != nil {
		return nil, err
	}
	r.atlasView, err = createAlphaTexture("Text Atlas", atlas.Image, gpu)
	if err != nil {
		return nil, err
	}
	r.sampler, err = gpu.device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}
	r.textBindGroup, err = createBindGroup(r.textPipeline, 0, []wgpu.BindGroupEntry{
		{Binding: 0, TextureView: r.atlasView},
		{Binding: 1, Sampler: r.sampler},
	}, gpu.device)
	if err != nil {
		return nil, fmt.Errorf("text bind group: %w", err)
	}
	return r, nil
}

// rendererResizeSystem follows the framebuffer size and keeps camera aspect
// ratios in sync with it.
func rendererResizeSystem(cmd *Commands, ws *WindowState, r *rendererState) {
	w, h := ws.FramebufferSize()
	if !r.gpu.resize(w, h) {
		return
	}
	aspect := float32(w) / float32(h)
	MakeQuery1[CameraComponent](cmd).Map(func(eid EntityId, cam *CameraComponent) bool {
		cam.Aspect = aspect
		return true
	})
	cmd.Logger().Debugf("surface resized to %dx%d", w, h)
}

func renderSystem(cmd *Commands, r *rendererState, active *ActiveCamera, lines *DebugLines, text *TextQueue, atlas *TextAtlas) {
	defer lines.Clear()
	defer text.Clear()

	viewProj := activeViewProjection(cmd, active)

	r.lineVertices = r.lineVertices[:0]
	MakeQuery1[DebugLinesComponent](cmd).Map(func(eid EntityId, c *DebugLinesComponent) bool {
		r.lineVertices = appendLineVertices(r.lineVertices, c.Lines)
		return true
	})
	r.lineVertices = appendLineVertices(r.lineVertices, lines.Lines())

	cfg := r.gpu.surfaceConfig
	textVertices := atlas.BuildVertices(text.Items(), int(cfg.Width), int(cfg.Height))

	if err := r.draw(viewProj, textVertices); err != nil {
		cmd.Logger().Errorf("render: %v", err)
	}
}

// appendLineVertices expands lines into line-list vertex pairs.
func appendLineVertices(dst []LineVertex, lines []Line) []LineVertex {
	for _, l := range lines {
		color := l.Color.Array()
		dst = append(dst,
			LineVertex{Position: l.Start, Color: color},
			LineVertex{Position: l.End, Color: color},
		)
	}
	return dst
}

func (r *rendererState) draw(viewProj mgl32.Mat4, textVertices []TextVertex) error {
	gpu := r.gpu
	var err error

	if err = gpu.queue.WriteBuffer(r.cameraBuffer, 0, toBufferBytes(cameraUniform{ViewProj: viewProj})); err != nil {
		return fmt.Errorf("camera upload: %w", err)
	}
	if len(r.lineVertices) > 0 {
		if r.lineBuffer, err = writeVertexBuffer("Line VB", r.lineBuffer, sliceBytes(r.lineVertices), gpu); err != nil {
			return err
		}
	}
	if len(textVertices) > 0 {
		if r.textBuffer, err = writeVertexBuffer("Text VB", r.textBuffer, sliceBytes(textVertices), gpu); err != nil {
			return err
		}
	}

	nextTexture, err := gpu.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("surface texture: %w", err)
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("surface view: %w", err)
	}
	defer view.Release()

	encoder, err := gpu.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: r.clearColor,
		}},
	})
	defer pass.Release()

	if len(r.lineVertices) > 0 {
		pass.SetPipeline(r.linePipeline)
		pass.SetBindGroup(0, r.lineBindGroup, nil)
		pass.SetVertexBuffer(0, r.lineBuffer, 0, wgpu.WholeSize)
		pass.Draw(uint32(len(r.lineVertices)), 1, 0, 0)
	}
	if len(textVertices) > 0 {
		pass.SetPipeline(r.textPipeline)
		pass.SetBindGroup(0, r.textBindGroup, nil)
		pass.SetVertexBuffer(0, r.textBuffer, 0, wgpu.WholeSize)
		pass.Draw(uint32(len(textVertices)), 1, 0, 0)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("render pass: %w", err)
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	defer cmdBuffer.Release()

	gpu.queue.Submit(cmdBuffer)
	gpu.surface.Present()
	return nil
}

func rendererReleaseSystem(cmd *Commands, r *rendererState) {
	for _, b := range []*wgpu.Buffer{r.lineBuffer, r.textBuffer, r.cameraBuffer} {
		if b != nil {
			b.Release()
		}
	}
	r.lineBindGroup.Release()
	r.textBindGroup.Release()
	r.sampler.Release()
	r.atlasView.Release()
	r.linePipeline.Release()
	r.textPipeline.Release()
	r.gpu.release()
	cmd.Logger().Debugf("renderer released")
}
