package physlines

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"reflect"
	"slices"
	"strconv"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
)

type GpuState struct {
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration
}

func createGpuState(s *WindowState, vsync bool) (*GpuState, error) {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(s.windowGlfw))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}

	width, height := s.FramebufferSize()
	caps := surface.GetCapabilities(adapter)
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(max(width, 1)),
		Height:      uint32(max(height, 1)),
		PresentMode: choosePresentMode(caps.PresentModes, vsync),
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &surfaceConfig)

	return &GpuState{
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         device.GetQueue(),
		surfaceConfig: &surfaceConfig,
	}, nil
}

// choosePresentMode prefers Fifo with vsync. Without it, it takes the first
// of Mailbox or Immediate the surface supports, and falls back to Fifo.
func choosePresentMode(supported []wgpu.PresentMode, vsync bool) wgpu.PresentMode {
	if !vsync {
		for _, mode := range []wgpu.PresentMode{wgpu.PresentModeMailbox, wgpu.PresentModeImmediate} {
			if slices.Contains(supported, mode) {
				return mode
			}
		}
	}
	return wgpu.PresentModeFifo
}

// resize reconfigures the surface. Zero sizes, as reported for minimized
// windows, are ignored.
func (g *GpuState) resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if uint32(width) == g.surfaceConfig.Width && uint32(height) == g.surfaceConfig.Height {
		return false
	}
	g.surfaceConfig.Width = uint32(width)
	g.surfaceConfig.Height = uint32(height)
	g.surface.Configure(g.adapter, g.device, g.surfaceConfig)
	return true
}

func (g *GpuState) release() {
	g.queue.Release()
	g.device.Release()
	g.adapter.Release()
	g.surface.Release()
}

type pipelineDescriptor struct {
	name       string
	shaderCode string
	vertexType any
	topology   wgpu.PrimitiveTopology
}

var alphaBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
	},
	Alpha: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
	},
}

// createRenderPipeline builds an alpha-blended pipeline with an automatic
// layout. Shaders use vs_main and fs_main as entry points.
func createRenderPipeline(desc pipelineDescriptor, gpuState *GpuState) (*wgpu.RenderPipeline, error) {
	shader, err := gpuState.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.shaderCode},
	})
	if err != nil {
		return nil, fmt.Errorf("%s shader: %w", desc.name, err)
	}
	defer shader.Release()

	pipeline, err := gpuState.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: desc.name,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{createVertexBufferLayout(desc.vertexType)},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    gpuState.surfaceConfig.Format,
					Blend:     &alphaBlend,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  desc.topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s pipeline: %w", desc.name, err)
	}
	return pipeline, nil
}

// createVertexBufferLayout derives vertex attributes from struct tags:
// `layout:"float3" location:"0"`. Untagged fields still take up space.
func createVertexBufferLayout(vertexType any) wgpu.VertexBufferLayout {
	t := reflect.TypeOf(vertexType)
	if t.Kind() != reflect.Struct {
		panic("vertex must be a struct")
	}

	var attributes []wgpu.VertexAttribute
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		layout, ok := field.Tag.Lookup("layout")
		if !ok {
			continue
		}
		location, err := strconv.Atoi(field.Tag.Get("location"))
		if err != nil {
			panic(fmt.Errorf("%s.%s: bad location: %w", t.Name(), field.Name, err))
		}
		attributes = append(attributes, wgpu.VertexAttribute{
			ShaderLocation: uint32(location),
			Offset:         uint64(field.Offset),
			Format:         parseFormat(layout),
		})
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(t.Size()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attributes,
	}
}

func parseFormat(name string) wgpu.VertexFormat {
	switch name {
	case "float2":
		return wgpu.VertexFormatFloat32x2
	case "float3":
		return wgpu.VertexFormatFloat32x3
	case "float4":
		return wgpu.VertexFormatFloat32x4
	default:
		panic("unsupported vertex layout format: " + name)
	}
}

// sliceBytes views a slice of plain vertex structs as bytes without copying.
func sliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}

// toBufferBytes serializes uniform data field by field, little-endian.
func toBufferBytes(data any) []byte {
	buf := new(bytes.Buffer)
	readUniformsBytes(reflect.ValueOf(data), buf)
	return buf.Bytes()
}

func readUniformsBytes(field reflect.Value, buf *bytes.Buffer) {
	switch field.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < field.Len(); i++ {
			readUniformsBytes(field.Index(i), buf)
		}

	case reflect.Struct:
		for i := 0; i < field.NumField(); i++ {
			readUniformsBytes(field.Field(i), buf)
		}

	case reflect.Pointer:
		readUniformsBytes(field.Elem(), buf)

	case reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Float32:
		if err := binary.Write(buf, binary.LittleEndian, field.Interface()); err != nil {
			panic(fmt.Errorf("write uniform field: %w", err))
		}

	default:
		panic(fmt.Errorf("unsupported uniform type: %s", field.Type()))
	}
}

func createUniformBuffer(name string, data any, gpuState *GpuState) (*wgpu.Buffer, error) {
	return gpuState.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    name,
		Contents: toBufferBytes(data),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
}

// writeVertexBuffer uploads data into buf, replacing buf with a larger one
// when it is too small. The returned buffer must be kept by the caller.
func writeVertexBuffer(name string, buf *wgpu.Buffer, data []byte, gpuState *GpuState) (*wgpu.Buffer, error) {
	size := uint64(len(data))
	if buf == nil || buf.GetSize() < size {
		if buf != nil {
			buf.Release()
		}
		var err error
		buf, err = gpuState.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: name,
			Size:  max(size, 4096),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	if err := gpuState.queue.WriteBuffer(buf, 0, data); err != nil {
		return buf, fmt.Errorf("%s: %w", name, err)
	}
	return buf, nil
}

// createAlphaTexture uploads a single-channel image as an R8Unorm texture.
func createAlphaTexture(name string, img *image.Alpha, gpuState *GpuState) (*wgpu.TextureView, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	extent := wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}

	texture, err := gpuState.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         name,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer texture.Release()

	err = gpuState.queue.WriteTexture(
		texture.AsImageCopy(),
		img.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(img.Stride),
			RowsPerImage: uint32(h),
		},
		&extent,
	)
	if err != nil {
		return nil, fmt.Errorf("%s upload: %w", name, err)
	}
	return texture.CreateView(nil)
}

func createBindGroup(pipeline *wgpu.RenderPipeline, group uint32, entries []wgpu.BindGroupEntry, device *wgpu.Device) (*wgpu.BindGroup, error) {
	layout := pipeline.GetBindGroupLayout(group)
	defer layout.Release()

	return device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  layout,
		Entries: entries,
	})
}
