package graphics

import "image"

// Stage identifies a programmable pipeline stage.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return "unknown"
	}
}

// ClearMask selects the buffers cleared by Context.Clear.
type ClearMask uint32

const (
	ColorBuffer ClearMask = 1 << iota
	DepthBuffer
)

// Capability is a server-side capability toggled with Context.Enable.
type Capability uint32

const (
	DepthTest Capability = iota + 1
	Blend
)

// Context is the GPU command interface bound to a Surface. Object names are
// plain uint32 ids as in OpenGL; 0 is never a valid object. Locations are
// int32 and -1 means "not present in the program".
type Context interface {
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	ClearDepth(depth float64)
	Enable(capability Capability)
	Clear(mask ClearMask)

	CreateShader(stage Stage) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	ShaderCompiled(shader uint32) bool
	ShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	ProgramLinked(program uint32) bool
	ProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	GetUniformLocation(program uint32, name string) int32
	GetAttribLocation(program uint32, name string) int32
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, v0, v1 float32)
	Uniform1i(location int32, v int32)

	CreateBuffer() uint32
	BindArrayBuffer(buffer uint32)
	BufferData(data []float32)
	VertexAttribPointer(location uint32, size int32)
	EnableVertexAttribArray(location uint32)
	DeleteBuffer(buffer uint32)

	CreateTexture() uint32
	ActiveTexture(unit uint32)
	BindTexture2D(texture uint32)
	TexImage2D(img *image.RGBA)
	GenerateMipmap()
	DeleteTexture(texture uint32)

	DrawTriangles(first, count int32)
}

// PixelReader is implemented by contexts that can read back the color
// buffer. Rows are bottom-up RGBA, as returned by glReadPixels.
type PixelReader interface {
	ReadPixels(width, height int) []byte
}

// Surface is the pixel-addressable drawing target owned by a session.
type Surface interface {
	Context() (Context, error)
	SetSize(width, height int)
	Width() int
	Height() int
}

// Host is the window-system side of a surface: the part the frame loop
// drives between callbacks.
type Host interface {
	ShouldClose() bool
	EndFrame()
	// Time returns the host clock in milliseconds.
	Time() float64
}
