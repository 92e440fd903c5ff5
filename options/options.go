package options

import "flag"

// Backends accepted by the -backend flag.
const (
	BackendWindow   = "window"
	BackendHeadless = "headless"
	BackendRecord   = "record"
)

type ShaderOptions struct {
	Variant    *string
	ConfigFile *string
	Backend    *string
	Help       *bool
	Duration   *float64
	FPS        *int
	Frames     *int
	Width      *int
	Height     *int
	OutputFile *string
	FFMPEGPath *string
	Codec      *string
	Texture    *string // Overrides the variant's texture reference.
	Dialect    *string // Overrides the variant's shader dialect.
}

// Register defines every flag on fs and returns the options they fill.
func Register(fs *flag.FlagSet) *ShaderOptions {
	return &ShaderOptions{
		Variant:    fs.String("variant", "boilerplate", "Built-in variant to run"),
		ConfigFile: fs.String("config", "", "Variant file (.toml, .yaml or .yml); overrides -variant"),
		Backend:    fs.String("backend", BackendWindow, "Rendering backend: window, headless or record"),
		Help:       fs.Bool("help", false, "Show help message"),
		Duration:   fs.Float64("duration", 10.0, "Duration to render offscreen, in seconds"),
		FPS:        fs.Int("fps", 60, "Frames per second for offscreen rendering"),
		Frames:     fs.Int("frames", 0, "Number of frames to render offscreen; overrides -duration"),
		Width:      fs.Int("width", 1280, "Width of the surface"),
		Height:     fs.Int("height", 720, "Height of the surface"),
		OutputFile: fs.String("output", "", "Video file to encode headless frames into"),
		FFMPEGPath: fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:      fs.String("codec", "h264", "Video codec for -output: h264 or hevc"),
		Texture:    fs.String("texture", "", "Texture path or URL; overrides the variant's texture"),
		Dialect:    fs.String("dialect", "", "Shader dialect: webgl or native; overrides the variant's dialect"),
	}
}

// FrameCount is the number of frames an offscreen run renders.
func (o *ShaderOptions) FrameCount() int {
	if o.Frames != nil && *o.Frames > 0 {
		return *o.Frames
	}
	if o.Duration == nil || o.FPS == nil || *o.FPS <= 0 {
		return 0
	}
	return int(*o.Duration * float64(*o.FPS))
}
