package encoder

import (
	"fmt"
	"io"
	"log"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/richinsley/goshaderquad/options"
)

// Frame represents a single rendered video frame's data, ready for encoding.
// Pixels are bottom-up RGBA rows as read back from the framebuffer.
type Frame struct {
	Pixels []byte
	PTS    int64
}

// FFmpegEncoder pipes raw frames into an ffmpeg process. Frames are queued by
// the render loop with SendVideo and written to the pipe by Run.
type FFmpegEncoder struct {
	width, height int
	fps           int
	codec         string
	outputFile    string
	ffmpegPath    string

	videoFrames chan *Frame
	done        chan error

	// run consumes the raw stream; it defaults to an ffmpeg process.
	run func(input io.Reader) error
}

// videoEncoderName maps a codec preference to the software encoder used for
// it.
func videoEncoderName(codecPref string) string {
	switch strings.ToLower(codecPref) {
	case "hevc", "h265":
		return "libx265"
	default:
		return "libx264"
	}
}

func NewFFmpegEncoder(opts *options.ShaderOptions) (*FFmpegEncoder, error) {
	if opts.OutputFile == nil || *opts.OutputFile == "" {
		return nil, fmt.Errorf("no output file given")
	}
	if *opts.Width <= 0 || *opts.Height <= 0 {
		return nil, fmt.Errorf("invalid output size %dx%d", *opts.Width, *opts.Height)
	}
	if *opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid frame rate %d", *opts.FPS)
	}

	e := &FFmpegEncoder{
		width:       *opts.Width,
		height:      *opts.Height,
		fps:         *opts.FPS,
		outputFile:  *opts.OutputFile,
		videoFrames: make(chan *Frame, 4),
		done:        make(chan error, 1),
	}
	if opts.Codec != nil {
		e.codec = *opts.Codec
	}
	if opts.FFMPEGPath != nil {
		e.ffmpegPath = *opts.FFMPEGPath
	}
	e.run = e.runFFmpeg
	return e, nil
}

func (e *FFmpegEncoder) getArgs() (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", e.width, e.height),
		"framerate": e.fps,
	}

	codecName := videoEncoderName(e.codec)
	log.Printf("Using %s software encoding pipeline.", codecName)
	outputArgs = ffmpeg.KwArgs{
		"vf":      "vflip",
		"c:v":     codecName,
		"pix_fmt": "yuv420p",
		"r":       e.fps,
	}
	if codecName == "libx265" && strings.HasSuffix(strings.ToLower(e.outputFile), ".mp4") {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

func (e *FFmpegEncoder) runFFmpeg(input io.Reader) error {
	inputArgs, outputArgs := e.getArgs()
	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(e.outputFile, outputArgs).
		OverWriteOutput().WithInput(input).ErrorToStdOut()

	if e.ffmpegPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(e.ffmpegPath)
	}
	return ffmpegCmd.Run()
}

// Run is the consumer: it starts the encoder and writes queued frames to it
// until Close. Call it on its own goroutine.
func (e *FFmpegEncoder) Run() {
	pipeReader, pipeWriter := io.Pipe()

	errc := make(chan error, 1)
	go func() {
		err := e.run(pipeReader)
		// Unblock writes if the encoder exits early.
		pipeReader.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()

	frameSize := e.width * e.height * 4
	var writeErr error
	for frame := range e.videoFrames {
		if writeErr != nil {
			continue
		}
		if len(frame.Pixels) != frameSize {
			log.Printf("Warning: dropping frame %d: got %d bytes, want %d", frame.PTS, len(frame.Pixels), frameSize)
			continue
		}
		if _, err := pipeWriter.Write(frame.Pixels); err != nil {
			log.Printf("Error writing pixel data on frame %d: %v", frame.PTS, err)
			writeErr = err
		}
	}
	pipeWriter.Close()

	if err := <-errc; err != nil {
		e.done <- fmt.Errorf("encoder failed: %w", err)
		return
	}
	if writeErr != nil {
		e.done <- fmt.Errorf("failed to write frames to encoder: %w", writeErr)
		return
	}
	e.done <- nil
}

// SendVideo queues a frame. It blocks while the queue is full.
func (e *FFmpegEncoder) SendVideo(frame *Frame) {
	e.videoFrames <- frame
}

// Close flushes the queue and waits for the encoder to finish.
func (e *FFmpegEncoder) Close() error {
	close(e.videoFrames)
	return <-e.done
}
