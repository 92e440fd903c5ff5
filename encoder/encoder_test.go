package encoder

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goshaderquad/options"
)

func testOptions(t *testing.T, args ...string) *options.ShaderOptions {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	opts := options.Register(fs)
	require.NoError(t, fs.Parse(args))
	return opts
}

func TestNewValidates(t *testing.T) {
	_, err := NewFFmpegEncoder(testOptions(t))
	assert.ErrorContains(t, err, "no output file")
	_, err = NewFFmpegEncoder(testOptions(t, "-output", "a.mp4", "-width", "0"))
	assert.ErrorContains(t, err, "invalid output size")
	_, err = NewFFmpegEncoder(testOptions(t, "-output", "a.mp4", "-fps", "0"))
	assert.ErrorContains(t, err, "invalid frame rate")
}

func TestArgs(t *testing.T) {
	e, err := NewFFmpegEncoder(testOptions(t, "-output", "out.mp4", "-width", "4", "-height", "2", "-fps", "30"))
	require.NoError(t, err)
	in, out := e.getArgs()
	assert.Equal(t, "rawvideo", in["f"])
	assert.Equal(t, "rgba", in["pix_fmt"])
	assert.Equal(t, "4x2", in["s"])
	assert.Equal(t, 30, in["framerate"])
	assert.Equal(t, "libx264", out["c:v"])
	assert.Equal(t, "vflip", out["vf"])
	assert.Equal(t, "yuv420p", out["pix_fmt"])
	assert.NotContains(t, out, "tag:v")

	e, err = NewFFmpegEncoder(testOptions(t, "-output", "out.MP4", "-codec", "hevc"))
	require.NoError(t, err)
	_, out = e.getArgs()
	assert.Equal(t, "libx265", out["c:v"])
	assert.Equal(t, "hvc1", out["tag:v"])
}

func TestRunWritesFrames(t *testing.T) {
	e, err := NewFFmpegEncoder(testOptions(t, "-output", "out.mp4", "-width", "2", "-height", "1"))
	require.NoError(t, err)
	var got bytes.Buffer
	e.run = func(r io.Reader) error {
		_, err := io.Copy(&got, r)
		return err
	}
	go e.Run()

	e.SendVideo(&Frame{Pixels: []byte{1, 2, 3, 4, 5, 6, 7, 8}, PTS: 0})
	e.SendVideo(&Frame{Pixels: []byte{9}, PTS: 1})
	e.SendVideo(&Frame{Pixels: []byte{8, 7, 6, 5, 4, 3, 2, 1}, PTS: 2})
	require.NoError(t, e.Close())

	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 8, 7, 6, 5, 4, 3, 2, 1}, got.Bytes())
}

func TestRunReportsEncoderFailure(t *testing.T) {
	e, err := NewFFmpegEncoder(testOptions(t, "-output", "out.mp4", "-width", "1", "-height", "1"))
	require.NoError(t, err)
	boom := errors.New("ffmpeg exited with status 1")
	e.run = func(r io.Reader) error { return boom }
	go e.Run()

	for i := 0; i < 10; i++ {
		e.SendVideo(&Frame{Pixels: []byte{0, 0, 0, 0}, PTS: int64(i)})
	}
	err = e.Close()
	assert.ErrorIs(t, err, boom)
}
