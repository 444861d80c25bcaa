package video

import (
	"bytes"
	"context"
	"image"
	"strings"
	"testing"
)

func argsToString(args []string) string {
	return " " + strings.Join(args, " ") + " "
}

func TestBuildFFmpegArgs(t *testing.T) {
	enc := &FFmpegEncoder{EncoderName: "libx264", Quality: 23, Threads: 4}
	args := argsToString(enc.buildFFmpegArgs(1024, 768, 10, "out/video.mp4"))

	for _, want := range []string{
		" -f rawvideo ",
		" -pixel_format rgba ",
		" -video_size 1024x768 ",
		" -framerate 10 ",
		" -pix_fmt yuv420p ",
		" -c:v libx264 ",
		" -crf 23 ",
		" -preset medium ",
		" -threads 4 ",
		" out/video.mp4 ",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("Args missing %q:%s", strings.TrimSpace(want), args)
		}
	}
}

func TestBuildFFmpegArgsPerEncoderQuality(t *testing.T) {
	cases := []struct {
		encoder string
		quality int
		want    string
	}{
		{"h264_videotoolbox", 75, " -b:v 7500k "},
		{"h264_nvenc", 28, " -cq 28 "},
		{"libx264", 20, " -crf 20 "},
	}

	for _, tc := range cases {
		enc := &FFmpegEncoder{EncoderName: tc.encoder, Quality: tc.quality}
		args := argsToString(enc.buildFFmpegArgs(640, 480, 30, "x.mp4"))
		if !strings.Contains(args, tc.want) {
			t.Errorf("%s: args missing %q:%s", tc.encoder, strings.TrimSpace(tc.want), args)
		}
	}
}

func TestBuildFFmpegArgsNoThreadsFlag(t *testing.T) {
	enc := &FFmpegEncoder{EncoderName: "libx264", Quality: 23}
	args := argsToString(enc.buildFFmpegArgs(640, 480, 30, "x.mp4"))
	if strings.Contains(args, " -threads ") {
		t.Error("Threads flag must be omitted when unset")
	}
}

func TestEncodeRejectsEmptyFrameList(t *testing.T) {
	enc := &FFmpegEncoder{EncoderName: "libx264", Quality: 23}
	if err := enc.Encode(context.Background(), nil, 10, "never.mp4"); err == nil {
		t.Error("Expected error for an empty frame list")
	}
}

func TestWriteRawRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}

	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, img); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), img.Pix) {
		t.Error("Raw output differs from pixel data")
	}
	if buf.Len() != 4*2*4 {
		t.Errorf("Wrote %d bytes, want %d", buf.Len(), 4*2*4)
	}
}

func TestWriteRawRGBASubImage(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range base.Pix {
		base.Pix[i] = byte(i % 251)
	}
	sub := base.SubImage(image.Rect(2, 2, 6, 6)).(*image.RGBA)

	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, sub); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 4*4*4 {
		t.Fatalf("Wrote %d bytes, want %d", buf.Len(), 4*4*4)
	}

	// First emitted pixel must be the sub-image's top-left pixel.
	start := sub.PixOffset(2, 2)
	if !bytes.Equal(buf.Bytes()[:4], sub.Pix[start:start+4]) {
		t.Error("Sub-image rows were not extracted correctly")
	}
}
