package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// Encoder кодирует готовую последовательность кадров в видеофайл.
type Encoder interface {
	Encode(ctx context.Context, frames []*image.RGBA, fps int, outputPath string) error
}

// EncodingError несет вывод ffmpeg целиком: без него диагностировать
// проблемы кодеков по одному коду возврата невозможно.
type EncodingError struct {
	Output string
	Log    string
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("кодирование %s не удалось: %v", e.Output, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// FFmpegEncoder передает сырые RGBA-кадры в ffmpeg через stdin.
type FFmpegEncoder struct {
	EncoderName string // h264_videotoolbox, h264_nvenc или libx264
	Quality     int
	Threads     int
}

func (e *FFmpegEncoder) Encode(ctx context.Context, frames []*image.RGBA, fps int, outputPath string) error {
	if len(frames) == 0 {
		return fmt.Errorf("нет кадров для кодирования")
	}

	width := frames[0].Bounds().Dx()
	height := frames[0].Bounds().Dy()
	args := e.buildFFmpegArgs(width, height, fps, outputPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	// Запись кадров и ожидание процесса идут параллельно: иначе ffmpeg
	// может заблокироваться на заполненном pipe.
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stdin.Close()
		for _, frame := range frames {
			if err := writeRawRGBA(stdin, frame); err != nil {
				return fmt.Errorf("write raw error: %w", err)
			}
		}
		return nil
	})
	g.Go(cmd.Wait)

	if err := g.Wait(); err != nil {
		// Обрезанный файл хуже отсутствующего.
		os.Remove(outputPath)
		return &EncodingError{Output: outputPath, Log: stderr.String(), Err: err}
	}
	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(width, height, fps int, outputPath string) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", e.EncoderName,
	}

	// Качество в зависимости от энкодера
	switch e.EncoderName {
	case "h264_videotoolbox":
		bitrate := e.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", e.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", e.Quality), "-preset", "medium")
	}

	if e.Threads > 0 {
		args = append(args, "-threads", fmt.Sprintf("%d", e.Threads))
	}

	args = append(args, outputPath)
	return args
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if img.Stride == bounds.Dx()*4 && bounds.Min.X == 0 && bounds.Min.Y == 0 {
		_, err := w.Write(img.Pix)
		return err
	}
	// Кадр с нестандартным stride переписываем построчно.
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		start := img.PixOffset(bounds.Min.X, y)
		if _, err := w.Write(img.Pix[start : start+bounds.Dx()*4]); err != nil {
			return err
		}
	}
	return nil
}
