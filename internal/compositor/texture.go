package compositor

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// TextureLoader resolves a texture name to a background image of the exact
// frame size. Load errors are recoverable: the compositor falls back to the
// procedural paper texture.
type TextureLoader interface {
	Load(name string, width, height int) (image.Image, error)
}

// DirLoader loads textures from a media directory. A name carrying the
// custom-texture prefix or an explicit extension is used verbatim, anything
// else resolves to <name>.jpg.
type DirLoader struct {
	Dir string
}

func (d *DirLoader) Load(name string, width, height int) (image.Image, error) {
	fileName := name
	if !strings.HasPrefix(name, "custom_texture_") && !strings.Contains(name, ".") {
		fileName = name + ".jpg"
	}
	path := filepath.Join(d.Dir, fileName)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", name, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture %s: decode: %w", name, err)
	}

	out := coverFit(src, width, height)
	adjustBrightness(out, 1.2)
	adjustContrastImage(out, 0.9)
	return out, nil
}

// coverFit scales src to cover the target rectangle preserving aspect ratio,
// then center-crops to the exact size.
func coverFit(src image.Image, width, height int) *image.RGBA {
	srcW := src.Bounds().Dx()
	srcH := src.Bounds().Dy()

	scaleW := float64(width) / float64(srcW)
	scaleH := float64(height) / float64(srcH)
	scale := scaleW
	if scaleH > scale {
		scale = scaleH
	}
	newW := int(float64(srcW) * scale)
	newH := int(float64(srcH) * scale)
	if newW < width {
		newW = width
	}
	if newH < height {
		newH = height
	}

	scaled := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)

	left := (newW - width) / 2
	top := (newH - height) / 2
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), scaled, image.Pt(left, top), draw.Src)
	return out
}

func adjustBrightness(img *image.RGBA, factor float64) {
	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = clamp8(float64(pix[i]) * factor)
		pix[i+1] = clamp8(float64(pix[i+1]) * factor)
		pix[i+2] = clamp8(float64(pix[i+2]) * factor)
	}
}

func adjustContrastImage(img *image.RGBA, factor float64) {
	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = clamp8((float64(pix[i])-128)*factor + 128)
		pix[i+1] = clamp8((float64(pix[i+1])-128)*factor + 128)
		pix[i+2] = clamp8((float64(pix[i+2])-128)*factor + 128)
	}
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// paperTexture fills dst with a paper-like background: the base color with
// gaussian pixel noise, random speckle grain and a light edge shadow.
func paperTexture(dst *image.RGBA, base color.RGBA, noiseIntensity float64, grainSize int, rng *rand.Rand) {
	b := dst.Bounds()
	width := b.Dx()
	height := b.Dy()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Blend 10% of a gaussian noise sample into the base color.
			n := 0.5 + rng.NormFloat64()*noiseIntensity
			if n < 0 {
				n = 0
			}
			if n > 1 {
				n = 1
			}
			nv := n * 255
			i := dst.PixOffset(x, y)
			dst.Pix[i] = clamp8(float64(base.R)*0.9 + nv*0.1)
			dst.Pix[i+1] = clamp8(float64(base.G)*0.9 + nv*0.1)
			dst.Pix[i+2] = clamp8(float64(base.B)*0.9 + nv*0.1)
			dst.Pix[i+3] = 255
		}
	}

	// Speckle grain: bright paper fibers, about one per 100 pixels.
	for n := 0; n < width*height/100; n++ {
		x := rng.Intn(width)
		y := rng.Intn(height)
		size := 1 + rng.Intn(grainSize)
		brightness := float64(200 + rng.Intn(56))
		for dy := 0; dy <= size; dy++ {
			for dx := 0; dx <= size; dx++ {
				px, py := x+dx, y+dy
				if px >= width || py >= height {
					continue
				}
				i := dst.PixOffset(px, py)
				dst.Pix[i] = clamp8(float64(dst.Pix[i])*0.6 + brightness*0.4)
				dst.Pix[i+1] = clamp8(float64(dst.Pix[i+1])*0.6 + brightness*0.4)
				dst.Pix[i+2] = clamp8(float64(dst.Pix[i+2])*0.6 + brightness*0.4)
			}
		}
	}

	// Edge shadow, fading over the outer 5% of the frame.
	shadowWidth := width / 20
	if shadowWidth < 1 {
		return
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			d := x
			if y < d {
				d = y
			}
			if width-1-x < d {
				d = width - 1 - x
			}
			if height-1-y < d {
				d = height - 1 - y
			}
			if d >= shadowWidth {
				continue
			}
			// 0 at the border, 1 at shadowWidth.
			k := 0.85 + 0.15*float64(d)/float64(shadowWidth)
			i := dst.PixOffset(x, y)
			dst.Pix[i] = clamp8(float64(dst.Pix[i]) * k)
			dst.Pix[i+1] = clamp8(float64(dst.Pix[i+1]) * k)
			dst.Pix[i+2] = clamp8(float64(dst.Pix[i+2]) * k)
		}
	}
}
