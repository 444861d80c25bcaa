package compositor

import (
	"image"
	"math"
)

// gaussianKernel builds a normalized 1-D gaussian with sigma = radius and a
// half-width of 3 sigma, the point where the tail stops mattering visually.
func gaussianKernel(radius float64) []float64 {
	if radius <= 0 {
		return []float64{1}
	}
	half := int(math.Ceil(radius * 3))
	kernel := make([]float64, 2*half+1)
	sum := 0.0
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-d * d / (2 * radius * radius))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// gaussianBlur returns a blurred copy using two separable passes with edge
// clamping. src is not modified.
func gaussianBlur(src *image.RGBA, radius float64) *image.RGBA {
	b := src.Bounds()
	width := b.Dx()
	height := b.Dy()
	out := image.NewRGBA(b)
	if radius <= 0 {
		copy(out.Pix, src.Pix)
		return out
	}

	kernel := gaussianKernel(radius)
	half := len(kernel) / 2
	tmp := image.NewRGBA(b)

	// Horizontal pass.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g, bl, a float64
			for k, w := range kernel {
				sx := x + k - half
				if sx < 0 {
					sx = 0
				} else if sx >= width {
					sx = width - 1
				}
				i := src.PixOffset(sx, y)
				r += w * float64(src.Pix[i])
				g += w * float64(src.Pix[i+1])
				bl += w * float64(src.Pix[i+2])
				a += w * float64(src.Pix[i+3])
			}
			i := tmp.PixOffset(x, y)
			tmp.Pix[i] = clamp8(r)
			tmp.Pix[i+1] = clamp8(g)
			tmp.Pix[i+2] = clamp8(bl)
			tmp.Pix[i+3] = clamp8(a)
		}
	}

	// Vertical pass.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g, bl, a float64
			for k, w := range kernel {
				sy := y + k - half
				if sy < 0 {
					sy = 0
				} else if sy >= height {
					sy = height - 1
				}
				i := tmp.PixOffset(x, sy)
				r += w * float64(tmp.Pix[i])
				g += w * float64(tmp.Pix[i+1])
				bl += w * float64(tmp.Pix[i+2])
				a += w * float64(tmp.Pix[i+3])
			}
			i := out.PixOffset(x, y)
			out.Pix[i] = clamp8(r)
			out.Pix[i+1] = clamp8(g)
			out.Pix[i+2] = clamp8(bl)
			out.Pix[i+3] = clamp8(a)
		}
	}
	return out
}

// gaussianBlurGray blurs a grayscale image in place semantics (returns a new
// image). Used for mask falloff.
func gaussianBlurGray(src *image.Gray, radius float64) *image.Gray {
	b := src.Bounds()
	width := b.Dx()
	height := b.Dy()
	out := image.NewGray(b)
	if radius <= 0 {
		copy(out.Pix, src.Pix)
		return out
	}

	kernel := gaussianKernel(radius)
	half := len(kernel) / 2
	tmp := image.NewGray(b)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var v float64
			for k, w := range kernel {
				sx := x + k - half
				if sx < 0 {
					sx = 0
				} else if sx >= width {
					sx = width - 1
				}
				v += w * float64(src.Pix[sx+y*src.Stride])
			}
			tmp.Pix[x+y*tmp.Stride] = clamp8(v)
		}
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var v float64
			for k, w := range kernel {
				sy := y + k - half
				if sy < 0 {
					sy = 0
				} else if sy >= height {
					sy = height - 1
				}
				v += w * float64(tmp.Pix[x+sy*tmp.Stride])
			}
			out.Pix[x+y*out.Stride] = clamp8(v)
		}
	}
	return out
}

// radialMask builds the sharp-center mask: a filled disk of sharpRadius,
// gaussian-smoothed so opacity falls off monotonically toward fadeRadius.
func radialMask(width, height int, centerX, centerY, sharpRadius, fadeRadius float64) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := float64(x) - centerX
			dy := float64(y) - centerY
			if dx*dx+dy*dy <= sharpRadius*sharpRadius {
				mask.Pix[x+y*mask.Stride] = 255
			}
		}
	}
	blurAmount := (fadeRadius - sharpRadius) / 3.5
	if blurAmount < 0.1 {
		blurAmount = 0.1
	}
	return gaussianBlurGray(mask, blurAmount)
}

// compositeMask blends sharp over blurred using the mask as per-pixel
// opacity: 255 keeps the sharp pixel, 0 keeps the blurred one.
func compositeMask(sharp, blurred *image.RGBA, mask *image.Gray) *image.RGBA {
	b := sharp.Bounds()
	out := image.NewRGBA(b)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			m := float64(mask.Pix[x+y*mask.Stride]) / 255
			si := sharp.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				out.Pix[si+c] = clamp8(float64(sharp.Pix[si+c])*m + float64(blurred.Pix[si+c])*(1-m))
			}
		}
	}
	return out
}

// vignette darkens the outer quarter of the frame quadratically, leaving the
// center untouched.
func vignette(img *image.RGBA, intensity float64) {
	b := img.Bounds()
	width := b.Dx()
	height := b.Dy()
	border := width / 4
	if border < 1 {
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
			if d >= border {
				continue
			}
			t := 1 - float64(d)/float64(border)
			k := 1 - intensity*t*t
			i := img.PixOffset(x, y)
			img.Pix[i] = clamp8(float64(img.Pix[i]) * k)
			img.Pix[i+1] = clamp8(float64(img.Pix[i+1]) * k)
			img.Pix[i+2] = clamp8(float64(img.Pix[i+2]) * k)
		}
	}
}

// adjustContrast scales contrast around mid-gray in place.
func adjustContrast(img *image.RGBA, factor float64) {
	adjustContrastImage(img, factor)
}

// sharpen applies a light unsharp mask: out = img + (factor-1)·(img - blur).
func sharpen(img *image.RGBA, factor float64) *image.RGBA {
	if factor <= 1 {
		return img
	}
	blurred := gaussianBlur(img, 1)
	b := img.Bounds()
	out := image.NewRGBA(b)
	amount := factor - 1
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(img.Pix[i+c])
			out.Pix[i+c] = clamp8(v + amount*(v-float64(blurred.Pix[i+c])))
		}
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}
