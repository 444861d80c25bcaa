// Package compositor renders single frames: a page-like background with the
// snippet text, a blur stage, and the sharp bold highlight drawn dead center
// on top. Rendering is deterministic for identical inputs, so equal seeds
// reproduce equal videos.
package compositor

import (
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	"log"
	"math/rand"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/matchcut/internal/config"
	"github.com/ivlev/matchcut/internal/fontcat"
	"github.com/ivlev/matchcut/internal/system"
	"github.com/ivlev/matchcut/internal/text"
)

// Compositor renders frames for one run configuration.
type Compositor struct {
	cfg      *config.Config
	textures TextureLoader

	textColor      color.RGBA
	bgColor        color.RGBA
	highlightColor color.RGBA
	shadowColor    color.NRGBA
}

// New parses the configured colors and binds the texture loader. The loader
// may be nil when only the procedural paper background is wanted.
func New(cfg *config.Config, textures TextureLoader) (*Compositor, error) {
	textColor, err := parseHexColor(cfg.TextColor)
	if err != nil {
		return nil, fmt.Errorf("text_color: %w", err)
	}
	bgColor, err := parseHexColor(cfg.BackgroundColor)
	if err != nil {
		return nil, fmt.Errorf("background_color: %w", err)
	}
	highlightColor, err := parseHexColor(cfg.HighlightColor)
	if err != nil {
		return nil, fmt.Errorf("highlight_color: %w", err)
	}
	return &Compositor{
		cfg:            cfg,
		textures:       textures,
		textColor:      textColor,
		bgColor:        bgColor,
		highlightColor: highlightColor,
		shadowColor:    color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 100},
	}, nil
}

// Render produces one finished frame. jitterY shifts the background text
// block only; the highlight overlay always lands at the exact frame center.
// rng drives the background texture noise and must be frame-local for
// reproducible output.
func (c *Compositor) Render(sn text.Snippet, fh *fontcat.Handle, jitterY float64, rng *rand.Rand) (*image.RGBA, error) {
	width, height := c.cfg.Width, c.cfg.Height

	layout, err := computeLayout(sn, c.cfg.Highlight, fh, width, height, c.cfg.VerticalSpread)
	if err != nil {
		return nil, err
	}

	base := system.GetFrame(width, height)
	c.fillBackground(base, rng)

	// The radial mode composites a sharp copy back over the blurred frame,
	// so the text has to exist on both.
	var sharp *image.RGBA
	if c.cfg.BlurMode == "radial" && c.cfg.BlurRadius > 0 {
		sharp = system.GetFrame(width, height)
		copy(sharp.Pix, base.Pix)
	}

	blockY := layout.BlockStartY + jitterY
	for i, line := range sn.Lines {
		y := blockY + float64(i)*layout.LineHeight
		c.drawTextWithShadow(base, fh.Regular, line, layout.LineX[i], y, fh.Ascent)
		if sharp != nil {
			c.drawTextWithShadow(sharp, fh.Regular, line, layout.LineX[i], y, fh.Ascent)
		}
	}

	vignette(base, 0.3)
	if sharp != nil {
		vignette(sharp, 0.3)
	}

	final := c.applyBlur(base, sharp)
	system.PutFrame(base)
	if sharp != nil {
		system.PutFrame(sharp)
	}

	c.drawOverlay(final, layout, fh)

	adjustContrast(final, 1.1)
	final = sharpen(final, 1.2)
	return final, nil
}

func (c *Compositor) fillBackground(dst *image.RGBA, rng *rand.Rand) {
	if c.cfg.BackgroundTexture != "" && c.cfg.BackgroundTexture != "none" && c.textures != nil {
		tex, err := c.textures.Load(c.cfg.BackgroundTexture, c.cfg.Width, c.cfg.Height)
		if err == nil {
			stddraw.Draw(dst, dst.Bounds(), tex, image.Point{}, stddraw.Src)
			return
		}
		log.Printf("[!] Texture %s unavailable, using paper background: %v", c.cfg.BackgroundTexture, err)
	}
	paperTexture(dst, c.bgColor, 0.08, 2, rng)
}

// applyBlur returns the frame after the configured blur stage. The returned
// image is always a fresh allocation, never one of the inputs.
func (c *Compositor) applyBlur(base, sharp *image.RGBA) *image.RGBA {
	width, height := c.cfg.Width, c.cfg.Height

	switch {
	case c.cfg.BlurMode == "gaussian" && c.cfg.BlurRadius > 0:
		// Blur on a padded canvas so the frame edges do not darken from
		// the kernel running off into nothing.
		pad := int(c.cfg.BlurRadius * 3)
		padded := image.NewRGBA(image.Rect(0, 0, width+2*pad, height+2*pad))
		stddraw.Draw(padded, padded.Bounds(), image.NewUniform(c.bgColor), image.Point{}, stddraw.Src)
		stddraw.Draw(padded, image.Rect(pad, pad, pad+width, pad+height), base, image.Point{}, stddraw.Src)
		blurred := gaussianBlur(padded, c.cfg.BlurRadius)
		out := image.NewRGBA(image.Rect(0, 0, width, height))
		stddraw.Draw(out, out.Bounds(), blurred, image.Pt(pad, pad), stddraw.Src)
		return out

	case c.cfg.BlurMode == "radial" && c.cfg.BlurRadius > 0 && sharp != nil:
		fullyBlurred := gaussianBlur(base, c.cfg.BlurRadius*1.5)
		sharpRadius := float64(min(width, height)) * c.cfg.SharpRadiusFactor
		fadeRadius := sharpRadius + float64(max(width, height))*0.15
		mask := radialMask(width, height, float64(width)/2, float64(height)/2, sharpRadius, fadeRadius)
		return compositeMask(sharp, fullyBlurred, mask)

	default:
		out := image.NewRGBA(base.Bounds())
		copy(out.Pix, base.Pix)
		return out
	}
}

// drawOverlay paints the highlight rectangle and the sharp bold phrase at
// the layout's centered position.
func (c *Compositor) drawOverlay(dst *image.RGBA, layout Layout, fh *fontcat.Handle) {
	pad := fh.Size * 0.10
	box := image.Rect(
		int(layout.HighlightX-pad),
		int(layout.HighlightY-pad),
		int(layout.HighlightX+layout.HighlightW+pad),
		int(layout.HighlightY+layout.HighlightH+pad),
	)
	stddraw.Draw(dst, box.Intersect(dst.Bounds()), image.NewUniform(c.highlightColor), image.Point{}, stddraw.Src)

	drawer := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c.textColor),
		Face: fh.Bold,
		Dot: fixed.Point26_6{
			X: floatToFixed(layout.HighlightX),
			Y: floatToFixed(layout.HighlightY + fh.BoldAscent),
		},
	}
	drawer.DrawString(c.cfg.Highlight)
}

func (c *Compositor) drawTextWithShadow(dst *image.RGBA, face font.Face, line string, x, yTop, ascent float64) {
	shadowOffset := c.cfg.FontSize() * 0.02
	if shadowOffset < 1 {
		shadowOffset = 1
	}
	baseline := yTop + ascent

	shadow := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c.shadowColor),
		Face: face,
		Dot: fixed.Point26_6{
			X: floatToFixed(x + shadowOffset),
			Y: floatToFixed(baseline + shadowOffset),
		},
	}
	shadow.DrawString(line)

	main := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c.textColor),
		Face: face,
		Dot: fixed.Point26_6{
			X: floatToFixed(x),
			Y: floatToFixed(baseline),
		},
	}
	main.DrawString(line)
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// parseHexColor parses #rrggbb into an opaque color.
func parseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
