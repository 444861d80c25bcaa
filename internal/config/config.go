package config

import (
	"fmt"
	"strings"
)

// Config описывает один запуск генерации целиком. Значение неизменяемо после
// валидации: все компоненты получают его при создании и никогда не читают
// глобальное состояние, поэтому несколько запусков могут жить параллельно.
type Config struct {
	Highlight string `yaml:"highlight"`

	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	FPS      int     `yaml:"fps"`
	Duration float64 `yaml:"duration"`

	HighlightColor  string `yaml:"highlight_color"`
	TextColor       string `yaml:"text_color"`
	BackgroundColor string `yaml:"background_color"`

	BlurMode          string  `yaml:"blur_mode"` // none, gaussian, radial
	BlurRadius        float64 `yaml:"blur_radius"`
	SharpRadiusFactor float64 `yaml:"sharp_radius_factor"`

	Density        int     `yaml:"density"` // 1 - низкая, 2 - средняя, 3 - высокая
	VerticalSpread float64 `yaml:"vertical_spread"`
	FontSizeRatio  float64 `yaml:"font_size_ratio"`
	MinLines       int     `yaml:"min_lines"`
	MaxLines       int     `yaml:"max_lines"`
	MinLineChars   int     `yaml:"min_line_chars"`
	MaxLineChars   int     `yaml:"max_line_chars"`

	FramesPerSnippet int     `yaml:"frames_per_snippet"`
	PoolSize         int     `yaml:"pool_size"`
	JitterPx         float64 `yaml:"jitter_px"`

	BackgroundTexture string `yaml:"background_texture"` // none или имя файла в MediaDir
	MediaDir          string `yaml:"media_dir"`
	FontDir           string `yaml:"font_dir"`
	SelectedFont      string `yaml:"selected_font"` // random или имя файла в FontDir

	OutputPath string `yaml:"output"`
	Seed       int64  `yaml:"seed"`

	AIEnabled bool   `yaml:"ai_enabled"`
	AIModel   string `yaml:"ai_model"`
}

// Default возвращает конфигурацию со средней плотностью текста.
func Default() *Config {
	cfg := &Config{
		Width:             1024,
		Height:            1024,
		FPS:               10,
		Duration:          5,
		HighlightColor:    "#ffff00",
		TextColor:         "#111111",
		BackgroundColor:   "#f5f0e6",
		BlurMode:          "radial",
		BlurRadius:        4,
		SharpRadiusFactor: 0.3,
		MinLineChars:      50,
		MaxLineChars:      80,
		FramesPerSnippet:  3,
		PoolSize:          10,
		JitterPx:          5,
		BackgroundTexture: "none",
		MediaDir:          "media",
		FontDir:           "fonts",
		SelectedFont:      "random",
		AIModel:           "command-r",
	}
	cfg.ApplyDensity(2)
	return cfg
}

// ApplyDensity подбирает число строк, межстрочный интервал и размер шрифта
// под заданную плотность текста. Явно выставленные MinLines/MaxLines
// не перетираются.
func (c *Config) ApplyDensity(density int) {
	c.Density = density
	switch density {
	case 1: // крупный шрифт, мало строк, разреженно
		c.setLinesIfZero(10, 12)
		c.VerticalSpread = 1.5
		c.FontSizeRatio = 0.06
	case 3: // мелкий шрифт, много строк, плотно
		c.setLinesIfZero(14, 20)
		c.VerticalSpread = 1.1
		c.FontSizeRatio = 0.04
	default:
		c.setLinesIfZero(12, 16)
		c.VerticalSpread = 1.3
		c.FontSizeRatio = 0.05
	}
}

func (c *Config) setLinesIfZero(min, max int) {
	if c.MinLines == 0 {
		c.MinLines = min
	}
	if c.MaxLines == 0 {
		c.MaxLines = max
	}
}

// TotalFrames возвращает требуемое число кадров запуска.
func (c *Config) TotalFrames() int {
	return int(float64(c.FPS) * c.Duration)
}

// FontSize возвращает размер шрифта в пикселях, производный от высоты кадра.
func (c *Config) FontSize() float64 {
	return float64(c.Height) * c.FontSizeRatio
}

// Validate проверяет границы конфигурации до старта пайплайна, чтобы
// ошибки параметров не всплывали посреди генерации кадров.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Highlight) == "" {
		return fmt.Errorf("highlight: фраза не может быть пустой")
	}
	if c.Width < 256 || c.Width > 4096 {
		return fmt.Errorf("width: %d вне диапазона [256, 4096]", c.Width)
	}
	if c.Height < 256 || c.Height > 4096 {
		return fmt.Errorf("height: %d вне диапазона [256, 4096]", c.Height)
	}
	if c.FPS < 1 || c.FPS > 60 {
		return fmt.Errorf("fps: %d вне диапазона [1, 60]", c.FPS)
	}
	if c.Duration < 1 || c.Duration > 60 {
		return fmt.Errorf("duration: %.1f вне диапазона [1, 60]", c.Duration)
	}
	switch c.BlurMode {
	case "none", "gaussian", "radial":
	default:
		return fmt.Errorf("blur_mode: %q (ожидается none, gaussian или radial)", c.BlurMode)
	}
	if c.BlurRadius < 0 {
		return fmt.Errorf("blur_radius: %.1f не может быть отрицательным", c.BlurRadius)
	}
	if c.MinLines < 1 || c.MaxLines < c.MinLines {
		return fmt.Errorf("lines: диапазон [%d, %d] некорректен", c.MinLines, c.MaxLines)
	}
	if c.MinLineChars < 1 || c.MaxLineChars < c.MinLineChars {
		return fmt.Errorf("line_chars: диапазон [%d, %d] некорректен", c.MinLineChars, c.MaxLineChars)
	}
	if c.FramesPerSnippet < 1 {
		return fmt.Errorf("frames_per_snippet: %d должно быть >= 1", c.FramesPerSnippet)
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("pool_size: %d должно быть >= 1", c.PoolSize)
	}
	if c.VerticalSpread <= 0 {
		return fmt.Errorf("vertical_spread: %.2f должно быть > 0", c.VerticalSpread)
	}
	if c.FontSizeRatio <= 0 || c.FontSizeRatio > 0.5 {
		return fmt.Errorf("font_size_ratio: %.3f вне диапазона (0, 0.5]", c.FontSizeRatio)
	}
	for name, v := range map[string]string{
		"highlight_color":  c.HighlightColor,
		"text_color":       c.TextColor,
		"background_color": c.BackgroundColor,
	} {
		if !validHexColor(v) {
			return fmt.Errorf("%s: %q не является цветом вида #rrggbb", name, v)
		}
	}
	return nil
}

func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
