package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/ivlev/matchcut/internal/config"
	"github.com/ivlev/matchcut/internal/fontcat"
	"github.com/ivlev/matchcut/internal/system"
	"github.com/ivlev/matchcut/internal/text"
	"github.com/ivlev/matchcut/internal/video"
)

const maxFontRetriesPerFrame = 5

// Renderer рисует один кадр. Реализация — compositor.Compositor.
type Renderer interface {
	Render(sn text.Snippet, fh *fontcat.Handle, jitterY float64, rng *rand.Rand) (*image.RGBA, error)
}

// FontExhaustionError означает, что для кадра не осталось ни одного
// работоспособного шрифта.
type FontExhaustionError struct {
	Frame int
	Err   error
}

func (e *FontExhaustionError) Error() string {
	return fmt.Sprintf("кадр %d: все шрифты исчерпаны: %v", e.Frame, e.Err)
}

func (e *FontExhaustionError) Unwrap() error { return e.Err }

// Project связывает пул текста, каталог шрифтов, рендер и кодировщик
// в один последовательный прогон. Рендер кадров намеренно однопоточный:
// детерминированность важнее скорости, а узкое место всё равно ffmpeg.
type Project struct {
	Config   *config.Config
	Catalog  *fontcat.Catalog
	Pool     *text.Pool
	Renderer Renderer
	Encoder  video.Encoder
}

func NewProject(cfg *config.Config, cat *fontcat.Catalog, pool *text.Pool, r Renderer, enc video.Encoder) *Project {
	return &Project{
		Config:   cfg,
		Catalog:  cat,
		Pool:     pool,
		Renderer: r,
		Encoder:  enc,
	}
}

func (p *Project) Run(ctx context.Context) error {
	startTime := time.Now()

	totalFrames := p.Config.TotalFrames()
	if totalFrames == 0 {
		return fmt.Errorf("нулевая длительность: кадров для генерации нет")
	}

	seed := p.Config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))

	fmt.Println("--- [PROJECT: MATCH CUT ENGINE] ---")
	fmt.Printf("[*] Фраза: %q\n", p.Config.Highlight)
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Кадров: %d | Seed: %d\n",
		p.Config.Width, p.Config.Height, p.Config.FPS, totalFrames, seed)
	fmt.Printf("[*] Шрифтов в каталоге: %d | Размытие: %s\n", p.Catalog.Len(), p.Config.BlurMode)
	fmt.Println("-----------------------------------")

	system.EstimateFrameMemory(p.Config.Width, p.Config.Height, totalFrames)

	// Шрифты, упавшие на загрузке или отрисовке. Набор живет в рамках
	// одного прогона и не переживает его.
	failedFonts := make(map[string]bool)

	frames := make([]*image.RGBA, 0, totalFrames)
	progressStep := totalFrames / 10
	if progressStep == 0 {
		progressStep = 1
	}

	for frame := 0; frame < totalFrames; frame++ {
		if ctx.Err() != nil {
			log.Printf("[!] Генерация прервана на кадре %d: %v", frame, ctx.Err())
			break
		}

		sn, err := p.Pool.Tick(ctx)
		if err != nil {
			return fmt.Errorf("кадр %d: %w", frame, err)
		}

		img, err := p.renderWithRetries(sn, frame, seed, r, failedFonts)
		if err != nil {
			return err
		}
		frames = append(frames, img)

		if (frame+1)%progressStep == 0 || frame+1 == totalFrames {
			fmt.Printf("[>] Кадры: %d/%d | Уникальных сниппетов: %d\n",
				frame+1, totalFrames, p.Pool.Len())
		}
	}

	if len(frames) == 0 {
		return fmt.Errorf("не удалось отрисовать ни одного кадра")
	}
	if len(frames) < totalFrames {
		log.Printf("[!] Отрисовано %d из %d кадров: видео будет короче запрошенного", len(frames), totalFrames)
	}

	// Кодируем с отвязанным контекстом: после Ctrl+C цикл уже остановлен,
	// но уже отрисованные кадры должны попасть в видео, а не пропасть.
	fmt.Printf("[*] Кодирование %d кадров в %s...\n", len(frames), p.Config.OutputPath)
	if err := p.Encoder.Encode(context.WithoutCancel(ctx), frames, p.Config.FPS, p.Config.OutputPath); err != nil {
		return err
	}

	for _, f := range frames {
		system.PutFrame(f)
	}

	if len(failedFonts) > 0 {
		log.Printf("[!] Проблемных шрифтов за прогон: %d", len(failedFonts))
		for path := range failedFonts {
			log.Printf("[!]   %s", path)
		}
	}

	fmt.Printf("[+++] Успех! Видео готово за %.2fs: %s\n", time.Since(startTime).Seconds(), p.Config.OutputPath)
	return nil
}

// renderWithRetries выбирает шрифт и рисует кадр, меняя шрифт при сбое.
// Шрифт, упавший хотя бы раз, исключается до конца прогона.
func (p *Project) renderWithRetries(sn text.Snippet, frame int, seed int64, r *rand.Rand, failedFonts map[string]bool) (*image.RGBA, error) {
	jitterY := (r.Float64()*2 - 1) * p.Config.JitterPx
	frameRNG := rand.New(rand.NewSource(seed + int64(frame)))

	for attempt := 0; attempt < maxFontRetriesPerFrame; attempt++ {
		path := p.pickFont(r, failedFonts)
		if path == "" {
			return nil, &FontExhaustionError{Frame: frame, Err: errors.New("нет доступных шрифтов")}
		}

		fh, err := p.Catalog.LoadForSize(path, p.Config.FontSize())
		if err != nil {
			log.Printf("[!] Шрифт %s не загрузился: %v", path, err)
			failedFonts[path] = true
			continue
		}

		img, err := p.Renderer.Render(sn, fh, jitterY, frameRNG)
		if err == nil {
			return img, nil
		}

		var loadErr *fontcat.LoadError
		var drawErr *fontcat.DrawError
		switch {
		case errors.As(err, &loadErr):
			failedFonts[loadErr.Path] = true
		case errors.As(err, &drawErr):
			failedFonts[drawErr.Path] = true
		default:
			// Не шрифтовая ошибка: смена шрифта не поможет.
			return nil, fmt.Errorf("кадр %d: %w", frame, err)
		}
		log.Printf("[!] Шрифт %s отброшен: %v", path, err)
	}
	return nil, &FontExhaustionError{Frame: frame, Err: fmt.Errorf("превышен лимит в %d попыток", maxFontRetriesPerFrame)}
}

// pickFont учитывает закрепленный шрифт из конфигурации и откатывается
// к случайному выбору, когда закрепленный недоступен.
func (p *Project) pickFont(r *rand.Rand, failedFonts map[string]bool) string {
	if p.Config.SelectedFont != "" && p.Config.SelectedFont != "random" {
		for _, path := range p.Catalog.Paths() {
			if !failedFonts[path] && matchesFontName(path, p.Config.SelectedFont) {
				return path
			}
		}
		// Закрепленный шрифт не найден или уже отброшен.
	}
	return p.Catalog.Select(r, failedFonts)
}

// matchesFontName сравнивает путь каталога с именем из конфигурации:
// допускается как полный путь, так и одно имя файла.
func matchesFontName(path, name string) bool {
	return path == name || filepath.Base(path) == name
}
