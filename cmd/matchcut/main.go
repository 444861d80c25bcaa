package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	mrand "math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ivlev/matchcut/internal/compositor"
	"github.com/ivlev/matchcut/internal/config"
	"github.com/ivlev/matchcut/internal/engine"
	"github.com/ivlev/matchcut/internal/fontcat"
	"github.com/ivlev/matchcut/internal/system"
	"github.com/ivlev/matchcut/internal/text"
	"github.com/ivlev/matchcut/internal/video"
)

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Переменные окружения из .env (ключи API и т.п.)
	godotenv.Load()

	// Создаем нужные директории, если их нет
	dirs := []string{"fonts", "media", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	textPtr := flag.String("text", "", "Фраза для выделения (обязательно)")
	widthPtr := flag.Int("width", 1024, "Ширина")
	heightPtr := flag.Int("height", 1024, "Высота")
	fpsPtr := flag.Int("fps", 10, "FPS")
	durationPtr := flag.Float64("duration", 5, "Длительность видео (сек)")
	blurPtr := flag.String("blur", "radial", "Режим размытия: none, gaussian, radial")
	blurRadiusPtr := flag.Float64("blur-radius", 4, "Радиус размытия")
	densityPtr := flag.Int("density", 2, "Плотность текста: 1 - низкая, 2 - средняя, 3 - высокая")
	minLinesPtr := flag.Int("min-lines", 0, "Минимум строк (0 - по плотности)")
	maxLinesPtr := flag.Int("max-lines", 0, "Максимум строк (0 - по плотности)")
	highlightColorPtr := flag.String("highlight-color", "#ffff00", "Цвет маркера выделения (#rrggbb)")
	textColorPtr := flag.String("text-color", "#111111", "Цвет текста (#rrggbb)")
	bgColorPtr := flag.String("bg-color", "#f5f0e6", "Цвет фона (#rrggbb)")
	texturePtr := flag.String("texture", "none", "Фоновая текстура: none или имя файла в media/")
	mediaDirPtr := flag.String("media-dir", "media", "Папка с текстурами")
	fontDirPtr := flag.String("font-dir", "fonts", "Папка со шрифтами")
	fontPtr := flag.String("font", "random", "Конкретный шрифт (имя файла) или random")
	outPtr := flag.String("out", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	seedPtr := flag.Int64("seed", 0, "Seed генератора (0 - случайный)")
	aiPtr := flag.Bool("ai", false, "Генерировать текст через Cohere (нужен COHERE_API_KEY)")
	aiModelPtr := flag.String("ai-model", "command-r", "Модель Cohere для генерации текста")
	poolSizePtr := flag.Int("pool-size", 10, "Максимум уникальных сниппетов")
	framesPerPtr := flag.Int("frames-per-snippet", 3, "Кадров на один сниппет")
	jitterPtr := flag.Float64("jitter", 5, "Дрожание фонового текста (пиксели)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	presetPtr := flag.String("preset", "", "YAML-пресет конфигурации (флаги имеют приоритет)")

	flag.Parse()

	cfg := config.Default()
	if *presetPtr != "" {
		loaded, err := config.Load(*presetPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка пресета: %v", err)
		}
		cfg = loaded
		fmt.Printf("[*] Используется пресет: %s\n", *presetPtr)
	}

	// Флаги перекрывают и значения по умолчанию, и пресет. flag.Visit
	// обходит только явно заданные флаги, причем в алфавитном порядке:
	// -density сбрасывает диапазон строк раньше, чем -min-lines/-max-lines
	// успеют его уточнить.
	handlers := map[string]func(){
		"text":               func() { cfg.Highlight = *textPtr },
		"width":              func() { cfg.Width = *widthPtr },
		"height":             func() { cfg.Height = *heightPtr },
		"fps":                func() { cfg.FPS = *fpsPtr },
		"duration":           func() { cfg.Duration = *durationPtr },
		"blur":               func() { cfg.BlurMode = *blurPtr },
		"blur-radius":        func() { cfg.BlurRadius = *blurRadiusPtr },
		"highlight-color":    func() { cfg.HighlightColor = *highlightColorPtr },
		"text-color":         func() { cfg.TextColor = *textColorPtr },
		"bg-color":           func() { cfg.BackgroundColor = *bgColorPtr },
		"texture":            func() { cfg.BackgroundTexture = *texturePtr },
		"media-dir":          func() { cfg.MediaDir = *mediaDirPtr },
		"font-dir":           func() { cfg.FontDir = *fontDirPtr },
		"font":               func() { cfg.SelectedFont = *fontPtr },
		"out":                func() { cfg.OutputPath = *outPtr },
		"seed":               func() { cfg.Seed = *seedPtr },
		"ai":                 func() { cfg.AIEnabled = *aiPtr },
		"ai-model":           func() { cfg.AIModel = *aiModelPtr },
		"pool-size":          func() { cfg.PoolSize = *poolSizePtr },
		"frames-per-snippet": func() { cfg.FramesPerSnippet = *framesPerPtr },
		"jitter":             func() { cfg.JitterPx = *jitterPtr },
		"density": func() {
			cfg.MinLines, cfg.MaxLines = 0, 0
			cfg.ApplyDensity(*densityPtr)
		},
		"min-lines": func() { cfg.MinLines = *minLinesPtr },
		"max-lines": func() { cfg.MaxLines = *maxLinesPtr },
	}
	flag.Visit(func(f *flag.Flag) {
		if h, ok := handlers[f.Name]; ok {
			h()
		}
	})

	if cfg.OutputPath == "" {
		cfg.OutputPath = filepath.Join("output", fmt.Sprintf("text_match_cut_%s.mp4", randomID()))
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v (укажите фразу через -text)", err)
	}

	// Каталог шрифтов
	catalog := fontcat.Discover(cfg.FontDir)
	if catalog.Len() == 0 {
		log.Printf("[!] Шрифты не найдены ни в %s, ни в системных папках — будет использован встроенный", cfg.FontDir)
	}

	// Генерация текста: всегда есть процедурный генератор, Cohere подключается
	// поверх него как основной источник.
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	textRNG := mrand.New(mrand.NewSource(seed))
	var provider text.Provider = text.NewProcedural(textRNG)
	if cfg.AIEnabled {
		apiKey := os.Getenv("COHERE_API_KEY")
		if apiKey == "" {
			log.Printf("[!] COHERE_API_KEY не задан, используется процедурный генератор")
		} else {
			fmt.Printf("[*] Текст генерирует Cohere (%s), процедурный генератор в резерве\n", cfg.AIModel)
			provider = text.WithFallback(text.NewCohere(apiKey, cfg.AIModel), provider)
		}
	}
	pool := text.NewPool(provider, cfg.Highlight, cfg.MinLines, cfg.MaxLines, cfg.PoolSize, cfg.FramesPerSnippet)

	// Рендер кадров
	comp, err := compositor.New(cfg, &compositor.DirLoader{Dir: cfg.MediaDir})
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации рендера: %v", err)
	}

	// Кодировщик
	encoderName, _ := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
	}
	quality := *qualityPtr
	if quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			quality = 75 // Хорошее качество для VideoToolbox
		case "h264_nvenc":
			quality = 28 // Эквивалент CRF для NVENC
		default:
			quality = 23 // Стандартный CRF для x264
		}
	}
	enc := &video.FFmpegEncoder{
		EncoderName: encoderName,
		Quality:     quality,
		Threads:     system.EncoderThreads(),
	}

	// Ctrl+C корректно завершает прогон: уже отрисованные кадры будут закодированы.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	project := engine.NewProject(cfg, catalog, pool, comp, enc)
	if err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}
}

// randomID возвращает короткий уникальный суффикс для имени выходного файла.
func randomID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
