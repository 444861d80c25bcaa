package system

import (
	"image"
	"sync"
)

// Все кадры прогона имеют одно разрешение из конфигурации, поэтому буферы
// RGBA выгодно гонять по кругу: рендер каждого кадра без пула порождал бы
// мегабайты мусора и нагружал Garbage Collector (GC).
type framePool struct {
	pools map[frameKey]*sync.Pool
	mu    sync.RWMutex
}

type frameKey struct {
	width, height int
}

var globalFrames = &framePool{
	pools: make(map[frameKey]*sync.Pool),
}

// GetFrame возвращает буфер кадра указанного разрешения из пула или
// создает новый. Содержимое буфера не обнуляется: рендер обязан
// перезаписать кадр целиком.
func GetFrame(width, height int) *image.RGBA {
	return globalFrames.get(frameKey{width, height})
}

// PutFrame возвращает кадр в пул. Принимаются только буферы канонической
// раскладки (начало в нуле, Stride == 4*ширина): кодировщик пишет такие
// кадры в ffmpeg одним куском, и пул не должен подсовывать ему другие.
func PutFrame(img *image.RGBA) {
	if img == nil {
		return
	}
	b := img.Bounds()
	if b.Min.X != 0 || b.Min.Y != 0 || img.Stride != 4*b.Dx() {
		return
	}
	globalFrames.put(frameKey{b.Dx(), b.Dy()}, img)
}

func (p *framePool) get(key frameKey) *image.RGBA {
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(image.Rect(0, 0, key.width, key.height))
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *framePool) put(key frameKey, img *image.RGBA) {
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
