package system

import (
	"image"
	"sync"
)

// ImagePool reuses *image.RGBA frames keyed by their bounds to keep
// per-frame allocations off the garbage collector.
type ImagePool struct {
	pools map[image.Rectangle]*sync.Pool
	mu    sync.RWMutex
}

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Rectangle]*sync.Pool)}
}

var globalPool = NewImagePool()

// GetImage returns a pooled frame for rect or allocates one. Contents are
// undefined; callers clear it.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutImage hands img back for reuse.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// ReleaseFrames drops every pooled frame so the next GC can reclaim them.
// Called at chunk boundaries.
func ReleaseFrames() {
	globalPool.Release()
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	p.mu.RLock()
	pool, exists := p.pools[rect]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		pool, exists = p.pools[rect]
		if !exists {
			pool = &sync.Pool{
				New: func() any {
					return image.NewRGBA(rect)
				},
			}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[img.Rect]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}

func (p *ImagePool) Release() {
	p.mu.Lock()
	p.pools = make(map[image.Rectangle]*sync.Pool)
	p.mu.Unlock()
}
