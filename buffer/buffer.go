package buffer

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"

	"github.com/gogpu/ggraph/geom"
)

// Buffer is sparse tiled RGBA storage addressed in absolute pixel
// coordinates. Pixels that were never written read as transparent black.
//
// The extent is advisory: it records the region the producer defined and
// is used for bounds queries, but reads and writes outside it are allowed.
//
// Buffer is safe for concurrent use.
type Buffer struct {
	mu     sync.RWMutex
	extent geom.Rect
	tiles  map[tileKey][]byte
}

// New creates an empty buffer with the given extent.
func New(extent geom.Rect) *Buffer {
	return &Buffer{
		extent: extent,
		tiles:  make(map[tileKey][]byte),
	}
}

// FromImage creates a buffer holding a copy of img at img.Bounds().
func FromImage(img image.Image) *Buffer {
	b := New(geom.FromImage(img.Bounds()))
	b.Set(toRGBA(img))
	return b
}

// Extent returns the advisory extent of the buffer.
func (b *Buffer) Extent() geom.Rect {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.extent
}

// SetExtent replaces the advisory extent. Stored pixels are kept.
func (b *Buffer) SetExtent(r geom.Rect) {
	b.mu.Lock()
	b.extent = r
	b.mu.Unlock()
}

// TileCount returns the number of allocated tiles.
func (b *Buffer) TileCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tiles)
}

// Get copies the pixels of r into a new image whose bounds are r.
func (b *Buffer) Get(r geom.Rect) *image.RGBA {
	img := image.NewRGBA(r.Image())
	if r.IsEmpty() {
		return img
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	forEachTile(r, func(k tileKey, part geom.Rect) {
		t, ok := b.tiles[k]
		if !ok {
			return
		}
		origin := k.rect()
		rowBytes := part.Width * 4
		for y := part.Y; y < part.MaxY(); y++ {
			src := (y-origin.Y)*tileStride + (part.X-origin.X)*4
			dst := img.PixOffset(part.X, y)
			copy(img.Pix[dst:dst+rowBytes], t[src:src+rowBytes])
		}
	})
	return img
}

// Set writes img into the buffer at img.Bounds().
func (b *Buffer) Set(img *image.RGBA) {
	if img == nil {
		return
	}
	r := geom.FromImage(img.Bounds())

	b.mu.Lock()
	defer b.mu.Unlock()

	forEachTile(r, func(k tileKey, part geom.Rect) {
		t := b.tileForWrite(k)
		origin := k.rect()
		rowBytes := part.Width * 4
		for y := part.Y; y < part.MaxY(); y++ {
			dst := (y-origin.Y)*tileStride + (part.X-origin.X)*4
			src := img.PixOffset(part.X, y)
			copy(t[dst:dst+rowBytes], img.Pix[src:src+rowBytes])
		}
	})
}

// Copy writes the pixels of src inside r into b.
func (b *Buffer) Copy(src *Buffer, r geom.Rect) {
	if src == nil || r.IsEmpty() {
		return
	}
	b.Set(src.Get(r))
}

// Clear resets the pixels of r to transparent black. Tiles entirely
// inside r are released.
func (b *Buffer) Clear(r geom.Rect) {
	b.mu.Lock()
	defer b.mu.Unlock()

	forEachTile(r, func(k tileKey, part geom.Rect) {
		t, ok := b.tiles[k]
		if !ok {
			return
		}
		origin := k.rect()
		if part == origin {
			delete(b.tiles, k)
			return
		}
		rowBytes := part.Width * 4
		for y := part.Y; y < part.MaxY(); y++ {
			off := (y-origin.Y)*tileStride + (part.X-origin.X)*4
			clear(t[off : off+rowBytes])
		}
	})
}

// RGBAAt returns the pixel at (x, y).
func (b *Buffer) RGBAAt(x, y int) color.RGBA {
	k := tileKey{tx: floorDiv(x, TileWidth), ty: floorDiv(y, TileHeight)}

	b.mu.RLock()
	defer b.mu.RUnlock()

	t, ok := b.tiles[k]
	if !ok {
		return color.RGBA{}
	}
	origin := k.rect()
	off := (y-origin.Y)*tileStride + (x-origin.X)*4
	return color.RGBA{R: t[off], G: t[off+1], B: t[off+2], A: t[off+3]}
}

// SetRGBA writes a single pixel.
func (b *Buffer) SetRGBA(x, y int, c color.RGBA) {
	k := tileKey{tx: floorDiv(x, TileWidth), ty: floorDiv(y, TileHeight)}

	b.mu.Lock()
	defer b.mu.Unlock()

	t := b.tileForWrite(k)
	origin := k.rect()
	off := (y-origin.Y)*tileStride + (x-origin.X)*4
	t[off], t[off+1], t[off+2], t[off+3] = c.R, c.G, c.B, c.A
}

// tileForWrite returns the tile at k, allocating it if needed.
// Caller must hold b.mu for writing.
func (b *Buffer) tileForWrite(k tileKey) []byte {
	t, ok := b.tiles[k]
	if !ok {
		t = make([]byte, TileBytes)
		b.tiles[k] = t
	}
	return t
}

// toRGBA returns img as *image.RGBA, converting if necessary.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}
