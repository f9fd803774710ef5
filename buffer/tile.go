// Package buffer provides sparse tiled pixel storage for ggraph.
//
// A Buffer divides the plane into 64x64 pixel tiles that are allocated on
// first write, so buffers may have arbitrary (including negative) origins
// and only pay for the pixels actually stored. A Cache is a Buffer that
// additionally tracks which region holds valid rendered pixels.
//
// Pixels are stored as alpha-premultiplied 8-bit RGBA, the layout of
// image.RGBA, so operations can exchange data with the image and
// golang.org/x/image packages without conversion.
package buffer

import "github.com/gogpu/ggraph/geom"

// Tile size constants.
const (
	// TileWidth is the width of a tile in pixels.
	TileWidth = 64

	// TileHeight is the height of a tile in pixels.
	TileHeight = 64

	// TilePixels is the total number of pixels in a tile.
	TilePixels = TileWidth * TileHeight

	// TileBytes is the size of a tile in bytes (RGBA = 4 bytes per pixel).
	TileBytes = TilePixels * 4

	// tileStride is the number of bytes per tile row.
	tileStride = TileWidth * 4
)

// tileKey addresses a tile by its column and row in tile space.
type tileKey struct {
	tx, ty int
}

// rect returns the pixel rectangle covered by the tile.
func (k tileKey) rect() geom.Rect {
	return geom.Rect{X: k.tx * TileWidth, Y: k.ty * TileHeight, Width: TileWidth, Height: TileHeight}
}

// floorDiv divides rounding toward negative infinity, so pixel -1 lands
// in tile -1 rather than tile 0.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// forEachTile calls fn for every tile overlapping r with the part of r
// that falls inside that tile.
func forEachTile(r geom.Rect, fn func(k tileKey, part geom.Rect)) {
	if r.IsEmpty() {
		return
	}
	tx0 := floorDiv(r.X, TileWidth)
	ty0 := floorDiv(r.Y, TileHeight)
	tx1 := floorDiv(r.MaxX()-1, TileWidth)
	ty1 := floorDiv(r.MaxY()-1, TileHeight)

	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			k := tileKey{tx: tx, ty: ty}
			fn(k, r.Intersect(k.rect()))
		}
	}
}
