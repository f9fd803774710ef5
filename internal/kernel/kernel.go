// Package kernel builds one-dimensional convolution kernels and applies
// them to RGBA images for the area filters.
package kernel

import (
	"image"
	"math"

	"github.com/gogpu/ggraph/internal/cache"
	"github.com/gogpu/ggraph/internal/parallel"
)

// bandRows is the smallest band of rows convolved on its own worker.
const bandRows = 32

// Gaussian returns a normalized 1D Gaussian kernel for the standard
// deviation stdDev. The kernel covers 3 standard deviations on each side.
//
// For stdDev <= 0, returns the identity kernel [1.0].
func Gaussian(stdDev float64) []float32 {
	if stdDev <= 0 {
		return []float32{1.0}
	}

	half := Extent(stdDev)
	size := half*2 + 1
	kernel := make([]float32, size)

	twoSigmaSq := 2 * stdDev * stdDev
	sum := float64(0)
	for i := range kernel {
		x := float64(i - half)
		val := math.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = float32(val)
		sum += val
	}

	invSum := float32(1.0 / sum)
	for i := range kernel {
		kernel[i] *= invSum
	}
	return kernel
}

// Box returns a uniform kernel of 2*radius+1 taps.
func Box(radius int) []float32 {
	if radius <= 0 {
		return []float32{1.0}
	}
	size := radius*2 + 1
	kernel := make([]float32, size)
	val := float32(1.0) / float32(size)
	for i := range kernel {
		kernel[i] = val
	}
	return kernel
}

// Extent returns the number of pixels a Gaussian with standard deviation
// stdDev reaches on each side.
func Extent(stdDev float64) int {
	if stdDev <= 0 {
		return 0
	}
	return int(math.Ceil(stdDev * 3))
}

// gaussians caches kernels by standard deviation quantized to 0.01.
var gaussians = cache.New[int, []float32](64)

// CachedGaussian returns a shared Gaussian kernel for stdDev. The result
// must not be modified.
func CachedGaussian(stdDev float64) []float32 {
	key := int(math.Round(stdDev * 100))
	return gaussians.GetOrCreate(key, func() []float32 {
		return Gaussian(float64(key) / 100)
	})
}

// Horizontal convolves src along x with k and returns the pixels of dst.
// Pixels outside src are transparent.
func Horizontal(src *image.RGBA, dst image.Rectangle, k []float32) *image.RGBA {
	return convolve(src, dst, k, 1, 0)
}

// Vertical convolves src along y with k and returns the pixels of dst.
// Pixels outside src are transparent.
func Vertical(src *image.RGBA, dst image.Rectangle, k []float32) *image.RGBA {
	return convolve(src, dst, k, 0, 1)
}

func convolve(src *image.RGBA, dst image.Rectangle, k []float32, dx, dy int) *image.RGBA {
	out := image.NewRGBA(dst)
	parallel.ForBands(dst, bandRows, func(band image.Rectangle) {
		convolveBand(src, out, band, k, dx, dy)
	})
	return out
}

func convolveBand(src, out *image.RGBA, band image.Rectangle, k []float32, dx, dy int) {
	half := len(k) / 2
	b := src.Bounds()
	for y := band.Min.Y; y < band.Max.Y; y++ {
		for x := band.Min.X; x < band.Max.X; x++ {
			var acc [4]float32
			for i, w := range k {
				sx, sy := x+(i-half)*dx, y+(i-half)*dy
				if sx < b.Min.X || sx >= b.Max.X || sy < b.Min.Y || sy >= b.Max.Y {
					continue
				}
				off := src.PixOffset(sx, sy)
				acc[0] += w * float32(src.Pix[off])
				acc[1] += w * float32(src.Pix[off+1])
				acc[2] += w * float32(src.Pix[off+2])
				acc[3] += w * float32(src.Pix[off+3])
			}
			off := out.PixOffset(x, y)
			for c := range acc {
				out.Pix[off+c] = clamp8(acc[c])
			}
		}
	}
}

func clamp8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
