// Package filter implements per-pixel colour transforms.
package filter

import (
	"image"
	"math"
)

// Matrix is a 4x5 colour transform in row-major order applied to straight
// (unpremultiplied) colour in the 0-255 range:
//
//	[R']   [a00 a01 a02 a03 a04]   [R]
//	[G'] = [a10 a11 a12 a13 a14] * [G]
//	[B']   [a20 a21 a22 a23 a24]   [B]
//	[A']   [a30 a31 a32 a33 a34]   [A]
//	                               [1]
type Matrix [20]float32

// Rec. 709 luminance weights.
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

// Identity returns the matrix that leaves colours unchanged.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Saturation scales saturation: 0 is grey, 1 unchanged, 2 oversaturated.
func Saturation(factor float32) Matrix {
	inv := 1 - factor
	return Matrix{
		lumR*inv + factor, lumG * inv, lumB * inv, 0, 0,
		lumR * inv, lumG*inv + factor, lumB * inv, 0, 0,
		lumR * inv, lumG * inv, lumB*inv + factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Sepia returns a sepia tone matrix.
func Sepia() Matrix {
	return Matrix{
		0.393, 0.769, 0.189, 0, 0,
		0.349, 0.686, 0.168, 0, 0,
		0.272, 0.534, 0.131, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// HueRotate rotates hue by degrees while preserving luminance.
func HueRotate(degrees float64) Matrix {
	rad := degrees * math.Pi / 180
	c, s := float32(math.Cos(rad)), float32(math.Sin(rad))
	const (
		r = 0.213
		g = 0.715
		b = 0.072
	)
	return Matrix{
		r + c*(1-r) - s*r, g - c*g - s*g, b - c*b + s*(1-b), 0, 0,
		r - c*r + s*0.143, g + c*(1-g) + s*0.140, b - c*b - s*0.283, 0, 0,
		r - c*r - s*(1-r), g - c*g + s*g, b + c*(1-b) + s*b, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Then returns the matrix applying m and then next.
func (m Matrix) Then(next Matrix) Matrix {
	var out Matrix
	for row := range 4 {
		for col := range 4 {
			var sum float32
			for k := range 4 {
				sum += next[row*5+k] * m[k*5+col]
			}
			out[row*5+col] = sum
		}
		out[row*5+4] = next[row*5]*m[4] + next[row*5+1]*m[9] +
			next[row*5+2]*m[14] + next[row*5+3]*m[19] + next[row*5+4]
	}
	return out
}

// IsIdentity reports whether m leaves colours unchanged.
func (m Matrix) IsIdentity() bool { return m == Identity() }

// Apply transforms the premultiplied pixels of img in place.
func (m Matrix) Apply(img *image.RGBA) {
	if m.IsIdentity() {
		return
	}
	for i := 0; i+3 < len(img.Pix); i += 4 {
		px := img.Pix[i : i+4 : i+4]
		a := float32(px[3])
		var r, g, b float32
		if a > 0 {
			r = float32(px[0]) * 255 / a
			g = float32(px[1]) * 255 / a
			b = float32(px[2]) * 255 / a
		}

		nr := m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4]
		ng := m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9]
		nb := m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14]
		na := clamp(m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19])

		f := na / 255
		px[0] = uint8(clamp(nr)*f + 0.5)
		px[1] = uint8(clamp(ng)*f + 0.5)
		px[2] = uint8(clamp(nb)*f + 0.5)
		px[3] = uint8(na + 0.5)
	}
}

func clamp(v float32) float32 {
	return max(0, min(255, v))
}
