// Package blend implements Porter-Duff compositing operators and separable
// blend modes on premultiplied 8-bit RGBA.
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

import (
	"image"
	"sort"
)

// Mode is a compositing operator.
type Mode uint8

const (
	// Porter-Duff operators.
	Clear           Mode = iota // 0
	Source                      // S
	Destination                 // D
	SourceOver                  // S + D*(1-Sa)
	DestinationOver             // S*(1-Da) + D
	SourceIn                    // S*Da
	DestinationIn               // D*Sa
	SourceOut                   // S*(1-Da)
	DestinationOut              // D*(1-Sa)
	SourceAtop                  // S*Da + D*(1-Sa)
	DestinationAtop             // S*(1-Da) + D*Sa
	Xor                         // S*(1-Da) + D*(1-Sa)
	Plus                        // min(S+D, 1)

	// Separable blend modes.
	Multiply
	Screen
	Overlay
	Darken
	Lighten
	Difference
	Exclusion
	HardLight
)

var modeNames = map[string]Mode{
	"clear":      Clear,
	"src":        Source,
	"dst":        Destination,
	"src-over":   SourceOver,
	"dst-over":   DestinationOver,
	"src-in":     SourceIn,
	"dst-in":     DestinationIn,
	"src-out":    SourceOut,
	"dst-out":    DestinationOut,
	"src-atop":   SourceAtop,
	"dst-atop":   DestinationAtop,
	"xor":        Xor,
	"plus":       Plus,
	"multiply":   Multiply,
	"screen":     Screen,
	"overlay":    Overlay,
	"darken":     Darken,
	"lighten":    Lighten,
	"difference": Difference,
	"exclusion":  Exclusion,
	"hard-light": HardLight,
}

// ParseMode returns the mode called name.
func ParseMode(name string) (Mode, bool) {
	m, ok := modeNames[name]
	return m, ok
}

// Names lists the mode names in sorted order.
func Names() []string {
	names := make([]string, 0, len(modeNames))
	for n := range modeNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Func composites one source pixel onto one destination pixel. All values
// are premultiplied.
type Func func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

// FuncFor returns the function of mode, or SourceOver's for unknown modes.
func FuncFor(mode Mode) Func {
	switch mode {
	case Clear:
		return func(_, _, _, _, _, _, _, _ byte) (byte, byte, byte, byte) { return 0, 0, 0, 0 }
	case Source:
		return func(sr, sg, sb, sa, _, _, _, _ byte) (byte, byte, byte, byte) { return sr, sg, sb, sa }
	case Destination:
		return func(_, _, _, _, dr, dg, db, da byte) (byte, byte, byte, byte) { return dr, dg, db, da }
	case DestinationOver:
		return func(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
			return sourceOver(dr, dg, db, da, sr, sg, sb, sa)
		}
	case SourceIn:
		return func(sr, sg, sb, sa, _, _, _, da byte) (byte, byte, byte, byte) {
			return mul(sr, da), mul(sg, da), mul(sb, da), mul(sa, da)
		}
	case DestinationIn:
		return func(_, _, _, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
			return mul(dr, sa), mul(dg, sa), mul(db, sa), mul(da, sa)
		}
	case SourceOut:
		return func(sr, sg, sb, sa, _, _, _, da byte) (byte, byte, byte, byte) {
			inv := 255 - da
			return mul(sr, inv), mul(sg, inv), mul(sb, inv), mul(sa, inv)
		}
	case DestinationOut:
		return func(_, _, _, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
			inv := 255 - sa
			return mul(dr, inv), mul(dg, inv), mul(db, inv), mul(da, inv)
		}
	case SourceAtop:
		return func(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
			inv := 255 - sa
			return add(mul(sr, da), mul(dr, inv)), add(mul(sg, da), mul(dg, inv)), add(mul(sb, da), mul(db, inv)), da
		}
	case DestinationAtop:
		return func(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
			inv := 255 - da
			return add(mul(sr, inv), mul(dr, sa)), add(mul(sg, inv), mul(dg, sa)), add(mul(sb, inv), mul(db, sa)), sa
		}
	case Xor:
		return func(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
			is, id := 255-sa, 255-da
			return add(mul(sr, id), mul(dr, is)), add(mul(sg, id), mul(dg, is)),
				add(mul(sb, id), mul(db, is)), add(mul(sa, id), mul(da, is))
		}
	case Plus:
		return func(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
			return add(sr, dr), add(sg, dg), add(sb, db), add(sa, da)
		}
	case Multiply:
		return separable(mul)
	case Screen:
		return separable(func(s, d byte) byte { return 255 - mul(255-s, 255-d) })
	case Overlay:
		return separable(func(s, d byte) byte { return hardLight(d, s) })
	case Darken:
		return separable(func(s, d byte) byte { return min(s, d) })
	case Lighten:
		return separable(func(s, d byte) byte { return max(s, d) })
	case Difference:
		return separable(func(s, d byte) byte { return max(s, d) - min(s, d) })
	case Exclusion:
		return separable(func(s, d byte) byte {
			v := int(s) + int(d) - 2*int(mul(s, d))
			return byte(max(0, min(255, v)))
		})
	case HardLight:
		return separable(hardLight)
	}
	return sourceOver
}

func sourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	inv := 255 - sa
	return add(sr, mul(dr, inv)), add(sg, mul(dg, inv)), add(sb, mul(db, inv)), add(sa, mul(da, inv))
}

func hardLight(s, d byte) byte {
	if s < 128 {
		return mul(2*s, d)
	}
	return 255 - mul(2*(255-s), 255-d)
}

// separable wraps a per-channel blend B of straight colours into
// (1-Sa)*D + (1-Da)*S + Sa*Da*B(Sc, Dc).
func separable(b func(s, d byte) byte) Func {
	return func(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
		if sa == 0 {
			return dr, dg, db, da
		}
		if da == 0 {
			return sr, sg, sb, sa
		}
		is, id := 255-sa, 255-da
		both := mul(sa, da)
		ch := func(s, d byte) byte {
			v := add(mul(d, is), mul(s, id))
			return add(v, mul(both, b(straight(s, sa), straight(d, da))))
		}
		return ch(sr, dr), ch(sg, dg), ch(sb, db), add(sa, mul(da, is))
	}
}

func straight(c, a byte) byte {
	return byte(min(255, (uint16(c)*255+uint16(a)/2)/uint16(a)))
}

// mul returns a*b/255 rounded.
func mul(a, b byte) byte {
	t := uint16(a)*uint16(b) + 128
	return byte((t + t>>8) >> 8)
}

func add(a, b byte) byte {
	return byte(min(255, uint16(a)+uint16(b)))
}

// Composite composites src onto dst over their common bounds.
func Composite(dst, src *image.RGBA, mode Mode) {
	f := FuncFor(mode)
	r := dst.Rect.Intersect(src.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		di, si := dst.PixOffset(r.Min.X, y), src.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			d, s := dst.Pix[di:di+4:di+4], src.Pix[si:si+4:si+4]
			d[0], d[1], d[2], d[3] = f(s[0], s[1], s[2], s[3], d[0], d[1], d[2], d[3])
			di += 4
			si += 4
		}
	}
}
