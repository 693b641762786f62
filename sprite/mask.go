// Package sprite provides the game images and their pixel collision masks.
package sprite

import (
	"image"
)

// Mask is a 1-bit opacity map of a sprite. A pixel is solid when its alpha is non-zero.
type Mask struct {
	w, h   int
	stride int      // words per row
	bits   []uint64 // row-major
}

// NewMask builds a mask from the alpha channel of img.
func NewMask(img image.Image) *Mask {
	b := img.Bounds()
	m := newEmptyMask(b.Dx(), b.Dy())
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a > 0 {
				m.set(x, y)
			}
		}
	}
	return m
}

// NewSolidMask returns a fully opaque w x h mask.
func NewSolidMask(w, h int) *Mask {
	m := newEmptyMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.set(x, y)
		}
	}
	return m
}

func newEmptyMask(w, h int) *Mask {
	stride := (w + 63) / 64
	return &Mask{
		w:      w,
		h:      h,
		stride: stride,
		bits:   make([]uint64, stride*h),
	}
}

func (m *Mask) set(x, y int) {
	m.bits[y*m.stride+x/64] |= 1 << uint(x%64)
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.w }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.h }

// At reports whether pixel (x, y) is solid. Out-of-range pixels are empty.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.bits[y*m.stride+x/64]&(1<<uint(x%64)) != 0
}

// Count returns the number of solid pixels.
func (m *Mask) Count() int {
	n := 0
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if m.At(x, y) {
				n++
			}
		}
	}
	return n
}

// Overlap reports whether any solid pixel of m coincides with a solid pixel of
// other when other's top-left corner sits at (dx, dy) in m's coordinates.
func (m *Mask) Overlap(other *Mask, dx, dy int) bool {
	if m == nil || other == nil {
		return false
	}

	// Intersection of the two rectangles in m's coordinates
	x0 := max(0, dx)
	y0 := max(0, dy)
	x1 := min(m.w, dx+other.w)
	y1 := min(m.h, dy+other.h)
	if x0 >= x1 || y0 >= y1 {
		return false
	}

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if m.At(x, y) && other.At(x-dx, y-dy) {
				return true
			}
		}
	}
	return false
}
