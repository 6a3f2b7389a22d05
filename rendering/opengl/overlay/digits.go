package overlay

import (
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

// Seven segment cell in pixels
const (
	digitWidth     = 8
	digitHeight    = barHeight
	digitThickness = 2
	digitAdvance   = digitWidth + 4
)

// Lit segments per digit, bit 0 is the top bar (a) through bit 6 the middle (g)
var digitSegments = [10]uint8{0x3F, 0x06, 0x5B, 0x4F, 0x66, 0x6D, 0x7D, 0x07, 0x7F, 0x6F}

// segmentRect returns the rectangle of segment i for a cell at (x, y)
func segmentRect(i int, x, y float32) (float32, float32, float32, float32) {
	const w, h, t = digitWidth, digitHeight, digitThickness
	switch i {
	case 0:
		return x, y, w, t
	case 1:
		return x + w - t, y, t, h / 2
	case 2:
		return x + w - t, y + h/2, t, h / 2
	case 3:
		return x, y + h - t, w, t
	case 4:
		return x, y + h/2, t, h / 2
	case 5:
		return x, y, t, h / 2
	default:
		return x, y + h/2 - t/2, w, t
	}
}

// appendNumber draws n as seven segment digits starting at (x, y).
// Negative values draw as 0.
func appendNumber(dst []float32, x, y float32, n int, c mgl32.Vec4) []float32 {
	if n < 0 {
		n = 0
	}
	for _, r := range strconv.Itoa(n) {
		mask := digitSegments[r-'0']
		for i := 0; i < 7; i++ {
			if mask&(1<<i) != 0 {
				sx, sy, sw, sh := segmentRect(i, x, y)
				dst = appendQuad(dst, sx, sy, sw, sh, c)
			}
		}
		x += digitAdvance
	}
	return dst
}
