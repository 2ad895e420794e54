// Package canvas composites rectangles and text into a packed RGB buffer.
//
// All drawing is clipped per pixel to the buffer; coordinates may be negative
// or past the edges.
package canvas

import (
	"image"
	"image/color"

	"karolbroda.com/prompter/internal/glyph"
	"karolbroda.com/prompter/internal/layout"
)

// TextWidthRatio is the share of the buffer width centered text may use.
const TextWidthRatio = 0.95

// Buffer is a row-major array of 0xRRGGBB pixels.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint32
}

func NewBuffer(width, height int, background uint32) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	b := &Buffer{Width: width, Height: height, Pix: make([]uint32, width*height)}
	b.Fill(background)
	return b
}

// Resize reallocates the pixels when the dimensions change and clears the
// buffer to background either way.
func (b *Buffer) Resize(width, height int, background uint32) {
	if width != b.Width || height != b.Height {
		b.Width, b.Height = width, height
		b.Pix = make([]uint32, width*height)
	}
	b.Fill(background)
}

func (b *Buffer) Fill(c uint32) {
	for i := range b.Pix {
		b.Pix[i] = c
	}
}

func (b *Buffer) At(x, y int) (uint32, bool) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return 0, false
	}
	return b.Pix[y*b.Width+x], true
}

// Image copies the buffer into an opaque RGBA image.
func (b *Buffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, px := range b.Pix {
		o := i * 4
		img.Pix[o] = uint8(px >> 16)
		img.Pix[o+1] = uint8(px >> 8)
		img.Pix[o+2] = uint8(px)
		img.Pix[o+3] = 0xff
	}
	return img
}

// Blend mixes fg over bg per channel: (fg*alpha + bg*(255-alpha)) / 255.
func Blend(fg, bg uint32, alpha uint8) uint32 {
	a := uint32(alpha)
	mix := func(shift uint) uint32 {
		f := (fg >> shift) & 0xff
		g := (bg >> shift) & 0xff
		return ((f*a + g*(255-a)) / 255) << shift
	}
	return mix(16) | mix(8) | mix(0)
}

func RGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func ToColor(c uint32) color.RGBA {
	return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xff}
}

func DrawRect(buf *Buffer, left, top, width, height int, c uint32) {
	x0, y0 := max(left, 0), max(top, 0)
	x1, y1 := min(left+width, buf.Width), min(top+height, buf.Height)
	for y := y0; y < y1; y++ {
		row := buf.Pix[y*buf.Width : (y+1)*buf.Width]
		for x := x0; x < x1; x++ {
			row[x] = c
		}
	}
}

// DrawText blends text with its top-left corner at (left, top). With the
// glyph.Estimator nothing is drawn.
func DrawText(buf *Buffer, text string, left, top int, size float64, c uint32, metrics glyph.Metrics) {
	metrics.Rasterize(text, size, func(x, y int, coverage float64) {
		px, py := left+x, top+y
		if px < 0 || py < 0 || px >= buf.Width || py >= buf.Height {
			return
		}
		i := py*buf.Width + px
		buf.Pix[i] = Blend(c, buf.Pix[i], uint8(coverage*255))
	})
}

// DrawTextCentered wraps text to the buffer width and centers every line
// horizontally. The first line starts at top minus half of the extra height
// the remaining lines add, so a single line starts exactly at top.
func DrawTextCentered(buf *Buffer, text string, top int, size float64, c uint32, metrics glyph.Metrics) {
	maxWidth := float64(buf.Width) * TextWidthRatio
	lines := layout.Wrap(text, maxWidth, size, metrics)
	lineHeight := size * layout.LineSpacing
	total := layout.BlockHeight(len(lines), size)
	start := float64(top) - (total-lineHeight)/2

	for i, line := range lines {
		width := metrics.Width(line, size)
		left := (float64(buf.Width) - width) / 2
		if left < 0 {
			left = 0
		}
		lineTop := start + float64(i)*lineHeight
		DrawText(buf, line, int(left), int(lineTop), size, c, metrics)
	}
}
