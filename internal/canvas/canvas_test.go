package canvas

import (
	"testing"

	"karolbroda.com/prompter/internal/glyph"
)

const bg = 0x121212

func TestBlendEndpoints(t *testing.T) {
	colors := []uint32{0x000000, 0xffffff, 0x123456, 0xf0f0f0, 0x4a9f4a, 0xff0001}
	for _, fg := range colors {
		for _, back := range colors {
			if got := Blend(fg, back, 0); got != back {
				t.Errorf("Blend(%06x, %06x, 0) = %06x, want background", fg, back, got)
			}
			if got := Blend(fg, back, 255); got != fg {
				t.Errorf("Blend(%06x, %06x, 255) = %06x, want foreground", fg, back, got)
			}
		}
	}
}

func TestBlendPerChannel(t *testing.T) {
	tests := []struct {
		fg, bg uint32
		alpha  uint8
		want   uint32
	}{
		// (255*128 + 0*127) / 255 = 128
		{0xffffff, 0x000000, 128, 0x808080},
		// red and blue move independently
		{0xff0000, 0x0000ff, 51, RGB(51, 0, 204)},
		// truncating division: (10*1 + 0*254) / 255 = 0
		{0x0a0a0a, 0x000000, 1, 0x000000},
	}
	for _, tt := range tests {
		if got := Blend(tt.fg, tt.bg, tt.alpha); got != tt.want {
			t.Errorf("Blend(%06x, %06x, %d) = %06x, want %06x", tt.fg, tt.bg, tt.alpha, got, tt.want)
		}
	}
}

func TestDrawRectClips(t *testing.T) {
	tests := []struct {
		name                     string
		left, top, width, height int
		inside                   func(x, y int) bool
	}{
		{"fully inside", 2, 3, 4, 2, func(x, y int) bool { return x >= 2 && x < 6 && y >= 3 && y < 5 }},
		{"hangs off top left", -3, -2, 5, 4, func(x, y int) bool { return x < 2 && y < 2 }},
		{"hangs off bottom right", 8, 6, 10, 10, func(x, y int) bool { return x >= 8 && y >= 6 }},
		{"fully outside", 20, 20, 5, 5, func(int, int) bool { return false }},
		{"negative size", 4, 4, -3, -3, func(int, int) bool { return false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := NewBuffer(10, 8, bg)
			DrawRect(buf, tt.left, tt.top, tt.width, tt.height, 0xffffff)
			if len(buf.Pix) != 80 {
				t.Fatalf("buffer reallocated to %d pixels", len(buf.Pix))
			}
			for y := 0; y < buf.Height; y++ {
				for x := 0; x < buf.Width; x++ {
					got, _ := buf.At(x, y)
					want := uint32(bg)
					if tt.inside(x, y) {
						want = 0xffffff
					}
					if got != want {
						t.Fatalf("pixel (%d,%d) = %06x, want %06x", x, y, got, want)
					}
				}
			}
		})
	}
}

// squareMetrics plots a full-coverage square of side size and reports the
// square's side as its width.
type squareMetrics struct{}

func (squareMetrics) Width(text string, size float64) float64 {
	if text == "" {
		return 0
	}
	return size
}

func (squareMetrics) Rasterize(text string, size float64, plot func(x, y int, coverage float64)) {
	if text == "" {
		return
	}
	n := int(size)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			plot(x, y, 1)
		}
	}
}

func TestDrawTextClipsGlyphs(t *testing.T) {
	positions := [][2]int{{-5, -5}, {7, 5}, {-20, 2}, {100, 100}, {3, 2}}
	for _, pos := range positions {
		buf := NewBuffer(10, 8, bg)
		DrawText(buf, "x", pos[0], pos[1], 6, 0xffffff, squareMetrics{})

		for y := 0; y < buf.Height; y++ {
			for x := 0; x < buf.Width; x++ {
				covered := x >= pos[0] && x < pos[0]+6 && y >= pos[1] && y < pos[1]+6
				got, _ := buf.At(x, y)
				if covered && got != 0xffffff {
					t.Fatalf("at %v: covered pixel (%d,%d) = %06x", pos, x, y, got)
				}
				if !covered && got != bg {
					t.Fatalf("at %v: pixel (%d,%d) outside glyph changed to %06x", pos, x, y, got)
				}
			}
		}
	}
}

func TestDrawTextBlendsPartialCoverage(t *testing.T) {
	buf := NewBuffer(4, 4, 0x000000)
	half := metricsFunc(func(plot func(x, y int, coverage float64)) {
		plot(1, 1, 0.5)
	})
	DrawText(buf, "x", 0, 0, 10, 0xffffff, half)

	got, _ := buf.At(1, 1)
	if want := Blend(0xffffff, 0x000000, 127); got != want {
		t.Fatalf("half coverage pixel = %06x, want %06x", got, want)
	}
}

type metricsFunc func(plot func(x, y int, coverage float64))

func (metricsFunc) Width(string, float64) float64 { return 0 }

func (f metricsFunc) Rasterize(_ string, _ float64, plot func(x, y int, coverage float64)) {
	f(plot)
}

func TestDrawTextWithoutFontIsNoop(t *testing.T) {
	buf := NewBuffer(50, 50, bg)
	DrawText(buf, "hello", 0, 0, 20, 0xffffff, glyph.Estimator{})
	DrawTextCentered(buf, "hello there", 25, 20, 0xffffff, glyph.Estimator{})
	for i, px := range buf.Pix {
		if px != bg {
			t.Fatalf("pixel %d changed without a font", i)
		}
	}
}

func TestDrawTextCenteredLayout(t *testing.T) {
	buf := NewBuffer(100, 100, bg)
	// one square per line; width budget 95 fits a single 10px square
	DrawTextCentered(buf, "a", 40, 10, 0xffffff, squareMetrics{})

	// single line: left = (100-10)/2 = 45, top = 40
	for _, p := range [][2]int{{45, 40}, {54, 49}} {
		if got, _ := buf.At(p[0], p[1]); got != 0xffffff {
			t.Errorf("pixel %v = %06x, want text", p, got)
		}
	}
	for _, p := range [][2]int{{44, 40}, {55, 40}, {45, 39}, {45, 50}} {
		if got, _ := buf.At(p[0], p[1]); got != bg {
			t.Errorf("pixel %v = %06x, want background", p, got)
		}
	}
}

func TestBufferResizeAndImage(t *testing.T) {
	buf := NewBuffer(2, 2, 0x102030)
	buf.Resize(3, 1, 0xa0b0c0)
	if buf.Width != 3 || buf.Height != 1 || len(buf.Pix) != 3 {
		t.Fatalf("Resize gave %dx%d with %d pixels", buf.Width, buf.Height, len(buf.Pix))
	}

	img := buf.Image()
	r, g, b, a := img.At(2, 0).RGBA()
	if r>>8 != 0xa0 || g>>8 != 0xb0 || b>>8 != 0xc0 || a>>8 != 0xff {
		t.Fatalf("Image pixel = %x %x %x %x", r>>8, g>>8, b>>8, a>>8)
	}
}
