// Package glyph measures and rasterizes text for the compositor.
//
// Two Metrics implementations exist: Font, backed by an OpenType face, and
// Estimator, used when no font could be loaded. Load picks one at startup.
package glyph

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrNoFont reports that text will be measured by estimate and not drawn.
var ErrNoFont = errors.New("no usable font")

// DisableFont is the font path that forces the Estimator.
const DisableFont = "none"

// Metrics is the text capability the layout and compositor consume.
type Metrics interface {
	// Width returns the advance width of text in pixels at size.
	Width(text string, size float64) float64
	// Rasterize calls plot for each covered pixel of text laid out with its
	// top-left corner at (0, 0). Coverage is in (0, 1].
	Rasterize(text string, size float64, plot func(x, y int, coverage float64))
}

// Load returns a Font for path, the embedded bold font when path is empty,
// or an Estimator together with an error wrapping ErrNoFont when the font
// cannot be used. The returned Metrics is never nil.
func Load(path string) (Metrics, error) {
	switch path {
	case DisableFont:
		return Estimator{}, fmt.Errorf("%w: disabled by configuration", ErrNoFont)
	case "":
		f, err := Default()
		if err != nil {
			return Estimator{}, fmt.Errorf("%w: %v", ErrNoFont, err)
		}
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Estimator{}, fmt.Errorf("%w: %v", ErrNoFont, err)
	}
	f, err := Parse(data)
	if err != nil {
		return Estimator{}, fmt.Errorf("%w: %s: %v", ErrNoFont, path, err)
	}
	return f, nil
}

// Estimator assumes every character is half as wide as the font size and
// draws nothing.
type Estimator struct{}

func (Estimator) Width(text string, size float64) float64 {
	return float64(utf8.RuneCountInString(text)) * size * 0.5
}

func (Estimator) Rasterize(string, float64, func(x, y int, coverage float64)) {}

type Font struct {
	font *opentype.Font

	// faces reuse their mask buffer between Glyph calls, so every use of a
	// face happens under mu
	mu    sync.Mutex
	faces map[float64]font.Face
}

func Parse(ttf []byte) (*Font, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return &Font{font: f, faces: make(map[float64]font.Face)}, nil
}

// Default parses the embedded Go Bold font.
func Default() (*Font, error) {
	return Parse(gobold.TTF)
}

func (f *Font) face(size float64) font.Face {
	if face, ok := f.faces[size]; ok {
		return face
	}
	// at 72 dpi one point is one pixel
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil
	}
	f.faces[size] = face
	return face
}

func (f *Font) Width(text string, size float64) float64 {
	if text == "" || size <= 0 {
		return 0
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	face := f.face(size)
	if face == nil {
		return Estimator{}.Width(text, size)
	}

	var total fixed.Int26_6
	for _, r := range text {
		advance, ok := face.GlyphAdvance(r)
		if !ok {
			advance, _ = face.GlyphAdvance('�')
		}
		total += advance
	}
	return fixed266ToFloat64(total)
}

func (f *Font) Rasterize(text string, size float64, plot func(x, y int, coverage float64)) {
	if text == "" || size <= 0 {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	face := f.face(size)
	if face == nil {
		return
	}

	dot := fixed.Point26_6{X: 0, Y: face.Metrics().Ascent}
	for _, r := range text {
		dr, mask, maskp, advance, ok := face.Glyph(dot, r)
		if ok {
			plotMask(dr, mask, maskp, plot)
		}
		dot.X += advance
	}
}

func plotMask(dr image.Rectangle, mask image.Image, maskp image.Point, plot func(x, y int, coverage float64)) {
	alpha, isAlpha := mask.(*image.Alpha)
	for y := dr.Min.Y; y < dr.Max.Y; y++ {
		my := maskp.Y + (y - dr.Min.Y)
		for x := dr.Min.X; x < dr.Max.X; x++ {
			mx := maskp.X + (x - dr.Min.X)

			var a uint32
			if isAlpha {
				a = uint32(alpha.AlphaAt(mx, my).A)
			} else {
				_, _, _, a16 := mask.At(mx, my).RGBA()
				a = a16 >> 8
			}
			if a == 0 {
				continue
			}
			plot(x, y, float64(a)/255)
		}
	}
}

func fixed266ToFloat64(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
