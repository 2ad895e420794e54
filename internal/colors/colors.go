// Package colors converts between packed 0xRRGGBB values, hex strings and
// the LCH space used for perceptual mixing.
package colors

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func Pack(r, g, b int) uint32 {
	return uint32(clampInt(r, 0, 255))<<16 | uint32(clampInt(g, 0, 255))<<8 | uint32(clampInt(b, 0, 255))
}

func Unpack(c uint32) (int, int, int) {
	return int(c>>16) & 0xff, int(c>>8) & 0xff, int(c) & 0xff
}

func Hex(c uint32) string {
	r, g, b := Unpack(c)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// ParseHex accepts "#RRGGBB" or "RRGGBB".
func ParseHex(hex string) (uint32, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return uint32(v), nil
}

// Gradient interpolates in LCH. Very different endpoints get a double
// smoothstep so the middle does not band.
func Gradient(start, end uint32, steps int) []uint32 {
	if steps < 2 {
		steps = 2
	}

	sl, sc, sh := rgbToLCH(Unpack(start))
	el, ec, eh := rgbToLCH(Unpack(end))

	// shortest way around the hue wheel
	hueDiff := eh - sh
	if hueDiff > 180 {
		hueDiff -= 360
	} else if hueDiff < -180 {
		hueDiff += 360
	}

	needsSmoothing := math.Abs(ec-sc) > 30 || math.Abs(hueDiff) > 60 || math.Abs(el-sl) > 30

	gradient := make([]uint32, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		if needsSmoothing {
			t = smoothStep(smoothStep(t))
		}
		gradient[i] = lerpLCH(sl, sc, sh, el, ec, hueDiff, t)
	}
	gradient[0], gradient[steps-1] = start, end
	return gradient
}

// Mix moves from a toward b by t in LCH space.
func Mix(a, b uint32, t float64) uint32 {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}

	l1, c1, h1 := rgbToLCH(Unpack(a))
	l2, c2, h2 := rgbToLCH(Unpack(b))

	hueDiff := h2 - h1
	if hueDiff > 180 {
		hueDiff -= 360
	} else if hueDiff < -180 {
		hueDiff += 360
	}
	return lerpLCH(l1, c1, h1, l2, c2, hueDiff, t)
}

func lerpLCH(l1, c1, h1, l2, c2, hueDiff, t float64) uint32 {
	l := l1 + t*(l2-l1)
	c := c1 + t*(c2-c1)
	h := h1 + t*hueDiff
	if h < 0 {
		h += 360
	} else if h >= 360 {
		h -= 360
	}
	return Pack(lchToRGB(l, c, h))
}

// Lightness is the LCH L component, 0 to 100.
func Lightness(c uint32) float64 {
	l, _, _ := rgbToLCH(Unpack(c))
	return l
}

func Scale(c uint32, factor float64) uint32 {
	r, g, b := Unpack(c)
	return Pack(int(float64(r)*factor), int(float64(g)*factor), int(float64(b)*factor))
}

func Desaturate(c uint32, amount float64) uint32 {
	r, g, b := Unpack(c)
	gray := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	pull := func(v int) int { return int(float64(v) + (gray-float64(v))*amount) }
	return Pack(pull(r), pull(g), pull(b))
}

func clampInt(val int, min int, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func smoothStep(t float64) float64 {
	// clamp t to 0-1 range
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	// smoothstep formula: 3t^2 - 2t^3
	return t * t * (3 - 2*t)
}

func rgbToLCH(r int, g int, b int) (float64, float64, float64) {
	// convert rgb to xyz
	rf := float64(r) / 255.0
	gf := float64(g) / 255.0
	bf := float64(b) / 255.0

	// apply gamma correction
	if rf > 0.04045 {
		rf = math.Pow((rf+0.055)/1.055, 2.4)
	} else {
		rf = rf / 12.92
	}
	if gf > 0.04045 {
		gf = math.Pow((gf+0.055)/1.055, 2.4)
	} else {
		gf = gf / 12.92
	}
	if bf > 0.04045 {
		bf = math.Pow((bf+0.055)/1.055, 2.4)
	} else {
		bf = bf / 12.92
	}

	// convert to xyz (d65 illuminant)
	x := rf*0.4124564 + gf*0.3575761 + bf*0.1804375
	y := rf*0.2126729 + gf*0.7151522 + bf*0.0721750
	z := rf*0.0193339 + gf*0.1191920 + bf*0.9503041

	// convert xyz to lab
	x = x / 0.95047
	y = y / 1.00000
	z = z / 1.08883

	labFunc := func(t float64) float64 {
		if t > 0.008856 {
			return math.Pow(t, 1.0/3.0)
		}
		return (7.787 * t) + (16.0 / 116.0)
	}

	x = labFunc(x)
	y = labFunc(y)
	z = labFunc(z)

	l := (116.0 * y) - 16.0
	labA := 500.0 * (x - y)
	labB := 200.0 * (y - z)

	// convert lab to lch
	c := math.Sqrt(labA*labA + labB*labB)
	h := math.Atan2(labB, labA) * 180.0 / math.Pi
	if h < 0 {
		h += 360
	}

	return l, c, h
}

func lchToRGB(l float64, c float64, h float64) (int, int, int) {
	// convert lch to lab
	hRad := h * math.Pi / 180.0
	labA := c * math.Cos(hRad)
	labB := c * math.Sin(hRad)

	// convert lab to xyz
	y := (l + 16.0) / 116.0
	x := labA/500.0 + y
	z := y - labB/200.0

	labInvFunc := func(t float64) float64 {
		t3 := t * t * t
		if t3 > 0.008856 {
			return t3
		}
		return (t - 16.0/116.0) / 7.787
	}

	x = labInvFunc(x) * 0.95047
	y = labInvFunc(y) * 1.00000
	z = labInvFunc(z) * 1.08883

	// convert xyz to rgb
	rLin := x*3.2404542 + y*-1.5371385 + z*-0.4985314
	gLin := x*-0.9692660 + y*1.8760108 + z*0.0415560
	bLin := x*0.0556434 + y*-0.2040259 + z*1.0572252

	// apply inverse gamma correction
	gammaInv := func(t float64) float64 {
		if t > 0.0031308 {
			return 1.055*math.Pow(t, 1.0/2.4) - 0.055
		}
		return 12.92 * t
	}

	rLin = gammaInv(rLin)
	gLin = gammaInv(gLin)
	bLin = gammaInv(bLin)

	// convert to 0-255 range
	ri := clampInt(int(rLin*255.0+0.5), 0, 255)
	gi := clampInt(int(gLin*255.0+0.5), 0, 255)
	bi := clampInt(int(bLin*255.0+0.5), 0, 255)

	return ri, gi, bi
}

// RenderGradientText colours each rune along gradient.
func RenderGradientText(text string, gradient []uint32, bold bool) string {
	if len(text) == 0 {
		return ""
	}
	if len(gradient) == 0 {
		return text
	}

	runes := []rune(text)
	var result strings.Builder

	for i, r := range runes {
		colorIdx := 0
		if len(runes) > 1 {
			colorIdx = i * (len(gradient) - 1) / (len(runes) - 1)
		}

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(Hex(gradient[colorIdx])))
		if bold {
			style = style.Bold(true)
		}
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}

// FormatTime renders seconds as m:ss.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
