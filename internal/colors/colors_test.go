package colors

import (
	"math"
	"strings"
	"testing"
)

func TestHexRoundTrip(t *testing.T) {
	for _, c := range []uint32{0x000000, 0x121212, 0x4a9f4a, 0xf0f0f0, 0xffffff} {
		hex := Hex(c)
		got, err := ParseHex(hex)
		if err != nil {
			t.Fatalf("ParseHex(%q): %v", hex, err)
		}
		if got != c {
			t.Errorf("ParseHex(Hex(%06x)) = %06x", c, got)
		}
	}

	for _, bad := range []string{"", "#fff", "#gggggg", "1234567"} {
		if _, err := ParseHex(bad); err == nil {
			t.Errorf("ParseHex(%q) succeeded", bad)
		}
	}
}

func TestPackClamps(t *testing.T) {
	if got := Pack(300, -4, 128); got != 0xff0080 {
		t.Fatalf("Pack = %06x", got)
	}
	r, g, b := Unpack(0x4a9f4a)
	if r != 0x4a || g != 0x9f || b != 0x4a {
		t.Fatalf("Unpack = %d %d %d", r, g, b)
	}
}

func TestGradientEndpoints(t *testing.T) {
	for _, steps := range []int{0, 2, 5, 20} {
		g := Gradient(0x8ba4e8, 0xe8a4c8, steps)
		if len(g) < 2 {
			t.Fatalf("steps %d gave %d colors", steps, len(g))
		}
		if g[0] != 0x8ba4e8 || g[len(g)-1] != 0xe8a4c8 {
			t.Fatalf("steps %d endpoints %06x..%06x", steps, g[0], g[len(g)-1])
		}
	}
}

func TestMixAndLightness(t *testing.T) {
	if Mix(0x000000, 0xffffff, 0) != 0x000000 || Mix(0x000000, 0xffffff, 1) != 0xffffff {
		t.Fatal("Mix endpoints moved")
	}

	mid := Lightness(Mix(0x000000, 0xffffff, 0.5))
	if math.Abs(mid-50) > 2 {
		t.Fatalf("midpoint lightness = %v, want about 50", mid)
	}
	if Lightness(0x000000) > 0.5 || Lightness(0xffffff) < 99 {
		t.Fatalf("lightness of black/white = %v/%v", Lightness(0x000000), Lightness(0xffffff))
	}
}

func TestScaleAndDesaturate(t *testing.T) {
	if got := Scale(0x808080, 2); got != 0xffffff {
		t.Fatalf("Scale = %06x", got)
	}
	r, g, b := Unpack(Desaturate(0xff0000, 1))
	if r != g || g != b {
		t.Fatalf("fully desaturated red = %d %d %d", r, g, b)
	}
}

func TestRenderGradientTextKeepsRunes(t *testing.T) {
	out := RenderGradientText("héllo", Gradient(0xff0000, 0x0000ff, 3), true)
	for _, r := range "héllo" {
		if !strings.ContainsRune(out, r) {
			t.Fatalf("output lost %q: %q", r, out)
		}
	}
	if RenderGradientText("plain", nil, false) != "plain" {
		t.Fatal("empty gradient changed text")
	}
}

func TestFormatTime(t *testing.T) {
	tests := map[float64]string{-3: "0:00", 0: "0:00", 9.9: "0:09", 61: "1:01", 3600: "60:00"}
	for in, want := range tests {
		if got := FormatTime(in); got != want {
			t.Errorf("FormatTime(%v) = %q, want %q", in, got, want)
		}
	}
}
