package terminal

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestHalfBlocksShape(t *testing.T) {
	img := solid(64, 40, color.RGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xff})

	lines := HalfBlocks(img, 16, 5)
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	for i, line := range lines {
		if got := strings.Count(line, "▀"); got != 16 {
			t.Fatalf("line %d has %d cells, want 16: %q", i, got, line)
		}
	}
}

func TestHalfBlocksRejectsEmpty(t *testing.T) {
	if HalfBlocks(nil, 10, 10) != nil {
		t.Fatal("nil image produced output")
	}
	if HalfBlocks(solid(4, 4, color.RGBA{A: 0xff}), 0, 3) != nil {
		t.Fatal("zero columns produced output")
	}
}

func TestEncodeImageForKitty(t *testing.T) {
	seq := EncodeImageForKitty(solid(100, 50, color.RGBA{R: 0xff, A: 0xff}), 20, 10)
	if !strings.HasPrefix(seq, "\x1b_Ga=d,d=i,i=7") {
		t.Fatalf("sequence does not delete the previous frame first: %q", seq[:min(len(seq), 40)])
	}
	if !strings.Contains(seq, "a=T,f=100,i=7,q=2,c=20,r=10") {
		t.Fatal("missing transmit header")
	}
	if !strings.HasSuffix(seq, "\x1b\\") {
		t.Fatal("sequence not terminated")
	}
	if EncodeImageForKitty(nil, 10, 10) != "" {
		t.Fatal("nil image encoded")
	}
}

func TestDetectCapabilities(t *testing.T) {
	t.Setenv("TERM_PROGRAM", "")
	t.Setenv("PROMPTER_KITTY_GRAPHICS", "yes")
	caps := DetectCapabilities()
	if !caps.SupportsKittyGraphics || caps.TermProgram != "kitty" {
		t.Fatalf("caps = %+v", caps)
	}

	t.Setenv("PROMPTER_KITTY_GRAPHICS", "")
	if DetectCapabilities().SupportsKittyGraphics {
		t.Fatal("kitty graphics enabled without opt-in")
	}
}
