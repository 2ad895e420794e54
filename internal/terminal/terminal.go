// Package terminal turns rendered frames into terminal output: lipgloss
// half-block cells everywhere, or kitty graphics when the user opts in.
package terminal

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"

	"karolbroda.com/prompter/internal/colors"
)

const kittyImageID = 7

type Capabilities struct {
	SupportsKittyGraphics bool
	SupportsRGB           bool
	TermProgram           string
}

func DetectCapabilities() *Capabilities {
	caps := &Capabilities{
		SupportsRGB: true,
		TermProgram: os.Getenv("TERM_PROGRAM"),
	}

	// kitty graphics are opt-in only
	switch os.Getenv("PROMPTER_KITTY_GRAPHICS") {
	case "1", "true", "yes", "on":
		caps.SupportsKittyGraphics = true
		if caps.TermProgram == "" {
			caps.TermProgram = "kitty"
		}
	}

	return caps
}

// Reset restores the cursor, attributes and main screen after a crash left
// the terminal in the TUI's state.
func Reset() {
	os.Stdout.WriteString("\033[?25h")
	os.Stdout.WriteString("\033[0m")
	os.Stdout.WriteString("\033[?1049l")
	os.Stdout.WriteString("\033[?1000l")
	os.Stdout.WriteString("\033[?1002l")
	os.Stdout.WriteString("\033[?1003l")
	os.Stdout.WriteString("\033[?1006l")
	os.Stdout.Sync()
}

// HalfBlocks scales img to cols x 2*rows pixels and returns one string per
// terminal row, each cell an upper half block with the top pixel as
// foreground and the bottom pixel as background.
func HalfBlocks(img image.Image, cols int, rows int) []string {
	if img == nil || cols < 1 || rows < 1 {
		return nil
	}

	scaled := resize.Resize(uint(cols), uint(rows*2), img, resize.Bilinear)
	bounds := scaled.Bounds()

	lines := make([]string, rows)
	for y := 0; y < rows; y++ {
		var line strings.Builder
		topY := bounds.Min.Y + y*2
		bottomY := topY + 1
		if bottomY >= bounds.Max.Y {
			bottomY = topY
		}

		// runs of identical cells share one styled span
		runTop, runBottom, runLen := uint32(0), uint32(0), 0
		flush := func() {
			if runLen == 0 {
				return
			}
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(colors.Hex(runTop))).
				Background(lipgloss.Color(colors.Hex(runBottom)))
			line.WriteString(style.Render(strings.Repeat("▀", runLen)))
			runLen = 0
		}

		for x := bounds.Min.X; x < bounds.Min.X+cols && x < bounds.Max.X; x++ {
			top := packedAt(scaled, x, topY)
			bottom := packedAt(scaled, x, bottomY)
			if runLen > 0 && (top != runTop || bottom != runBottom) {
				flush()
			}
			runTop, runBottom = top, bottom
			runLen++
		}
		flush()
		lines[y] = line.String()
	}

	return lines
}

func packedAt(img image.Image, x, y int) uint32 {
	r, g, b, _ := img.At(x, y).RGBA()
	return colors.Pack(int(r>>8), int(g>>8), int(b>>8))
}

// EncodeImageForKitty scales img into a cols x rows cell box (assuming
// 10x20 pixel cells), keeping its aspect ratio, and returns the escape
// sequence that replaces the previously placed frame.
func EncodeImageForKitty(img image.Image, cols int, rows int) string {
	if img == nil {
		return ""
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 || cols < 1 || rows < 1 {
		return ""
	}

	newWidth := uint(cols * 10)
	newHeight := uint(rows * 20)

	aspectRatio := float64(width) / float64(height)
	targetAspect := float64(newWidth) / float64(newHeight)
	if aspectRatio > targetAspect {
		newHeight = uint(float64(newWidth) / aspectRatio)
	} else {
		newWidth = uint(float64(newHeight) * aspectRatio)
	}
	newWidth = max(newWidth, 10)
	newHeight = max(newHeight, 10)

	resized := resize.Resize(newWidth, newHeight, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return ""
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	var result strings.Builder
	fmt.Fprintf(&result, "\x1b_Ga=d,d=i,i=%d,q=2\x1b\\", kittyImageID)

	const chunkSize = 4096
	for i := 0; i < len(encoded); i += chunkSize {
		end := min(i+chunkSize, len(encoded))
		chunk := encoded[i:end]

		more := 1
		if end >= len(encoded) {
			more = 0
		}

		if i == 0 {
			fmt.Fprintf(&result, "\x1b_Ga=T,f=100,i=%d,q=2,c=%d,r=%d,m=%d;%s\x1b\\", kittyImageID, cols, rows, more, chunk)
		} else {
			fmt.Fprintf(&result, "\x1b_Gm=%d;%s\x1b\\", more, chunk)
		}
	}

	return result.String()
}
