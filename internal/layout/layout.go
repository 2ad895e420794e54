package layout

import (
	"strings"

	"karolbroda.com/prompter/internal/glyph"
)

const (
	MaxFontSize  = 300.0
	MinFontSize  = 30.0
	FontSizeStep = 5.0
	MaxFitLines  = 2

	// LineSpacing is the line height as a multiple of the font size.
	LineSpacing = 1.1
)

type FitResult struct {
	Size  float64
	Lines []string
}

// Height is the block height of the wrapped lines.
func (r FitResult) Height() float64 {
	return BlockHeight(len(r.Lines), r.Size)
}

func BlockHeight(lines int, size float64) float64 {
	return float64(lines) * size * LineSpacing
}

// Wrap greedily packs whitespace separated words into lines no wider than
// maxWidth. A word wider than maxWidth gets a line of its own and is never
// split. The result always has at least one element.
func Wrap(text string, maxWidth float64, size float64, metrics glyph.Metrics) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}

		if metrics.Width(candidate, size) <= maxWidth {
			current = candidate
			continue
		}

		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}

	return lines
}

// Fit walks font sizes down from MaxFontSize and returns the first one whose
// wrap has at most MaxFitLines lines and fits maxHeight. When nothing fits it
// returns MinFontSize.
func Fit(text string, maxWidth float64, maxHeight float64, metrics glyph.Metrics) FitResult {
	for size := MaxFontSize; size > MinFontSize; size -= FontSizeStep {
		lines := Wrap(text, maxWidth, size, metrics)
		if len(lines) <= MaxFitLines && BlockHeight(len(lines), size) <= maxHeight {
			return FitResult{Size: size, Lines: lines}
		}
	}

	return FitResult{Size: MinFontSize, Lines: Wrap(text, maxWidth, MinFontSize, metrics)}
}
