// Package artwork loads cover art and pulls a small colour palette from it
// for theming the lyric display.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/EdlinOrg/prominentcolor"

	"karolbroda.com/prompter/internal/colors"
)

// Palette holds packed 0xRRGGBB colours, brightest first.
type Palette struct {
	Primary   uint32
	Accent    uint32
	Secondary uint32
}

func DefaultPalette() *Palette {
	return &Palette{
		Primary:   0x8BA4E8,
		Accent:    0xB8A8E8,
		Secondary: 0xE8A4C8,
	}
}

// Load reads an image from a local path, a file:// URL or an http(s) URL.
func Load(ctx context.Context, source string) (image.Image, error) {
	if source == "" {
		return nil, errors.New("empty artwork source")
	}

	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		path := strings.TrimPrefix(source, "file://")
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open artwork file: %w", err)
		}
		defer f.Close()

		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode artwork image: %w", err)
		}
		return img, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork fetch returned status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}
	return img, nil
}

type scored struct {
	color      uint32
	sat        float64
	brightness float64
	score      float64
}

// ExtractPalette clusters the image with k-means and keeps the most
// saturated mid-bright colours. Images that yield too few clusters get the
// default palette.
func ExtractPalette(img image.Image) *Palette {
	if img == nil {
		return DefaultPalette()
	}

	items, err := prominentcolor.KmeansWithAll(5, img, prominentcolor.ArgumentDefault, prominentcolor.DefaultSize, nil)
	if err != nil || len(items) < 3 {
		return DefaultPalette()
	}

	candidates := make([]scored, len(items))
	for i, item := range items {
		candidates[i] = score(item.Color.R, item.Color.G, item.Color.B)
	}

	primary, ok := pick(candidates, nil, 0.2, 0.3, true)
	if !ok {
		return DefaultPalette()
	}
	secondary, _ := pick(candidates, []uint32{primary.color}, 0.15, 0.3, false)
	accent, _ := pick(candidates, []uint32{primary.color, secondary.color}, 0.1, 0.25, false)

	chosen := []scored{primary, secondary, accent}
	for i := range chosen {
		chosen[i].color = boost(chosen[i].color, chosen[i].brightness)
	}
	sort.SliceStable(chosen, func(i, j int) bool { return chosen[i].brightness > chosen[j].brightness })

	return &Palette{
		Primary:   chosen[0].color,
		Accent:    chosen[1].color,
		Secondary: chosen[2].color,
	}
}

func score(r, g, b uint32) scored {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	hi := math.Max(math.Max(rf, gf), bf)
	lo := math.Min(math.Min(rf, gf), bf)

	sat := 0.0
	if hi > 0 {
		sat = (hi - lo) / hi
	}
	return scored{
		color:      colors.Pack(int(r), int(g), int(b)),
		sat:        sat,
		brightness: hi,
		score:      sat * (1.0 - math.Abs(hi-0.6)),
	}
}

// pick returns the best scoring (or, with best false, the first) candidate
// above both thresholds that is not excluded.
func pick(candidates []scored, exclude []uint32, minSat, minBrightness float64, best bool) (scored, bool) {
	var found scored
	ok := false
	for _, c := range candidates {
		if c.sat <= minSat || c.brightness <= minBrightness || contains(exclude, c.color) {
			continue
		}
		if !best {
			return c, true
		}
		if !ok || c.score > found.score {
			found, ok = c, true
		}
	}
	return found, ok
}

func contains(list []uint32, c uint32) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

// boost lifts dark colours and pulls very bright ones toward grey so lyrics
// stay readable on a dark background.
func boost(c uint32, brightness float64) uint32 {
	if brightness > 0 && brightness < 0.4 {
		c = colors.Scale(c, math.Min(0.4/brightness, 2.5))
	}
	if brightness > 0.85 {
		c = colors.Desaturate(c, 0.3)
	}
	return c
}
