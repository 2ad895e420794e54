package config

import (
	"os"
	"strconv"
	"time"

	"karolbroda.com/prompter/internal/colors"
)

const (
	DefaultLrclibGetURL = "https://lrclib.net/api/get"
	HTTPTimeoutSeconds  = 10
	PollInterval        = 100 * time.Millisecond

	DefaultLeadIn     = 0.5
	DefaultFPS        = 30
	MaxFPS            = 60
	DefaultPixelScale = 8
	MaxPixelScale     = 32
)

type Config struct {
	FontPath     string
	SyncOffset   float64
	LeadIn       float64
	FPS          int
	PixelScale   int
	MprisService string
	LrclibURL    string
	LogFile      string
	Debug        bool
	HideHeader   bool
	// Accent is an optional "#RRGGBB" colour for the next line and hints.
	Accent string
}

func Load() *Config {
	cfg := &Config{
		FontPath:     os.Getenv("PROMPTER_FONT"),
		SyncOffset:   getEnvFloat("SYNC_OFFSET", 0),
		LeadIn:       getEnvFloat("PROMPTER_LEAD_IN", DefaultLeadIn),
		FPS:          getEnvInt("PROMPTER_FPS", DefaultFPS),
		PixelScale:   getEnvInt("PROMPTER_PIXEL_SCALE", DefaultPixelScale),
		MprisService: os.Getenv("MPRIS_SERVICE"),
		LrclibURL:    getEnvOrDefault("LRCLIB_GET_URL", DefaultLrclibGetURL),
		LogFile:      os.Getenv("PROMPTER_LOG"),
		Debug:        getEnvBool("PROMPTER_DEBUG"),
		HideHeader:   getEnvBool("HIDE_HEADER"),
		Accent:       os.Getenv("PROMPTER_ACCENT"),
	}
	cfg.Normalize()
	return cfg
}

// Normalize clamps values a flag or the environment may have pushed out of
// range.
func (c *Config) Normalize() {
	c.FPS = clampInt(c.FPS, 1, MaxFPS)
	c.PixelScale = clampInt(c.PixelScale, 1, MaxPixelScale)
	if c.LeadIn < 0 {
		c.LeadIn = 0
	}
}

func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// AccentColor parses Accent. ok is false when no accent is configured.
func (c *Config) AccentColor() (accent uint32, ok bool, err error) {
	if c.Accent == "" {
		return 0, false, nil
	}
	accent, err = colors.ParseHex(c.Accent)
	if err != nil {
		return 0, false, err
	}
	return accent, true, nil
}

func getEnvOrDefault(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvFloat(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(getEnvOrDefault(key, ""), 64)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnvOrDefault(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvBool(key string) bool {
	value := os.Getenv(key)
	return value == "1" || value == "true" || value == "yes"
}

func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
