package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PROMPTER_FONT", "SYNC_OFFSET", "PROMPTER_LEAD_IN", "PROMPTER_FPS",
		"PROMPTER_PIXEL_SCALE", "MPRIS_SERVICE", "LRCLIB_GET_URL",
		"PROMPTER_LOG", "PROMPTER_DEBUG", "HIDE_HEADER", "PROMPTER_ACCENT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.LeadIn != DefaultLeadIn || cfg.FPS != DefaultFPS || cfg.PixelScale != DefaultPixelScale {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.LrclibURL != DefaultLrclibGetURL || cfg.MprisService != "" || cfg.Debug || cfg.HideHeader {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PROMPTER_FONT", "none")
	t.Setenv("SYNC_OFFSET", "-0.25")
	t.Setenv("PROMPTER_LEAD_IN", "1.5")
	t.Setenv("PROMPTER_FPS", "120")
	t.Setenv("PROMPTER_PIXEL_SCALE", "0")
	t.Setenv("MPRIS_SERVICE", "org.mpris.MediaPlayer2.mpv")
	t.Setenv("PROMPTER_DEBUG", "yes")
	t.Setenv("HIDE_HEADER", "1")
	t.Setenv("LRCLIB_GET_URL", "")
	t.Setenv("PROMPTER_LOG", "")
	t.Setenv("PROMPTER_ACCENT", "#c0ffee")

	cfg := Load()
	want := Config{
		FontPath:     "none",
		SyncOffset:   -0.25,
		LeadIn:       1.5,
		FPS:          MaxFPS,
		PixelScale:   1,
		MprisService: "org.mpris.MediaPlayer2.mpv",
		LrclibURL:    DefaultLrclibGetURL,
		Debug:        true,
		HideHeader:   true,
		Accent:       "#c0ffee",
	}
	if *cfg != want {
		t.Fatalf("Load() = %+v, want %+v", *cfg, want)
	}
}

func TestLoadIgnoresGarbage(t *testing.T) {
	t.Setenv("SYNC_OFFSET", "soon")
	t.Setenv("PROMPTER_FPS", "fast")
	t.Setenv("PROMPTER_LEAD_IN", "-3")

	cfg := Load()
	if cfg.SyncOffset != 0 || cfg.FPS != DefaultFPS || cfg.LeadIn != 0 {
		t.Fatalf("Load() = %+v", cfg)
	}
}

func TestFrameInterval(t *testing.T) {
	cfg := &Config{FPS: 25}
	if got := cfg.FrameInterval(); got != 40*time.Millisecond {
		t.Fatalf("FrameInterval = %v", got)
	}
}

func TestAccentColor(t *testing.T) {
	tests := []struct {
		accent string
		want   uint32
		ok     bool
		err    bool
	}{
		{"", 0, false, false},
		{"#c0ffee", 0xc0ffee, true, false},
		{"8ba4e8", 0x8ba4e8, true, false},
		{"#12345", 0, false, true},
		{"#zzzzzz", 0, false, true},
	}
	for _, tt := range tests {
		cfg := &Config{Accent: tt.accent}
		got, ok, err := cfg.AccentColor()
		if got != tt.want || ok != tt.ok || (err != nil) != tt.err {
			t.Errorf("AccentColor(%q) = %06x, %v, %v", tt.accent, got, ok, err)
		}
	}
}
