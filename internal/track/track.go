// Package track describes the song a media player reports as playing.
package track

import (
	"fmt"

	"karolbroda.com/prompter/internal/lyrics"
)

type Info struct {
	Title        string
	Artist       string
	Album        string
	DurationSecs int64
	ArtworkURL   string
	TrackID      string
}

// IsValid reports whether the track carries enough to search lyrics for.
func (t *Info) IsValid() bool {
	if t == nil {
		return false
	}
	return t.Title != "" && t.Artist != ""
}

func (t *Info) IsSameTrack(other *Info) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.TrackID != "" && other.TrackID != "" {
		return t.TrackID == other.TrackID
	}
	return t.Title == other.Title && t.Artist == other.Artist
}

// Label is the "Artist - Title" name shown as the lyrics source.
func (t *Info) Label() string {
	if t == nil {
		return ""
	}
	switch {
	case t.Artist == "":
		return t.Title
	case t.Title == "":
		return t.Artist
	}
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

// Params converts the track into a lyrics search.
func (t *Info) Params() *lyrics.TrackParams {
	if t == nil {
		return nil
	}
	return &lyrics.TrackParams{
		Title:        t.Title,
		Artist:       t.Artist,
		Album:        t.Album,
		DurationSecs: t.DurationSecs,
	}
}
