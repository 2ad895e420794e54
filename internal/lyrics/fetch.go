package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"karolbroda.com/prompter/internal/cache"
)

var (
	ErrNoSyncedLyrics = errors.New("no synced lyrics available")
	errNotFound       = errors.New("lyrics not found")
)

type Response struct {
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

type TrackParams struct {
	Title        string
	Artist       string
	Album        string
	DurationSecs int64
}

// Client queries an lrclib compatible endpoint. Cache may be nil.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Cache      *cache.DiskCache
	// SkipCacheRead forces a network lookup; results are still stored.
	SkipCacheRead bool
	// StrategyDelay spaces out successive search variations.
	StrategyDelay time.Duration
}

func NewClient(baseURL string, timeout time.Duration, diskCache *cache.DiskCache) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     60 * time.Second,
		TLSHandshakeTimeout: 2 * time.Second,
	}

	return &Client{
		BaseURL:       baseURL,
		HTTPClient:    &http.Client{Transport: transport, Timeout: timeout},
		Cache:         diskCache,
		StrategyDelay: 100 * time.Millisecond,
	}
}

type searchQuery struct {
	artist   string
	title    string
	album    string
	duration int64
}

func (q searchQuery) key() string {
	return fmt.Sprintf("%s|%s|%s|%d", q.artist, q.title, q.album, q.duration)
}

// Fetch tries progressively looser queries until one returns lyrics.
func (c *Client) Fetch(ctx context.Context, track *TrackParams) (*Response, error) {
	if track == nil {
		return nil, errors.New("nil track info")
	}
	if strings.TrimSpace(track.Title) == "" || strings.TrimSpace(track.Artist) == "" {
		return nil, errors.New("track title or artist is empty")
	}
	if c.BaseURL == "" {
		return nil, errors.New("lrclib base url is empty")
	}

	if c.Cache != nil && !c.SkipCacheRead {
		if entry, err := c.Cache.Get(track.Artist, track.Title); err == nil {
			return responseFromEntry(entry), nil
		}
	}

	endpoint, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid lrclib url %q: %w", c.BaseURL, err)
	}

	var lastErr error
	for i, query := range searchQueries(track) {
		if i > 0 && c.StrategyDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.StrategyDelay):
			}
		}

		payload, err := c.get(ctx, endpoint, query)
		if err != nil {
			lastErr = err
			if isTimeoutError(err) {
				return nil, fmt.Errorf("lyrics server took too long to respond: %w", err)
			}
			continue
		}

		if payload.PlainLyrics == "" && payload.SyncedLyrics == "" && !payload.Instrumental {
			lastErr = errNotFound
			continue
		}

		if c.Cache != nil {
			_ = c.Cache.Set(track.Artist, track.Title, entryFromResponse(payload))
		}
		return payload, nil
	}

	if lastErr == nil {
		lastErr = errNotFound
	}
	return nil, fmt.Errorf("no lyrics found for %s - %s: %w", track.Artist, track.Title, lastErr)
}

// FetchTimeline fetches and parses synced lyrics in one step.
func (c *Client) FetchTimeline(ctx context.Context, track *TrackParams) (*Timeline, []SkippedLine, error) {
	payload, err := c.Fetch(ctx, track)
	if err != nil {
		return nil, nil, err
	}
	if payload.SyncedLyrics == "" {
		return nil, nil, ErrNoSyncedLyrics
	}

	lines, skipped := ParseSynced(payload.SyncedLyrics)
	if len(lines) == 0 {
		return nil, skipped, ErrNoSyncedLyrics
	}
	return NewTimeline(lines), skipped, nil
}

func searchQueries(track *TrackParams) []searchQuery {
	artist := collapseSpaces(track.Artist)
	title := collapseSpaces(track.Title)
	strippedArtist := collapseSpaces(stripBracketed(track.Artist))
	strippedTitle := collapseSpaces(stripBracketed(track.Title))

	candidates := []searchQuery{
		{artist, title, track.Album, track.DurationSecs},
		{artist, title, "", track.DurationSecs},
		{artist, title, "", 0},
		{strippedArtist, strippedTitle, "", 0},
		{strings.ToLower(artist), strings.ToLower(title), "", 0},
		{track.Artist, track.Title, "", 0},
	}

	seen := make(map[string]bool, len(candidates))
	queries := make([]searchQuery, 0, len(candidates))
	for _, q := range candidates {
		if q.artist == "" || q.title == "" || seen[q.key()] {
			continue
		}
		seen[q.key()] = true
		queries = append(queries, q)
	}
	return queries
}

func (c *Client) get(ctx context.Context, endpoint *url.URL, q searchQuery) (*Response, error) {
	values := url.Values{}
	values.Set("artist_name", q.artist)
	values.Set("track_name", q.title)
	if q.album != "" {
		values.Set("album_name", q.album)
	}
	if q.duration > 0 {
		values.Set("duration", strconv.FormatInt(q.duration, 10))
	}

	requestURL := *endpoint
	requestURL.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build http request: %w", err)
	}
	req.Header.Set("User-Agent", "prompter/1.0")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("lrclib returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode lrclib json: %w", err)
	}
	return &payload, nil
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripBracketed drops "(...)" and "[...]" groups such as remix or version tags.
func stripBracketed(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '(', '[':
			depth++
			b.WriteRune(' ')
		case ')', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

func responseFromEntry(entry *cache.LyricEntry) *Response {
	return &Response{
		TrackName:    entry.TrackName,
		ArtistName:   entry.ArtistName,
		AlbumName:    entry.AlbumName,
		Duration:     entry.Duration,
		Instrumental: entry.Instrumental,
		PlainLyrics:  entry.PlainLyrics,
		SyncedLyrics: entry.SyncedLyrics,
	}
}

func entryFromResponse(payload *Response) *cache.LyricEntry {
	return &cache.LyricEntry{
		TrackName:    payload.TrackName,
		ArtistName:   payload.ArtistName,
		AlbumName:    payload.AlbumName,
		Duration:     payload.Duration,
		Instrumental: payload.Instrumental,
		PlainLyrics:  payload.PlainLyrics,
		SyncedLyrics: payload.SyncedLyrics,
	}
}
