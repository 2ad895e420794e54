package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	cacheVersion    = 2
	defaultTTL      = 30 * 24 * time.Hour
	cacheDirName    = "prompter"
	lyricsCacheName = "lyrics"
	entrySuffix     = ".bin"
)

var (
	ErrCacheMiss    = errors.New("cache miss")
	ErrCacheExpired = errors.New("cache expired")
	ErrCacheCorrupt = errors.New("cache corrupt")
)

type LyricEntry struct {
	Version      uint8
	TrackName    string
	ArtistName   string
	AlbumName    string
	Duration     float64
	Instrumental bool
	PlainLyrics  string
	SyncedLyrics string
	CreatedAt    int64
	ExpiresAt    int64
}

// DiskCache keeps fetched lyrics in memory and, when basePath is set, as gob
// files on disk. A DiskCache with an empty basePath is memory only.
type DiskCache struct {
	basePath string
	ttl      time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	memCache map[string]*LyricEntry
}

// DefaultDir returns $XDG_CACHE_HOME/prompter/lyrics or ~/.cache/prompter/lyrics.
func DefaultDir() (string, error) {
	xdgCache := os.Getenv("XDG_CACHE_HOME")
	if xdgCache != "" {
		return filepath.Join(xdgCache, cacheDirName, lyricsCacheName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".cache", cacheDirName, lyricsCacheName), nil
}

func Open(dir string) (*DiskCache, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	return &DiskCache{
		basePath: dir,
		ttl:      defaultTTL,
		now:      time.Now,
		memCache: make(map[string]*LyricEntry),
	}, nil
}

// OpenDefault opens the cache in DefaultDir, falling back to memory only.
func OpenDefault() *DiskCache {
	dir, err := DefaultDir()
	if err == nil {
		if c, err := Open(dir); err == nil {
			return c
		}
	}
	c, _ := Open("")
	return c
}

func (c *DiskCache) Dir() string {
	return c.basePath
}

func generateKey(artist, title string) string {
	normalized := strings.ToLower(artist) + "|" + strings.ToLower(title)
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:12])
}

func (c *DiskCache) filePath(key string) string {
	return filepath.Join(c.basePath, key+entrySuffix)
}

func (c *DiskCache) Get(artist, title string) (*LyricEntry, error) {
	if artist == "" || title == "" {
		return nil, ErrCacheMiss
	}

	key := generateKey(artist, title)
	now := c.now().Unix()

	c.mu.RLock()
	entry, exists := c.memCache[key]
	c.mu.RUnlock()

	if exists {
		if entry.ExpiresAt > now {
			return entry, nil
		}
		c.mu.Lock()
		delete(c.memCache, key)
		c.mu.Unlock()
	}

	if c.basePath == "" {
		return nil, ErrCacheMiss
	}

	path := c.filePath(key)
	entry, err := readEntry(path)
	if err != nil {
		return nil, err
	}

	if entry.ExpiresAt <= now {
		_ = os.Remove(path)
		return nil, ErrCacheExpired
	}

	c.mu.Lock()
	c.memCache[key] = entry
	c.mu.Unlock()

	return entry, nil
}

func (c *DiskCache) Set(artist, title string, entry *LyricEntry) error {
	if artist == "" || title == "" || entry == nil {
		return errors.New("invalid cache entry")
	}

	key := generateKey(artist, title)

	now := c.now()
	entry.Version = cacheVersion
	entry.CreatedAt = now.Unix()
	entry.ExpiresAt = now.Add(c.ttl).Unix()

	c.mu.Lock()
	c.memCache[key] = entry
	c.mu.Unlock()

	if c.basePath == "" {
		return nil
	}

	return writeEntry(c.filePath(key), entry)
}

func (c *DiskCache) Delete(artist, title string) error {
	if artist == "" || title == "" {
		return errors.New("invalid artist or title")
	}

	key := generateKey(artist, title)

	c.mu.Lock()
	delete(c.memCache, key)
	c.mu.Unlock()

	if c.basePath == "" {
		return nil
	}

	err := os.Remove(c.filePath(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *DiskCache) Clear() error {
	c.mu.Lock()
	c.memCache = make(map[string]*LyricEntry)
	c.mu.Unlock()

	return c.eachFile(func(path string, _ os.DirEntry) {
		_ = os.Remove(path)
	})
}

// Prune removes expired and unreadable entries and returns how many went.
func (c *DiskCache) Prune() (int, error) {
	pruned := 0
	now := c.now().Unix()

	err := c.eachFile(func(path string, _ os.DirEntry) {
		entry, err := readEntry(path)
		if err != nil || entry.ExpiresAt <= now {
			_ = os.Remove(path)
			pruned++
		}
	})
	return pruned, err
}

func (c *DiskCache) Stats() (count int, sizeBytes int64, err error) {
	err = c.eachFile(func(_ string, dirEntry os.DirEntry) {
		info, err := dirEntry.Info()
		if err != nil {
			return
		}
		count++
		sizeBytes += info.Size()
	})
	return count, sizeBytes, err
}

func (c *DiskCache) ListAll() ([]*LyricEntry, error) {
	var result []*LyricEntry
	err := c.eachFile(func(path string, _ os.DirEntry) {
		entry, err := readEntry(path)
		if err != nil {
			return
		}
		result = append(result, entry)
	})
	return result, err
}

func (c *DiskCache) eachFile(fn func(path string, entry os.DirEntry)) error {
	if c.basePath == "" {
		return nil
	}

	entries, err := os.ReadDir(c.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, dirEntry := range entries {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), entrySuffix) {
			continue
		}
		fn(filepath.Join(c.basePath, dirEntry.Name()), dirEntry)
	}
	return nil
}

func readEntry(path string) (*LyricEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	defer file.Close()

	var entry LyricEntry
	if err := gob.NewDecoder(file).Decode(&entry); err != nil {
		return nil, ErrCacheCorrupt
	}

	// version mismatch means stale format
	if entry.Version != cacheVersion {
		_ = os.Remove(path)
		return nil, ErrCacheCorrupt
	}

	return &entry, nil
}

// writeEntry writes to a temp file first, then renames for atomicity.
func writeEntry(path string, entry *LyricEntry) error {
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	if err := gob.NewEncoder(file).Encode(entry); err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}
