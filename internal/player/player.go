// Package player mirrors transport commands to an MPRIS media player over
// the session bus. The player only follows the prompter; lyric timing never
// reads the player's position.
package player

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"

	"karolbroda.com/prompter/internal/track"
)

const (
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisIface       = "org.mpris.MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
	// ServicePrefix starts every MPRIS bus name.
	ServicePrefix = "org.mpris.MediaPlayer2."
)

var ErrNoService = errors.New("empty mpris service name")

// busObject is the part of dbus.BusObject the sink uses.
type busObject interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
	GetProperty(p string) (dbus.Variant, error)
}

// MPRIS drives one player. It satisfies the session's audio sink.
type MPRIS struct {
	conn    *dbus.Conn
	obj     busObject
	service string
	name    string
}

// Connect opens the session bus and binds to service.
func Connect(service string) (*MPRIS, error) {
	if service == "" {
		return nil, ErrNoService
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	m := NewMPRIS(conn.Object(service, mprisPath), service)
	m.conn = conn
	return m, nil
}

func NewMPRIS(obj busObject, service string) *MPRIS {
	m := &MPRIS{obj: obj, service: service}
	m.name = identity(obj)
	if m.name == "" {
		m.name = strings.TrimPrefix(service, ServicePrefix)
	}
	return m
}

func (m *MPRIS) Name() string    { return m.name }
func (m *MPRIS) Service() string { return m.service }

func (m *MPRIS) Conn() *dbus.Conn { return m.conn }

func (m *MPRIS) Play() error  { return m.call("Play") }
func (m *MPRIS) Pause() error { return m.call("Pause") }
func (m *MPRIS) Stop() error  { return m.call("Stop") }

func (m *MPRIS) Close() error {
	if m.conn == nil {
		return nil
	}
	return m.conn.Close()
}

func (m *MPRIS) call(method string) error {
	if err := m.obj.Call(mprisPlayerIface+"."+method, 0).Err; err != nil {
		return fmt.Errorf("%s %s: %w", m.name, strings.ToLower(method), err)
	}
	return nil
}

// CurrentTrack reads the player's metadata.
func (m *MPRIS) CurrentTrack() (*track.Info, error) {
	prop, err := m.obj.GetProperty(mprisPlayerIface + ".Metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata property: %w", err)
	}

	metadata, ok := prop.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata type %T", prop.Value())
	}

	info := trackFromMetadata(metadata)
	if !info.IsValid() {
		return nil, fmt.Errorf("missing title or artist in metadata (title=%q, artist=%q)", info.Title, info.Artist)
	}
	return info, nil
}

// Position is the player's own playback position in seconds.
func (m *MPRIS) Position() (float64, error) {
	prop, err := m.obj.GetProperty(mprisPlayerIface + ".Position")
	if err != nil {
		return 0, fmt.Errorf("failed to get position property: %w", err)
	}

	micros, ok := prop.Value().(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected position type %T", prop.Value())
	}
	if micros < 0 {
		return 0, nil
	}
	return float64(micros) / 1e6, nil
}

func (m *MPRIS) Playing() (bool, error) {
	prop, err := m.obj.GetProperty(mprisPlayerIface + ".PlaybackStatus")
	if err != nil {
		return false, fmt.Errorf("failed to get playback status: %w", err)
	}
	status, _ := prop.Value().(string)
	return status == "Playing", nil
}

// Player is one entry of ListPlayers.
type Player struct {
	Service  string
	Identity string
}

// ListPlayers returns every MPRIS player on the bus, sorted by service name.
func ListPlayers(conn *dbus.Conn) ([]Player, error) {
	var names []string
	if err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, fmt.Errorf("failed to list dbus names: %w", err)
	}

	services := filterServices(names)
	players := make([]Player, 0, len(services))
	for _, service := range services {
		players = append(players, Player{
			Service:  service,
			Identity: identity(conn.Object(service, mprisPath)),
		})
	}
	return players, nil
}

func filterServices(names []string) []string {
	var services []string
	for _, name := range names {
		if strings.HasPrefix(name, ServicePrefix) {
			services = append(services, name)
		}
	}
	sort.Strings(services)
	return services
}

func identity(obj busObject) string {
	variant, err := obj.GetProperty(mprisIface + ".Identity")
	if err != nil {
		return ""
	}
	name, _ := variant.Value().(string)
	return name
}

func trackFromMetadata(metadata map[string]dbus.Variant) *track.Info {
	return &track.Info{
		Title:        extractString(metadata, "xesam:title"),
		Artist:       extractArtist(metadata, "xesam:artist"),
		Album:        extractString(metadata, "xesam:album"),
		ArtworkURL:   extractString(metadata, "mpris:artUrl"),
		TrackID:      extractString(metadata, "mpris:trackid"),
		DurationSecs: extractDurationSeconds(metadata, "mpris:length"),
	}
}

func extractString(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	switch typed := variant.Value().(type) {
	case string:
		return typed
	case dbus.ObjectPath:
		return string(typed)
	default:
		return ""
	}
}

func extractArtist(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	switch typed := variant.Value().(type) {
	case []string:
		if len(typed) > 0 {
			return typed[0]
		}
		return ""
	case string:
		return typed
	default:
		return ""
	}
}

func extractDurationSeconds(metadata map[string]dbus.Variant, key string) int64 {
	variant, exists := metadata[key]
	if !exists {
		return 0
	}

	switch typed := variant.Value().(type) {
	case int64:
		if typed <= 0 {
			return 0
		}
		return typed / 1_000_000
	case uint64:
		return int64(typed / 1_000_000)
	default:
		return 0
	}
}
