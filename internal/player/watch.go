package player

import (
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"karolbroda.com/prompter/internal/track"
)

type EventKind int

const (
	EventTrackChanged EventKind = iota
	EventPlaybackChanged
	EventSeeked
)

func (k EventKind) String() string {
	switch k {
	case EventTrackChanged:
		return "track-changed"
	case EventPlaybackChanged:
		return "playback-changed"
	case EventSeeked:
		return "seeked"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

type Event struct {
	Kind     EventKind
	Track    *track.Info
	Playing  bool
	Position float64
}

// Watcher reports changes a user makes on the player itself, so the
// prompter can follow a pause pressed in the player's own window.
type Watcher struct {
	conn     *dbus.Conn
	service  string
	signals  chan *dbus.Signal
	stop     chan struct{}
	stopOnce sync.Once
	events   chan Event

	mu      sync.Mutex
	current *track.Info
}

func NewWatcher(conn *dbus.Conn, service string) (*Watcher, error) {
	if conn == nil {
		return nil, errors.New("nil dbus connection")
	}
	if service == "" {
		return nil, ErrNoService
	}

	return &Watcher{
		conn:    conn,
		service: service,
		events:  make(chan Event, 16),
		stop:    make(chan struct{}),
	}, nil
}

func (w *Watcher) Start() error {
	w.signals = make(chan *dbus.Signal, 10)
	w.conn.Signal(w.signals)

	matchPropertiesChanged := fmt.Sprintf(
		"type='signal',sender='%s',interface='org.freedesktop.DBus.Properties',member='PropertiesChanged',path='%s'",
		w.service, mprisPath,
	)
	matchSeeked := fmt.Sprintf(
		"type='signal',sender='%s',interface='%s',member='Seeked',path='%s'",
		w.service, mprisPlayerIface, mprisPath,
	)

	for _, rule := range []string{matchPropertiesChanged, matchSeeked} {
		if err := w.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Err; err != nil {
			w.conn.RemoveSignal(w.signals)
			return fmt.Errorf("failed to add match %q: %w", rule, err)
		}
	}

	go w.loop()
	return nil
}

func (w *Watcher) Close() {
	w.stopOnce.Do(func() {
		close(w.stop)
		if w.signals != nil {
			w.conn.RemoveSignal(w.signals)
		}
	})
}

func (w *Watcher) Events() <-chan Event {
	return w.events
}

func (w *Watcher) loop() {
	for {
		select {
		case sig, ok := <-w.signals:
			if !ok {
				return
			}
			w.handleSignal(sig)
		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) handleSignal(sig *dbus.Signal) {
	if sig == nil {
		return
	}

	switch sig.Name {
	case "org.freedesktop.DBus.Properties.PropertiesChanged":
		w.handlePropertiesChanged(sig)
	case mprisPlayerIface + ".Seeked":
		w.handleSeeked(sig)
	}
}

func (w *Watcher) handlePropertiesChanged(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}

	iface, ok := sig.Body[0].(string)
	if !ok || iface != mprisPlayerIface {
		return
	}

	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	if variant, exists := changed["Metadata"]; exists {
		if metadata, ok := variant.Value().(map[string]dbus.Variant); ok {
			info := trackFromMetadata(metadata)
			w.mu.Lock()
			same := info.IsSameTrack(w.current)
			if info.IsValid() && !same {
				w.current = info
			}
			w.mu.Unlock()

			if info.IsValid() && !same {
				w.emit(Event{Kind: EventTrackChanged, Track: info})
			}
		}
	}

	if variant, exists := changed["PlaybackStatus"]; exists {
		if status, ok := variant.Value().(string); ok {
			w.emit(Event{Kind: EventPlaybackChanged, Playing: status == "Playing"})
		}
	}
}

func (w *Watcher) handleSeeked(sig *dbus.Signal) {
	if len(sig.Body) < 1 {
		return
	}

	micros, ok := sig.Body[0].(int64)
	if !ok || micros < 0 {
		return
	}
	w.emit(Event{Kind: EventSeeked, Position: float64(micros) / 1e6})
}

// emit drops the event when nobody is draining the channel.
func (w *Watcher) emit(event Event) {
	select {
	case w.events <- event:
	default:
	}
}
