// Package clock tracks wall-clock playback time across play, pause and stop.
//
// The clock never reads an audio position. Callers that drive an audio sink
// mirror the same Play/Pause/Stop calls to it; the displayed time always
// comes from here.
package clock

import "time"

type State int

const (
	Stopped State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

type Clock struct {
	now    func() time.Time
	state  State
	origin time.Time
	paused float64
}

type Option func(*Clock)

// WithNow replaces the time source, mainly for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		c.now = now
	}
}

func New(opts ...Option) *Clock {
	c := &Clock{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Clock) State() State {
	return c.state
}

// Play starts from zero when stopped and rebases the origin when paused so
// Elapsed continues from the paused value. Playing while running is a no-op.
func (c *Clock) Play() {
	switch c.state {
	case Paused:
		c.origin = c.now().Add(-secondsToDuration(c.paused))
		c.paused = 0
	case Stopped:
		c.origin = c.now()
	case Running:
		return
	}
	c.state = Running
}

func (c *Clock) Pause() {
	if c.state != Running {
		return
	}
	c.paused = c.Elapsed()
	c.state = Paused
}

func (c *Clock) Stop() {
	c.state = Stopped
	c.origin = time.Time{}
	c.paused = 0
}

// Elapsed returns seconds of playback.
func (c *Clock) Elapsed() float64 {
	switch c.state {
	case Paused:
		return c.paused
	case Running:
		return c.now().Sub(c.origin).Seconds()
	default:
		return 0
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
