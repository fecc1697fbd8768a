package elevator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/lift/core/events"
)

// Noon in minutes since midnight. Idle cars return to the lobby before it.
const Noon = 12 * 60

var (
	ErrTimeFormat  = errors.New(`time must be a time.Time or "HH:MM" string`)
	ErrHourRange   = errors.New("time hours must be 0-23")
	ErrMinuteRange = errors.New("time minutes must be 0-59")
)

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// IdleTime is the time of day handed to the idle policy, either as a
// timestamp or as 24h "HH:MM" text. Hours and minutes are taken at face
// value, without zone conversion.
type IdleTime struct {
	clock   string
	at      time.Time
	isClock bool
}

// Clock returns an IdleTime from "HH:MM" text. The text is parsed when the
// policy runs.
func Clock(s string) *IdleTime { return &IdleTime{clock: s, isClock: true} }

// At returns an IdleTime from a timestamp.
func At(t time.Time) *IdleTime { return &IdleTime{at: t} }

// Minutes converts t into minutes since midnight.
func (t *IdleTime) Minutes() (int, error) {
	if t.isClock {
		return ParseClock(t.clock)
	}
	return t.at.Hour()*60 + t.at.Minute(), nil
}

func (t *IdleTime) String() string {
	if t == nil {
		return ""
	}
	if t.isClock {
		return t.clock
	}
	return t.at.Format("15:04")
}

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrTimeFormat, s)
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	if hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %d", ErrHourRange, hours)
	}
	if minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %d", ErrMinuteRange, minutes)
	}
	return hours*60 + minutes, nil
}

// ApplyIdlePolicy parks the empty car. Before noon it returns to the lobby,
// from noon on it stays on its current floor. Nothing happens while someone
// is aboard or when t is nil. A malformed t is reported without moving the
// car. It reports whether the car returned to the lobby.
func (e *Elevator) ApplyIdlePolicy(ctx context.Context, t *IdleTime) (bool, error) {
	riders, err := e.aboard.List(ctx)
	if err != nil {
		return false, err
	}
	if len(riders) > 0 || t == nil {
		return false, nil
	}
	minutes, err := t.Minutes()
	if err != nil {
		return false, err
	}
	if minutes >= Noon || e.floor == LobbyFloor {
		return false, nil
	}
	e.moveTo(LobbyFloor)
	e.emit(events.Event{Kind: events.KindIdleReturnToLobby, Floor: e.floor})
	return true, nil
}
