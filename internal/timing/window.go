// Package timing holds the join-window arithmetic shared by the meeting
// service and the appointment sweeper. Everything here is pure; all civil
// time math happens in the single fixed clinic offset so client/server
// drift cannot shift a window.
package timing

import (
	"fmt"
	"math"
	"time"
)

// JoinWindow is the inclusive time range during which a participant may
// enter a meeting
type JoinWindow struct {
	Opens  time.Time `json:"opens"`
	Closes time.Time `json:"closes"`
}

// IsZero reports whether the window was never computed (malformed input)
func (w JoinWindow) IsZero() bool {
	return w.Opens.IsZero() && w.Closes.IsZero()
}

// ComputeJoinWindow derives the joinable range from a scheduled time:
// it opens preJoin before the scheduled time and closes duration after it.
// A zero scheduled time yields a zero window, which fails closed.
func ComputeJoinWindow(scheduled time.Time, duration, preJoin time.Duration) JoinWindow {
	if scheduled.IsZero() {
		return JoinWindow{}
	}
	return JoinWindow{
		Opens:  scheduled.Add(-preJoin),
		Closes: scheduled.Add(duration),
	}
}

// CanJoin reports whether now falls inside the window, inclusive on both
// bounds. A zero window is never joinable.
func CanJoin(now time.Time, w JoinWindow) bool {
	if w.IsZero() {
		return false
	}
	return !now.Before(w.Opens) && !now.After(w.Closes)
}

// ButtonPhase is the UI-facing classification of a join window
type ButtonPhase string

const (
	PhaseNotYet   ButtonPhase = "not_yet"
	PhaseJoinable ButtonPhase = "joinable"
	PhaseEnded    ButtonPhase = "ended"
)

// ButtonState describes what the join button should show. MinutesRemaining
// is only meaningful in the not_yet phase.
type ButtonState struct {
	Phase            ButtonPhase `json:"phase"`
	MinutesRemaining int         `json:"minutes_remaining,omitempty"`
}

// Message returns the user-visible text for the state
func (b ButtonState) Message() string {
	switch b.Phase {
	case PhaseNotYet:
		return fmt.Sprintf("The meeting opens in %d minute(s)", b.MinutesRemaining)
	case PhaseJoinable:
		return "The meeting is open, you can join now"
	default:
		return "This meeting has ended"
	}
}

// StateAt classifies now against the window. Malformed schedules produce a
// zero window and therefore report ended, never joinable.
func StateAt(now time.Time, w JoinWindow) ButtonState {
	if w.IsZero() || now.After(w.Closes) {
		return ButtonState{Phase: PhaseEnded}
	}
	if now.Before(w.Opens) {
		minutes := int(math.Ceil(w.Opens.Sub(now).Minutes()))
		return ButtonState{Phase: PhaseNotYet, MinutesRemaining: minutes}
	}
	return ButtonState{Phase: PhaseJoinable}
}

// Date and time-of-day layouts used by appointment records
const (
	DateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// CombineDateTime parses an appointment's date-only and time-of-day parts
// into one instant in the given clinic location. Seconds in the time part
// are tolerated. Malformed input returns an error; callers treat that as
// not due / not joinable.
func CombineDateTime(date, timeOfDay string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{timeLayout, "15:04:05"} {
		t, err := time.ParseInLocation(DateLayout+" "+layout, date+" "+timeOfDay, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed appointment time %q %q", date, timeOfDay)
}
