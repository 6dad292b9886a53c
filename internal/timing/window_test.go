package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clinic = time.FixedZone("clinic", 7*3600)

func at(hour, min int) time.Time {
	return time.Date(2025, 1, 20, hour, min, 0, 0, clinic)
}

func TestComputeJoinWindow(t *testing.T) {
	scheduled := at(9, 0)
	w := ComputeJoinWindow(scheduled, 60*time.Minute, 5*time.Minute)

	assert.Equal(t, scheduled.Add(-5*time.Minute), w.Opens)
	assert.Equal(t, scheduled.Add(60*time.Minute), w.Closes)
}

func TestComputeJoinWindowZeroScheduleFailsClosed(t *testing.T) {
	w := ComputeJoinWindow(time.Time{}, 60*time.Minute, 5*time.Minute)

	assert.True(t, w.IsZero())
	assert.False(t, CanJoin(at(9, 0), w))
	assert.Equal(t, PhaseEnded, StateAt(at(9, 0), w).Phase)
}

func TestCanJoinBoundsAreInclusive(t *testing.T) {
	w := ComputeJoinWindow(at(9, 0), 60*time.Minute, 5*time.Minute)

	assert.True(t, CanJoin(w.Opens, w), "window open instant is joinable")
	assert.True(t, CanJoin(w.Closes, w), "window close instant is joinable")
	assert.False(t, CanJoin(w.Opens.Add(-time.Second), w))
	assert.False(t, CanJoin(w.Closes.Add(time.Second), w))
}

func TestCanJoinScenario(t *testing.T) {
	// Scheduled 09:00 with a 5 minute pre-join: 08:56 is inside the
	// window, 08:54 is one minute short of it.
	w := ComputeJoinWindow(at(9, 0), 60*time.Minute, 5*time.Minute)

	assert.True(t, CanJoin(at(8, 56), w))
	assert.False(t, CanJoin(at(8, 54), w))

	state := StateAt(at(8, 54), w)
	assert.Equal(t, PhaseNotYet, state.Phase)
	assert.Equal(t, 1, state.MinutesRemaining)
}

func TestStateAt(t *testing.T) {
	w := ComputeJoinWindow(at(9, 0), 60*time.Minute, 5*time.Minute)

	tests := []struct {
		name    string
		now     time.Time
		phase   ButtonPhase
		minutes int
	}{
		{"well before", at(8, 30), PhaseNotYet, 25},
		{"at open", at(8, 55), PhaseJoinable, 0},
		{"mid meeting", at(9, 30), PhaseJoinable, 0},
		{"at close", at(10, 0), PhaseJoinable, 0},
		{"after close", at(10, 1), PhaseEnded, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := StateAt(tt.now, w)
			assert.Equal(t, tt.phase, state.Phase)
			assert.Equal(t, tt.minutes, state.MinutesRemaining)
		})
	}
}

func TestStateAtRoundsPartialMinutesUp(t *testing.T) {
	w := ComputeJoinWindow(at(9, 0), 60*time.Minute, 5*time.Minute)
	now := at(8, 54).Add(30 * time.Second) // 08:54:30, 30s before open

	state := StateAt(now, w)
	assert.Equal(t, PhaseNotYet, state.Phase)
	assert.Equal(t, 1, state.MinutesRemaining)
}

func TestButtonStateMessages(t *testing.T) {
	assert.Equal(t, "The meeting opens in 3 minute(s)",
		ButtonState{Phase: PhaseNotYet, MinutesRemaining: 3}.Message())
	assert.Equal(t, "The meeting is open, you can join now",
		ButtonState{Phase: PhaseJoinable}.Message())
	assert.Equal(t, "This meeting has ended",
		ButtonState{Phase: PhaseEnded}.Message())
}

func TestCombineDateTime(t *testing.T) {
	got, err := CombineDateTime("2025-01-20", "09:00", clinic)
	require.NoError(t, err)
	assert.True(t, got.Equal(at(9, 0)))

	withSeconds, err := CombineDateTime("2025-01-20", "09:00:30", clinic)
	require.NoError(t, err)
	assert.Equal(t, 30, withSeconds.Second())
}

func TestCombineDateTimeMalformed(t *testing.T) {
	for _, tt := range []struct{ date, tod string }{
		{"", ""},
		{"2025-01-20", ""},
		{"", "09:00"},
		{"20/01/2025", "09:00"},
		{"2025-01-20", "9am"},
		{"2025-13-40", "09:00"},
	} {
		_, err := CombineDateTime(tt.date, tt.tod, clinic)
		assert.Error(t, err, "date=%q time=%q", tt.date, tt.tod)
	}
}
