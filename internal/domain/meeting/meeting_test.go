package meeting_test

import (
	"testing"

	"meetscribe-server/internal/domain/meeting"
)

func TestStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from meeting.Status
		to   meeting.Status
		want bool
	}{
		{meeting.StatusPending, meeting.StatusScheduled, true},
		{meeting.StatusPending, meeting.StatusError, true},
		{meeting.StatusPending, meeting.StatusCancelled, true},
		{meeting.StatusPending, meeting.StatusCompleted, false},
		{meeting.StatusScheduled, meeting.StatusCompleted, true},
		{meeting.StatusScheduled, meeting.StatusError, true},
		{meeting.StatusScheduled, meeting.StatusCancelled, true},
		{meeting.StatusScheduled, meeting.StatusPending, false},
		{meeting.StatusCompleted, meeting.StatusError, false},
		{meeting.StatusError, meeting.StatusPending, false},
		{meeting.StatusCancelled, meeting.StatusScheduled, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		if got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	terminal := []meeting.Status{meeting.StatusCompleted, meeting.StatusError, meeting.StatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}

	active := []meeting.Status{meeting.StatusPending, meeting.StatusScheduled}
	for _, s := range active {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
