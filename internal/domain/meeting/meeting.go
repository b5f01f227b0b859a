// Package meeting holds the central meeting record and its lifecycle rules.
package meeting

import (
	"context"
	"fmt"
	"time"
)

// Platform identifies the video-conferencing provider of a meeting URL.
type Platform string

const (
	PlatformZoom       Platform = "zoom"
	PlatformGoogleMeet Platform = "gmeet"
	PlatformTeams      Platform = "msteams"
	PlatformNone       Platform = ""
)

// Status is the lifecycle state of a meeting record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo enforces the lifecycle: forward-only, with error reachable
// from any non-terminal state and cancelled reachable from pending/scheduled.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case StatusError:
		return true
	case StatusScheduled:
		return s == StatusPending
	case StatusCompleted:
		return s == StatusScheduled
	case StatusCancelled:
		return s == StatusPending || s == StatusScheduled
	}
	return false
}

// ErrInvalidTransition is returned when a lifecycle update violates the
// transition rules above.
type ErrInvalidTransition struct {
	From Status
	To   Status
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid meeting status transition %s -> %s", e.From, e.To)
}

// Attendee is one calendar-event participant.
type Attendee struct {
	Email          string `json:"email"`
	ResponseStatus string `json:"responseStatus"`
}

// Meeting is the persisted record that every lifecycle component reads and
// mutates. A meeting is created when a user toggles recording on a calendar
// event and is never deleted.
type Meeting struct {
	ID                   uint
	UserID               string
	GCalEventID          string
	Title                string
	StartTime            time.Time
	EndTime              time.Time
	MeetingURL           *string
	Platform             Platform
	TranscriptionEnabled bool
	BotID                *string
	Status               Status
	Transcript           *string
	ErrorMessage         *string
	Attendees            []Attendee
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Repository defines storage operations for meetings. Write operations that
// change status are conditional on the expected prior state so that
// overlapping job runs cannot double-apply a transition.
type Repository interface {
	// Upsert inserts or replaces the record keyed by (user_id, gcal_event_id).
	Upsert(ctx context.Context, m *Meeting) (*Meeting, error)
	FindByID(ctx context.Context, id uint, userID string) (*Meeting, error)
	ListByUser(ctx context.Context, userID string) ([]*Meeting, error)

	// FindDueForDispatch returns transcription-enabled pending meetings whose
	// start time falls within [from, to].
	FindDueForDispatch(ctx context.Context, from, to time.Time) ([]*Meeting, error)

	// FindAwaitingTranscript returns scheduled meetings with a bot id whose
	// end time is at or before now.
	FindAwaitingTranscript(ctx context.Context, now time.Time) ([]*Meeting, error)

	// SetBotScheduled stores the bot id and moves pending -> scheduled.
	// Returns false when the meeting was no longer pending.
	SetBotScheduled(ctx context.Context, id uint, botID string) (bool, error)

	// CompleteIfScheduled stores the transcript and moves scheduled ->
	// completed. Returns false when another run already moved the meeting.
	CompleteIfScheduled(ctx context.Context, id uint, transcript string) (bool, error)

	// MarkError moves any non-terminal meeting to error with a message.
	MarkError(ctx context.Context, id uint, message string) error
}
