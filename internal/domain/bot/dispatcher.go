// Package bot schedules recording bots for transcription-enabled meetings.
package bot

import (
	"context"
	"time"

	"meetscribe-server/internal/domain"
	"meetscribe-server/internal/domain/calendar"
	"meetscribe-server/internal/domain/meeting"
	"meetscribe-server/internal/infrastructure/logger"
	"meetscribe-server/internal/infrastructure/metrics"
)

// CreateRequest carries the meeting metadata the bot provider needs to join.
type CreateRequest struct {
	Title      string
	MeetingURL string
	StartTime  time.Time
	EndTime    time.Time
	Platform   meeting.Platform
}

// Provider is the external bot service that joins and records a call.
type Provider interface {
	CreateBot(ctx context.Context, req CreateRequest) (string, error)
}

// Dispatcher creates recording bots and keeps the meeting record in step.
type Dispatcher struct {
	meetings meeting.Repository
	provider Provider
}

// NewDispatcher constructs a Dispatcher with required dependencies.
func NewDispatcher(meetings meeting.Repository, provider Provider) *Dispatcher {
	return &Dispatcher{meetings: meetings, provider: provider}
}

// ToggleTranscription upserts the meeting record for a calendar event and,
// when enabling with a detected meeting URL, schedules a bot immediately.
// A dispatch failure leaves the meeting in error without a bot id; recording
// is simply not performed and the cron pass may re-surface the meeting.
// Disabling moves the meeting to cancelled without cancelling any bot the
// provider may already hold.
func (d *Dispatcher) ToggleTranscription(ctx context.Context, caller domain.Principal, event calendar.Event, enabled bool) (*meeting.Meeting, error) {
	log := logger.GetLogger()

	url, platform := meeting.FindMeetingLink(event.Location, event.Description)

	var meetingURL *string
	if url != "" {
		meetingURL = &url
	}

	var botID *string
	status := meeting.StatusPending

	switch {
	case enabled && url != "":
		id, err := d.provider.CreateBot(ctx, CreateRequest{
			Title:      event.Title,
			MeetingURL: url,
			StartTime:  event.StartTime,
			EndTime:    event.EndTime,
			Platform:   platform,
		})
		if err != nil {
			log.Warn().
				Err(err).
				Str("gcal_event_id", event.ID).
				Msg("bot creation failed, recording meeting in error state")
			status = meeting.StatusError
		} else {
			botID = &id
			status = meeting.StatusScheduled
		}
	case !enabled:
		status = meeting.StatusCancelled
	}

	record := &meeting.Meeting{
		UserID:               caller.UserID,
		GCalEventID:          event.ID,
		Title:                event.Title,
		StartTime:            event.StartTime,
		EndTime:              event.EndTime,
		MeetingURL:           meetingURL,
		Platform:             platform,
		TranscriptionEnabled: enabled,
		BotID:                botID,
		Status:               status,
		Attendees:            event.Attendees,
	}

	return d.meetings.Upsert(ctx, record)
}

// DispatchDue scans for transcription-enabled pending meetings starting
// within the window and schedules a bot for each. Failures are isolated per
// meeting and recorded as error status.
func (d *Dispatcher) DispatchDue(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	log := logger.GetLogger()

	due, err := d.meetings.FindDueForDispatch(ctx, now, now.Add(window))
	if err != nil {
		return 0, err
	}

	scheduled := 0
	for _, m := range due {
		if m.MeetingURL == nil || *m.MeetingURL == "" {
			if err := d.meetings.MarkError(ctx, m.ID, "no meeting URL detected"); err != nil {
				log.Error().Err(err).Uint("meeting_id", m.ID).Msg("failed to mark meeting error")
			}
			continue
		}

		botID, createErr := d.provider.CreateBot(ctx, CreateRequest{
			Title:      m.Title,
			MeetingURL: *m.MeetingURL,
			StartTime:  m.StartTime,
			EndTime:    m.EndTime,
			Platform:   m.Platform,
		})
		if createErr != nil {
			log.Error().
				Err(createErr).
				Uint("meeting_id", m.ID).
				Msg("failed to schedule bot")
			if err := d.meetings.MarkError(ctx, m.ID, createErr.Error()); err != nil {
				log.Error().Err(err).Uint("meeting_id", m.ID).Msg("failed to mark meeting error")
			}
			continue
		}

		moved, err := d.meetings.SetBotScheduled(ctx, m.ID, botID)
		if err != nil {
			log.Error().Err(err).Uint("meeting_id", m.ID).Msg("failed to store bot id")
			continue
		}
		if !moved {
			// Another run or a user action won the transition.
			log.Warn().Uint("meeting_id", m.ID).Msg("meeting no longer pending, bot id dropped")
			continue
		}

		scheduled++
		metrics.BotsDispatchedTotal.Inc()
		log.Info().
			Uint("meeting_id", m.ID).
			Str("bot_id", botID).
			Msg("scheduled recording bot")
	}

	return scheduled, nil
}
