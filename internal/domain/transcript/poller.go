// Package transcript drives the scheduled -> completed leg of the meeting
// lifecycle: it polls the bot provider for finished recordings, collects the
// transcript and hands it to content generation.
package transcript

import (
	"context"
	"errors"
	"strings"
	"time"

	"meetscribe-server/internal/domain/meeting"
	"meetscribe-server/internal/infrastructure/logger"
	"meetscribe-server/internal/infrastructure/metrics"
	"meetscribe-server/internal/utils/platformerrors"
)

// Bot provider states of interest. Anything not listed is treated as still
// in progress and left for the next poll invocation.
const (
	StateMediaReady = "media_ready"
	StateError      = "error"
	StateFatal      = "fatal"
	StateDone       = "done"
)

// BotStatus is the provider's report for one bot.
type BotStatus struct {
	State         string
	TranscriptURL string
}

// Segment is one piece of transcript text as returned by the transcript
// resource.
type Segment struct {
	Text string `json:"text"`
}

// Provider abstracts the bot provider's polling surface.
type Provider interface {
	GetBot(ctx context.Context, botID string) (BotStatus, error)
	FetchTranscript(ctx context.Context, url string) ([]Segment, error)
}

// Generator produces content artifacts for a finished transcript.
type Generator interface {
	GenerateForMeeting(ctx context.Context, m *meeting.Meeting, transcript string) error
}

// Poller is the transcript state machine. Each PollOnce invocation processes
// every meeting awaiting a transcript, isolating failures per meeting.
type Poller struct {
	meetings    meeting.Repository
	provider    Provider
	generator   Generator
	maxAttempts int
	backoffBase time.Duration
	sleep       func(time.Duration)
}

// NewPoller constructs a Poller with required dependencies.
func NewPoller(meetings meeting.Repository, provider Provider, generator Generator, maxAttempts int, backoffBase time.Duration) *Poller {
	return &Poller{
		meetings:    meetings,
		provider:    provider,
		generator:   generator,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		sleep:       time.Sleep,
	}
}

// PollOnce selects finished meetings still awaiting a transcript and advances
// each one. It returns how many meetings reached completed.
func (p *Poller) PollOnce(ctx context.Context, now time.Time) (int, error) {
	log := logger.GetLogger()

	meetings, err := p.meetings.FindAwaitingTranscript(ctx, now)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, m := range meetings {
		if m.BotID == nil || *m.BotID == "" {
			continue
		}

		completed, procErr := p.processMeeting(ctx, m)
		if procErr != nil {
			log.Error().
				Err(procErr).
				Uint("meeting_id", m.ID).
				Msg("failed to process meeting")
			metrics.TranscriptPollsTotal.WithLabelValues("error").Inc()
			if markErr := p.meetings.MarkError(ctx, m.ID, procErr.Error()); markErr != nil {
				log.Error().Err(markErr).Uint("meeting_id", m.ID).Msg("failed to mark meeting error")
			}
			continue
		}
		if completed {
			metrics.TranscriptPollsTotal.WithLabelValues("completed").Inc()
			metrics.MeetingsCompletedTotal.Inc()
			processed++
		} else {
			metrics.TranscriptPollsTotal.WithLabelValues("pending").Inc()
		}
	}

	return processed, nil
}

// processMeeting advances one meeting. It returns (true, nil) when the
// meeting reached completed, (false, nil) when the bot is still working, and
// a non-nil error when the meeting must be marked error.
func (p *Poller) processMeeting(ctx context.Context, m *meeting.Meeting) (bool, error) {
	log := logger.GetLogger()

	status, err := p.pollBotWithRetry(ctx, *m.BotID)
	if err != nil {
		return false, err
	}

	switch status.State {
	case StateMediaReady:
		if status.TranscriptURL == "" {
			// Ready without media; treat like a terminal failure.
			return false, errors.New("bot reported media_ready without a transcript URL")
		}
	case StateError, StateFatal, StateDone:
		return false, errors.New("bot ended in state: " + status.State)
	default:
		// Still in progress; leave untouched for the next invocation.
		return false, nil
	}

	segments, err := p.provider.FetchTranscript(ctx, status.TranscriptURL)
	if err != nil {
		return false, err
	}

	transcript := joinSegments(segments)
	if transcript == "" {
		return false, errors.New("transcript text is empty")
	}

	if err := p.generator.GenerateForMeeting(ctx, m, transcript); err != nil {
		return false, err
	}

	moved, err := p.meetings.CompleteIfScheduled(ctx, m.ID, transcript)
	if err != nil {
		return false, err
	}
	if !moved {
		// An overlapping poll run completed the meeting first. The generated
		// content was written through idempotent upserts, so nothing leaked.
		log.Warn().Uint("meeting_id", m.ID).Msg("meeting already completed by another run")
		return false, nil
	}

	log.Info().Uint("meeting_id", m.ID).Msg("transcript stored and content generated")
	return true, nil
}

// pollBotWithRetry polls the bot provider, backing off exponentially on
// transient failures up to the configured attempt budget.
func (p *Poller) pollBotWithRetry(ctx context.Context, botID string) (BotStatus, error) {
	log := logger.GetLogger()

	var lastErr error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if attempt > 0 {
			p.sleep(p.backoffBase << (attempt - 1))
		}

		status, err := p.provider.GetBot(ctx, botID)
		if err == nil {
			return status, nil
		}
		if !isTransient(err) {
			return BotStatus{}, err
		}

		lastErr = err
		log.Warn().
			Err(err).
			Str("bot_id", botID).
			Int("attempt", attempt+1).
			Msg("transient bot poll failure, backing off")
	}

	return BotStatus{}, lastErr
}

// isTransient reports whether an error deserves a backoff retry: provider
// rate limiting and timeouts, not definitive rejections.
func isTransient(err error) bool {
	if platformerrors.IsErrorType(err, platformerrors.ErrorTypeRateLimited) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// joinSegments concatenates transcript segments with single spaces. Empty or
// missing segments contribute nothing.
func joinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}
