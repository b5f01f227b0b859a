// Package calendar implements per-account calendar synchronisation.
package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	"meetscribe-server/internal/domain/account"
	"meetscribe-server/internal/domain/meeting"
	"meetscribe-server/internal/infrastructure/logger"
	"meetscribe-server/internal/infrastructure/metrics"
	"meetscribe-server/internal/infrastructure/observability"
)

// Event is the internal shape of one upcoming calendar event.
type Event struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	Attendees   []meeting.Attendee `json:"attendees"`
	Description string             `json:"description"`
	Location    string             `json:"location"`
}

// AccountEvents groups the events fetched for one connected account. A failed
// account still yields an entry with zero events so callers can render it.
type AccountEvents struct {
	AccountEmail string  `json:"account_email"`
	Events       []Event `json:"events"`
	Error        string  `json:"error,omitempty"`
}

// ProviderEvent is the raw event shape returned by the calendar provider
// client before internal mapping.
type ProviderEvent struct {
	ID          string
	Summary     string
	Start       time.Time
	End         time.Time
	Attendees   []meeting.Attendee
	Description string
	Location    string
}

// Provider abstracts the calendar API: token refresh plus event listing.
type Provider interface {
	RefreshToken(ctx context.Context, refreshToken string) (account.TokenSet, error)
	ListEvents(ctx context.Context, accessToken string, pageSize int) ([]ProviderEvent, error)
}

// Service syncs upcoming events across all of a user's connected Google
// accounts. One account's failure never prevents results from the others.
type Service struct {
	accounts account.Repository
	provider Provider
	pageSize int
}

// NewService constructs a Service with required dependencies.
func NewService(accounts account.Repository, provider Provider, pageSize int) *Service {
	return &Service{
		accounts: accounts,
		provider: provider,
		pageSize: pageSize,
	}
}

// SyncUpcoming loads events for every connected calendar account of the user,
// refreshing expired tokens first. Results are grouped per account with
// events ascending by start time.
func (s *Service) SyncUpcoming(ctx context.Context, userID string, now time.Time) ([]AccountEvents, error) {
	ctx, span := observability.StartSpan(ctx, "meetscribe-api", "calendar.sync_upcoming")
	defer span.End()
	started := time.Now()

	accounts, err := s.accounts.ListByUserAndProvider(ctx, userID, account.ProviderGoogle)
	if err != nil {
		observability.RecordError(ctx, err)
		metrics.RecordCalendarSync("error", time.Since(started).Seconds())
		return nil, err
	}

	log := logger.GetLogger()
	results := make([]AccountEvents, 0, len(accounts))

	for _, acct := range accounts {
		email := accountLabel(acct)

		token, refreshErr := s.freshAccessToken(ctx, acct, now)
		if refreshErr != nil {
			log.Warn().
				Err(refreshErr).
				Uint("account_id", acct.ID).
				Msg("token refresh failed, skipping account")
			results = append(results, AccountEvents{
				AccountEmail: email,
				Events:       []Event{},
				Error:        refreshErr.Error(),
			})
			continue
		}

		providerEvents, listErr := s.provider.ListEvents(ctx, token, s.pageSize)
		if listErr != nil {
			log.Error().
				Err(listErr).
				Str("account_email", email).
				Msg("calendar API error")
			results = append(results, AccountEvents{
				AccountEmail: email,
				Events:       []Event{},
				Error:        listErr.Error(),
			})
			continue
		}

		results = append(results, AccountEvents{
			AccountEmail: email,
			Events:       mapUpcoming(providerEvents, now),
		})
	}

	metrics.RecordCalendarSync(syncOutcome(results), time.Since(started).Seconds())
	return results, nil
}

// syncOutcome labels a sync run for metrics: ok when every account listed,
// degraded when some failed, error when none succeeded.
func syncOutcome(results []AccountEvents) string {
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	switch {
	case failed == 0:
		return "ok"
	case failed == len(results):
		return "error"
	default:
		return "degraded"
	}
}

// freshAccessToken returns a usable access token, refreshing and persisting
// it when the stored one expires within the refresh window.
func (s *Service) freshAccessToken(ctx context.Context, acct *account.ConnectedAccount, now time.Time) (string, error) {
	if !acct.NeedsRefresh(now) {
		return acct.AccessToken, nil
	}
	if acct.RefreshToken == nil || *acct.RefreshToken == "" {
		return "", fmt.Errorf("account %d has no refresh token", acct.ID)
	}

	tokens, err := s.provider.RefreshToken(ctx, *acct.RefreshToken)
	if err != nil {
		return "", err
	}

	if err := s.accounts.UpdateTokens(ctx, acct.ID, tokens); err != nil {
		// The refreshed token is still valid for this sync even if the write
		// failed; the next sync will refresh again.
		log := logger.GetLogger()
		log.Error().
			Err(err).
			Uint("account_id", acct.ID).
			Msg("failed to persist refreshed token")
	}

	return tokens.AccessToken, nil
}

// mapUpcoming maps provider events into the internal shape, keeping only
// events that start strictly after now, sorted ascending by start time.
// Events already under way are dropped even when the provider returned them.
func mapUpcoming(events []ProviderEvent, now time.Time) []Event {
	mapped := make([]Event, 0, len(events))
	for _, ev := range events {
		if ev.Start.IsZero() || !ev.Start.After(now) {
			continue
		}
		title := ev.Summary
		if title == "" {
			title = "No Title"
		}
		attendees := ev.Attendees
		if attendees == nil {
			attendees = []meeting.Attendee{}
		}
		mapped = append(mapped, Event{
			ID:          ev.ID,
			Title:       title,
			StartTime:   ev.Start,
			EndTime:     ev.End,
			Attendees:   attendees,
			Description: ev.Description,
			Location:    ev.Location,
		})
	}

	sort.Slice(mapped, func(i, j int) bool {
		return mapped[i].StartTime.Before(mapped[j].StartTime)
	})
	return mapped
}

func accountLabel(acct *account.ConnectedAccount) string {
	if acct.ProviderUserEmail != nil && *acct.ProviderUserEmail != "" {
		return *acct.ProviderUserEmail
	}
	return fmt.Sprintf("Account %d", acct.ID)
}
