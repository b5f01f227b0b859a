package calendar_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"meetscribe-server/internal/domain/account"
	"meetscribe-server/internal/domain/calendar"
)

type mockAccountRepo struct {
	accounts  []*account.ConnectedAccount
	listErr   error
	updated   map[uint]account.TokenSet
	updateErr error
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{updated: make(map[uint]account.TokenSet)}
}

func (m *mockAccountRepo) ListByUserAndProvider(ctx context.Context, userID, provider string) ([]*account.ConnectedAccount, error) {
	return m.accounts, m.listErr
}

func (m *mockAccountRepo) ListByUser(ctx context.Context, userID string) ([]*account.ConnectedAccount, error) {
	return m.accounts, nil
}

func (m *mockAccountRepo) FindSingle(ctx context.Context, userID, provider string) (*account.ConnectedAccount, error) {
	return nil, nil
}

func (m *mockAccountRepo) UpsertMultiAccount(ctx context.Context, a *account.ConnectedAccount) (*account.ConnectedAccount, error) {
	return a, nil
}

func (m *mockAccountRepo) UpsertSingleAccount(ctx context.Context, a *account.ConnectedAccount) (*account.ConnectedAccount, error) {
	return a, nil
}

func (m *mockAccountRepo) UpdateTokens(ctx context.Context, id uint, tokens account.TokenSet) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated[id] = tokens
	return nil
}

func (m *mockAccountRepo) Delete(ctx context.Context, id uint, userID string) error {
	return nil
}

type mockCalendarProvider struct {
	events       map[string][]calendar.ProviderEvent
	listErr      error
	refreshed    account.TokenSet
	refreshErr   error
	refreshCalls int
}

func (p *mockCalendarProvider) RefreshToken(ctx context.Context, refreshToken string) (account.TokenSet, error) {
	p.refreshCalls++
	if p.refreshErr != nil {
		return account.TokenSet{}, p.refreshErr
	}
	return p.refreshed, nil
}

func (p *mockCalendarProvider) ListEvents(ctx context.Context, accessToken string, pageSize int) ([]calendar.ProviderEvent, error) {
	if p.listErr != nil {
		return nil, p.listErr
	}
	return p.events[accessToken], nil
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestSyncUpcomingFiltersAndSortsEvents(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	repo := newMockAccountRepo()
	repo.accounts = []*account.ConnectedAccount{{
		ID:                1,
		UserID:            "user-1",
		Provider:          account.ProviderGoogle,
		ProviderUserEmail: strPtr("a@example.com"),
		AccessToken:       "tok-a",
		ExpiresAt:         timePtr(now.Add(time.Hour)),
	}}

	provider := &mockCalendarProvider{events: map[string][]calendar.ProviderEvent{
		"tok-a": {
			{ID: "later", Summary: "Later", Start: now.Add(3 * time.Hour), End: now.Add(4 * time.Hour)},
			{ID: "past", Summary: "Already started", Start: now.Add(-time.Hour), End: now.Add(time.Hour)},
			{ID: "sooner", Summary: "", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)},
		},
	}}

	svc := calendar.NewService(repo, provider, 100)
	results, err := svc.SyncUpcoming(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("SyncUpcoming: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}

	events := results[0].Events
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 (past event dropped)", len(events))
	}
	if events[0].ID != "sooner" || events[1].ID != "later" {
		t.Errorf("order = %s, %s; want sooner, later", events[0].ID, events[1].ID)
	}
	if events[0].Title != "No Title" {
		t.Errorf("empty summary title = %q, want %q", events[0].Title, "No Title")
	}
	if events[0].Attendees == nil {
		t.Error("attendees should be an empty slice, not nil")
	}
}

func TestSyncUpcomingFailedAccountStillYieldsEntry(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	repo := newMockAccountRepo()
	repo.accounts = []*account.ConnectedAccount{
		{
			ID:                1,
			ProviderUserEmail: strPtr("ok@example.com"),
			AccessToken:       "tok-ok",
			ExpiresAt:         timePtr(now.Add(time.Hour)),
		},
		{
			ID:                2,
			ProviderUserEmail: strPtr("broken@example.com"),
			AccessToken:       "tok-broken",
			ExpiresAt:         timePtr(now.Add(-time.Hour)),
			// no refresh token available
		},
	}

	provider := &mockCalendarProvider{events: map[string][]calendar.ProviderEvent{
		"tok-ok": {{ID: "e1", Summary: "Sync", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)}},
	}}

	svc := calendar.NewService(repo, provider, 100)
	results, err := svc.SyncUpcoming(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("SyncUpcoming: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if len(results[0].Events) != 1 {
		t.Errorf("healthy account events = %d, want 1", len(results[0].Events))
	}
	if results[1].AccountEmail != "broken@example.com" {
		t.Errorf("failed account email = %q", results[1].AccountEmail)
	}
	if len(results[1].Events) != 0 || results[1].Error == "" {
		t.Errorf("failed account should have zero events and an error, got %+v", results[1])
	}
}

func TestSyncUpcomingRefreshesExpiringToken(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	repo := newMockAccountRepo()
	repo.accounts = []*account.ConnectedAccount{{
		ID:           1,
		AccessToken:  "tok-old",
		RefreshToken: strPtr("refresh-1"),
		ExpiresAt:    timePtr(now.Add(10 * time.Second)),
	}}

	provider := &mockCalendarProvider{
		refreshed: account.TokenSet{AccessToken: "tok-new", ExpiresAt: now.Add(time.Hour)},
		events: map[string][]calendar.ProviderEvent{
			"tok-new": {{ID: "e1", Summary: "After refresh", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)}},
		},
	}

	svc := calendar.NewService(repo, provider, 100)
	results, err := svc.SyncUpcoming(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("SyncUpcoming: %v", err)
	}
	if provider.refreshCalls != 1 {
		t.Errorf("refresh calls = %d, want 1", provider.refreshCalls)
	}
	if stored, ok := repo.updated[1]; !ok || stored.AccessToken != "tok-new" {
		t.Errorf("persisted tokens = %+v, want tok-new", stored)
	}
	if len(results) != 1 || len(results[0].Events) != 1 {
		t.Fatalf("results = %+v, want one account with one event", results)
	}
}

func TestSyncUpcomingListFailureIsFatal(t *testing.T) {
	repo := newMockAccountRepo()
	repo.listErr = errors.New("db down")

	svc := calendar.NewService(repo, &mockCalendarProvider{}, 100)
	if _, err := svc.SyncUpcoming(context.Background(), "user-1", time.Now()); err == nil {
		t.Fatal("expected error when account listing fails")
	}
}

func TestSyncOutcomeLabels(t *testing.T) {
	cases := []struct {
		name    string
		results []calendar.AccountEvents
		want    string
	}{
		{"no accounts", nil, "ok"},
		{"all healthy", []calendar.AccountEvents{{AccountEmail: "a"}, {AccountEmail: "b"}}, "ok"},
		{"partial failure", []calendar.AccountEvents{{AccountEmail: "a"}, {AccountEmail: "b", Error: "token expired"}}, "degraded"},
		{"all failed", []calendar.AccountEvents{{AccountEmail: "a", Error: "token expired"}, {AccountEmail: "b", Error: "api error"}}, "error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := calendar.SyncOutcomeForTest(tc.results); got != tc.want {
				t.Errorf("outcome = %q, want %q", got, tc.want)
			}
		})
	}
}
