package bot_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"meetscribe-server/internal/domain"
	"meetscribe-server/internal/domain/bot"
	"meetscribe-server/internal/domain/calendar"
	"meetscribe-server/internal/domain/meeting"
)

// mockMeetingRepo is an in-memory stand-in for the meeting repository.
type mockMeetingRepo struct {
	meetings map[uint]*meeting.Meeting
	upserted *meeting.Meeting
	due      []*meeting.Meeting
	dueErr   error
}

func newMockMeetingRepo() *mockMeetingRepo {
	return &mockMeetingRepo{meetings: make(map[uint]*meeting.Meeting)}
}

func (m *mockMeetingRepo) Upsert(ctx context.Context, rec *meeting.Meeting) (*meeting.Meeting, error) {
	m.upserted = rec
	return rec, nil
}

func (m *mockMeetingRepo) FindByID(ctx context.Context, id uint, userID string) (*meeting.Meeting, error) {
	return m.meetings[id], nil
}

func (m *mockMeetingRepo) ListByUser(ctx context.Context, userID string) ([]*meeting.Meeting, error) {
	return nil, nil
}

func (m *mockMeetingRepo) FindDueForDispatch(ctx context.Context, from, to time.Time) ([]*meeting.Meeting, error) {
	return m.due, m.dueErr
}

func (m *mockMeetingRepo) FindAwaitingTranscript(ctx context.Context, now time.Time) ([]*meeting.Meeting, error) {
	return nil, nil
}

func (m *mockMeetingRepo) SetBotScheduled(ctx context.Context, id uint, botID string) (bool, error) {
	rec, ok := m.meetings[id]
	if !ok || rec.Status != meeting.StatusPending {
		return false, nil
	}
	rec.BotID = &botID
	rec.Status = meeting.StatusScheduled
	return true, nil
}

func (m *mockMeetingRepo) CompleteIfScheduled(ctx context.Context, id uint, transcript string) (bool, error) {
	return false, nil
}

func (m *mockMeetingRepo) MarkError(ctx context.Context, id uint, message string) error {
	rec, ok := m.meetings[id]
	if !ok {
		return errors.New("not found")
	}
	rec.Status = meeting.StatusError
	rec.ErrorMessage = &message
	return nil
}

// mockProvider records CreateBot calls and returns canned results.
type mockProvider struct {
	botID string
	err   error
	calls int
}

func (p *mockProvider) CreateBot(ctx context.Context, req bot.CreateRequest) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.botID, nil
}

func strPtr(s string) *string { return &s }

func pendingMeeting(id uint, url string) *meeting.Meeting {
	m := &meeting.Meeting{
		ID:                   id,
		UserID:               "user-1",
		Title:                "Weekly sync",
		StartTime:            time.Now().Add(10 * time.Minute),
		EndTime:              time.Now().Add(40 * time.Minute),
		Platform:             meeting.PlatformZoom,
		TranscriptionEnabled: true,
		Status:               meeting.StatusPending,
	}
	if url != "" {
		m.MeetingURL = strPtr(url)
	}
	return m
}

func TestToggleTranscriptionEnableSchedulesBot(t *testing.T) {
	repo := newMockMeetingRepo()
	provider := &mockProvider{botID: "bot-42"}
	d := bot.NewDispatcher(repo, provider)

	event := calendar.Event{
		ID:        "ev-1",
		Title:     "Client call",
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now().Add(2 * time.Hour),
		Location:  "https://zoom.us/j/555",
	}

	got, err := d.ToggleTranscription(context.Background(), domain.Principal{UserID: "user-1"}, event, true)
	if err != nil {
		t.Fatalf("ToggleTranscription: %v", err)
	}
	if got.Status != meeting.StatusScheduled {
		t.Errorf("status = %s, want scheduled", got.Status)
	}
	if got.BotID == nil || *got.BotID != "bot-42" {
		t.Errorf("bot id = %v, want bot-42", got.BotID)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestToggleTranscriptionEnableWithoutURLStaysPending(t *testing.T) {
	repo := newMockMeetingRepo()
	provider := &mockProvider{botID: "bot-42"}
	d := bot.NewDispatcher(repo, provider)

	event := calendar.Event{
		ID:        "ev-2",
		Title:     "Planning",
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now().Add(2 * time.Hour),
		Location:  "Room 7",
	}

	got, err := d.ToggleTranscription(context.Background(), domain.Principal{UserID: "user-1"}, event, true)
	if err != nil {
		t.Fatalf("ToggleTranscription: %v", err)
	}
	if got.Status != meeting.StatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
	if provider.calls != 0 {
		t.Errorf("provider calls = %d, want 0", provider.calls)
	}
}

func TestToggleTranscriptionDisableCancels(t *testing.T) {
	repo := newMockMeetingRepo()
	provider := &mockProvider{botID: "bot-42"}
	d := bot.NewDispatcher(repo, provider)

	event := calendar.Event{
		ID:        "ev-3",
		Title:     "1:1",
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now().Add(2 * time.Hour),
		Location:  "https://zoom.us/j/777",
	}

	got, err := d.ToggleTranscription(context.Background(), domain.Principal{UserID: "user-1"}, event, false)
	if err != nil {
		t.Fatalf("ToggleTranscription: %v", err)
	}
	if got.Status != meeting.StatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
	if provider.calls != 0 {
		t.Errorf("provider calls = %d, want 0", provider.calls)
	}
}

func TestToggleTranscriptionBotFailureRecordsError(t *testing.T) {
	repo := newMockMeetingRepo()
	provider := &mockProvider{err: errors.New("provider down")}
	d := bot.NewDispatcher(repo, provider)

	event := calendar.Event{
		ID:        "ev-4",
		Title:     "Demo",
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now().Add(2 * time.Hour),
		Location:  "https://zoom.us/j/888",
	}

	got, err := d.ToggleTranscription(context.Background(), domain.Principal{UserID: "user-1"}, event, true)
	if err != nil {
		t.Fatalf("ToggleTranscription: %v", err)
	}
	if got.Status != meeting.StatusError {
		t.Errorf("status = %s, want error", got.Status)
	}
	if got.BotID != nil {
		t.Errorf("bot id = %v, want nil", got.BotID)
	}
}

func TestDispatchDueSchedulesAllWithURLs(t *testing.T) {
	repo := newMockMeetingRepo()
	m1 := pendingMeeting(1, "https://zoom.us/j/1")
	m2 := pendingMeeting(2, "https://zoom.us/j/2")
	repo.meetings[1] = m1
	repo.meetings[2] = m2
	repo.due = []*meeting.Meeting{m1, m2}

	provider := &mockProvider{botID: "bot-1"}
	d := bot.NewDispatcher(repo, provider)

	scheduled, err := d.DispatchDue(context.Background(), time.Now(), 15*time.Minute)
	if err != nil {
		t.Fatalf("DispatchDue: %v", err)
	}
	if scheduled != 2 {
		t.Errorf("scheduled = %d, want 2", scheduled)
	}
	if m1.Status != meeting.StatusScheduled || m2.Status != meeting.StatusScheduled {
		t.Errorf("statuses = %s, %s, want scheduled", m1.Status, m2.Status)
	}
}

func TestDispatchDueMarksErrorWhenNoURL(t *testing.T) {
	repo := newMockMeetingRepo()
	m1 := pendingMeeting(1, "")
	repo.meetings[1] = m1
	repo.due = []*meeting.Meeting{m1}

	provider := &mockProvider{botID: "bot-1"}
	d := bot.NewDispatcher(repo, provider)

	scheduled, err := d.DispatchDue(context.Background(), time.Now(), 15*time.Minute)
	if err != nil {
		t.Fatalf("DispatchDue: %v", err)
	}
	if scheduled != 0 {
		t.Errorf("scheduled = %d, want 0", scheduled)
	}
	if m1.Status != meeting.StatusError {
		t.Errorf("status = %s, want error", m1.Status)
	}
	if provider.calls != 0 {
		t.Errorf("provider calls = %d, want 0", provider.calls)
	}
}

func TestDispatchDueIsolatesProviderFailures(t *testing.T) {
	repo := newMockMeetingRepo()
	m1 := pendingMeeting(1, "https://zoom.us/j/1")
	repo.meetings[1] = m1
	repo.due = []*meeting.Meeting{m1}

	provider := &mockProvider{err: errors.New("rate limited")}
	d := bot.NewDispatcher(repo, provider)

	scheduled, err := d.DispatchDue(context.Background(), time.Now(), 15*time.Minute)
	if err != nil {
		t.Fatalf("DispatchDue: %v", err)
	}
	if scheduled != 0 {
		t.Errorf("scheduled = %d, want 0", scheduled)
	}
	if m1.Status != meeting.StatusError {
		t.Errorf("status = %s, want error", m1.Status)
	}
	if m1.ErrorMessage == nil || *m1.ErrorMessage != "rate limited" {
		t.Errorf("error message = %v, want rate limited", m1.ErrorMessage)
	}
}

func TestDispatchDueDropsLostTransition(t *testing.T) {
	repo := newMockMeetingRepo()
	m1 := pendingMeeting(1, "https://zoom.us/j/1")
	m1.Status = meeting.StatusCancelled // user disabled between query and dispatch
	repo.meetings[1] = m1
	repo.due = []*meeting.Meeting{m1}

	provider := &mockProvider{botID: "bot-1"}
	d := bot.NewDispatcher(repo, provider)

	scheduled, err := d.DispatchDue(context.Background(), time.Now(), 15*time.Minute)
	if err != nil {
		t.Fatalf("DispatchDue: %v", err)
	}
	if scheduled != 0 {
		t.Errorf("scheduled = %d, want 0", scheduled)
	}
	if m1.Status != meeting.StatusCancelled {
		t.Errorf("status = %s, want cancelled", m1.Status)
	}
}
