package transcript_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"meetscribe-server/internal/domain/meeting"
	"meetscribe-server/internal/domain/transcript"
	"meetscribe-server/internal/utils/platformerrors"
)

type mockMeetingRepo struct {
	awaiting  []*meeting.Meeting
	completed map[uint]string
	errored   map[uint]string
}

func newMockMeetingRepo() *mockMeetingRepo {
	return &mockMeetingRepo{
		completed: make(map[uint]string),
		errored:   make(map[uint]string),
	}
}

func (m *mockMeetingRepo) Upsert(ctx context.Context, rec *meeting.Meeting) (*meeting.Meeting, error) {
	return rec, nil
}

func (m *mockMeetingRepo) FindByID(ctx context.Context, id uint, userID string) (*meeting.Meeting, error) {
	return nil, nil
}

func (m *mockMeetingRepo) ListByUser(ctx context.Context, userID string) ([]*meeting.Meeting, error) {
	return nil, nil
}

func (m *mockMeetingRepo) FindDueForDispatch(ctx context.Context, from, to time.Time) ([]*meeting.Meeting, error) {
	return nil, nil
}

func (m *mockMeetingRepo) FindAwaitingTranscript(ctx context.Context, now time.Time) ([]*meeting.Meeting, error) {
	return m.awaiting, nil
}

func (m *mockMeetingRepo) SetBotScheduled(ctx context.Context, id uint, botID string) (bool, error) {
	return false, nil
}

func (m *mockMeetingRepo) CompleteIfScheduled(ctx context.Context, id uint, tr string) (bool, error) {
	if _, done := m.completed[id]; done {
		return false, nil
	}
	m.completed[id] = tr
	return true, nil
}

func (m *mockMeetingRepo) MarkError(ctx context.Context, id uint, message string) error {
	m.errored[id] = message
	return nil
}

type mockBotProvider struct {
	status     transcript.BotStatus
	statusErrs []error
	getCalls   int
	segments   []transcript.Segment
	fetchErr   error
}

func (p *mockBotProvider) GetBot(ctx context.Context, botID string) (transcript.BotStatus, error) {
	call := p.getCalls
	p.getCalls++
	if call < len(p.statusErrs) && p.statusErrs[call] != nil {
		return transcript.BotStatus{}, p.statusErrs[call]
	}
	return p.status, nil
}

func (p *mockBotProvider) FetchTranscript(ctx context.Context, url string) ([]transcript.Segment, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return p.segments, nil
}

type mockGenerator struct {
	calls      int
	transcript string
	err        error
}

func (g *mockGenerator) GenerateForMeeting(ctx context.Context, m *meeting.Meeting, tr string) error {
	g.calls++
	g.transcript = tr
	return g.err
}

func strPtr(s string) *string { return &s }

func scheduledMeeting(id uint) *meeting.Meeting {
	return &meeting.Meeting{
		ID:     id,
		UserID: "user-1",
		BotID:  strPtr("bot-1"),
		Status: meeting.StatusScheduled,
	}
}

func newTestPoller(repo *mockMeetingRepo, provider *mockBotProvider, gen *mockGenerator, maxAttempts int) (*transcript.Poller, *[]time.Duration) {
	p := transcript.NewPoller(repo, provider, gen, maxAttempts, 10*time.Millisecond)
	slept := &[]time.Duration{}
	p.SetSleepForTest(func(d time.Duration) { *slept = append(*slept, d) })
	return p, slept
}

func TestPollOnceCompletesMeeting(t *testing.T) {
	repo := newMockMeetingRepo()
	repo.awaiting = []*meeting.Meeting{scheduledMeeting(1)}
	provider := &mockBotProvider{
		status: transcript.BotStatus{State: transcript.StateMediaReady, TranscriptURL: "https://t/1"},
		segments: []transcript.Segment{
			{Text: " Hello "},
			{Text: ""},
			{Text: "world"},
		},
	}
	gen := &mockGenerator{}
	p, _ := newTestPoller(repo, provider, gen, 3)

	completed, err := p.PollOnce(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
	if gen.transcript != "Hello world" {
		t.Errorf("transcript = %q, want %q", gen.transcript, "Hello world")
	}
	if repo.completed[1] != "Hello world" {
		t.Errorf("stored transcript = %q, want %q", repo.completed[1], "Hello world")
	}
}

func TestPollOnceEmptyTranscriptMarksError(t *testing.T) {
	repo := newMockMeetingRepo()
	repo.awaiting = []*meeting.Meeting{scheduledMeeting(1)}
	provider := &mockBotProvider{
		status:   transcript.BotStatus{State: transcript.StateMediaReady, TranscriptURL: "https://t/1"},
		segments: []transcript.Segment{{Text: "   "}, {Text: ""}},
	}
	gen := &mockGenerator{}
	p, _ := newTestPoller(repo, provider, gen, 3)

	completed, err := p.PollOnce(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if completed != 0 {
		t.Errorf("completed = %d, want 0", completed)
	}
	if gen.calls != 0 {
		t.Errorf("generator calls = %d, want 0", gen.calls)
	}
	if _, ok := repo.errored[1]; !ok {
		t.Error("meeting should be marked error")
	}
}

func TestPollOnceContentWriteFailureMarksError(t *testing.T) {
	repo := newMockMeetingRepo()
	repo.awaiting = []*meeting.Meeting{scheduledMeeting(1)}
	provider := &mockBotProvider{
		status:   transcript.BotStatus{State: transcript.StateMediaReady, TranscriptURL: "https://t/1"},
		segments: []transcript.Segment{{Text: "hello"}},
	}
	gen := &mockGenerator{err: errors.New("disk full")}
	p, _ := newTestPoller(repo, provider, gen, 3)

	completed, err := p.PollOnce(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if completed != 0 {
		t.Errorf("completed = %d, want 0", completed)
	}
	if _, ok := repo.completed[1]; ok {
		t.Error("meeting must not complete when content generation fails to persist")
	}
	if _, ok := repo.errored[1]; !ok {
		t.Error("meeting should be marked error")
	}
}

func TestPollOnceBotStillWorkingLeavesMeeting(t *testing.T) {
	repo := newMockMeetingRepo()
	repo.awaiting = []*meeting.Meeting{scheduledMeeting(1)}
	provider := &mockBotProvider{
		status: transcript.BotStatus{State: "in_call_recording"},
	}
	gen := &mockGenerator{}
	p, _ := newTestPoller(repo, provider, gen, 3)

	completed, err := p.PollOnce(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if completed != 0 {
		t.Errorf("completed = %d, want 0", completed)
	}
	if len(repo.errored) != 0 {
		t.Errorf("errored = %v, want none", repo.errored)
	}
	if len(repo.completed) != 0 {
		t.Errorf("completed = %v, want none", repo.completed)
	}
}

func TestPollOnceBotFatalMarksError(t *testing.T) {
	repo := newMockMeetingRepo()
	repo.awaiting = []*meeting.Meeting{scheduledMeeting(1)}
	provider := &mockBotProvider{
		status: transcript.BotStatus{State: transcript.StateFatal},
	}
	gen := &mockGenerator{}
	p, _ := newTestPoller(repo, provider, gen, 3)

	if _, err := p.PollOnce(context.Background(), time.Now()); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if _, ok := repo.errored[1]; !ok {
		t.Error("meeting should be marked error")
	}
}

func TestPollRetriesTransientFailuresWithBackoff(t *testing.T) {
	rateLimited := platformerrors.NewError(context.Background(),
		platformerrors.LayerInfrastructure, platformerrors.ErrorTypeRateLimited,
		"too many requests", nil, "8f2e1d0c-9b8a-4c7d-a6e5-f4d3c2b1a0e9")

	repo := newMockMeetingRepo()
	repo.awaiting = []*meeting.Meeting{scheduledMeeting(1)}
	provider := &mockBotProvider{
		status:     transcript.BotStatus{State: transcript.StateMediaReady, TranscriptURL: "https://t/1"},
		statusErrs: []error{rateLimited, rateLimited, nil},
		segments:   []transcript.Segment{{Text: "recovered"}},
	}
	gen := &mockGenerator{}
	p, slept := newTestPoller(repo, provider, gen, 4)

	completed, err := p.PollOnce(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}
	if provider.getCalls != 3 {
		t.Errorf("GetBot calls = %d, want 3", provider.getCalls)
	}
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}
	if len(*slept) != len(want) {
		t.Fatalf("backoff sleeps = %v, want %v", *slept, want)
	}
	for i := range want {
		if (*slept)[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v", i, (*slept)[i], want[i])
		}
	}
}

func TestPollGivesUpAfterAttemptBudget(t *testing.T) {
	rateLimited := platformerrors.NewError(context.Background(),
		platformerrors.LayerInfrastructure, platformerrors.ErrorTypeRateLimited,
		"too many requests", nil, "3c4d5e6f-7a8b-4c9d-8e0f-1a2b3c4d5e6f")

	repo := newMockMeetingRepo()
	repo.awaiting = []*meeting.Meeting{scheduledMeeting(1)}
	provider := &mockBotProvider{
		statusErrs: []error{rateLimited, rateLimited},
	}
	gen := &mockGenerator{}
	p, _ := newTestPoller(repo, provider, gen, 2)

	completed, err := p.PollOnce(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if completed != 0 {
		t.Errorf("completed = %d, want 0", completed)
	}
	if provider.getCalls != 2 {
		t.Errorf("GetBot calls = %d, want 2", provider.getCalls)
	}
	if _, ok := repo.errored[1]; !ok {
		t.Error("meeting should be marked error after retry budget")
	}
}

func TestPollDoesNotRetryPermanentFailure(t *testing.T) {
	repo := newMockMeetingRepo()
	repo.awaiting = []*meeting.Meeting{scheduledMeeting(1)}
	provider := &mockBotProvider{
		statusErrs: []error{errors.New("bot not found")},
	}
	gen := &mockGenerator{}
	p, _ := newTestPoller(repo, provider, gen, 4)

	if _, err := p.PollOnce(context.Background(), time.Now()); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if provider.getCalls != 1 {
		t.Errorf("GetBot calls = %d, want 1", provider.getCalls)
	}
	if _, ok := repo.errored[1]; !ok {
		t.Error("meeting should be marked error")
	}
}
