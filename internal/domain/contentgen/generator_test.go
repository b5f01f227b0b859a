package contentgen_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"meetscribe-server/internal/domain/automation"
	"meetscribe-server/internal/domain/content"
	"meetscribe-server/internal/domain/contentgen"
	"meetscribe-server/internal/domain/meeting"
)

type mockAutomationRepo struct {
	automations []*automation.Automation
	err         error
}

func (m *mockAutomationRepo) ListByUser(ctx context.Context, userID string) ([]*automation.Automation, error) {
	return m.automations, m.err
}

func (m *mockAutomationRepo) FindByID(ctx context.Context, id uint, userID string) (*automation.Automation, error) {
	return nil, nil
}

func (m *mockAutomationRepo) Save(ctx context.Context, a *automation.Automation) (*automation.Automation, error) {
	return a, nil
}

func (m *mockAutomationRepo) Delete(ctx context.Context, id uint, userID string) error {
	return nil
}

type mockContentRepo struct {
	mu            sync.Mutex
	byType        map[string]string
	byAutomation  map[uint]string
	typeErr       error
	automationErr error
}

func newMockContentRepo() *mockContentRepo {
	return &mockContentRepo{
		byType:       make(map[string]string),
		byAutomation: make(map[uint]string),
	}
}

func (m *mockContentRepo) UpsertByType(ctx context.Context, gc *content.GeneratedContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.typeErr != nil {
		return m.typeErr
	}
	m.byType[gc.Type] = gc.Content
	return nil
}

func (m *mockContentRepo) UpsertByAutomation(ctx context.Context, gc *content.GeneratedContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.automationErr != nil {
		return m.automationErr
	}
	m.byAutomation[*gc.AutomationID] = gc.Content
	return nil
}

func (m *mockContentRepo) ListByMeeting(ctx context.Context, meetingID uint) ([]*content.GeneratedContent, error) {
	return nil, nil
}

// mockLLM returns canned text per system prompt and can fail selectively.
type mockLLM struct {
	mu       sync.Mutex
	calls    int
	failFor  string
	response func(systemPrompt string) string
}

func (l *mockLLM) Generate(ctx context.Context, systemPrompt, userContent string) (string, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	if l.failFor != "" && systemPrompt == l.failFor {
		return "", errors.New("model overloaded")
	}
	if l.response != nil {
		return l.response(systemPrompt), nil
	}
	return "generated: " + systemPrompt, nil
}

func testMeeting() *meeting.Meeting {
	return &meeting.Meeting{
		ID:     7,
		UserID: "user-1",
		Title:  "Portfolio review",
	}
}

func TestGenerateForMeetingWritesEmailAndAutomations(t *testing.T) {
	automations := &mockAutomationRepo{automations: []*automation.Automation{
		{ID: 1, UserID: "user-1", Name: "LinkedIn recap", Platform: "linkedin", Prompt: "write a linkedin post"},
		{ID: 2, UserID: "user-1", Name: "Tweet", Platform: "twitter", Prompt: "write a short tweet"},
	}}
	contents := newMockContentRepo()
	llm := &mockLLM{}
	g := contentgen.NewGenerator(automations, contents, llm)

	if err := g.GenerateForMeeting(context.Background(), testMeeting(), "we discussed rebalancing"); err != nil {
		t.Fatalf("GenerateForMeeting: %v", err)
	}

	if _, ok := contents.byType[content.TypeEmail]; !ok {
		t.Error("follow-up email artifact missing")
	}
	if len(contents.byAutomation) != 2 {
		t.Errorf("automation artifacts = %d, want 2", len(contents.byAutomation))
	}
	if llm.calls != 3 {
		t.Errorf("llm calls = %d, want 3", llm.calls)
	}
}

func TestGenerateForMeetingIsolatesAutomationFailure(t *testing.T) {
	automations := &mockAutomationRepo{automations: []*automation.Automation{
		{ID: 1, UserID: "user-1", Platform: "linkedin", Prompt: "failing prompt"},
		{ID: 2, UserID: "user-1", Platform: "twitter", Prompt: "working prompt"},
	}}
	contents := newMockContentRepo()
	llm := &mockLLM{failFor: "failing prompt"}
	g := contentgen.NewGenerator(automations, contents, llm)

	if err := g.GenerateForMeeting(context.Background(), testMeeting(), "transcript"); err != nil {
		t.Fatalf("GenerateForMeeting: %v", err)
	}

	if _, ok := contents.byAutomation[1]; ok {
		t.Error("failed automation should not have persisted content")
	}
	if _, ok := contents.byAutomation[2]; !ok {
		t.Error("healthy automation should have persisted content")
	}
	if _, ok := contents.byType[content.TypeEmail]; !ok {
		t.Error("email should still be generated when an automation fails")
	}
}

func TestGenerateForMeetingEmailPersistFailureSurfaces(t *testing.T) {
	automations := &mockAutomationRepo{automations: []*automation.Automation{
		{ID: 1, UserID: "user-1", Platform: "linkedin", Prompt: "post prompt"},
	}}
	contents := newMockContentRepo()
	contents.typeErr = errors.New("db write failed")
	llm := &mockLLM{}
	g := contentgen.NewGenerator(automations, contents, llm)

	err := g.GenerateForMeeting(context.Background(), testMeeting(), "transcript")
	if err == nil {
		t.Fatal("expected error when the email write fails")
	}
	if _, ok := contents.byAutomation[1]; !ok {
		t.Error("automation content should persist despite email write failure")
	}
}

func TestGenerateForMeetingAllWritesFailingSurfaces(t *testing.T) {
	automations := &mockAutomationRepo{automations: []*automation.Automation{
		{ID: 1, UserID: "user-1", Platform: "linkedin", Prompt: "post prompt"},
	}}
	contents := newMockContentRepo()
	contents.typeErr = errors.New("disk full")
	contents.automationErr = errors.New("disk full")
	llm := &mockLLM{}
	g := contentgen.NewGenerator(automations, contents, llm)

	if err := g.GenerateForMeeting(context.Background(), testMeeting(), "transcript"); err == nil {
		t.Fatal("expected error when every content write fails")
	}
	if len(contents.byType) != 0 || len(contents.byAutomation) != 0 {
		t.Errorf("content rows = %d/%d, want none", len(contents.byType), len(contents.byAutomation))
	}
}

func TestGenerateForMeetingNoAutomations(t *testing.T) {
	automations := &mockAutomationRepo{}
	contents := newMockContentRepo()
	llm := &mockLLM{response: func(string) string { return "email body" }}
	g := contentgen.NewGenerator(automations, contents, llm)

	done := make(chan error, 1)
	go func() {
		done <- g.GenerateForMeeting(context.Background(), testMeeting(), "transcript")
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("GenerateForMeeting: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("GenerateForMeeting did not finish")
	}

	if contents.byType[content.TypeEmail] != "email body" {
		t.Errorf("email = %q, want %q", contents.byType[content.TypeEmail], "email body")
	}
	if llm.calls != 1 {
		t.Errorf("llm calls = %d, want 1", llm.calls)
	}
}

func TestGenerateForMeetingAutomationListFailureIsFatal(t *testing.T) {
	automations := &mockAutomationRepo{err: errors.New("db down")}
	g := contentgen.NewGenerator(automations, newMockContentRepo(), &mockLLM{})

	if err := g.GenerateForMeeting(context.Background(), testMeeting(), "transcript"); err == nil {
		t.Fatal("expected error when automation listing fails")
	}
}
