package publisher_test

import (
	"context"
	"testing"
	"time"

	"meetscribe-server/internal/domain"
	"meetscribe-server/internal/domain/account"
	"meetscribe-server/internal/domain/publisher"
	"meetscribe-server/internal/utils/platformerrors"
)

type mockAccountRepo struct {
	single *account.ConnectedAccount
}

func (m *mockAccountRepo) ListByUserAndProvider(ctx context.Context, userID, provider string) ([]*account.ConnectedAccount, error) {
	return nil, nil
}

func (m *mockAccountRepo) ListByUser(ctx context.Context, userID string) ([]*account.ConnectedAccount, error) {
	return nil, nil
}

func (m *mockAccountRepo) FindSingle(ctx context.Context, userID, provider string) (*account.ConnectedAccount, error) {
	return m.single, nil
}

func (m *mockAccountRepo) UpsertMultiAccount(ctx context.Context, a *account.ConnectedAccount) (*account.ConnectedAccount, error) {
	return a, nil
}

func (m *mockAccountRepo) UpsertSingleAccount(ctx context.Context, a *account.ConnectedAccount) (*account.ConnectedAccount, error) {
	return a, nil
}

func (m *mockAccountRepo) UpdateTokens(ctx context.Context, id uint, tokens account.TokenSet) error {
	return nil
}

func (m *mockAccountRepo) Delete(ctx context.Context, id uint, userID string) error {
	return nil
}

type mockSocialClient struct {
	postID string
	calls  int
}

func (c *mockSocialClient) PublishPost(ctx context.Context, accessToken, providerUserID, text string) (string, error) {
	c.calls++
	return c.postID, nil
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func caller() domain.Principal {
	return domain.Principal{UserID: "user-1", AuthMethod: domain.AuthMethodJWT}
}

func linkedInAccount(expiresAt time.Time) *account.ConnectedAccount {
	return &account.ConnectedAccount{
		ID:             1,
		UserID:         "user-1",
		Provider:       account.ProviderLinkedIn,
		ProviderUserID: "urn-123",
		AccessToken:    "tok",
		RefreshToken:   strPtr("refresh"),
		ExpiresAt:      timePtr(expiresAt),
	}
}

func TestPublishHappyPath(t *testing.T) {
	client := &mockSocialClient{postID: "post-9"}
	p := publisher.NewPublisher(
		&mockAccountRepo{single: linkedInAccount(time.Now().Add(time.Hour))},
		map[string]publisher.SocialClient{"linkedin": client},
	)

	postID, err := p.Publish(context.Background(), caller(), "linkedin", "great meeting today")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if postID != "post-9" {
		t.Errorf("post id = %q, want post-9", postID)
	}
	if client.calls != 1 {
		t.Errorf("client calls = %d, want 1", client.calls)
	}
}

func TestPublishExpiredTokenFailsBeforeNetworkCall(t *testing.T) {
	client := &mockSocialClient{postID: "post-9"}
	p := publisher.NewPublisher(
		&mockAccountRepo{single: linkedInAccount(time.Now().Add(-time.Minute))},
		map[string]publisher.SocialClient{"linkedin": client},
	)

	_, err := p.Publish(context.Background(), caller(), "linkedin", "hello")
	if err == nil {
		t.Fatal("expected error for expired token")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized) {
		t.Errorf("error type = %v, want unauthorized", err)
	}
	if client.calls != 0 {
		t.Errorf("client calls = %d, want 0", client.calls)
	}
}

func TestPublishMissingAccount(t *testing.T) {
	p := publisher.NewPublisher(
		&mockAccountRepo{},
		map[string]publisher.SocialClient{"linkedin": &mockSocialClient{}},
	)

	_, err := p.Publish(context.Background(), caller(), "linkedin", "hello")
	if err == nil {
		t.Fatal("expected error when account is not connected")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("error type = %v, want not found", err)
	}
}

func TestPublishUnsupportedPlatform(t *testing.T) {
	p := publisher.NewPublisher(
		&mockAccountRepo{single: linkedInAccount(time.Now().Add(time.Hour))},
		map[string]publisher.SocialClient{"linkedin": &mockSocialClient{}},
	)

	_, err := p.Publish(context.Background(), caller(), "myspace", "hello")
	if err == nil {
		t.Fatal("expected error for unsupported platform")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("error type = %v, want validation", err)
	}
}

func TestPublishEmptyText(t *testing.T) {
	client := &mockSocialClient{}
	p := publisher.NewPublisher(
		&mockAccountRepo{single: linkedInAccount(time.Now().Add(time.Hour))},
		map[string]publisher.SocialClient{"linkedin": client},
	)

	_, err := p.Publish(context.Background(), caller(), "linkedin", "   ")
	if err == nil {
		t.Fatal("expected error for empty content")
	}
	if client.calls != 0 {
		t.Errorf("client calls = %d, want 0", client.calls)
	}
}
