// Package publisher posts previously generated content to social platforms
// under the caller's stored credential.
package publisher

import (
	"context"
	"strings"
	"time"

	"meetscribe-server/internal/domain"
	"meetscribe-server/internal/domain/account"
	"meetscribe-server/internal/infrastructure/logger"
	"meetscribe-server/internal/infrastructure/metrics"
	"meetscribe-server/internal/utils/platformerrors"
)

// SocialClient publishes one post under the given account identity. Provider
// rejections arrive as PlatformErrors classified unauthorized / forbidden /
// rate-limited / external.
type SocialClient interface {
	PublishPost(ctx context.Context, accessToken, providerUserID, text string) (string, error)
}

// Publisher resolves the caller's stored credential and submits the post.
// Publishing is not tracked idempotently: it is always an explicit user
// action and re-invoking duplicates the post on the external platform.
type Publisher struct {
	accounts account.Repository
	clients  map[string]SocialClient
}

// NewPublisher constructs a Publisher with one client per supported platform.
func NewPublisher(accounts account.Repository, clients map[string]SocialClient) *Publisher {
	return &Publisher{accounts: accounts, clients: clients}
}

// Publish posts content to the target platform for the caller. An absent or
// expired credential fails with a reconnect-required error before any network
// call is attempted. Returns the new post's id.
func (p *Publisher) Publish(ctx context.Context, caller domain.Principal, platform, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "content cannot be empty", nil,
			"6a1f0d0e-32f4-4f2e-a6a2-6a9a2e6b5c01")
	}

	client, ok := p.clients[platform]
	if !ok {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "platform not supported: "+platform, nil,
			"e7c9d7a4-0f7b-4f6e-bb0e-1d2f3a4b5c02")
	}

	acct, err := p.accounts.FindSingle(ctx, caller.UserID, platform)
	if err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load connected account")
	}
	if acct == nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound, platform+" account not connected", nil,
			"9b8a7c6d-5e4f-4a3b-9c2d-1e0f9a8b7c03")
	}
	if acct.Expired(time.Now()) {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeUnauthorized, platform+" token has expired, please reconnect your account", nil,
			"4d3c2b1a-0f9e-4d8c-b7a6-5e4f3d2c1b04")
	}

	postID, err := client.PublishPost(ctx, acct.AccessToken, acct.ProviderUserID, text)
	if err != nil {
		metrics.RecordPublish(platform, "error")
		return "", err
	}

	metrics.RecordPublish(platform, "ok")
	log := logger.GetLogger()
	log.Info().
		Str("platform", platform).
		Str("post_id", postID).
		Msg("published post")
	return postID, nil
}
