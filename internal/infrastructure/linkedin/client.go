// Package linkedin is the client for LinkedIn OAuth and the UGC posts API.
package linkedin

import (
	"context"
	"fmt"
	"time"

	"meetscribe-server/internal/domain/account"
	"meetscribe-server/internal/domain/publisher"
	"meetscribe-server/internal/infrastructure/metrics"
	"meetscribe-server/internal/utils/httpclients"
	"meetscribe-server/internal/utils/platformerrors"

	"resty.dev/v3"
)

const (
	tokenURL    = "https://www.linkedin.com/oauth/v2/accessToken"
	userInfoURL = "https://api.linkedin.com/v2/userinfo"
	ugcPostsURL = "https://api.linkedin.com/v2/ugcPosts"
)

// Client exchanges LinkedIn OAuth tokens and publishes UGC posts.
type Client struct {
	http         *resty.Client
	clientID     string
	clientSecret string
	redirectURL  string
	timeout      time.Duration
}

// NewClient builds a LinkedIn client with the app's OAuth credentials.
func NewClient(clientID, clientSecret, redirectURL string, timeout time.Duration) *Client {
	return &Client{
		http:         httpclients.NewClient("LinkedInClient"),
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		timeout:      timeout,
	}
}

var _ publisher.SocialClient = (*Client)(nil)

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	ErrorDescription string `json:"error_description"`
}

// UserInfo holds the OpenID profile fields we persist. "sub" is the member's
// unique id.
type UserInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

type shareCommentary struct {
	Text string `json:"text"`
}

type shareContent struct {
	ShareCommentary    shareCommentary `json:"shareCommentary"`
	ShareMediaCategory string          `json:"shareMediaCategory"`
}

type ugcPostRequest struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent map[string]shareContent `json:"specificContent"`
	Visibility      map[string]string       `json:"visibility"`
}

type ugcPostResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ExchangeCode trades an OAuth authorization code for a token set. LinkedIn
// does not issue refresh tokens on the standard product tier.
func (c *Client) ExchangeCode(ctx context.Context, code string) (account.TokenSet, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var respBody tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "authorization_code",
			"code":          code,
			"redirect_uri":  c.redirectURL,
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
		}).
		SetResult(&respBody).
		SetError(&respBody).
		Post(tokenURL)
	if err != nil {
		return account.TokenSet{}, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "linkedin token exchange failed")
	}
	if resp.IsError() {
		message := "linkedin token exchange rejected"
		if respBody.ErrorDescription != "" {
			message = fmt.Sprintf("%s: %s", message, respBody.ErrorDescription)
		}
		return account.TokenSet{}, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, fmt.Sprintf("%s (status %d)", message, resp.StatusCode()), nil,
			"5e4d3c2b-1a0f-4e9d-8c7b-6a5f4e3d2c51")
	}
	return account.TokenSet{
		AccessToken: respBody.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(respBody.ExpiresIn) * time.Second),
	}, nil
}

// GetUserInfo fetches the member's OpenID profile for an access token.
func (c *Client) GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var info UserInfo
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&info).
		Get(userInfoURL)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "linkedin userinfo request failed")
	}
	if resp.IsError() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("linkedin userinfo rejected (status %d)", resp.StatusCode()), nil,
			"8d7c6b5a-4f3e-4d2c-9b1a-0e9f8d7c6b62")
	}
	return &info, nil
}

// PublishPost publishes text as a UGC post under the member identity and
// returns the new post's id. Provider rejections are classified so callers
// can tell the user whether to reconnect, wait, or give up.
func (c *Client) PublishPost(ctx context.Context, accessToken, providerUserID, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload := ugcPostRequest{
		Author:         "urn:li:person:" + providerUserID,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]shareContent{
			"com.linkedin.ugc.ShareContent": {
				ShareCommentary:    shareCommentary{Text: text},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "CONNECTIONS",
		},
	}

	var respBody ugcPostResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("X-Restli-Protocol-Version", "2.0.0").
		SetBody(payload).
		SetResult(&respBody).
		SetError(&respBody).
		Post(ugcPostsURL)
	if err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "linkedin publish request failed")
	}
	if resp.IsError() {
		return "", c.publishError(ctx, resp.StatusCode(), respBody.Message)
	}
	return respBody.ID, nil
}

func (c *Client) publishError(ctx context.Context, status int, providerMessage string) error {
	var (
		errType platformerrors.ErrorType
		message string
	)
	switch status {
	case 401:
		errType = platformerrors.ErrorTypeUnauthorized
		message = "LinkedIn token expired. Please reconnect your account."
	case 403:
		errType = platformerrors.ErrorTypeForbidden
		message = "Insufficient permissions to post on LinkedIn."
	case 429:
		errType = platformerrors.ErrorTypeRateLimited
		message = "Rate limited by LinkedIn. Please try again later."
	default:
		errType = platformerrors.ErrorTypeExternal
		message = providerMessage
		if message == "" {
			message = fmt.Sprintf("LinkedIn API error: %d", status)
		}
	}
	metrics.RecordProviderError("linkedin", string(errType))
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, errType, message, nil,
		"3b2a1c0d-9e8f-4b7a-8d6c-5f4e3b2a1c73")
}
