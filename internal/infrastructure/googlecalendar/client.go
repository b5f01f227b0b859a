// Package googlecalendar is the client for Google's OAuth token and Calendar
// APIs.
package googlecalendar

import (
	"context"
	"fmt"
	"time"

	"meetscribe-server/internal/domain/account"
	"meetscribe-server/internal/domain/calendar"
	"meetscribe-server/internal/domain/meeting"
	"meetscribe-server/internal/infrastructure/metrics"
	"meetscribe-server/internal/utils/httpclients"
	"meetscribe-server/internal/utils/platformerrors"

	"resty.dev/v3"
)

const (
	tokenURL    = "https://oauth2.googleapis.com/token"
	userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	eventsURL   = "https://www.googleapis.com/calendar/v3/calendars/primary/events"
)

// Client exchanges and refreshes Google OAuth tokens and lists calendar
// events.
type Client struct {
	http         *resty.Client
	clientID     string
	clientSecret string
	redirectURL  string
	timeout      time.Duration
}

// NewClient builds a Google client with the app's OAuth credentials.
func NewClient(clientID, clientSecret, redirectURL string, timeout time.Duration) *Client {
	return &Client{
		http:         httpclients.NewClient("GoogleClient"),
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		timeout:      timeout,
	}
}

var _ calendar.Provider = (*Client)(nil)

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	ErrorDescription string `json:"error_description"`
}

// UserInfo is the subset of the Google profile we persist.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

type apiAttendee struct {
	Email          string `json:"email"`
	ResponseStatus string `json:"responseStatus"`
}

type apiEvent struct {
	ID          string        `json:"id"`
	Summary     string        `json:"summary"`
	Start       eventTime     `json:"start"`
	End         eventTime     `json:"end"`
	Attendees   []apiAttendee `json:"attendees"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
}

type eventsResponse struct {
	Items []apiEvent `json:"items"`
}

// ExchangeCode trades an OAuth authorization code for a token set.
func (c *Client) ExchangeCode(ctx context.Context, code string) (account.TokenSet, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var respBody tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"code":          code,
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
			"redirect_uri":  c.redirectURL,
			"grant_type":    "authorization_code",
		}).
		SetResult(&respBody).
		SetError(&respBody).
		Post(tokenURL)
	if err != nil {
		return account.TokenSet{}, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "google token exchange failed")
	}
	if resp.IsError() {
		return account.TokenSet{}, tokenError(ctx, resp.StatusCode(), respBody.ErrorDescription, "google token exchange rejected",
			"0a9b8c7d-6e5f-4a3b-9c2d-1e0f2a3b4c43")
	}
	return toTokenSet(respBody), nil
}

// RefreshToken obtains a fresh access token from a stored refresh token.
// Google only occasionally rotates the refresh token itself.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (account.TokenSet, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var respBody tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"refresh_token": refreshToken,
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
			"grant_type":    "refresh_token",
		}).
		SetResult(&respBody).
		SetError(&respBody).
		Post(tokenURL)
	if err != nil {
		return account.TokenSet{}, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "google token refresh failed")
	}
	if resp.IsError() {
		return account.TokenSet{}, tokenError(ctx, resp.StatusCode(), respBody.ErrorDescription, "google token refresh rejected",
			"9e1d4f2a-5b8c-4d7e-a3f6-2c1b0d9e8f54")
	}
	return toTokenSet(respBody), nil
}

// GetUserInfo fetches the Google profile for an access token.
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
		return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "google userinfo request failed")
	}
	if resp.IsError() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("google userinfo rejected (status %d)", resp.StatusCode()), nil,
			"2f1e0d9c-8b7a-4c6d-9e5f-4a3b2c1d0e21")
	}
	return &info, nil
}

// ListEvents fetches upcoming events from the user's primary calendar,
// single events only, ordered by start time, bounded by pageSize.
func (c *Client) ListEvents(ctx context.Context, accessToken string, pageSize int) ([]calendar.ProviderEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var respBody eventsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParams(map[string]string{
			"maxResults":   fmt.Sprintf("%d", pageSize),
			"singleEvents": "true",
			"orderBy":      "startTime",
			"timeMin":      time.Now().UTC().Format(time.RFC3339),
		}).
		SetResult(&respBody).
		Get(eventsURL)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "calendar events request failed")
	}
	if resp.IsError() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("calendar events rejected (status %d)", resp.StatusCode()), nil,
			"7c6b5a49-3e2d-4f1c-8b0a-9d8e7f6a5b32")
	}

	events := make([]calendar.ProviderEvent, 0, len(respBody.Items))
	for _, item := range respBody.Items {
		events = append(events, calendar.ProviderEvent{
			ID:          item.ID,
			Summary:     item.Summary,
			Start:       parseEventTime(item.Start),
			End:         parseEventTime(item.End),
			Attendees:   mapAttendees(item.Attendees),
			Description: item.Description,
			Location:    item.Location,
		})
	}
	return events, nil
}

// parseEventTime handles both timed events (dateTime) and all-day events
// (date). A zero time means the provider sent neither.
func parseEventTime(et eventTime) time.Time {
	if et.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, et.DateTime); err == nil {
			return t
		}
	}
	if et.Date != "" {
		if t, err := time.Parse("2006-01-02", et.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

func mapAttendees(attendees []apiAttendee) []meeting.Attendee {
	mapped := make([]meeting.Attendee, 0, len(attendees))
	for _, a := range attendees {
		if a.Email == "" {
			continue
		}
		mapped = append(mapped, meeting.Attendee{
			Email:          a.Email,
			ResponseStatus: a.ResponseStatus,
		})
	}
	return mapped
}

func toTokenSet(resp tokenResponse) account.TokenSet {
	tokens := account.TokenSet{
		AccessToken: resp.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	if resp.RefreshToken != "" {
		refresh := resp.RefreshToken
		tokens.RefreshToken = &refresh
	}
	return tokens
}

// tokenError classifies a rejected token request. The UUID comes from the
// call site so log entries identify which grant flow failed.
func tokenError(ctx context.Context, status int, description, message, errUUID string) error {
	if description != "" {
		message = fmt.Sprintf("%s: %s", message, description)
	}
	errType := platformerrors.ErrorTypeExternal
	if status == 400 || status == 401 {
		// invalid_grant and friends: the stored credential is no longer good.
		errType = platformerrors.ErrorTypeUnauthorized
	}
	metrics.RecordProviderError("google", string(errType))
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, errType,
		fmt.Sprintf("%s (status %d)", message, status), nil, errUUID)
}
