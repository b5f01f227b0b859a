// Package recall is the client for the Recall meeting-bot provider.
package recall

import (
	"context"
	"fmt"
	"time"

	"meetscribe-server/internal/domain/bot"
	"meetscribe-server/internal/domain/meeting"
	"meetscribe-server/internal/domain/transcript"
	"meetscribe-server/internal/infrastructure/metrics"
	"meetscribe-server/internal/utils/httpclients"
	"meetscribe-server/internal/utils/platformerrors"

	"resty.dev/v3"
)

const botName = "ContentGen Bot"

// Client talks to the Recall bot API.
type Client struct {
	http    *resty.Client
	apiKey  string
	timeout time.Duration
}

// NewClient builds a Recall client against the given base URL.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	client := httpclients.NewClient("RecallClient")
	client.SetBaseURL(baseURL)
	client.SetHeader("Authorization", "Token "+apiKey)
	return &Client{http: client, apiKey: apiKey, timeout: timeout}
}

type calendarInvite struct {
	MeetingURL string `json:"meeting_url"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

type platformBlock struct {
	MeetingURL string `json:"meeting_url"`
}

// createBotRequest is the provider's create payload. The nested platform
// block differs per conferencing provider.
type createBotRequest struct {
	BotName        string         `json:"bot_name"`
	CalendarInvite calendarInvite `json:"calendar_invite"`
	Zoom           *platformBlock `json:"zoom,omitempty"`
	GoogleMeet     *platformBlock `json:"google_meet,omitempty"`
	Teams          *platformBlock `json:"teams,omitempty"`
}

type createBotResponse struct {
	ID     string `json:"id"`
	Detail string `json:"detail"`
}

type botStatusResponse struct {
	ID            string `json:"id"`
	State         string `json:"state"`
	TranscriptURL string `json:"transcript_url"`
}

var _ bot.Provider = (*Client)(nil)
var _ transcript.Provider = (*Client)(nil)

// CreateBot schedules a recording bot for the meeting and returns its id.
func (c *Client) CreateBot(ctx context.Context, req bot.CreateRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload := createBotRequest{
		BotName: fmt.Sprintf("%s - %s", botName, req.Title),
		CalendarInvite: calendarInvite{
			MeetingURL: req.MeetingURL,
			StartTime:  req.StartTime.UTC().Format(time.RFC3339),
			EndTime:    req.EndTime.UTC().Format(time.RFC3339),
		},
	}
	block := &platformBlock{MeetingURL: req.MeetingURL}
	switch req.Platform {
	case meeting.PlatformZoom:
		payload.Zoom = block
	case meeting.PlatformGoogleMeet:
		payload.GoogleMeet = block
	case meeting.PlatformTeams:
		payload.Teams = block
	}

	var respBody createBotResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&respBody).
		SetError(&respBody).
		Post("/api/v1/bots/")
	if err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "bot create request failed")
	}
	if resp.IsError() {
		return "", c.errorFromStatus(ctx, resp.StatusCode(), "bot create rejected", respBody.Detail,
			"bb2c4d0a-8f5e-4c19-9d3a-7e6f1a2b3c4d")
	}
	return respBody.ID, nil
}

// GetBot polls the provider for the bot's current state.
func (c *Client) GetBot(ctx context.Context, botID string) (transcript.BotStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var respBody botStatusResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&respBody).
		Get("/api/v1/bots/" + botID + "/")
	if err != nil {
		return transcript.BotStatus{}, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "bot poll request failed")
	}
	if resp.IsError() {
		return transcript.BotStatus{}, c.errorFromStatus(ctx, resp.StatusCode(), "bot poll rejected", "",
			"6f8a1b3c-2d4e-4f5a-8b9c-0d1e2f3a4b5e")
	}
	return transcript.BotStatus{
		State:         respBody.State,
		TranscriptURL: respBody.TranscriptURL,
	}, nil
}

// FetchTranscript downloads the transcript resource the provider pointed at.
// The URL is pre-signed and absolute, so it bypasses the client base URL.
func (c *Client) FetchTranscript(ctx context.Context, url string) ([]transcript.Segment, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var segments []transcript.Segment
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&segments).
		Get(url)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "transcript fetch failed")
	}
	if resp.IsError() {
		return nil, c.errorFromStatus(ctx, resp.StatusCode(), "transcript fetch rejected", "",
			"4d9e2a1f-7b3c-4e8d-9a5b-6c0f1d2e3a6f")
	}
	return segments, nil
}

// errorFromStatus classifies a non-2xx provider response. The UUID comes from
// the call site so log entries identify which endpoint rejected the request.
func (c *Client) errorFromStatus(ctx context.Context, status int, message, detail, errUUID string) error {
	errType := platformerrors.ErrorTypeExternal
	if status == 429 {
		errType = platformerrors.ErrorTypeRateLimited
	}
	metrics.RecordProviderError("recall", string(errType))
	if detail != "" {
		message = fmt.Sprintf("%s: %s", message, detail)
	}
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, errType,
		fmt.Sprintf("%s (status %d)", message, status), nil, errUUID)
}
