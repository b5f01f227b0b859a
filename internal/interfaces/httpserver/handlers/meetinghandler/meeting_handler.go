package meetinghandler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"meetscribe-server/internal/domain/bot"
	"meetscribe-server/internal/domain/calendar"
	"meetscribe-server/internal/domain/content"
	"meetscribe-server/internal/domain/meeting"
	"meetscribe-server/internal/domain/publisher"
	"meetscribe-server/internal/interfaces/httpserver/middlewares"
	"meetscribe-server/internal/utils/platformerrors"
)

// MeetingHandler serves meeting listing, detail, transcription toggling and
// social publishing.
type MeetingHandler struct {
	meetings   meeting.Repository
	contents   content.Repository
	dispatcher *bot.Dispatcher
	publisher  *publisher.Publisher
	logger     zerolog.Logger
}

// NewMeetingHandler constructs a new handler instance.
func NewMeetingHandler(
	meetings meeting.Repository,
	contents content.Repository,
	dispatcher *bot.Dispatcher,
	pub *publisher.Publisher,
	logger zerolog.Logger,
) *MeetingHandler {
	return &MeetingHandler{
		meetings:   meetings,
		contents:   contents,
		dispatcher: dispatcher,
		publisher:  pub,
		logger:     logger,
	}
}

// MeetingResponse is the JSON shape of one meeting.
type MeetingResponse struct {
	ID                   uint               `json:"id"`
	GcalEventID          string             `json:"gcal_event_id"`
	Title                string             `json:"title"`
	StartTime            time.Time          `json:"start_time"`
	EndTime              time.Time          `json:"end_time"`
	MeetingURL           *string            `json:"meeting_url"`
	Platform             string             `json:"platform"`
	TranscriptionEnabled bool               `json:"transcription_enabled"`
	Status               string             `json:"status"`
	Transcript           *string            `json:"transcript,omitempty"`
	ErrorMessage         *string            `json:"error_message,omitempty"`
	Attendees            []meeting.Attendee `json:"attendees"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// ContentResponse is the JSON shape of one generated artifact.
type ContentResponse struct {
	ID           uint      `json:"id"`
	AutomationID *uint     `json:"automation_id,omitempty"`
	Type         string    `json:"type"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}

// MeetingDetailResponse bundles a meeting with its generated artifacts.
type MeetingDetailResponse struct {
	MeetingResponse
	GeneratedContent []ContentResponse `json:"generated_content"`
}

// List handles GET /v1/meetings
func (h *MeetingHandler) List(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "user not authenticated")
		return
	}

	meetings, err := h.meetings.ListByUser(c.Request.Context(), principal.UserID)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	out := make([]MeetingResponse, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, toMeetingResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"meetings": out})
}

// Detail handles GET /v1/meetings/:id
func (h *MeetingHandler) Detail(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "user not authenticated")
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		platformerrors.WriteValidationError(c, "invalid meeting id")
		return
	}

	m, err := h.meetings.FindByID(c.Request.Context(), id, principal.UserID)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	if m == nil {
		platformerrors.WriteNotFound(c, "meeting not found")
		return
	}

	artifacts, err := h.contents.ListByMeeting(c.Request.Context(), m.ID)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	detail := MeetingDetailResponse{
		MeetingResponse:  toMeetingResponse(m),
		GeneratedContent: make([]ContentResponse, 0, len(artifacts)),
	}
	for _, gc := range artifacts {
		detail.GeneratedContent = append(detail.GeneratedContent, ContentResponse{
			ID:           gc.ID,
			AutomationID: gc.AutomationID,
			Type:         gc.Type,
			Content:      gc.Content,
			CreatedAt:    gc.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, detail)
}

// ToggleRequest carries the calendar event being toggled. The event fields
// come from the caller's previously synced calendar view.
type ToggleRequest struct {
	EventID     string             `json:"event_id" binding:"required"`
	Title       string             `json:"title"`
	StartTime   time.Time          `json:"start_time" binding:"required"`
	EndTime     time.Time          `json:"end_time" binding:"required"`
	Description string             `json:"description"`
	Location    string             `json:"location"`
	Attendees   []meeting.Attendee `json:"attendees"`
	Enabled     *bool              `json:"enabled" binding:"required"`
}

// ToggleTranscription handles POST /v1/meetings/toggle-transcription
func (h *MeetingHandler) ToggleTranscription(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "user not authenticated")
		return
	}

	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body: "+err.Error())
		return
	}

	title := req.Title
	if title == "" {
		title = "No Title"
	}

	event := calendar.Event{
		ID:          req.EventID,
		Title:       title,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Attendees:   req.Attendees,
		Description: req.Description,
		Location:    req.Location,
	}

	m, err := h.dispatcher.ToggleTranscription(c.Request.Context(), principal, event, *req.Enabled)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, toMeetingResponse(m))
}

// PublishRequest targets one platform with the text to post.
type PublishRequest struct {
	Platform string `json:"platform" binding:"required"`
	Text     string `json:"text" binding:"required"`
}

// Publish handles POST /v1/meetings/:id/publish
func (h *MeetingHandler) Publish(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "user not authenticated")
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		platformerrors.WriteValidationError(c, "invalid meeting id")
		return
	}

	// Ownership check before any external call.
	m, err := h.meetings.FindByID(c.Request.Context(), id, principal.UserID)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	if m == nil {
		platformerrors.WriteNotFound(c, "meeting not found")
		return
	}

	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body: "+err.Error())
		return
	}

	postID, err := h.publisher.Publish(c.Request.Context(), principal, req.Platform, req.Text)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post_id": postID})
}

func toMeetingResponse(m *meeting.Meeting) MeetingResponse {
	return MeetingResponse{
		ID:                   m.ID,
		GcalEventID:          m.GCalEventID,
		Title:                m.Title,
		StartTime:            m.StartTime,
		EndTime:              m.EndTime,
		MeetingURL:           m.MeetingURL,
		Platform:             string(m.Platform),
		TranscriptionEnabled: m.TranscriptionEnabled,
		Status:               string(m.Status),
		Transcript:           m.Transcript,
		ErrorMessage:         m.ErrorMessage,
		Attendees:            m.Attendees,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
