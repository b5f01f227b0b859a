package v1

import (
	"net/http"

	"meetscribe-server/internal/config"
	"meetscribe-server/internal/interfaces/httpserver/handlers/accounthandler"
	"meetscribe-server/internal/interfaces/httpserver/handlers/automationhandler"
	"meetscribe-server/internal/interfaces/httpserver/handlers/calendarhandler"
	"meetscribe-server/internal/interfaces/httpserver/handlers/meetinghandler"

	"github.com/gin-gonic/gin"
)

// V1Route registers the authenticated API surface under /v1.
type V1Route struct {
	meetings    *meetinghandler.MeetingHandler
	calendar    *calendarhandler.CalendarHandler
	accounts    *accounthandler.AccountHandler
	automations *automationhandler.AutomationHandler
}

func NewV1Route(
	meetings *meetinghandler.MeetingHandler,
	calendar *calendarhandler.CalendarHandler,
	accounts *accounthandler.AccountHandler,
	automations *automationhandler.AutomationHandler,
) *V1Route {
	return &V1Route{
		meetings,
		calendar,
		accounts,
		automations,
	}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Router.GET("/version", GetVersion)

	v1Router.GET("/calendar/events", v1Route.calendar.ListEvents)

	v1Router.GET("/meetings", v1Route.meetings.List)
	v1Router.GET("/meetings/:id", v1Route.meetings.Detail)
	v1Router.POST("/meetings/toggle-transcription", v1Route.meetings.ToggleTranscription)
	v1Router.POST("/meetings/:id/publish", v1Route.meetings.Publish)

	v1Router.GET("/accounts", v1Route.accounts.List)
	v1Router.DELETE("/accounts/:id", v1Route.accounts.Disconnect)
	v1Router.POST("/accounts/google/connect", v1Route.accounts.ConnectGoogle)
	v1Router.POST("/accounts/linkedin/connect", v1Route.accounts.ConnectLinkedIn)

	v1Router.GET("/automations", v1Route.automations.List)
	v1Router.POST("/automations", v1Route.automations.Create)
	v1Router.PUT("/automations/:id", v1Route.automations.Update)
	v1Router.DELETE("/automations/:id", v1Route.automations.Delete)
}

// GetVersion returns the build version and environment reload timestamp.
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":         config.Version,
		"env_reloaded_at": config.GetEnvReloadedAt().Format("2006-01-02T15:04:05Z07:00"),
	})
}
