package cron

import (
	"github.com/gin-gonic/gin"

	"meetscribe-server/internal/interfaces/httpserver/handlers/cronhandler"
)

// CronRoute registers the scheduler entry points. The caller is expected to
// mount these behind the cron secret middleware.
type CronRoute struct {
	handler *cronhandler.CronHandler
}

func NewCronRoute(handler *cronhandler.CronHandler) *CronRoute {
	return &CronRoute{handler: handler}
}

func (r *CronRoute) RegisterRouter(router gin.IRouter) {
	group := router.Group("/internal/cron")
	group.GET("/schedule-bots", r.handler.ScheduleBots)
	group.GET("/poll-transcripts", r.handler.PollTranscripts)
}
