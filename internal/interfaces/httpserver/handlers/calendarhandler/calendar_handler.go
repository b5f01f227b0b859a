package calendarhandler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"meetscribe-server/internal/domain/calendar"
	"meetscribe-server/internal/interfaces/httpserver/middlewares"
	"meetscribe-server/internal/utils/platformerrors"
)

// CalendarHandler serves upcoming-event listing across connected accounts.
type CalendarHandler struct {
	sync   *calendar.Service
	logger zerolog.Logger
}

// NewCalendarHandler constructs a new handler instance.
func NewCalendarHandler(sync *calendar.Service, logger zerolog.Logger) *CalendarHandler {
	return &CalendarHandler{sync: sync, logger: logger}
}

// ListEvents handles GET /v1/calendar/events. Each connected Google account
// gets its own entry; accounts that failed to sync carry an error string and
// an empty event list.
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		platformerrors.WriteUnauthorized(c, "user not authenticated")
		return
	}

	results, err := h.sync.SyncUpcoming(c.Request.Context(), principal.UserID, time.Now().UTC())
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": results})
}
