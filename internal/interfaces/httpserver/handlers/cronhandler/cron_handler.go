package cronhandler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"meetscribe-server/internal/config"
	"meetscribe-server/internal/domain/bot"
	"meetscribe-server/internal/domain/transcript"
	"meetscribe-server/internal/utils/platformerrors"
)

// CronHandler exposes the scheduled jobs as HTTP entry points so an external
// scheduler can drive them in addition to the embedded crontab.
type CronHandler struct {
	cfg        *config.Config
	dispatcher *bot.Dispatcher
	poller     *transcript.Poller
	logger     zerolog.Logger
}

func NewCronHandler(cfg *config.Config, dispatcher *bot.Dispatcher, poller *transcript.Poller, logger zerolog.Logger) *CronHandler {
	return &CronHandler{cfg: cfg, dispatcher: dispatcher, poller: poller, logger: logger}
}

// ScheduleBots handles GET /internal/cron/schedule-bots
func (h *CronHandler) ScheduleBots(c *gin.Context) {
	now := time.Now().UTC()
	scheduled, err := h.dispatcher.DispatchDue(c.Request.Context(), now, h.cfg.BotDispatchWindow)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	h.logger.Info().Int("scheduled", scheduled).Msg("bot dispatch run finished")
	c.JSON(http.StatusOK, gin.H{"scheduled": scheduled})
}

// PollTranscripts handles GET /internal/cron/poll-transcripts
func (h *CronHandler) PollTranscripts(c *gin.Context) {
	completed, err := h.poller.PollOnce(c.Request.Context(), time.Now().UTC())
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}

	h.logger.Info().Int("completed", completed).Msg("transcript poll run finished")
	c.JSON(http.StatusOK, gin.H{"completed": completed})
}
