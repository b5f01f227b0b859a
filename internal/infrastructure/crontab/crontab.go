// Package crontab schedules the recurring lifecycle jobs: bot dispatch for
// upcoming meetings and transcript polling for finished ones.
package crontab

import (
	"context"
	"fmt"
	"time"

	"meetscribe-server/internal/config"
	"meetscribe-server/internal/domain/bot"
	"meetscribe-server/internal/domain/transcript"
	"meetscribe-server/internal/infrastructure/logger"
	"meetscribe-server/internal/utils/platformerrors"

	"github.com/mileusna/crontab"
)

const (
	DefaultJobInterval = 5                // in minutes
	CronJobTimeout     = 10 * time.Minute // Timeout for each cron job execution
)

type Crontab struct {
	ctab       *crontab.Crontab
	dispatcher *bot.Dispatcher
	poller     *transcript.Poller
}

func NewCrontab(dispatcher *bot.Dispatcher, poller *transcript.Poller) *Crontab {
	return &Crontab{
		ctab:       crontab.New(),
		dispatcher: dispatcher,
		poller:     poller,
	}
}

func (c *Crontab) Run(ctx context.Context) error {
	cfg := config.GetGlobal()

	// execute once on server start
	c.dispatchBots(ctx)
	c.pollTranscripts(ctx)

	dispatchInterval := DefaultJobInterval
	pollInterval := DefaultJobInterval
	if cfg != nil {
		if cfg.BotDispatchIntervalMinutes > 0 {
			dispatchInterval = cfg.BotDispatchIntervalMinutes
		}
		if cfg.PollIntervalMinutes > 0 {
			pollInterval = cfg.PollIntervalMinutes
		}
	}

	if err := c.ctab.AddJob(fmt.Sprintf("*/%d * * * *", dispatchInterval), func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
		defer cancel()
		c.dispatchBots(jobCtx)
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to add bot dispatch job")
	}

	if err := c.ctab.AddJob(fmt.Sprintf("*/%d * * * *", pollInterval), func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
		defer cancel()
		c.pollTranscripts(jobCtx)
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to add transcript poll job")
	}

	log := logger.GetLogger()
	log.Info().
		Int("dispatch_interval_minutes", dispatchInterval).
		Int("poll_interval_minutes", pollInterval).
		Msg("lifecycle jobs scheduled")

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) dispatchBots(ctx context.Context) {
	log := logger.GetLogger()

	window := 15 * time.Minute
	if cfg := config.GetGlobal(); cfg != nil && cfg.BotDispatchWindow > 0 {
		window = cfg.BotDispatchWindow
	}

	scheduled, err := c.dispatcher.DispatchDue(ctx, time.Now().UTC(), window)
	if err != nil {
		log.Error().Err(err).Msg("bot dispatch run failed")
		return
	}
	if scheduled > 0 {
		log.Info().Int("scheduled", scheduled).Msg("dispatched recording bots")
	}
}

func (c *Crontab) pollTranscripts(ctx context.Context) {
	log := logger.GetLogger()

	completed, err := c.poller.PollOnce(ctx, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("transcript poll run failed")
		return
	}
	if completed > 0 {
		log.Info().Int("completed", completed).Msg("transcripts collected")
	}
}
