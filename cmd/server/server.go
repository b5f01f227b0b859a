package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"

	"meetscribe-server/internal/config"
	"meetscribe-server/internal/domain/bot"
	"meetscribe-server/internal/domain/calendar"
	"meetscribe-server/internal/domain/contentgen"
	"meetscribe-server/internal/domain/publisher"
	"meetscribe-server/internal/domain/transcript"
	authvalidator "meetscribe-server/internal/infrastructure/auth"
	"meetscribe-server/internal/infrastructure/crontab"
	"meetscribe-server/internal/infrastructure/database"
	"meetscribe-server/internal/infrastructure/database/repository/accountrepo"
	"meetscribe-server/internal/infrastructure/database/repository/automationrepo"
	"meetscribe-server/internal/infrastructure/database/repository/contentrepo"
	"meetscribe-server/internal/infrastructure/database/repository/meetingrepo"
	"meetscribe-server/internal/infrastructure/googlecalendar"
	"meetscribe-server/internal/infrastructure/linkedin"
	"meetscribe-server/internal/infrastructure/llm"
	"meetscribe-server/internal/infrastructure/logger"
	"meetscribe-server/internal/infrastructure/observability"
	"meetscribe-server/internal/infrastructure/recall"
	"meetscribe-server/internal/interfaces/httpserver"
	"meetscribe-server/internal/interfaces/httpserver/handlers/accounthandler"
	"meetscribe-server/internal/interfaces/httpserver/handlers/automationhandler"
	"meetscribe-server/internal/interfaces/httpserver/handlers/calendarhandler"
	"meetscribe-server/internal/interfaces/httpserver/handlers/cronhandler"
	"meetscribe-server/internal/interfaces/httpserver/handlers/meetinghandler"
	cronroute "meetscribe-server/internal/interfaces/httpserver/routes/cron"
	v1 "meetscribe-server/internal/interfaces/httpserver/routes/v1"

	_ "net/http/pprof"
)

type Application struct {
	httpServer *httpserver.HTTPServer
	crontab    *crontab.Crontab
	pprofPort  int
}

func (application *Application) Start() {
	background := context.Background()
	ctx, cancel := context.WithCancel(background)
	defer cancel()

	var eg errgroup.Group
	eg.Go(func() error {
		err := http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", application.pprofPort), nil)
		if err != nil {
			cancel()
		}
		return err
	})
	eg.Go(func() error {
		err := application.crontab.Run(ctx)
		if err != nil {
			cancel()
		}
		return err
	})
	eg.Go(func() error {
		err := application.httpServer.Run()
		if err != nil {
			cancel()
		}
		return err
	})

	if err := eg.Wait(); err != nil {
		panic(err)
	}
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		bootstrapLog := logger.GetLogger()
		bootstrapLog.Fatal().Err(err).Msg("load config")
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log = logger.GetLogger()
		log.Warn().Err(err).Msg("invalid log settings, using defaults")
	}

	otelShutdown, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("initialize observability")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown telemetry")
			}
		}()
	}

	gormLogLevel := gormlogger.Warn
	if config.IsDev() {
		gormLogLevel = gormlogger.Info
	}
	db, err := database.Connect(database.Config{
		DatabaseURL: cfg.DatabaseURL,
		MaxIdle:     10,
		MaxOpen:     50,
		MaxLifetime: time.Hour,
		LogLevel:    gormLogLevel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("run migrations")
		}
		if config.IsDev() {
			// Dev builds also gorm-automigrate the registered models to pick
			// up schema drift ahead of a checked-in migration.
			if err := database.Migration(db); err != nil {
				log.Fatal().Err(err).Msg("auto migrate models")
			}
		}
	}

	sessionValidator, err := authvalidator.NewSessionValidator(
		ctx,
		cfg.JWKSURL,
		cfg.Issuer,
		cfg.Audience,
		cfg.RefreshJWKSInterval,
		cfg.ClockSkew,
		log,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize session validator")
	}

	// Repositories
	meetings := meetingrepo.NewMeetingGormRepository(db)
	accounts := accountrepo.NewAccountGormRepository(db)
	automations := automationrepo.NewAutomationGormRepository(db)
	contents := contentrepo.NewContentGormRepository(db)

	// External clients
	recallClient := recall.NewClient(cfg.RecallBaseURL, cfg.RecallAPIKey, cfg.RecallTimeout)
	googleClient := googlecalendar.NewClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.CalendarTimeout)
	linkedinClient := linkedin.NewClient(cfg.LinkedInClientID, cfg.LinkedInClientSecret, cfg.LinkedInRedirectURL, cfg.CalendarTimeout)
	llmClient := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAITimeout)

	// Domain services
	calendarSync := calendar.NewService(accounts, googleClient, cfg.CalendarPageSize)
	dispatcher := bot.NewDispatcher(meetings, recallClient)
	generator := contentgen.NewGenerator(automations, contents, llmClient)
	poller := transcript.NewPoller(meetings, recallClient, generator, cfg.PollMaxAttempts, cfg.PollBackoffBase)
	pub := publisher.NewPublisher(accounts, map[string]publisher.SocialClient{
		"linkedin": linkedinClient,
	})

	// HTTP surface
	v1Route := v1.NewV1Route(
		meetinghandler.NewMeetingHandler(meetings, contents, dispatcher, pub, log),
		calendarhandler.NewCalendarHandler(calendarSync, log),
		accounthandler.NewAccountHandler(accounts, googleClient, linkedinClient, log),
		automationhandler.NewAutomationHandler(automations, log),
	)
	cronRoute := cronroute.NewCronRoute(cronhandler.NewCronHandler(cfg, dispatcher, poller, log))

	application := &Application{
		httpServer: httpserver.NewHTTPServer(v1Route, cronRoute, sessionValidator, log, cfg),
		crontab:    crontab.NewCrontab(dispatcher, poller),
		pprofPort:  cfg.PprofPort,
	}

	log.Info().Int("port", cfg.HTTPPort).Str("version", config.Version).Msg("starting meetscribe server")
	application.Start()
}
