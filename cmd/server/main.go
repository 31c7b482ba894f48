package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hydrodata/pegeldict/internal/alias"
	"github.com/hydrodata/pegeldict/internal/api"
	"github.com/hydrodata/pegeldict/internal/boundary"
	"github.com/hydrodata/pegeldict/internal/config"
	"github.com/hydrodata/pegeldict/internal/enrich"
	"github.com/hydrodata/pegeldict/internal/geocode"
	"github.com/hydrodata/pegeldict/internal/query"
	"github.com/hydrodata/pegeldict/internal/registry"
	"github.com/hydrodata/pegeldict/internal/scheduler"
	"github.com/hydrodata/pegeldict/internal/store"
	"github.com/hydrodata/pegeldict/pkg/http/client"
)

func main() {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Both upstream services share one throttle so the concurrency cap
	// holds across the whole process.
	throttle := client.NewThrottle(cfg.MaxConcurrentRequests)

	registryClient := registry.New(client.New(client.Options{
		BaseURL:  cfg.PegelonlineBaseURL,
		Timeout:  cfg.HTTPTimeout,
		Throttle: throttle,
	}))

	geocoder, err := geocode.New(client.New(client.Options{
		BaseURL:  cfg.NominatimBaseURL,
		Timeout:  cfg.HTTPTimeout,
		Throttle: throttle,
	}))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize geocoder")
	}

	basins, err := boundary.Load(cfg.BasinFile)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.BasinFile).Msg("drainage basin boundaries unavailable")
		basins = boundary.Empty()
	}

	aliases, err := alias.Load(cfg.AliasFile, cfg.AliasSheet)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.AliasFile).Msg("alias table unavailable")
		aliases = alias.NewTable(nil)
	}

	var mirror store.Mirror
	if cfg.SnapshotBucket != "" {
		m, err := store.NewS3MirrorFromEnv(ctx, cfg.SnapshotBucket)
		if err != nil {
			log.Warn().Err(err).Str("bucket", cfg.SnapshotBucket).Msg("snapshot mirror unavailable")
		} else {
			mirror = m
		}
	}

	stations := store.New(store.Options{Path: cfg.StationFile, Mirror: mirror})
	stations.Load(ctx)

	pipeline := enrich.New(enrich.Options{
		Registry:         registryClient,
		Geocoder:         geocoder,
		Basins:           basins,
		Aliases:          aliases,
		Store:            stations,
		BaselineLanguage: cfg.BaselineLanguage,
		Languages:        cfg.AdditionalLanguages,
	})

	sched, err := scheduler.New(cfg.CronSchedule, cfg.FetchAtStartup, pipeline.Run)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.CronSchedule).Msg("invalid cron schedule")
	}
	go sched.Start(ctx)
	defer sched.Stop()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	engine := query.NewEngine(cfg.MqttBaseTopic, cfg.PegelonlineBaseURL)
	api.NewHandler(stations, engine, geocoder).Register(router)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("environment", cfg.Environment).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}
