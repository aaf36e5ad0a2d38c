package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stormwatch/internal/api"
	"stormwatch/internal/catalog"
	"stormwatch/internal/config"
	"stormwatch/internal/cosmetics"
	"stormwatch/internal/epic"
	"stormwatch/internal/gamedata"
	"stormwatch/internal/missions"
	"stormwatch/internal/notify"
	"stormwatch/internal/refresh"
	"stormwatch/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the refresh engines, read API, and digest notifier",
	Long: `Starts the full service: an immediate refresh of all three data
sources (missions, catalog, cosmetics), a daily scheduled refresh for each,
the internal HTTP read API, and - when a Discord token is configured -
digest notifications after each scheduled mission refresh.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	tables, err := gamedata.Load()
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	client := epic.NewClient(epic.Config{
		AuthURL:      cfg.Upstream.AuthURL,
		WorldInfoURL: cfg.Upstream.WorldInfoURL,
		CatalogURL:   cfg.Upstream.CatalogURL,
		CosmeticsURL: cfg.Upstream.CosmeticsURL,
		ClientID:     cfg.Upstream.ClientID,
		ClientSecret: cfg.Upstream.ClientSecret,
	}, logger)

	var notifier *notify.Notifier
	if cfg.Discord.Token != "" {
		poster, err := notify.NewDiscordPoster(cfg.Discord.Token)
		if err != nil {
			return fmt.Errorf("discord poster: %w", err)
		}
		notifier = notify.New(poster, logger)
	} else {
		logger.Warn("no discord token configured, digest notifications disabled")
	}

	missionSvc := missions.New(client, tables, notifier, db, logger)
	catalogSvc := catalog.NewService(client, logger)
	cosmeticsSvc := cosmetics.NewService(client, logger)

	hour, minute := cfg.Refresh.HourUTC, cfg.Refresh.MinuteUTC
	missionEngine := refresh.New("missions", hour, minute,
		missionSvc.Refresh, missionSvc.NotifyScheduled, logger)
	catalogEngine := refresh.New("catalog", hour, minute,
		catalogSvc.Refresh, nil, logger)
	cosmeticsEngine := refresh.New("cosmetics", hour, minute,
		cosmeticsSvc.Refresh, nil, logger)

	apiServer := api.New(missionSvc.Store(), catalogSvc, cosmeticsSvc, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("stormwatch starting",
		zap.String("api", cfg.API.Addr),
		zap.Int("refreshHourUTC", hour),
		zap.Int("refreshMinuteUTC", minute))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return missionEngine.Start(gctx) })
	g.Go(func() error { return catalogEngine.Start(gctx) })
	g.Go(func() error { return cosmeticsEngine.Start(gctx) })
	g.Go(func() error { return apiServer.ListenAndServe(gctx, cfg.API.Addr) })

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	logger.Info("stormwatch stopped")
	return nil
}
