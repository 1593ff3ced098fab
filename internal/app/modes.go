package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sellside/marketd/internal/notify"
	"github.com/sellside/marketd/internal/server"
	"github.com/sellside/marketd/internal/server/handler"
	"github.com/sellside/marketd/internal/server/ws"
	"github.com/sellside/marketd/internal/service"
)

// ServeMode runs the HTTP API, the WebSocket hub, and the notification
// bridge. No archival work happens in this mode.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)

	a.startAPI(ctx, g, deps)

	return g.Wait()
}

// ArchiveMode runs only the periodic terminal-order export to S3.
func (a *App) ArchiveMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting archive mode")

	g, ctx := errgroup.WithContext(ctx)

	a.startArchiver(ctx, g, deps)

	return g.Wait()
}

// FullMode runs the API and the archiver together.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	a.startAPI(ctx, g, deps)
	a.startArchiver(ctx, g, deps)

	return g.Wait()
}

// startAPI builds the services, handlers, hub, and HTTP server and adds
// their goroutines to the errgroup.
func (a *App) startAPI(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	listingSvc := service.NewListingService(
		deps.ListingStore, deps.ListingCache, deps.AuditStore, deps.SignalBus, a.logger,
	)
	orderSvc := service.NewOrderService(
		deps.OrderStore, listingSvc, deps.AuditStore,
		deps.RateLimiter, deps.LockManager, deps.SignalBus,
		service.OrderConfig{
			CreateLimitPerMin: a.cfg.Orders.CreateLimitPerMin,
			LockTTL:           a.cfg.Orders.LockTTL.Duration,
		},
		a.logger,
	)

	hub := ws.NewHub(deps.SignalBus, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	srv := server.NewServer(
		server.Config{
			Port:            a.cfg.Server.Port,
			CORSOrigins:     a.cfg.Server.CORSOrigins,
			APIKey:          a.cfg.Server.APIKey,
			RateLimitPerMin: a.cfg.Server.RateLimitPerMin,
		},
		server.Handlers{
			Health:   handler.NewHealthHandler(a.logger),
			Orders:   handler.NewOrderHandler(orderSvc, a.logger),
			Listings: handler.NewListingHandler(listingSvc, a.logger),
			Audit:    handler.NewAuditHandler(deps.AuditStore, a.logger),
		},
		hub,
		deps.RateLimiter,
		a.logger,
	)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	// Bridge bus events into operator notifications.
	bridge := notify.NewBridge(deps.SignalBus, deps.Notifier, a.logger)
	g.Go(func() error {
		err := bridge.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})
}

// startArchiver adds the periodic terminal-order export loop to the
// errgroup. It is a no-op when archival is disabled or S3 is not wired.
func (a *App) startArchiver(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	if !a.cfg.Archive.Enabled || deps.Archiver == nil {
		a.logger.InfoContext(ctx, "archiver disabled")
		return
	}

	interval := a.cfg.Archive.Interval.Duration
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	retention := time.Duration(a.cfg.Archive.RetentionDays) * 24 * time.Hour

	g.Go(func() error {
		runOnce := func() {
			before := time.Now().UTC().Add(-retention)
			count, err := deps.Archiver.ArchiveOrders(ctx, before)
			if err != nil {
				a.logger.ErrorContext(ctx, "archive run failed",
					slog.String("error", err.Error()),
				)
				return
			}
			if count > 0 {
				a.logger.InfoContext(ctx, "archived terminal orders",
					slog.Int64("count", count),
					slog.Time("before", before),
				)
			}
		}

		runOnce()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				runOnce()
			}
		}
	})
}
