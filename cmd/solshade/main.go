// Command solshade drives motorized facade sunblinds from solar geometry.
//
// It connects to a Niko Home Control controller over the hobby MQTT API,
// evaluates the sun's heat load on each configured facade once per
// interval, and positions the screens with hysteresis. A read-only HTTP
// API exposes state, history and the solar model.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jvanacker/solshade/internal/api"
	"github.com/jvanacker/solshade/internal/infrastructure/config"
	"github.com/jvanacker/solshade/internal/infrastructure/database"
	"github.com/jvanacker/solshade/internal/infrastructure/influxdb"
	"github.com/jvanacker/solshade/internal/infrastructure/logging"
	"github.com/jvanacker/solshade/internal/measurements"
	"github.com/jvanacker/solshade/internal/niko"
	"github.com/jvanacker/solshade/internal/screen"
	"github.com/jvanacker/solshade/internal/solar"

	_ "github.com/jvanacker/solshade/migrations" // registers embedded migrations
)

// version is set at build time via -ldflags.
var version = "dev"

// tokenExpiryWarning is how far ahead of hobby token expiry to start
// warning at startup.
const tokenExpiryWarning = 30 * 24 * time.Hour

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "solshade: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := logging.New(cfg.Logging, version)
	logger.Info("solshade starting",
		"version", version,
		"site", cfg.Site.Name,
		"screens", len(cfg.Screens),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warn ahead of hobby token expiry; the broker rejects expired
	// tokens and the fix needs a trip to the Niko portal.
	if info, err := niko.InspectToken(cfg.Niko.Token); err != nil {
		logger.Warn("hobby token could not be inspected", "error", err)
	} else if info.ExpiresWithin(time.Now(), tokenExpiryWarning) {
		logger.Warn("hobby token expires soon, renew it on the Niko portal",
			"expires_at", info.ExpiresAt)
	}

	// Command journal.
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Best effort on shutdown

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	history := screen.NewSQLiteHistoryRepository(db.DB)

	if removed, err := history.Prune(ctx, cfg.Database.HistoryRetentionDays); err != nil {
		logger.Warn("pruning command history failed", "error", err)
	} else if removed > 0 {
		logger.Info("pruned command history", "removed", removed)
	}

	// Hobby gateway.
	gateway, err := niko.Connect(cfg.Niko, logger.With("component", "niko"))
	if err != nil {
		return fmt.Errorf("connecting to controller: %w", err)
	}
	defer gateway.Close() //nolint:errcheck // Best effort on shutdown

	logger.Info("connected to controller", "host", cfg.Niko.Host)

	gateway.OnError(func(e niko.ErrorEvent) {
		logger.Warn("controller reported error",
			"topic", e.Topic, "code", e.Code, "message", e.Message)
	})

	// Screens.
	registry := screen.NewRegistry(cfg.Controller, logger.With("component", "screen"))
	for _, sc := range cfg.Screens {
		if _, err := registry.Register(sc); err != nil {
			return fmt.Errorf("registering screen: %w", err)
		}
	}
	if registry.Len() == 0 {
		logger.Warn("no screens configured, nothing to control")
	}

	site := solar.Site{
		Latitude:  cfg.Site.Location.Latitude,
		Longitude: cfg.Site.Location.Longitude,
	}

	scheduler := screen.NewScheduler(registry, site, gateway.SetPosition,
		cfg.EvaluationInterval(), logger.With("component", "scheduler"))
	scheduler.SetHistory(history)

	// Optional telemetry.
	if cfg.InfluxDB.Enabled {
		influx, err := influxdb.New(cfg.InfluxDB, logger.With("component", "influxdb"))
		if err != nil {
			logger.Warn("influxdb unavailable, telemetry disabled", "error", err)
		} else {
			defer influx.Close()
			scheduler.SetTelemetry(influx)
		}
	}

	// Optional measurements REST client, exposed through the status API.
	var meter api.MeasurementsReader
	if cfg.Measurements.Enabled {
		client, err := measurements.New(cfg.Niko.Host, cfg.Niko.Token, cfg.Niko.CACert,
			time.Duration(cfg.Measurements.Timeout)*time.Second)
		if err != nil {
			logger.Warn("measurements client unavailable", "error", err)
		} else {
			meter = client
		}
	}

	// Status API.
	if cfg.API.Enabled {
		server, err := api.New(api.Deps{
			Config:       cfg.API,
			WS:           cfg.WebSocket,
			Logger:       logger.With("component", "api"),
			Registry:     registry,
			History:      history,
			Site:         site,
			Gateway:      gateway,
			Measurements: meter,
			Version:      version,
		})
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
		scheduler.SetBroadcaster(server.Hub())

		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("starting API server: %w", err)
		}
		defer server.Close() //nolint:errcheck // Best effort on shutdown
	}

	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	logger.Info("solshade running", "interval", cfg.EvaluationInterval().String())

	<-ctx.Done()
	logger.Info("shutdown signal received")

	scheduler.Stop()
	return nil
}
