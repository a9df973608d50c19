package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to a YAML/JSON config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := NewLogger(cfg.Log.Level, cfg.Log.Pretty)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// openStore opens the configured profile store. The sqlite store also
// backs the battle event log.
func openStore(cfg StoreConfig) (ProfileStore, EventWriter, error) {
	switch cfg.Driver {
	case "badger":
		s, err := OpenBadgerStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		db, err := OpenDB(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	}
}

func run(cfg Config, log zerolog.Logger) error {
	store, eventLog, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer store.Close()
	log.Info().Str("driver", cfg.Store.Driver).Str("path", cfg.Store.Path).Msg("profile store ready")

	var publisher EventPublisher
	if cfg.Events.NATSURL != "" {
		nc, err := NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, log)
		if err != nil {
			return err
		}
		defer nc.Close()
		publisher = nc
		log.Info().Str("url", cfg.Events.NATSURL).Msg("publishing battle events")
	}

	var metrics *Metrics
	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = NewMetrics(reg)
		gatherer = reg
	}

	analytics := NewAnalytics(eventLog, publisher, log)
	defer analytics.Stop()
	progress := NewProgressWriter(store, log, metrics)
	defer progress.Stop()

	ctx := context.Background()
	auth, err := NewAuth(ctx, store, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	if err != nil {
		return err
	}

	game := NewGame(cfg.MatchConfig(), GameDeps{
		Log:      &log,
		Progress: progress,
		Events:   analytics,
		Metrics:  metrics,
	})
	if n := cfg.AI.BotsPerTeam; n > 0 {
		game.AddBots(n)
		log.Info().Int("perTeam", n).Msg("bots added")
	}
	go game.Run()
	defer game.Stop()

	hub := NewHub(game, auth, store, metrics, log, HubOptions{
		MaxConns:      cfg.Server.MaxConns,
		MaxConnsPerIP: cfg.Server.MaxConnsPerIP,
	})
	hubStop := make(chan struct{})
	go hub.Run(hubStop)
	defer close(hubStop)

	mux := SetupRoutes(hub, RouteOptions{
		ClientDir: cfg.Server.ClientDir,
		PublicURL: cfg.Server.PublicURL,
		Gatherer:  gatherer,
	})
	server := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("map", cfg.Match.Map).Msg("server starting")
		if cfg.Server.ClientDir != "" {
			log.Info().Str("dir", cfg.Server.ClientDir).Msg("serving client files")
		}
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-stop:
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return server.Shutdown(sctx)
}
