package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	grpcAdapter "github.com/quentinrf/sensor-data-pipeline/internal/adapters/grpc"
	httpAdapter "github.com/quentinrf/sensor-data-pipeline/internal/adapters/http"
	"github.com/quentinrf/sensor-data-pipeline/internal/adapters/memory"
	"github.com/quentinrf/sensor-data-pipeline/internal/adapters/mqtt"
	"github.com/quentinrf/sensor-data-pipeline/internal/adapters/postgres"
	redisAdapter "github.com/quentinrf/sensor-data-pipeline/internal/adapters/redis"
	"github.com/quentinrf/sensor-data-pipeline/internal/adapters/sqlite"
	"github.com/quentinrf/sensor-data-pipeline/internal/adapters/sqlstore"
	"github.com/quentinrf/sensor-data-pipeline/internal/config"
	"github.com/quentinrf/sensor-data-pipeline/internal/database"
	"github.com/quentinrf/sensor-data-pipeline/internal/domain"
	"github.com/quentinrf/sensor-data-pipeline/internal/ports"
	"github.com/quentinrf/sensor-data-pipeline/internal/version"
	"github.com/quentinrf/sensor-data-pipeline/pkg/tlsconfig"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("reading service failed")
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("sensor-server", flag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "path to YAML config file (optional)")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Println(version.String())
		return nil
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		return err
	}
	if err := setupLogger(cfg.Log); err != nil {
		return err
	}

	log.Info().Str("version", version.String()).Msg("starting reading service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize store
	store, pool, err := openStore(cfg)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Shutdown()
	}

	// Optional result cache
	var cache domain.ResultCache
	if cfg.Cache.RedisAddr != "" {
		rdb, err := redisAdapter.NewClient(ctx, cfg.Cache)
		if err != nil {
			log.Warn().Err(err).Msg("result cache disabled")
		} else {
			defer rdb.Close()
			cache = redisAdapter.NewResultCache(rdb, cfg.Cache.TTL)
			log.Info().Str("addr", cfg.Cache.RedisAddr).Dur("ttl", cfg.Cache.TTL).Msg("result cache enabled")
		}
	}

	ingest := ports.NewIngestionService(store)
	query := ports.NewQueryService(store, cache)

	var (
		runner ports.SessionRunner
		stats  ports.PoolStatter
	)
	if pool != nil {
		runner, stats = pool, pool
	}
	probe := ports.NewHealthProbe(runner, cfg.Health.Timeout)

	// Configure TLS if certificates are provided
	var grpcOpts []grpc.ServerOption
	httpServer := &http.Server{
		Addr:         cfg.Server.HTTPAddr(),
		Handler:      httpAdapter.NewHandler(ingest, query, probe).Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if cfg.Server.TLS.Enabled() {
		tlsCfg, err := tlsconfig.LoadServerTLS(cfg.Server.TLS.Cert, cfg.Server.TLS.Key, cfg.Server.TLS.CA)
		if err != nil {
			return fmt.Errorf("load TLS config: %w", err)
		}
		httpServer.TLSConfig = tlsCfg
		grpcOpts = append(grpcOpts, grpc.Creds(credentials.NewTLS(tlsCfg)))
		log.Info().Bool("mutual", cfg.Server.TLS.CA != "").Msg("TLS enabled")
	} else {
		log.Warn().Msg("TLS cert not set, serving plaintext (dev mode only)")
	}

	errc := make(chan error, 2)

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		var err error
		if httpServer.TLSConfig != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http server: %w", err)
		}
	}()

	hs := grpcAdapter.NewHealthStatus()
	var grpcServer *grpc.Server
	if cfg.Server.GRPCAddr != "" {
		grpcServer = grpcAdapter.NewServer(grpcAdapter.NewReadingServiceHandler(ingest, query), hs, grpcOpts...)
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			return fmt.Errorf("grpc listen %s: %w", cfg.Server.GRPCAddr, err)
		}
		go func() {
			log.Info().Str("addr", lis.Addr().String()).Msg("gRPC server listening")
			if err := grpcServer.Serve(lis); err != nil {
				errc <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	var sub *mqtt.Subscriber
	if cfg.MQTT.Broker != "" {
		sub = mqtt.NewSubscriber(cfg.MQTT, ingest)
		if err := sub.Start(); err != nil {
			log.Warn().Err(err).Msg("mqtt ingestion disabled")
			sub = nil
		}
	}

	// Start background health monitor
	monitor := ports.NewHealthMonitor(probe, hs, stats, cfg.Health.Interval)
	go monitor.Start(ctx)

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")
	case err := <-errc:
		log.Error().Err(err).Msg("listener failed, shutting down")
		stop()
	}

	// Graceful shutdown
	hs.Shutdown()
	if sub != nil {
		sub.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown incomplete")
	}
	if grpcServer != nil {
		stopGRPC(shutdownCtx, grpcServer)
	}

	log.Info().Msg("server stopped")
	return nil
}

// openStore selects the reading store. The pool is nil for the memory driver.
func openStore(cfg *config.Config) (domain.ReadingStore, *database.Pool, error) {
	var dial database.Dialer
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Info().Msg("initialized in-memory store")
		return memory.NewReadingStore(), nil, nil
	case config.DriverSQLite:
		dial = sqlite.Dialer(cfg.Database.SQLiteDir, cfg.Schemas)
	default:
		d, err := postgres.Dialer(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		dial = d
	}

	pool := database.NewPool(database.PoolConfig{
		MinConns: cfg.Database.MinConns,
		MaxConns: cfg.Database.MaxConns,
	}, dial)
	policy := database.RetryPolicy{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialBackoff: cfg.Retry.InitialBackoff,
		MaxBackoff:     cfg.Retry.MaxBackoff,
		Retryable:      database.IsTransient,
	}

	repo, err := sqlstore.NewReadingRepository(database.NewExecutor(pool, policy), cfg.Schemas)
	if err != nil {
		pool.Shutdown()
		return nil, nil, err
	}

	log.Info().
		Str("driver", cfg.Database.Driver).
		Int("min_conns", cfg.Database.MinConns).
		Int("max_conns", cfg.Database.MaxConns).
		Msg("initialized SQL store")
	return repo, pool, nil
}

// stopGRPC drains in-flight calls, forcing the stop once ctx expires
func stopGRPC(ctx context.Context, srv *grpc.Server) {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn().Msg("grpc graceful stop timed out, forcing")
		srv.Stop()
	}
}

// setupLogger configures the global zerolog logger
func setupLogger(cfg config.LogConfig) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return nil
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	return nil
}
