package cmd

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

	"github.com/coachfolio/portfolio/advisor"
	"github.com/coachfolio/portfolio/catalog"
	"github.com/coachfolio/portfolio/config"
	"github.com/coachfolio/portfolio/finnhub"
	"github.com/coachfolio/portfolio/metrics"
	"github.com/coachfolio/portfolio/server"
	"github.com/coachfolio/portfolio/session"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type serveCmd struct{}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the trading sessions over HTTP" }
func (*serveCmd) Usage() string {
	return `serve

  Serves the JSON API of the trading sessions and the catalog. The server is
  configured by environment variables:

    COACH_ADDR             listen address (:8080)
    COACH_CORS_ORIGIN      allowed origin (*)
    COACH_STARTING_CASH    cash of new sessions (100000)
    COACH_CURRENCY         currency of new sessions (USD)
    COACH_SESSION_BACKEND  memory or redis (memory)
    COACH_SESSION_TTL      redis session expiry (24h)
    COACH_CATALOG_DIR      catalog JSON files, embedded if empty
    REDIS_ADDR, REDIS_PASSWORD, REDIS_DB
    FINNHUB_API_KEY        live quotes and company news when set
    FINNHUB_URL, QUOTE_TTL
    GEMINI_API_KEY         holding analysis when set
    LOG_DEV                development logs (false)
`
}

func (*serveCmd) SetFlags(*flag.FlagSet) {}

func (*serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	logger, err := newLogger(cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer logger.Sync()

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cat *catalog.Catalog
	var err error
	if cfg.CatalogDir != "" {
		cat, err = catalog.LoadDir(cfg.CatalogDir)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	cash, err := cfg.Cash()
	if err != nil {
		return err
	}

	var store session.Store
	switch cfg.Backend {
	case config.BackendRedis:
		rdb, err := session.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = session.NewRedis(rdb, cfg.SessionTTL)
	default:
		store = session.NewMemory()
	}

	m := metrics.New()
	opts := []session.Option{
		session.WithStartingCash(cash),
		session.WithLogger(logger),
		session.WithMetrics(m),
	}
	serverOpts := []server.Option{server.WithMetrics(m)}
	var advisorOpts []advisor.Option
	if cfg.FinnhubAPIKey != "" {
		client, err := finnhub.New(cfg.FinnhubAPIKey, cfg.QuoteTTL, finnhub.WithBaseURL(cfg.FinnhubURL))
		if err != nil {
			return err
		}
		defer client.Close()
		opts = append(opts, session.WithLiveQuotes(client))
		serverOpts = append(serverOpts, server.WithLiveNews(client))
		advisorOpts = append(advisorOpts, advisor.WithLiveNews(client))
	}
	sessions := session.NewService(store, cat, opts...)

	if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != "" {
		gemini, err := advisor.NewGemini(ctx, "")
		if err != nil {
			return err
		}
		serverOpts = append(serverOpts, server.WithAdvisor(advisor.New(gemini, cat, advisorOpts...)))
	}
	s := server.New(sessions, cat, logger, cfg.CORSOrigin, serverOpts...)

	httpServer := s.HTTPServer(cfg.Addr)
	errc := make(chan error, 1)
	go func() {
		logger.Info("http listening",
			zap.String("addr", cfg.Addr),
			zap.String("backend", cfg.Backend),
			zap.Bool("live_quotes", cfg.FinnhubAPIKey != ""))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	// graceful shutdown
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShut()
	if err := httpServer.Shutdown(ctxShut); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
