package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"playgate/internal/account"
	"playgate/internal/audit"
	"playgate/internal/job"
	"playgate/internal/models"
	"playgate/internal/persistence"
	"playgate/internal/persistence/store/file"
	redisstore "playgate/internal/persistence/store/redis"
	"playgate/internal/platform/config"
	"playgate/internal/platform/httpserver"
	"playgate/internal/platform/logger"
	"playgate/internal/platform/metrics"
	"playgate/internal/platform/redis"
	"playgate/internal/presenter"
)

// app holds the process-wide dependencies of one CLI invocation.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	redis    *redis.Client
	audit    *audit.Publisher
	job      *job.Job
	outcomes chan models.Outcome
	quit     context.CancelFunc
}

type accessToken struct {
	kid    string
	macKey string
	scopes []string
}

func newApp(ctx context.Context, token accessToken, quit context.CancelFunc) (*app, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	log := logger.New(os.Stderr, cfg.LogLevel)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &app{
		cfg:      cfg,
		logger:   log,
		registry: registry,
		audit:    audit.NewPublisher(audit.NewMemoryStore(), audit.WithLogger(log), audit.WithAsyncBuffer(64)),
		outcomes: make(chan models.Outcome, 8),
		quit:     quit,
	}

	backend, err := a.backend(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	tokens := account.NewStaticSource(nil)
	if token.kid != "" {
		tokens.Set(&account.AccessToken{KID: token.kid, MACKey: token.macKey, Scopes: token.scopes})
	}

	j, err := job.Init(job.Config{
		ClientID:          cfg.ClientID,
		ClientToken:       cfg.ClientToken,
		UseAgeRange:       cfg.UseAgeRange,
		ShowSwitchAccount: cfg.ShowSwitchAccount,
		Host:              cfg.Host,
		CacheDir:          cfg.CacheDir,
		DeviceID:          cfg.DeviceID,
		Lang:              cfg.Lang,
		SDKVersion:        cfg.SDKVersion,
		TestMode:          cfg.TestMode,
		HeartbeatInterval: cfg.HeartbeatInterval,
	},
		job.WithLogger(log),
		job.WithMetrics(metrics.New(registry)),
		job.WithBackend(backend),
		job.WithPresenter(presenter.NewTerminal(os.Stdin, os.Stdout)),
		job.WithTokenSource(tokens),
		job.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
		job.WithStartupTracker(audit.NewStartupTracker(a.audit, log)),
		job.WithQuitHook(quit),
	)
	if err != nil {
		a.close()
		return nil, err
	}
	j.RegisterComplianceCallback(func(code models.Outcome, _ string) {
		select {
		case a.outcomes <- code:
		default:
		}
	})
	a.job = j
	return a, nil
}

// backend keeps documents in Redis when a URL is configured, on disk
// otherwise.
func (a *app) backend(ctx context.Context) (persistence.Backend, error) {
	client, err := redis.New(ctx, a.cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client != nil {
		a.redis = client
		return redisstore.New(client.Client, redisstore.WithPrefix("playgate:"+a.cfg.ClientID+":")), nil
	}
	return file.New(a.cfg.CacheDir, a.cfg.ClientID)
}

func (a *app) close() {
	a.audit.Close()
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// run executes fn alongside the ops server, if one is configured, and stops
// both when either returns.
func (a *app) run(ctx context.Context, fn func(ctx context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if a.cfg.MetricsAddr != "" {
		checks := map[string]httpserver.HealthCheck{}
		if a.redis != nil {
			checks["redis"] = a.redis.Health
		}
		srv := httpserver.New(a.cfg.MetricsAddr, httpserver.NewOpsRouter(a.registry, checks))
		g.Go(func() error {
			a.logger.Info("ops server listening", "addr", a.cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("ops server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error {
		defer a.quit()
		return fn(ctx)
	})
	return g.Wait()
}

// login starts the check of userID and waits for its outcome.
func (a *app) login(ctx context.Context, userID string) (models.Outcome, error) {
	if !a.job.Startup(ctx, userID) {
		return 0, errors.New("a startup is already running")
	}
	return a.await(ctx)
}

func (a *app) await(ctx context.Context) (models.Outcome, error) {
	select {
	case o := <-a.outcomes:
		return o, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
