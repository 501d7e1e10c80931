// Package job is the surface the host game talks to: it owns the compliance
// services of one client, runs startups in the background and fans outcomes
// out to registered callbacks.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"playgate/internal/account"
	"playgate/internal/audit"
	"playgate/internal/models"
	"playgate/internal/network"
	"playgate/internal/persistence"
	"playgate/internal/persistence/store/file"
	"playgate/internal/platform/metrics"
	"playgate/internal/presenter"
	"playgate/internal/signer"
	"playgate/internal/verification"
	"playgate/internal/worker"
	"playgate/pkg/requestcontext"
)

// Callback receives every published outcome.
type Callback func(code models.Outcome, message string)

// Config carries the client credentials and the host options.
type Config struct {
	ClientID    string
	ClientToken string

	// UseAgeRange requires the age-range scope on account tokens and
	// exposes the age tier through GetAgeRange.
	UseAgeRange bool
	// ShowSwitchAccount offers a switch-account action on restrictions.
	ShowSwitchAccount bool

	Host              string
	CacheDir          string
	DeviceID          string
	Lang              string
	SDKVersion        string
	TestMode          bool
	HeartbeatInterval time.Duration
}

// Job is the compliance facade of one game client.
type Job struct {
	client       *network.Client
	verification *verification.Service
	worker       *worker.Worker
	tracker      *audit.StartupTracker
	logger       *slog.Logger
	metrics      *metrics.Metrics

	backend    persistence.Backend
	presenter  presenter.Presenter
	tokens     account.TokenSource
	httpClient *http.Client
	quit       func()

	starting atomic.Bool
	canPlay  atomic.Bool

	mu          sync.RWMutex
	subscribers []subscriber
	nextID      uint64
}

type subscriber struct {
	id uint64
	fn Callback
}

// Option configures a Job.
type Option func(*Job)

func WithLogger(logger *slog.Logger) Option {
	return func(j *Job) {
		j.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(j *Job) {
		j.metrics = m
	}
}

// WithBackend stores documents in backend instead of the cache directory.
func WithBackend(backend persistence.Backend) Option {
	return func(j *Job) {
		j.backend = backend
	}
}

func WithPresenter(p presenter.Presenter) Option {
	return func(j *Job) {
		j.presenter = p
	}
}

// WithTokenSource supplies the logged-in account's access token.
func WithTokenSource(tokens account.TokenSource) Option {
	return func(j *Job) {
		j.tokens = tokens
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(j *Job) {
		j.httpClient = hc
	}
}

// WithStartupTracker records startup lifecycles.
func WithStartupTracker(t *audit.StartupTracker) Option {
	return func(j *Job) {
		j.tracker = t
	}
}

// WithQuitHook sets what the exit action of a restriction reminder does.
func WithQuitHook(fn func()) Option {
	return func(j *Job) {
		j.quit = fn
	}
}

// Init wires the compliance services for cfg.
func Init(cfg Config, opts ...Option) (*Job, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client id is required")
	}
	if cfg.ClientToken == "" {
		return nil, errors.New("client token is required")
	}

	j := &Job{logger: slog.Default(), quit: func() {}}
	for _, opt := range opts {
		opt(j)
	}
	if j.tokens == nil {
		j.tokens = account.NewStaticSource(nil)
	}
	if j.tracker == nil {
		j.tracker = audit.NewStartupTracker(audit.NewPublisher(audit.NewMemoryStore(), audit.WithLogger(j.logger)), j.logger)
	}
	if j.backend == nil {
		dir := cfg.CacheDir
		if dir == "" {
			dir = os.TempDir()
		}
		backend, err := file.New(dir, cfg.ClientID)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		j.backend = backend
	}

	store, err := persistence.NewStore(j.backend, persistence.WithLogger(j.logger))
	if err != nil {
		return nil, err
	}

	sig, err := signer.New(signer.Config{
		ClientToken: cfg.ClientToken,
		DeviceID:    cfg.DeviceID,
		Lang:        cfg.Lang,
		SDKVersion:  cfg.SDKVersion,
	})
	if err != nil {
		return nil, err
	}

	clientOpts := []network.Option{network.WithLogger(j.logger), network.WithMetrics(j.metrics)}
	if j.httpClient != nil {
		clientOpts = append(clientOpts, network.WithHTTPClient(j.httpClient))
	}
	if cfg.Host != "" {
		clientOpts = append(clientOpts, network.WithHost(cfg.Host))
	}
	client, err := network.New(cfg.ClientID, sig, clientOpts...)
	if err != nil {
		return nil, err
	}
	client.SetTestMode(cfg.TestMode)
	j.client = client

	verifier, err := verification.New(client, j.tokens, store,
		verification.WithLogger(j.logger),
		verification.WithAgeRange(cfg.UseAgeRange),
	)
	if err != nil {
		return nil, err
	}
	client.SetTokenSource(verifier.CurrentToken)
	j.verification = verifier

	workerOpts := []worker.Option{
		worker.WithLogger(j.logger),
		worker.WithMetrics(j.metrics),
		worker.WithSwitchAccount(cfg.ShowSwitchAccount),
		worker.WithQuitHook(j.quit),
	}
	if cfg.HeartbeatInterval > 0 {
		workerOpts = append(workerOpts, worker.WithDefaultHeartbeatInterval(cfg.HeartbeatInterval))
	}
	w, err := worker.New(client, verifier, store, j.presenter, workerOpts...)
	if err != nil {
		return nil, err
	}
	w.SetNotifier(j.dispatch)
	j.worker = w

	return j, nil
}

// -----------------------------------------------------------------------------
// Startup and exit
// -----------------------------------------------------------------------------

// Startup checks userID in the background; the outcome reaches the
// registered callbacks. It reports false, doing nothing, while a previous
// startup has not delivered an outcome that ends the check.
func (j *Job) Startup(ctx context.Context, userID string) bool {
	if !j.starting.CompareAndSwap(false, true) {
		j.logger.DebugContext(ctx, "startup already in progress", "user_id", userID)
		return false
	}
	go func() {
		outcome := j.startup(ctx, userID)
		j.dispatch(outcome, "")
	}()
	return true
}

func (j *Job) startup(ctx context.Context, userID string) models.Outcome {
	session := j.tracker.Start(ctx, userID)
	ctx = requestcontext.WithRequestID(ctx, session.String())
	if requestcontext.GameUserID(ctx) == "" {
		ctx = requestcontext.WithGameUserID(ctx, userID)
	}

	if j.worker.UserID() != "" {
		j.worker.ClearUserState()
	}
	if err := j.worker.FetchConfig(ctx, userID); err != nil {
		j.logger.WarnContext(ctx, "game config unavailable", "error", err)
	}

	outcome := j.worker.StartUp(ctx, userID)
	j.logger.InfoContext(ctx, "startup finished",
		"user_id", userID,
		"outcome", outcome.String(),
	)
	j.tracker.Finish(ctx, session, userID, outcome)
	return outcome
}

// Exit logs the player out, deleting cached state, and publishes EXITED.
func (j *Job) Exit(ctx context.Context) {
	j.worker.Logout(ctx, true)
	j.dispatch(models.OutcomeExited, "")
}

// dispatch publishes outcome to the subscribers in registration order.
func (j *Job) dispatch(outcome models.Outcome, message string) {
	j.metrics.IncrementStartupOutcome(outcome.String())
	if allowed, changes := outcome.AllowsPlay(); changes {
		j.canPlay.Store(allowed)
	}
	if outcome.EndsCheck() {
		j.starting.Store(false)
	}
	if !outcome.Known() {
		return
	}

	j.mu.RLock()
	subs := make([]subscriber, len(j.subscribers))
	copy(subs, j.subscribers)
	j.mu.RUnlock()

	for _, s := range subs {
		s.fn(outcome, message)
	}
}

// RegisterComplianceCallback adds fn to the subscribers and returns a func
// removing it. The subscriber list may be empty.
func (j *Job) RegisterComplianceCallback(fn Callback) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	j.mu.Lock()
	j.nextID++
	id := j.nextID
	j.subscribers = append(j.subscribers, subscriber{id: id, fn: fn})
	j.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			j.mu.Lock()
			defer j.mu.Unlock()
			for i, s := range j.subscribers {
				if s.id == id {
					j.subscribers = append(j.subscribers[:i], j.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// CanPlay reports whether the last outcome allows the player in.
func (j *Job) CanPlay() bool {
	return j.canPlay.Load()
}

// GetAgeRange returns the verified age tier, or -1 when it is unknown or
// age ranges are disabled.
func (j *Job) GetAgeRange() int {
	record := j.verification.Current()
	if record == nil || !record.IsVerified() || !j.verification.UseAgeRange() {
		return int(models.AgeUnknown)
	}
	if record.AgeLimit >= models.AgeUnknownMinor {
		return int(models.AgeUnknown)
	}
	return int(record.AgeLimit)
}

// GetRemainingTime returns the seconds of play left, 0 before a check.
func (j *Job) GetRemainingTime() int {
	playable := j.worker.Playable()
	if playable == nil {
		return 0
	}
	if j.verification.CheckIsAdult() {
		return models.UnrestrictedRemainTime
	}
	return playable.RemainTime
}

// GetCurrentToken returns the compliance token of the resident player, empty
// unless the player passed verification.
func (j *Job) GetCurrentToken() string {
	if !j.verification.IsVerified() {
		return ""
	}
	return j.verification.CurrentToken()
}

// SetTestEnvironment switches policy requests to the test configuration.
func (j *Job) SetTestEnvironment(enabled bool) {
	j.client.SetTestMode(enabled)
}

// -----------------------------------------------------------------------------
// Payments
// -----------------------------------------------------------------------------

// CheckPaymentLimit asks whether a payment of amount may proceed. An expired
// token exits the player before the error is returned.
func (j *Job) CheckPaymentLimit(ctx context.Context, amount int64) (models.CheckPayResult, error) {
	payable, err := j.worker.CheckPayable(ctx, amount)
	if err != nil {
		j.exitOnExpiry(ctx, err)
		return models.CheckPayResult{}, err
	}
	return models.NewCheckPayResult(*payable), nil
}

// SubmitPayment records a completed payment of amount.
func (j *Job) SubmitPayment(ctx context.Context, amount int64) error {
	if err := j.worker.SubmitPayResult(ctx, amount); err != nil {
		j.exitOnExpiry(ctx, err)
		return err
	}
	return nil
}

func (j *Job) exitOnExpiry(ctx context.Context, err error) {
	if network.IsTokenExpired(err) {
		j.logger.InfoContext(ctx, "token expired during payment, exiting")
		j.Exit(ctx)
	}
}
