// Package worker runs the compliance startup protocol for one player:
// verification, policy, playability, polling and payment gating.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"playgate/internal/models"
	"playgate/internal/persistence"
	"playgate/internal/platform/metrics"
	"playgate/internal/poll"
	"playgate/internal/presenter"
)

// DefaultHeartbeatInterval is used when the policy carries none.
const DefaultHeartbeatInterval = 2 * time.Minute

// ErrNotVerified is returned to the identity form when the submitted
// identity did not result in a verified record.
var ErrNotVerified = errors.New("identity not verified")

// API is the subset of the compliance API the worker calls.
type API interface {
	FetchConfig(ctx context.Context, userID string) (*models.GlobalConfig, error)
	FetchUserConfig(ctx context.Context, userID string, ts int64) (*models.UserPolicyConfig, error)
	CheckPlayable(ctx context.Context, userID, sessionID string) (*models.PlayableResult, error)
	CheckPayable(ctx context.Context, userID string, amount int64) (*models.PayableResult, error)
	SubmitPayment(ctx context.Context, userID string, amount int64) error
}

// Verifier is the verification store as seen by the worker.
type Verifier interface {
	Fetch(ctx context.Context, userID string) error
	FetchManual(ctx context.Context, userID, name, idCard string) (*models.VerificationRecord, error)
	SetAgeState(ctx context.Context, ageLimit models.AgeLimit, isAdult bool) error
	Logout(ctx context.Context, clearCache bool)
	Current() *models.VerificationRecord
}

// Notifier receives outcomes raised outside of StartUp, by the poller or
// by reminder actions.
type Notifier func(outcome models.Outcome, message string)

// Worker holds the derived state of the logged-in player: policy, last
// playability answer, heartbeat session and offline clock baseline.
type Worker struct {
	api       API
	verifier  Verifier
	store     *persistence.Store
	presenter presenter.Presenter
	poller    *poll.Poller
	logger    *slog.Logger
	metrics   *metrics.Metrics

	showSwitchAccount bool
	defaultInterval   time.Duration
	quit              func()
	heartbeats        singleflight.Group

	mu       sync.RWMutex
	notify   Notifier
	userID   string
	global   *models.GlobalConfig
	policy   *models.UserPolicyConfig
	playable *models.PlayableResult
	session  string
	clock    offlineClock
}

// Option configures a Worker.
type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithSwitchAccount offers a switch-account action on restriction
// reminders.
func WithSwitchAccount(enabled bool) Option {
	return func(w *Worker) {
		w.showSwitchAccount = enabled
	}
}

// WithDefaultHeartbeatInterval sets the poll interval used when the policy
// carries none.
func WithDefaultHeartbeatInterval(d time.Duration) Option {
	return func(w *Worker) {
		w.defaultInterval = d
	}
}

// WithQuitHook sets what the exit action of a restriction reminder does.
// The host usually closes the game.
func WithQuitHook(fn func()) Option {
	return func(w *Worker) {
		w.quit = fn
	}
}

// New creates a Worker. The poller is owned by the worker.
func New(api API, verifier Verifier, store *persistence.Store, p presenter.Presenter, opts ...Option) (*Worker, error) {
	if api == nil {
		return nil, errors.New("api is required")
	}
	if verifier == nil {
		return nil, errors.New("verifier is required")
	}
	if store == nil {
		return nil, errors.New("store is required")
	}
	if p == nil {
		p = presenter.Nop{}
	}
	w := &Worker{
		api:             api,
		verifier:        verifier,
		store:           store,
		presenter:       p,
		logger:          slog.Default(),
		defaultInterval: DefaultHeartbeatInterval,
		quit:            func() {},
		notify:          func(models.Outcome, string) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	poller, err := poll.New(w.checkOnPoll, poll.WithLogger(w.logger))
	if err != nil {
		return nil, err
	}
	w.poller = poller
	return w, nil
}

// SetNotifier sets the receiver of asynchronous outcomes.
func (w *Worker) SetNotifier(fn Notifier) {
	if fn == nil {
		fn = func(models.Outcome, string) {}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notify = fn
}

func (w *Worker) emit(outcome models.Outcome) {
	w.mu.RLock()
	fn := w.notify
	w.mu.RUnlock()
	fn(outcome, "")
}

// -----------------------------------------------------------------------------
// Startup
// -----------------------------------------------------------------------------

// StartUp runs the startup protocol for userID and returns its outcome.
func (w *Worker) StartUp(ctx context.Context, userID string) models.Outcome {
	w.mu.Lock()
	w.userID = userID
	w.mu.Unlock()

	if err := w.verifier.Fetch(ctx, userID); err != nil {
		w.logger.WarnContext(ctx, "verification fetch failed, falling back to manual entry",
			"user_id", userID,
			"error", err,
		)
	}

	record := w.verifier.Current()
	switch {
	case record == nil || record.IsVerifyFailed():
		if outcome := w.verifyManually(ctx, userID); outcome != models.OutcomeLoginSuccess {
			return outcome
		}
	case record.IsVerifying():
		return w.showVerifyingTip(ctx)
	}
	return w.validateUserConfig(ctx, userID)
}

// verifyManually raises the identity form and waits for the player to
// either get verified or give up.
func (w *Worker) verifyManually(ctx context.Context, userID string) models.Outcome {
	done := make(chan models.Outcome, 1)
	var once sync.Once
	resolve := func(o models.Outcome) {
		once.Do(func() { done <- o })
	}
	detached := context.WithoutCancel(ctx)

	w.presenter.ShowIdentityForm(ctx, presenter.IdentityPrompt{
		Submit: func(name, idCard string) error {
			record, err := w.verifier.FetchManual(detached, userID, name, idCard)
			if err != nil {
				return err
			}
			if !record.IsVerified() {
				return ErrNotVerified
			}
			resolve(models.OutcomeLoginSuccess)
			return nil
		},
		Cancel: func() { resolve(models.OutcomeRealNameStop) },
	})

	select {
	case outcome := <-done:
		return outcome
	case <-ctx.Done():
		return models.OutcomeRealNameStop
	}
}

func (w *Worker) showVerifyingTip(ctx context.Context) models.Outcome {
	tip := w.verifyingTip()
	done := make(chan struct{})
	var once sync.Once

	w.presenter.ShowVerifyingTip(ctx, presenter.TipPrompt{
		Title:   tip.Title,
		Content: tip.Content,
		Button:  tip.PositiveButton,
		Dismiss: func() { once.Do(func() { close(done) }) },
	})

	select {
	case <-done:
	case <-ctx.Done():
	}
	return models.OutcomeRealNameStop
}

func (w *Worker) verifyingTip() models.Tip {
	tip := models.Tip{
		Title:          "Verification in progress",
		Content:        "Your identity is being verified. Please try again later.",
		PositiveButton: "OK",
	}
	if g := w.GlobalConfig(); g != nil {
		if t := g.UI.VerifyingTip; t.Title != "" && t.Content != "" {
			tip = t
			if tip.PositiveButton == "" {
				tip.PositiveButton = "OK"
			}
		}
	}
	return tip
}

func (w *Worker) validateUserConfig(ctx context.Context, userID string) models.Outcome {
	cfg, err := w.userConfigWithFallback(ctx, userID)
	if err != nil {
		return w.outcomeForError(ctx, "user config", err)
	}

	w.mu.Lock()
	w.policy = cfg
	w.mu.Unlock()

	if err := w.verifier.SetAgeState(ctx, cfg.UserState.AgeLimit, cfg.UserState.IsAdult); err != nil {
		w.logger.WarnContext(ctx, "age state not persisted", "user_id", userID, "error", err)
	}
	if !cfg.AgeCheckResult.Allow {
		return models.OutcomeAgeLimit
	}
	return w.validatePlayable(ctx, userID)
}

func (w *Worker) validatePlayable(ctx context.Context, userID string) models.Outcome {
	playable, err := w.playableWithFallback(ctx, userID)
	if err != nil {
		return w.outcomeForError(ctx, "playable", err)
	}
	w.setPlayable(playable)

	if record := w.verifier.Current(); record != nil && record.CheckIsAdult() {
		w.tryStartPoll(ctx)
		return models.OutcomeLoginSuccess
	}
	return w.onMinorPlayable(ctx, playable)
}

// outcomeForError maps a startup failure onto its outcome. An expired token
// logs the player out.
func (w *Worker) outcomeForError(ctx context.Context, stage string, err error) models.Outcome {
	if isTokenExpired(err) {
		w.logger.InfoContext(ctx, "token expired, logging out", "stage", stage)
		w.Logout(ctx, true)
		return models.OutcomeExited
	}
	w.logger.ErrorContext(ctx, "startup failed", "stage", stage, "error", err)
	return models.OutcomeInvalidClientOrNetworkError
}

func (w *Worker) onMinorPlayable(ctx context.Context, playable models.PlayableResult) models.Outcome {
	if !playable.Playable() {
		w.presenter.ShowHealthReminder(ctx, w.restrictionPrompt(ctx, playable))
		return models.OutcomePeriodRestrict
	}

	done := make(chan struct{})
	var once sync.Once
	detached := context.WithoutCancel(ctx)
	w.presenter.ShowHealthReminder(ctx, presenter.ReminderPrompt{
		Playable: playable,
		Continue: func() {
			once.Do(func() {
				w.tryStartPoll(detached)
				close(done)
			})
		},
	})

	select {
	case <-done:
		return models.OutcomeLoginSuccess
	case <-ctx.Done():
		return models.OutcomeRealNameStop
	}
}

// restrictionPrompt builds the reminder shown once play time is used up.
func (w *Worker) restrictionPrompt(ctx context.Context, playable models.PlayableResult) presenter.ReminderPrompt {
	prompt := presenter.ReminderPrompt{
		Playable: playable,
		Exit:     w.quit,
	}
	if w.showSwitchAccount {
		detached := context.WithoutCancel(ctx)
		prompt.SwitchAccount = func() {
			w.Logout(detached, false)
			w.emit(models.OutcomeSwitchAccount)
		}
	}
	return prompt
}

// -----------------------------------------------------------------------------
// Polling
// -----------------------------------------------------------------------------

func (w *Worker) needsPoll() bool {
	record := w.verifier.Current()
	if record == nil || !record.CheckIsAdult() {
		return true
	}
	g := w.GlobalConfig()
	return g != nil && g.UploadUserAction
}

func (w *Worker) tryStartPoll(ctx context.Context) {
	if !w.needsPoll() {
		return
	}
	interval := w.defaultInterval
	if p := w.Policy(); p != nil && p.Policy.HeartbeatInterval > 0 {
		interval = time.Duration(p.Policy.HeartbeatInterval) * time.Second
	}
	w.poller.Start(ctx, interval)
}

// checkOnPoll is the poller's check. It reports the remaining time, zero
// when polling must end.
func (w *Worker) checkOnPoll(ctx context.Context) int {
	playable, err := w.playableWithFallback(ctx, w.UserID())
	if err != nil {
		w.metrics.IncrementPollTick("error")
		if isTokenExpired(err) {
			w.Logout(ctx, true)
			w.emit(models.OutcomeExited)
			return 0
		}
		w.logger.ErrorContext(ctx, "poll failed", "error", err)
		w.poller.Stop()
		w.emit(models.OutcomeInvalidClientOrNetworkError)
		return 0
	}
	w.setPlayable(playable)

	if !playable.Playable() {
		w.metrics.IncrementPollTick("restricted")
		w.emit(models.OutcomePeriodRestrict)
		w.presenter.ShowHealthReminder(ctx, w.restrictionPrompt(ctx, playable))
		return playable.RemainTime
	}
	w.metrics.IncrementPollTick("playable")
	return playable.RemainTime
}

// Polling reports whether the poller is running.
func (w *Worker) Polling() bool {
	return w.poller.Running()
}

// -----------------------------------------------------------------------------
// Payments
// -----------------------------------------------------------------------------

// CheckPayable asks whether a payment of amount may proceed. A refusal that
// comes with server copy is shown to the player.
func (w *Worker) CheckPayable(ctx context.Context, amount int64) (*models.PayableResult, error) {
	payable, err := w.api.CheckPayable(ctx, w.UserID(), amount)
	if err != nil {
		return nil, err
	}
	if !payable.Status && payable.HasCopy() {
		w.presenter.ShowPaymentBlocked(ctx, presenter.PaymentPrompt{Title: payable.Title, Content: payable.Content})
	}
	return payable, nil
}

// SubmitPayResult records a completed payment.
func (w *Worker) SubmitPayResult(ctx context.Context, amount int64) error {
	return w.api.SubmitPayment(ctx, w.UserID(), amount)
}

// -----------------------------------------------------------------------------
// Lifecycle and state
// -----------------------------------------------------------------------------

// FetchConfig loads the game-wide configuration into memory.
func (w *Worker) FetchConfig(ctx context.Context, userID string) error {
	cfg, err := w.api.FetchConfig(ctx, userID)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.global = cfg
	w.mu.Unlock()
	return nil
}

// Logout stops polling and forgets the player. With clearCache the cached
// policy and verification are deleted as well.
func (w *Worker) Logout(ctx context.Context, clearCache bool) {
	userID := w.UserID()
	if clearCache && userID != "" {
		doc := persistence.Open[models.UserPolicyConfig](w.store, persistence.NamespaceUserPolicy, userID)
		if err := doc.Delete(ctx); err != nil {
			w.logger.WarnContext(ctx, "policy cache not removed", "error", err)
		}
	}
	w.verifier.Logout(ctx, clearCache)
	w.ClearUserState()
}

// ClearUserState drops the in-memory state of the current player without
// touching caches or the verification record.
func (w *Worker) ClearUserState() {
	w.poller.Stop()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.userID = ""
	w.policy = nil
	w.playable = nil
	w.session = ""
	w.clock = offlineClock{}
}

func (w *Worker) UserID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.userID
}

// Policy returns the active user policy, nil before one was resolved.
func (w *Worker) Policy() *models.UserPolicyConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.policy
}

// Playable returns the last playability answer, nil before the first.
func (w *Worker) Playable() *models.PlayableResult {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.playable == nil {
		return nil
	}
	p := *w.playable
	return &p
}

func (w *Worker) setPlayable(p models.PlayableResult) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.playable = &p
}

// Session returns the current heartbeat session id.
func (w *Worker) Session() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.session
}

func (w *Worker) renewSession() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session = GenerateSession()
}

// GlobalConfig returns the in-memory game configuration, nil if never
// fetched.
func (w *Worker) GlobalConfig() *models.GlobalConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.global
}
