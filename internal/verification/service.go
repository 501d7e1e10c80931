// Package verification owns the identity and age verification record of the
// logged-in player: resolving it from cache, account token or user id,
// persisting it, and clearing it on logout.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"playgate/internal/account"
	"playgate/internal/models"
	"playgate/internal/network"
	"playgate/internal/persistence"
)

// ErrNoComplianceScope is returned by FetchByToken when the account token
// was not granted a compliance scope.
var ErrNoComplianceScope = errors.New("account token lacks compliance scope")

// API is the subset of the compliance API the store calls.
type API interface {
	FetchVerification(ctx context.Context, userID string) (*models.VerificationResult, error)
	FetchVerificationByToken(ctx context.Context, userID string, token *account.AccessToken, ts int64) (*models.VerificationResult, error)
	FetchVerificationManual(ctx context.Context, userID, name, idCard string) (*models.VerificationResult, error)
	UpgradeToken(ctx context.Context, userID, oldToken string) (*models.VerificationResult, error)
}

// Service holds at most one resident verification record.
type Service struct {
	api         API
	tokens      account.TokenSource
	store       *persistence.Store
	useAgeRange bool
	logger      *slog.Logger

	mu      sync.RWMutex
	current *models.VerificationRecord
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAgeRange makes the full compliance scope mandatory for token
// exchange. Enabled by default.
func WithAgeRange(enabled bool) Option {
	return func(s *Service) {
		s.useAgeRange = enabled
	}
}

// New creates a verification Service.
func New(api API, tokens account.TokenSource, store *persistence.Store, opts ...Option) (*Service, error) {
	if api == nil {
		return nil, errors.New("api is required")
	}
	if tokens == nil {
		return nil, errors.New("token source is required")
	}
	if store == nil {
		return nil, errors.New("store is required")
	}
	s := &Service{
		api:         api,
		tokens:      tokens,
		store:       store,
		useAgeRange: true,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) document(userID string) *persistence.Document[models.VerificationRecord] {
	return persistence.Open[models.VerificationRecord](s.store, persistence.NamespaceVerification, userID)
}

func (s *Service) legacyDocument(userID string) *persistence.Document[models.VerificationRecord] {
	return persistence.Open[models.VerificationRecord](s.store, persistence.NamespaceLegacyVerification, userID)
}

// Fetch resolves the verification of userID. Resolution stops at the first
// source that yields a record:
//  1. a cached record carrying a compliance token (no network call)
//  2. a legacy cached token, upgraded through the API
//  3. the account token, when it carries a compliance scope
//  4. the user id alone
//
// A previously resident record of another user is logged out and its cache
// deleted first.
func (s *Service) Fetch(ctx context.Context, userID string) error {
	if prev := s.Current(); prev != nil && prev.UserID != userID {
		s.Logout(ctx, true)
	}

	cached, err := s.document(userID).Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "verification cache unreadable", "user_id", userID, "error", err)
	}
	if cached.HasToken() {
		cached.UserID = userID
		cached.Status = models.ParseVerificationStatus(string(cached.Status))
		s.setCurrent(cached)
		return nil
	}

	if s.upgradeLegacy(ctx, userID) {
		return nil
	}

	token, err := s.tokens.CurrentToken(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "account token unavailable", "error", err)
		token = nil
	}
	if token.AllowsCompliance(s.useAgeRange) {
		if err := s.FetchByToken(ctx, userID, token); err != nil {
			s.logger.ErrorContext(ctx, "verification by account token failed", "user_id", userID, "error", err)
			return err
		}
		return nil
	}

	result, err := s.api.FetchVerification(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "verification by user id failed", "user_id", userID, "error", err)
		return fmt.Errorf("fetch verification: %w", err)
	}
	return s.SaveState(ctx, userID, *result)
}

// upgradeLegacy trades a legacy cached token for a current record. Failures
// are logged and reported as false so resolution continues.
func (s *Service) upgradeLegacy(ctx context.Context, userID string) bool {
	legacyDoc := s.legacyDocument(userID)
	legacy, err := legacyDoc.Load(ctx)
	if err != nil || !legacy.HasToken() {
		return false
	}

	result, err := s.api.UpgradeToken(ctx, userID, legacy.ComplianceToken)
	if err != nil {
		s.logger.WarnContext(ctx, "legacy token upgrade failed", "user_id", userID, "error", err)
		return false
	}
	if err := s.SaveState(ctx, userID, *result); err != nil {
		s.logger.WarnContext(ctx, "upgraded verification not persisted", "user_id", userID, "error", err)
	}
	if err := legacyDoc.Delete(ctx); err != nil {
		s.logger.WarnContext(ctx, "legacy verification not removed", "user_id", userID, "error", err)
	}
	return true
}

// FetchByToken exchanges the account token for a verification. token may be
// nil, in which case the current account token is used. A clock-skew
// rejection is retried exactly once with the server's time.
func (s *Service) FetchByToken(ctx context.Context, userID string, token *account.AccessToken) error {
	if token == nil {
		t, err := s.tokens.CurrentToken(ctx)
		if err != nil {
			return fmt.Errorf("account token: %w", err)
		}
		token = t
	}
	if !token.AllowsCompliance(s.useAgeRange) {
		return ErrNoComplianceScope
	}

	result, err := network.WithTimestampRetry(ctx, func(ctx context.Context, ts int64) (*models.VerificationResult, error) {
		return s.api.FetchVerificationByToken(ctx, userID, token, ts)
	})
	if err != nil {
		return fmt.Errorf("fetch verification by token: %w", err)
	}
	return s.SaveState(ctx, userID, *result)
}

// FetchManual verifies userID from a real name and ID number and persists
// the result.
func (s *Service) FetchManual(ctx context.Context, userID, name, idCard string) (*models.VerificationRecord, error) {
	result, err := s.api.FetchVerificationManual(ctx, userID, name, idCard)
	if err != nil {
		s.logger.ErrorContext(ctx, "manual verification failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("fetch manual verification: %w", err)
	}
	if err := s.SaveState(ctx, userID, *result); err != nil {
		return nil, err
	}
	return s.Current(), nil
}

// SaveState replaces the resident record with one derived from result and
// persists it. The resident record is replaced even if persisting fails.
func (s *Service) SaveState(ctx context.Context, userID string, result models.VerificationResult) error {
	record := models.NewVerificationRecord(userID, result)
	s.setCurrent(record)
	if err := s.document(userID).Save(ctx, record); err != nil {
		return fmt.Errorf("persist verification: %w", err)
	}
	return nil
}

// SetAgeState updates the age fields of the resident record, if any, and
// persists it.
func (s *Service) SetAgeState(ctx context.Context, ageLimit models.AgeLimit, isAdult bool) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}
	s.current.AgeLimit = models.NormalizeAgeLimit(ageLimit, isAdult)
	s.current.IsAdult = isAdult
	snapshot := *s.current
	s.mu.Unlock()

	if err := s.document(snapshot.UserID).Save(ctx, &snapshot); err != nil {
		return fmt.Errorf("persist age state: %w", err)
	}
	return nil
}

// Logout drops the resident record, deleting its cached copies when
// clearCache is set.
func (s *Service) Logout(ctx context.Context, clearCache bool) {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	if !clearCache || prev == nil {
		return
	}
	for _, doc := range []*persistence.Document[models.VerificationRecord]{
		s.document(prev.UserID),
		s.legacyDocument(prev.UserID),
	} {
		if err := doc.Delete(ctx); err != nil {
			s.logger.WarnContext(ctx, "verification cache not removed", "key", doc.Key(), "error", err)
		}
	}
}

func (s *Service) setCurrent(r *models.VerificationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = r
}

// Current returns a copy of the resident record, nil when none.
func (s *Service) Current() *models.VerificationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

func (s *Service) IsVerified() bool {
	r := s.Current()
	return r != nil && r.IsVerified()
}

func (s *Service) IsVerifying() bool {
	r := s.Current()
	return r != nil && r.IsVerifying()
}

func (s *Service) IsVerifyFailed() bool {
	r := s.Current()
	return r != nil && r.IsVerifyFailed()
}

// IsAdult reports the resident record's adult flag, false when none.
func (s *Service) IsAdult() bool {
	r := s.Current()
	return r != nil && r.IsAdult
}

// CheckIsAdult reports adulthood from the flag or the age tier.
func (s *Service) CheckIsAdult() bool {
	r := s.Current()
	return r != nil && r.CheckIsAdult()
}

// AgeLimit returns the resident age tier, child when none.
func (s *Service) AgeLimit() models.AgeLimit {
	r := s.Current()
	if r == nil {
		return models.AgeChild
	}
	return r.AgeLimit
}

// CurrentToken returns the resident compliance token, empty when none.
func (s *Service) CurrentToken() string {
	r := s.Current()
	if r == nil {
		return ""
	}
	return r.ComplianceToken
}

// UseAgeRange reports whether age ranges are enabled.
func (s *Service) UseAgeRange() bool {
	return s.useAgeRange
}
