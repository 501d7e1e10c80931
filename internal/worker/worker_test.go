package worker

//go:generate mockgen -source=worker.go -destination=mocks/mocks.go -package=mocks API,Verifier

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"playgate/internal/models"
	"playgate/internal/network"
	"playgate/internal/persistence"
	"playgate/internal/persistence/store/memory"
	"playgate/internal/presenter"
	"playgate/internal/worker/mocks"
	"playgate/pkg/requestcontext"
)

// fakePresenter records prompts and answers them as configured.
type fakePresenter struct {
	mu        sync.Mutex
	identity  func(p presenter.IdentityPrompt)
	tips      []presenter.TipPrompt
	reminders []presenter.ReminderPrompt
	payments  []presenter.PaymentPrompt
}

func (f *fakePresenter) ShowIdentityForm(_ context.Context, p presenter.IdentityPrompt) {
	if f.identity != nil {
		f.identity(p)
		return
	}
	p.Cancel()
}

func (f *fakePresenter) ShowVerifyingTip(_ context.Context, p presenter.TipPrompt) {
	f.mu.Lock()
	f.tips = append(f.tips, p)
	f.mu.Unlock()
	p.Dismiss()
}

func (f *fakePresenter) ShowHealthReminder(_ context.Context, p presenter.ReminderPrompt) {
	f.mu.Lock()
	f.reminders = append(f.reminders, p)
	f.mu.Unlock()
	if p.Continue != nil {
		p.Continue()
	}
}

func (f *fakePresenter) ShowPaymentBlocked(_ context.Context, p presenter.PaymentPrompt) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = append(f.payments, p)
}

func (f *fakePresenter) lastReminder() presenter.ReminderPrompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reminders[len(f.reminders)-1]
}

var (
	serverDown   = &network.Error{Kind: network.KindServer, Code: 503}
	tokenExpired = &network.Error{Kind: network.KindTokenExpired, Code: 401, Tag: network.TagTokenExpired}
	badRequest   = &network.Error{Kind: network.KindClient, Code: 400}
)

// fridayEvening is 20:30 on a Friday in UTC+8.
var fridayEvening = time.Date(2024, 3, 8, 12, 30, 0, 0, time.UTC)

func allowedPolicy(active string) *models.UserPolicyConfig {
	return &models.UserPolicyConfig{
		AgeCheckResult: models.AgeCheckResult{Allow: true},
		UserState:      models.UserState{AgeLimit: models.AgeYoung},
		Policy:         models.Policy{Active: active, HeartbeatInterval: 3600},
	}
}

func adultPolicy(active string) *models.UserPolicyConfig {
	cfg := allowedPolicy(active)
	cfg.UserState = models.UserState{AgeLimit: models.AgeAdult, IsAdult: true}
	return cfg
}

type WorkerSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	api       *mocks.MockAPI
	verifier  *mocks.MockVerifier
	backend   *memory.Backend
	store     *persistence.Store
	presenter *fakePresenter
	worker    *Worker
	ctx       context.Context

	mu       sync.Mutex
	record   *models.VerificationRecord
	logouts  []bool
	outcomes []models.Outcome
	quits    int
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.setup()
}

func (s *WorkerSuite) setup(opts ...Option) {
	s.ctrl = gomock.NewController(s.T())
	s.api = mocks.NewMockAPI(s.ctrl)
	s.verifier = mocks.NewMockVerifier(s.ctrl)
	s.backend = memory.New()
	store, err := persistence.NewStore(s.backend)
	s.Require().NoError(err)
	s.store = store
	s.presenter = &fakePresenter{}
	s.ctx = context.Background()
	s.record = nil
	s.logouts = nil
	s.outcomes = nil
	s.quits = 0

	s.verifier.EXPECT().Current().DoAndReturn(func() *models.VerificationRecord {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.record == nil {
			return nil
		}
		r := *s.record
		return &r
	}).AnyTimes()
	s.verifier.EXPECT().Logout(gomock.Any(), gomock.Any()).Do(func(_ context.Context, clear bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.record = nil
		s.logouts = append(s.logouts, clear)
	}).AnyTimes()
	s.verifier.EXPECT().SetAgeState(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, limit models.AgeLimit, adult bool) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.record != nil {
				s.record.AgeLimit = models.NormalizeAgeLimit(limit, adult)
				s.record.IsAdult = adult
			}
			return nil
		}).AnyTimes()

	opts = append([]Option{WithQuitHook(func() { s.quits++ })}, opts...)
	w, err := New(s.api, s.verifier, s.store, s.presenter, opts...)
	s.Require().NoError(err)
	w.SetNotifier(func(o models.Outcome, _ string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.outcomes = append(s.outcomes, o)
	})
	s.worker = w
	s.T().Cleanup(w.ClearUserState)
}

func (s *WorkerSuite) setRecord(r *models.VerificationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = r
}

func (s *WorkerSuite) verified(adult bool) {
	s.verifier.EXPECT().Fetch(gomock.Any(), "user-1").DoAndReturn(func(context.Context, string) error {
		s.setRecord(&models.VerificationRecord{UserID: "user-1", ComplianceToken: "t", Status: models.StatusVerified, IsAdult: adult})
		return nil
	})
}

func (s *WorkerSuite) cachePolicy(cfg *models.UserPolicyConfig) {
	doc := persistence.Open[models.UserPolicyConfig](s.store, persistence.NamespaceUserPolicy, "user-1")
	s.Require().NoError(doc.Save(s.ctx, cfg))
}

func (s *WorkerSuite) cachedPolicy() *models.UserPolicyConfig {
	doc := persistence.Open[models.UserPolicyConfig](s.store, persistence.NamespaceUserPolicy, "user-1")
	cfg, err := doc.Load(s.ctx)
	s.Require().NoError(err)
	return cfg
}

// -----------------------------------------------------------------------------
// Verification stage
// -----------------------------------------------------------------------------

func (s *WorkerSuite) TestManualVerificationThenAgeLimit() {
	s.verifier.EXPECT().Fetch(gomock.Any(), "user-1").Return(nil)
	s.presenter.identity = func(p presenter.IdentityPrompt) {
		s.NoError(p.Submit("Name", "110101"))
	}
	s.verifier.EXPECT().FetchManual(gomock.Any(), "user-1", "Name", "110101").
		DoAndReturn(func(context.Context, string, string, string) (*models.VerificationRecord, error) {
			r := &models.VerificationRecord{UserID: "user-1", ComplianceToken: "m", Status: models.StatusVerified}
			s.setRecord(r)
			return r, nil
		})
	s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).
		Return(&models.UserPolicyConfig{AgeCheckResult: models.AgeCheckResult{Allow: false}, UserState: models.UserState{AgeLimit: models.AgeTeen}}, nil)

	s.Equal(models.OutcomeAgeLimit, s.worker.StartUp(s.ctx, "user-1"))
	s.Equal(models.AgeTeen, s.worker.verifier.Current().AgeLimit)
	s.False(s.worker.Polling())
}

func (s *WorkerSuite) TestManualVerificationCancelled() {
	s.verifier.EXPECT().Fetch(gomock.Any(), "user-1").Return(serverDown)

	s.Equal(models.OutcomeRealNameStop, s.worker.StartUp(s.ctx, "user-1"))
}

func (s *WorkerSuite) TestManualVerificationKeepsFormOpenUntilVerified() {
	s.verifier.EXPECT().Fetch(gomock.Any(), "user-1").DoAndReturn(func(context.Context, string) error {
		s.setRecord(&models.VerificationRecord{UserID: "user-1", Status: models.StatusFailed})
		return nil
	})
	s.verifier.EXPECT().FetchManual(gomock.Any(), "user-1", "Name", "pending").
		Return(&models.VerificationRecord{Status: models.StatusVerifying}, nil)
	s.verifier.EXPECT().FetchManual(gomock.Any(), "user-1", "Name", "bad").
		Return(nil, badRequest)

	var errs []error
	s.presenter.identity = func(p presenter.IdentityPrompt) {
		errs = append(errs, p.Submit("Name", "pending"), p.Submit("Name", "bad"))
		p.Cancel()
	}

	s.Equal(models.OutcomeRealNameStop, s.worker.StartUp(s.ctx, "user-1"))
	s.Require().Len(errs, 2)
	s.ErrorIs(errs[0], ErrNotVerified)
	s.ErrorIs(errs[1], badRequest)
}

func (s *WorkerSuite) TestVerifyingShowsTip() {
	s.api.EXPECT().FetchConfig(gomock.Any(), "user-1").Return(&models.GlobalConfig{
		UI: models.GlobalUI{VerifyingTip: models.Tip{Title: "Hold on", Content: "Still checking"}},
	}, nil)
	s.Require().NoError(s.worker.FetchConfig(s.ctx, "user-1"))

	s.verifier.EXPECT().Fetch(gomock.Any(), "user-1").DoAndReturn(func(context.Context, string) error {
		s.setRecord(&models.VerificationRecord{UserID: "user-1", Status: models.StatusVerifying})
		return nil
	})

	s.Equal(models.OutcomeRealNameStop, s.worker.StartUp(s.ctx, "user-1"))
	s.Require().Len(s.presenter.tips, 1)
	s.Equal("Hold on", s.presenter.tips[0].Title)
	s.Equal("OK", s.presenter.tips[0].Button)
}

// -----------------------------------------------------------------------------
// Policy stage
// -----------------------------------------------------------------------------

func (s *WorkerSuite) TestPolicyTimestampRetry() {
	s.verified(true)
	skew := &network.Error{Kind: network.KindInvalidTimestamp, Code: 400, Tag: network.TagInvalidTime, Now: 1700000000}
	policy := adultPolicy(models.PolicyActiveTimeRange)
	gomock.InOrder(
		s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).Return(nil, skew),
		s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(1700000000)).Return(policy, nil),
	)
	s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", gomock.Any()).
		Return(&models.PlayableResult{RemainTime: models.UnrestrictedRemainTime}, nil)

	s.Equal(models.OutcomeLoginSuccess, s.worker.StartUp(s.ctx, "user-1"))
	s.Equal(policy, s.cachedPolicy())
	s.Len(s.worker.Session(), SessionLength)
	s.Empty(s.presenter.reminders)
	s.False(s.worker.Polling())
}

func (s *WorkerSuite) TestPolicyFallsBackToCache() {
	cached := adultPolicy(models.PolicyActiveTimeRange)
	s.cachePolicy(cached)
	s.verified(true)
	s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).Return(nil, serverDown)
	s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, session string) (*models.PlayableResult, error) {
			s.Len(session, SessionLength)
			return &models.PlayableResult{RemainTime: models.UnrestrictedRemainTime}, nil
		})

	s.Equal(models.OutcomeLoginSuccess, s.worker.StartUp(requestcontext.WithTime(s.ctx, fridayEvening), "user-1"))
	s.Equal(cached, s.worker.Policy())
	s.Equal(fridayEvening, s.worker.clock.wall)
}

func (s *WorkerSuite) TestPolicyFailures() {
	s.Run("server error without cache", func() {
		s.setup()
		s.verified(true)
		s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).Return(nil, serverDown)

		s.Equal(models.OutcomeInvalidClientOrNetworkError, s.worker.StartUp(s.ctx, "user-1"))
	})

	s.Run("client error ignores cache", func() {
		s.setup()
		s.cachePolicy(allowedPolicy(models.PolicyActiveTimeRange))
		s.verified(true)
		s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).Return(nil, badRequest)

		s.Equal(models.OutcomeInvalidClientOrNetworkError, s.worker.StartUp(s.ctx, "user-1"))
	})

	s.Run("expired token logs out and clears caches", func() {
		s.setup()
		s.cachePolicy(allowedPolicy(models.PolicyActiveTimeRange))
		s.verified(false)
		s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).Return(nil, tokenExpired)

		s.Equal(models.OutcomeExited, s.worker.StartUp(s.ctx, "user-1"))
		s.Equal([]bool{true}, s.logouts)
		s.Nil(s.cachedPolicy())
		s.Empty(s.worker.UserID())
	})
}

// -----------------------------------------------------------------------------
// Playability stage
// -----------------------------------------------------------------------------

func (s *WorkerSuite) TestAdultPlayable() {
	s.Run("no polling by default", func() {
		s.setup()
		s.verified(true)
		s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).Return(adultPolicy("none"), nil)
		s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", gomock.Any()).Return(&models.PlayableResult{RemainTime: 9999}, nil)

		s.Equal(models.OutcomeLoginSuccess, s.worker.StartUp(s.ctx, "user-1"))
		s.False(s.worker.Polling())
	})

	s.Run("polls when actions must be uploaded", func() {
		s.setup()
		s.api.EXPECT().FetchConfig(gomock.Any(), "user-1").Return(&models.GlobalConfig{UploadUserAction: true}, nil)
		s.Require().NoError(s.worker.FetchConfig(s.ctx, "user-1"))
		s.verified(true)
		s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).Return(adultPolicy("none"), nil)
		s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", gomock.Any()).Return(&models.PlayableResult{RemainTime: 9999}, nil)

		s.Equal(models.OutcomeLoginSuccess, s.worker.StartUp(s.ctx, "user-1"))
		s.True(s.worker.Polling())
	})
}

func (s *WorkerSuite) TestMinorPlayable() {
	s.verified(false)
	s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).Return(allowedPolicy(models.PolicyActiveTimeRange), nil)
	s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", gomock.Any()).
		Return(&models.PlayableResult{RemainTime: 1800, Title: "t", Content: "c"}, nil)

	s.Equal(models.OutcomeLoginSuccess, s.worker.StartUp(s.ctx, "user-1"))
	s.Require().Len(s.presenter.reminders, 1)
	s.False(s.presenter.reminders[0].Restricted())
	s.True(s.worker.Polling())
	s.Equal(1800, s.worker.Playable().RemainTime)
}

func (s *WorkerSuite) TestMinorRestricted() {
	s.setup(WithSwitchAccount(true))
	s.verified(false)
	s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).Return(allowedPolicy(models.PolicyActiveTimeRange), nil)
	s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", gomock.Any()).Return(&models.PlayableResult{RemainTime: 0}, nil)

	s.Equal(models.OutcomePeriodRestrict, s.worker.StartUp(s.ctx, "user-1"))
	s.False(s.worker.Polling())

	prompt := s.presenter.lastReminder()
	s.True(prompt.Restricted())
	s.Require().NotNil(prompt.Exit)
	prompt.Exit()
	s.Equal(1, s.quits)

	s.Require().NotNil(prompt.SwitchAccount)
	prompt.SwitchAccount()
	s.Equal([]bool{false}, s.logouts)
	s.Equal([]models.Outcome{models.OutcomeSwitchAccount}, s.outcomes)
}

func (s *WorkerSuite) TestRestrictionWithoutSwitchAccount() {
	s.verified(false)
	s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).Return(allowedPolicy(models.PolicyActiveTimeRange), nil)
	s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", gomock.Any()).Return(&models.PlayableResult{RemainTime: -5}, nil)

	s.Equal(models.OutcomePeriodRestrict, s.worker.StartUp(s.ctx, "user-1"))
	s.Nil(s.presenter.lastReminder().SwitchAccount)
}

func (s *WorkerSuite) TestHeartbeatFallback() {
	s.Run("server error under time range policy computes offline", func() {
		s.setup()
		s.verified(false)
		s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).Return(allowedPolicy(models.PolicyActiveTimeRange), nil)
		s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", gomock.Any()).Return(nil, serverDown)

		outcome := s.worker.StartUp(requestcontext.WithTime(s.ctx, fridayEvening), "user-1")
		s.Equal(models.OutcomeLoginSuccess, outcome)
		s.Equal(1800, s.worker.Playable().RemainTime)
	})

	s.Run("server error under another policy propagates", func() {
		s.setup()
		s.verified(false)
		s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).Return(allowedPolicy("duration"), nil)
		s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", gomock.Any()).Return(nil, serverDown)

		s.Equal(models.OutcomeInvalidClientOrNetworkError, s.worker.StartUp(s.ctx, "user-1"))
	})

	s.Run("transport error falls back regardless of policy", func() {
		s.setup()
		s.verified(true)
		s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).Return(adultPolicy("duration"), nil)
		s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", gomock.Any()).
			Return(nil, &network.Error{Kind: network.KindTransport})

		s.Equal(models.OutcomeLoginSuccess, s.worker.StartUp(s.ctx, "user-1"))
		s.Equal(models.UnrestrictedRemainTime, s.worker.Playable().RemainTime)
	})

	s.Run("client error propagates", func() {
		s.setup()
		s.verified(false)
		s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).Return(allowedPolicy(models.PolicyActiveTimeRange), nil)
		s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", gomock.Any()).Return(nil, badRequest)

		s.Equal(models.OutcomeInvalidClientOrNetworkError, s.worker.StartUp(s.ctx, "user-1"))
	})

	s.Run("expired token exits", func() {
		s.setup()
		s.verified(false)
		s.api.EXPECT().FetchUserConfig(gomock.Any(), "user-1", int64(0)).Return(allowedPolicy(models.PolicyActiveTimeRange), nil)
		s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", gomock.Any()).Return(nil, tokenExpired)

		s.Equal(models.OutcomeExited, s.worker.StartUp(s.ctx, "user-1"))
		s.Equal([]bool{true}, s.logouts)
	})
}

func (s *WorkerSuite) TestSharedHeartbeatIgnoresCallerCancellation() {
	ctx, cancel := context.WithCancel(requestcontext.WithRequestID(s.ctx, "req-1"))
	cancel()

	s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", "sess").
		DoAndReturn(func(ctx context.Context, _, _ string) (*models.PlayableResult, error) {
			s.NoError(ctx.Err())
			s.Equal("req-1", requestcontext.RequestID(ctx))
			return &models.PlayableResult{RemainTime: 600}, nil
		})

	playable, err := s.worker.heartbeat(ctx, "user-1", "sess")
	s.Require().NoError(err)
	s.Equal(600, playable.RemainTime)
}

func (s *WorkerSuite) TestOfflineIsStableAcrossCalls() {
	s.setRecord(&models.VerificationRecord{UserID: "user-1", Status: models.StatusVerified})
	policy := allowedPolicy(models.PolicyActiveTimeRange)
	ctx := requestcontext.WithTime(s.ctx, fridayEvening)

	first := s.worker.offlinePlayable(ctx, policy)
	anchored := s.worker.clock
	second := s.worker.offlinePlayable(ctx, policy)
	s.Equal(first, second)
	s.Equal(anchored, s.worker.clock)

	later := requestcontext.WithTime(s.ctx, fridayEvening.Add(10*time.Minute))
	s.Equal(first.RemainTime-600, s.worker.offlinePlayable(later, policy).RemainTime)
	s.Equal(anchored, s.worker.clock)

	s.setRecord(&models.VerificationRecord{UserID: "user-1", Status: models.StatusVerified, IsAdult: true})
	s.Equal(models.UnrestrictedRemainTime, s.worker.offlinePlayable(ctx, policy).RemainTime)
}

// -----------------------------------------------------------------------------
// Polling
// -----------------------------------------------------------------------------

func (s *WorkerSuite) primePoll() {
	s.worker.mu.Lock()
	s.worker.userID = "user-1"
	s.worker.policy = allowedPolicy(models.PolicyActiveTimeRange)
	s.worker.session = "session"
	s.worker.mu.Unlock()
	s.setRecord(&models.VerificationRecord{UserID: "user-1", Status: models.StatusVerified})
}

func (s *WorkerSuite) TestCheckOnPoll() {
	s.Run("time left", func() {
		s.setup()
		s.primePoll()
		s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", "session").Return(&models.PlayableResult{RemainTime: 60}, nil)

		s.Equal(60, s.worker.checkOnPoll(s.ctx))
		s.Empty(s.outcomes)
	})

	s.Run("time used up", func() {
		s.setup()
		s.primePoll()
		s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", "session").Return(&models.PlayableResult{RemainTime: 0, Title: "stop"}, nil)

		s.Equal(0, s.worker.checkOnPoll(s.ctx))
		s.Equal([]models.Outcome{models.OutcomePeriodRestrict}, s.outcomes)
		s.Equal("stop", s.presenter.lastReminder().Playable.Title)
	})

	s.Run("expired token", func() {
		s.setup()
		s.primePoll()
		s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", "session").Return(nil, tokenExpired)

		s.Equal(0, s.worker.checkOnPoll(s.ctx))
		s.Equal([]models.Outcome{models.OutcomeExited}, s.outcomes)
		s.Equal([]bool{true}, s.logouts)
	})

	s.Run("other failure stops polling", func() {
		s.setup()
		s.primePoll()
		s.worker.poller.Start(s.ctx, time.Hour)
		s.api.EXPECT().CheckPlayable(gomock.Any(), "user-1", "session").Return(nil, badRequest)

		s.Equal(0, s.worker.checkOnPoll(s.ctx))
		s.Equal([]models.Outcome{models.OutcomeInvalidClientOrNetworkError}, s.outcomes)
		s.False(s.worker.Polling())
		s.Empty(s.logouts)
	})
}

// -----------------------------------------------------------------------------
// Payments and logout
// -----------------------------------------------------------------------------

func (s *WorkerSuite) TestCheckPayable() {
	s.primePoll()

	s.api.EXPECT().CheckPayable(gomock.Any(), "user-1", int64(100)).Return(&models.PayableResult{Status: true}, nil)
	got, err := s.worker.CheckPayable(s.ctx, 100)
	s.Require().NoError(err)
	s.True(got.Status)

	s.api.EXPECT().CheckPayable(gomock.Any(), "user-1", int64(5000)).Return(&models.PayableResult{Status: false}, nil)
	_, err = s.worker.CheckPayable(s.ctx, 5000)
	s.Require().NoError(err)
	s.Empty(s.presenter.payments)

	s.api.EXPECT().CheckPayable(gomock.Any(), "user-1", int64(6000)).
		Return(&models.PayableResult{Status: false, Title: "Limit", Content: "Too much"}, nil)
	_, err = s.worker.CheckPayable(s.ctx, 6000)
	s.Require().NoError(err)
	s.Equal([]presenter.PaymentPrompt{{Title: "Limit", Content: "Too much"}}, s.presenter.payments)

	s.api.EXPECT().CheckPayable(gomock.Any(), "user-1", int64(1)).Return(nil, tokenExpired)
	_, err = s.worker.CheckPayable(s.ctx, 1)
	s.True(network.IsTokenExpired(err))
}

func (s *WorkerSuite) TestSubmitPayResult() {
	s.primePoll()
	s.api.EXPECT().SubmitPayment(gomock.Any(), "user-1", int64(600)).Return(nil)
	s.NoError(s.worker.SubmitPayResult(s.ctx, 600))
}

func (s *WorkerSuite) TestLogoutResetsState() {
	s.primePoll()
	s.cachePolicy(allowedPolicy(models.PolicyActiveTimeRange))
	s.worker.poller.Start(s.ctx, time.Hour)
	s.worker.anchorClock(s.ctx)

	s.worker.Logout(s.ctx, true)
	s.False(s.worker.Polling())
	s.Nil(s.worker.Policy())
	s.Empty(s.worker.Session())
	s.True(s.worker.clock.wall.IsZero())
	s.Nil(s.cachedPolicy())
	s.Equal([]bool{true}, s.logouts)
}

func TestNewRequiresDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	store, err := persistence.NewStore(memory.New())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(nil, mocks.NewMockVerifier(ctrl), store, nil); err == nil {
		t.Error("expected error for nil api")
	}
	if _, err := New(mocks.NewMockAPI(ctrl), nil, store, nil); err == nil {
		t.Error("expected error for nil verifier")
	}
	if _, err := New(mocks.NewMockAPI(ctrl), mocks.NewMockVerifier(ctrl), nil, nil); err == nil {
		t.Error("expected error for nil store")
	}
}
