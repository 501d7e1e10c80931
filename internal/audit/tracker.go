package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"playgate/internal/models"
)

// Emitter is the publishing side of a Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// StartupTracker reports the lifecycle of startups. Tracking failures are
// logged and never affect the startup itself.
type StartupTracker struct {
	emitter Emitter
	logger  *slog.Logger
}

func NewStartupTracker(emitter Emitter, logger *slog.Logger) *StartupTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &StartupTracker{emitter: emitter, logger: logger}
}

// Start records the beginning of a startup and returns its session.
func (t *StartupTracker) Start(ctx context.Context, userID string) uuid.UUID {
	session := uuid.New()
	if t == nil {
		return session
	}
	t.emit(ctx, Event{UserID: userID, SessionID: session, Action: ActionStartupStarted})
	return session
}

// Finish records how the startup of session ended. Exits and account
// switches are not startup results and leave the session open.
func (t *StartupTracker) Finish(ctx context.Context, session uuid.UUID, userID string, outcome models.Outcome) {
	if t == nil {
		return
	}
	action, tracked := actionFor(outcome)
	if !tracked {
		return
	}
	t.emit(ctx, Event{
		UserID:    userID,
		SessionID: session,
		Action:    action,
		Outcome:   int(outcome),
		Reason:    outcome.String(),
	})
}

func (t *StartupTracker) emit(ctx context.Context, event Event) {
	if err := t.emitter.Emit(ctx, event); err != nil {
		t.logger.WarnContext(ctx, "startup event not recorded",
			"action", event.Action,
			"error", err,
		)
	}
}

// actionFor maps an outcome onto the startup result it reports. A player
// let in, or held back only by play-time rules, counts as a successful check.
func actionFor(outcome models.Outcome) (Action, bool) {
	switch outcome {
	case models.OutcomeLoginSuccess, models.OutcomePeriodRestrict,
		models.OutcomeDurationLimit, models.OutcomeAgeLimit:
		return ActionStartupSucceeded, true
	case models.OutcomeRealNameStop:
		return ActionStartupCancelled, true
	case models.OutcomeInvalidClientOrNetworkError:
		return ActionStartupFailed, true
	default:
		return "", false
	}
}
