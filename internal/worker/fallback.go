package worker

import (
	"context"

	"playgate/internal/models"
	"playgate/internal/network"
	"playgate/internal/persistence"
	"playgate/pkg/requestcontext"
)

func isTokenExpired(err error) bool {
	return network.IsTokenExpired(err)
}

// userConfigWithFallback fetches the player's policy. The cached copy is
// read first and served instead when the server is unreachable or failing;
// an expired token or a client error always propagates.
func (w *Worker) userConfigWithFallback(ctx context.Context, userID string) (*models.UserPolicyConfig, error) {
	doc := persistence.Open[models.UserPolicyConfig](w.store, persistence.NamespaceUserPolicy, userID)
	cached, err := doc.Load(ctx)
	if err != nil {
		w.logger.WarnContext(ctx, "policy cache unreadable", "error", err)
		cached = nil
	}

	fresh, err := network.WithTimestampRetry(ctx, func(ctx context.Context, ts int64) (*models.UserPolicyConfig, error) {
		return w.api.FetchUserConfig(ctx, userID, ts)
	})
	if err == nil {
		if err := doc.Save(ctx, fresh); err != nil {
			w.logger.WarnContext(ctx, "policy not cached", "error", err)
		}
		w.renewSession()
		return fresh, nil
	}

	if network.IsFatal(err) || cached == nil {
		return nil, err
	}
	w.logger.WarnContext(ctx, "policy fetch failed, using cached policy", "error", err)
	w.metrics.IncrementOfflineFallback("policy")
	w.anchorClock(ctx)
	w.renewSession()
	return cached, nil
}

// playableWithFallback posts a heartbeat and falls back to an offline
// answer when the server cannot give one. Classified rejections propagate
// when they are fatal or when the active policy does not allow offline
// computation.
func (w *Worker) playableWithFallback(ctx context.Context, userID string) (models.PlayableResult, error) {
	playable, err := w.heartbeat(ctx, userID, w.Session())
	if err == nil {
		return *playable, nil
	}

	policy := w.Policy()
	if policy == nil {
		return models.PlayableResult{}, err
	}
	if ne, ok := network.AsError(err); ok && ne.Kind != network.KindTransport && ne.Kind != network.KindMalformed {
		if ne.Fatal() || policy.Policy.Active != models.PolicyActiveTimeRange {
			return models.PlayableResult{}, err
		}
	}

	w.logger.WarnContext(ctx, "heartbeat failed, computing playability offline", "error", err)
	w.metrics.IncrementOfflineFallback("playable")
	return w.offlinePlayable(ctx, policy), nil
}

// heartbeat coalesces concurrent heartbeats of the same session, such as a
// poll tick racing a foreground check. The shared call outlives the
// cancellation of whichever caller started it.
func (w *Worker) heartbeat(ctx context.Context, userID, session string) (*models.PlayableResult, error) {
	v, err, _ := w.heartbeats.Do(userID+"/"+session, func() (any, error) {
		return w.api.CheckPlayable(context.WithoutCancel(ctx), userID, session)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.PlayableResult), nil
}

func (w *Worker) offlinePlayable(ctx context.Context, policy *models.UserPolicyConfig) models.PlayableResult {
	if record := w.verifier.Current(); record != nil && record.CheckIsAdult() {
		return models.PlayableResult{RemainTime: models.UnrestrictedRemainTime}
	}
	w.anchorClock(ctx)
	w.mu.RLock()
	now := w.clock.now(requestcontext.Now(ctx))
	w.mu.RUnlock()
	return MinorPlayable(policy.LocalConfig, now)
}

func (w *Worker) anchorClock(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clock.anchor(requestcontext.Now(ctx))
}
