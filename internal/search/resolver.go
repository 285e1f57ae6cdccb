package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// LiveClient performs a real search against the remote research backend.
// Implemented by backend.Client.
type LiveClient interface {
	Search(ctx context.Context, req Request) (*Result, error)
}

// Simulated research latency by priority. Matches the latency profile users
// expect from a real research pass.
const (
	urgentSimulatedDelay  = 2 * time.Second
	defaultSimulatedDelay = 3500 * time.Millisecond
)

// Resolver turns a request into a result, preferring the live backend and
// guaranteeing a simulated fallback. Resolve never fails under normal
// operation: any backend trouble degrades to simulation so the session is
// never stuck in processing.
type Resolver struct {
	live        LiveClient
	liveEnabled bool
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *slog.Logger
}

// NewResolver creates a Resolver. live may be nil when live search is
// disabled; liveEnabled decides whether tryLive is attempted at all.
func NewResolver(live LiveClient, liveEnabled bool) *Resolver {
	return &Resolver{
		live:        live,
		liveEnabled: liveEnabled,
		sleep:       sleepCtx,
		logger:      slog.Default(),
	}
}

// Resolve runs the two-step resolution: tryLive, then simulate.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	if res := r.tryLive(ctx, req); res != nil {
		return res, nil
	}
	return r.Simulate(ctx, req)
}

// tryLive returns a backend result, or nil when live search is disabled or
// the call fails for any reason. Failures are logged, never propagated.
func (r *Resolver) tryLive(ctx context.Context, req Request) *Result {
	if !r.liveEnabled || r.live == nil {
		return nil
	}
	res, err := r.live.Search(ctx, req)
	if err != nil {
		r.logger.Warn("live search failed, falling back to simulation",
			"request_id", req.ID, "error", err)
		return nil
	}
	return res
}

// Simulate produces a canned result for the request category after an
// artificial delay scaled by priority. Step IDs are resuffixed so repeated
// simulations of the same template never collide across history records.
// The only failure mode is context cancellation during the delay.
func (r *Resolver) Simulate(ctx context.Context, req Request) (*Result, error) {
	delay := defaultSimulatedDelay
	if req.Priority == PriorityUrgent {
		delay = urgentSimulatedDelay
	}
	if err := r.sleep(ctx, delay); err != nil {
		return nil, err
	}

	res := templateFor(req.Category)
	for i := range res.Steps {
		res.Steps[i].ID = res.Steps[i].ID + "-" + shortSuffix()
	}
	return &res, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// shortSuffix returns 4 hex characters of entropy, enough to keep step IDs
// unique within the 50-record history cap.
func shortSuffix() string {
	return uuid.NewString()[:4]
}
