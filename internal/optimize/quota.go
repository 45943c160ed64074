package optimize

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"podopt/internal/logging"
)

// CreditsReader reports the remaining Auphonic credits in hours.
type CreditsReader interface {
	Credits(ctx context.Context) (float64, error)
}

// Quota is the result of one credit check.
type Quota struct {
	Credits   float64   `json:"credits"`
	Threshold float64   `json:"threshold"`
	Low       bool      `json:"low"`
	CheckedAt time.Time `json:"checked_at"`
}

// QuotaChecker warns when the remaining processing credits drop below a
// threshold. Checks run on demand via Trigger and on an optional interval.
type QuotaChecker struct {
	client    CreditsReader
	threshold float64
	interval  time.Duration
	logger    *slog.Logger
	trigger   chan struct{}

	mu   sync.Mutex
	last *Quota
}

// NewQuotaChecker builds a checker. A zero interval disables periodic checks.
func NewQuotaChecker(client CreditsReader, threshold float64, interval time.Duration, logger *slog.Logger) *QuotaChecker {
	return &QuotaChecker{
		client:    client,
		threshold: threshold,
		interval:  interval,
		logger:    logging.NewComponentLogger(logger, "quota"),
		trigger:   make(chan struct{}, 1),
	}
}

// Check reads the remaining credits and logs a warning when they are low.
func (q *QuotaChecker) Check(ctx context.Context) (Quota, error) {
	credits, err := q.client.Credits(ctx)
	if err != nil {
		logging.WarnWithContext(q.logger, "credit check failed", "auphonic_credits_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "low-credit warnings are not emitted"),
			logging.String(logging.FieldErrorHint, "verify auphonic.token and network access"),
		)
		return Quota{}, err
	}
	quota := Quota{
		Credits:   credits,
		Threshold: q.threshold,
		Low:       credits < q.threshold,
		CheckedAt: time.Now().UTC(),
	}
	q.mu.Lock()
	q.last = &quota
	q.mu.Unlock()

	if quota.Low {
		logging.WarnWithContext(q.logger, "Auphonic credits are running low", "auphonic_credits_low",
			logging.Float64("credits", credits),
			logging.Float64("threshold", q.threshold),
			logging.String(logging.FieldImpact, "new optimizations fail once credits run out"),
			logging.String(logging.FieldErrorHint, "buy more credits in the Auphonic account"),
			logging.Alert("auphonic_credits"),
		)
		return quota, nil
	}
	q.logger.Debug("credit check", logging.Float64("credits", credits))
	return quota, nil
}

// Trigger schedules a check on the Run loop without blocking. Triggers
// arriving while one is pending collapse into it.
func (q *QuotaChecker) Trigger() {
	select {
	case q.trigger <- struct{}{}:
	default:
	}
}

// Run serves triggers and the periodic interval until ctx is cancelled.
func (q *QuotaChecker) Run(ctx context.Context) {
	var tick <-chan time.Time
	if q.interval > 0 {
		ticker := time.NewTicker(q.interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.trigger:
		case <-tick:
		}
		_, _ = q.Check(ctx)
	}
}

// Last returns the most recent successful check, if any.
func (q *QuotaChecker) Last() (Quota, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.last == nil {
		return Quota{}, false
	}
	return *q.last, true
}
