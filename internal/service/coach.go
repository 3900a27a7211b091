// Package service orchestrates the analysis engines: it fetches transaction
// history through the store port, runs the pure engines, and layers caching,
// metrics and tracing on top.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/domain"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/engine"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/infra/observability"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/coach")

// Coach runs the three analysis engines against an account's transaction
// history. Clock is injectable so responses are reproducible in tests.
type Coach struct {
	store   port.TransactionStore
	cache   port.Cache[any]
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewCoach creates the coach service with all dependencies injected.
func NewCoach(
	store port.TransactionStore,
	cache port.Cache[any],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Coach {
	return &Coach{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the service clock. Intended for tests.
func (c *Coach) WithClock(now func() time.Time) *Coach {
	c.now = now
	return c
}

// ListTransactions returns an account's transaction history, optionally
// restricted to one month.
func (c *Coach) ListTransactions(ctx context.Context, accountID, month string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Coach.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	if month == "" {
		return c.store.ListTransactions(ctx, accountID)
	}
	from, to, err := domain.MonthRange(month)
	if err != nil {
		return nil, err
	}
	return c.store.ListTransactionsInRange(ctx, accountID, from, to)
}

// DetectSubscriptions runs the recurring-charge detector over the account's
// full history.
func (c *Coach) DetectSubscriptions(ctx context.Context, accountID string, minConfidence float64) (*domain.SubscriptionsResponse, error) {
	ctx, span := tracer.Start(ctx, "Coach.DetectSubscriptions")
	defer span.End()
	span.SetAttributes(
		attribute.String("account.id", accountID),
		attribute.Float64("min_confidence", minConfidence),
	)

	start := time.Now()
	defer func() {
		c.metrics.RecordRequestDuration("subscriptions", time.Since(start))
	}()

	if minConfidence < 0 || minConfidence > 1 {
		return nil, &domain.ErrValidation{
			Field:   "minConfidence",
			Message: "must be between 0 and 1",
		}
	}

	cacheKey := fmt.Sprintf("subscriptions:%s:%.2f", accountID, minConfidence)
	if cached, ok := c.cache.Get(cacheKey); ok {
		if resp, ok := cached.(*domain.SubscriptionsResponse); ok {
			c.metrics.IncrCacheHit("analysis")
			return resp, nil
		}
	}
	c.metrics.IncrCacheMiss("analysis")

	txs, err := c.store.ListTransactions(ctx, accountID)
	if err != nil {
		c.metrics.IncrEngineError("subscriptions")
		return nil, err
	}

	c.metrics.IncrEngineRun("subscriptions")
	resp := engine.DetectSubscriptions(txs, minConfidence, c.now())

	c.logger.Info("subscriptions detected",
		zap.String("account_id", accountID),
		zap.Int("detected", resp.TotalDetected),
	)

	c.cache.Set(cacheKey, &resp)
	return &resp, nil
}

// GenerateInsights runs the insight rules over one month of history. The
// current and previous months are fetched concurrently.
func (c *Coach) GenerateInsights(ctx context.Context, accountID, month string, limit int, extras string, debug bool) (*domain.InsightsResponse, error) {
	ctx, span := tracer.Start(ctx, "Coach.GenerateInsights")
	defer span.End()
	span.SetAttributes(
		attribute.String("account.id", accountID),
		attribute.String("month", month),
	)

	start := time.Now()
	defer func() {
		c.metrics.RecordRequestDuration("insights", time.Since(start))
	}()

	monthStart, monthEnd, err := domain.MonthRange(month)
	if err != nil {
		return nil, err
	}
	if limit < 1 || limit > 20 {
		return nil, &domain.ErrValidation{
			Field:   "limit",
			Message: "must be between 1 and 20",
		}
	}
	if extras != "core" && extras != "all" {
		return nil, &domain.ErrValidation{
			Field:   "extras",
			Message: "must be core or all",
		}
	}

	prevStart, prevEnd, _ := domain.MonthRange(domain.PrevMonth(month))

	var current, prev []domain.Transaction
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = c.store.ListTransactionsInRange(gCtx, accountID, monthStart, monthEnd)
		return err
	})
	g.Go(func() error {
		var err error
		prev, err = c.store.ListTransactionsInRange(gCtx, accountID, prevStart, prevEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		c.metrics.IncrEngineError("insights")
		return nil, err
	}

	totalExpenses := domain.TotalExpenses(current)
	var discretionaryExpenses float64
	for _, t := range current {
		if t.Amount < 0 && domain.IsDiscretionary(t) {
			discretionaryExpenses += -t.Amount
		}
	}

	daysInMonth := domain.DaysInMonth(month)
	dayOfMonth := daysInMonth
	if now := c.now(); now.Format("2006-01") == month {
		dayOfMonth = now.Day()
	}

	engineCtx := engine.InsightsContext{
		CurrentTransactions:   current,
		PrevTransactions:      prev,
		TotalExpenses:         totalExpenses,
		DiscretionaryExpenses: discretionaryExpenses,
		DaysInMonth:           daysInMonth,
		DayOfMonth:            dayOfMonth,
	}

	c.metrics.IncrEngineRun("insights")
	insights, generated := engine.GenerateInsights(engineCtx, limit, extras)
	c.metrics.AddInsightsEmitted(len(insights))

	c.logger.Info("insights generated",
		zap.String("account_id", accountID),
		zap.String("month", month),
		zap.Int("generated", generated),
		zap.Int("returned", len(insights)),
	)

	resp := &domain.InsightsResponse{
		Month:    month,
		Insights: insights,
		Meta: domain.InsightsMeta{
			TxCount:               len(current),
			HasPrevMonth:          len(prev) > 0,
			TotalExpenses:         totalExpenses,
			DiscretionaryExpenses: discretionaryExpenses,
			Selection: domain.InsightSelection{
				Generated: generated,
				Returned:  len(insights),
			},
		},
	}
	if debug {
		resp.Meta.Debug = map[string]any{
			"daysInMonth": daysInMonth,
			"dayOfMonth":  dayOfMonth,
			"prevTxCount": len(prev),
		}
	}
	return resp, nil
}

// EvaluateGoal forecasts savings against a goal and builds a cut plan when
// the account is off track. Gray subscriptions from the detector feed the
// zero-effort alternatives list.
func (c *Coach) EvaluateGoal(ctx context.Context, accountID string, req domain.GoalsRequest) (*domain.GoalsResponse, error) {
	ctx, span := tracer.Start(ctx, "Coach.EvaluateGoal")
	defer span.End()

	evaluationID := uuid.NewString()
	span.SetAttributes(
		attribute.String("account.id", accountID),
		attribute.String("evaluation.id", evaluationID),
	)

	start := time.Now()
	defer func() {
		c.metrics.RecordRequestDuration("goals", time.Since(start))
	}()

	txs, err := c.store.ListTransactions(ctx, accountID)
	if err != nil {
		c.metrics.IncrEngineError("goals")
		return nil, err
	}

	var graySubs []domain.Subscription
	detected := engine.DetectSubscriptions(txs, 0, c.now())
	for _, sub := range detected.Items {
		if sub.IsGray {
			graySubs = append(graySubs, sub)
		}
	}

	c.metrics.IncrEngineRun("goals")
	resp, err := engine.EvaluateGoal(req, txs, graySubs, c.now())
	if err != nil {
		c.metrics.IncrEngineError("goals")
		return nil, err
	}

	resp.Meta.EvaluationID = evaluationID

	c.logger.Info("goal evaluated",
		zap.String("account_id", accountID),
		zap.String("evaluation_id", evaluationID),
		zap.Bool("on_track", resp.OnTrack),
		zap.Float64("shortfall", resp.Shortfall),
	)
	return &resp, nil
}
