// Package fetcher runs a fetch cycle over the ticker universe: batched
// fan-out of detail and price requests, merged per kind.
package fetcher

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/folio/internal/collector"
	"github.com/newthinker/folio/internal/core"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is used when Config.BatchSize is not positive.
const DefaultBatchSize = 20

// Source resolves one ticker per call and never fails; collector.Fallback
// satisfies it.
type Source interface {
	Detail(ctx context.Context, ticker string) core.StockItem
	Price(ctx context.Context, ticker, date string) core.PricePoint
}

// Observer receives each merged list once per cycle. The two calls may
// arrive in either order and from different goroutines.
type Observer interface {
	OnDetails(items []core.StockItem)
	OnPrices(prices []core.PricePoint)
}

// DurationRecorder observes how long each kind took to merge.
type DurationRecorder interface {
	ObserveFetchCycle(kind string, d time.Duration)
}

// Config tunes the orchestrator
type Config struct {
	BatchSize int
	Now       func() time.Time
	Recorder  DurationRecorder
}

// Result is the outcome of one cycle
type Result struct {
	ID      string
	Date    string
	Details []core.StockItem
	Prices  []core.PricePoint
}

// Orchestrator fans out fetches for a ticker list.
type Orchestrator struct {
	source    Source
	batchSize int
	now       func() time.Time
	recorder  DurationRecorder
	logger    *zap.Logger
}

// New creates an orchestrator over source.
func New(source Source, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Orchestrator{
		source:    source,
		batchSize: cfg.BatchSize,
		now:       cfg.Now,
		recorder:  cfg.Recorder,
		logger:    logger,
	}
}

// Batches partitions tickers into contiguous slices of at most size
// elements. A non-positive size means DefaultBatchSize.
func Batches(tickers []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	batches := make([][]string, 0, (len(tickers)+size-1)/size)
	for start := 0; start < len(tickers); start += size {
		end := min(start+size, len(tickers))
		batches = append(batches, tickers[start:end])
	}
	return batches
}

// Run fetches details and prices for every ticker and blocks until both
// kinds are merged. Each merged list has exactly len(tickers) entries,
// placeholders included. observer may be nil.
func (o *Orchestrator) Run(ctx context.Context, tickers []string, observer Observer) Result {
	result := Result{
		ID:   uuid.New().String(),
		Date: collector.PreviousDay(o.now()),
	}
	batches := Batches(tickers, o.batchSize)
	log := o.logger.With(zap.String("cycle", result.ID))

	log.Debug("fetch cycle started",
		zap.Int("tickers", len(tickers)),
		zap.Int("batches", len(batches)),
		zap.String("date", result.Date),
	)

	// The group functions never return an error; errgroup is the join.
	var g errgroup.Group
	g.Go(func() error {
		start := time.Now()
		result.Details = fanOut(ctx, batches, func(ctx context.Context, ticker string) core.StockItem {
			return o.source.Detail(ctx, ticker)
		})
		o.observe(collector.KindDetail, time.Since(start))
		log.Debug("details merged", zap.Int("count", len(result.Details)))
		if observer != nil {
			observer.OnDetails(result.Details)
		}
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		result.Prices = fanOut(ctx, batches, func(ctx context.Context, ticker string) core.PricePoint {
			return o.source.Price(ctx, ticker, result.Date)
		})
		o.observe(collector.KindPrice, time.Since(start))
		log.Debug("prices merged", zap.Int("count", len(result.Prices)))
		if observer != nil {
			observer.OnPrices(result.Prices)
		}
		return nil
	})
	_ = g.Wait()

	log.Info("fetch cycle completed",
		zap.Int("details", len(core.Listed(result.Details))),
		zap.Int("tickers", len(tickers)),
	)
	return result
}

func (o *Orchestrator) observe(kind string, d time.Duration) {
	if o.recorder != nil {
		o.recorder.ObserveFetchCycle(kind, d)
	}
}

// fanOut runs fetch for every ticker, all batches concurrently and every
// ticker within a batch concurrently. Each call owns one result slot, so
// the only synchronization is the final join.
func fanOut[T any](ctx context.Context, batches [][]string, fetch func(context.Context, string) T) []T {
	perBatch := make([][]T, len(batches))

	var outer errgroup.Group
	for i, batch := range batches {
		outer.Go(func() error {
			slots := make([]T, len(batch))
			var inner errgroup.Group
			for j, ticker := range batch {
				inner.Go(func() error {
					slots[j] = fetch(ctx, ticker)
					return nil
				})
			}
			_ = inner.Wait()
			perBatch[i] = slots
			return nil
		})
	}
	_ = outer.Wait()

	var n int
	for _, b := range perBatch {
		n += len(b)
	}
	merged := make([]T, 0, n)
	for _, b := range perBatch {
		merged = append(merged, b...)
	}
	return merged
}
