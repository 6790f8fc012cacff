package collector

import (
	"context"

	"github.com/newthinker/folio/internal/core"
	"go.uber.org/zap"
)

// Data kinds reported to a FailureRecorder.
const (
	KindDetail = "detail"
	KindPrice  = "price"
)

// FailureRecorder observes the outcome of every provider request.
type FailureRecorder interface {
	RecordFetch(kind string, ok bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordFetch(string, bool) {}

// Fallback turns a Collector into total functions: every failure resolves
// to a placeholder value and is reported to the recorder instead of the
// caller.
type Fallback struct {
	collector Collector
	recorder  FailureRecorder
	logger    *zap.Logger
}

// NewFallback wraps c. A nil recorder or logger is replaced by a no-op.
func NewFallback(c Collector, recorder FailureRecorder, logger *zap.Logger) *Fallback {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{
		collector: c,
		recorder:  recorder,
		logger:    logger,
	}
}

// Detail fetches reference data for ticker. On failure it returns the
// empty-ticker placeholder, which listing views exclude.
func (f *Fallback) Detail(ctx context.Context, ticker string) core.StockItem {
	item, err := f.collector.FetchDetail(ctx, ticker)
	if err != nil || item == nil {
		f.fail(KindDetail, ticker, err)
		return core.EmptyStockItem()
	}
	f.recorder.RecordFetch(KindDetail, true)
	return *item
}

// Price fetches the session on date for ticker. On failure it returns a
// zero-valued point that still carries the ticker as its symbol.
func (f *Fallback) Price(ctx context.Context, ticker, date string) core.PricePoint {
	p, err := f.collector.FetchPrice(ctx, ticker, date)
	if err != nil || p == nil {
		f.fail(KindPrice, ticker, err)
		return core.EmptyPricePoint(ticker)
	}
	f.recorder.RecordFetch(KindPrice, true)
	return *p
}

func (f *Fallback) fail(kind, ticker string, err error) {
	f.recorder.RecordFetch(kind, false)
	f.logger.Debug("substituting placeholder",
		zap.String("kind", kind),
		zap.String("ticker", ticker),
		zap.Error(err),
	)
}
