package application

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/d3code/home-assistant-coingecko/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultInterval = 15 * time.Minute
	MinInterval     = time.Minute
	MaxInterval     = 24 * time.Hour

	fetchTimeout = 30 * time.Second
)

// Coordinator is the single shared poller: it owns the fetch timer, the
// network source and the authoritative snapshot, and fans each cycle result
// out to any number of subscribers. The snapshot is an immutable value
// replaced by a single pointer swap, so readers never observe a torn update.
type Coordinator struct {
	source   PriceSource
	pairs    []domain.TradingPair
	interval time.Duration
	timeout  time.Duration
	clock    Clock
	log      *zap.Logger
	sinks    []SnapshotSink

	cycleMu sync.Mutex

	subMu       sync.Mutex
	subscribers []func()

	snapshot    atomic.Pointer[domain.Snapshot]
	lastSuccess atomic.Pointer[time.Time]
}

type Option func(*Coordinator)

func WithInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.interval = d }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

func WithClock(clk Clock) Option {
	return func(c *Coordinator) { c.clock = clk }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

func WithSinks(sinks ...SnapshotSink) Option {
	return func(c *Coordinator) { c.sinks = append(c.sinks, sinks...) }
}

func NewCoordinator(pairs []domain.TradingPair, source PriceSource, opts ...Option) *Coordinator {
	c := &Coordinator{
		source:   source,
		pairs:    pairs,
		interval: DefaultInterval,
		timeout:  fetchTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = realClock{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.interval < MinInterval {
		c.interval = MinInterval
	}
	if c.interval > MaxInterval {
		c.interval = MaxInterval
	}
	c.snapshot.Store(&domain.Snapshot{Pairs: map[domain.Pair]domain.PriceRecord{}})
	return c
}

// Run performs one eager refresh, then cycles on the configured interval
// until the context is canceled. A failed first refresh does not abort:
// subscribers simply see the empty snapshot until a cycle succeeds.
func (c *Coordinator) Run(ctx context.Context) {
	_ = c.Refresh(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Refresh(ctx)
		}
	}
}

// Refresh runs one fetch cycle and notifies subscribers whether it succeeded
// or not. On failure the previous snapshot stays visible and the returned
// error carries the taxonomy kind.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.cycleMu.Lock()
	err := c.runCycle(ctx)
	c.cycleMu.Unlock()

	if err != nil {
		c.log.Warn("fetch cycle failed", zap.Error(err))
	}
	c.notify()
	return err
}

func (c *Coordinator) runCycle(ctx context.Context) error {
	assetIDs, currencies := queryLists(c.pairs)
	if len(assetIDs) == 0 || len(currencies) == 0 {
		return NewConfigurationError("no trading pairs configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := c.source.FetchPrices(ctx, assetIDs, currencies)
	if err != nil {
		return err
	}

	records := make(map[domain.Pair]domain.PriceRecord, len(c.pairs))
	for _, tp := range c.pairs {
		byCurrency, ok := data[tp.AssetID]
		if !ok {
			continue
		}
		price := byCurrency[tp.Currency]
		if price == nil {
			// Partial results are fine: a missing pair is dropped for
			// this cycle only, it does not fail the whole cycle.
			continue
		}
		records[tp.Key()] = domain.PriceRecord{
			Price:     *price,
			AssetID:   tp.AssetID,
			Currency:  strings.ToUpper(tp.Currency),
			Change24h: byCurrency[tp.Currency+"_24h_change"],
			Volume24h: byCurrency[tp.Currency+"_24h_vol"],
			MarketCap: byCurrency[tp.Currency+"_market_cap"],
		}
	}

	snap := &domain.Snapshot{Pairs: records, FetchedAt: c.clock.Now()}
	c.snapshot.Store(snap)
	ts := snap.FetchedAt
	c.lastSuccess.Store(&ts)

	for _, sink := range c.sinks {
		if err := sink.Store(ctx, snap); err != nil {
			c.log.Warn("snapshot sink failed", zap.Error(err))
		}
	}
	return nil
}

// Snapshot returns the current snapshot. It is never nil; before the first
// successful cycle it holds an empty pair map.
func (c *Coordinator) Snapshot() *domain.Snapshot {
	return c.snapshot.Load()
}

// LastSuccess reports the wall-clock time of the most recent successful
// cycle, if any cycle has ever succeeded.
func (c *Coordinator) LastSuccess() (time.Time, bool) {
	ts := c.lastSuccess.Load()
	if ts == nil {
		return time.Time{}, false
	}
	return *ts, true
}

// Subscribe registers a callback invoked after every cycle, success or
// failure. Callbacks must not block.
func (c *Coordinator) Subscribe(fn func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

func (c *Coordinator) notify() {
	c.subMu.Lock()
	subs := append([]func(){}, c.subscribers...)
	c.subMu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// Close releases the source's network session if it holds one. Safe to call
// more than once.
func (c *Coordinator) Close() {
	if closer, ok := c.source.(interface{ Close() }); ok {
		closer.Close()
	}
}

// queryLists derives the asset-id and quote-currency query parameters,
// de-duplicated and order-preserving.
func queryLists(pairs []domain.TradingPair) (assetIDs, currencies []string) {
	seenID := map[string]bool{}
	seenCur := map[string]bool{}
	for _, p := range pairs {
		if p.AssetID != "" && !seenID[p.AssetID] {
			seenID[p.AssetID] = true
			assetIDs = append(assetIDs, p.AssetID)
		}
		if p.Currency != "" && !seenCur[p.Currency] {
			seenCur[p.Currency] = true
			currencies = append(currencies, p.Currency)
		}
	}
	return assetIDs, currencies
}
