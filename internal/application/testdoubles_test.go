package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/d3code/home-assistant-coingecko/internal/domain"
)

type fakeSource struct {
	mu         sync.Mutex
	calls      int
	data       domain.SimplePrice
	err        error
	assetIDs   []string
	currencies []string
}

func (f *fakeSource) FetchPrices(_ context.Context, assetIDs, currencies []string) (domain.SimplePrice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.assetIDs = assetIDs
	f.currencies = currencies
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeSink struct {
	mu    sync.Mutex
	snaps []*domain.Snapshot
	err   error
}

func (f *fakeSink) Store(_ context.Context, snap *domain.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps = append(f.snaps, snap)
	return f.err
}

func (f *fakeSink) stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.snaps)
}

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

func fptr(v float64) *float64 { return &v }

func pairsOf(t *testing.T, csv string) []domain.TradingPair {
	t.Helper()
	spec, err := domain.CompactPairs(csv)
	if err != nil {
		t.Fatalf("parse pairs %q: %v", csv, err)
	}
	return spec.Pairs(domain.NewSymbolResolver(nil))
}
