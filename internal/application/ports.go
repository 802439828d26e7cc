package application

import (
	"context"
	"time"

	"github.com/d3code/home-assistant-coingecko/internal/domain"
)

// PriceSource fetches one batched price lookup for all asset ids and quote
// currencies. Implementations own the network session and report failures
// using the cycle error taxonomy.
type PriceSource interface {
	FetchPrices(ctx context.Context, assetIDs, currencies []string) (domain.SimplePrice, error)
}

// SnapshotSink receives each successful snapshot. Sink errors are logged by
// the coordinator and never fail the cycle.
type SnapshotSink interface {
	Store(ctx context.Context, snap *domain.Snapshot) error
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }
