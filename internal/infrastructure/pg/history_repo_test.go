package pg_test

import (
	"context"
	"testing"
	"time"

	"github.com/d3code/home-assistant-coingecko/internal/domain"
	"github.com/d3code/home-assistant-coingecko/internal/infrastructure/pg"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func TestHistoryRepo_StoreAndLatest(t *testing.T) {
	db, teardown := withPostgres(t)
	defer teardown()

	repo := pg.NewHistoryRepo(db)
	ctx := context.Background()

	fetchedAt := time.Now().UTC().Truncate(time.Second)
	snap := &domain.Snapshot{
		Pairs: map[domain.Pair]domain.PriceRecord{
			"BTCAUD": {
				Price:     100000.0,
				AssetID:   "bitcoin",
				Currency:  "AUD",
				Change24h: fptr(2.35),
			},
			"ETHUSD": {
				Price:    4000.0,
				AssetID:  "ethereum",
				Currency: "USD",
			},
		},
		FetchedAt: fetchedAt,
	}

	require.NoError(t, repo.Store(ctx, snap))
	// Same snapshot again must be a no-op thanks to the unique constraint.
	require.NoError(t, repo.Store(ctx, snap))

	var count int
	err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM price_history WHERE pair='BTCAUD'`).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	rec, err := repo.Latest(ctx, "BTCAUD")
	require.NoError(t, err)
	require.InDelta(t, 100000.0, rec.Price, 1e-9)
	require.Equal(t, "bitcoin", rec.AssetID)
	require.Equal(t, "AUD", rec.Currency)
	require.NotNil(t, rec.Change24h)
	require.InDelta(t, 2.35, *rec.Change24h, 1e-9)
	require.Nil(t, rec.Volume24h)

	rec, err = repo.Latest(ctx, "ETHUSD")
	require.NoError(t, err)
	require.InDelta(t, 4000.0, rec.Price, 1e-9)
	require.Nil(t, rec.Change24h)
}

func TestHistoryRepo_LatestPicksNewestCycle(t *testing.T) {
	db, teardown := withPostgres(t)
	defer teardown()

	repo := pg.NewHistoryRepo(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, price := range []float64{1.0, 2.0, 3.0} {
		snap := &domain.Snapshot{
			Pairs: map[domain.Pair]domain.PriceRecord{
				"BTCAUD": {Price: price, AssetID: "bitcoin", Currency: "AUD"},
			},
			FetchedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Store(ctx, snap))
	}

	rec, err := repo.Latest(ctx, "BTCAUD")
	require.NoError(t, err)
	require.InDelta(t, 3.0, rec.Price, 1e-9)
}
