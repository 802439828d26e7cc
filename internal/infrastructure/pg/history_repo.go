package pg

import (
	"context"

	"github.com/d3code/home-assistant-coingecko/internal/application"
	"github.com/d3code/home-assistant-coingecko/internal/domain"
)

// HistoryRepo appends one row per pair per successful cycle. The unique
// (pair, fetched_at) constraint makes re-delivered snapshots a no-op.
type HistoryRepo struct{ db *DB }

var _ application.SnapshotSink = (*HistoryRepo)(nil)

func NewHistoryRepo(db *DB) *HistoryRepo { return &HistoryRepo{db: db} }

func (r *HistoryRepo) Store(ctx context.Context, snap *domain.Snapshot) error {
	const ins = `
        INSERT INTO price_history(pair, asset_id, currency, price, change_24h, volume_24h, market_cap, fetched_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (pair, fetched_at) DO NOTHING`
	for pair, rec := range snap.Pairs {
		_, err := r.db.Pool.Exec(ctx, ins,
			string(pair), rec.AssetID, rec.Currency, rec.Price,
			rec.Change24h, rec.Volume24h, rec.MarketCap, snap.FetchedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// Latest returns the most recent stored record for a pair.
func (r *HistoryRepo) Latest(ctx context.Context, pair domain.Pair) (domain.PriceRecord, error) {
	const q = `
        SELECT asset_id, currency, price, change_24h, volume_24h, market_cap
        FROM price_history WHERE pair=$1
        ORDER BY fetched_at DESC LIMIT 1`
	var out domain.PriceRecord
	err := r.db.Pool.QueryRow(ctx, q, string(pair)).Scan(
		&out.AssetID, &out.Currency, &out.Price,
		&out.Change24h, &out.Volume24h, &out.MarketCap)
	if err != nil {
		return domain.PriceRecord{}, err
	}
	return out, nil
}
