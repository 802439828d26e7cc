package redisstore

import (
	"context"
	"time"

	"github.com/d3code/home-assistant-coingecko/internal/application"
	"github.com/d3code/home-assistant-coingecko/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "price:"

// SnapshotMirror writes the latest record per pair into Redis so external
// consumers can read current values without touching the upstream API.
// Each pair lives under one hash key, replaced wholesale per cycle.
type SnapshotMirror struct {
	Client *redis.Client
	TTL    time.Duration
}

var _ application.SnapshotSink = (*SnapshotMirror)(nil)

func NewMirror(client *redis.Client, ttl time.Duration) *SnapshotMirror {
	return &SnapshotMirror{Client: client, TTL: ttl}
}

func (m *SnapshotMirror) Store(ctx context.Context, snap *domain.Snapshot) error {
	pipe := m.Client.Pipeline()
	for pair, rec := range snap.Pairs {
		key := keyPrefix + string(pair)
		fields := map[string]any{
			"price":      rec.Price,
			"coin_id":    rec.AssetID,
			"currency":   rec.Currency,
			"fetched_at": snap.FetchedAt.UTC().Format(time.RFC3339),
		}
		if rec.Change24h != nil {
			fields["change_24h"] = *rec.Change24h
		}
		if rec.Volume24h != nil {
			fields["volume_24h"] = *rec.Volume24h
		}
		if rec.MarketCap != nil {
			fields["market_cap"] = *rec.MarketCap
		}
		// Del first so fields absent in this cycle do not linger.
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		if m.TTL > 0 {
			pipe.Expire(ctx, key, m.TTL)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}
