package domain

import "time"

// SimplePrice is the raw upstream response shape: asset id -> field -> value.
// Auxiliary fields live next to the plain currency key as
// "{currency}_24h_change", "{currency}_24h_vol" and "{currency}_market_cap".
// Pointer values keep "absent" and "explicit zero" distinguishable.
type SimplePrice map[string]map[string]*float64

// PriceRecord is one fetched observation for a trading pair. The optional
// fields stay nil when the upstream response omits them.
type PriceRecord struct {
	Price     float64
	AssetID   string
	Currency  string
	Change24h *float64
	Volume24h *float64
	MarketCap *float64
}

// Snapshot is the immutable result of one successful fetch cycle. It is
// replaced wholesale on success and never mutated in place.
type Snapshot struct {
	Pairs     map[Pair]PriceRecord
	FetchedAt time.Time
}
