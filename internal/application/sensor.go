package application

import (
	"math"
	"strings"
	"time"

	"github.com/d3code/home-assistant-coingecko/internal/domain"
)

const Attribution = "Data provided by CoinGecko"

// Sensor presents one trading pair's latest record as a scalar value plus
// metadata. It holds no state beyond its pair key and the coordinator
// reference; everything is re-derived from the shared snapshot on read.
type Sensor struct {
	coordinator *Coordinator
	pair        domain.Pair
}

func NewSensor(c *Coordinator, pair domain.Pair) *Sensor {
	return &Sensor{coordinator: c, pair: pair}
}

// NewSensors builds one façade per configured trading pair.
func NewSensors(c *Coordinator, pairs []domain.TradingPair) []*Sensor {
	sensors := make([]*Sensor, 0, len(pairs))
	for _, p := range pairs {
		sensors = append(sensors, NewSensor(c, p.Key()))
	}
	return sensors
}

func (s *Sensor) Pair() domain.Pair { return s.pair }

func (s *Sensor) Name() string { return "CoinGecko " + string(s.pair) }

func (s *Sensor) UniqueID() string {
	return "coingecko_" + strings.ToLower(string(s.pair))
}

func (s *Sensor) record() (domain.PriceRecord, bool) {
	rec, ok := s.coordinator.Snapshot().Pairs[s.pair]
	return rec, ok
}

// NativeValue returns the latest price, or nil when the pair is not present
// in the current snapshot. "No data yet" is not an error.
func (s *Sensor) NativeValue() *float64 {
	rec, ok := s.record()
	if !ok {
		return nil
	}
	return &rec.Price
}

// Unit returns the quote currency code, empty when no data is available.
func (s *Sensor) Unit() string {
	rec, ok := s.record()
	if !ok {
		return ""
	}
	return rec.Currency
}

// Attributes returns the auxiliary metadata for the pair. Optional fields
// absent upstream are omitted; an explicit upstream zero is still surfaced.
// The 24h change is rounded to two decimals, volume and market cap are not.
func (s *Sensor) Attributes() map[string]any {
	rec, ok := s.record()
	if !ok {
		return map[string]any{}
	}
	attrs := map[string]any{
		"coin_id":  rec.AssetID,
		"currency": rec.Currency,
	}
	if ts, ok := s.coordinator.LastSuccess(); ok {
		attrs["last_updated"] = ts.UTC().Format(time.RFC3339)
	}
	if rec.Change24h != nil {
		attrs["change_24h"] = math.Round(*rec.Change24h*100) / 100
	}
	if rec.Volume24h != nil {
		attrs["volume_24h"] = *rec.Volume24h
	}
	if rec.MarketCap != nil {
		attrs["market_cap"] = *rec.MarketCap
	}
	return attrs
}
