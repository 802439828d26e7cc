package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Pair is the compact key a trading pair is displayed under, e.g. "BTCAUD".
type Pair string

var ErrInvalidPair = errors.New("invalid trading pair")

// TradingPair identifies a base asset priced in a quote currency.
// AssetID is the upstream asset identifier used in API queries ("bitcoin");
// Symbol is the short code the pair was configured with ("btc").
type TradingPair struct {
	AssetID  string
	Symbol   string
	Currency string
}

func (t TradingPair) Key() Pair {
	return Pair(strings.ToUpper(t.Symbol + t.Currency))
}

var compactPairRe = regexp.MustCompile(`^[A-Za-z]{6,}$`)

// ParseCompactPair splits a compact pair string like "BTCAUD": the first
// three characters are the asset symbol, the remainder the quote currency.
// The asset id defaults to the lowercased symbol until a resolver is applied.
func ParseCompactPair(s string) (TradingPair, error) {
	s = strings.TrimSpace(s)
	if !compactPairRe.MatchString(s) {
		return TradingPair{}, fmt.Errorf("%w: %q", ErrInvalidPair, s)
	}
	sym := strings.ToLower(s[:3])
	cur := strings.ToLower(s[3:])
	return TradingPair{AssetID: sym, Symbol: sym, Currency: cur}, nil
}

// ParseCompactPairs parses a comma-separated list of compact pair strings.
func ParseCompactPairs(csv string) ([]TradingPair, error) {
	var pairs []TradingPair
	for _, entry := range strings.Split(csv, ",") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		p, err := ParseCompactPair(entry)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: empty pair list", ErrInvalidPair)
	}
	return pairs, nil
}

type pairSpecKind int

const (
	pairSpecSingle pairSpecKind = iota + 1
	pairSpecCompact
)

// PairSpec is the tagged configuration value covering both supported shapes:
// an explicit coin-id/currency pair, or a list of compact pair strings.
// Downstream code only ever sees the canonical set produced by Pairs.
type PairSpec struct {
	kind     pairSpecKind
	coinID   string
	currency string
	compact  []TradingPair
}

func SinglePair(coinID, currency string) (PairSpec, error) {
	coinID = strings.ToLower(strings.TrimSpace(coinID))
	currency = strings.ToLower(strings.TrimSpace(currency))
	if coinID == "" || currency == "" {
		return PairSpec{}, fmt.Errorf("%w: coin id and currency must be non-empty", ErrInvalidPair)
	}
	return PairSpec{kind: pairSpecSingle, coinID: coinID, currency: currency}, nil
}

func CompactPairs(csv string) (PairSpec, error) {
	pairs, err := ParseCompactPairs(csv)
	if err != nil {
		return PairSpec{}, err
	}
	return PairSpec{kind: pairSpecCompact, compact: pairs}, nil
}

// Pairs normalizes the spec into the canonical de-duplicated pair set,
// resolving compact symbols to asset ids through the given resolver.
// A single pair is simply a set of size one.
func (s PairSpec) Pairs(r *SymbolResolver) []TradingPair {
	var pairs []TradingPair
	switch s.kind {
	case pairSpecSingle:
		pairs = []TradingPair{{AssetID: s.coinID, Symbol: s.coinID, Currency: s.currency}}
	case pairSpecCompact:
		for _, p := range s.compact {
			p.AssetID = r.Resolve(p.Symbol)
			pairs = append(pairs, p)
		}
	}
	seen := make(map[Pair]bool, len(pairs))
	out := make([]TradingPair, 0, len(pairs))
	for _, p := range pairs {
		if seen[p.Key()] {
			continue
		}
		seen[p.Key()] = true
		out = append(out, p)
	}
	return out
}
