package domain

import (
	"fmt"
	"strings"
)

// defaultSymbolTable covers the common short codes. Anything else must come
// from configuration overrides; symbol lowercasing alone is not a valid asset
// id for most coins.
var defaultSymbolTable = map[string]string{
	"btc":  "bitcoin",
	"eth":  "ethereum",
	"ada":  "cardano",
	"sol":  "solana",
	"doge": "dogecoin",
	"xrp":  "ripple",
	"ltc":  "litecoin",
	"dot":  "polkadot",
	"bnb":  "binancecoin",
	"avax": "avalanche-2",
}

// SymbolResolver maps asset symbols to upstream asset identifiers.
// Overrides win over the built-in table; unknown symbols fall back to the
// lowercased symbol itself.
type SymbolResolver struct {
	table map[string]string
}

func NewSymbolResolver(overrides map[string]string) *SymbolResolver {
	table := make(map[string]string, len(defaultSymbolTable)+len(overrides))
	for sym, id := range defaultSymbolTable {
		table[sym] = id
	}
	for sym, id := range overrides {
		table[strings.ToLower(sym)] = strings.ToLower(id)
	}
	return &SymbolResolver{table: table}
}

func (r *SymbolResolver) Resolve(symbol string) string {
	symbol = strings.ToLower(symbol)
	if r == nil {
		return symbol
	}
	if id, ok := r.table[symbol]; ok {
		return id
	}
	return symbol
}

// ParseSymbolMap parses override lists of the form "BTC=bitcoin,ETH=ethereum".
func ParseSymbolMap(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		sym, id, ok := strings.Cut(entry, "=")
		sym, id = strings.TrimSpace(sym), strings.TrimSpace(id)
		if !ok || sym == "" || id == "" {
			return nil, fmt.Errorf("invalid symbol mapping: %q", entry)
		}
		out[strings.ToLower(sym)] = strings.ToLower(id)
	}
	return out, nil
}
