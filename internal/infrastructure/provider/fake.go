package provider

import (
	"context"

	"github.com/d3code/home-assistant-coingecko/internal/application"
	"github.com/d3code/home-assistant-coingecko/internal/domain"
)

// Ensure Fake implements application.PriceSource.
var _ application.PriceSource = (*Fake)(nil)

// Fake answers every requested asset/currency combination with a fixed price.
type Fake struct {
	price float64
}

func NewFake(price float64) *Fake { return &Fake{price: price} }

func (f *Fake) FetchPrices(_ context.Context, assetIDs, currencies []string) (domain.SimplePrice, error) {
	out := domain.SimplePrice{}
	for _, id := range assetIDs {
		fields := map[string]*float64{}
		for _, cur := range currencies {
			price := f.price
			fields[cur] = &price
		}
		out[id] = fields
	}
	return out, nil
}
