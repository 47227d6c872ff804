package models

import (
	"fmt"
	"time"

	"CoinCast/pkg/util"
)

// MarketChart is the CoinGecko market_chart payload. Each entry is a
// [timestamp_ms, value] pair.
type MarketChart struct {
	Prices       [][]float64 `json:"prices"`
	MarketCaps   [][]float64 `json:"market_caps,omitempty"`
	TotalVolumes [][]float64 `json:"total_volumes,omitempty"`
}

// PricePoint is one processed row.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}

// Points converts the price pairs to PricePoints in source order.
func (m *MarketChart) Points() ([]PricePoint, error) {
	out := make([]PricePoint, 0, len(m.Prices))
	for i, p := range m.Prices {
		if len(p) != 2 {
			return nil, fmt.Errorf("prices[%d]: want [timestamp, price], got %d values", i, len(p))
		}
		out = append(out, PricePoint{
			Timestamp: util.FromMillis(int64(p[0])),
			Price:     p[1],
		})
	}
	return out, nil
}
