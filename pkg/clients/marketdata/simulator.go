package marketdata

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// simulatedLatency approximates a round trip to a real feed.
const simulatedLatency = 50 * time.Millisecond

// Simulator generates quotes locally by jittering a base price table within
// a few percent, standing in for a market feed during development.
type Simulator struct {
	mu   sync.Mutex
	base map[string]decimal.Decimal
	rng  *rand.Rand
}

// NewSimulator builds a simulator over the given base prices.
func NewSimulator(base map[string]decimal.Decimal) *Simulator {
	return &Simulator{
		base: base,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FetchPrice returns the base price moved by up to ±5%, after a short
// simulated latency. Unknown crops are an error, matching a feed that does
// not list them.
func (s *Simulator) FetchPrice(ctx context.Context, crop string) (decimal.Decimal, error) {
	select {
	case <-time.After(simulatedLatency):
	case <-ctx.Done():
		return decimal.Zero, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base, ok := s.base[crop]
	if !ok {
		return decimal.Zero, fmt.Errorf("no quote available for %s", crop)
	}

	// jitter in [-0.05, 0.05]
	jitter := decimal.NewFromFloat(s.rng.Float64()*0.1 - 0.05)
	price := base.Mul(decimal.NewFromInt(1).Add(jitter)).Round(4)
	if price.IsNegative() {
		price = decimal.Zero
	}
	return price, nil
}
