package marketdata

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_FetchPriceStaysNearBase(t *testing.T) {
	ctx := context.Background()
	base := decimal.RequireFromString("4.25")
	sim := NewSimulator(map[string]decimal.Decimal{"corn": base})

	for i := 0; i < 10; i++ {
		price, err := sim.FetchPrice(ctx, "corn")
		require.NoError(t, err)

		low := base.Mul(decimal.RequireFromString("0.95"))
		high := base.Mul(decimal.RequireFromString("1.05"))
		assert.True(t, price.GreaterThanOrEqual(low.Round(4)), "price %s below %s", price, low)
		assert.True(t, price.LessThanOrEqual(high.Round(4)), "price %s above %s", price, high)
	}
}

func TestSimulator_UnknownCrop(t *testing.T) {
	sim := NewSimulator(map[string]decimal.Decimal{})

	_, err := sim.FetchPrice(context.Background(), "kale")
	assert.Error(t, err)
}

func TestSimulator_HonorsContextCancellation(t *testing.T) {
	sim := NewSimulator(map[string]decimal.Decimal{"corn": decimal.NewFromInt(4)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.FetchPrice(ctx, "corn")
	assert.ErrorIs(t, err, context.Canceled)
}
