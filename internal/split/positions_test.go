package split

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	payers := map[int]decimal.Decimal{
		1: d("100.00"),
	}
	splits := map[int]decimal.Decimal{
		1: d("33.34"),
		2: d("33.33"),
		3: d("33.33"),
	}

	net := Aggregate(payers, splits)
	require.Len(t, net, 3)
	assert.True(t, d("66.66").Equal(net[1]))
	assert.True(t, d("-33.33").Equal(net[2]))
	assert.True(t, d("-33.33").Equal(net[3]))
}

func TestAggregateMultiplePayers(t *testing.T) {
	payers := map[int]decimal.Decimal{
		1: d("60.00"),
		2: d("40.00"),
	}
	splits := map[int]decimal.Decimal{
		1: d("50.00"),
		2: d("50.00"),
	}

	net := Aggregate(payers, splits)
	assert.True(t, d("10.00").Equal(net[1]))
	assert.True(t, d("-10.00").Equal(net[2]))
}

func TestAggregatePayerWithoutSplit(t *testing.T) {
	// someone paid on behalf of the group but owes no share themselves
	payers := map[int]decimal.Decimal{
		9: d("30.00"),
	}
	splits := map[int]decimal.Decimal{
		1: d("15.00"),
		2: d("15.00"),
	}

	net := Aggregate(payers, splits)
	require.Len(t, net, 3)
	assert.True(t, d("30.00").Equal(net[9]))
}

func TestAggregateConservation(t *testing.T) {
	payers := map[int]decimal.Decimal{
		1: d("47.50"),
		3: d("52.50"),
	}
	splits := map[int]decimal.Decimal{
		1: d("25.00"),
		2: d("25.00"),
		3: d("25.00"),
		4: d("25.00"),
	}

	net := Aggregate(payers, splits)

	sum := decimal.Zero
	for _, position := range net {
		sum = sum.Add(position)
	}
	assert.True(t, sum.IsZero(), "net positions sum to %s, want 0", sum)
}
