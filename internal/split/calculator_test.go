package split

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeEqualSplit(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		members []int
		want    map[int]string
	}{
		{
			name:    "divides evenly",
			total:   "90.00",
			members: []int{1, 2, 3},
			want:    map[int]string{1: "30.00", 2: "30.00", 3: "30.00"},
		},
		{
			name:    "remainder cent goes to first member",
			total:   "100.00",
			members: []int{1, 2, 3},
			want:    map[int]string{1: "33.34", 2: "33.33", 3: "33.33"},
		},
		{
			name:    "negative remainder also goes to first member",
			total:   "100.01",
			members: []int{4, 7, 9},
			want:    map[int]string{4: "33.33", 7: "33.34", 9: "33.34"},
		},
		{
			name:    "single member takes everything",
			total:   "42.50",
			members: []int{5},
			want:    map[int]string{5: "42.50"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(d(tt.total), ModeEqual, tt.members, nil)
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))

			sum := decimal.Zero
			for userID, want := range tt.want {
				assert.True(t, d(want).Equal(got[userID]),
					"user %d: want %s, got %s", userID, want, got[userID])
				sum = sum.Add(got[userID])
			}
			// shares must reconstruct the total exactly, not just within tolerance
			assert.True(t, sum.Equal(d(tt.total)), "shares sum to %s, want %s", sum, tt.total)
		})
	}
}

func TestComputeEqualSplitNoMembers(t *testing.T) {
	_, err := Compute(d("10.00"), ModeEqual, nil, nil)
	assert.Error(t, err)
}

func TestComputeCustomSplit(t *testing.T) {
	shares := map[int]decimal.Decimal{
		1: d("60.00"),
		2: d("40.00"),
	}
	got, err := Compute(d("100.00"), ModeCustom, nil, shares)
	require.NoError(t, err)
	assert.True(t, d("60.00").Equal(got[1]))
	assert.True(t, d("40.00").Equal(got[2]))
}

func TestComputeCustomSplitDropsNonPositive(t *testing.T) {
	shares := map[int]decimal.Decimal{
		1: d("100.00"),
		2: decimal.Zero,
		3: d("-5.00"),
	}
	got, err := Compute(d("100.00"), ModeCustom, nil, shares)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, d("100.00").Equal(got[1]))
}

func TestComputeCustomSplitMismatch(t *testing.T) {
	shares := map[int]decimal.Decimal{
		1: d("60.00"),
		2: d("30.00"),
	}
	_, err := Compute(d("100.00"), ModeCustom, nil, shares)

	var mismatch *SplitMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.True(t, d("100.00").Equal(mismatch.Expected))
	assert.True(t, d("90.00").Equal(mismatch.Provided))
	assert.Contains(t, mismatch.Error(), "90.00")
	assert.Contains(t, mismatch.Error(), "100.00")
}

func TestComputeCustomSplitWithinTolerance(t *testing.T) {
	shares := map[int]decimal.Decimal{
		1: d("33.33"),
		2: d("33.33"),
		3: d("33.33"),
	}
	// 99.99 vs 100.00 is within the one cent tolerance
	got, err := Compute(d("100.00"), ModeCustom, nil, shares)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestComputeUnknownMode(t *testing.T) {
	_, err := Compute(d("10.00"), Mode("weighted"), []int{1}, nil)

	var invalid *InvalidSplitError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "weighted", invalid.Mode)
}
