package split

import (
	"fmt"

	"github.com/shopspring/decimal"

	"splitease/internal/money"
)

// Mode selects how an expense total is divided among group members.
type Mode string

const (
	ModeEqual  Mode = "equal"
	ModeCustom Mode = "custom"
)

// InvalidSplitError is returned when the requested split mode is not one of
// the supported modes.
type InvalidSplitError struct {
	Mode string
}

func (e *InvalidSplitError) Error() string {
	return fmt.Sprintf("unrecognized split mode %q", e.Mode)
}

// SplitMismatchError is returned when a set of amounts does not add up to the
// expense total within tolerance. Both totals are kept so callers can tell the
// user exactly what to fix.
type SplitMismatchError struct {
	Expected decimal.Decimal
	Provided decimal.Decimal
}

func (e *SplitMismatchError) Error() string {
	return fmt.Sprintf("amounts (%s) don't match total amount (%s)",
		e.Provided.StringFixed(2), e.Expected.StringFixed(2))
}

// Compute turns an expense total into the amount each member owes.
//
// Equal mode divides the total by the member count, rounded to the cent. The
// rounding remainder (which may be negative) is added entirely to the first
// member of the caller-supplied ordering so the shares always sum to the total
// exactly. The asymmetry is intentional: callers pass members in a stable
// order (ascending user id), so the same member absorbs the cent every time
// and repeated runs are reproducible.
//
// Custom mode takes the caller-supplied shares, drops entries that are zero or
// negative, and requires the rest to sum to the total within tolerance.
func Compute(total decimal.Decimal, mode Mode, members []int, customShares map[int]decimal.Decimal) (map[int]decimal.Decimal, error) {
	switch mode {
	case ModeEqual:
		return equalSplit(total, members)
	case ModeCustom:
		return customSplit(total, customShares)
	default:
		return nil, &InvalidSplitError{Mode: string(mode)}
	}
}

func equalSplit(total decimal.Decimal, members []int) (map[int]decimal.Decimal, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("no members to split expense with")
	}

	n := decimal.NewFromInt(int64(len(members)))
	share := total.Div(n).Round(2)
	remainder := total.Sub(share.Mul(n))

	splits := make(map[int]decimal.Decimal, len(members))
	for i, userID := range members {
		amount := share
		if i == 0 {
			amount = amount.Add(remainder)
		}
		splits[userID] = amount
	}
	return splits, nil
}

func customSplit(total decimal.Decimal, shares map[int]decimal.Decimal) (map[int]decimal.Decimal, error) {
	splits := make(map[int]decimal.Decimal, len(shares))
	sum := decimal.Zero
	for userID, share := range shares {
		if share.LessThanOrEqual(decimal.Zero) {
			continue
		}
		splits[userID] = share
		sum = sum.Add(share)
	}

	if !money.Equal(sum, total) {
		return nil, &SplitMismatchError{Expected: total, Provided: sum}
	}
	return splits, nil
}
