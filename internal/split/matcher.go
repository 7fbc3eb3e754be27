package split

import (
	"sort"

	"github.com/shopspring/decimal"

	"splitease/internal/money"
)

// Transfer is one pairwise settlement instruction: Debtor pays Creditor.
type Transfer struct {
	Debtor   int
	Creditor int
	Amount   decimal.Decimal
}

type party struct {
	userID int
	amount decimal.Decimal
}

// Match derives the minimal set of pairwise transfers that settles the given
// net positions.
//
// Members whose position is below tolerance are already settled and skipped.
// The rest are partitioned into creditors and debtors, both sorted ascending
// by user id. The sort is load-bearing: map iteration order varies between
// runs, and without a canonical order the same balances could produce a
// different settlement graph each time. A two-pointer greedy pass then settles
// min(creditor remaining, debtor remaining) per step, emitting a transfer
// whenever the settled amount is at least one cent.
//
// The result has at most len(creditors)+len(debtors)-1 transfers and the
// transfers into each creditor sum to that creditor's surplus.
func Match(net map[int]decimal.Decimal) []Transfer {
	var creditors, debtors []party
	for userID, position := range net {
		if money.IsZero(position) {
			continue
		}
		if position.IsPositive() {
			creditors = append(creditors, party{userID, position})
		} else {
			debtors = append(debtors, party{userID, position.Neg()})
		}
	}

	sort.Slice(creditors, func(i, j int) bool { return creditors[i].userID < creditors[j].userID })
	sort.Slice(debtors, func(i, j int) bool { return debtors[i].userID < debtors[j].userID })

	var transfers []Transfer
	ci, di := 0, 0
	for ci < len(creditors) && di < len(debtors) {
		amount := money.Min(creditors[ci].amount, debtors[di].amount)

		if amount.GreaterThanOrEqual(money.Tolerance) {
			transfers = append(transfers, Transfer{
				Debtor:   debtors[di].userID,
				Creditor: creditors[ci].userID,
				Amount:   amount,
			})
		}

		creditors[ci].amount = creditors[ci].amount.Sub(amount)
		debtors[di].amount = debtors[di].amount.Sub(amount)

		if creditors[ci].amount.LessThan(money.Tolerance) {
			ci++
		}
		if debtors[di].amount.LessThan(money.Tolerance) {
			di++
		}
	}
	return transfers
}
