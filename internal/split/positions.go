package split

import "github.com/shopspring/decimal"

// Aggregate folds what each member paid and what each member owes for a single
// expense into one signed net position per member: positive means the group
// owes them money, negative means they owe the group.
//
// Every split participant starts at -owed. A payer without a split row
// (unusual, but allowed) gets an entry created at zero before their payment is
// added. No rounding happens here; amounts pass through as given.
func Aggregate(payers, splits map[int]decimal.Decimal) map[int]decimal.Decimal {
	net := make(map[int]decimal.Decimal, len(splits))
	for userID, owed := range splits {
		net[userID] = owed.Neg()
	}
	for userID, paid := range payers {
		current, ok := net[userID]
		if !ok {
			current = decimal.Zero
		}
		net[userID] = current.Add(paid)
	}
	return net
}
