package domain

// BalanceStatus is the sign classification of a derived wallet balance.
type BalanceStatus string

const (
	BalanceStatusPositive BalanceStatus = "positive"
	BalanceStatusNegative BalanceStatus = "negative"
	BalanceStatusNeutral  BalanceStatus = "neutral"
)

// DirectionSums holds the aggregated entry amounts of one wallet grouped by direction.
type DirectionSums struct {
	Credit int64
	Debit  int64
}

// Balance is the projection of a wallet's entry log onto its cached state.
// It is only ever produced by DeriveBalance.
type Balance struct {
	Amount int64
	Status BalanceStatus
}

// DeriveBalance computes the balance and status from credit and debit sums.
func DeriveBalance(sums DirectionSums) Balance {
	amount := sums.Credit - sums.Debit

	return Balance{
		Amount: amount,
		Status: StatusOf(amount),
	}
}

// StatusOf classifies an amount by its sign.
func StatusOf(amount int64) BalanceStatus {
	switch {
	case amount > 0:
		return BalanceStatusPositive
	case amount < 0:
		return BalanceStatusNegative
	default:
		return BalanceStatusNeutral
	}
}
