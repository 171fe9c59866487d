package domain

// OperationType classifies operations (deposit, withdrawal, conversion, adjustment...).
type OperationType struct {
	ID      string
	Name    string
	Deleted bool
}

// Currency is a wallet currency.
type Currency struct {
	ID      string
	Code    string
	Name    string
	Deleted bool
}
