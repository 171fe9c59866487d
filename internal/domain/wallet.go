package domain

import (
	"strings"
	"time"
)

// WalletCategory separates company-owned wallets from client wallets.
type WalletCategory string

const (
	WalletCategoryInternal WalletCategory = "internal"
	WalletCategoryClient   WalletCategory = "client"
	WalletCategoryNone     WalletCategory = "none"
)

// WalletCategoryFilter selects wallets by category in reports and listings.
type WalletCategoryFilter string

const (
	WalletFilterAll      WalletCategoryFilter = "all"
	WalletFilterInternal WalletCategoryFilter = "internal"
	WalletFilterClient   WalletCategoryFilter = "client"
	WalletFilterNone     WalletCategoryFilter = "none"
)

// ParseWalletCategoryFilter parses a filter value; empty means all.
func ParseWalletCategoryFilter(s string) (WalletCategoryFilter, error) {
	switch f := WalletCategoryFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return WalletFilterAll, nil
	case WalletFilterAll, WalletFilterInternal, WalletFilterClient, WalletFilterNone:
		return f, nil
	default:
		return "", ErrInvalidCategory
	}
}

// Matches reports whether a wallet of category c passes the filter.
func (f WalletCategoryFilter) Matches(c WalletCategory) bool {
	switch f {
	case WalletFilterAll, "":
		return true
	case WalletFilterInternal:
		return c == WalletCategoryInternal
	case WalletFilterClient:
		return c == WalletCategoryClient
	case WalletFilterNone:
		return c != WalletCategoryInternal && c != WalletCategoryClient
	default:
		return false
	}
}

// Wallet holds a balance in one currency.
//
// Amount and BalanceStatus are a cached projection of the entry log.
// They are written only through WalletRepository.UpdateBalance with a
// value produced by DeriveBalance.
type Wallet struct {
	ID            string
	Name          string
	CurrencyID    string
	Currency      *Currency
	Category      WalletCategory
	Amount        int64
	BalanceStatus BalanceStatus
	Deleted       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Balance returns the cached balance.
func (w *Wallet) Balance() Balance {
	return Balance{Amount: w.Amount, Status: w.BalanceStatus}
}

// CurrencyCode returns the hydrated currency code or an empty string.
func (w *Wallet) CurrencyCode() string {
	if w.Currency == nil {
		return ""
	}
	return w.Currency.Code
}
