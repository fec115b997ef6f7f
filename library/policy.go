package library

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ItemKind discriminates catalog entries. Loan period and fee rate are looked
// up from the policy table rather than carried by each item.
type ItemKind string

const (
	KindBook     ItemKind = "Book"
	KindDVD      ItemKind = "DVD"
	KindMagazine ItemKind = "Magazine"
)

const (
	popularityThreshold  = 10
	popularLoanReduction = 2
	minLoanPeriodDays    = 1
)

// Policy is the circulation policy attached to an item kind.
type Policy struct {
	BaseLoanPeriod int // days
	LateFeePerDay  decimal.Decimal
}

var policies = map[ItemKind]Policy{
	KindBook:     {BaseLoanPeriod: 14, LateFeePerDay: decimal.NewFromInt(10)},
	KindDVD:      {BaseLoanPeriod: 7, LateFeePerDay: decimal.NewFromInt(10)},
	KindMagazine: {BaseLoanPeriod: 3, LateFeePerDay: decimal.NewFromInt(10)},
}

// Policy returns the circulation policy of k.
func (k ItemKind) Policy() (Policy, bool) {
	p, ok := policies[k]
	return p, ok
}

func (k ItemKind) Valid() bool {
	_, ok := policies[k]
	return ok
}

// ParseItemKind accepts kind names case-insensitively ("book", "DVD", ...).
func ParseItemKind(s string) (ItemKind, error) {
	for k := range policies {
		if strings.EqualFold(string(k), strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownItemKind)
}

// FeeThreshold is the outstanding balance above which checkouts are refused.
var FeeThreshold = decimal.NewFromInt(10)

// FormatAmount renders a currency amount with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return "INR " + d.StringFixed(2)
}
