package library

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MembershipType sets how many loans a member may hold at once.
type MembershipType string

const (
	MembershipStandard MembershipType = "standard"
	MembershipPremium  MembershipType = "premium"
)

const (
	standardMaxLoans = 5
	premiumMaxLoans  = 8

	reasonLoanLimit    = "maximum loan limit reached"
	reasonFeeThreshold = "outstanding fees exceed threshold"
)

// ParseMembership maps "standard"/"premium" (any case) to a MembershipType.
// An empty string means standard.
func ParseMembership(s string) (MembershipType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(MembershipStandard):
		return MembershipStandard, nil
	case string(MembershipPremium):
		return MembershipPremium, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownMembership)
}

// Member is a borrower. It owns its current loans, loan history, fee balance
// and the reservations it has placed.
type Member struct {
	ID         string
	Name       string
	Membership MembershipType

	currentLoans []*Loan
	loanHistory  []*Loan
	fees         decimal.Decimal
	reservations []*Reservation
}

// NewMember creates a member; an empty membership means standard.
func NewMember(id, name string, membership MembershipType) *Member {
	if membership == "" {
		membership = MembershipStandard
	}
	return &Member{ID: id, Name: name, Membership: membership, fees: decimal.Zero}
}

func (m *Member) MaxLoans() int {
	if m.Membership == MembershipPremium {
		return premiumMaxLoans
	}
	return standardMaxLoans
}

// CurrentLoans returns the open loans in checkout order.
func (m *Member) CurrentLoans() []*Loan {
	out := make([]*Loan, len(m.currentLoans))
	copy(out, m.currentLoans)
	return out
}

func (m *Member) LoanHistory() []*Loan {
	out := make([]*Loan, len(m.loanHistory))
	copy(out, m.loanHistory)
	return out
}

func (m *Member) Reservations() []*Reservation {
	out := make([]*Reservation, len(m.reservations))
	copy(out, m.reservations)
	return out
}

func (m *Member) OutstandingFees() decimal.Decimal {
	return m.fees
}

// CanCheckout checks the loan limit first, then the fee threshold.
func (m *Member) CanCheckout() Eligibility {
	if len(m.currentLoans) >= m.MaxLoans() {
		return Eligibility{Allowed: false, Reason: reasonLoanLimit}
	}
	if m.fees.GreaterThan(FeeThreshold) {
		return Eligibility{Allowed: false, Reason: reasonFeeThreshold}
	}
	return Eligibility{Allowed: true}
}

// CheckoutItem borrows item if the member is eligible.
func (m *Member) CheckoutItem(item *Item, at time.Time) (*Loan, error) {
	if e := m.CanCheckout(); !e.Allowed {
		return nil, &CheckoutDeniedError{MemberID: m.ID, Reason: e.Reason}
	}
	loan, err := item.Checkout(m, at)
	if err != nil {
		return nil, err
	}
	m.currentLoans = append(m.currentLoans, loan)
	m.loanHistory = append(m.loanHistory, loan)
	return loan, nil
}

// ReturnItem gives item back and adds any late fee to the balance.
func (m *Member) ReturnItem(item *Item, at time.Time) (*Loan, error) {
	idx, _ := m.findLoan(item.ID)
	if idx < 0 {
		return nil, fmt.Errorf("%s: %w", item.Title, ErrLoanNotFound)
	}
	loan, err := item.Return(at)
	if err != nil {
		return nil, err
	}
	m.currentLoans = append(m.currentLoans[:idx], m.currentLoans[idx+1:]...)
	if loan.LateFee.IsPositive() {
		m.fees = m.fees.Add(loan.LateFee)
	}
	return loan, nil
}

// RenewItem extends the loan on item once, unless someone has reserved it.
func (m *Member) RenewItem(item *Item) (*Loan, error) {
	_, loan := m.findLoan(item.ID)
	if loan == nil {
		return nil, fmt.Errorf("%s: %w", item.Title, ErrLoanNotFound)
	}
	if !item.CanBeRenewed() {
		return nil, fmt.Errorf("%s: %w", item.Title, ErrHasReservations)
	}
	if loan.RenewalCount >= maxRenewals {
		return nil, fmt.Errorf("%s: %w", item.Title, ErrAlreadyRenewed)
	}
	if err := loan.Renew(item.LoanPeriod()); err != nil {
		return nil, err
	}
	return loan, nil
}

// ReserveItem queues the member on item and keeps the reservation on file.
func (m *Member) ReserveItem(item *Item, at time.Time) (*Reservation, error) {
	r, err := item.AddReservation(m, at)
	if err != nil {
		return nil, err
	}
	m.reservations = append(m.reservations, r)
	return r, nil
}

// PayFees reduces the balance by amount and returns what is left.
func (m *Member) PayFees(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return m.fees, fmt.Errorf("%s: %w", amount.String(), ErrInvalidAmount)
	}
	if amount.GreaterThan(m.fees) {
		return m.fees, fmt.Errorf("%s > %s: %w", amount.StringFixed(2), m.fees.StringFixed(2), ErrPaymentExceedsBalance)
	}
	m.fees = m.fees.Sub(amount)
	return m.fees, nil
}

// OverdueLoans filters the current loans that are overdue at now.
func (m *Member) OverdueLoans(now time.Time) []*Loan {
	var out []*Loan
	for _, l := range m.currentLoans {
		if l.IsOverdue(now) {
			out = append(out, l)
		}
	}
	return out
}

func (m *Member) findLoan(itemID string) (int, *Loan) {
	for i, l := range m.currentLoans {
		if l.ItemID == itemID {
			return i, l
		}
	}
	return -1, nil
}
