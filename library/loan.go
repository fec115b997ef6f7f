package library

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxRenewals = 1

// Loan is a single checkout of an item by a member. Item and member are
// referenced by id; the fee rate and loan period are snapshotted at checkout.
type Loan struct {
	ID            string
	ItemID        string
	MemberID      string
	CheckoutDate  time.Time
	DueDate       time.Time
	ReturnDate    time.Time // zero until returned
	LateFee       decimal.Decimal
	RenewalCount  int
	LateFeePerDay decimal.Decimal
}

func newLoan(item *Item, memberID string, checkoutDate time.Time) *Loan {
	return &Loan{
		ID:            uuid.NewString(),
		ItemID:        item.ID,
		MemberID:      memberID,
		CheckoutDate:  checkoutDate,
		DueDate:       checkoutDate.AddDate(0, 0, item.LoanPeriod()),
		LateFee:       decimal.Zero,
		LateFeePerDay: item.LateFeePerDay(),
	}
}

// Returned reports whether the loan has been closed by a return.
func (l *Loan) Returned() bool {
	return !l.ReturnDate.IsZero()
}

// IsOverdue reports whether the loan is still open and now is past the due date.
func (l *Loan) IsOverdue(now time.Time) bool {
	return !l.Returned() && now.After(l.DueDate)
}

// DaysOverdue counts started days past the due date; partial days round up.
func (l *Loan) DaysOverdue(now time.Time) int {
	if !l.IsOverdue(now) {
		return 0
	}
	return l.daysLate(now)
}

func (l *Loan) daysLate(at time.Time) int {
	if !at.After(l.DueDate) {
		return 0
	}
	const day = 24 * time.Hour
	return int(math.Ceil(float64(at.Sub(l.DueDate)) / float64(day)))
}

// CalculateLateFee is the fee a return at returnDate would incur.
func (l *Loan) CalculateLateFee(returnDate time.Time) decimal.Decimal {
	return decimal.NewFromInt(int64(l.DaysOverdue(returnDate))).Mul(l.LateFeePerDay)
}

// ProcessReturn closes the loan, freezing the return date and late fee.
// A closed loan cannot be returned again.
func (l *Loan) ProcessReturn(returnDate time.Time) error {
	if l.Returned() {
		return fmt.Errorf("loan %s: %w", l.ID, ErrLoanAlreadyReturned)
	}
	l.LateFee = l.CalculateLateFee(returnDate)
	l.ReturnDate = returnDate
	return nil
}

// Renew pushes the due date out by loanPeriod days from the current due date.
// Only one renewal is allowed.
func (l *Loan) Renew(loanPeriod int) error {
	if l.RenewalCount >= maxRenewals {
		return ErrMaxRenewalsReached
	}
	l.RenewalCount++
	l.DueDate = l.DueDate.AddDate(0, 0, loanPeriod)
	return nil
}
