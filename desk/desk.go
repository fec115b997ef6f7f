package desk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"library-circulation/journal"
	"library-circulation/library"
	"library-circulation/pkg/log"
)

// DefaultActivityLimit is how many journal entries the activity panel shows.
const DefaultActivityLimit = 5

const dateLayout = "2006-01-02"

// Journal is the activity log the desk writes to.
type Journal interface {
	Append(ctx context.Context, e journal.Entry) (int64, error)
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
	ByMember(ctx context.Context, memberID string) ([]journal.Entry, error)
}

// Desk is a thin façade over the Library that records every circulation
// action in the journal, keeping console code simple.
type Desk struct {
	lib     *library.Library
	journal Journal
	l       log.Logger
}

func New(lib *library.Library, j Journal, l log.Logger) *Desk {
	return &Desk{lib: lib, journal: j, l: l}
}

// Library exposes the underlying aggregate for read-only listings.
func (d *Desk) Library() *library.Library { return d.lib }

// Receipt is what a circulation action hands back to the console.
type Receipt struct {
	Message     string
	Loan        *library.Loan
	Reservation *library.Reservation
	// Notified is the reservation moved off the queue by a return, if any.
	Notified *library.Reservation
	Balance  decimal.Decimal
}

// ------------------ Circulation ------------------

// Checkout lends itemID to memberID. A zero at means the library's now.
func (d *Desk) Checkout(ctx context.Context, memberID, itemID string, at time.Time) (Receipt, error) {
	ctx = log.WithFields(ctx, "member", memberID, "item", itemID)

	loan, err := d.lib.CheckoutItem(memberID, itemID, at)
	if err != nil {
		return Receipt{}, d.fail(ctx, "checkout", memberID, itemID, err)
	}

	msg := fmt.Sprintf("Checked out %q to %s. Due: %s",
		d.title(itemID), d.name(memberID), loan.DueDate.Format(dateLayout))
	d.record(ctx, "checkout", memberID, itemID, journal.OutcomeSuccess, msg)
	return Receipt{Message: msg, Loan: loan}, nil
}

// Return takes itemID back from memberID and reports the late fee and any
// reservation that was notified. A zero at means the library's now.
func (d *Desk) Return(ctx context.Context, memberID, itemID string, at time.Time) (Receipt, error) {
	ctx = log.WithFields(ctx, "member", memberID, "item", itemID)

	var next *library.Reservation
	if item, ok := d.lib.GetItem(itemID); ok {
		next = item.NextReservation()
	}

	loan, err := d.lib.ReturnItem(memberID, itemID, at)
	if err != nil {
		return Receipt{}, d.fail(ctx, "return", memberID, itemID, err)
	}

	msg := fmt.Sprintf("Returned %q.", d.title(itemID))
	if loan.LateFee.IsPositive() {
		msg += " Late fee: " + library.FormatAmount(loan.LateFee)
	}
	if next != nil {
		msg += fmt.Sprintf(" Reserved by %s, who has been notified.", d.name(next.MemberID))
	}

	m, _ := d.lib.GetMember(memberID)
	d.record(ctx, "return", memberID, itemID, journal.OutcomeSuccess, msg)
	return Receipt{Message: msg, Loan: loan, Notified: next, Balance: m.OutstandingFees()}, nil
}

// Renew extends memberID's loan on itemID once.
func (d *Desk) Renew(ctx context.Context, memberID, itemID string) (Receipt, error) {
	ctx = log.WithFields(ctx, "member", memberID, "item", itemID)

	loan, err := d.lib.RenewItem(memberID, itemID)
	if err != nil {
		return Receipt{}, d.fail(ctx, "renew", memberID, itemID, err)
	}

	msg := fmt.Sprintf("Renewed %q. New due date: %s", d.title(itemID), loan.DueDate.Format(dateLayout))
	d.record(ctx, "renew", memberID, itemID, journal.OutcomeSuccess, msg)
	return Receipt{Message: msg, Loan: loan}, nil
}

// Reserve queues memberID for itemID, stamped with the library's now.
func (d *Desk) Reserve(ctx context.Context, memberID, itemID string) (Receipt, error) {
	ctx = log.WithFields(ctx, "member", memberID, "item", itemID)

	r, err := d.lib.ReserveItem(memberID, itemID, time.Time{})
	if err != nil {
		return Receipt{}, d.fail(ctx, "reserve", memberID, itemID, err)
	}

	item, _ := d.lib.GetItem(itemID)
	msg := fmt.Sprintf("Reserved %q for %s. Position in queue: %d",
		item.Title, d.name(memberID), len(item.Reservations()))
	d.record(ctx, "reserve", memberID, itemID, journal.OutcomeSuccess, msg)
	return Receipt{Message: msg, Reservation: r}, nil
}

// PayFees applies a payment of amount to memberID's balance.
func (d *Desk) PayFees(ctx context.Context, memberID string, amount decimal.Decimal) (Receipt, error) {
	ctx = log.WithFields(ctx, "member", memberID)

	left, err := d.lib.PayFees(memberID, amount)
	if err != nil {
		return Receipt{}, d.fail(ctx, "pay", memberID, "", err)
	}

	msg := fmt.Sprintf("%s paid %s. Remaining balance: %s",
		d.name(memberID), library.FormatAmount(amount), library.FormatAmount(left))
	d.record(ctx, "pay", memberID, "", journal.OutcomeSuccess, msg)
	return Receipt{Message: msg, Balance: left}, nil
}

// PayAllFees settles memberID's whole balance. A zero balance is reported,
// not treated as an error.
func (d *Desk) PayAllFees(ctx context.Context, memberID string) (Receipt, error) {
	m, ok := d.lib.GetMember(memberID)
	if !ok {
		err := fmt.Errorf("%s: %w", memberID, library.ErrMemberNotFound)
		return Receipt{}, d.fail(log.WithFields(ctx, "member", memberID), "pay", memberID, "", err)
	}

	balance := m.OutstandingFees()
	if !balance.IsPositive() {
		msg := fmt.Sprintf("%s has no outstanding fees.", m.Name)
		d.record(log.WithFields(ctx, "member", memberID), "pay", memberID, "", journal.OutcomeInfo, msg)
		return Receipt{Message: msg, Balance: balance}, nil
	}
	return d.PayFees(ctx, memberID, balance)
}

// ------------------ Views ------------------

func (d *Desk) Available() []*library.Item { return d.lib.AvailableItems() }
func (d *Desk) Popular() []*library.Item   { return d.lib.PopularItems() }

// Overdue lists overdue loans at at; a zero at means the library's now.
func (d *Desk) Overdue(at time.Time) []library.OverdueLoan { return d.lib.OverdueItems(at) }

// Stats summarises the library at at; a zero at means the library's now.
func (d *Desk) Stats(at time.Time) library.Stats {
	if at.IsZero() {
		at = d.lib.Now()
	}
	return d.lib.Stats(at)
}

// MemberSummary is the member panel: loans against the limit, fees and
// whether a checkout would be allowed right now.
type MemberSummary struct {
	Member      *library.Member
	Loans       int
	MaxLoans    int
	Overdue     int
	Fees        decimal.Decimal
	Eligibility library.Eligibility
}

func (d *Desk) MemberSummary(memberID string) (MemberSummary, error) {
	m, ok := d.lib.GetMember(memberID)
	if !ok {
		return MemberSummary{}, fmt.Errorf("%s: %w", memberID, library.ErrMemberNotFound)
	}
	return MemberSummary{
		Member:      m,
		Loans:       len(m.CurrentLoans()),
		MaxLoans:    m.MaxLoans(),
		Overdue:     len(m.OverdueLoans(d.lib.Now())),
		Fees:        m.OutstandingFees(),
		Eligibility: m.CanCheckout(),
	}, nil
}

// Activity returns the latest journal entries, newest first. A non-positive
// limit means DefaultActivityLimit.
func (d *Desk) Activity(ctx context.Context, limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	return d.journal.Recent(ctx, limit)
}

// MemberActivity returns memberID's journal entries, oldest first.
func (d *Desk) MemberActivity(ctx context.Context, memberID string) ([]journal.Entry, error) {
	return d.journal.ByMember(ctx, memberID)
}

// ------------------ Utilities ------------------

// fail records a refused action and returns err unchanged.
func (d *Desk) fail(ctx context.Context, action, memberID, itemID string, err error) error {
	if errors.Is(err, library.ErrMemberNotFound) || errors.Is(err, library.ErrItemNotFound) {
		d.l.Warnf(ctx, "%s: %v", action, err)
	} else {
		d.l.Infof(ctx, "%s refused: %v", action, err)
	}
	d.append(ctx, journal.Entry{
		At:       d.lib.Now(),
		Action:   action,
		MemberID: memberID,
		ItemID:   itemID,
		Outcome:  journal.OutcomeError,
		Message:  err.Error(),
	})
	return err
}

func (d *Desk) record(ctx context.Context, action, memberID, itemID string, outcome journal.Outcome, msg string) {
	d.l.Infof(ctx, "%s: %s", action, msg)
	d.append(ctx, journal.Entry{
		At:       d.lib.Now(),
		Action:   action,
		MemberID: memberID,
		ItemID:   itemID,
		Outcome:  outcome,
		Message:  msg,
	})
}

// append never fails the circulation action; the journal is best effort.
func (d *Desk) append(ctx context.Context, e journal.Entry) {
	if _, err := d.journal.Append(ctx, e); err != nil {
		d.l.Errorf(ctx, "journal append failed: %v", err)
	}
}

func (d *Desk) title(itemID string) string {
	if item, ok := d.lib.GetItem(itemID); ok {
		return item.Title
	}
	return itemID
}

func (d *Desk) name(memberID string) string {
	if m, ok := d.lib.GetMember(memberID); ok {
		return m.Name
	}
	return memberID
}
