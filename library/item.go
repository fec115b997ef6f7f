package library

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a catalog entry. It owns its checkout lifecycle and its FIFO
// reservation queue; Kind selects the loan period and fee policy.
type Item struct {
	ID      string
	Title   string
	Kind    ItemKind
	Details ItemDetails

	history      []CheckoutRecord
	reservations []*Reservation
	currentLoan  *Loan
}

// NewItem creates an item of the given kind.
func NewItem(kind ItemKind, id, title string, details ItemDetails) (*Item, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownItemKind)
	}
	return &Item{ID: id, Title: title, Kind: kind, Details: details}, nil
}

func NewBook(id, title, author, isbn string) *Item {
	return &Item{ID: id, Title: title, Kind: KindBook, Details: ItemDetails{Author: author, ISBN: isbn}}
}

func NewDVD(id, title, director string, durationMinutes int) *Item {
	return &Item{ID: id, Title: title, Kind: KindDVD, Details: ItemDetails{Director: director, DurationMinutes: durationMinutes}}
}

func NewMagazine(id, title, issue, publishDate string) *Item {
	return &Item{ID: id, Title: title, Kind: KindMagazine, Details: ItemDetails{Issue: issue, PublishDate: publishDate}}
}

// Creator is the author, director or issue label, depending on kind.
func (i *Item) Creator() string {
	switch i.Kind {
	case KindDVD:
		return i.Details.Director
	case KindMagazine:
		return i.Details.Issue
	default:
		return i.Details.Author
	}
}

func (i *Item) policy() Policy {
	p, _ := i.Kind.Policy()
	return p
}

func (i *Item) BaseLoanPeriod() int {
	return i.policy().BaseLoanPeriod
}

func (i *Item) LateFeePerDay() decimal.Decimal {
	return i.policy().LateFeePerDay
}

func (i *Item) TotalCheckouts() int {
	return len(i.history)
}

// IsPopular is true once the item has been checked out more than ten times.
func (i *Item) IsPopular() bool {
	return i.TotalCheckouts() > popularityThreshold
}

// LoanPeriod is the base period, two days shorter for popular items, never
// below one day.
func (i *Item) LoanPeriod() int {
	period := i.BaseLoanPeriod()
	if i.IsPopular() {
		period -= popularLoanReduction
	}
	return max(period, minLoanPeriodDays)
}

func (i *Item) IsCheckedOut() bool {
	return i.currentLoan != nil
}

func (i *Item) CanBeCheckedOut() bool {
	return !i.IsCheckedOut()
}

// CurrentLoan returns the active loan, or nil when the item is on the shelf.
func (i *Item) CurrentLoan() *Loan {
	return i.currentLoan
}

// CanBeRenewed is false while anyone is waiting for the item.
func (i *Item) CanBeRenewed() bool {
	return len(i.reservations) == 0
}

// Reservations returns the queue, head first.
func (i *Item) Reservations() []*Reservation {
	out := make([]*Reservation, len(i.reservations))
	copy(out, i.reservations)
	return out
}

// NextReservation is the head of the queue, or nil.
func (i *Item) NextReservation() *Reservation {
	if len(i.reservations) == 0 {
		return nil
	}
	return i.reservations[0]
}

func (i *Item) CheckoutHistory() []CheckoutRecord {
	out := make([]CheckoutRecord, len(i.history))
	copy(out, i.history)
	return out
}

// RecordHistoricalCheckout appends a history entry without opening a loan.
// Seed data uses it to carry over popularity from before the model existed.
func (i *Item) RecordHistoricalCheckout(memberID string, at time.Time) {
	i.history = append(i.history, CheckoutRecord{MemberID: memberID, At: at})
}

// Checkout lends the item to m. The loan's due date is computed before this
// checkout is counted towards popularity.
func (i *Item) Checkout(m *Member, at time.Time) (*Loan, error) {
	if !i.CanBeCheckedOut() {
		return nil, fmt.Errorf("%s: %w", i.Title, ErrAlreadyCheckedOut)
	}
	loan := newLoan(i, m.ID, at)
	i.currentLoan = loan
	i.history = append(i.history, CheckoutRecord{MemberID: m.ID, At: at})
	return loan, nil
}

// Return closes the current loan and notifies the head of the reservation
// queue, if any. The item is not handed to that member; it goes back on the
// shelf.
func (i *Item) Return(at time.Time) (*Loan, error) {
	if !i.IsCheckedOut() {
		return nil, fmt.Errorf("%s: %w", i.Title, ErrNotCheckedOut)
	}
	loan := i.currentLoan
	if err := loan.ProcessReturn(at); err != nil {
		return nil, err
	}
	i.currentLoan = nil

	if len(i.reservations) > 0 {
		next := i.reservations[0]
		i.reservations = i.reservations[1:]
		next.Notify()
	}
	return loan, nil
}

// AddReservation queues m for the item. Only items that are out can be reserved.
func (i *Item) AddReservation(m *Member, at time.Time) (*Reservation, error) {
	if !i.IsCheckedOut() {
		return nil, fmt.Errorf("%s: %w", i.Title, ErrItemNotCheckedOut)
	}
	r := newReservation(i.ID, m.ID, at)
	i.reservations = append(i.reservations, r)
	return r, nil
}
