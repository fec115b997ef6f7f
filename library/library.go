package library

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"library-circulation/clock"
)

// Library is the aggregate root: the catalog and the member directory, both
// keyed by id and iterated in insertion order.
type Library struct {
	Name string

	clock       clock.Clock
	items       map[string]*Item
	itemOrder   []string
	members     map[string]*Member
	memberOrder []string
}

type Option func(*Library)

// WithClock sets the time source used when an operation is given a zero time.
func WithClock(c clock.Clock) Option {
	return func(l *Library) {
		if c != nil {
			l.clock = c
		}
	}
}

// New creates an empty library.
func New(name string, opts ...Option) *Library {
	l := &Library{
		Name:    name,
		clock:   clock.NewSystem(),
		items:   make(map[string]*Item),
		members: make(map[string]*Member),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now is the current time according to the library's clock.
func (l *Library) Now() time.Time {
	return l.clock.Now()
}

func (l *Library) orNow(at time.Time) time.Time {
	if at.IsZero() {
		return l.clock.Now()
	}
	return at
}

// AddItem inserts item, replacing any item with the same id in place.
func (l *Library) AddItem(item *Item) {
	if _, ok := l.items[item.ID]; !ok {
		l.itemOrder = append(l.itemOrder, item.ID)
	}
	l.items[item.ID] = item
}

// AddMember inserts m, replacing any member with the same id in place.
func (l *Library) AddMember(m *Member) {
	if _, ok := l.members[m.ID]; !ok {
		l.memberOrder = append(l.memberOrder, m.ID)
	}
	l.members[m.ID] = m
}

func (l *Library) GetItem(id string) (*Item, bool) {
	item, ok := l.items[id]
	return item, ok
}

func (l *Library) GetMember(id string) (*Member, bool) {
	m, ok := l.members[id]
	return m, ok
}

// Items returns the catalog in insertion order.
func (l *Library) Items() []*Item {
	out := make([]*Item, 0, len(l.itemOrder))
	for _, id := range l.itemOrder {
		out = append(out, l.items[id])
	}
	return out
}

// Members returns the member directory in insertion order.
func (l *Library) Members() []*Member {
	out := make([]*Member, 0, len(l.memberOrder))
	for _, id := range l.memberOrder {
		out = append(out, l.members[id])
	}
	return out
}

func (l *Library) resolve(memberID, itemID string) (*Member, *Item, error) {
	m, ok := l.members[memberID]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", memberID, ErrMemberNotFound)
	}
	item, ok := l.items[itemID]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", itemID, ErrItemNotFound)
	}
	return m, item, nil
}

// CheckoutItem lends itemID to memberID. A zero at means now.
func (l *Library) CheckoutItem(memberID, itemID string, at time.Time) (*Loan, error) {
	m, item, err := l.resolve(memberID, itemID)
	if err != nil {
		return nil, err
	}
	return m.CheckoutItem(item, l.orNow(at))
}

// ReturnItem takes itemID back from memberID. A zero at means now.
func (l *Library) ReturnItem(memberID, itemID string, at time.Time) (*Loan, error) {
	m, item, err := l.resolve(memberID, itemID)
	if err != nil {
		return nil, err
	}
	return m.ReturnItem(item, l.orNow(at))
}

func (l *Library) RenewItem(memberID, itemID string) (*Loan, error) {
	m, item, err := l.resolve(memberID, itemID)
	if err != nil {
		return nil, err
	}
	return m.RenewItem(item)
}

// ReserveItem queues memberID for itemID. A zero at means now.
func (l *Library) ReserveItem(memberID, itemID string, at time.Time) (*Reservation, error) {
	m, item, err := l.resolve(memberID, itemID)
	if err != nil {
		return nil, err
	}
	return m.ReserveItem(item, l.orNow(at))
}

func (l *Library) PayFees(memberID string, amount decimal.Decimal) (decimal.Decimal, error) {
	m, ok := l.members[memberID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%s: %w", memberID, ErrMemberNotFound)
	}
	return m.PayFees(amount)
}

// OverdueItems lists every overdue loan, member by member in directory order.
// A zero now means the clock's now.
func (l *Library) OverdueItems(now time.Time) []OverdueLoan {
	now = l.orNow(now)
	var out []OverdueLoan
	for _, m := range l.Members() {
		for _, loan := range m.OverdueLoans(now) {
			out = append(out, OverdueLoan{Member: m, Loan: loan})
		}
	}
	return out
}

// AvailableItems lists the items on the shelf in catalog order.
func (l *Library) AvailableItems() []*Item {
	var out []*Item
	for _, item := range l.Items() {
		if !item.IsCheckedOut() {
			out = append(out, item)
		}
	}
	return out
}

// PopularItems lists popular items, most checked out first; ties keep catalog order.
func (l *Library) PopularItems() []*Item {
	var out []*Item
	for _, item := range l.Items() {
		if item.IsPopular() {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].TotalCheckouts() > out[b].TotalCheckouts()
	})
	return out
}

func (l *Library) Stats(now time.Time) Stats {
	return Stats{
		TotalItems:   len(l.items),
		Available:    len(l.AvailableItems()),
		Overdue:      len(l.OverdueItems(now)),
		TotalMembers: len(l.members),
	}
}
