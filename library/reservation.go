package library

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is a queued hold on an item that is currently out.
type Reservation struct {
	ID         string
	ItemID     string
	MemberID   string
	ReservedAt time.Time
	notified   bool
}

func newReservation(itemID, memberID string, at time.Time) *Reservation {
	return &Reservation{
		ID:         uuid.NewString(),
		ItemID:     itemID,
		MemberID:   memberID,
		ReservedAt: at,
	}
}

// Notify marks the reservation as notified. Delivery is someone else's job.
func (r *Reservation) Notify() {
	r.notified = true
}

func (r *Reservation) Notified() bool {
	return r.notified
}
