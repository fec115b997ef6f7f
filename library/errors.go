package library

import "errors"

var (
	ErrAlreadyCheckedOut     = errors.New("item is already checked out")
	ErrNotCheckedOut         = errors.New("item is not checked out")
	ErrItemNotCheckedOut     = errors.New("cannot reserve an available item")
	ErrMaxRenewalsReached    = errors.New("maximum renewals reached")
	ErrAlreadyRenewed        = errors.New("item has already been renewed once")
	ErrHasReservations       = errors.New("item has reservations and cannot be renewed")
	ErrLoanNotFound          = errors.New("item not found in current loans")
	ErrLoanAlreadyReturned   = errors.New("loan has already been returned")
	ErrMemberNotFound        = errors.New("member not found")
	ErrItemNotFound          = errors.New("item not found")
	ErrCheckoutDenied        = errors.New("checkout denied")
	ErrPaymentExceedsBalance = errors.New("payment exceeds outstanding fees")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrUnknownItemKind       = errors.New("unknown item kind")
	ErrUnknownMembership     = errors.New("unknown membership type")
	ErrInvalidSeed           = errors.New("invalid seed data")
)

// CheckoutDeniedError carries the eligibility reason a member was refused with.
// It matches ErrCheckoutDenied under errors.Is.
type CheckoutDeniedError struct {
	MemberID string
	Reason   string
}

func (e *CheckoutDeniedError) Error() string {
	return e.Reason
}

func (e *CheckoutDeniedError) Is(target error) bool {
	return target == ErrCheckoutDenied
}
