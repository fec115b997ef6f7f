package desk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-circulation/clock"
	"library-circulation/journal"
	"library-circulation/library"
	"library-circulation/pkg/log"
)

var jan1 = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func newDesk(t *testing.T) (*Desk, *clock.Manual, *journal.Journal) {
	t.Helper()
	clk := clock.NewManual(jan1)
	lib, err := library.NewFromSeed(library.DefaultSeed(), library.WithClock(clk))
	require.NoError(t, err)

	j, err := journal.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	return New(lib, j, log.NewNop()), clk, j
}

func TestCheckoutRecordsJournalEntry(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newDesk(t)

	r, err := d.Checkout(ctx, "MEM001", "B005", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, `Checked out "The God of Small Things" to Ahmed. Due: 2024-01-15`, r.Message)
	assert.Equal(t, jan1, r.Loan.CheckoutDate)

	entries, err := d.Activity(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "checkout", entries[0].Action)
	assert.Equal(t, journal.OutcomeSuccess, entries[0].Outcome)
	assert.Equal(t, "MEM001", entries[0].MemberID)
	assert.Equal(t, "B005", entries[0].ItemID)
	assert.Equal(t, r.Message, entries[0].Message)
}

func TestFailedActionIsJournaledAndReturned(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newDesk(t)

	_, err := d.Checkout(ctx, "MEM001", "B005", time.Time{})
	require.NoError(t, err)

	_, err = d.Checkout(ctx, "MEM002", "B005", time.Time{})
	assert.ErrorIs(t, err, library.ErrAlreadyCheckedOut)

	_, err = d.Checkout(ctx, "NOPE", "B005", time.Time{})
	assert.ErrorIs(t, err, library.ErrMemberNotFound)

	entries, err := d.Activity(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, journal.OutcomeError, entries[0].Outcome)
	assert.Contains(t, entries[0].Message, "member not found")
	assert.Equal(t, journal.OutcomeError, entries[1].Outcome)
	assert.Contains(t, entries[1].Message, "already checked out")
}

func TestLateReturnChargesFeeAndBlocksCheckout(t *testing.T) {
	ctx := context.Background()
	d, clk, _ := newDesk(t)

	_, err := d.Checkout(ctx, "MEM001", "B005", time.Time{})
	require.NoError(t, err)

	clk.AdvanceDays(19)
	overdue := d.Overdue(time.Time{})
	require.Len(t, overdue, 1)
	assert.Equal(t, "MEM001", overdue[0].Member.ID)
	assert.Equal(t, library.Stats{TotalItems: 5, Available: 4, Overdue: 1, TotalMembers: 3}, d.Stats(time.Time{}))

	r, err := d.Return(ctx, "MEM001", "B005", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, `Returned "The God of Small Things". Late fee: INR 50.00`, r.Message)
	assert.True(t, decimal.NewFromInt(50).Equal(r.Balance))
	assert.Nil(t, r.Notified)

	_, err = d.Checkout(ctx, "MEM001", "B006", time.Time{})
	var denied *library.CheckoutDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Contains(t, denied.Reason, "fees exceed threshold")

	summary, err := d.MemberSummary("MEM001")
	require.NoError(t, err)
	assert.False(t, summary.Eligibility.Allowed)
	assert.Equal(t, 0, summary.Loans)
	assert.Equal(t, 5, summary.MaxLoans)
}

func TestPayFees(t *testing.T) {
	ctx := context.Background()
	d, clk, _ := newDesk(t)

	_, err := d.Checkout(ctx, "MEM001", "B005", time.Time{})
	require.NoError(t, err)
	clk.AdvanceDays(19)
	_, err = d.Return(ctx, "MEM001", "B005", time.Time{})
	require.NoError(t, err)

	_, err = d.PayFees(ctx, "MEM001", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, library.ErrPaymentExceedsBalance)

	r, err := d.PayFees(ctx, "MEM001", decimal.NewFromInt(20))
	require.NoError(t, err)
	assert.Equal(t, "Ahmed paid INR 20.00. Remaining balance: INR 30.00", r.Message)

	r, err = d.PayAllFees(ctx, "MEM001")
	require.NoError(t, err)
	assert.True(t, r.Balance.IsZero())
	assert.Equal(t, "Ahmed paid INR 30.00. Remaining balance: INR 0.00", r.Message)

	r, err = d.PayAllFees(ctx, "MEM001")
	require.NoError(t, err)
	assert.Equal(t, "Ahmed has no outstanding fees.", r.Message)

	entries, err := d.Activity(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, journal.OutcomeInfo, entries[0].Outcome)

	_, err = d.PayAllFees(ctx, "NOPE")
	assert.ErrorIs(t, err, library.ErrMemberNotFound)
}

func TestReserveRenewAndNotify(t *testing.T) {
	ctx := context.Background()
	d, clk, _ := newDesk(t)

	_, err := d.Checkout(ctx, "MEM001", "D001", time.Time{})
	require.NoError(t, err)

	r, err := d.Renew(ctx, "MEM001", "D001")
	require.NoError(t, err)
	assert.Equal(t, `Renewed "Inception". New due date: 2024-01-15`, r.Message)

	_, err = d.Reserve(ctx, "MEM001", "B006")
	assert.ErrorIs(t, err, library.ErrItemNotCheckedOut)

	r, err = d.Reserve(ctx, "MEM002", "D001")
	require.NoError(t, err)
	assert.Equal(t, `Reserved "Inception" for Mohsin. Position in queue: 1`, r.Message)
	reservation := r.Reservation

	clk.AdvanceDays(2)
	r, err = d.Return(ctx, "MEM001", "D001", time.Time{})
	require.NoError(t, err)
	assert.Same(t, reservation, r.Notified)
	assert.True(t, reservation.Notified())
	assert.Equal(t, `Returned "Inception". Reserved by Mohsin, who has been notified.`, r.Message)

	item, _ := d.Library().GetItem("D001")
	assert.False(t, item.IsCheckedOut())
}

func TestPopularAndAvailable(t *testing.T) {
	d, _, _ := newDesk(t)

	popular := d.Popular()
	require.Len(t, popular, 1)
	assert.Equal(t, "B004", popular[0].ID)
	assert.Len(t, d.Available(), 5)
}

func TestMemberActivity(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newDesk(t)

	_, err := d.Checkout(ctx, "MEM001", "B005", time.Time{})
	require.NoError(t, err)
	_, err = d.Checkout(ctx, "MEM002", "B006", time.Time{})
	require.NoError(t, err)
	_, err = d.Return(ctx, "MEM001", "B005", time.Time{})
	require.NoError(t, err)

	entries, err := d.MemberActivity(ctx, "MEM001")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "checkout", entries[0].Action)
	assert.Equal(t, "return", entries[1].Action)

	_, err = d.MemberSummary("NOPE")
	assert.ErrorIs(t, err, library.ErrMemberNotFound)
}

type brokenJournal struct{ Journal }

func (brokenJournal) Append(context.Context, journal.Entry) (int64, error) {
	return 0, errors.New("disk full")
}

func TestJournalFailureDoesNotFailAction(t *testing.T) {
	lib, err := library.NewFromSeed(library.DefaultSeed(), library.WithClock(clock.NewFixed(jan1)))
	require.NoError(t, err)
	d := New(lib, brokenJournal{}, log.NewNop())

	r, err := d.Checkout(context.Background(), "MEM001", "B005", time.Time{})
	require.NoError(t, err)
	assert.NotNil(t, r.Loan)
}
