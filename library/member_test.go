package library

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberDefaults(t *testing.T) {
	standard := NewMember("M001", "Standard Member", "")
	premium := NewMember("M002", "Premium Member", MembershipPremium)

	assert.Equal(t, MembershipStandard, standard.Membership)
	assert.Equal(t, 5, standard.MaxLoans())
	assert.Equal(t, 8, premium.MaxLoans())
	assert.Empty(t, standard.CurrentLoans())
	assert.True(t, standard.OutstandingFees().IsZero())
	assert.Equal(t, Eligibility{Allowed: true}, standard.CanCheckout())
}

func TestParseMembership(t *testing.T) {
	got, err := ParseMembership("Premium")
	require.NoError(t, err)
	assert.Equal(t, MembershipPremium, got)

	_, err = ParseMembership("gold")
	assert.ErrorIs(t, err, ErrUnknownMembership)
}

func TestMemberEligibility(t *testing.T) {
	t.Run("loan limit reached", func(t *testing.T) {
		m := NewMember("M001", "A", MembershipStandard)
		for i := 0; i < 5; i++ {
			_, err := m.CheckoutItem(NewBook(fmt.Sprintf("B%d", i), "Book", "Author", ""), jan1)
			require.NoError(t, err)
		}

		e := m.CanCheckout()
		assert.False(t, e.Allowed)
		assert.Contains(t, e.Reason, "loan limit reached")

		_, err := m.CheckoutItem(NewBook("B9", "Book", "Author", ""), jan1)
		assert.ErrorIs(t, err, ErrCheckoutDenied)
		assert.ErrorContains(t, err, "loan limit reached")
	})

	t.Run("fees above threshold", func(t *testing.T) {
		m := NewMember("M001", "A", MembershipStandard)
		m.fees = decimal.NewFromInt(11)

		e := m.CanCheckout()
		assert.False(t, e.Allowed)
		assert.Contains(t, e.Reason, "fees exceed threshold")

		book := NewBook("B1", "Book", "Author", "")
		_, err := m.CheckoutItem(book, jan1)
		var denied *CheckoutDeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, "M001", denied.MemberID)
		assert.False(t, book.IsCheckedOut())
	})

	t.Run("fees exactly at threshold", func(t *testing.T) {
		m := NewMember("M001", "A", MembershipStandard)
		m.fees = decimal.NewFromInt(10)

		assert.True(t, m.CanCheckout().Allowed)
	})

	t.Run("loan limit takes precedence", func(t *testing.T) {
		m := NewMember("M001", "A", MembershipStandard)
		for i := 0; i < 5; i++ {
			_, err := m.CheckoutItem(NewBook(fmt.Sprintf("B%d", i), "Book", "Author", ""), jan1)
			require.NoError(t, err)
		}
		m.fees = decimal.NewFromInt(50)

		assert.Equal(t, reasonLoanLimit, m.CanCheckout().Reason)
	})
}

func TestMemberCheckoutAndLateReturn(t *testing.T) {
	m := NewMember("M001", "A", "")
	book := NewBook("B001", "Test Book", "Author", "1")

	loan, err := m.CheckoutItem(book, jan1)
	require.NoError(t, err)
	assert.Len(t, m.CurrentLoans(), 1)
	assert.Len(t, m.LoanHistory(), 1)
	assert.Equal(t, "M001", loan.MemberID)
	assert.True(t, book.IsCheckedOut())

	returned, err := m.ReturnItem(book, day(20))
	require.NoError(t, err)
	assert.Empty(t, m.CurrentLoans())
	assert.Len(t, m.LoanHistory(), 1)
	assert.True(t, decimal.NewFromInt(50).Equal(returned.LateFee))
	assert.True(t, decimal.NewFromInt(50).Equal(m.OutstandingFees()))
}

func TestMemberReturnItemNotOnLoan(t *testing.T) {
	m := NewMember("M001", "A", "")
	other := NewMember("M002", "B", "")
	book := NewBook("B001", "Test Book", "Author", "1")

	_, err := m.ReturnItem(book, jan1)
	assert.ErrorIs(t, err, ErrLoanNotFound)

	_, err = other.CheckoutItem(book, jan1)
	require.NoError(t, err)
	_, err = m.ReturnItem(book, jan1)
	assert.ErrorIs(t, err, ErrLoanNotFound)
	assert.True(t, book.IsCheckedOut())
}

func TestMemberRenewItem(t *testing.T) {
	t.Run("renews once from the current due date", func(t *testing.T) {
		m := NewMember("M001", "A", "")
		book := NewBook("B001", "Test Book", "Author", "1")
		loan, err := m.CheckoutItem(book, jan1)
		require.NoError(t, err)
		due := loan.DueDate

		renewed, err := m.RenewItem(book)
		require.NoError(t, err)
		assert.Equal(t, 1, renewed.RenewalCount)
		assert.Equal(t, due.AddDate(0, 0, 14), renewed.DueDate)

		_, err = m.RenewItem(book)
		assert.ErrorIs(t, err, ErrAlreadyRenewed)
	})

	t.Run("blocked by reservations", func(t *testing.T) {
		m := NewMember("M001", "A", "")
		waiting := NewMember("M002", "B", "")
		book := NewBook("B001", "Test Book", "Author", "1")
		loan, err := m.CheckoutItem(book, jan1)
		require.NoError(t, err)
		_, err = waiting.ReserveItem(book, jan1)
		require.NoError(t, err)

		_, err = m.RenewItem(book)
		assert.ErrorIs(t, err, ErrHasReservations)
		assert.Equal(t, 0, loan.RenewalCount)
	})

	t.Run("not on loan", func(t *testing.T) {
		m := NewMember("M001", "A", "")

		_, err := m.RenewItem(NewBook("B001", "Test Book", "Author", "1"))
		assert.ErrorIs(t, err, ErrLoanNotFound)
	})

	t.Run("uses popularity reached by the checkout itself", func(t *testing.T) {
		m := NewMember("M001", "A", "")
		book := withHistory(NewBook("B001", "Test Book", "Author", "1"), 10)
		loan, err := m.CheckoutItem(book, jan1)
		require.NoError(t, err)

		_, err = m.RenewItem(book)
		require.NoError(t, err)
		assert.Equal(t, jan1.AddDate(0, 0, 14+12), loan.DueDate)
	})
}

func TestMemberReserveItem(t *testing.T) {
	holder := NewMember("M001", "A", "")
	m := NewMember("M002", "B", "")
	book := NewBook("B001", "Test Book", "Author", "1")

	_, err := m.ReserveItem(book, jan1)
	require.ErrorIs(t, err, ErrItemNotCheckedOut)
	assert.Empty(t, m.Reservations())

	_, err = holder.CheckoutItem(book, jan1)
	require.NoError(t, err)
	r, err := m.ReserveItem(book, day(2))
	require.NoError(t, err)

	assert.Equal(t, []*Reservation{r}, m.Reservations())
	assert.Equal(t, "B001", r.ItemID)
	assert.False(t, r.Notified())
}

func TestMemberPayFees(t *testing.T) {
	m := NewMember("M001", "A", "")
	m.fees = decimal.NewFromInt(100)

	left, err := m.PayFees(decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(left))
	assert.True(t, decimal.NewFromInt(50).Equal(m.OutstandingFees()))

	_, err = m.PayFees(decimal.NewFromInt(100))
	assert.ErrorIs(t, err, ErrPaymentExceedsBalance)
	assert.True(t, decimal.NewFromInt(50).Equal(m.OutstandingFees()))

	_, err = m.PayFees(decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	left, err = m.PayFees(decimal.RequireFromString("50.00"))
	require.NoError(t, err)
	assert.True(t, left.IsZero())
}

func TestMemberOverdueLoans(t *testing.T) {
	m := NewMember("M001", "A", "")
	book := NewBook("B001", "Test Book", "Author", "1")
	magazine := NewMagazine("M001", "Mag", "Issue 1", "2024-01")
	_, err := m.CheckoutItem(book, jan1)
	require.NoError(t, err)
	magLoan, err := m.CheckoutItem(magazine, jan1)
	require.NoError(t, err)

	assert.Equal(t, []*Loan{magLoan}, m.OverdueLoans(day(10)))
	assert.Empty(t, m.OverdueLoans(day(2)))
}
