package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"library-circulation/clock"
	"library-circulation/desk"
	"library-circulation/library"
)

const dateLayout = "2006-01-02"

// console is the interactive front desk. Prompts are only printed when a
// person is typing; piped scripts get the answers alone.
type console struct {
	d      *desk.Desk
	out    io.Writer
	prompt bool
	clock  *clock.Manual // nil unless the clock can be advanced
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) ask(sc *bufio.Scanner, label string) (string, bool) {
	if c.prompt {
		c.printf("%s: ", label)
	}
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

func (c *console) run(ctx context.Context, in io.Reader) {
	sc := bufio.NewScanner(in)

	c.printf("Welcome to %s!\n", c.d.Library().Name)
	c.printf("Type 'help' for the list of commands.\n")

	for {
		if c.prompt {
			c.printf("\n> ")
		}
		if !sc.Scan() {
			return
		}
		cmd := strings.ToLower(strings.TrimSpace(sc.Text()))

		switch cmd {
		case "":
			continue
		case "members":
			c.handleListMembers()
		case "items":
			c.handleListItems(c.d.Library().Items())
		case "available":
			c.handleListItems(c.d.Available())
		case "popular":
			c.handlePopular()
		case "loans":
			c.handleLoans(sc)
		case "member":
			c.handleMember(sc)
		case "overdue":
			c.handleOverdue()
		case "stats":
			c.handleStats()
		case "checkout":
			c.handleCheckout(ctx, sc)
		case "return":
			c.handleReturn(ctx, sc)
		case "renew":
			c.handleRenew(ctx, sc)
		case "reserve":
			c.handleReserve(ctx, sc)
		case "pay":
			c.handlePay(ctx, sc)
		case "log":
			c.handleLog(ctx)
		case "history":
			c.handleHistory(ctx, sc)
		case "advance":
			c.handleAdvance(sc)
		case "help":
			c.handleHelp()
		case "exit", "quit":
			c.printf("Goodbye!\n")
			return
		default:
			c.printf("Unknown command %q. Type 'help' for the list of commands.\n", cmd)
		}
	}
}

func (c *console) handleHelp() {
	c.printf("Available commands:\n")
	c.printf("  Catalog:     items, available, popular\n")
	c.printf("  Members:     members, member, loans, history\n")
	c.printf("  Circulation: checkout, return, renew, reserve, pay\n")
	c.printf("  Reports:     overdue, stats, log\n")
	if c.clock != nil {
		c.printf("  Simulation:  advance\n")
	}
	c.printf("  System:      help, exit\n")
}

func (c *console) handleListMembers() {
	members := c.d.Library().Members()
	if len(members) == 0 {
		c.printf("No members registered.\n")
		return
	}

	c.printf("%-8s %-20s %-10s %-7s %-12s\n", "ID", "Name", "Type", "Loans", "Fees")
	c.printf("%s\n", strings.Repeat("-", 61))
	for _, m := range members {
		c.printf("%-8s %-20s %-10s %-7s %-12s\n",
			m.ID,
			truncateString(m.Name, 20),
			m.Membership,
			fmt.Sprintf("%d/%d", len(m.CurrentLoans()), m.MaxLoans()),
			library.FormatAmount(m.OutstandingFees()))
	}
}

func (c *console) handleListItems(items []*library.Item) {
	if len(items) == 0 {
		c.printf("No items to show.\n")
		return
	}

	c.printf("%-6s %-28s %-9s %-22s %-16s %s\n", "ID", "Title", "Kind", "By", "Status", "Reservations")
	c.printf("%s\n", strings.Repeat("-", 100))
	for _, item := range items {
		status := "Available"
		if loan := item.CurrentLoan(); loan != nil {
			status = "Due " + loan.DueDate.Format(dateLayout)
		}
		c.printf("%-6s %-28s %-9s %-22s %-16s %d\n",
			item.ID,
			truncateString(item.Title, 28),
			item.Kind,
			truncateString(item.Creator(), 22),
			status,
			len(item.Reservations()))
	}
}

func (c *console) handlePopular() {
	items := c.d.Popular()
	if len(items) == 0 {
		c.printf("No popular items yet.\n")
		return
	}
	for i, item := range items {
		c.printf("%d. %s (%s) - %d checkouts, %d day loans\n",
			i+1, item.Title, item.ID, item.TotalCheckouts(), item.LoanPeriod())
	}
}

func (c *console) handleLoans(sc *bufio.Scanner) {
	memberID, ok := c.ask(sc, "Member ID")
	if !ok {
		return
	}
	m, found := c.d.Library().GetMember(memberID)
	if !found {
		c.printf("Error: member %s not found\n", memberID)
		return
	}

	loans := m.CurrentLoans()
	if len(loans) == 0 {
		c.printf("%s has no items checked out.\n", m.Name)
		return
	}
	now := c.d.Library().Now()
	for _, loan := range loans {
		title := loan.ItemID
		if item, ok := c.d.Library().GetItem(loan.ItemID); ok {
			title = item.Title
		}
		line := fmt.Sprintf("%-6s %-28s due %s", loan.ItemID, truncateString(title, 28), loan.DueDate.Format(dateLayout))
		if loan.IsOverdue(now) {
			line += fmt.Sprintf(" (OVERDUE %d days, %s)", loan.DaysOverdue(now), library.FormatAmount(loan.CalculateLateFee(now)))
		}
		c.printf("%s\n", line)
	}
}

func (c *console) handleMember(sc *bufio.Scanner) {
	memberID, ok := c.ask(sc, "Member ID")
	if !ok {
		return
	}
	s, err := c.d.MemberSummary(memberID)
	if err != nil {
		c.printf("Error: %v\n", err)
		return
	}

	c.printf("%s (%s, %s)\n", s.Member.Name, s.Member.ID, s.Member.Membership)
	c.printf("Loans: %d/%d, overdue: %d\n", s.Loans, s.MaxLoans, s.Overdue)
	c.printf("Outstanding fees: %s\n", library.FormatAmount(s.Fees))
	if s.Eligibility.Allowed {
		c.printf("Can check out: yes\n")
	} else {
		c.printf("Can check out: no (%s)\n", s.Eligibility.Reason)
	}
}

func (c *console) handleOverdue() {
	overdue := c.d.Overdue(time.Time{})
	if len(overdue) == 0 {
		c.printf("No overdue items.\n")
		return
	}

	now := c.d.Library().Now()
	c.printf("%-8s %-20s %-6s %-12s %-6s %s\n", "Member", "Name", "Item", "Due", "Days", "Fee so far")
	c.printf("%s\n", strings.Repeat("-", 70))
	for _, o := range overdue {
		c.printf("%-8s %-20s %-6s %-12s %-6d %s\n",
			o.Member.ID,
			truncateString(o.Member.Name, 20),
			o.Loan.ItemID,
			o.Loan.DueDate.Format(dateLayout),
			o.Loan.DaysOverdue(now),
			library.FormatAmount(o.Loan.CalculateLateFee(now)))
	}
}

func (c *console) handleStats() {
	s := c.d.Stats(time.Time{})
	c.printf("Total items:   %d\n", s.TotalItems)
	c.printf("Available:     %d\n", s.Available)
	c.printf("Overdue:       %d\n", s.Overdue)
	c.printf("Total members: %d\n", s.TotalMembers)
}

func (c *console) askMemberAndItem(sc *bufio.Scanner) (memberID, itemID string, ok bool) {
	if memberID, ok = c.ask(sc, "Member ID"); !ok {
		return "", "", false
	}
	if itemID, ok = c.ask(sc, "Item ID"); !ok {
		return "", "", false
	}
	return memberID, itemID, true
}

func (c *console) handleCheckout(ctx context.Context, sc *bufio.Scanner) {
	memberID, itemID, ok := c.askMemberAndItem(sc)
	if !ok {
		return
	}
	r, err := c.d.Checkout(ctx, memberID, itemID, time.Time{})
	if err != nil {
		c.printf("Error checking out: %v\n", err)
		return
	}
	c.printf("%s\n", r.Message)
}

func (c *console) handleReturn(ctx context.Context, sc *bufio.Scanner) {
	memberID, itemID, ok := c.askMemberAndItem(sc)
	if !ok {
		return
	}
	r, err := c.d.Return(ctx, memberID, itemID, time.Time{})
	if err != nil {
		c.printf("Error returning: %v\n", err)
		return
	}
	c.printf("%s\n", r.Message)
	if r.Loan.LateFee.IsPositive() {
		c.printf("Outstanding fees: %s\n", library.FormatAmount(r.Balance))
	}
}

func (c *console) handleRenew(ctx context.Context, sc *bufio.Scanner) {
	memberID, itemID, ok := c.askMemberAndItem(sc)
	if !ok {
		return
	}
	r, err := c.d.Renew(ctx, memberID, itemID)
	if err != nil {
		c.printf("Error renewing: %v\n", err)
		return
	}
	c.printf("%s\n", r.Message)
}

func (c *console) handleReserve(ctx context.Context, sc *bufio.Scanner) {
	memberID, itemID, ok := c.askMemberAndItem(sc)
	if !ok {
		return
	}
	r, err := c.d.Reserve(ctx, memberID, itemID)
	if err != nil {
		c.printf("Error reserving: %v\n", err)
		return
	}
	c.printf("%s\n", r.Message)
}

// handlePay settles the whole balance when no amount is given.
func (c *console) handlePay(ctx context.Context, sc *bufio.Scanner) {
	memberID, ok := c.ask(sc, "Member ID")
	if !ok {
		return
	}
	raw, ok := c.ask(sc, "Amount (Enter for full balance)")
	if !ok {
		return
	}

	var (
		r   desk.Receipt
		err error
	)
	if raw == "" {
		r, err = c.d.PayAllFees(ctx, memberID)
	} else {
		amount, perr := decimal.NewFromString(raw)
		if perr != nil {
			c.printf("Invalid amount: %s\n", raw)
			return
		}
		r, err = c.d.PayFees(ctx, memberID, amount)
	}
	if err != nil {
		c.printf("Error paying fees: %v\n", err)
		return
	}
	c.printf("%s\n", r.Message)
}

func (c *console) handleLog(ctx context.Context) {
	entries, err := c.d.Activity(ctx, desk.DefaultActivityLimit)
	if err != nil {
		c.printf("Error: %v\n", err)
		return
	}
	if len(entries) == 0 {
		c.printf("No activity yet.\n")
		return
	}
	for _, e := range entries {
		c.printf("[%s] %-8s %-7s %s\n", e.At.Format("2006-01-02 15:04"), e.Action, e.Outcome, e.Message)
	}
}

func (c *console) handleHistory(ctx context.Context, sc *bufio.Scanner) {
	memberID, ok := c.ask(sc, "Member ID")
	if !ok {
		return
	}
	entries, err := c.d.MemberActivity(ctx, memberID)
	if err != nil {
		c.printf("Error: %v\n", err)
		return
	}
	if len(entries) == 0 {
		c.printf("No activity for %s.\n", memberID)
		return
	}
	for _, e := range entries {
		c.printf("[%s] %-8s %s\n", e.At.Format("2006-01-02 15:04"), e.Action, e.Message)
	}
}

func (c *console) handleAdvance(sc *bufio.Scanner) {
	if c.clock == nil {
		c.printf("The clock follows real time; set clock.fixed_now to simulate days.\n")
		return
	}
	raw, ok := c.ask(sc, "Days")
	if !ok {
		return
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		c.printf("Invalid number of days: %s\n", raw)
		return
	}
	now := c.clock.AdvanceDays(days)
	c.printf("Today is %s\n", now.Format(dateLayout))
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
