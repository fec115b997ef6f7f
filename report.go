package main

import (
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"

	"library-circulation/desk"
	"library-circulation/library"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type itemView struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Kind           string `json:"kind"`
	Creator        string `json:"creator"`
	TotalCheckouts int    `json:"total_checkouts"`
	LoanPeriodDays int    `json:"loan_period_days"`
}

type overdueView struct {
	MemberID    string `json:"member_id"`
	MemberName  string `json:"member_name"`
	ItemID      string `json:"item_id"`
	DueDate     string `json:"due_date"`
	DaysOverdue int    `json:"days_overdue"`
	FeeSoFar    string `json:"fee_so_far"`
}

type report struct {
	Library   string        `json:"library"`
	At        time.Time     `json:"at"`
	Stats     library.Stats `json:"stats"`
	Available []itemView    `json:"available"`
	Overdue   []overdueView `json:"overdue"`
	Popular   []itemView    `json:"popular"`
}

func toItemViews(items []*library.Item) []itemView {
	out := make([]itemView, 0, len(items))
	for _, item := range items {
		out = append(out, itemView{
			ID:             item.ID,
			Title:          item.Title,
			Kind:           string(item.Kind),
			Creator:        item.Creator(),
			TotalCheckouts: item.TotalCheckouts(),
			LoanPeriodDays: item.LoanPeriod(),
		})
	}
	return out
}

// buildReport snapshots the library at at; a zero at means the library's now.
func buildReport(d *desk.Desk, at time.Time) report {
	if at.IsZero() {
		at = d.Library().Now()
	}
	r := report{
		Library:   d.Library().Name,
		At:        at,
		Stats:     d.Stats(at),
		Available: toItemViews(d.Available()),
		Overdue:   []overdueView{},
		Popular:   toItemViews(d.Popular()),
	}
	for _, o := range d.Overdue(at) {
		r.Overdue = append(r.Overdue, overdueView{
			MemberID:    o.Member.ID,
			MemberName:  o.Member.Name,
			ItemID:      o.Loan.ItemID,
			DueDate:     o.Loan.DueDate.Format(dateLayout),
			DaysOverdue: o.Loan.DaysOverdue(at),
			FeeSoFar:    o.Loan.CalculateLateFee(at).StringFixed(2),
		})
	}
	return r
}

func writeReportJSON(w io.Writer, r report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeReportText(w io.Writer, r report) {
	fmt.Fprintf(w, "%s as of %s\n", r.Library, r.At.Format(dateLayout))
	fmt.Fprintf(w, "Items: %d total, %d available, %d overdue. Members: %d\n",
		r.Stats.TotalItems, r.Stats.Available, r.Stats.Overdue, r.Stats.TotalMembers)

	fmt.Fprintf(w, "\nAvailable:\n")
	for _, it := range r.Available {
		fmt.Fprintf(w, "  %-6s %s (%s)\n", it.ID, it.Title, it.Kind)
	}

	fmt.Fprintf(w, "\nOverdue:\n")
	if len(r.Overdue) == 0 {
		fmt.Fprintf(w, "  none\n")
	}
	for _, o := range r.Overdue {
		fmt.Fprintf(w, "  %-6s %s, due %s, %d days, INR %s\n", o.ItemID, o.MemberName, o.DueDate, o.DaysOverdue, o.FeeSoFar)
	}

	fmt.Fprintf(w, "\nPopular:\n")
	if len(r.Popular) == 0 {
		fmt.Fprintf(w, "  none\n")
	}
	for _, it := range r.Popular {
		fmt.Fprintf(w, "  %-6s %s (%d checkouts)\n", it.ID, it.Title, it.TotalCheckouts)
	}
}
