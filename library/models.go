package library

import "time"

// ItemDetails holds the variant-specific catalog fields. Only the fields
// relevant to the item's kind are set.
type ItemDetails struct {
	Author          string `json:"author,omitempty" yaml:"author,omitempty"`
	ISBN            string `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	Director        string `json:"director,omitempty" yaml:"director,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty" yaml:"duration_minutes,omitempty"`
	Issue           string `json:"issue,omitempty" yaml:"issue,omitempty"`
	PublishDate     string `json:"publish_date,omitempty" yaml:"publish_date,omitempty"`
}

// CheckoutRecord is one entry of an item's checkout history.
type CheckoutRecord struct {
	MemberID string    `json:"member_id"`
	At       time.Time `json:"at"`
}

// Eligibility is the answer to "may this member check something out now".
type Eligibility struct {
	Allowed bool
	Reason  string // empty when Allowed
}

// OverdueLoan pairs an overdue loan with the member holding it.
type OverdueLoan struct {
	Member *Member
	Loan   *Loan
}

// Stats is the headline summary of the library shown next to the activity log.
type Stats struct {
	TotalItems   int `json:"total_items"`
	Available    int `json:"available"`
	Overdue      int `json:"overdue"`
	TotalMembers int `json:"total_members"`
}
