package audit

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActionType classifies what happened to the sale row.
type ActionType string

const (
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
)

// Snapshot captures every trackable field of a sale row verbatim, including
// unchanged fields, so row state at any point in history can be rebuilt from
// audit records alone.
type Snapshot struct {
	VendorID   int64
	SaleDate   time.Time
	FirstName  string
	LastName   string
	Address    string
	City       string
	Status     string
	Amount     decimal.Decimal
	AgentID    int64
	IssueDate  time.Time
	WeekEnding time.Time
}

// Record is one immutable before/after snapshot of a sale mutation or
// deletion. Current is nil for deletions.
type Record struct {
	ID        uuid.UUID
	InvoiceID int64
	Action    ActionType
	ChangedBy int64
	ChangedAt time.Time
	Previous  Snapshot
	Current   *Snapshot
	Reason    string
	IPAddress string
}

// Change is one field-level difference derived from a record.
type Change struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Changes derives the field-level diff by comparing previous and current
// snapshots column by column. The diff is never stored; it is always
// computed at read time. Deletions have no current state and no diff.
func (r *Record) Changes() map[string]Change {
	if r.Current == nil {
		return nil
	}

	prev, curr := r.Previous, *r.Current
	changes := make(map[string]Change)

	diffStr := func(field, from, to string) {
		if from != to {
			changes[field] = Change{From: from, To: to}
		}
	}

	diffStr("vendor", formatID(prev.VendorID), formatID(curr.VendorID))
	diffStr("saleDate", formatDate(prev.SaleDate), formatDate(curr.SaleDate))
	diffStr("firstName", prev.FirstName, curr.FirstName)
	diffStr("lastName", prev.LastName, curr.LastName)
	diffStr("address", prev.Address, curr.Address)
	diffStr("city", prev.City, curr.City)
	diffStr("status", prev.Status, curr.Status)
	diffStr("agent", formatID(prev.AgentID), formatID(curr.AgentID))
	diffStr("issueDate", formatDate(prev.IssueDate), formatDate(curr.IssueDate))
	diffStr("weekEnding", formatDate(prev.WeekEnding), formatDate(curr.WeekEnding))

	if !prev.Amount.Equal(curr.Amount) {
		changes["amount"] = Change{
			From: prev.Amount.StringFixed(2),
			To:   curr.Amount.StringFixed(2),
		}
	}

	return changes
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.DateOnly)
}
