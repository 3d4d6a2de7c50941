package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InputDateLayout is the date format accepted at the API boundary.
// Dates are normalized to UTC midnight before any write.
const InputDateLayout = "01-02-2006"

// Sale is a single commission sale booked against an agent code for one
// vendor and pay period.
type Sale struct {
	ID         int64
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
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// Override is a manager commission line separate from direct sales.
type Override struct {
	ID         int64
	VendorID   int64
	Name       string
	SalesCount int
	Commission decimal.Decimal
	Total      decimal.Decimal
	AgentID    int64
	IssueDate  time.Time
	WeekEnding time.Time
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// Expense is a reimbursable expense line booked against the same key.
type Expense struct {
	ID         int64
	VendorID   int64
	Type       string
	Amount     decimal.Decimal
	Notes      string
	AgentID    int64
	IssueDate  time.Time
	WeekEnding time.Time
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// Key identifies one ledger: all lines for one agent code, vendor and issue
// date live under it, as do the derived payroll and paystub rows.
type Key struct {
	AgentID   int64
	VendorID  int64
	IssueDate time.Time
}

// String renders the composite key used to join aggregate results back onto
// rows. Callers must use the same normalization when looking up.
func (k Key) String() string {
	return fmt.Sprintf("%d-%d-%s", k.AgentID, k.VendorID, k.IssueDate.Format(time.DateOnly))
}

// NormalizeDate truncates t to a UTC calendar date. Every date persisted by
// this package goes through it, so composite keys compare equal regardless
// of the wall clock or zone they were parsed in.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseInputDate parses an MM-DD-YYYY boundary date into its canonical form.
func ParseInputDate(s string) (time.Time, error) {
	t, err := time.Parse(InputDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}

	return NormalizeDate(t), nil
}
