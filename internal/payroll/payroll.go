package payroll

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crewpay/crewpay/internal/ledger"
)

var (
	ErrNotFound  = errors.New("payroll record not found")
	ErrForbidden = errors.New("forbidden")
)

// Status filters the paid flag on list reads.
type Status string

const (
	StatusPaid   Status = "paid"
	StatusUnpaid Status = "unpaid"
)

// ListFilter narrows the payroll list. Zero-value fields are ignored.
type ListFilter struct {
	EmployeeID *int64
	VendorID   *int64
	IssueDate  *time.Time
	StartDate  *time.Time
	EndDate    *time.Time
	Status     *Status
	Page       int
	Limit      int
}

// KeyRow is one paged paystub key plus the per-key columns that live on the
// derived records themselves.
type KeyRow struct {
	Key         ledger.Key
	WeekEnding  time.Time
	AgentName   string
	VendorName  string
	Amount      decimal.Decimal
	IsPaid      bool
	LastUpdated time.Time
}

// KeyTotals are the grouped per-key sums the batch aggregator produces.
type KeyTotals struct {
	SalesTotal     decimal.Decimal
	OverridesTotal decimal.Decimal
	ExpensesTotal  decimal.Decimal
	LineCount      int64
}

// Row is one formatted payroll list entry.
type Row struct {
	EmployeeID     int64
	EmployeeName   string
	AgentID        int64
	VendorID       int64
	VendorName     string
	IssueDate      time.Time
	WeekEnding     time.Time
	TotalSales     decimal.Decimal
	TotalOverrides decimal.Decimal
	TotalExpenses  decimal.Decimal
	NetPay         decimal.Decimal
	LineCount      int64
	IsPaid         bool
	LastUpdated    time.Time
}

// Page is a payroll list page with its overall match count.
type Page struct {
	Rows  []Row
	Total int64
}
