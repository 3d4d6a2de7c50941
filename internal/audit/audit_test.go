package audit_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewpay/crewpay/internal/audit"
)

func baseSnapshot() audit.Snapshot {
	return audit.Snapshot{
		VendorID:   5,
		SaleDate:   time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		FirstName:  "Pat",
		LastName:   "Doe",
		Address:    "12 Main St",
		City:       "Springfield",
		Status:     "pending",
		Amount:     decimal.NewFromInt(400),
		AgentID:    101,
		IssueDate:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		WeekEnding: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
	}
}

func TestRecord_Changes(t *testing.T) {
	prev := baseSnapshot()
	curr := baseSnapshot()
	curr.Status = "installed"
	curr.Amount = decimal.NewFromFloat(512.5)
	curr.City = "Shelbyville"

	rec := &audit.Record{
		Action:   audit.ActionUpdate,
		Previous: prev,
		Current:  &curr,
	}

	changes := rec.Changes()

	require.Len(t, changes, 3)
	assert.Equal(t, audit.Change{From: "pending", To: "installed"}, changes["status"])
	assert.Equal(t, audit.Change{From: "400.00", To: "512.50"}, changes["amount"])
	assert.Equal(t, audit.Change{From: "Springfield", To: "Shelbyville"}, changes["city"])
}

func TestRecord_Changes_IdenticalSnapshots(t *testing.T) {
	prev := baseSnapshot()
	curr := baseSnapshot()

	rec := &audit.Record{
		Action:   audit.ActionUpdate,
		Previous: prev,
		Current:  &curr,
	}

	assert.Empty(t, rec.Changes())
}

func TestRecord_Changes_EqualAmountDifferentScale(t *testing.T) {
	prev := baseSnapshot()
	curr := baseSnapshot()
	curr.Amount = decimal.RequireFromString("400.00")

	rec := &audit.Record{
		Action:   audit.ActionUpdate,
		Previous: prev,
		Current:  &curr,
	}

	// 400 and 400.00 are the same amount; scale must not produce a diff.
	assert.Empty(t, rec.Changes())
}

func TestRecord_Changes_DatesAndIDs(t *testing.T) {
	prev := baseSnapshot()
	curr := baseSnapshot()
	curr.VendorID = 6
	curr.SaleDate = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	curr.IssueDate = time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC)

	rec := &audit.Record{
		Action:   audit.ActionUpdate,
		Previous: prev,
		Current:  &curr,
	}

	changes := rec.Changes()

	require.Len(t, changes, 3)
	assert.Equal(t, audit.Change{From: "5", To: "6"}, changes["vendor"])
	assert.Equal(t, audit.Change{From: "2024-03-04", To: "2024-03-05"}, changes["saleDate"])
	assert.Equal(t, audit.Change{From: "2024-03-15", To: "2024-03-22"}, changes["issueDate"])
}

func TestRecord_Changes_Deletion(t *testing.T) {
	rec := &audit.Record{
		Action:   audit.ActionDelete,
		Previous: baseSnapshot(),
	}

	assert.Nil(t, rec.Changes())
}
