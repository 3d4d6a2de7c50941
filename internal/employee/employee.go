package employee

import "errors"

// ErrNotFound is returned when no employee matches the lookup.
var ErrNotFound = errors.New("employee not found")

// Employee is the read-side view consumed by the ledger and payroll paths.
// AgentCodes are the external codes ledger rows are booked under; one
// employee may hold several.
type Employee struct {
	ID         int64
	Name       string
	IsAdmin    bool
	IsManager  bool
	IsActive   bool
	AgentCodes []int64
}
