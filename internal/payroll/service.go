package payroll

import (
	"context"
	"fmt"

	"github.com/crewpay/crewpay/internal/auth"
	"github.com/crewpay/crewpay/internal/employee"
	"github.com/crewpay/crewpay/internal/ledger"
	"github.com/crewpay/crewpay/internal/scope"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=payroll
type Repository interface {
	// ListKeys pages over paystub keys matching the filter. The agent-code
	// predicate is part of the query itself, never applied after the fetch.
	ListKeys(ctx context.Context, filter ListFilter, agentCodes []int64) ([]KeyRow, int64, error)

	// AggregateTotals computes per-key sums for a page of keys with at most
	// one grouped query per source table.
	AggregateTotals(ctx context.Context, keys []ledger.Key) (map[string]KeyTotals, error)

	// MarkPaid flips the one-way paid flag on the payroll record.
	MarkPaid(ctx context.Context, key ledger.Key) error
}

type ScopeResolver interface {
	Resolve(ctx context.Context, id auth.Identity) (scope.Scope, error)
}

type EmployeeDirectory interface {
	ByAgentCodes(ctx context.Context, codes []int64) (map[int64]*employee.Employee, error)
	AgentCodesFor(ctx context.Context, employeeID int64) ([]int64, error)
}

// Service is the role-scoped payroll list and payment-tracking path.
type Service struct {
	repo      Repository
	scopes    ScopeResolver
	employees EmployeeDirectory
}

func NewService(repo Repository, scopes ScopeResolver, employees EmployeeDirectory) *Service {
	return &Service{repo: repo, scopes: scopes, employees: employees}
}

// List returns one page of payroll summary rows. Totals come from the batch
// aggregator and are joined back onto each key by its composite string; the
// reported total always matches what paging through every page would yield.
func (s *Service) List(ctx context.Context, id auth.Identity, filter ListFilter) (*Page, error) {
	sc, err := s.scopes.Resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolving scope: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}

	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 25
	}

	agentCodes := sc.AgentCodes

	if filter.EmployeeID != nil {
		if !sc.AllowsEmployee(*filter.EmployeeID) {
			// Out-of-scope filters yield an empty page, not an error.
			return &Page{}, nil
		}

		codes, err := s.employees.AgentCodesFor(ctx, *filter.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("resolving employee agent codes: %w", err)
		}

		agentCodes = codes
	}

	if sc.Mode == scope.ModeEmployeeSet && len(agentCodes) == 0 {
		return &Page{}, nil
	}

	keyRows, total, err := s.repo.ListKeys(ctx, filter, agentCodes)
	if err != nil {
		return nil, fmt.Errorf("listing payroll keys: %w", err)
	}

	if len(keyRows) == 0 {
		return &Page{Total: total}, nil
	}

	keys := make([]ledger.Key, len(keyRows))
	codes := make([]int64, len(keyRows))

	for i, kr := range keyRows {
		keys[i] = kr.Key
		codes[i] = kr.Key.AgentID
	}

	totals, err := s.repo.AggregateTotals(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("aggregating totals: %w", err)
	}

	// Ledger rows carry external agent codes; list rows report internal
	// employee IDs, so reconcile through the directory before joining.
	employees, err := s.employees.ByAgentCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("resolving employees: %w", err)
	}

	page := &Page{Total: total, Rows: make([]Row, 0, len(keyRows))}

	for _, kr := range keyRows {
		row := Row{
			AgentID:     kr.Key.AgentID,
			VendorID:    kr.Key.VendorID,
			VendorName:  kr.VendorName,
			IssueDate:   kr.Key.IssueDate,
			WeekEnding:  kr.WeekEnding,
			IsPaid:      kr.IsPaid,
			LastUpdated: kr.LastUpdated,
		}

		if emp, ok := employees[kr.Key.AgentID]; ok {
			row.EmployeeID = emp.ID
			row.EmployeeName = emp.Name
		} else {
			row.EmployeeName = kr.AgentName
		}

		if t, ok := totals[kr.Key.String()]; ok {
			row.TotalSales = t.SalesTotal
			row.TotalOverrides = t.OverridesTotal
			row.TotalExpenses = t.ExpensesTotal
			row.LineCount = t.LineCount
			row.NetPay = t.SalesTotal.Add(t.OverridesTotal).Add(t.ExpensesTotal)
		}

		page.Rows = append(page.Rows, row)
	}

	return page, nil
}

// MarkPaid sets the one-way paid flag on a payroll record. Admin only.
func (s *Service) MarkPaid(ctx context.Context, id auth.Identity, key ledger.Key) error {
	if !id.IsAdmin {
		return ErrForbidden
	}

	if err := s.repo.MarkPaid(ctx, key); err != nil {
		return fmt.Errorf("marking payroll paid: %w", err)
	}

	return nil
}
