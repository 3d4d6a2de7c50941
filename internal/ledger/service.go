package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crewpay/crewpay/internal/audit"
	"github.com/crewpay/crewpay/internal/auth"
	"github.com/crewpay/crewpay/internal/employee"
	"github.com/crewpay/crewpay/internal/scope"
	"github.com/crewpay/crewpay/internal/vendorpkg"
)

// SaleParams is one incoming sale line. A positive InvoiceID updates the
// existing row in place; zero inserts a new one.
type SaleParams struct {
	InvoiceID int64
	SaleDate  time.Time
	FirstName string
	LastName  string
	Address   string
	City      string
	Status    string
	Amount    decimal.Decimal
}

type OverrideParams struct {
	OverrideID int64
	Name       string
	SalesCount int
	Commission decimal.Decimal
	Total      decimal.Decimal
}

type ExpenseParams struct {
	ExpenseID int64
	Type      string
	Amount    decimal.Decimal
	Notes     string
}

// PendingDeletes names rows to remove before upserting, scoped to the key
// being saved. Prior state is captured first for the audit trail.
type PendingDeletes struct {
	Sales     []int64
	Overrides []int64
	Expenses  []int64
}

// AuditMeta identifies who is making the change, for the audit trail.
type AuditMeta struct {
	UserID    int64
	IPAddress string
	Reason    string
}

// SaveParams is one atomic ledger save for a single (agent, vendor,
// issue date) key. IssueDate and WeekEnding are shared by every line.
type SaveParams struct {
	AgentID    int64
	VendorID   int64
	IssueDate  time.Time
	WeekEnding time.Time
	Sales      []SaleParams
	Overrides  []OverrideParams
	Expenses   []ExpenseParams
	Deletes    PendingDeletes
	Audit      *AuditMeta
}

func (p *SaveParams) key() Key {
	return Key{AgentID: p.AgentID, VendorID: p.VendorID, IssueDate: p.IssueDate}
}

// Validate rejects malformed input before any transaction opens.
func (p *SaveParams) Validate() error {
	if p.AgentID <= 0 {
		return invalidf("agentId", "must be positive")
	}

	if p.VendorID <= 0 {
		return invalidf("vendorId", "must be positive")
	}

	if p.IssueDate.IsZero() {
		return invalidf("issueDate", "required")
	}

	if p.WeekEnding.IsZero() {
		return invalidf("weekEnding", "required")
	}

	for i, s := range p.Sales {
		if s.SaleDate.IsZero() {
			return invalidf("sales", "line %d: saleDate required", i)
		}

		if s.Amount.IsNegative() {
			return invalidf("sales", "line %d: amount must not be negative", i)
		}
	}

	for i, o := range p.Overrides {
		if o.Total.IsNegative() {
			return invalidf("overrides", "line %d: total must not be negative", i)
		}
	}

	for i, e := range p.Expenses {
		if e.Amount.IsNegative() {
			return invalidf("expenses", "line %d: amount must not be negative", i)
		}
	}

	return nil
}

// SaveResult is what the store hands back from the write transaction: the
// persisted lines plus the sale snapshots needed for the audit trail.
type SaveResult struct {
	Sales     []*Sale
	Overrides []*Override
	Expenses  []*Expense

	// PriorSales holds the pre-update state of every sale that existed
	// before this save, keyed by ID. DeletedSales holds the final state of
	// rows removed via pending deletes.
	PriorSales   map[int64]*Sale
	DeletedSales []*Sale
}

// Totals are the recomputed derived amounts for one key.
type Totals struct {
	PayrollAmount decimal.Decimal
	PaystubAmount decimal.Decimal
}

// SavedLedger is the full response to a save call.
type SavedLedger struct {
	Sales     []*Sale
	Overrides []*Override
	Expenses  []*Expense
	Totals    Totals
}

// Detail is the read-side view of one ledger key.
type Detail struct {
	Key        Key
	WeekEnding time.Time
	Employee   *employee.Employee
	Vendor     *vendor.Vendor
	Sales      []*Sale
	Overrides  []*Override
	Expenses   []*Expense
}

//go:generate mockgen -source=service.go -destination=service_mock.go -package=ledger
type Repository interface {
	// SaveLedger runs the whole multi-table write in one transaction:
	// prior-state capture, pending deletes, then upserts. Any failure
	// rolls the entire call back.
	SaveLedger(ctx context.Context, params SaveParams) (*SaveResult, error)

	// RecomputeAggregates re-derives the payroll and paystub rows for the
	// key by summing current ledger lines, upserting atomically.
	RecomputeAggregates(ctx context.Context, key Key, weekEnding time.Time, agentName, vendorName string) (Totals, error)

	GetLines(ctx context.Context, key Key) (sales []*Sale, overrides []*Override, expenses []*Expense, err error)
}

type ScopeResolver interface {
	Resolve(ctx context.Context, id auth.Identity) (scope.Scope, error)
}

type EmployeeDirectory interface {
	ByAgentCode(ctx context.Context, code int64) (*employee.Employee, error)
}

type VendorDirectory interface {
	Get(ctx context.Context, id int64) (*vendor.Vendor, error)
}

type AuditRecorder interface {
	RecordChange(ctx context.Context, rec *audit.Record) (recordID uuid.UUID, err error)
}

// Service is the transactional write path for ledger lines and the detail
// read path for one key.
type Service struct {
	repo      Repository
	scopes    ScopeResolver
	employees EmployeeDirectory
	vendors   VendorDirectory
	auditor   AuditRecorder

	auditWG sync.WaitGroup
}

func NewService(repo Repository, scopes ScopeResolver, employees EmployeeDirectory, vendors VendorDirectory, auditor AuditRecorder) *Service {
	return &Service{
		repo:      repo,
		scopes:    scopes,
		employees: employees,
		vendors:   vendors,
		auditor:   auditor,
	}
}

// Save validates, authorizes and persists one ledger save, then recomputes
// the derived payroll and paystub rows for the key. Audit records are
// written after the fact and never fail the call.
func (s *Service) Save(ctx context.Context, id auth.Identity, params SaveParams) (*SavedLedger, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	sc, err := s.scopes.Resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolving scope: %w", err)
	}

	if !sc.AllowsAgent(params.AgentID) {
		return nil, ErrUnauthorized
	}

	emp, err := s.lookupEmployee(ctx, params.AgentID)
	if err != nil {
		return nil, err
	}

	ven, err := s.lookupVendor(ctx, params.VendorID)
	if err != nil {
		return nil, err
	}

	result, err := s.repo.SaveLedger(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransaction, err)
	}

	// The save is committed at this point, so the audit trail must be
	// queued even if the recompute below fails.
	s.recordAudits(ctx, params, result)

	totals, err := s.repo.RecomputeAggregates(ctx, params.key(), params.WeekEnding, emp.Name, ven.Name)
	if err != nil {
		return nil, fmt.Errorf("recomputing aggregates: %w", err)
	}

	return &SavedLedger{
		Sales:     result.Sales,
		Overrides: result.Overrides,
		Expenses:  result.Expenses,
		Totals:    totals,
	}, nil
}

// GetDetail returns all lines under the key, with employee and vendor
// context. Keys outside the caller's scope look exactly like missing keys.
func (s *Service) GetDetail(ctx context.Context, id auth.Identity, key Key) (*Detail, error) {
	sc, err := s.scopes.Resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolving scope: %w", err)
	}

	if !sc.AllowsAgent(key.AgentID) {
		return nil, ErrNotFound
	}

	emp, err := s.lookupEmployee(ctx, key.AgentID)
	if err != nil {
		return nil, err
	}

	ven, err := s.lookupVendor(ctx, key.VendorID)
	if err != nil {
		return nil, err
	}

	sales, overrides, expenses, err := s.repo.GetLines(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("loading ledger lines: %w", err)
	}

	detail := &Detail{
		Key:       key,
		Employee:  emp,
		Vendor:    ven,
		Sales:     sales,
		Overrides: overrides,
		Expenses:  expenses,
	}

	switch {
	case len(sales) > 0:
		detail.WeekEnding = sales[0].WeekEnding
	case len(overrides) > 0:
		detail.WeekEnding = overrides[0].WeekEnding
	case len(expenses) > 0:
		detail.WeekEnding = expenses[0].WeekEnding
	}

	return detail, nil
}

// recordAudits queues best-effort audit records for every mutated or
// deleted sale. Failures are logged and swallowed: the ledger write has
// already committed and must not be affected. A crash before the queue
// drains loses those records; that gap is accepted.
func (s *Service) recordAudits(ctx context.Context, params SaveParams, result *SaveResult) {
	meta := AuditMeta{}
	if params.Audit != nil {
		meta = *params.Audit
	}

	var recs []*audit.Record

	for _, sale := range result.Sales {
		prior, ok := result.PriorSales[sale.ID]
		if !ok {
			continue // inserts are not audited
		}

		recs = append(recs, &audit.Record{
			InvoiceID: sale.ID,
			Action:    audit.ActionUpdate,
			ChangedBy: meta.UserID,
			Previous:  snapshot(prior),
			Current:   snapshotPtr(sale),
			Reason:    meta.Reason,
			IPAddress: meta.IPAddress,
		})
	}

	for _, sale := range result.DeletedSales {
		recs = append(recs, &audit.Record{
			InvoiceID: sale.ID,
			Action:    audit.ActionDelete,
			ChangedBy: meta.UserID,
			Previous:  snapshot(sale),
			Reason:    meta.Reason,
			IPAddress: meta.IPAddress,
		})
	}

	if len(recs) == 0 {
		return
	}

	// Detach from the request: a cancelled caller must not abort writes
	// for a ledger change that already committed.
	auditCtx := context.WithoutCancel(ctx)

	s.auditWG.Add(1)

	go func() {
		defer s.auditWG.Done()

		for _, rec := range recs {
			if _, err := s.auditor.RecordChange(auditCtx, rec); err != nil {
				slog.Error("audit write failed",
					"invoice_id", rec.InvoiceID,
					"action", rec.Action,
					"error", err)
			}
		}
	}()
}

// Wait blocks until in-flight audit writes finish. Called on shutdown and
// by tests that need deterministic audit state.
func (s *Service) Wait() {
	s.auditWG.Wait()
}

func (s *Service) lookupEmployee(ctx context.Context, agentCode int64) (*employee.Employee, error) {
	emp, err := s.employees.ByAgentCode(ctx, agentCode)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			return nil, fmt.Errorf("%w: agent %d", ErrNotFound, agentCode)
		}

		return nil, fmt.Errorf("looking up employee: %w", err)
	}

	return emp, nil
}

func (s *Service) lookupVendor(ctx context.Context, vendorID int64) (*vendor.Vendor, error) {
	ven, err := s.vendors.Get(ctx, vendorID)
	if err != nil {
		if errors.Is(err, vendor.ErrNotFound) {
			return nil, fmt.Errorf("%w: vendor %d", ErrNotFound, vendorID)
		}

		return nil, fmt.Errorf("looking up vendor: %w", err)
	}

	return ven, nil
}

func snapshot(sale *Sale) audit.Snapshot {
	return audit.Snapshot{
		VendorID:   sale.VendorID,
		SaleDate:   sale.SaleDate,
		FirstName:  sale.FirstName,
		LastName:   sale.LastName,
		Address:    sale.Address,
		City:       sale.City,
		Status:     sale.Status,
		Amount:     sale.Amount,
		AgentID:    sale.AgentID,
		IssueDate:  sale.IssueDate,
		WeekEnding: sale.WeekEnding,
	}
}

func snapshotPtr(sale *Sale) *audit.Snapshot {
	s := snapshot(sale)
	return &s
}
