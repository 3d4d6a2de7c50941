package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crewpay/crewpay/internal/auth"
	"github.com/crewpay/crewpay/internal/scope"
)

// SearchFilter narrows an audit search. All fields are optional; string
// fields match as case-insensitive substrings where noted.
type SearchFilter struct {
	InvoiceID     *int64
	AgentIDs      []int64
	VendorID      *int64
	CustomerName  string // substring over first + last name
	City          string // substring
	Status        string
	SaleDateFrom  *time.Time
	SaleDateTo    *time.Time
	IssueDateFrom *time.Time
	IssueDateTo   *time.Time
	WeekEndFrom   *time.Time
	WeekEndTo     *time.Time
	ChangedFrom   *time.Time
	ChangedTo     *time.Time
	AmountMin     *decimal.Decimal
	AmountMax     *decimal.Decimal
	StatusChanged bool // only rows where previous_status != current_status
	AmountChanged bool // only rows where previous_amount != current_amount
	ChangedBy     *int64
	Action        *ActionType
	Page          int
	Limit         int
}

// CountItem is one entry of a top-N summary breakdown.
type CountItem struct {
	Key   string
	Count int64
}

// Summary aggregates the filtered audit set.
type Summary struct {
	TotalChanges  int64
	StatusChanges int64
	AmountChanges int64
	Last30Days    int64
	TopStatuses   []CountItem
	TopUsers      []CountItem
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=audit
type Repository interface {
	Insert(ctx context.Context, rec *Record) error
	Search(ctx context.Context, filter SearchFilter, agentCodes []int64) ([]*Record, int64, error)
	Summarize(ctx context.Context, filter SearchFilter, agentCodes []int64, topN int) (*Summary, error)
}

type ScopeResolver interface {
	Resolve(ctx context.Context, id auth.Identity) (scope.Scope, error)
}

type Service struct {
	repo   Repository
	scopes ScopeResolver
}

func NewService(repo Repository, scopes ScopeResolver) *Service {
	return &Service{repo: repo, scopes: scopes}
}

const defaultTopN = 5

// RecordChange appends one audit record. The record is immutable once
// written; callers treat failures as best-effort and must not retry into
// the primary write path.
func (s *Service) RecordChange(ctx context.Context, rec *Record) (uuid.UUID, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	if rec.ChangedAt.IsZero() {
		rec.ChangedAt = time.Now().UTC()
	}

	if rec.Action != ActionUpdate && rec.Action != ActionDelete {
		return uuid.Nil, fmt.Errorf("unknown action type %q", rec.Action)
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		return uuid.Nil, fmt.Errorf("inserting audit record: %w", err)
	}

	return rec.ID, nil
}

// Search returns the filtered audit page, newest first, with the total
// count of matching records. The caller's scope is pushed into the query.
func (s *Service) Search(ctx context.Context, id auth.Identity, filter SearchFilter) ([]*Record, int64, error) {
	sc, err := s.scopes.Resolve(ctx, id)
	if err != nil {
		return nil, 0, fmt.Errorf("resolving scope: %w", err)
	}

	if sc.Mode == scope.ModeEmployeeSet && len(sc.AgentCodes) == 0 {
		return nil, 0, nil
	}

	normalizeFilterPage(&filter)

	return s.repo.Search(ctx, filter, sc.AgentCodes)
}

// Summarize computes change counts and top-N breakdowns over the same
// filtered set a Search call would return.
func (s *Service) Summarize(ctx context.Context, id auth.Identity, filter SearchFilter) (*Summary, error) {
	sc, err := s.scopes.Resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolving scope: %w", err)
	}

	if sc.Mode == scope.ModeEmployeeSet && len(sc.AgentCodes) == 0 {
		return &Summary{}, nil
	}

	return s.repo.Summarize(ctx, filter, sc.AgentCodes, defaultTopN)
}

func normalizeFilterPage(f *SearchFilter) {
	if f.Page < 1 {
		f.Page = 1
	}

	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}
}
