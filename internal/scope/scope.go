package scope

import (
	"context"
	"fmt"
	"slices"

	"github.com/crewpay/crewpay/internal/auth"
)

// Mode describes how far a caller's reads and writes reach.
type Mode int

const (
	// ModeAll places no employee filter on queries. Admins only.
	ModeAll Mode = iota
	// ModeEmployeeSet restricts queries to an explicit set of employees.
	ModeEmployeeSet
)

// Scope is a resolved access scope. For ModeEmployeeSet, AgentCodes holds
// the external agent codes for every employee in the set; queries push it
// down as a mandatory predicate, never as a post-fetch filter. An empty set
// yields empty results, not an error.
type Scope struct {
	Mode        Mode
	EmployeeIDs []int64
	AgentCodes  []int64
}

// AllowsAgent reports whether the scope covers the given agent code.
func (s Scope) AllowsAgent(code int64) bool {
	if s.Mode == ModeAll {
		return true
	}

	return slices.Contains(s.AgentCodes, code)
}

// AllowsEmployee reports whether the scope covers the given employee ID.
func (s Scope) AllowsEmployee(id int64) bool {
	if s.Mode == ModeAll {
		return true
	}

	return slices.Contains(s.EmployeeIDs, id)
}

//go:generate mockgen -source=scope.go -destination=repository_mock.go -package=scope
type Repository interface {
	ManagedEmployeeIDs(ctx context.Context, managerID int64) ([]int64, error)
	AgentCodes(ctx context.Context, employeeIDs []int64) ([]int64, error)
}

// Resolver computes the set of employees a caller may read and write.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve maps a caller identity to its access scope. Admins see everything;
// managers see their assigned employees; everyone else sees only themselves.
func (r *Resolver) Resolve(ctx context.Context, id auth.Identity) (Scope, error) {
	if id.IsAdmin {
		return Scope{Mode: ModeAll}, nil
	}

	employeeIDs := []int64{id.EmployeeID}

	if id.IsManager {
		managed, err := r.repo.ManagedEmployeeIDs(ctx, id.EmployeeID)
		if err != nil {
			return Scope{}, fmt.Errorf("resolving managed employees: %w", err)
		}

		employeeIDs = managed
	}

	if len(employeeIDs) == 0 {
		return Scope{Mode: ModeEmployeeSet}, nil
	}

	codes, err := r.repo.AgentCodes(ctx, employeeIDs)
	if err != nil {
		return Scope{}, fmt.Errorf("resolving agent codes: %w", err)
	}

	return Scope{
		Mode:        ModeEmployeeSet,
		EmployeeIDs: employeeIDs,
		AgentCodes:  codes,
	}, nil
}
