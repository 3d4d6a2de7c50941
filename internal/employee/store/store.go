package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/crewpay/crewpay/internal/employee"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id int64) (*employee.Employee, error) {
	query := `
		SELECT id, name, is_admin, is_manager, is_active
		FROM employees
		WHERE id = $1
	`

	emp, err := scanEmployee(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, employee.ErrNotFound
		}

		return nil, fmt.Errorf("getting employee: %w", err)
	}

	if err := s.loadAgentCodes(ctx, emp); err != nil {
		return nil, err
	}

	return emp, nil
}

// ByAgentCode resolves the employee holding an external agent code.
func (s *Store) ByAgentCode(ctx context.Context, code int64) (*employee.Employee, error) {
	query := `
		SELECT e.id, e.name, e.is_admin, e.is_manager, e.is_active
		FROM employees e
		JOIN employee_agent_codes c ON c.employee_id = e.id
		WHERE c.agent_code = $1
	`

	emp, err := scanEmployee(s.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, employee.ErrNotFound
		}

		return nil, fmt.Errorf("getting employee by agent code: %w", err)
	}

	if err := s.loadAgentCodes(ctx, emp); err != nil {
		return nil, err
	}

	return emp, nil
}

// ByAgentCodes maps each agent code in the list to its employee. Codes that
// match no employee are simply absent from the result.
func (s *Store) ByAgentCodes(ctx context.Context, codes []int64) (map[int64]*employee.Employee, error) {
	if len(codes) == 0 {
		return map[int64]*employee.Employee{}, nil
	}

	placeholders := make([]string, len(codes))
	args := make([]any, len(codes))

	for i, c := range codes {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = c
	}

	query := `
		SELECT c.agent_code, e.id, e.name, e.is_admin, e.is_manager, e.is_active
		FROM employees e
		JOIN employee_agent_codes c ON c.employee_id = e.id
		WHERE c.agent_code IN (` + strings.Join(placeholders, ", ") + `)
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("getting employees by agent codes: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]*employee.Employee, len(codes))

	for rows.Next() {
		var (
			code int64
			emp  employee.Employee
		)

		if err := rows.Scan(&code, &emp.ID, &emp.Name, &emp.IsAdmin, &emp.IsManager, &emp.IsActive); err != nil {
			return nil, fmt.Errorf("scanning employee: %w", err)
		}

		result[code] = &emp
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating employees: %w", err)
	}

	return result, nil
}

// AgentCodesFor lists the external agent codes held by one employee.
func (s *Store) AgentCodesFor(ctx context.Context, employeeID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT agent_code FROM employee_agent_codes WHERE employee_id = $1 ORDER BY agent_code",
		employeeID)
	if err != nil {
		return nil, fmt.Errorf("listing agent codes: %w", err)
	}
	defer rows.Close()

	var codes []int64

	for rows.Next() {
		var code int64
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scanning agent code: %w", err)
		}

		codes = append(codes, code)
	}

	return codes, rows.Err()
}

func (s *Store) loadAgentCodes(ctx context.Context, emp *employee.Employee) error {
	codes, err := s.AgentCodesFor(ctx, emp.ID)
	if err != nil {
		return err
	}

	emp.AgentCodes = codes

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(s scanner) (*employee.Employee, error) {
	var emp employee.Employee
	if err := s.Scan(&emp.ID, &emp.Name, &emp.IsAdmin, &emp.IsManager, &emp.IsActive); err != nil {
		return nil, err
	}

	return &emp, nil
}
