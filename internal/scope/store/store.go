package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ManagedEmployeeIDs(ctx context.Context, managerID int64) ([]int64, error) {
	query := `
		SELECT m.employee_id
		FROM manager_assignments m
		JOIN employees e ON e.id = m.employee_id
		WHERE m.manager_id = $1 AND e.is_active
		ORDER BY m.employee_id
	`

	rows, err := s.db.QueryContext(ctx, query, managerID)
	if err != nil {
		return nil, fmt.Errorf("listing managed employees: %w", err)
	}
	defer rows.Close()

	var ids []int64

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning employee id: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating managed employees: %w", err)
	}

	return ids, nil
}

func (s *Store) AgentCodes(ctx context.Context, employeeIDs []int64) ([]int64, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(employeeIDs))
	args := make([]any, len(employeeIDs))

	for i, id := range employeeIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `
		SELECT agent_code
		FROM employee_agent_codes
		WHERE employee_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY agent_code
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
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

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating agent codes: %w", err)
	}

	return codes, nil
}
