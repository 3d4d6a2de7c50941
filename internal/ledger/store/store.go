package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crewpay/crewpay/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const saleColumns = `
	id, vendor_id, sale_date, first_name, last_name, address, city, status,
	amount, agent_id, issue_date, week_ending, created_at, updated_at
`

func scanSale(s scanner) (*ledger.Sale, error) {
	var sale ledger.Sale

	if err := s.Scan(
		&sale.ID, &sale.VendorID, &sale.SaleDate, &sale.FirstName, &sale.LastName,
		&sale.Address, &sale.City, &sale.Status, &sale.Amount, &sale.AgentID,
		&sale.IssueDate, &sale.WeekEnding, &sale.CreatedAt, &sale.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &sale, nil
}

// SaveLedger applies one ledger save in a single transaction: lock and
// capture the prior state of every touched sale, apply pending deletes,
// then upsert each incoming line. Nothing is visible until commit; any
// failure rolls the whole call back.
func (s *Store) SaveLedger(ctx context.Context, params ledger.SaveParams) (*ledger.SaveResult, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	result := &ledger.SaveResult{PriorSales: map[int64]*ledger.Sale{}}

	var touched []int64

	for _, sale := range params.Sales {
		if sale.InvoiceID > 0 {
			touched = append(touched, sale.InvoiceID)
		}
	}

	touched = append(touched, params.Deletes.Sales...)

	if err := capturePriorSales(ctx, dbTx, params, touched, result.PriorSales); err != nil {
		return nil, err
	}

	for _, id := range params.Deletes.Sales {
		prior, ok := result.PriorSales[id]
		if !ok {
			continue // already gone; nothing to delete or audit
		}

		result.DeletedSales = append(result.DeletedSales, prior)
	}

	if err := deleteRows(ctx, dbTx, "sales", params.Deletes.Sales, params); err != nil {
		return nil, err
	}

	if err := deleteRows(ctx, dbTx, "overrides", params.Deletes.Overrides, params); err != nil {
		return nil, err
	}

	if err := deleteRows(ctx, dbTx, "expenses", params.Deletes.Expenses, params); err != nil {
		return nil, err
	}

	for _, p := range params.Sales {
		sale, err := upsertSale(ctx, dbTx, params, p)
		if err != nil {
			return nil, err
		}

		result.Sales = append(result.Sales, sale)
	}

	for _, p := range params.Overrides {
		o, err := upsertOverride(ctx, dbTx, params, p)
		if err != nil {
			return nil, err
		}

		result.Overrides = append(result.Overrides, o)
	}

	for _, p := range params.Expenses {
		e, err := upsertExpense(ctx, dbTx, params, p)
		if err != nil {
			return nil, err
		}

		result.Expenses = append(result.Expenses, e)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing ledger save: %w", err)
	}

	// Deleted rows no longer count as prior state for updates.
	for _, sale := range result.DeletedSales {
		delete(result.PriorSales, sale.ID)
	}

	return result, nil
}

// capturePriorSales locks the touched sale rows for the transaction and
// records their pre-mutation state for the audit trail. The query carries
// the same key guard as deleteRows: an ID belonging to another ledger is
// skipped rather than captured, so it can never surface in the audit trail.
func capturePriorSales(ctx context.Context, dbTx *sql.Tx, params ledger.SaveParams, ids []int64, into map[int64]*ledger.Sale) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := []any{params.AgentID, params.VendorID, params.IssueDate}

	for i, id := range ids {
		args = append(args, id)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	query := `SELECT ` + saleColumns + `
		FROM sales
		WHERE agent_id = $1 AND vendor_id = $2 AND issue_date = $3
			AND id IN (` + strings.Join(placeholders, ", ") + `)
		FOR UPDATE`

	rows, err := dbTx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("capturing prior sales: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return fmt.Errorf("scanning prior sale: %w", err)
		}

		into[sale.ID] = sale
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating prior sales: %w", err)
	}

	return nil
}

// deleteRows removes pending deletes, guarded by the save key so a stray ID
// can never delete a line that belongs to another ledger.
func deleteRows(ctx context.Context, dbTx *sql.Tx, table string, ids []int64, params ledger.SaveParams) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := []any{params.AgentID, params.VendorID, params.IssueDate}

	for i, id := range ids {
		args = append(args, id)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE agent_id = $1 AND vendor_id = $2 AND issue_date = $3
			AND id IN (%s)
	`, table, strings.Join(placeholders, ", "))

	if _, err := dbTx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}

	return nil
}

func upsertSale(ctx context.Context, dbTx *sql.Tx, params ledger.SaveParams, p ledger.SaleParams) (*ledger.Sale, error) {
	if p.InvoiceID > 0 {
		query := `
			UPDATE sales
			SET vendor_id = $1, sale_date = $2, first_name = $3, last_name = $4,
				address = $5, city = $6, status = $7, amount = $8,
				agent_id = $9, issue_date = $10, week_ending = $11, updated_at = NOW()
			WHERE id = $12 AND agent_id = $9 AND vendor_id = $1 AND issue_date = $10
			RETURNING ` + saleColumns

		sale, err := scanSale(dbTx.QueryRowContext(ctx, query,
			params.VendorID, p.SaleDate, p.FirstName, p.LastName,
			p.Address, p.City, p.Status, p.Amount,
			params.AgentID, params.IssueDate, params.WeekEnding, p.InvoiceID,
		))
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("sale %d: %w", p.InvoiceID, ledger.ErrNotFound)
			}

			return nil, fmt.Errorf("updating sale %d: %w", p.InvoiceID, err)
		}

		return sale, nil
	}

	query := `
		INSERT INTO sales (vendor_id, sale_date, first_name, last_name, address,
			city, status, amount, agent_id, issue_date, week_ending, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING ` + saleColumns

	sale, err := scanSale(dbTx.QueryRowContext(ctx, query,
		params.VendorID, p.SaleDate, p.FirstName, p.LastName, p.Address,
		p.City, p.Status, p.Amount, params.AgentID, params.IssueDate, params.WeekEnding,
	))
	if err != nil {
		return nil, fmt.Errorf("inserting sale: %w", err)
	}

	return sale, nil
}

const overrideColumns = `
	id, vendor_id, name, sales_count, commission, total, agent_id,
	issue_date, week_ending, created_at, updated_at
`

func scanOverride(s scanner) (*ledger.Override, error) {
	var o ledger.Override

	if err := s.Scan(
		&o.ID, &o.VendorID, &o.Name, &o.SalesCount, &o.Commission, &o.Total,
		&o.AgentID, &o.IssueDate, &o.WeekEnding, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &o, nil
}

func upsertOverride(ctx context.Context, dbTx *sql.Tx, params ledger.SaveParams, p ledger.OverrideParams) (*ledger.Override, error) {
	if p.OverrideID > 0 {
		query := `
			UPDATE overrides
			SET vendor_id = $1, name = $2, sales_count = $3, commission = $4,
				total = $5, agent_id = $6, issue_date = $7, week_ending = $8,
				updated_at = NOW()
			WHERE id = $9 AND agent_id = $6 AND vendor_id = $1 AND issue_date = $7
			RETURNING ` + overrideColumns

		o, err := scanOverride(dbTx.QueryRowContext(ctx, query,
			params.VendorID, p.Name, p.SalesCount, p.Commission,
			p.Total, params.AgentID, params.IssueDate, params.WeekEnding, p.OverrideID,
		))
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("override %d: %w", p.OverrideID, ledger.ErrNotFound)
			}

			return nil, fmt.Errorf("updating override %d: %w", p.OverrideID, err)
		}

		return o, nil
	}

	query := `
		INSERT INTO overrides (vendor_id, name, sales_count, commission, total,
			agent_id, issue_date, week_ending, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING ` + overrideColumns

	o, err := scanOverride(dbTx.QueryRowContext(ctx, query,
		params.VendorID, p.Name, p.SalesCount, p.Commission, p.Total,
		params.AgentID, params.IssueDate, params.WeekEnding,
	))
	if err != nil {
		return nil, fmt.Errorf("inserting override: %w", err)
	}

	return o, nil
}

const expenseColumns = `
	id, vendor_id, type, amount, notes, agent_id, issue_date, week_ending,
	created_at, updated_at
`

func scanExpense(s scanner) (*ledger.Expense, error) {
	var e ledger.Expense

	if err := s.Scan(
		&e.ID, &e.VendorID, &e.Type, &e.Amount, &e.Notes, &e.AgentID,
		&e.IssueDate, &e.WeekEnding, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &e, nil
}

func upsertExpense(ctx context.Context, dbTx *sql.Tx, params ledger.SaveParams, p ledger.ExpenseParams) (*ledger.Expense, error) {
	if p.ExpenseID > 0 {
		query := `
			UPDATE expenses
			SET vendor_id = $1, type = $2, amount = $3, notes = $4, agent_id = $5,
				issue_date = $6, week_ending = $7, updated_at = NOW()
			WHERE id = $8 AND agent_id = $5 AND vendor_id = $1 AND issue_date = $6
			RETURNING ` + expenseColumns

		e, err := scanExpense(dbTx.QueryRowContext(ctx, query,
			params.VendorID, p.Type, p.Amount, p.Notes, params.AgentID,
			params.IssueDate, params.WeekEnding, p.ExpenseID,
		))
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("expense %d: %w", p.ExpenseID, ledger.ErrNotFound)
			}

			return nil, fmt.Errorf("updating expense %d: %w", p.ExpenseID, err)
		}

		return e, nil
	}

	query := `
		INSERT INTO expenses (vendor_id, type, amount, notes, agent_id,
			issue_date, week_ending, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + expenseColumns

	e, err := scanExpense(dbTx.QueryRowContext(ctx, query,
		params.VendorID, p.Type, p.Amount, p.Notes, params.AgentID,
		params.IssueDate, params.WeekEnding,
	))
	if err != nil {
		return nil, fmt.Errorf("inserting expense: %w", err)
	}

	return e, nil
}

// RecomputeAggregates re-derives the payroll and paystub rows for one key by
// summing current ledger lines. Totals are always recomputed, never
// incremented, so the operation is idempotent. The upserts resolve on the
// key's unique constraint in a single statement; concurrent saves of the
// same key cannot produce duplicate rows or lost updates.
func (s *Store) RecomputeAggregates(ctx context.Context, key ledger.Key, weekEnding time.Time, agentName, vendorName string) (ledger.Totals, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	sumQuery := `
		SELECT
			COALESCE((SELECT SUM(amount) FROM sales
				WHERE agent_id = $1 AND vendor_id = $2 AND issue_date = $3), 0),
			COALESCE((SELECT SUM(total) FROM overrides
				WHERE agent_id = $1 AND vendor_id = $2 AND issue_date = $3), 0),
			COALESCE((SELECT SUM(amount) FROM expenses
				WHERE agent_id = $1 AND vendor_id = $2 AND issue_date = $3), 0)
	`

	var salesTotal, overridesTotal, expensesTotal decimal.Decimal

	err = dbTx.QueryRowContext(ctx, sumQuery, key.AgentID, key.VendorID, key.IssueDate).
		Scan(&salesTotal, &overridesTotal, &expensesTotal)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("summing ledger lines: %w", err)
	}

	amount := salesTotal.Add(overridesTotal).Add(expensesTotal)

	payrollQuery := `
		INSERT INTO payroll_records (agent_id, vendor_id, pay_date, amount, is_paid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
		ON CONFLICT (agent_id, vendor_id, pay_date)
		DO UPDATE SET amount = EXCLUDED.amount, updated_at = NOW()
	`

	if _, err := dbTx.ExecContext(ctx, payrollQuery, key.AgentID, key.VendorID, key.IssueDate, amount); err != nil {
		return ledger.Totals{}, fmt.Errorf("upserting payroll record: %w", err)
	}

	paystubQuery := `
		INSERT INTO paystub_records (agent_id, vendor_id, issue_date, amount,
			week_ending, agent_name, vendor_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (agent_id, vendor_id, issue_date)
		DO UPDATE SET amount = EXCLUDED.amount, week_ending = EXCLUDED.week_ending,
			agent_name = EXCLUDED.agent_name, vendor_name = EXCLUDED.vendor_name,
			updated_at = NOW()
	`

	if _, err := dbTx.ExecContext(ctx, paystubQuery,
		key.AgentID, key.VendorID, key.IssueDate, amount,
		weekEnding, agentName, vendorName,
	); err != nil {
		return ledger.Totals{}, fmt.Errorf("upserting paystub record: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return ledger.Totals{}, fmt.Errorf("committing aggregate recompute: %w", err)
	}

	return ledger.Totals{PayrollAmount: amount, PaystubAmount: amount}, nil
}

// GetLines loads all current lines under the key.
func (s *Store) GetLines(ctx context.Context, key ledger.Key) ([]*ledger.Sale, []*ledger.Override, []*ledger.Expense, error) {
	args := []any{key.AgentID, key.VendorID, key.IssueDate}
	where := " WHERE agent_id = $1 AND vendor_id = $2 AND issue_date = $3 ORDER BY id"

	salesRows, err := s.db.QueryContext(ctx, "SELECT "+saleColumns+" FROM sales"+where, args...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading sales: %w", err)
	}
	defer salesRows.Close()

	var sales []*ledger.Sale

	for salesRows.Next() {
		sale, err := scanSale(salesRows)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("scanning sale: %w", err)
		}

		sales = append(sales, sale)
	}

	if err := salesRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterating sales: %w", err)
	}

	overrideRows, err := s.db.QueryContext(ctx, "SELECT "+overrideColumns+" FROM overrides"+where, args...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading overrides: %w", err)
	}
	defer overrideRows.Close()

	var overrides []*ledger.Override

	for overrideRows.Next() {
		o, err := scanOverride(overrideRows)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("scanning override: %w", err)
		}

		overrides = append(overrides, o)
	}

	if err := overrideRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterating overrides: %w", err)
	}

	expenseRows, err := s.db.QueryContext(ctx, "SELECT "+expenseColumns+" FROM expenses"+where, args...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading expenses: %w", err)
	}
	defer expenseRows.Close()

	var expenses []*ledger.Expense

	for expenseRows.Next() {
		e, err := scanExpense(expenseRows)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("scanning expense: %w", err)
		}

		expenses = append(expenses, e)
	}

	if err := expenseRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterating expenses: %w", err)
	}

	return sales, overrides, expenses, nil
}
