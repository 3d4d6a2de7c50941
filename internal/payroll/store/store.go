package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crewpay/crewpay/internal/ledger"
	"github.com/crewpay/crewpay/internal/payroll"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListKeys pages over paystub keys, joined to their payroll rows for the
// paid flag. Every filter, including the caller's agent-code scope, is a
// SQL predicate so pagination counts can never leak out-of-scope rows.
func (s *Store) ListKeys(ctx context.Context, filter payroll.ListFilter, agentCodes []int64) ([]payroll.KeyRow, int64, error) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if len(agentCodes) > 0 {
		placeholders := make([]string, len(agentCodes))
		for i, code := range agentCodes {
			args = append(args, code)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}

		conds = append(conds, "ps.agent_id IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.VendorID != nil {
		add("ps.vendor_id = $%d", *filter.VendorID)
	}

	if filter.IssueDate != nil {
		add("ps.issue_date = $%d", *filter.IssueDate)
	}

	if filter.StartDate != nil {
		add("ps.issue_date >= $%d", *filter.StartDate)
	}

	if filter.EndDate != nil {
		add("ps.issue_date <= $%d", *filter.EndDate)
	}

	if filter.Status != nil {
		add("pr.is_paid = $%d", *filter.Status == payroll.StatusPaid)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	from := `
		FROM paystub_records ps
		LEFT JOIN payroll_records pr
			ON pr.agent_id = ps.agent_id
			AND pr.vendor_id = ps.vendor_id
			AND pr.pay_date = ps.issue_date
	`

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting paystub keys: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	query := fmt.Sprintf(`
		SELECT ps.agent_id, ps.vendor_id, ps.issue_date, ps.amount, ps.week_ending,
			ps.agent_name, ps.vendor_name, COALESCE(pr.is_paid, FALSE),
			GREATEST(ps.updated_at, COALESCE(pr.updated_at, ps.updated_at))
		%s%s
		ORDER BY ps.issue_date DESC, ps.agent_id, ps.vendor_id
		LIMIT $%d OFFSET $%d
	`, from, where, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing paystub keys: %w", err)
	}
	defer rows.Close()

	var keyRows []payroll.KeyRow

	for rows.Next() {
		var kr payroll.KeyRow

		if err := rows.Scan(
			&kr.Key.AgentID, &kr.Key.VendorID, &kr.Key.IssueDate, &kr.Amount,
			&kr.WeekEnding, &kr.AgentName, &kr.VendorName, &kr.IsPaid, &kr.LastUpdated,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning paystub key: %w", err)
		}

		keyRows = append(keyRows, kr)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating paystub keys: %w", err)
	}

	return keyRows, total, nil
}

// AggregateTotals computes per-key sums for a page of keys with one grouped
// query per source table, constrained by IN lists drawn from the page. The
// IN lists form a superset of the requested keys; extra combinations fall
// out when results are joined back by composite key.
func (s *Store) AggregateTotals(ctx context.Context, keys []ledger.Key) (map[string]payroll.KeyTotals, error) {
	totals := make(map[string]payroll.KeyTotals, len(keys))
	if len(keys) == 0 {
		return totals, nil
	}

	agentIDs := distinctInt64(keys, func(k ledger.Key) int64 { return k.AgentID })
	vendorIDs := distinctInt64(keys, func(k ledger.Key) int64 { return k.VendorID })
	issueDates := distinctDates(keys)

	wanted := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wanted[k.String()] = struct{}{}
	}

	type tableSum struct {
		table  string
		column string
		apply  func(t *payroll.KeyTotals, sum decimal.Decimal, count int64)
	}

	tables := []tableSum{
		{"sales", "amount", func(t *payroll.KeyTotals, sum decimal.Decimal, count int64) {
			t.SalesTotal = sum
			t.LineCount += count
		}},
		{"overrides", "total", func(t *payroll.KeyTotals, sum decimal.Decimal, count int64) {
			t.OverridesTotal = sum
			t.LineCount += count
		}},
		{"expenses", "amount", func(t *payroll.KeyTotals, sum decimal.Decimal, count int64) {
			t.ExpensesTotal = sum
			t.LineCount += count
		}},
	}

	for _, ts := range tables {
		var args []any

		agentList := placeholderList(&args, agentIDs)
		vendorList := placeholderList(&args, vendorIDs)
		dateList := placeholderList(&args, issueDates)

		query := fmt.Sprintf(`
			SELECT agent_id, vendor_id, issue_date, SUM(%s), COUNT(*)
			FROM %s
			WHERE agent_id IN (%s) AND vendor_id IN (%s) AND issue_date IN (%s)
			GROUP BY agent_id, vendor_id, issue_date
		`, ts.column, ts.table, agentList, vendorList, dateList)

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("aggregating %s: %w", ts.table, err)
		}

		for rows.Next() {
			var (
				key   ledger.Key
				sum   decimal.Decimal
				count int64
			)

			if err := rows.Scan(&key.AgentID, &key.VendorID, &key.IssueDate, &sum, &count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning %s aggregate: %w", ts.table, err)
			}

			key.IssueDate = ledger.NormalizeDate(key.IssueDate)

			ck := key.String()
			if _, ok := wanted[ck]; !ok {
				continue
			}

			t := totals[ck]
			ts.apply(&t, sum, count)
			totals[ck] = t
		}

		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterating %s aggregates: %w", ts.table, err)
		}

		rows.Close()
	}

	return totals, nil
}

// MarkPaid flips the one-way paid flag. Already-paid rows are left alone.
func (s *Store) MarkPaid(ctx context.Context, key ledger.Key) error {
	query := `
		UPDATE payroll_records
		SET is_paid = TRUE, updated_at = NOW()
		WHERE agent_id = $1 AND vendor_id = $2 AND pay_date = $3
	`

	res, err := s.db.ExecContext(ctx, query, key.AgentID, key.VendorID, key.IssueDate)
	if err != nil {
		return fmt.Errorf("marking payroll paid: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}

	if affected == 0 {
		return payroll.ErrNotFound
	}

	return nil
}

func distinctInt64(keys []ledger.Key, pick func(ledger.Key) int64) []int64 {
	seen := make(map[int64]struct{}, len(keys))

	var out []int64

	for _, k := range keys {
		v := pick(k)
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}

func distinctDates(keys []ledger.Key) []time.Time {
	seen := make(map[string]struct{}, len(keys))

	var out []time.Time

	for _, k := range keys {
		d := k.IssueDate.Format(time.DateOnly)
		if _, ok := seen[d]; ok {
			continue
		}

		seen[d] = struct{}{}
		out = append(out, k.IssueDate)
	}

	return out
}

func placeholderList[T any](args *[]any, values []T) string {
	placeholders := make([]string, len(values))
	for i, v := range values {
		*args = append(*args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(*args))
	}

	return strings.Join(placeholders, ", ")
}
