package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/crewpay/crewpay/internal/audit"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const auditColumns = `
	id, invoice_id, action_type, changed_by, changed_at, change_reason, ip_address,
	previous_vendor_id, previous_sale_date, previous_first_name, previous_last_name,
	previous_address, previous_city, previous_status, previous_amount,
	previous_agent_id, previous_issue_date, previous_week_ending,
	current_vendor_id, current_sale_date, current_first_name, current_last_name,
	current_address, current_city, current_status, current_amount,
	current_agent_id, current_issue_date, current_week_ending
`

func (s *Store) Insert(ctx context.Context, rec *audit.Record) error {
	query := `
		INSERT INTO audit_records (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
	`

	prev := rec.Previous

	args := []any{
		rec.ID, rec.InvoiceID, string(rec.Action), rec.ChangedBy, rec.ChangedAt,
		rec.Reason, rec.IPAddress,
		prev.VendorID, prev.SaleDate, prev.FirstName, prev.LastName,
		prev.Address, prev.City, prev.Status, prev.Amount,
		prev.AgentID, prev.IssueDate, prev.WeekEnding,
	}

	if curr := rec.Current; curr != nil {
		args = append(args,
			curr.VendorID, curr.SaleDate, curr.FirstName, curr.LastName,
			curr.Address, curr.City, curr.Status, curr.Amount,
			curr.AgentID, curr.IssueDate, curr.WeekEnding,
		)
	} else {
		// Deletion: the row no longer exists, so the current side is NULL.
		args = append(args, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting audit record: %w", err)
	}

	return nil
}

// condition builder shared by Search, its count query and Summarize, so all
// three always run over the same filtered set.
type whereBuilder struct {
	conds []string
	args  []any
}

func (b *whereBuilder) add(format string, args ...any) {
	placeholders := make([]any, len(args))
	for i := range args {
		b.args = append(b.args, args[i])
		placeholders[i] = fmt.Sprintf("$%d", len(b.args))
	}

	b.conds = append(b.conds, fmt.Sprintf(format, placeholders...))
}

func (b *whereBuilder) addIn(column string, values []int64) {
	placeholders := make([]string, len(values))
	for i, v := range values {
		b.args = append(b.args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(b.args))
	}

	b.conds = append(b.conds, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
}

func (b *whereBuilder) clause() string {
	if len(b.conds) == 0 {
		return ""
	}

	return " WHERE " + strings.Join(b.conds, " AND ")
}

func buildWhere(filter audit.SearchFilter, agentCodes []int64) *whereBuilder {
	b := &whereBuilder{}

	if len(agentCodes) > 0 {
		b.addIn("COALESCE(current_agent_id, previous_agent_id)", agentCodes)
	}

	if filter.InvoiceID != nil {
		b.add("invoice_id = %s", *filter.InvoiceID)
	}

	if len(filter.AgentIDs) > 0 {
		b.addIn("COALESCE(current_agent_id, previous_agent_id)", filter.AgentIDs)
	}

	if filter.VendorID != nil {
		b.add("COALESCE(current_vendor_id, previous_vendor_id) = %s", *filter.VendorID)
	}

	if filter.CustomerName != "" {
		name := "%" + filter.CustomerName + "%"
		b.add(`CONCAT_WS(' ',
			COALESCE(current_first_name, previous_first_name),
			COALESCE(current_last_name, previous_last_name)) ILIKE %s`, name)
	}

	if filter.City != "" {
		b.add("COALESCE(current_city, previous_city) ILIKE %s", "%"+filter.City+"%")
	}

	if filter.Status != "" {
		b.add("COALESCE(current_status, previous_status) = %s", filter.Status)
	}

	if filter.SaleDateFrom != nil {
		b.add("COALESCE(current_sale_date, previous_sale_date) >= %s", *filter.SaleDateFrom)
	}

	if filter.SaleDateTo != nil {
		b.add("COALESCE(current_sale_date, previous_sale_date) <= %s", *filter.SaleDateTo)
	}

	if filter.IssueDateFrom != nil {
		b.add("COALESCE(current_issue_date, previous_issue_date) >= %s", *filter.IssueDateFrom)
	}

	if filter.IssueDateTo != nil {
		b.add("COALESCE(current_issue_date, previous_issue_date) <= %s", *filter.IssueDateTo)
	}

	if filter.WeekEndFrom != nil {
		b.add("COALESCE(current_week_ending, previous_week_ending) >= %s", *filter.WeekEndFrom)
	}

	if filter.WeekEndTo != nil {
		b.add("COALESCE(current_week_ending, previous_week_ending) <= %s", *filter.WeekEndTo)
	}

	if filter.ChangedFrom != nil {
		b.add("changed_at >= %s", *filter.ChangedFrom)
	}

	if filter.ChangedTo != nil {
		b.add("changed_at <= %s", *filter.ChangedTo)
	}

	if filter.AmountMin != nil {
		b.add("COALESCE(current_amount, previous_amount) >= %s", *filter.AmountMin)
	}

	if filter.AmountMax != nil {
		b.add("COALESCE(current_amount, previous_amount) <= %s", *filter.AmountMax)
	}

	// The diff is never stored; "changed" filters compare the snapshot
	// columns at query time.
	if filter.StatusChanged {
		b.conds = append(b.conds, "current_status IS DISTINCT FROM previous_status")
	}

	if filter.AmountChanged {
		b.conds = append(b.conds, "current_amount IS DISTINCT FROM previous_amount")
	}

	if filter.ChangedBy != nil {
		b.add("changed_by = %s", *filter.ChangedBy)
	}

	if filter.Action != nil {
		b.add("action_type = %s", string(*filter.Action))
	}

	return b
}

func (s *Store) Search(ctx context.Context, filter audit.SearchFilter, agentCodes []int64) ([]*audit.Record, int64, error) {
	b := buildWhere(filter, agentCodes)

	var total int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM audit_records"+b.clause(), b.args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting audit records: %w", err)
	}

	b.args = append(b.args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(
		"SELECT %s FROM audit_records%s ORDER BY changed_at DESC LIMIT $%d OFFSET $%d",
		auditColumns, b.clause(), len(b.args)-1, len(b.args),
	)

	rows, err := s.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("searching audit records: %w", err)
	}
	defer rows.Close()

	var recs []*audit.Record

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning audit record: %w", err)
		}

		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating audit records: %w", err)
	}

	return recs, total, nil
}

func (s *Store) Summarize(ctx context.Context, filter audit.SearchFilter, agentCodes []int64, topN int) (*audit.Summary, error) {
	b := buildWhere(filter, agentCodes)
	where := b.clause()

	summary := &audit.Summary{}

	countsQuery := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE current_status IS DISTINCT FROM previous_status),
			COUNT(*) FILTER (WHERE current_amount IS DISTINCT FROM previous_amount),
			COUNT(*) FILTER (WHERE changed_at >= NOW() - INTERVAL '30 days')
		FROM audit_records` + where

	if err := s.db.QueryRowContext(ctx, countsQuery, b.args...).Scan(
		&summary.TotalChanges,
		&summary.StatusChanges,
		&summary.AmountChanges,
		&summary.Last30Days,
	); err != nil {
		return nil, fmt.Errorf("summarizing audit records: %w", err)
	}

	topStatuses, err := s.topCounts(ctx,
		"COALESCE(current_status, previous_status)", where, b.args, topN)
	if err != nil {
		return nil, fmt.Errorf("ranking statuses: %w", err)
	}

	summary.TopStatuses = topStatuses

	topUsers, err := s.topCounts(ctx, "changed_by::text", where, b.args, topN)
	if err != nil {
		return nil, fmt.Errorf("ranking users: %w", err)
	}

	summary.TopUsers = topUsers

	return summary, nil
}

func (s *Store) topCounts(ctx context.Context, expr, where string, args []any, topN int) ([]audit.CountItem, error) {
	query := fmt.Sprintf(`
		SELECT %s AS key, COUNT(*) AS n
		FROM audit_records%s
		GROUP BY key
		ORDER BY n DESC, key ASC
		LIMIT $%d
	`, expr, where, len(args)+1)

	rows, err := s.db.QueryContext(ctx, query, append(append([]any{}, args...), topN)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []audit.CountItem

	for rows.Next() {
		var (
			key  sql.NullString
			item audit.CountItem
		)

		if err := rows.Scan(&key, &item.Count); err != nil {
			return nil, err
		}

		item.Key = key.String
		items = append(items, item)
	}

	return items, rows.Err()
}

func scanRecord(rows *sql.Rows) (*audit.Record, error) {
	var (
		rec    audit.Record
		action string
		curr   struct {
			vendorID   sql.NullInt64
			saleDate   sql.NullTime
			firstName  sql.NullString
			lastName   sql.NullString
			address    sql.NullString
			city       sql.NullString
			status     sql.NullString
			amount     decimal.NullDecimal
			agentID    sql.NullInt64
			issueDate  sql.NullTime
			weekEnding sql.NullTime
		}
	)

	err := rows.Scan(
		&rec.ID, &rec.InvoiceID, &action, &rec.ChangedBy, &rec.ChangedAt,
		&rec.Reason, &rec.IPAddress,
		&rec.Previous.VendorID, &rec.Previous.SaleDate, &rec.Previous.FirstName,
		&rec.Previous.LastName, &rec.Previous.Address, &rec.Previous.City,
		&rec.Previous.Status, &rec.Previous.Amount, &rec.Previous.AgentID,
		&rec.Previous.IssueDate, &rec.Previous.WeekEnding,
		&curr.vendorID, &curr.saleDate, &curr.firstName, &curr.lastName,
		&curr.address, &curr.city, &curr.status, &curr.amount,
		&curr.agentID, &curr.issueDate, &curr.weekEnding,
	)
	if err != nil {
		return nil, err
	}

	rec.Action = audit.ActionType(action)

	if curr.vendorID.Valid {
		rec.Current = &audit.Snapshot{
			VendorID:   curr.vendorID.Int64,
			SaleDate:   curr.saleDate.Time,
			FirstName:  curr.firstName.String,
			LastName:   curr.lastName.String,
			Address:    curr.address.String,
			City:       curr.city.String,
			Status:     curr.status.String,
			Amount:     curr.amount.Decimal,
			AgentID:    curr.agentID.Int64,
			IssueDate:  curr.issueDate.Time,
			WeekEnding: curr.weekEnding.Time,
		}
	}

	return &rec, nil
}
