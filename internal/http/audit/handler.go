package audit

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crewpay/crewpay/internal/audit"
	"github.com/crewpay/crewpay/internal/auth"
	"github.com/crewpay/crewpay/internal/ledger"
)

type Handler struct {
	svc *audit.Service
}

func NewHandler(svc *audit.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.search)
	r.Get("/summary", h.summary)
}

type snapshotResponse struct {
	VendorID   int64           `json:"vendorId"`
	SaleDate   string          `json:"saleDate"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Address    string          `json:"address"`
	City       string          `json:"city"`
	Status     string          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	AgentID    int64           `json:"agentId"`
	IssueDate  string          `json:"issueDate"`
	WeekEnding string          `json:"weekEnding"`
}

type recordResponse struct {
	ID        uuid.UUID               `json:"id"`
	InvoiceID int64                   `json:"invoiceId"`
	Action    audit.ActionType        `json:"actionType"`
	ChangedBy int64                   `json:"changedBy"`
	ChangedAt time.Time               `json:"changedAt"`
	Reason    string                  `json:"changeReason,omitempty"`
	IPAddress string                  `json:"ipAddress,omitempty"`
	Previous  snapshotResponse        `json:"previous"`
	Current   *snapshotResponse       `json:"current,omitempty"`
	Changes   map[string]audit.Change `json:"changes,omitempty"`
}

type searchResponse struct {
	Records []recordResponse `json:"records"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, total, err := h.svc.Search(r.Context(), id, filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := searchResponse{
		Records: make([]recordResponse, 0, len(records)),
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
	}

	for _, rec := range records {
		resp.Records = append(resp.Records, toRecordResponse(rec))
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type countItemResponse struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type summaryResponse struct {
	TotalChanges  int64               `json:"totalChanges"`
	StatusChanges int64               `json:"statusChanges"`
	AmountChanges int64               `json:"amountChanges"`
	Last30Days    int64               `json:"last30Days"`
	TopStatuses   []countItemResponse `json:"topStatuses"`
	TopUsers      []countItemResponse `json:"topUsers"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.svc.Summarize(r.Context(), id, filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := summaryResponse{
		TotalChanges:  summary.TotalChanges,
		StatusChanges: summary.StatusChanges,
		AmountChanges: summary.AmountChanges,
		Last30Days:    summary.Last30Days,
		TopStatuses:   toCountItems(summary.TopStatuses),
		TopUsers:      toCountItems(summary.TopUsers),
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func toCountItems(items []audit.CountItem) []countItemResponse {
	out := make([]countItemResponse, len(items))
	for i, item := range items {
		out[i] = countItemResponse{Key: item.Key, Count: item.Count}
	}

	return out
}

func toRecordResponse(rec *audit.Record) recordResponse {
	resp := recordResponse{
		ID:        rec.ID,
		InvoiceID: rec.InvoiceID,
		Action:    rec.Action,
		ChangedBy: rec.ChangedBy,
		ChangedAt: rec.ChangedAt,
		Reason:    rec.Reason,
		IPAddress: rec.IPAddress,
		Previous:  toSnapshotResponse(rec.Previous),
		Changes:   rec.Changes(),
	}

	if rec.Current != nil {
		curr := toSnapshotResponse(*rec.Current)
		resp.Current = &curr
	}

	return resp
}

func toSnapshotResponse(s audit.Snapshot) snapshotResponse {
	return snapshotResponse{
		VendorID:   s.VendorID,
		SaleDate:   formatDate(s.SaleDate),
		FirstName:  s.FirstName,
		LastName:   s.LastName,
		Address:    s.Address,
		City:       s.City,
		Status:     s.Status,
		Amount:     s.Amount,
		AgentID:    s.AgentID,
		IssueDate:  formatDate(s.IssueDate),
		WeekEnding: formatDate(s.WeekEnding),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(ledger.InputDateLayout)
}

func filterFromQuery(r *http.Request) (audit.SearchFilter, error) {
	filter := audit.SearchFilter{Page: 1, Limit: 50}

	q := r.URL.Query()

	parseID := func(name string, into **int64) error {
		s := q.Get(name)
		if s == "" {
			return nil
		}

		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return errors.New("invalid " + name)
		}

		*into = &v

		return nil
	}

	for name, into := range map[string]**int64{
		"invoiceId": &filter.InvoiceID,
		"vendorId":  &filter.VendorID,
		"changedBy": &filter.ChangedBy,
	} {
		if err := parseID(name, into); err != nil {
			return filter, err
		}
	}

	if s := q.Get("agentIds"); s != "" {
		for _, part := range strings.Split(s, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return filter, errors.New("invalid agentIds")
			}

			filter.AgentIDs = append(filter.AgentIDs, id)
		}
	}

	filter.CustomerName = q.Get("customerName")
	filter.City = q.Get("city")
	filter.Status = q.Get("status")

	parseDate := func(name string, into **time.Time) error {
		s := q.Get(name)
		if s == "" {
			return nil
		}

		t, err := ledger.ParseInputDate(s)
		if err != nil {
			return errors.New("invalid " + name + ", want MM-DD-YYYY")
		}

		*into = &t

		return nil
	}

	for name, into := range map[string]**time.Time{
		"saleDateFrom":   &filter.SaleDateFrom,
		"saleDateTo":     &filter.SaleDateTo,
		"issueDateFrom":  &filter.IssueDateFrom,
		"issueDateTo":    &filter.IssueDateTo,
		"weekEndingFrom": &filter.WeekEndFrom,
		"weekEndingTo":   &filter.WeekEndTo,
		"changedFrom":    &filter.ChangedFrom,
		"changedTo":      &filter.ChangedTo,
	} {
		if err := parseDate(name, into); err != nil {
			return filter, err
		}
	}

	parseAmount := func(name string, into **decimal.Decimal) error {
		s := q.Get(name)
		if s == "" {
			return nil
		}

		d, err := decimal.NewFromString(s)
		if err != nil {
			return errors.New("invalid " + name)
		}

		*into = &d

		return nil
	}

	if err := parseAmount("amountMin", &filter.AmountMin); err != nil {
		return filter, err
	}

	if err := parseAmount("amountMax", &filter.AmountMax); err != nil {
		return filter, err
	}

	filter.StatusChanged = q.Get("statusChanged") == "true"
	filter.AmountChanged = q.Get("amountChanged") == "true"

	if s := q.Get("actionType"); s != "" {
		action := audit.ActionType(s)
		if action != audit.ActionUpdate && action != audit.ActionDelete {
			return filter, errors.New("invalid actionType, want UPDATE or DELETE")
		}

		filter.Action = &action
	}

	if s := q.Get("page"); s != "" {
		if p, err := strconv.Atoi(s); err == nil && p > 0 {
			filter.Page = p
		}
	}

	if s := q.Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 && l <= 200 {
			filter.Limit = l
		}
	}

	return filter, nil
}
