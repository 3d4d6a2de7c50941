package payroll

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/crewpay/crewpay/internal/auth"
	"github.com/crewpay/crewpay/internal/ledger"
	"github.com/crewpay/crewpay/internal/payroll"
)

type Handler struct {
	svc *payroll.Service
}

func NewHandler(svc *payroll.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/{agentID}/{vendorID}/{issueDate}/paid", h.markPaid)
}

type rowResponse struct {
	EmployeeID     int64           `json:"employeeId"`
	EmployeeName   string          `json:"employeeName"`
	AgentID        int64           `json:"agentId"`
	VendorID       int64           `json:"vendorId"`
	VendorName     string          `json:"vendorName"`
	IssueDate      string          `json:"issueDate"`
	WeekEnding     string          `json:"weekEnding"`
	TotalSales     decimal.Decimal `json:"totalSales"`
	TotalOverrides decimal.Decimal `json:"totalOverrides"`
	TotalExpenses  decimal.Decimal `json:"totalExpenses"`
	NetPay         decimal.Decimal `json:"netPay"`
	LineCount      int64           `json:"lineCount"`
	IsPaid         bool            `json:"isPaid"`
	LastUpdated    time.Time       `json:"lastUpdated"`
}

type listResponse struct {
	Rows  []rowResponse `json:"rows"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.svc.List(r.Context(), id, filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := listResponse{
		Rows:  make([]rowResponse, 0, len(page.Rows)),
		Total: page.Total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}

	for _, row := range page.Rows {
		resp.Rows = append(resp.Rows, rowResponse{
			EmployeeID:     row.EmployeeID,
			EmployeeName:   row.EmployeeName,
			AgentID:        row.AgentID,
			VendorID:       row.VendorID,
			VendorName:     row.VendorName,
			IssueDate:      row.IssueDate.Format(ledger.InputDateLayout),
			WeekEnding:     row.WeekEnding.Format(ledger.InputDateLayout),
			TotalSales:     row.TotalSales,
			TotalOverrides: row.TotalOverrides,
			TotalExpenses:  row.TotalExpenses,
			NetPay:         row.NetPay,
			LineCount:      row.LineCount,
			IsPaid:         row.IsPaid,
			LastUpdated:    row.LastUpdated,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	key, err := keyFromURL(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.MarkPaid(r.Context(), id, key); err != nil {
		switch {
		case errors.Is(err, payroll.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, payroll.ErrNotFound):
			http.Error(w, "payroll record not found", http.StatusNotFound)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func keyFromURL(r *http.Request) (ledger.Key, error) {
	agentID, err := strconv.ParseInt(chi.URLParam(r, "agentID"), 10, 64)
	if err != nil {
		return ledger.Key{}, errors.New("invalid agent id")
	}

	vendorID, err := strconv.ParseInt(chi.URLParam(r, "vendorID"), 10, 64)
	if err != nil {
		return ledger.Key{}, errors.New("invalid vendor id")
	}

	issueDate, err := ledger.ParseInputDate(chi.URLParam(r, "issueDate"))
	if err != nil {
		return ledger.Key{}, errors.New("invalid issue date, want MM-DD-YYYY")
	}

	return ledger.Key{AgentID: agentID, VendorID: vendorID, IssueDate: issueDate}, nil
}

func filterFromQuery(r *http.Request) (payroll.ListFilter, error) {
	filter := payroll.ListFilter{Page: 1, Limit: 25}
	q := r.URL.Query()

	if s := q.Get("employeeId"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return filter, errors.New("invalid employeeId")
		}

		filter.EmployeeID = new(id)
	}

	if s := q.Get("vendorId"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return filter, errors.New("invalid vendorId")
		}

		filter.VendorID = new(id)
	}

	if s := q.Get("issueDate"); s != "" {
		t, err := ledger.ParseInputDate(s)
		if err != nil {
			return filter, errors.New("invalid issueDate, want MM-DD-YYYY")
		}

		filter.IssueDate = new(t)
	}

	if s := q.Get("startDate"); s != "" {
		t, err := ledger.ParseInputDate(s)
		if err != nil {
			return filter, errors.New("invalid startDate, want MM-DD-YYYY")
		}

		filter.StartDate = new(t)
	}

	if s := q.Get("endDate"); s != "" {
		t, err := ledger.ParseInputDate(s)
		if err != nil {
			return filter, errors.New("invalid endDate, want MM-DD-YYYY")
		}

		filter.EndDate = new(t)
	}

	if s := q.Get("status"); s != "" {
		status := payroll.Status(s)
		if status != payroll.StatusPaid && status != payroll.StatusUnpaid {
			return filter, errors.New("invalid status, want paid or unpaid")
		}

		filter.Status = new(status)
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
