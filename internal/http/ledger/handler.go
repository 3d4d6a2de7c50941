package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/crewpay/crewpay/internal/auth"
	"github.com/crewpay/crewpay/internal/ledger"
)

var validate = validator.New()

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.save)
	r.Get("/{agentID}/{vendorID}/{issueDate}", h.detail)
}

type saleDTO struct {
	InvoiceID int64           `json:"invoiceId,omitempty"`
	SaleDate  string          `json:"saleDate" validate:"required"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Address   string          `json:"address"`
	City      string          `json:"city"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
}

type overrideDTO struct {
	OverrideID int64           `json:"overrideId,omitempty"`
	Name       string          `json:"name"`
	Sales      int             `json:"sales"`
	Commission decimal.Decimal `json:"commission"`
	Total      decimal.Decimal `json:"total"`
}

type expenseDTO struct {
	ExpenseID int64           `json:"expenseId,omitempty"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Notes     string          `json:"notes"`
}

type pendingDeletesDTO struct {
	Sales     []int64 `json:"sales,omitempty"`
	Overrides []int64 `json:"overrides,omitempty"`
	Expenses  []int64 `json:"expenses,omitempty"`
}

type auditMetaDTO struct {
	UserID    int64  `json:"userId"`
	IPAddress string `json:"ipAddress"`
	Reason    string `json:"reason,omitempty"`
}

type saveRequest struct {
	AgentID        int64              `json:"agentId" validate:"required,gt=0"`
	VendorID       int64              `json:"vendorId" validate:"required,gt=0"`
	IssueDate      string             `json:"issueDate" validate:"required"`
	WeekEnding     string             `json:"weekEnding" validate:"required"`
	Sales          []saleDTO          `json:"sales" validate:"dive"`
	Overrides      []overrideDTO      `json:"overrides" validate:"dive"`
	Expenses       []expenseDTO       `json:"expenses" validate:"dive"`
	PendingDeletes *pendingDeletesDTO `json:"pendingDeletes,omitempty"`
	AuditMeta      *auditMetaDTO      `json:"auditMeta,omitempty"`
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params, err := toSaveParams(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if params.Audit == nil {
		host, _, splitErr := net.SplitHostPort(r.RemoteAddr)
		if splitErr != nil {
			host = r.RemoteAddr
		}

		params.Audit = &ledger.AuditMeta{UserID: id.EmployeeID, IPAddress: host}
	}

	saved, err := h.svc.Save(r.Context(), id, *params)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toSavedResponse(saved)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
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

	detail, err := h.svc.GetDetail(r.Context(), id, key)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toDetailResponse(detail)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
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

func toSaveParams(req saveRequest) (*ledger.SaveParams, error) {
	issueDate, err := ledger.ParseInputDate(req.IssueDate)
	if err != nil {
		return nil, errors.New("invalid issueDate, want MM-DD-YYYY")
	}

	weekEnding, err := ledger.ParseInputDate(req.WeekEnding)
	if err != nil {
		return nil, errors.New("invalid weekEnding, want MM-DD-YYYY")
	}

	params := &ledger.SaveParams{
		AgentID:    req.AgentID,
		VendorID:   req.VendorID,
		IssueDate:  issueDate,
		WeekEnding: weekEnding,
	}

	for _, s := range req.Sales {
		saleDate, err := ledger.ParseInputDate(s.SaleDate)
		if err != nil {
			return nil, errors.New("invalid saleDate, want MM-DD-YYYY")
		}

		params.Sales = append(params.Sales, ledger.SaleParams{
			InvoiceID: s.InvoiceID,
			SaleDate:  saleDate,
			FirstName: s.FirstName,
			LastName:  s.LastName,
			Address:   s.Address,
			City:      s.City,
			Status:    s.Status,
			Amount:    s.Amount,
		})
	}

	for _, o := range req.Overrides {
		params.Overrides = append(params.Overrides, ledger.OverrideParams{
			OverrideID: o.OverrideID,
			Name:       o.Name,
			SalesCount: o.Sales,
			Commission: o.Commission,
			Total:      o.Total,
		})
	}

	for _, e := range req.Expenses {
		params.Expenses = append(params.Expenses, ledger.ExpenseParams{
			ExpenseID: e.ExpenseID,
			Type:      e.Type,
			Amount:    e.Amount,
			Notes:     e.Notes,
		})
	}

	if req.PendingDeletes != nil {
		params.Deletes = ledger.PendingDeletes{
			Sales:     req.PendingDeletes.Sales,
			Overrides: req.PendingDeletes.Overrides,
			Expenses:  req.PendingDeletes.Expenses,
		}
	}

	if req.AuditMeta != nil {
		params.Audit = &ledger.AuditMeta{
			UserID:    req.AuditMeta.UserID,
			IPAddress: req.AuditMeta.IPAddress,
			Reason:    req.AuditMeta.Reason,
		}
	}

	return params, nil
}

func writeError(w http.ResponseWriter, err error) {
	var vErr *ledger.ValidationError

	switch {
	case errors.As(err, &vErr):
		http.Error(w, vErr.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrUnauthorized):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ledger.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		// Transaction and lookup failures are opaque: no partial success
		// semantics to report.
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
