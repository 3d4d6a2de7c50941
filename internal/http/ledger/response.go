package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/crewpay/crewpay/internal/ledger"
)

type saleResponse struct {
	InvoiceID int64           `json:"invoiceId"`
	SaleDate  string          `json:"saleDate"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Address   string          `json:"address"`
	City      string          `json:"city"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
}

type overrideResponse struct {
	OverrideID int64           `json:"overrideId"`
	Name       string          `json:"name"`
	Sales      int             `json:"sales"`
	Commission decimal.Decimal `json:"commission"`
	Total      decimal.Decimal `json:"total"`
}

type expenseResponse struct {
	ExpenseID int64           `json:"expenseId"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Notes     string          `json:"notes"`
}

type savedResponse struct {
	Sales         []saleResponse     `json:"sales"`
	Overrides     []overrideResponse `json:"overrides"`
	Expenses      []expenseResponse  `json:"expenses"`
	PayrollAmount decimal.Decimal    `json:"payrollAmount"`
	PaystubAmount decimal.Decimal    `json:"paystubAmount"`
}

type detailResponse struct {
	AgentID      int64              `json:"agentId"`
	VendorID     int64              `json:"vendorId"`
	IssueDate    string             `json:"issueDate"`
	WeekEnding   string             `json:"weekEnding"`
	EmployeeName string             `json:"employeeName"`
	VendorName   string             `json:"vendorName"`
	Sales        []saleResponse     `json:"sales"`
	Overrides    []overrideResponse `json:"overrides"`
	Expenses     []expenseResponse  `json:"expenses"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(ledger.InputDateLayout)
}

func toSaleResponses(sales []*ledger.Sale) []saleResponse {
	out := make([]saleResponse, len(sales))
	for i, s := range sales {
		out[i] = saleResponse{
			InvoiceID: s.ID,
			SaleDate:  formatDate(s.SaleDate),
			FirstName: s.FirstName,
			LastName:  s.LastName,
			Address:   s.Address,
			City:      s.City,
			Status:    s.Status,
			Amount:    s.Amount,
		}
	}

	return out
}

func toOverrideResponses(overrides []*ledger.Override) []overrideResponse {
	out := make([]overrideResponse, len(overrides))
	for i, o := range overrides {
		out[i] = overrideResponse{
			OverrideID: o.ID,
			Name:       o.Name,
			Sales:      o.SalesCount,
			Commission: o.Commission,
			Total:      o.Total,
		}
	}

	return out
}

func toExpenseResponses(expenses []*ledger.Expense) []expenseResponse {
	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = expenseResponse{
			ExpenseID: e.ID,
			Type:      e.Type,
			Amount:    e.Amount,
			Notes:     e.Notes,
		}
	}

	return out
}

func toSavedResponse(saved *ledger.SavedLedger) savedResponse {
	return savedResponse{
		Sales:         toSaleResponses(saved.Sales),
		Overrides:     toOverrideResponses(saved.Overrides),
		Expenses:      toExpenseResponses(saved.Expenses),
		PayrollAmount: saved.Totals.PayrollAmount,
		PaystubAmount: saved.Totals.PaystubAmount,
	}
}

func toDetailResponse(detail *ledger.Detail) detailResponse {
	resp := detailResponse{
		AgentID:    detail.Key.AgentID,
		VendorID:   detail.Key.VendorID,
		IssueDate:  formatDate(detail.Key.IssueDate),
		WeekEnding: formatDate(detail.WeekEnding),
		Sales:      toSaleResponses(detail.Sales),
		Overrides:  toOverrideResponses(detail.Overrides),
		Expenses:   toExpenseResponses(detail.Expenses),
	}

	if detail.Employee != nil {
		resp.EmployeeName = detail.Employee.Name
	}

	if detail.Vendor != nil {
		resp.VendorName = detail.Vendor.Name
	}

	return resp
}
