package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/crewpay/crewpay/internal/audit"
	"github.com/crewpay/crewpay/internal/auth"
	"github.com/crewpay/crewpay/internal/employee"
	"github.com/crewpay/crewpay/internal/ledger"
	"github.com/crewpay/crewpay/internal/scope"
	"github.com/crewpay/crewpay/internal/vendorpkg"
)

var (
	issueDate  = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	weekEnding = time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
)

func validSaveParams() ledger.SaveParams {
	return ledger.SaveParams{
		AgentID:    101,
		VendorID:   5,
		IssueDate:  issueDate,
		WeekEnding: weekEnding,
		Sales: []ledger.SaleParams{
			{
				SaleDate:  time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
				FirstName: "Pat",
				LastName:  "Doe",
				Status:    "installed",
				Amount:    decimal.NewFromInt(500),
			},
		},
	}
}

func TestSaveParams_Validate(t *testing.T) {
	type testCase struct {
		name      string
		mutate    func(p *ledger.SaveParams)
		wantField string
	}

	tests := []testCase{
		{
			name:   "Valid",
			mutate: func(p *ledger.SaveParams) {},
		},
		{
			name:      "ZeroAgent",
			mutate:    func(p *ledger.SaveParams) { p.AgentID = 0 },
			wantField: "agentId",
		},
		{
			name:      "NegativeVendor",
			mutate:    func(p *ledger.SaveParams) { p.VendorID = -1 },
			wantField: "vendorId",
		},
		{
			name:      "MissingIssueDate",
			mutate:    func(p *ledger.SaveParams) { p.IssueDate = time.Time{} },
			wantField: "issueDate",
		},
		{
			name:      "MissingWeekEnding",
			mutate:    func(p *ledger.SaveParams) { p.WeekEnding = time.Time{} },
			wantField: "weekEnding",
		},
		{
			name:      "SaleWithoutDate",
			mutate:    func(p *ledger.SaveParams) { p.Sales[0].SaleDate = time.Time{} },
			wantField: "sales",
		},
		{
			name:      "NegativeSaleAmount",
			mutate:    func(p *ledger.SaveParams) { p.Sales[0].Amount = decimal.NewFromInt(-10) },
			wantField: "sales",
		},
		{
			name: "NegativeOverrideTotal",
			mutate: func(p *ledger.SaveParams) {
				p.Overrides = []ledger.OverrideParams{{Total: decimal.NewFromInt(-1)}}
			},
			wantField: "overrides",
		},
		{
			name: "NegativeExpenseAmount",
			mutate: func(p *ledger.SaveParams) {
				p.Expenses = []ledger.ExpenseParams{{Amount: decimal.NewFromInt(-1)}}
			},
			wantField: "expenses",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validSaveParams()
			tt.mutate(&params)

			err := params.Validate()

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verr *ledger.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

type serviceMocks struct {
	repo      *ledger.MockRepository
	scopes    *ledger.MockScopeResolver
	employees *ledger.MockEmployeeDirectory
	vendors   *ledger.MockVendorDirectory
	auditor   *ledger.MockAuditRecorder
}

func newServiceMocks(ctrl *gomock.Controller) serviceMocks {
	return serviceMocks{
		repo:      ledger.NewMockRepository(ctrl),
		scopes:    ledger.NewMockScopeResolver(ctrl),
		employees: ledger.NewMockEmployeeDirectory(ctrl),
		vendors:   ledger.NewMockVendorDirectory(ctrl),
		auditor:   ledger.NewMockAuditRecorder(ctrl),
	}
}

func (m serviceMocks) service() *ledger.Service {
	return ledger.NewService(m.repo, m.scopes, m.employees, m.vendors, m.auditor)
}

func (m serviceMocks) expectDirectories() {
	m.employees.EXPECT().
		ByAgentCode(gomock.Any(), int64(101)).
		Return(&employee.Employee{ID: 1, Name: "Jane Smith"}, nil)
	m.vendors.EXPECT().
		Get(gomock.Any(), int64(5)).
		Return(&vendor.Vendor{ID: 5, Name: "Acme Solar"}, nil)
}

func TestService_Save(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)
	svc := m.service()

	params := validSaveParams()
	key := ledger.Key{AgentID: 101, VendorID: 5, IssueDate: issueDate}

	m.scopes.EXPECT().
		Resolve(gomock.Any(), auth.Identity{EmployeeID: 1, IsAdmin: true}).
		Return(scope.Scope{Mode: scope.ModeAll}, nil)
	m.expectDirectories()
	m.repo.EXPECT().
		SaveLedger(gomock.Any(), params).
		Return(&ledger.SaveResult{
			Sales: []*ledger.Sale{
				{ID: 1, AgentID: 101, VendorID: 5, Amount: decimal.NewFromInt(500)},
			},
			PriorSales: map[int64]*ledger.Sale{},
		}, nil)
	m.repo.EXPECT().
		RecomputeAggregates(gomock.Any(), key, weekEnding, "Jane Smith", "Acme Solar").
		Return(ledger.Totals{
			PayrollAmount: decimal.NewFromInt(500),
			PaystubAmount: decimal.NewFromInt(500),
		}, nil)

	got, err := svc.Save(context.Background(), auth.Identity{EmployeeID: 1, IsAdmin: true}, params)
	svc.Wait()

	require.NoError(t, err)
	require.Len(t, got.Sales, 1)
	assert.True(t, got.Totals.PayrollAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, got.Totals.PaystubAmount.Equal(decimal.NewFromInt(500)))
}

func TestService_Save_OutOfScope(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)
	svc := m.service()

	m.scopes.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(scope.Scope{Mode: scope.ModeEmployeeSet, AgentCodes: []int64{202}}, nil)

	got, err := svc.Save(context.Background(), auth.Identity{EmployeeID: 2}, validSaveParams())

	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
	assert.Nil(t, got)
}

func TestService_Save_UnknownAgent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)
	svc := m.service()

	m.scopes.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(scope.Scope{Mode: scope.ModeAll}, nil)
	m.employees.EXPECT().
		ByAgentCode(gomock.Any(), int64(101)).
		Return(nil, employee.ErrNotFound)

	_, err := svc.Save(context.Background(), auth.Identity{IsAdmin: true}, validSaveParams())

	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestService_Save_TransactionFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)
	svc := m.service()

	m.scopes.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(scope.Scope{Mode: scope.ModeAll}, nil)
	m.expectDirectories()
	m.repo.EXPECT().
		SaveLedger(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("deadlock detected"))

	_, err := svc.Save(context.Background(), auth.Identity{IsAdmin: true}, validSaveParams())

	assert.ErrorIs(t, err, ledger.ErrTransaction)
}

func TestService_Save_AuditsUpdatesAndDeletes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)
	svc := m.service()

	params := validSaveParams()
	params.Sales[0].InvoiceID = 7
	params.Deletes = ledger.PendingDeletes{Sales: []int64{9}}
	params.Audit = &ledger.AuditMeta{UserID: 1, IPAddress: "10.0.0.1", Reason: "correction"}

	prior := &ledger.Sale{
		ID: 7, AgentID: 101, VendorID: 5,
		Status: "pending", Amount: decimal.NewFromInt(400),
	}
	updated := &ledger.Sale{
		ID: 7, AgentID: 101, VendorID: 5,
		Status: "installed", Amount: decimal.NewFromInt(500),
	}
	deleted := &ledger.Sale{
		ID: 9, AgentID: 101, VendorID: 5,
		Status: "cancelled", Amount: decimal.NewFromInt(100),
	}

	m.scopes.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(scope.Scope{Mode: scope.ModeAll}, nil)
	m.expectDirectories()
	m.repo.EXPECT().
		SaveLedger(gomock.Any(), params).
		Return(&ledger.SaveResult{
			Sales:        []*ledger.Sale{updated},
			PriorSales:   map[int64]*ledger.Sale{7: prior},
			DeletedSales: []*ledger.Sale{deleted},
		}, nil)
	m.repo.EXPECT().
		RecomputeAggregates(gomock.Any(), gomock.Any(), weekEnding, "Jane Smith", "Acme Solar").
		Return(ledger.Totals{}, nil)

	var recorded []*audit.Record
	m.auditor.EXPECT().
		RecordChange(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *audit.Record) (uuid.UUID, error) {
			recorded = append(recorded, rec)
			return uuid.New(), nil
		}).
		Times(2)

	_, err := svc.Save(context.Background(), auth.Identity{IsAdmin: true}, params)
	require.NoError(t, err)

	svc.Wait()

	require.Len(t, recorded, 2)

	update := recorded[0]
	assert.Equal(t, audit.ActionUpdate, update.Action)
	assert.Equal(t, int64(7), update.InvoiceID)
	assert.Equal(t, int64(1), update.ChangedBy)
	assert.Equal(t, "10.0.0.1", update.IPAddress)
	assert.Equal(t, "correction", update.Reason)
	assert.Equal(t, "pending", update.Previous.Status)
	require.NotNil(t, update.Current)
	assert.Equal(t, "installed", update.Current.Status)

	del := recorded[1]
	assert.Equal(t, audit.ActionDelete, del.Action)
	assert.Equal(t, int64(9), del.InvoiceID)
	assert.Equal(t, "cancelled", del.Previous.Status)
	assert.Nil(t, del.Current)
}

func TestService_Save_InsertsNotAudited(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)
	svc := m.service()

	m.scopes.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(scope.Scope{Mode: scope.ModeAll}, nil)
	m.expectDirectories()
	m.repo.EXPECT().
		SaveLedger(gomock.Any(), gomock.Any()).
		Return(&ledger.SaveResult{
			Sales:      []*ledger.Sale{{ID: 42, AgentID: 101, VendorID: 5}},
			PriorSales: map[int64]*ledger.Sale{},
		}, nil)
	m.repo.EXPECT().
		RecomputeAggregates(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ledger.Totals{}, nil)

	// No RecordChange expectation: a fresh insert produces no audit record.
	_, err := svc.Save(context.Background(), auth.Identity{IsAdmin: true}, validSaveParams())
	require.NoError(t, err)

	svc.Wait()
}

func TestService_Save_AuditFailureDoesNotFailSave(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)
	svc := m.service()

	params := validSaveParams()
	params.Sales[0].InvoiceID = 7

	prior := &ledger.Sale{ID: 7, Amount: decimal.NewFromInt(400)}
	updated := &ledger.Sale{ID: 7, Amount: decimal.NewFromInt(500)}

	m.scopes.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(scope.Scope{Mode: scope.ModeAll}, nil)
	m.expectDirectories()
	m.repo.EXPECT().
		SaveLedger(gomock.Any(), params).
		Return(&ledger.SaveResult{
			Sales:      []*ledger.Sale{updated},
			PriorSales: map[int64]*ledger.Sale{7: prior},
		}, nil)
	m.repo.EXPECT().
		RecomputeAggregates(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ledger.Totals{}, nil)
	m.auditor.EXPECT().
		RecordChange(gomock.Any(), gomock.Any()).
		Return(uuid.Nil, errors.New("audit store down"))

	got, err := svc.Save(context.Background(), auth.Identity{IsAdmin: true}, params)
	svc.Wait()

	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestService_Save_RecomputeFailureStillAudits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)
	svc := m.service()

	params := validSaveParams()
	params.Sales[0].InvoiceID = 7

	prior := &ledger.Sale{ID: 7, Amount: decimal.NewFromInt(400)}
	updated := &ledger.Sale{ID: 7, Amount: decimal.NewFromInt(500)}

	m.scopes.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(scope.Scope{Mode: scope.ModeAll}, nil)
	m.expectDirectories()
	m.repo.EXPECT().
		SaveLedger(gomock.Any(), params).
		Return(&ledger.SaveResult{
			Sales:      []*ledger.Sale{updated},
			PriorSales: map[int64]*ledger.Sale{7: prior},
		}, nil)
	m.repo.EXPECT().
		RecomputeAggregates(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ledger.Totals{}, errors.New("connection reset"))

	// The save transaction committed before the recompute failed, so the
	// update must still reach the audit trail.
	var recorded []*audit.Record
	m.auditor.EXPECT().
		RecordChange(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *audit.Record) (uuid.UUID, error) {
			recorded = append(recorded, rec)
			return uuid.New(), nil
		})

	got, err := svc.Save(context.Background(), auth.Identity{IsAdmin: true}, params)
	svc.Wait()

	require.Error(t, err)
	assert.Nil(t, got)
	require.Len(t, recorded, 1)
	assert.Equal(t, audit.ActionUpdate, recorded[0].Action)
	assert.Equal(t, int64(7), recorded[0].InvoiceID)
}

func TestService_GetDetail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)
	svc := m.service()

	key := ledger.Key{AgentID: 101, VendorID: 5, IssueDate: issueDate}

	m.scopes.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(scope.Scope{Mode: scope.ModeEmployeeSet, EmployeeIDs: []int64{1}, AgentCodes: []int64{101}}, nil)
	m.expectDirectories()
	m.repo.EXPECT().
		GetLines(gomock.Any(), key).
		Return(
			[]*ledger.Sale{{ID: 1, WeekEnding: weekEnding}},
			[]*ledger.Override{{ID: 2, WeekEnding: weekEnding}},
			nil, nil,
		)

	got, err := svc.GetDetail(context.Background(), auth.Identity{EmployeeID: 1}, key)

	require.NoError(t, err)
	assert.Equal(t, key, got.Key)
	assert.Equal(t, weekEnding, got.WeekEnding)
	assert.Equal(t, "Jane Smith", got.Employee.Name)
	assert.Equal(t, "Acme Solar", got.Vendor.Name)
	assert.Len(t, got.Sales, 1)
	assert.Len(t, got.Overrides, 1)
	assert.Empty(t, got.Expenses)
}

func TestService_GetDetail_OutOfScopeLooksMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)
	svc := m.service()

	m.scopes.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(scope.Scope{Mode: scope.ModeEmployeeSet, AgentCodes: []int64{202}}, nil)

	key := ledger.Key{AgentID: 101, VendorID: 5, IssueDate: issueDate}
	got, err := svc.GetDetail(context.Background(), auth.Identity{EmployeeID: 2}, key)

	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.Nil(t, got)
}
