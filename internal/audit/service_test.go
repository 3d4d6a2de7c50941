package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/crewpay/crewpay/internal/audit"
	"github.com/crewpay/crewpay/internal/auth"
	"github.com/crewpay/crewpay/internal/scope"
)

func TestService_RecordChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := audit.NewMockRepository(ctrl)
	svc := audit.NewService(repo, audit.NewMockScopeResolver(ctrl))

	repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *audit.Record) error {
			assert.NotEqual(t, uuid.Nil, rec.ID)
			assert.False(t, rec.ChangedAt.IsZero())
			return nil
		})

	id, err := svc.RecordChange(context.Background(), &audit.Record{
		InvoiceID: 7,
		Action:    audit.ActionUpdate,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
}

func TestService_RecordChange_UnknownAction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := audit.NewService(audit.NewMockRepository(ctrl), audit.NewMockScopeResolver(ctrl))

	_, err := svc.RecordChange(context.Background(), &audit.Record{
		InvoiceID: 7,
		Action:    audit.ActionType("INSERT"),
	})

	assert.Error(t, err)
}

func TestService_RecordChange_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := audit.NewMockRepository(ctrl)
	svc := audit.NewService(repo, audit.NewMockScopeResolver(ctrl))

	repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(errors.New("insert failed"))

	_, err := svc.RecordChange(context.Background(), &audit.Record{Action: audit.ActionDelete})

	assert.Error(t, err)
}

func TestService_Search(t *testing.T) {
	type testCase struct {
		name      string
		identity  auth.Identity
		filter    audit.SearchFilter
		setupMock func(repo *audit.MockRepository, scopes *audit.MockScopeResolver)
		wantLen   int
		wantTotal int64
		wantErr   bool
	}

	tests := []testCase{
		{
			name:     "AdminSeesEverything",
			identity: auth.Identity{EmployeeID: 1, IsAdmin: true},
			setupMock: func(repo *audit.MockRepository, scopes *audit.MockScopeResolver) {
				scopes.EXPECT().
					Resolve(gomock.Any(), gomock.Any()).
					Return(scope.Scope{Mode: scope.ModeAll}, nil)
				repo.EXPECT().
					Search(gomock.Any(), gomock.Any(), nil).
					Return([]*audit.Record{{InvoiceID: 7}, {InvoiceID: 8}}, int64(2), nil)
			},
			wantLen:   2,
			wantTotal: 2,
		},
		{
			name:     "ScopedSearchPushesAgentCodes",
			identity: auth.Identity{EmployeeID: 2},
			setupMock: func(repo *audit.MockRepository, scopes *audit.MockScopeResolver) {
				scopes.EXPECT().
					Resolve(gomock.Any(), gomock.Any()).
					Return(scope.Scope{
						Mode:        scope.ModeEmployeeSet,
						EmployeeIDs: []int64{2},
						AgentCodes:  []int64{202},
					}, nil)
				repo.EXPECT().
					Search(gomock.Any(), gomock.Any(), []int64{202}).
					Return([]*audit.Record{{InvoiceID: 9}}, int64(1), nil)
			},
			wantLen:   1,
			wantTotal: 1,
		},
		{
			name:     "EmptyScopeShortCircuits",
			identity: auth.Identity{EmployeeID: 3, IsManager: true},
			setupMock: func(repo *audit.MockRepository, scopes *audit.MockScopeResolver) {
				scopes.EXPECT().
					Resolve(gomock.Any(), gomock.Any()).
					Return(scope.Scope{Mode: scope.ModeEmployeeSet}, nil)
			},
		},
		{
			name:     "ResolveError",
			identity: auth.Identity{EmployeeID: 4},
			setupMock: func(repo *audit.MockRepository, scopes *audit.MockScopeResolver) {
				scopes.EXPECT().
					Resolve(gomock.Any(), gomock.Any()).
					Return(scope.Scope{}, errors.New("scope lookup failed"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := audit.NewMockRepository(ctrl)
			scopes := audit.NewMockScopeResolver(ctrl)
			tt.setupMock(repo, scopes)

			svc := audit.NewService(repo, scopes)
			got, total, err := svc.Search(context.Background(), tt.identity, tt.filter)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestService_Search_NormalizesPaging(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := audit.NewMockRepository(ctrl)
	scopes := audit.NewMockScopeResolver(ctrl)
	svc := audit.NewService(repo, scopes)

	scopes.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(scope.Scope{Mode: scope.ModeAll}, nil)
	repo.EXPECT().
		Search(gomock.Any(), gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, f audit.SearchFilter, _ []int64) ([]*audit.Record, int64, error) {
			assert.Equal(t, 1, f.Page)
			assert.Equal(t, 50, f.Limit)
			return nil, 0, nil
		})

	_, _, err := svc.Search(context.Background(), auth.Identity{IsAdmin: true}, audit.SearchFilter{
		Page:  -3,
		Limit: 10000,
	})
	require.NoError(t, err)
}

func TestService_Summarize(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := audit.NewMockRepository(ctrl)
	scopes := audit.NewMockScopeResolver(ctrl)
	svc := audit.NewService(repo, scopes)

	scopes.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(scope.Scope{Mode: scope.ModeAll}, nil)
	repo.EXPECT().
		Summarize(gomock.Any(), gomock.Any(), nil, 5).
		Return(&audit.Summary{
			TotalChanges:  12,
			StatusChanges: 4,
			TopStatuses:   []audit.CountItem{{Key: "installed", Count: 3}},
		}, nil)

	got, err := svc.Summarize(context.Background(), auth.Identity{IsAdmin: true}, audit.SearchFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(12), got.TotalChanges)
	assert.Equal(t, int64(4), got.StatusChanges)
	require.Len(t, got.TopStatuses, 1)
	assert.Equal(t, "installed", got.TopStatuses[0].Key)
}

func TestService_Summarize_EmptyScope(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := audit.NewMockRepository(ctrl)
	scopes := audit.NewMockScopeResolver(ctrl)
	svc := audit.NewService(repo, scopes)

	scopes.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(scope.Scope{Mode: scope.ModeEmployeeSet}, nil)

	got, err := svc.Summarize(context.Background(), auth.Identity{EmployeeID: 3}, audit.SearchFilter{})

	require.NoError(t, err)
	assert.Equal(t, &audit.Summary{}, got)
}
