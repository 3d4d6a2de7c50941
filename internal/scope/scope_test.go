package scope_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/crewpay/crewpay/internal/auth"
	"github.com/crewpay/crewpay/internal/scope"
)

func TestResolver_Resolve(t *testing.T) {
	type testCase struct {
		name      string
		identity  auth.Identity
		setupMock func(m *scope.MockRepository)
		want      scope.Scope
		wantErr   bool
	}

	tests := []testCase{
		{
			name:      "AdminSeesAll",
			identity:  auth.Identity{EmployeeID: 1, IsAdmin: true},
			setupMock: func(m *scope.MockRepository) {},
			want:      scope.Scope{Mode: scope.ModeAll},
		},
		{
			name:     "EmployeeSeesSelf",
			identity: auth.Identity{EmployeeID: 2},
			setupMock: func(m *scope.MockRepository) {
				m.EXPECT().
					AgentCodes(gomock.Any(), []int64{2}).
					Return([]int64{202, 203}, nil)
			},
			want: scope.Scope{
				Mode:        scope.ModeEmployeeSet,
				EmployeeIDs: []int64{2},
				AgentCodes:  []int64{202, 203},
			},
		},
		{
			name:     "ManagerSeesAssignedOnly",
			identity: auth.Identity{EmployeeID: 3, IsManager: true},
			setupMock: func(m *scope.MockRepository) {
				m.EXPECT().
					ManagedEmployeeIDs(gomock.Any(), int64(3)).
					Return([]int64{4, 5}, nil)
				m.EXPECT().
					AgentCodes(gomock.Any(), []int64{4, 5}).
					Return([]int64{404, 505}, nil)
			},
			want: scope.Scope{
				Mode:        scope.ModeEmployeeSet,
				EmployeeIDs: []int64{4, 5},
				AgentCodes:  []int64{404, 505},
			},
		},
		{
			name:     "ManagerWithNoAssignments",
			identity: auth.Identity{EmployeeID: 3, IsManager: true},
			setupMock: func(m *scope.MockRepository) {
				m.EXPECT().
					ManagedEmployeeIDs(gomock.Any(), int64(3)).
					Return(nil, nil)
			},
			want: scope.Scope{Mode: scope.ModeEmployeeSet},
		},
		{
			name:     "RepoError",
			identity: auth.Identity{EmployeeID: 3, IsManager: true},
			setupMock: func(m *scope.MockRepository) {
				m.EXPECT().
					ManagedEmployeeIDs(gomock.Any(), int64(3)).
					Return(nil, errors.New("query failed"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := scope.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := scope.NewResolver(repo).Resolve(context.Background(), tt.identity)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScope_AllowsAgent(t *testing.T) {
	all := scope.Scope{Mode: scope.ModeAll}
	assert.True(t, all.AllowsAgent(999))

	limited := scope.Scope{Mode: scope.ModeEmployeeSet, AgentCodes: []int64{101, 102}}
	assert.True(t, limited.AllowsAgent(101))
	assert.False(t, limited.AllowsAgent(999))

	empty := scope.Scope{Mode: scope.ModeEmployeeSet}
	assert.False(t, empty.AllowsAgent(101))
}

func TestScope_AllowsEmployee(t *testing.T) {
	all := scope.Scope{Mode: scope.ModeAll}
	assert.True(t, all.AllowsEmployee(999))

	limited := scope.Scope{Mode: scope.ModeEmployeeSet, EmployeeIDs: []int64{1, 2}}
	assert.True(t, limited.AllowsEmployee(2))
	assert.False(t, limited.AllowsEmployee(3))
}
