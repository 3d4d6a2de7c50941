package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewpay/crewpay/internal/ledger"
)

func TestKey_String(t *testing.T) {
	key := ledger.Key{
		AgentID:   101,
		VendorID:  5,
		IssueDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, "101-5-2024-03-15", key.String())
}

func TestKey_String_NormalizedDatesMatch(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	a := ledger.Key{
		AgentID:   101,
		VendorID:  5,
		IssueDate: ledger.NormalizeDate(time.Date(2024, 3, 15, 23, 30, 0, 0, loc)),
	}
	b := ledger.Key{
		AgentID:   101,
		VendorID:  5,
		IssueDate: ledger.NormalizeDate(time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC)),
	}

	assert.Equal(t, a.String(), b.String())
}

func TestNormalizeDate(t *testing.T) {
	got := ledger.NormalizeDate(time.Date(2024, 3, 15, 17, 45, 12, 999, time.FixedZone("X", -5*3600)))

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestParseInputDate(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}

	tests := []testCase{
		{
			name:  "Valid",
			input: "03-15-2024",
			want:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "ISOFormatRejected",
			input:   "2024-03-15",
			wantErr: true,
		},
		{
			name:    "Garbage",
			input:   "not-a-date",
			wantErr: true,
		},
		{
			name:    "Empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ledger.ParseInputDate(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
