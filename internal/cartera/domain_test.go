package cartera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		netDebt   float64
		collected float64
		overdue   float64
		want      InvoiceStatus
	}{
		{"overdue wins even when fully paid", 0, 500, 120, StatusEnMora},
		{"paid", 0, 500, 0, StatusPagado},
		{"partially paid", 300, 200, 0, StatusPendiente},
		{"open without payments", 500, 0, 0, StatusPendienteSinPago},
		{"no balance no payments", 0, 0, 0, StatusSinInformacion},
		{"negative residue falls through", -1, 0, 0, StatusDesconocido},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.netDebt, tc.collected, tc.overdue))
		})
	}
}

func TestNetDebtClampsAtZero(t *testing.T) {
	require.Equal(t, 0.0, NetDebt(100, 250))
	require.Equal(t, 0.0, NetDebt(100, 100))
	require.Equal(t, 40.0, NetDebt(100, 60))
}

func TestSnapshotRowOverdue(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	neg := -3
	pos := 12
	past := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	require.True(t, SnapshotRow{Dias: &neg}.Overdue(today), "negative dias alone qualifies")
	require.True(t, SnapshotRow{Dias: &pos, Vence: &past}.Overdue(today), "past vence alone qualifies")
	require.False(t, SnapshotRow{Dias: &pos, Vence: &future}.Overdue(today))
	require.False(t, SnapshotRow{}.Overdue(today))
}
