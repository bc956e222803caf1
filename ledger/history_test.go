package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func newSlot(start, end int64, profit int64) *Slot {
	return &Slot{
		StartTime:              start,
		EndTime:                end,
		MonthlyProfit:          big.NewInt(profit),
		TotalCredits:           big.NewInt(0),
		RemainingTokensToClaim: big.NewInt(profit),
	}
}

func TestHistoryAppendAndGet(t *testing.T) {
	h := NewHistory()
	require.Equal(t, 0, h.Len())
	require.Nil(t, h.Last())

	require.Equal(t, 0, h.Append(newSlot(0, 720, 1000)))
	require.Equal(t, 1, h.Append(newSlot(720, 1440, 2000)))
	require.Equal(t, 2, h.Len())
	require.Equal(t, int64(720), h.Last().StartTime)

	s, err := h.Get(0)
	require.NoError(t, err)
	require.Equal(t, "1000", s.MonthlyProfit.String())

	_, err = h.Get(-1)
	require.Error(t, err)
	_, err = h.Get(2)
	require.Error(t, err)
}

func TestHistoryDecrementRemaining(t *testing.T) {
	h := NewHistory()
	h.Append(newSlot(0, 720, 1000))

	require.NoError(t, h.DecrementRemaining(0, big.NewInt(600)))
	s, err := h.Get(0)
	require.NoError(t, err)
	require.Equal(t, "400", s.RemainingTokensToClaim.String())
	// The audit fields stay untouched.
	require.Equal(t, "1000", s.MonthlyProfit.String())

	require.NoError(t, h.DecrementRemaining(0, big.NewInt(400)))

	err = h.DecrementRemaining(0, big.NewInt(1))
	require.ErrorIs(t, err, ErrArithmeticUnderflow)

	require.Error(t, h.DecrementRemaining(5, big.NewInt(1)))
}
