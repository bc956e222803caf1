package ledger

import (
	"fmt"
	"math/big"
)

// Slot is one closed accounting period. Entries are append-only audit
// history; only RemainingTokensToClaim ever changes, and it only decreases.
type Slot struct {
	StartTime              int64
	EndTime                int64
	MonthlyProfit          *big.Int
	TotalCredits           *big.Int
	RemainingTokensToClaim *big.Int
}

type History struct {
	slots []*Slot
}

func NewHistory() *History {
	return &History{}
}

// Append pushes a closed slot and returns its index.
func (h *History) Append(s *Slot) int {
	h.slots = append(h.slots, s)
	return len(h.slots) - 1
}

func (h *History) Get(i int) (*Slot, error) {
	if i < 0 || i >= len(h.slots) {
		return nil, fmt.Errorf("history index %d out of range [0,%d)", i, len(h.slots))
	}
	return h.slots[i], nil
}

func (h *History) Last() *Slot {
	if len(h.slots) == 0 {
		return nil
	}
	return h.slots[len(h.slots)-1]
}

func (h *History) Len() int {
	return len(h.slots)
}

// DecrementRemaining drains amt from entry i. The engine computes claims so
// this can never exceed the remainder; if it would, the call is a bug and
// fails closed.
func (h *History) DecrementRemaining(i int, amt *big.Int) error {
	s, err := h.Get(i)
	if err != nil {
		return err
	}
	remaining, err := CheckedSub(s.RemainingTokensToClaim, amt)
	if err != nil {
		return fmt.Errorf("slot %d: decrement %s exceeds remaining %s: %w",
			i, amt.String(), s.RemainingTokensToClaim.String(), err)
	}
	s.RemainingTokensToClaim = remaining
	return nil
}
