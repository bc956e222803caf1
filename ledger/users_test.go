package ledger

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryGetFresh(t *testing.T) {
	r := NewRegistry()

	u := r.Get("DUnknown")
	require.Equal(t, "0", u.Balance.String())
	require.Equal(t, "0", u.ForecastedCredits.String())
	require.Equal(t, -1, u.LastClaimedSlot)

	// A fresh record is not a registration.
	require.False(t, r.Has("DUnknown"))
	require.Equal(t, 0, r.Len())
}

func TestRegistryRegisterAndRemove(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 4; i++ {
		addr := fmt.Sprintf("D%d", i)
		u := newUser()
		u.Balance = big.NewInt(int64(i + 1))
		r.Register(addr, u)
	}
	require.Equal(t, 4, r.Len())
	require.Equal(t, []string{"D0", "D1", "D2", "D3"}, r.Members())

	// Removing from the middle swaps the tail member into the hole.
	r.Remove("D1")
	require.Equal(t, []string{"D0", "D3", "D2"}, r.Members())
	require.False(t, r.Has("D1"))
	require.Equal(t, "0", r.Get("D1").Balance.String())

	// The moved member is still addressable after the swap.
	require.True(t, r.Has("D3"))
	require.Equal(t, "4", r.Get("D3").Balance.String())
	r.Remove("D3")
	require.Equal(t, []string{"D0", "D2"}, r.Members())

	// Removing the last member is a plain pop.
	r.Remove("D2")
	require.Equal(t, []string{"D0"}, r.Members())

	r.Remove("D0")
	require.Equal(t, 0, r.Len())
	require.Empty(t, r.Members())
}

func TestRegistryRemoveUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Register("D0", newUser())
	r.Remove("DMissing")
	require.Equal(t, 1, r.Len())
}

func TestRegistryMembersIsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register("D0", newUser())
	r.Register("D1", newUser())

	members := r.Members()
	members[0] = "mutated"
	require.Equal(t, []string{"D0", "D1"}, r.Members())
}
