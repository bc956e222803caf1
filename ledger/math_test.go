package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccrue(t *testing.T) {
	require.Equal(t, "72000", Accrue(big.NewInt(100), 720).String())
	require.Equal(t, "0", Accrue(big.NewInt(0), 720).String())
	require.Equal(t, "0", Accrue(big.NewInt(100), 0).String())

	// Inputs must not be aliased by the result.
	bal := big.NewInt(7)
	Accrue(bal, 3)
	require.Equal(t, "7", bal.String())
}

func TestProRataClaimFloors(t *testing.T) {
	// 59400 * 9999 / 214400 = 2770.24..., paid as 2770.
	amt := ProRataClaim(big.NewInt(59400), big.NewInt(214400), big.NewInt(9999))
	require.Equal(t, "2770", amt.String())

	// Full share of the pool.
	amt = ProRataClaim(big.NewInt(72000), big.NewInt(72000), big.NewInt(10000))
	require.Equal(t, "10000", amt.String())
}

func TestProRataClaimZeroTotal(t *testing.T) {
	amt := ProRataClaim(big.NewInt(100), big.NewInt(0), big.NewInt(10000))
	require.Equal(t, "0", amt.String())
}

func TestCheckedSub(t *testing.T) {
	out, err := CheckedSub(big.NewInt(10), big.NewInt(4))
	require.NoError(t, err)
	require.Equal(t, "6", out.String())

	out, err = CheckedSub(big.NewInt(10), big.NewInt(10))
	require.NoError(t, err)
	require.Equal(t, "0", out.String())

	_, err = CheckedSub(big.NewInt(10), big.NewInt(11))
	require.ErrorIs(t, err, ErrArithmeticUnderflow)
}
