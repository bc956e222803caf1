package ledger

import "math/big"

// Accrue returns the credits earned by holding balance for the given number
// of whole hours.
func Accrue(balance *big.Int, hours int64) *big.Int {
	return big.NewInt(0).Mul(balance, big.NewInt(hours))
}

// ProRataClaim returns floor(userCredits * pool / totalCredits). A zero
// totalCredits means there is nothing to divide, not a division error.
func ProRataClaim(userCredits, totalCredits, pool *big.Int) *big.Int {
	if totalCredits.Sign() == 0 {
		return big.NewInt(0)
	}
	return big.NewInt(0).Div(big.NewInt(0).Mul(userCredits, pool), totalCredits)
}

// CheckedSub returns a-b, or ErrArithmeticUnderflow when b > a. Every
// subtraction in the engine goes through here so a broken invariant aborts
// the call instead of leaving a negative balance behind.
func CheckedSub(a, b *big.Int) (*big.Int, error) {
	if b.Cmp(a) > 0 {
		return nil, ErrArithmeticUnderflow
	}
	return big.NewInt(0).Sub(a, b), nil
}
