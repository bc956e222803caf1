package ledger

import "math/big"

// TokenBook is the external token-transfer collaborator. TransferFrom moves
// funds from `from` to `to` consuming the allowance `from` granted `to`.
// The eventId ties the movement to the journal row of the engine call that
// caused it.
//
// Implementations must not call back into the engine; the engine invokes
// the book while its reentrancy guard is held, and a callback is rejected.
type TokenBook interface {
	Transfer(from, to string, amt *big.Int, eventId string) error
	// TransferWithFee moves net to `to` and fee to `feeTo` out of the same
	// source as a single unit; either both legs apply or neither does.
	TransferWithFee(from, to string, net *big.Int, feeTo string, fee *big.Int, eventId string) error
	TransferFrom(from, to string, amt *big.Int, eventId string) error
	Allowance(owner, spender string) (*big.Int, error)
	BalanceOf(account string) (*big.Int, error)
}
