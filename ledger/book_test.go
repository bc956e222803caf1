package ledger

import (
	"fmt"
	"math/big"
)

// memBook is an in-memory token collaborator for engine tests.
type memBook struct {
	balances       map[string]*big.Int
	allowances     map[string]*big.Int
	transferFeeBps int64
	failFeeLeg     bool
	onTransfer     func(from, to string, amt *big.Int)
}

func newMemBook() *memBook {
	return &memBook{
		balances:   make(map[string]*big.Int),
		allowances: make(map[string]*big.Int),
	}
}

func (b *memBook) get(m map[string]*big.Int, key string) *big.Int {
	if v, ok := m[key]; ok {
		return v
	}
	return big.NewInt(0)
}

func (b *memBook) mint(addr string, amt int64) {
	b.balances[addr] = big.NewInt(0).Add(b.get(b.balances, addr), big.NewInt(amt))
}

func (b *memBook) approve(owner, spender string, amt int64) {
	b.allowances[owner+"|"+spender] = big.NewInt(amt)
}

func (b *memBook) Transfer(from, to string, amt *big.Int, _ string) error {
	if b.onTransfer != nil {
		b.onTransfer(from, to, amt)
	}
	bal := b.get(b.balances, from)
	if amt.Cmp(bal) > 0 {
		return fmt.Errorf("insufficient balance: %s has %s, needs %s", from, bal, amt)
	}
	b.balances[from] = big.NewInt(0).Sub(bal, amt)
	b.balances[to] = big.NewInt(0).Add(b.get(b.balances, to), amt)
	return nil
}

func (b *memBook) TransferWithFee(from, to string, net *big.Int, feeTo string, fee *big.Int, _ string) error {
	if b.onTransfer != nil {
		b.onTransfer(from, to, net)
	}
	if b.failFeeLeg {
		return fmt.Errorf("fee leg refused")
	}
	total := big.NewInt(0).Add(net, fee)
	bal := b.get(b.balances, from)
	if total.Cmp(bal) > 0 {
		return fmt.Errorf("insufficient balance: %s has %s, needs %s", from, bal, total)
	}
	b.balances[from] = big.NewInt(0).Sub(bal, total)
	b.balances[to] = big.NewInt(0).Add(b.get(b.balances, to), net)
	b.balances[feeTo] = big.NewInt(0).Add(b.get(b.balances, feeTo), fee)
	return nil
}

func (b *memBook) TransferFrom(from, to string, amt *big.Int, _ string) error {
	key := from + "|" + to
	allowed := b.get(b.allowances, key)
	if amt.Cmp(allowed) > 0 {
		return fmt.Errorf("insufficient allowance: %s", allowed)
	}
	bal := b.get(b.balances, from)
	if amt.Cmp(bal) > 0 {
		return fmt.Errorf("insufficient balance: %s has %s, needs %s", from, bal, amt)
	}
	b.allowances[key] = big.NewInt(0).Sub(allowed, amt)

	credited := big.NewInt(0).Set(amt)
	if b.transferFeeBps > 0 {
		fee := big.NewInt(0).Div(big.NewInt(0).Mul(amt, big.NewInt(b.transferFeeBps)), big.NewInt(10000))
		credited = credited.Sub(credited, fee)
	}
	b.balances[from] = big.NewInt(0).Sub(bal, amt)
	b.balances[to] = big.NewInt(0).Add(b.get(b.balances, to), credited)
	return nil
}

func (b *memBook) Allowance(owner, spender string) (*big.Int, error) {
	return big.NewInt(0).Set(b.get(b.allowances, owner+"|"+spender)), nil
}

func (b *memBook) BalanceOf(account string) (*big.Int, error) {
	return big.NewInt(0).Set(b.get(b.balances, account)), nil
}

func (b *memBook) balance(addr string) int64 {
	return b.get(b.balances, addr).Int64()
}
