// Package mock provides in-memory asset collaborators for tests: a native
// coin ledger, ERC20 and WETH currencies, ERC721 and ERC1155 collections, a
// lending pool, and a resolver tying them together.
package mock

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Native is an in-memory native coin ledger.
type Native struct {
	mu       sync.Mutex
	balances map[common.Address]*big.Int
}

// NewNative creates an empty native ledger.
func NewNative() *Native {
	return &Native{balances: make(map[common.Address]*big.Int)}
}

// Mint credits an account out of thin air.
func (n *Native) Mint(account common.Address, amount *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.credit(account, amount)
}

func (n *Native) credit(account common.Address, amount *big.Int) {
	bal, ok := n.balances[account]
	if !ok {
		bal = new(big.Int)
		n.balances[account] = bal
	}
	bal.Add(bal, amount)
}

// BalanceOf returns the account's native balance.
func (n *Native) BalanceOf(account common.Address) *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if bal, ok := n.balances[account]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// Transfer moves native coin between accounts.
func (n *Native) Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	bal := n.balances[from]
	if bal == nil || bal.Cmp(amount) < 0 {
		return errors.New("insufficient native balance")
	}
	bal.Sub(bal, amount)
	n.credit(to, amount)
	return nil
}
