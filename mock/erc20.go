package mock

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// ERC20 transfer errors, matching the usual token revert reasons.
var (
	ErrERC20Balance   = errors.New("ERC20: transfer amount exceeds balance")
	ErrERC20Allowance = errors.New("ERC20: insufficient allowance")
)

// ERC20 is an in-memory fungible token.
type ERC20 struct {
	mu         sync.Mutex
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
}

// NewERC20 creates an empty token.
func NewERC20() *ERC20 {
	return &ERC20{
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

// Mint credits an account out of thin air.
func (t *ERC20) Mint(account common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(account, amount)
}

func (t *ERC20) credit(account common.Address, amount *big.Int) {
	bal, ok := t.balances[account]
	if !ok {
		bal = new(big.Int)
		t.balances[account] = bal
	}
	bal.Add(bal, amount)
}

func (t *ERC20) debit(account common.Address, amount *big.Int) error {
	bal := t.balances[account]
	if bal == nil || bal.Cmp(amount) < 0 {
		return ErrERC20Balance
	}
	bal.Sub(bal, amount)
	return nil
}

// BalanceOf returns the account's token balance.
func (t *ERC20) BalanceOf(account common.Address) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if bal, ok := t.balances[account]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// Allowance returns what spender may move on behalf of owner.
func (t *ERC20) Allowance(owner, spender common.Address) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok := t.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return new(big.Int).Set(a)
		}
	}
	return new(big.Int)
}

// Approve sets spender's allowance over owner's balance.
func (t *ERC20) Approve(ctx context.Context, owner, spender common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.allowances[owner]
	if !ok {
		m = make(map[common.Address]*big.Int)
		t.allowances[owner] = m
	}
	m[spender] = new(big.Int).Set(amount)
	return nil
}

// Transfer moves tokens between accounts.
func (t *ERC20) Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.debit(from, amount); err != nil {
		return err
	}
	t.credit(to, amount)
	return nil
}

// TransferFrom moves tokens under spender's allowance. A spender moving its
// own balance needs no allowance.
func (t *ERC20) TransferFrom(ctx context.Context, spender, from, to common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if spender != from {
		m := t.allowances[from]
		if m == nil || m[spender] == nil || m[spender].Cmp(amount) < 0 {
			return ErrERC20Allowance
		}
		m[spender].Sub(m[spender], amount)
	}
	if err := t.debit(from, amount); err != nil {
		return err
	}
	t.credit(to, amount)
	return nil
}
