package mock

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// WETH wraps the native ledger as an ERC20: deposits lock native coin,
// withdrawals release it.
type WETH struct {
	*ERC20
	native  *Native
	reserve common.Address
}

// NewWETH creates a wrapped-coin token over a native ledger. reserve is the
// account that holds the locked native coin.
func NewWETH(native *Native, reserve common.Address) *WETH {
	return &WETH{ERC20: NewERC20(), native: native, reserve: reserve}
}

// Deposit converts native balance of the account into wrapped credit.
func (w *WETH) Deposit(ctx context.Context, account common.Address, amount *big.Int) error {
	if err := w.native.Transfer(ctx, account, w.reserve, amount); err != nil {
		return err
	}
	w.Mint(account, amount)
	return nil
}

// Withdraw burns wrapped credit and releases native coin to the account.
func (w *WETH) Withdraw(ctx context.Context, account common.Address, amount *big.Int) error {
	w.mu.Lock()
	if err := w.debit(account, amount); err != nil {
		w.mu.Unlock()
		return err
	}
	w.mu.Unlock()
	if err := w.native.Transfer(ctx, w.reserve, account, amount); err != nil {
		return errors.New("WETH: reserve out of native coin")
	}
	return nil
}
