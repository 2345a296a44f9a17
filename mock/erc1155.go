package mock

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/palladio-labs/nft-exchange-go/token"
)

// ERC1155 transfer errors, matching the usual token revert reasons.
var (
	ErrERC1155Balance     = errors.New("ERC1155: insufficient balance for transfer")
	ErrERC1155NotApproved = errors.New("ERC1155: caller is not token owner or approved")
)

// ERC1155 is an in-memory multi-unit collection.
type ERC1155 struct {
	mu        sync.Mutex
	balances  map[string]map[common.Address]*big.Int
	operators map[common.Address]map[common.Address]bool
}

// NewERC1155 creates an empty collection.
func NewERC1155() *ERC1155 {
	return &ERC1155{
		balances:  make(map[string]map[common.Address]*big.Int),
		operators: make(map[common.Address]map[common.Address]bool),
	}
}

// Mint credits an owner with units of a token.
func (c *ERC1155) Mint(owner common.Address, tokenID, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credit(owner, tokenID.String(), amount)
}

func (c *ERC1155) credit(owner common.Address, key string, amount *big.Int) {
	m, ok := c.balances[key]
	if !ok {
		m = make(map[common.Address]*big.Int)
		c.balances[key] = m
	}
	bal, ok := m[owner]
	if !ok {
		bal = new(big.Int)
		m[owner] = bal
	}
	bal.Add(bal, amount)
}

// SetApprovalForAll lets operator move any of owner's tokens.
func (c *ERC1155) SetApprovalForAll(owner, operator common.Address, approved bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.operators[owner]
	if !ok {
		m = make(map[common.Address]bool)
		c.operators[owner] = m
	}
	m[operator] = approved
}

// Kind reports the multi-unit transfer path.
func (c *ERC1155) Kind() token.Kind { return token.KindERC1155 }

// OwnerOf has no meaning for multi-unit tokens.
func (c *ERC1155) OwnerOf(tokenID *big.Int) (common.Address, error) {
	return common.Address{}, errors.New("ERC1155: no single owner")
}

// BalanceOf returns the owner's balance of a token.
func (c *ERC1155) BalanceOf(owner common.Address, tokenID *big.Int) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.balances[tokenID.String()]; ok {
		if bal, ok := m[owner]; ok {
			return new(big.Int).Set(bal)
		}
	}
	return new(big.Int)
}

// TransferFrom moves amount units. The operator must be the sender or
// approved for all of the sender's tokens.
func (c *ERC1155) TransferFrom(ctx context.Context, operator, from, to common.Address, tokenID, amount *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if operator != from && !c.operators[from][operator] {
		return ErrERC1155NotApproved
	}
	key := tokenID.String()
	m := c.balances[key]
	bal := m[from]
	if bal == nil || bal.Cmp(amount) < 0 {
		return ErrERC1155Balance
	}
	bal.Sub(bal, amount)
	c.credit(to, key, amount)
	return nil
}
