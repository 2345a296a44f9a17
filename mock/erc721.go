package mock

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/palladio-labs/nft-exchange-go/token"
)

// ERC721 transfer errors, matching the usual token revert reasons.
var (
	ErrERC721InvalidToken = errors.New("ERC721: invalid token ID")
	ErrERC721WrongOwner   = errors.New("ERC721: transfer from incorrect owner")
	ErrERC721NotApproved  = errors.New("ERC721: caller is not token owner or approved")
)

// ERC721 is an in-memory single-unit collection.
type ERC721 struct {
	mu        sync.Mutex
	owners    map[string]common.Address
	operators map[common.Address]map[common.Address]bool
}

// NewERC721 creates an empty collection.
func NewERC721() *ERC721 {
	return &ERC721{
		owners:    make(map[string]common.Address),
		operators: make(map[common.Address]map[common.Address]bool),
	}
}

// Mint assigns a token to an owner.
func (c *ERC721) Mint(owner common.Address, tokenID *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owners[tokenID.String()] = owner
}

// SetApprovalForAll lets operator move any of owner's tokens.
func (c *ERC721) SetApprovalForAll(owner, operator common.Address, approved bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.operators[owner]
	if !ok {
		m = make(map[common.Address]bool)
		c.operators[owner] = m
	}
	m[operator] = approved
}

// Kind reports the single-unit transfer path.
func (c *ERC721) Kind() token.Kind { return token.KindERC721 }

// OwnerOf returns the token's owner.
func (c *ERC721) OwnerOf(tokenID *big.Int) (common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	owner, ok := c.owners[tokenID.String()]
	if !ok {
		return common.Address{}, ErrERC721InvalidToken
	}
	return owner, nil
}

// BalanceOf returns 1 if owner holds the token, else 0.
func (c *ERC721) BalanceOf(owner common.Address, tokenID *big.Int) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owners[tokenID.String()] == owner {
		return big.NewInt(1)
	}
	return new(big.Int)
}

// TransferFrom moves the token. The operator must be the owner or approved
// for all of the owner's tokens.
func (c *ERC721) TransferFrom(ctx context.Context, operator, from, to common.Address, tokenID, amount *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := tokenID.String()
	owner, ok := c.owners[key]
	if !ok {
		return ErrERC721InvalidToken
	}
	if owner != from {
		return ErrERC721WrongOwner
	}
	if operator != owner && !c.operators[owner][operator] {
		return ErrERC721NotApproved
	}
	c.owners[key] = to
	return nil
}

// RoyaltyERC721 is an ERC721 that also answers per-token royalty queries,
// the ERC-2981 capability.
type RoyaltyERC721 struct {
	*ERC721
	receiver common.Address
	feeBps   uint64
}

// NewRoyaltyERC721 creates a royalty-bearing collection paying feeBps of
// every sale to receiver.
func NewRoyaltyERC721(receiver common.Address, feeBps uint64) *RoyaltyERC721 {
	return &RoyaltyERC721{ERC721: NewERC721(), receiver: receiver, feeBps: feeBps}
}

// RoyaltyInfo returns the royalty recipient and amount for a sale.
func (c *RoyaltyERC721) RoyaltyInfo(tokenID, salePrice *big.Int) (common.Address, *big.Int, error) {
	fee := new(big.Int).Mul(salePrice, new(big.Int).SetUint64(c.feeBps))
	fee.Div(fee, big.NewInt(10000))
	return c.receiver, fee, nil
}

// Bare is a collection with no standard transfer path. It moves like an
// ERC721 but reports no kind, so it needs a custom transfer handler.
type Bare struct {
	*ERC721
}

// NewBare creates a non-standard collection.
func NewBare() *Bare { return &Bare{ERC721: NewERC721()} }

// Kind reports no standard transfer path.
func (c *Bare) Kind() token.Kind { return token.KindNone }
