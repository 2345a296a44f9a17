// Package token defines the asset collaborators the exchange settles
// against. On chain these are ERC20/ERC721/ERC1155 contracts; here they are
// narrow interfaces so the engine stays agnostic of how balances are held.
package token

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Kind classifies how a collection moves its assets.
type Kind int

const (
	// KindNone marks a collection with no standard transfer path; it needs a
	// registered custom handler.
	KindNone Kind = iota
	KindERC721
	KindERC1155
)

// ERC20 is the fungible settlement currency surface the engine needs.
// TransferFrom follows allowance semantics: spender must have been approved
// by from.
type ERC20 interface {
	BalanceOf(owner common.Address) *big.Int
	Allowance(owner, spender common.Address) *big.Int
	Approve(ctx context.Context, owner, spender common.Address, amount *big.Int) error
	Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error
	TransferFrom(ctx context.Context, spender, from, to common.Address, amount *big.Int) error
}

// WETH is the wrapped native coin. Deposit converts native balance of the
// account into WETH credit; Withdraw does the reverse.
type WETH interface {
	ERC20
	Deposit(ctx context.Context, account common.Address, amount *big.Int) error
	Withdraw(ctx context.Context, account common.Address, amount *big.Int) error
}

// Native is the native coin ledger.
type Native interface {
	BalanceOf(owner common.Address) *big.Int
	Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error
}

// Collection is a non-fungible asset collection. OwnerOf applies to ERC721
// kinds; BalanceOf applies to ERC1155 kinds. TransferFrom moves amount units
// of tokenID and requires operator approval from the owner.
type Collection interface {
	Kind() Kind
	OwnerOf(tokenID *big.Int) (common.Address, error)
	BalanceOf(owner common.Address, tokenID *big.Int) *big.Int
	TransferFrom(ctx context.Context, operator, from, to common.Address, tokenID, amount *big.Int) error
}

// RoyaltyInfoer is the optional per-token royalty capability of a
// collection, the ERC-2981 interface. Implementations return the royalty
// recipient and amount owed for a sale at the given price.
type RoyaltyInfoer interface {
	RoyaltyInfo(tokenID, salePrice *big.Int) (common.Address, *big.Int, error)
}

// Resolver maps order addresses to their collaborator objects.
type Resolver interface {
	Collection(addr common.Address) (Collection, bool)
	Currency(addr common.Address) (ERC20, bool)
}
