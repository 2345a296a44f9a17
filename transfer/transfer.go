// Package transfer routes NFT transfers to the handler that knows how to
// move a given collection: the standard ERC721 and ERC1155 paths, or a
// custom handler registered per collection.
package transfer

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/palladio-labs/nft-exchange-go/token"
)

// Selector errors.
var (
	ErrNullCollection      = errors.New("Owner: collection cannot be null address")
	ErrNullTransfer        = errors.New("Owner: transfer cannot be null address")
	ErrNoTransferAvailable = errors.New("Transfer: no NFT transfer available")
	ErrNotOwner            = errors.New("Ownable: caller is not the owner")
	ErrBadAmount           = errors.New("Transfer: invalid amount")
)

// Transferrer moves amount units of tokenID from one account to another.
// The operator is the delegate authorized by the sender.
type Transferrer interface {
	TransferNFT(ctx context.Context, coll token.Collection, operator, from, to common.Address, tokenID, amount *big.Int) error
}

// ERC721Transferrer moves single-unit tokens.
type ERC721Transferrer struct{}

func (ERC721Transferrer) TransferNFT(ctx context.Context, coll token.Collection, operator, from, to common.Address, tokenID, amount *big.Int) error {
	if amount == nil || amount.Cmp(big.NewInt(1)) != 0 {
		return ErrBadAmount
	}
	return coll.TransferFrom(ctx, operator, from, to, tokenID, amount)
}

// ERC1155Transferrer moves multi-unit token balances.
type ERC1155Transferrer struct{}

func (ERC1155Transferrer) TransferNFT(ctx context.Context, coll token.Collection, operator, from, to common.Address, tokenID, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrBadAmount
	}
	return coll.TransferFrom(ctx, operator, from, to, tokenID, amount)
}

// Selector picks the Transferrer for a collection. A custom registration
// wins over the standard handlers; collections with no standard kind and no
// registration cannot trade.
type Selector struct {
	mu      sync.RWMutex
	owner   common.Address
	erc721  Transferrer
	erc1155 Transferrer
	custom  map[common.Address]Transferrer
}

// NewSelector creates a selector with the standard ERC721 and ERC1155
// handlers installed.
func NewSelector(owner common.Address) *Selector {
	return &Selector{
		owner:   owner,
		erc721:  ERC721Transferrer{},
		erc1155: ERC1155Transferrer{},
		custom:  make(map[common.Address]Transferrer),
	}
}

// AddCollectionTransfer registers a custom handler for one collection,
// overriding the standard path. Owner only.
func (s *Selector) AddCollectionTransfer(caller, collection common.Address, tr Transferrer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.owner {
		return ErrNotOwner
	}
	if collection == (common.Address{}) {
		return ErrNullCollection
	}
	if tr == nil {
		return ErrNullTransfer
	}
	s.custom[collection] = tr
	return nil
}

// RemoveCollectionTransfer drops a custom handler, restoring the standard
// path for the collection's kind. Owner only.
func (s *Selector) RemoveCollectionTransfer(caller, collection common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.owner {
		return ErrNotOwner
	}
	delete(s.custom, collection)
	return nil
}

// TransferrerFor resolves the handler for a collection address.
func (s *Selector) TransferrerFor(collection common.Address, coll token.Collection) (Transferrer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tr, ok := s.custom[collection]; ok {
		return tr, nil
	}
	switch coll.Kind() {
	case token.KindERC721:
		return s.erc721, nil
	case token.KindERC1155:
		return s.erc1155, nil
	}
	return nil, ErrNoTransferAvailable
}
