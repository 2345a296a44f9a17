package mock

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/palladio-labs/nft-exchange-go/interceptor"
	"github.com/palladio-labs/nft-exchange-go/token"
)

// LendPool is an in-memory lending pool. Borrowing locks the NFT in pool
// custody and records the debt; redeeming repays debt plus fine from the
// payer and releases the NFT to the borrower.
type LendPool struct {
	addr     common.Address
	currency token.ERC20

	mu          sync.Mutex
	bindings    map[common.Address]map[string]interceptor.Binding
	collections map[common.Address]token.Collection
}

// NewLendPool creates a pool holding custody under addr and settling debt
// in currency.
func NewLendPool(addr common.Address, currency token.ERC20) *LendPool {
	return &LendPool{
		addr:        addr,
		currency:    currency,
		bindings:    make(map[common.Address]map[string]interceptor.Binding),
		collections: make(map[common.Address]token.Collection),
	}
}

// Borrow locks the borrower's NFT in pool custody and records the debt and
// redeem fine against it.
func (p *LendPool) Borrow(ctx context.Context, borrower, collAddr common.Address, coll token.Collection, tokenID, debt, bidFine *big.Int) error {
	if err := coll.TransferFrom(ctx, borrower, borrower, p.addr, tokenID, big.NewInt(1)); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.bindings[collAddr]
	if !ok {
		m = make(map[string]interceptor.Binding)
		p.bindings[collAddr] = m
	}
	m[tokenID.String()] = interceptor.Binding{
		BNFTOwner: borrower,
		Debt:      new(big.Int).Set(debt),
		BidFine:   new(big.Int).Set(bidFine),
	}
	p.collections[collAddr] = coll
	return nil
}

// Binding returns the debt record for a collateralized NFT.
func (p *LendPool) Binding(collection common.Address, tokenID *big.Int) (interceptor.Binding, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.bindings[collection][tokenID.String()]
	return b, ok
}

// Redeem repays the debt and fine from the payer's currency balance and
// releases the NFT back to the bound owner.
func (p *LendPool) Redeem(ctx context.Context, payer, collection common.Address, tokenID *big.Int) error {
	p.mu.Lock()
	b, ok := p.bindings[collection][tokenID.String()]
	coll := p.collections[collection]
	p.mu.Unlock()
	if !ok {
		return errors.New("LendPool: nothing to redeem")
	}

	owed := new(big.Int).Add(b.Debt, b.BidFine)
	if err := p.currency.Transfer(ctx, payer, p.addr, owed); err != nil {
		return err
	}
	if err := coll.TransferFrom(ctx, p.addr, p.addr, b.BNFTOwner, tokenID, big.NewInt(1)); err != nil {
		return err
	}

	p.mu.Lock()
	delete(p.bindings[collection], tokenID.String())
	p.mu.Unlock()
	return nil
}
