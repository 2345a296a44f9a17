// Package interceptor implements pre-transfer hooks an ask order can attach
// to its NFT. The canonical use is redeeming a collateralized NFT out of a
// lending pool with the sale proceeds before it moves to the buyer.
package interceptor

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/palladio-labs/nft-exchange-go/token"
)

// Whitelist errors.
var (
	ErrNullAddress        = errors.New("Interceptor: can not be null address")
	ErrAlreadyWhitelisted = errors.New("Interceptor: already whitelisted")
	ErrNotWhitelisted     = errors.New("Interceptor: not whitelisted")
	ErrNotOwner           = errors.New("Ownable: caller is not the owner")
)

// Redeem errors.
var (
	ErrNoBNFT            = errors.New("Interceptor: no BNFT")
	ErrNotBNFTOwner      = errors.New("Interceptor: not BNFT owner")
	ErrInsufficientRepay = errors.New("Interceptor: insufficent to repay debt")
)

// Interceptor guards an NFT transfer. CheckTransfer runs the hook's gates
// without side effects so a host can reject a sale before any funds move.
// BeforeTransfer runs after the seller has been paid and before the NFT is
// transferred to the buyer. price is the final sale price; extra is the
// opaque payload carried by the order.
type Interceptor interface {
	CheckTransfer(ctx context.Context, collection common.Address, coll token.Collection, seller common.Address, tokenID, price *big.Int, extra []byte) error
	BeforeTransfer(ctx context.Context, collection common.Address, coll token.Collection, seller common.Address, tokenID, price *big.Int, extra []byte) error
}

// Binding describes a collateralized NFT held by a lending pool: who holds
// the bound NFT receipt, the outstanding debt, and the fine due on top when
// redeeming out of an active auction.
type Binding struct {
	BNFTOwner common.Address
	Debt      *big.Int
	BidFine   *big.Int
}

// LendPool is the lending pool surface the redeem interceptor needs.
// Redeem repays the binding's debt and fine from the payer's funds and
// releases the NFT back to the bound owner.
type LendPool interface {
	Binding(collection common.Address, tokenID *big.Int) (Binding, bool)
	Redeem(ctx context.Context, payer, collection common.Address, tokenID *big.Int) error
}

// RedeemNFT releases a collateralized NFT from a lending pool using the
// seller's sale proceeds. Sellers who already hold their NFT pass through
// untouched.
type RedeemNFT struct {
	pool LendPool
}

// NewRedeemNFT creates the redeem interceptor over a lending pool.
func NewRedeemNFT(pool LendPool) *RedeemNFT {
	return &RedeemNFT{pool: pool}
}

// CheckTransfer validates a redeem without touching the pool. Sellers who
// hold their NFT pass through; otherwise the seller must hold the bound NFT
// receipt and the sale price must cover the outstanding debt plus the bid
// fine.
func (r *RedeemNFT) CheckTransfer(ctx context.Context, collection common.Address, coll token.Collection, seller common.Address, tokenID, price *big.Int, extra []byte) error {
	owner, err := coll.OwnerOf(tokenID)
	if err == nil && owner == seller {
		return nil
	}

	binding, ok := r.pool.Binding(collection, tokenID)
	if !ok {
		return ErrNoBNFT
	}
	if binding.BNFTOwner != seller {
		return ErrNotBNFTOwner
	}
	owed := new(big.Int).Add(binding.Debt, binding.BidFine)
	if price.Cmp(owed) < 0 {
		return ErrInsufficientRepay
	}
	return nil
}

// BeforeTransfer redeems the NFT if the seller does not hold it directly.
func (r *RedeemNFT) BeforeTransfer(ctx context.Context, collection common.Address, coll token.Collection, seller common.Address, tokenID, price *big.Int, extra []byte) error {
	if err := r.CheckTransfer(ctx, collection, coll, seller, tokenID, price, extra); err != nil {
		return err
	}
	owner, err := coll.OwnerOf(tokenID)
	if err == nil && owner == seller {
		return nil
	}
	return r.pool.Redeem(ctx, seller, collection, tokenID)
}

// Manager is the whitelist of interceptor implementations, keyed by the
// address orders carry.
type Manager struct {
	mu           sync.RWMutex
	owner        common.Address
	interceptors map[common.Address]Interceptor
}

// NewManager creates an empty interceptor whitelist owned by owner.
func NewManager(owner common.Address) *Manager {
	return &Manager{
		owner:        owner,
		interceptors: make(map[common.Address]Interceptor),
	}
}

// AddInterceptor whitelists an interceptor under an address. Owner only.
func (m *Manager) AddInterceptor(caller, addr common.Address, i Interceptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if caller != m.owner {
		return ErrNotOwner
	}
	if addr == (common.Address{}) {
		return ErrNullAddress
	}
	if _, ok := m.interceptors[addr]; ok {
		return ErrAlreadyWhitelisted
	}
	m.interceptors[addr] = i
	return nil
}

// RemoveInterceptor drops an interceptor from the whitelist. Owner only.
func (m *Manager) RemoveInterceptor(caller, addr common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if caller != m.owner {
		return ErrNotOwner
	}
	if _, ok := m.interceptors[addr]; !ok {
		return ErrNotWhitelisted
	}
	delete(m.interceptors, addr)
	return nil
}

// IsInterceptorWhitelisted reports whether an address is whitelisted.
func (m *Manager) IsInterceptorWhitelisted(addr common.Address) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.interceptors[addr]
	return ok
}

// Interceptor returns the implementation bound to an address.
func (m *Manager) Interceptor(addr common.Address) (Interceptor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.interceptors[addr]
	return i, ok
}
