// Package strategy implements the pluggable execution policies that decide
// whether a maker/taker pair may trade and at what terms.
package strategy

import (
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/palladio-labs/nft-exchange-go/chain"
)

// Strategy whitelist errors.
var (
	ErrStrategyNullAddress        = errors.New("Strategy: can not be null address")
	ErrStrategyAlreadyWhitelisted = errors.New("Strategy: already whitelisted")
	ErrStrategyNotWhitelisted     = errors.New("Strategy: not whitelisted")
	ErrNotOwner                   = errors.New("Ownable: caller is not the owner")
)

// Strategy decides trade eligibility and final terms for one execution
// policy. Implementations are pure views over the two orders and the
// evaluation time: they never mutate state.
//
// CanExecuteTakerBid evaluates a taker bid against a maker ask;
// CanExecuteTakerAsk evaluates a taker ask against a maker bid. Both return
// whether the pair may trade plus the token id and amount that settle. An
// error is reserved for malformed orders (undecodable params, invalid
// auction parameters) and aborts the match with that reason rather than a
// plain invalid-execution failure.
type Strategy interface {
	ProtocolFeeBps() uint64
	CanExecuteTakerBid(takerBid *chain.TakerOrder, makerAsk *chain.MakerOrder, now time.Time) (bool, *big.Int, *big.Int, error)
	CanExecuteTakerAsk(takerAsk *chain.TakerOrder, makerBid *chain.MakerOrder, now time.Time) (bool, *big.Int, *big.Int, error)
}

// withinWindow is the shared order-validity window check, applied uniformly
// by every strategy. Bounds are inclusive.
func withinWindow(maker *chain.MakerOrder, now time.Time) bool {
	ts := uint64(now.Unix())
	return maker.StartTime <= ts && ts <= maker.EndTime
}

// saleable is the base eligibility every variant shares: a positive amount
// and an in-window order.
func saleable(maker *chain.MakerOrder, now time.Time) bool {
	if maker.Amount == nil || maker.Amount.Sign() == 0 {
		return false
	}
	return withinWindow(maker, now)
}

// Manager is the whitelist of execution strategies. Unlike the on-chain
// original it also binds each whitelisted address to its implementation, so
// the engine can dispatch on the address carried by the order.
type Manager struct {
	mu         sync.RWMutex
	owner      common.Address
	strategies map[common.Address]Strategy
}

// NewManager creates an empty strategy whitelist owned by owner.
func NewManager(owner common.Address) *Manager {
	return &Manager{
		owner:      owner,
		strategies: make(map[common.Address]Strategy),
	}
}

// AddStrategy whitelists a strategy implementation under an address. Owner
// only.
func (m *Manager) AddStrategy(caller, addr common.Address, s Strategy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if caller != m.owner {
		return ErrNotOwner
	}
	if addr == (common.Address{}) {
		return ErrStrategyNullAddress
	}
	if _, ok := m.strategies[addr]; ok {
		return ErrStrategyAlreadyWhitelisted
	}
	m.strategies[addr] = s
	return nil
}

// RemoveStrategy drops a strategy from the whitelist. Owner only.
func (m *Manager) RemoveStrategy(caller, addr common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if caller != m.owner {
		return ErrNotOwner
	}
	if _, ok := m.strategies[addr]; !ok {
		return ErrStrategyNotWhitelisted
	}
	delete(m.strategies, addr)
	return nil
}

// IsStrategyWhitelisted reports whether an address is a whitelisted
// strategy.
func (m *Manager) IsStrategyWhitelisted(addr common.Address) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.strategies[addr]
	return ok
}

// Strategy returns the implementation bound to an address.
func (m *Manager) Strategy(addr common.Address) (Strategy, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.strategies[addr]
	return s, ok
}
