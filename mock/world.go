package mock

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/palladio-labs/nft-exchange-go/token"
)

// World resolves order addresses to the mock objects behind them.
type World struct {
	mu          sync.RWMutex
	collections map[common.Address]token.Collection
	currencies  map[common.Address]token.ERC20
}

// NewWorld creates an empty resolver.
func NewWorld() *World {
	return &World{
		collections: make(map[common.Address]token.Collection),
		currencies:  make(map[common.Address]token.ERC20),
	}
}

// AddCollection registers a collection under an address.
func (w *World) AddCollection(addr common.Address, coll token.Collection) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.collections[addr] = coll
}

// AddCurrency registers a currency under an address.
func (w *World) AddCurrency(addr common.Address, cur token.ERC20) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.currencies[addr] = cur
}

// Collection resolves a collection address.
func (w *World) Collection(addr common.Address) (token.Collection, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	coll, ok := w.collections[addr]
	return coll, ok
}

// Currency resolves a currency address.
func (w *World) Currency(addr common.Address) (token.ERC20, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	cur, ok := w.currencies[addr]
	return cur, ok
}
