// Package registry holds the owner-gated whitelists and lookup stores the
// settlement engine consults: the currency whitelist, the delegate-proxy
// authorization manager and the collection royalty-fee registry.
package registry

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNotOwner is returned when a caller invokes an owner-gated operation.
var ErrNotOwner = errors.New("Ownable: caller is not the owner")

// Currency whitelist errors.
var (
	ErrCurrencyNullAddress        = errors.New("Currency: can not be null address")
	ErrCurrencyAlreadyWhitelisted = errors.New("Currency: already whitelisted")
	ErrCurrencyNotWhitelisted     = errors.New("Currency: not whitelisted")
)

// CurrencyManager is the whitelist of ERC20 currencies orders may settle in.
type CurrencyManager struct {
	mu          sync.RWMutex
	owner       common.Address
	whitelisted map[common.Address]struct{}
}

// NewCurrencyManager creates an empty whitelist owned by owner.
func NewCurrencyManager(owner common.Address) *CurrencyManager {
	return &CurrencyManager{
		owner:       owner,
		whitelisted: make(map[common.Address]struct{}),
	}
}

// AddCurrency whitelists a currency. Owner only.
func (m *CurrencyManager) AddCurrency(caller, currency common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if caller != m.owner {
		return ErrNotOwner
	}
	if currency == (common.Address{}) {
		return ErrCurrencyNullAddress
	}
	if _, ok := m.whitelisted[currency]; ok {
		return ErrCurrencyAlreadyWhitelisted
	}
	m.whitelisted[currency] = struct{}{}
	return nil
}

// RemoveCurrency removes a currency from the whitelist. Owner only.
func (m *CurrencyManager) RemoveCurrency(caller, currency common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if caller != m.owner {
		return ErrNotOwner
	}
	if _, ok := m.whitelisted[currency]; !ok {
		return ErrCurrencyNotWhitelisted
	}
	delete(m.whitelisted, currency)
	return nil
}

// IsCurrencyWhitelisted reports whether a currency may be used at settlement
// time. The check runs against live registry state, not sign-time state.
func (m *CurrencyManager) IsCurrencyWhitelisted(currency common.Address) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.whitelisted[currency]
	return ok
}

// WhitelistedCurrencies returns a snapshot of the whitelist.
func (m *CurrencyManager) WhitelistedCurrencies() []common.Address {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]common.Address, 0, len(m.whitelisted))
	for addr := range m.whitelisted {
		out = append(out, addr)
	}
	return out
}
