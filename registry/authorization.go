package registry

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Authorization errors.
var (
	ErrNoDelegateProxy = errors.New("Authorization: no delegate proxy")
	ErrAlreadyHasProxy = errors.New("Authorization: user already has a proxy")
	ErrProxyPermission = errors.New("Proxy: permission denied")
)

// Proxy is a user's delegate transfer agent. Transfers of the user's assets
// and funds execute through it; revoking it cuts off the exchange without
// touching individual token approvals.
type Proxy struct {
	Owner   common.Address
	Address common.Address
	Revoked bool
}

// AuthorizationManager tracks each user's delegate proxy. It also carries a
// global kill switch the registry owner can flip to revoke every proxy at
// once.
type AuthorizationManager struct {
	mu         sync.RWMutex
	owner      common.Address
	allRevoked bool
	proxies    map[common.Address]*Proxy
}

// NewAuthorizationManager creates an empty proxy registry owned by owner.
func NewAuthorizationManager(owner common.Address) *AuthorizationManager {
	return &AuthorizationManager{
		owner:   owner,
		proxies: make(map[common.Address]*Proxy),
	}
}

// RegisterProxy creates a delegate proxy for the caller. A user can hold at
// most one proxy; its address is derived from the user address so it is
// stable across restarts.
func (m *AuthorizationManager) RegisterProxy(user common.Address) (common.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.proxies[user]; ok {
		return common.Address{}, ErrAlreadyHasProxy
	}
	addr := common.BytesToAddress(crypto.Keccak256(append([]byte("delegate-proxy:"), user.Bytes()...))[12:])
	m.proxies[user] = &Proxy{Owner: user, Address: addr}
	return addr, nil
}

// SetRevoke flips the revocation flag on the caller's own proxy.
func (m *AuthorizationManager) SetRevoke(user common.Address, revoked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proxies[user]
	if !ok {
		return ErrNoDelegateProxy
	}
	if p.Owner != user {
		return ErrProxyPermission
	}
	p.Revoked = revoked
	return nil
}

// Revoke disables every proxy at once. Owner only.
func (m *AuthorizationManager) Revoke(caller common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if caller != m.owner {
		return ErrNotOwner
	}
	m.allRevoked = true
	return nil
}

// AuthorizedProxy returns the usable proxy address for a user. It fails with
// ErrNoDelegateProxy when the user never registered one, and with
// ErrProxyPermission when the proxy (or the whole registry) is revoked.
func (m *AuthorizationManager) AuthorizedProxy(user common.Address) (common.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.proxies[user]
	if !ok {
		return common.Address{}, ErrNoDelegateProxy
	}
	if p.Revoked || m.allRevoked {
		return common.Address{}, ErrProxyPermission
	}
	return p.Address, nil
}

// ProxyOf returns the registered proxy for a user regardless of revocation.
func (m *AuthorizationManager) ProxyOf(user common.Address) (Proxy, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.proxies[user]
	if !ok {
		return Proxy{}, false
	}
	return *p, true
}
