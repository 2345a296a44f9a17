package registry

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Royalty registry errors.
var (
	ErrRoyaltyFeeTooHigh     = errors.New("Registry: royalty fee too high")
	ErrRoyaltyNotSetter      = errors.New("Setter: not the setter")
	ErrRoyaltyAlreadySet     = errors.New("Setter: already set")
	ErrRoyaltyNullCollection = errors.New("Owner: collection cannot be null address")
)

const bpsDenominator = 10000

// RoyaltyFeeInfo is a per-collection royalty override: the setter allowed to
// update it, the recipient of payments, and the fee in basis points.
type RoyaltyFeeInfo struct {
	Setter   common.Address
	Receiver common.Address
	FeeBps   uint64
}

// RoyaltyFeeRegistry stores collection royalty overrides for collections that
// do not expose a standards-based royalty. Fees are capped at a limit fixed
// at construction.
type RoyaltyFeeRegistry struct {
	mu          sync.RWMutex
	owner       common.Address
	feeLimitBps uint64
	collections map[common.Address]RoyaltyFeeInfo
}

// NewRoyaltyFeeRegistry creates a registry; feeLimitBps caps any royalty fee
// (e.g. 9500 = 95%).
func NewRoyaltyFeeRegistry(owner common.Address, feeLimitBps uint64) (*RoyaltyFeeRegistry, error) {
	if feeLimitBps > bpsDenominator {
		return nil, ErrRoyaltyFeeTooHigh
	}
	return &RoyaltyFeeRegistry{
		owner:       owner,
		feeLimitBps: feeLimitBps,
		collections: make(map[common.Address]RoyaltyFeeInfo),
	}, nil
}

// UpdateRoyaltyInfoForCollection sets or replaces a collection's royalty
// info. The first update must come from the registry owner; later updates
// must come from the recorded setter.
func (r *RoyaltyFeeRegistry) UpdateRoyaltyInfoForCollection(caller, collection, setter, receiver common.Address, feeBps uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if collection == (common.Address{}) {
		return ErrRoyaltyNullCollection
	}
	if feeBps > r.feeLimitBps {
		return ErrRoyaltyFeeTooHigh
	}
	if existing, ok := r.collections[collection]; ok {
		if caller != existing.Setter && caller != r.owner {
			return ErrRoyaltyNotSetter
		}
	} else if caller != r.owner {
		return ErrNotOwner
	}
	r.collections[collection] = RoyaltyFeeInfo{Setter: setter, Receiver: receiver, FeeBps: feeBps}
	return nil
}

// RoyaltyInfo computes the registry royalty for a sale amount. The recipient
// is zero when no override exists.
func (r *RoyaltyFeeRegistry) RoyaltyInfo(collection common.Address, amount *big.Int) (common.Address, *big.Int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.collections[collection]
	if !ok {
		return common.Address{}, new(big.Int)
	}
	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(info.FeeBps))
	fee.Div(fee, big.NewInt(bpsDenominator))
	return info.Receiver, fee
}

// RoyaltyFeeInfoCollection returns the raw override entry for a collection.
func (r *RoyaltyFeeRegistry) RoyaltyFeeInfoCollection(collection common.Address) (RoyaltyFeeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.collections[collection]
	return info, ok
}
