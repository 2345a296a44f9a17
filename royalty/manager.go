// Package royalty resolves who is owed a royalty on a sale and how much.
package royalty

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/palladio-labs/nft-exchange-go/registry"
	"github.com/palladio-labs/nft-exchange-go/token"
)

// FeeManager computes the royalty owed for a sale. The standards-based
// royalty capability of the collection wins when present; otherwise the
// registry override applies; otherwise there is no royalty.
type FeeManager struct {
	registry *registry.RoyaltyFeeRegistry
	resolver token.Resolver
}

// NewFeeManager creates a fee manager over the given registry and collection
// resolver.
func NewFeeManager(reg *registry.RoyaltyFeeRegistry, resolver token.Resolver) *FeeManager {
	return &FeeManager{registry: reg, resolver: resolver}
}

// CalculateRoyaltyFeeAndGetRecipient returns the royalty recipient and
// amount for a sale of tokenID in collection at the given amount. The amount
// must be the final settled price, never a nominal order price. A zero
// recipient means no royalty applies.
func (m *FeeManager) CalculateRoyaltyFeeAndGetRecipient(collection common.Address, tokenID, amount *big.Int) (common.Address, *big.Int, error) {
	if coll, ok := m.resolver.Collection(collection); ok {
		if infoer, ok := coll.(token.RoyaltyInfoer); ok {
			recipient, royalty, err := infoer.RoyaltyInfo(tokenID, amount)
			if err != nil {
				return common.Address{}, nil, fmt.Errorf("royalty lookup failed: %w", err)
			}
			return recipient, royalty, nil
		}
	}
	recipient, royalty := m.registry.RoyaltyInfo(collection, amount)
	return recipient, royalty, nil
}
