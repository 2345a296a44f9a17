package strategy

import (
	"math/big"
	"time"

	"github.com/palladio-labs/nft-exchange-go/chain"
)

// AnyItemFromCollectionForFixedPrice is a collection-wide offer: a maker bid
// any holder of the collection can fill with a token of their choosing. It
// is a bid-side policy, so taker bids never match.
type AnyItemFromCollectionForFixedPrice struct {
	protocolFeeBps uint64
}

// NewAnyItemFromCollectionForFixedPrice creates the collection-offer
// strategy with the given protocol fee.
func NewAnyItemFromCollectionForFixedPrice(protocolFeeBps uint64) *AnyItemFromCollectionForFixedPrice {
	return &AnyItemFromCollectionForFixedPrice{protocolFeeBps: protocolFeeBps}
}

// ProtocolFeeBps returns the protocol fee in basis points.
func (s *AnyItemFromCollectionForFixedPrice) ProtocolFeeBps() uint64 { return s.protocolFeeBps }

// CanExecuteTakerBid always rejects: collection offers are maker bids.
func (s *AnyItemFromCollectionForFixedPrice) CanExecuteTakerBid(*chain.TakerOrder, *chain.MakerOrder, time.Time) (bool, *big.Int, *big.Int, error) {
	return false, nil, nil, nil
}

// CanExecuteTakerAsk accepts any token id from the collection at the maker
// price; the settled token id is the taker's.
func (s *AnyItemFromCollectionForFixedPrice) CanExecuteTakerAsk(takerAsk *chain.TakerOrder, makerBid *chain.MakerOrder, now time.Time) (bool, *big.Int, *big.Int, error) {
	ok := saleable(makerBid, now) && makerBid.Price.Cmp(takerAsk.Price) == 0
	return ok, takerAsk.TokenID, makerBid.Amount, nil
}
