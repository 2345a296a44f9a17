package strategy

import (
	"math/big"
	"time"

	"github.com/palladio-labs/nft-exchange-go/chain"
)

// StandardSaleForFixedPrice matches orders at the exact maker price and
// token id, on either side.
type StandardSaleForFixedPrice struct {
	protocolFeeBps uint64
}

// NewStandardSaleForFixedPrice creates the fixed-price sale strategy with
// the given protocol fee.
func NewStandardSaleForFixedPrice(protocolFeeBps uint64) *StandardSaleForFixedPrice {
	return &StandardSaleForFixedPrice{protocolFeeBps: protocolFeeBps}
}

// ProtocolFeeBps returns the protocol fee in basis points.
func (s *StandardSaleForFixedPrice) ProtocolFeeBps() uint64 { return s.protocolFeeBps }

// CanExecuteTakerBid accepts when price and token id match exactly.
func (s *StandardSaleForFixedPrice) CanExecuteTakerBid(takerBid *chain.TakerOrder, makerAsk *chain.MakerOrder, now time.Time) (bool, *big.Int, *big.Int, error) {
	ok := saleable(makerAsk, now) &&
		makerAsk.Price.Cmp(takerBid.Price) == 0 &&
		makerAsk.TokenID.Cmp(takerBid.TokenID) == 0
	return ok, makerAsk.TokenID, makerAsk.Amount, nil
}

// CanExecuteTakerAsk accepts when price and token id match exactly.
func (s *StandardSaleForFixedPrice) CanExecuteTakerAsk(takerAsk *chain.TakerOrder, makerBid *chain.MakerOrder, now time.Time) (bool, *big.Int, *big.Int, error) {
	ok := saleable(makerBid, now) &&
		makerBid.Price.Cmp(takerAsk.Price) == 0 &&
		makerBid.TokenID.Cmp(takerAsk.TokenID) == 0
	return ok, makerBid.TokenID, makerBid.Amount, nil
}
