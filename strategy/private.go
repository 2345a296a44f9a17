package strategy

import (
	"math/big"
	"time"

	"github.com/palladio-labs/nft-exchange-go/chain"
)

// PrivateSale is a fixed-price ask reserved for a single buyer. The maker
// params encode the buyer's address and no protocol fee is charged.
type PrivateSale struct{}

// NewPrivateSale creates the private sale strategy.
func NewPrivateSale() *PrivateSale { return &PrivateSale{} }

// ProtocolFeeBps is always zero for private sales.
func (s *PrivateSale) ProtocolFeeBps() uint64 { return 0 }

// CanExecuteTakerBid accepts only the designated buyer at the exact price
// and token.
func (s *PrivateSale) CanExecuteTakerBid(takerBid *chain.TakerOrder, makerAsk *chain.MakerOrder, now time.Time) (bool, *big.Int, *big.Int, error) {
	target, err := decodeAddressParams(makerAsk.Params)
	if err != nil {
		return false, nil, nil, err
	}
	ok := takerBid.Taker == target &&
		makerAsk.Price.Cmp(takerBid.Price) == 0 &&
		makerAsk.TokenID.Cmp(takerBid.TokenID) == 0 &&
		saleable(makerAsk, now)
	return ok, makerAsk.TokenID, makerAsk.Amount, nil
}

// CanExecuteTakerAsk always rejects: private sales are maker asks.
func (s *PrivateSale) CanExecuteTakerAsk(*chain.TakerOrder, *chain.MakerOrder, time.Time) (bool, *big.Int, *big.Int, error) {
	return false, nil, nil, nil
}
