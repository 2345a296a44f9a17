package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MakerOrder is an off-chain signed intent to sell (ask) or buy (bid) an
// asset. It is never persisted by the exchange; any party holding a signed
// copy may present it for settlement until its nonce is consumed or
// cancelled.
type MakerOrder struct {
	IsOrderAsk bool
	Maker      common.Address

	Collection common.Address
	TokenID    *big.Int
	Amount     *big.Int

	// Price is interpreted by the strategy. For fixed-price sales it is the
	// exact fill price; for Dutch auctions it is the end price.
	Price    *big.Int
	Strategy common.Address

	// Currency is the ERC20 used for settlement. The zero address means the
	// order settles through WETH but pays the ask side in the native coin.
	Currency common.Address

	Nonce     uint64
	StartTime uint64
	EndTime   uint64

	// MinPercentageToAsk is the slippage floor in basis points: the minimum
	// share of the gross price that must reach the ask side net of protocol
	// fee and royalty.
	MinPercentageToAsk uint64

	// Params is the strategy-specific ABI-encoded payload.
	Params []byte

	Interceptor      common.Address
	InterceptorExtra []byte

	// Signature is either a 65-byte r||s||v ECDSA signature or opaque
	// contract-signature bytes for contract makers.
	Signature []byte
}

// TakerOrder is the unsigned counter-order supplied by the transaction
// sender at settlement time.
type TakerOrder struct {
	IsOrderAsk bool
	Taker      common.Address

	Price   *big.Int
	TokenID *big.Int

	MinPercentageToAsk uint64
	Params             []byte

	Interceptor      common.Address
	InterceptorExtra []byte
}
