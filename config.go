package nftexchange

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/palladio-labs/nft-exchange-go/chain"
	"github.com/palladio-labs/nft-exchange-go/interceptor"
	"github.com/palladio-labs/nft-exchange-go/nonces"
	"github.com/palladio-labs/nft-exchange-go/registry"
	"github.com/palladio-labs/nft-exchange-go/royalty"
	"github.com/palladio-labs/nft-exchange-go/strategy"
	"github.com/palladio-labs/nft-exchange-go/token"
	"github.com/palladio-labs/nft-exchange-go/transfer"
)

// Config wires the exchange to its collaborators. All registry and ledger
// fields are required; ContractSigners and Clock are optional.
type Config struct {
	// ChainID and VerifyingContract parameterize the signing domain.
	ChainID           int64
	VerifyingContract common.Address

	// WETHAddress is the wrapped-coin currency orders with a zero currency
	// settle through. WETH must be the token registered under it.
	WETHAddress common.Address
	WETH        token.WETH

	// ProtocolFeeRecipient receives every protocol fee.
	ProtocolFeeRecipient common.Address

	Resolver       token.Resolver
	Currencies     *registry.CurrencyManager
	Strategies     *strategy.Manager
	Interceptors   *interceptor.Manager
	Authorizations *registry.AuthorizationManager
	Transfers      *transfer.Selector
	Royalties      *royalty.FeeManager
	Nonces         *nonces.Ledger

	// ContractSigners resolves contract makers for ERC-1271-style signature
	// checks. Nil means only key signers are accepted.
	ContractSigners chain.ContractSignerResolver

	// Clock supplies settlement time. Defaults to time.Now.
	Clock func() time.Time
}

func (c *Config) validate() error {
	switch {
	case c.ChainID == 0:
		return fmt.Errorf("config: chain id is required")
	case c.WETH == nil || c.WETHAddress == (common.Address{}):
		return fmt.Errorf("config: WETH token and address are required")
	case c.ProtocolFeeRecipient == (common.Address{}):
		return fmt.Errorf("config: protocol fee recipient is required")
	case c.Resolver == nil:
		return fmt.Errorf("config: token resolver is required")
	case c.Currencies == nil:
		return fmt.Errorf("config: currency manager is required")
	case c.Strategies == nil:
		return fmt.Errorf("config: strategy manager is required")
	case c.Interceptors == nil:
		return fmt.Errorf("config: interceptor manager is required")
	case c.Authorizations == nil:
		return fmt.Errorf("config: authorization manager is required")
	case c.Transfers == nil:
		return fmt.Errorf("config: transfer selector is required")
	case c.Royalties == nil:
		return fmt.Errorf("config: royalty fee manager is required")
	case c.Nonces == nil:
		return fmt.Errorf("config: nonce ledger is required")
	}
	return nil
}
