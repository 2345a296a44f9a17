package nftexchange

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/palladio-labs/nft-exchange-go/chain"
	"github.com/palladio-labs/nft-exchange-go/interceptor"
	"github.com/palladio-labs/nft-exchange-go/registry"
	"github.com/palladio-labs/nft-exchange-go/strategy"
	"github.com/palladio-labs/nft-exchange-go/token"
	"github.com/palladio-labs/nft-exchange-go/transfer"
)

var bps = big.NewInt(10000)

// Exchange is the settlement engine. Each match call validates one maker
// order against one taker order, resolves the fill through the maker's
// strategy, moves funds and the asset, consumes the maker nonce, and
// publishes a settlement event. A mutex serializes settlement calls, so a
// collaborator re-entering the engine cannot double-fill an order. Every
// collaborator is resolved and every gate evaluated before any ledger is
// touched, the engine's own fund moves are unwound when a later step fails,
// and the maker nonce is consumed only once every transfer has succeeded, so
// a failed match leaves balances and the order as they were.
type Exchange struct {
	cfg       Config
	domain    *chain.EIP712Domain
	separator common.Hash
	clock     func() time.Time

	mu     sync.Mutex
	events events
}

// NewExchange creates the settlement engine over its collaborators.
func NewExchange(cfg Config) (*Exchange, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	domain := chain.NewEIP712Domain(cfg.ChainID, cfg.VerifyingContract)
	return &Exchange{
		cfg:       cfg,
		domain:    domain,
		separator: domain.Separator(),
		clock:     cfg.Clock,
	}, nil
}

// Close terminates all event subscriptions.
func (e *Exchange) Close() {
	e.events.scope.Close()
}

// Domain returns the exchange's signing domain. Makers sign orders against
// it.
func (e *Exchange) Domain() *chain.EIP712Domain {
	return e.domain
}

// IsUserOrderNonceExecutedOrCancelled reports whether a maker nonce has been
// consumed by a fill or a cancellation.
func (e *Exchange) IsUserOrderNonceExecutedOrCancelled(user common.Address, nonce uint64) (bool, error) {
	return e.cfg.Nonces.IsExecutedOrCancelled(user, nonce)
}

// CancelMultipleMakerOrders voids individual order nonces of the sender.
func (e *Exchange) CancelMultipleMakerOrders(sender common.Address, orderNonces []uint64) error {
	if err := e.cfg.Nonces.Cancel(sender, orderNonces); err != nil {
		return err
	}
	log.Infof("Maker %s cancelled %d order nonce(s)", sender, len(orderNonces))
	e.events.cancels.Send(CancelMultipleOrdersEvent{Maker: sender, Nonces: orderNonces})
	return nil
}

// CancelAllOrdersForSender advances the sender's minimum order nonce,
// voiding all orders signed below it.
func (e *Exchange) CancelAllOrdersForSender(sender common.Address, minNonce uint64) error {
	if err := e.cfg.Nonces.CancelAllBelow(sender, minNonce); err != nil {
		return err
	}
	log.Infof("Maker %s advanced minimum order nonce to %d", sender, minNonce)
	e.events.cancelAll.Send(CancelAllOrdersEvent{Maker: sender, NewMinNonce: minNonce})
	return nil
}

// MatchAskWithTakerBid fills a maker ask with the sender's bid, settling in
// the order's currency. The fill price is the taker's bid price.
func (e *Exchange) MatchAskWithTakerBid(ctx context.Context, sender common.Address, takerBid *chain.TakerOrder, makerAsk *chain.MakerOrder) (*TakerBidEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !makerAsk.IsOrderAsk || takerBid.IsOrderAsk {
		return nil, ErrWrongSides
	}
	return e.settleTakerBid(ctx, sender, takerBid, makerAsk, nil)
}

// MatchAskWithTakerBidUsingETHAndWETH fills a maker ask with the sender's
// bid, funding it with attached native coin topped up from the sender's WETH
// balance. The order must settle in WETH (or the zero currency, which maps
// to WETH); the seller is paid in native coin. Attached value beyond the
// fill price stays with the sender.
func (e *Exchange) MatchAskWithTakerBidUsingETHAndWETH(ctx context.Context, sender common.Address, value *big.Int, takerBid *chain.TakerOrder, makerAsk *chain.MakerOrder) (*TakerBidEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !makerAsk.IsOrderAsk || takerBid.IsOrderAsk {
		return nil, ErrWrongSides
	}
	if makerAsk.Currency != (common.Address{}) && makerAsk.Currency != e.cfg.WETHAddress {
		return nil, ErrCurrencyNotWETH
	}
	if value == nil {
		value = new(big.Int)
	}
	return e.settleTakerBid(ctx, sender, takerBid, makerAsk, value)
}

// settleTakerBid is the shared ask-side settlement. A non-nil value marks
// the mixed native/WETH entry point.
func (e *Exchange) settleTakerBid(ctx context.Context, sender common.Address, takerBid *chain.TakerOrder, makerAsk *chain.MakerOrder, value *big.Int) (*TakerBidEvent, error) {
	if takerBid.Taker != sender {
		return nil, ErrTakerNotSender
	}
	if err := e.validateMakerOrder(makerAsk); err != nil {
		return nil, err
	}
	if err := e.checkInterceptors(makerAsk, takerBid); err != nil {
		return nil, err
	}

	strat, ok := e.cfg.Strategies.Strategy(makerAsk.Strategy)
	if !ok {
		return nil, strategy.ErrStrategyNotWhitelisted
	}
	canExecute, tokenID, amount, err := strat.CanExecuteTakerBid(takerBid, makerAsk, e.clock())
	if err != nil {
		return nil, err
	}
	if !canExecute {
		return nil, ErrExecutionInvalid
	}

	price := new(big.Int).Set(takerBid.Price)
	s, err := e.prepareSettlement(ctx, makerAsk, strat, tokenID, amount, price,
		takerBid.Taker, makerAsk.Maker, makerAsk.MinPercentageToAsk,
		makerAsk.Interceptor, makerAsk.InterceptorExtra, ErrMakerInterceptor)
	if err != nil {
		return nil, err
	}
	if value != nil {
		s.nativePayout = true
		s.value = value
	}
	if err := e.executeSettlement(ctx, s); err != nil {
		return nil, err
	}
	if err := e.cfg.Nonces.MarkExecuted(makerAsk.Maker, makerAsk.Nonce); err != nil {
		return nil, err
	}

	ev := &TakerBidEvent{
		OrderHash:  chain.OrderHash(makerAsk),
		OrderNonce: makerAsk.Nonce,
		Taker:      takerBid.Taker,
		Maker:      makerAsk.Maker,
		Strategy:   makerAsk.Strategy,
		Currency:   makerAsk.Currency,
		Collection: makerAsk.Collection,
		TokenID:    tokenID,
		Amount:     amount,
		Price:      price,
	}
	log.Infof("Taker bid settled: maker=%s taker=%s token=%s price=%s", ev.Maker, ev.Taker, tokenID, price)
	e.events.takerBid.Send(*ev)
	return ev, nil
}

// MatchBidWithTakerAsk fills a maker bid with the sender's ask, settling in
// the order's currency. The fill price is the maker's bid price.
func (e *Exchange) MatchBidWithTakerAsk(ctx context.Context, sender common.Address, takerAsk *chain.TakerOrder, makerBid *chain.MakerOrder) (*TakerAskEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if makerBid.IsOrderAsk || !takerAsk.IsOrderAsk {
		return nil, ErrWrongSides
	}
	if takerAsk.Taker != sender {
		return nil, ErrTakerNotSender
	}
	if err := e.validateMakerOrder(makerBid); err != nil {
		return nil, err
	}
	if err := e.checkInterceptors(makerBid, takerAsk); err != nil {
		return nil, err
	}

	strat, ok := e.cfg.Strategies.Strategy(makerBid.Strategy)
	if !ok {
		return nil, strategy.ErrStrategyNotWhitelisted
	}
	canExecute, tokenID, amount, err := strat.CanExecuteTakerAsk(takerAsk, makerBid, e.clock())
	if err != nil {
		return nil, err
	}
	if !canExecute {
		return nil, ErrExecutionInvalid
	}

	price := new(big.Int).Set(makerBid.Price)
	// The taker is the selling side here, so their slippage floor governs
	// and their interceptor guards the asset.
	s, err := e.prepareSettlement(ctx, makerBid, strat, tokenID, amount, price,
		makerBid.Maker, takerAsk.Taker, takerAsk.MinPercentageToAsk,
		takerAsk.Interceptor, takerAsk.InterceptorExtra, ErrTakerInterceptor)
	if err != nil {
		return nil, err
	}
	if err := e.executeSettlement(ctx, s); err != nil {
		return nil, err
	}
	if err := e.cfg.Nonces.MarkExecuted(makerBid.Maker, makerBid.Nonce); err != nil {
		return nil, err
	}

	ev := &TakerAskEvent{
		OrderHash:  chain.OrderHash(makerBid),
		OrderNonce: makerBid.Nonce,
		Taker:      takerAsk.Taker,
		Maker:      makerBid.Maker,
		Strategy:   makerBid.Strategy,
		Currency:   makerBid.Currency,
		Collection: makerBid.Collection,
		TokenID:    tokenID,
		Amount:     amount,
		Price:      price,
	}
	log.Infof("Taker ask settled: maker=%s taker=%s token=%s price=%s", ev.Maker, ev.Taker, tokenID, price)
	e.events.takerAsk.Send(*ev)
	return ev, nil
}

// validateMakerOrder runs the side-independent maker checks: a real maker,
// a positive amount, a live nonce, a valid signature, and whitelisted
// currency and strategy.
func (e *Exchange) validateMakerOrder(o *chain.MakerOrder) error {
	if o.Maker == (common.Address{}) {
		return ErrInvalidMaker
	}
	if o.Amount == nil || o.Amount.Sign() == 0 {
		return ErrZeroAmount
	}
	used, err := e.cfg.Nonces.IsExecutedOrCancelled(o.Maker, o.Nonce)
	if err != nil {
		return fmt.Errorf("nonce lookup failed: %w", err)
	}
	if used {
		return ErrOrderExpired
	}
	if err := chain.VerifySignature(o.Maker, e.separator, chain.OrderHash(o), o.Signature, e.cfg.ContractSigners); err != nil {
		return err
	}

	currencyAddr := o.Currency
	if currencyAddr == (common.Address{}) {
		currencyAddr = e.cfg.WETHAddress
	}
	if !e.cfg.Currencies.IsCurrencyWhitelisted(currencyAddr) {
		return registry.ErrCurrencyNotWhitelisted
	}
	if !e.cfg.Strategies.IsStrategyWhitelisted(o.Strategy) {
		return strategy.ErrStrategyNotWhitelisted
	}
	return nil
}

func (e *Exchange) checkInterceptors(maker *chain.MakerOrder, taker *chain.TakerOrder) error {
	if maker.Interceptor != (common.Address{}) && !e.cfg.Interceptors.IsInterceptorWhitelisted(maker.Interceptor) {
		return ErrMakerInterceptor
	}
	if taker.Interceptor != (common.Address{}) && !e.cfg.Interceptors.IsInterceptorWhitelisted(taker.Interceptor) {
		return ErrTakerInterceptor
	}
	return nil
}

// settlementCurrency resolves the order's settlement token. The zero
// currency settles through WETH and pays the selling side in native coin.
func (e *Exchange) settlementCurrency(o *chain.MakerOrder) (token.ERC20, bool, error) {
	if o.Currency == (common.Address{}) {
		return e.cfg.WETH, true, nil
	}
	if o.Currency == e.cfg.WETHAddress {
		return e.cfg.WETH, false, nil
	}
	cur, ok := e.cfg.Resolver.Currency(o.Currency)
	if !ok {
		return nil, false, fmt.Errorf("unknown currency %s", o.Currency)
	}
	return cur, false, nil
}

// settlement is one match's resolved collaborators and computed splits,
// assembled before any ledger is touched.
type settlement struct {
	collection   common.Address
	coll         token.Collection
	tokenID      *big.Int
	amount       *big.Int
	price        *big.Int
	currency     token.ERC20
	currencyAddr common.Address
	buyer        common.Address
	seller       common.Address
	buyerProxy   common.Address
	sellerProxy  common.Address
	transferrer  transfer.Transferrer
	hook         interceptor.Interceptor
	hookExtra    []byte
	nativePayout bool

	protocolFee      *big.Int
	royaltyRecipient common.Address
	royaltyAmount    *big.Int
	net              *big.Int

	value     *big.Int // non-nil on the mixed native/WETH path
	deposited *big.Int
}

// prepareSettlement resolves every collaborator a fill needs and runs all
// the gates that can be evaluated without moving funds: delegate proxies on
// both sides, the transfer handler, the interceptor's read-only check, the
// royalty split, and the slippage floor. interceptorErr names the side whose
// interceptor failed the whitelist lookup.
func (e *Exchange) prepareSettlement(ctx context.Context, o *chain.MakerOrder, strat strategy.Strategy,
	tokenID, amount, price *big.Int, buyer, seller common.Address, minPercentageToAsk uint64,
	interceptorAddr common.Address, interceptorExtra []byte, interceptorErr error) (*settlement, error) {

	currency, nativePayout, err := e.settlementCurrency(o)
	if err != nil {
		return nil, err
	}
	coll, ok := e.cfg.Resolver.Collection(o.Collection)
	if !ok {
		return nil, fmt.Errorf("unknown collection %s", o.Collection)
	}
	buyerProxy, err := e.cfg.Authorizations.AuthorizedProxy(buyer)
	if err != nil {
		return nil, err
	}
	sellerProxy, err := e.cfg.Authorizations.AuthorizedProxy(seller)
	if err != nil {
		return nil, err
	}
	tr, err := e.cfg.Transfers.TransferrerFor(o.Collection, coll)
	if err != nil {
		return nil, err
	}

	var hook interceptor.Interceptor
	if interceptorAddr != (common.Address{}) {
		hook, ok = e.cfg.Interceptors.Interceptor(interceptorAddr)
		if !ok {
			return nil, interceptorErr
		}
		if err := hook.CheckTransfer(ctx, o.Collection, coll, seller, tokenID, price, interceptorExtra); err != nil {
			return nil, err
		}
	}

	protocolFee := new(big.Int).Mul(price, new(big.Int).SetUint64(strat.ProtocolFeeBps()))
	protocolFee.Div(protocolFee, bps)
	royaltyRecipient, royaltyAmount, err := e.cfg.Royalties.CalculateRoyaltyFeeAndGetRecipient(o.Collection, tokenID, price)
	if err != nil {
		return nil, err
	}
	if royaltyAmount == nil || royaltyRecipient == (common.Address{}) {
		royaltyAmount = new(big.Int)
	}
	net := new(big.Int).Sub(price, protocolFee)
	net.Sub(net, royaltyAmount)
	floor := new(big.Int).Mul(price, new(big.Int).SetUint64(minPercentageToAsk))
	floor.Div(floor, bps)
	if net.Cmp(floor) < 0 {
		return nil, ErrFeesTooHigh
	}

	return &settlement{
		collection:       o.Collection,
		coll:             coll,
		tokenID:          tokenID,
		amount:           amount,
		price:            price,
		currency:         currency,
		currencyAddr:     o.Currency,
		buyer:            buyer,
		seller:           seller,
		buyerProxy:       buyerProxy,
		sellerProxy:      sellerProxy,
		transferrer:      tr,
		hook:             hook,
		hookExtra:        interceptorExtra,
		nativePayout:     nativePayout,
		protocolFee:      protocolFee,
		royaltyRecipient: royaltyRecipient,
		royaltyAmount:    royaltyAmount,
		net:              net,
	}, nil
}

// fundMove records one applied currency transfer so a failed settlement can
// be unwound.
type fundMove struct {
	from   common.Address
	to     common.Address
	amount *big.Int
}

// executeSettlement moves funds and the asset for a prepared settlement:
// protocol fee, royalty, and seller net out of the buyer through the buyer's
// delegate proxy, then the interceptor hook and the NFT through the seller's
// proxy. If a step fails, the currency moves already applied and any native
// deposit are unwound before the error is returned.
func (e *Exchange) executeSettlement(ctx context.Context, s *settlement) error {
	if s.value != nil {
		deposited, err := e.fundFromNative(ctx, s.buyer, s.value, s.price)
		if err != nil {
			return err
		}
		s.deposited = deposited
	}

	var moves []fundMove
	fail := func(err error) error {
		for i := len(moves) - 1; i >= 0; i-- {
			m := moves[i]
			if uerr := s.currency.Transfer(ctx, m.to, m.from, m.amount); uerr != nil {
				log.Errorf("Unwind of %s from %s back to %s failed: %v", m.amount, m.to, m.from, uerr)
			}
		}
		if s.deposited != nil && s.deposited.Sign() > 0 {
			if uerr := e.cfg.WETH.Withdraw(ctx, s.buyer, s.deposited); uerr != nil {
				log.Errorf("Unwind of the %s deposit for %s failed: %v", s.deposited, s.buyer, uerr)
			}
		}
		return err
	}
	pay := func(to common.Address, amount *big.Int, what string) error {
		if err := s.currency.TransferFrom(ctx, s.buyerProxy, s.buyer, to, amount); err != nil {
			return fail(fmt.Errorf("%s failed: %w", what, err))
		}
		moves = append(moves, fundMove{from: s.buyer, to: to, amount: amount})
		return nil
	}

	if s.protocolFee.Sign() > 0 {
		if err := pay(e.cfg.ProtocolFeeRecipient, s.protocolFee, "protocol fee transfer"); err != nil {
			return err
		}
	}
	if s.royaltyAmount.Sign() > 0 {
		if err := pay(s.royaltyRecipient, s.royaltyAmount, "royalty transfer"); err != nil {
			return err
		}
	}
	if s.net.Sign() > 0 {
		if err := pay(s.seller, s.net, "seller payment"); err != nil {
			return err
		}
	}

	if s.hook != nil {
		if err := s.hook.BeforeTransfer(ctx, s.collection, s.coll, s.seller, s.tokenID, s.price, s.hookExtra); err != nil {
			return fail(err)
		}
	}
	if err := s.transferrer.TransferNFT(ctx, s.coll, s.sellerProxy, s.seller, s.buyer, s.tokenID, s.amount); err != nil {
		return fail(err)
	}

	if s.royaltyAmount.Sign() > 0 {
		log.Debugf("Royalty of %s paid to %s for %s/%s", s.royaltyAmount, s.royaltyRecipient, s.collection, s.tokenID)
		e.events.royalty.Send(RoyaltyPaymentEvent{
			Collection: s.collection,
			TokenID:    s.tokenID,
			Recipient:  s.royaltyRecipient,
			Currency:   s.currencyAddr,
			Amount:     s.royaltyAmount,
		})
	}
	if s.nativePayout && s.net.Sign() > 0 {
		if err := e.cfg.WETH.Withdraw(ctx, s.seller, s.net); err != nil {
			return fmt.Errorf("seller unwrap failed: %w", err)
		}
	}
	return nil
}

// fundFromNative wraps the sender's attached native coin into WETH, first
// checking that the attached value plus the sender's existing WETH balance
// covers the fill price. Attached value beyond the price is never pulled.
// Returns the amount deposited.
func (e *Exchange) fundFromNative(ctx context.Context, sender common.Address, value, price *big.Int) (*big.Int, error) {
	used := new(big.Int).Set(value)
	if used.Cmp(price) > 0 {
		used.Set(price)
	}
	funded := new(big.Int).Add(e.cfg.WETH.BalanceOf(sender), used)
	if funded.Cmp(price) < 0 {
		return nil, ErrInsufficientWETH
	}
	if used.Sign() > 0 {
		if err := e.cfg.WETH.Deposit(ctx, sender, used); err != nil {
			return nil, fmt.Errorf("deposit failed: %w", err)
		}
	}
	return used, nil
}
