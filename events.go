package nftexchange

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

// TakerBidEvent reports a maker ask filled by a taker bid.
type TakerBidEvent struct {
	OrderHash  common.Hash
	OrderNonce uint64
	Taker      common.Address
	Maker      common.Address
	Strategy   common.Address
	Currency   common.Address
	Collection common.Address
	TokenID    *big.Int
	Amount     *big.Int
	Price      *big.Int
}

// TakerAskEvent reports a maker bid filled by a taker ask.
type TakerAskEvent struct {
	OrderHash  common.Hash
	OrderNonce uint64
	Taker      common.Address
	Maker      common.Address
	Strategy   common.Address
	Currency   common.Address
	Collection common.Address
	TokenID    *big.Int
	Amount     *big.Int
	Price      *big.Int
}

// RoyaltyPaymentEvent reports a royalty paid out during settlement.
type RoyaltyPaymentEvent struct {
	Collection common.Address
	TokenID    *big.Int
	Recipient  common.Address
	Currency   common.Address
	Amount     *big.Int
}

// CancelMultipleOrdersEvent reports individually cancelled maker nonces.
type CancelMultipleOrdersEvent struct {
	Maker  common.Address
	Nonces []uint64
}

// CancelAllOrdersEvent reports a maker's minimum nonce advance.
type CancelAllOrdersEvent struct {
	Maker       common.Address
	NewMinNonce uint64
}

// events bundles the exchange's feeds. Subscriptions are tracked in a scope
// so closing the exchange terminates them all.
type events struct {
	scope     event.SubscriptionScope
	takerBid  event.Feed
	takerAsk  event.Feed
	royalty   event.Feed
	cancels   event.Feed
	cancelAll event.Feed
}

// SubscribeTakerBid delivers taker-bid settlements to ch.
func (e *Exchange) SubscribeTakerBid(ch chan<- TakerBidEvent) event.Subscription {
	return e.events.scope.Track(e.events.takerBid.Subscribe(ch))
}

// SubscribeTakerAsk delivers taker-ask settlements to ch.
func (e *Exchange) SubscribeTakerAsk(ch chan<- TakerAskEvent) event.Subscription {
	return e.events.scope.Track(e.events.takerAsk.Subscribe(ch))
}

// SubscribeRoyaltyPayment delivers royalty payouts to ch.
func (e *Exchange) SubscribeRoyaltyPayment(ch chan<- RoyaltyPaymentEvent) event.Subscription {
	return e.events.scope.Track(e.events.royalty.Subscribe(ch))
}

// SubscribeCancelMultipleOrders delivers nonce cancellations to ch.
func (e *Exchange) SubscribeCancelMultipleOrders(ch chan<- CancelMultipleOrdersEvent) event.Subscription {
	return e.events.scope.Track(e.events.cancels.Subscribe(ch))
}

// SubscribeCancelAllOrders delivers minimum-nonce advances to ch.
func (e *Exchange) SubscribeCancelAllOrders(ch chan<- CancelAllOrdersEvent) event.Subscription {
	return e.events.scope.Track(e.events.cancelAll.Subscribe(ch))
}
