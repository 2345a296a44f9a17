package strategy

import (
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/palladio-labs/nft-exchange-go/chain"
)

// Dutch auction errors.
var (
	ErrAuctionStartBelowEnd  = errors.New("Dutch Auction: start price must be greater than end price")
	ErrAuctionTooShort       = errors.New("Dutch Auction: length must be longer")
	ErrMinAuctionLengthFloor = errors.New("Owner: auction length must be > 15 min")
)

// minimumAuctionLengthFloor is the hard floor for the owner-configurable
// minimum auction length.
const minimumAuctionLengthFloor = 900 // seconds

// DutchAuction sells at a price falling linearly from a start price (first
// uint256 of the maker params) to the order price over the order window.
// Taker bids at or above the current price fill; overpaying is allowed and
// the taker pays their bid.
type DutchAuction struct {
	protocolFeeBps uint64

	mu               sync.RWMutex
	owner            common.Address
	minAuctionLength uint64
}

// NewDutchAuction creates the Dutch auction strategy. minAuctionLength is
// the minimum order window in seconds, floored at 900.
func NewDutchAuction(owner common.Address, protocolFeeBps, minAuctionLength uint64) (*DutchAuction, error) {
	if minAuctionLength < minimumAuctionLengthFloor {
		return nil, ErrMinAuctionLengthFloor
	}
	return &DutchAuction{
		protocolFeeBps:   protocolFeeBps,
		owner:            owner,
		minAuctionLength: minAuctionLength,
	}, nil
}

// ProtocolFeeBps returns the protocol fee in basis points.
func (s *DutchAuction) ProtocolFeeBps() uint64 { return s.protocolFeeBps }

// UpdateMinimumAuctionLength adjusts the minimum auction length. Owner only,
// floored at 900 seconds.
func (s *DutchAuction) UpdateMinimumAuctionLength(caller common.Address, seconds uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.owner {
		return ErrNotOwner
	}
	if seconds < minimumAuctionLengthFloor {
		return ErrMinAuctionLengthFloor
	}
	s.minAuctionLength = seconds
	return nil
}

// MinimumAuctionLength returns the current minimum auction window in
// seconds.
func (s *DutchAuction) MinimumAuctionLength() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.minAuctionLength
}

// CanExecuteTakerBid accepts a taker bid at or above the current auction
// price. Malformed auctions (start price not above end price, window shorter
// than the minimum) abort with their specific error.
func (s *DutchAuction) CanExecuteTakerBid(takerBid *chain.TakerOrder, makerAsk *chain.MakerOrder, now time.Time) (bool, *big.Int, *big.Int, error) {
	startPrice, err := decodeUint256Params(makerAsk.Params)
	if err != nil {
		return false, nil, nil, err
	}
	endPrice := makerAsk.Price

	if makerAsk.EndTime <= makerAsk.StartTime {
		return false, nil, nil, ErrAuctionTooShort
	}
	duration := makerAsk.EndTime - makerAsk.StartTime
	if duration < s.MinimumAuctionLength() {
		return false, nil, nil, ErrAuctionTooShort
	}
	if startPrice.Cmp(endPrice) <= 0 {
		return false, nil, nil, ErrAuctionStartBelowEnd
	}

	current := CurrentAuctionPrice(startPrice, endPrice, makerAsk.StartTime, makerAsk.EndTime, now)
	ok := saleable(makerAsk, now) &&
		takerBid.Price.Cmp(current) >= 0 &&
		makerAsk.TokenID.Cmp(takerBid.TokenID) == 0
	return ok, makerAsk.TokenID, makerAsk.Amount, nil
}

// CanExecuteTakerAsk always rejects: auctions are maker asks.
func (s *DutchAuction) CanExecuteTakerAsk(*chain.TakerOrder, *chain.MakerOrder, time.Time) (bool, *big.Int, *big.Int, error) {
	return false, nil, nil, nil
}

// CurrentAuctionPrice interpolates the auction price at the given time,
// clamping elapsed time to the auction window so the price never undershoots
// the end price or overshoots the start price.
func CurrentAuctionPrice(startPrice, endPrice *big.Int, startTime, endTime uint64, now time.Time) *big.Int {
	ts := uint64(now.Unix())
	if ts <= startTime {
		return new(big.Int).Set(startPrice)
	}
	if ts >= endTime {
		return new(big.Int).Set(endPrice)
	}
	elapsed := new(big.Int).SetUint64(ts - startTime)
	duration := new(big.Int).SetUint64(endTime - startTime)

	drop := new(big.Int).Sub(startPrice, endPrice)
	drop.Mul(drop, elapsed)
	drop.Div(drop, duration)
	return new(big.Int).Sub(startPrice, drop)
}
