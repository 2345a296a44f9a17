package strategy

import (
	"bytes"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/palladio-labs/nft-exchange-go/chain"
)

var (
	testOwner = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	testMaker = common.HexToAddress("0x0000000000000000000000000000000000001111")
	testTaker = common.HexToAddress("0x0000000000000000000000000000000000002222")
)

func makerAsk(price, tokenID int64, start, end uint64) *chain.MakerOrder {
	return &chain.MakerOrder{
		IsOrderAsk: true,
		Maker:      testMaker,
		Price:      big.NewInt(price),
		TokenID:    big.NewInt(tokenID),
		Amount:     big.NewInt(1),
		StartTime:  start,
		EndTime:    end,
	}
}

func makerBid(price, tokenID int64, start, end uint64) *chain.MakerOrder {
	o := makerAsk(price, tokenID, start, end)
	o.IsOrderAsk = false
	return o
}

func takerOrder(isAsk bool, price, tokenID int64) *chain.TakerOrder {
	return &chain.TakerOrder{
		IsOrderAsk: isAsk,
		Taker:      testTaker,
		Price:      big.NewInt(price),
		TokenID:    big.NewInt(tokenID),
	}
}

func TestManagerWhitelist(t *testing.T) {
	m := NewManager(testOwner)
	addr := common.HexToAddress("0x0000000000000000000000000000000000000501")
	std := NewStandardSaleForFixedPrice(200)

	require.ErrorIs(t, m.AddStrategy(testTaker, addr, std), ErrNotOwner)
	require.ErrorIs(t, m.AddStrategy(testOwner, common.Address{}, std), ErrStrategyNullAddress)
	require.NoError(t, m.AddStrategy(testOwner, addr, std))
	require.ErrorIs(t, m.AddStrategy(testOwner, addr, std), ErrStrategyAlreadyWhitelisted)
	require.True(t, m.IsStrategyWhitelisted(addr))

	got, ok := m.Strategy(addr)
	require.True(t, ok)
	require.Equal(t, uint64(200), got.ProtocolFeeBps())

	require.ErrorIs(t, m.RemoveStrategy(testTaker, addr), ErrNotOwner)
	require.NoError(t, m.RemoveStrategy(testOwner, addr))
	require.ErrorIs(t, m.RemoveStrategy(testOwner, addr), ErrStrategyNotWhitelisted)
	require.False(t, m.IsStrategyWhitelisted(addr))
}

func TestStandardSale(t *testing.T) {
	s := NewStandardSaleForFixedPrice(200)
	now := time.Unix(1000, 0)
	ask := makerAsk(100, 7, 900, 1100)

	tests := []struct {
		name  string
		taker *chain.TakerOrder
		at    time.Time
		want  bool
	}{
		{"exact match", takerOrder(false, 100, 7), now, true},
		{"price below", takerOrder(false, 99, 7), now, false},
		{"price above", takerOrder(false, 101, 7), now, false},
		{"wrong token", takerOrder(false, 100, 8), now, false},
		{"before start", takerOrder(false, 100, 7), time.Unix(899, 0), false},
		{"at start", takerOrder(false, 100, 7), time.Unix(900, 0), true},
		{"at end", takerOrder(false, 100, 7), time.Unix(1100, 0), true},
		{"after end", takerOrder(false, 100, 7), time.Unix(1101, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, tokenID, amount, err := s.CanExecuteTakerBid(tt.taker, ask, tt.at)
			require.NoError(t, err)
			require.Equal(t, tt.want, ok)
			if ok {
				require.Zero(t, tokenID.Cmp(ask.TokenID))
				require.Zero(t, amount.Cmp(ask.Amount))
			}
		})
	}

	// Zero-amount orders never match.
	zero := makerAsk(100, 7, 900, 1100)
	zero.Amount = big.NewInt(0)
	ok, _, _, err := s.CanExecuteTakerBid(takerOrder(false, 100, 7), zero, now)
	require.NoError(t, err)
	require.False(t, ok)

	// Bid side mirrors the ask side.
	bid := makerBid(100, 7, 900, 1100)
	ok, tokenID, _, err := s.CanExecuteTakerAsk(takerOrder(true, 100, 7), bid, now)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, tokenID.Cmp(bid.TokenID))
}

func TestCollectionOffer(t *testing.T) {
	s := NewAnyItemFromCollectionForFixedPrice(200)
	now := time.Unix(1000, 0)
	bid := makerBid(100, 0, 900, 1100)

	// The taker picks the token; the bid carries none.
	ok, tokenID, amount, err := s.CanExecuteTakerAsk(takerOrder(true, 100, 42), bid, now)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, tokenID.Cmp(big.NewInt(42)))
	require.Zero(t, amount.Cmp(bid.Amount))

	ok, _, _, err = s.CanExecuteTakerAsk(takerOrder(true, 99, 42), bid, now)
	require.NoError(t, err)
	require.False(t, ok)

	// Collection offers never execute as taker bids.
	ok, _, _, err = s.CanExecuteTakerBid(takerOrder(false, 100, 42), makerAsk(100, 42, 900, 1100), now)
	require.NoError(t, err)
	require.False(t, ok)
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a.Bytes(), b.Bytes())
}

// merkleTree builds a sorted-pair tree over leaves and returns the root
// plus a proof for each leaf index. Odd levels duplicate their last node.
func merkleTree(t *testing.T, leaves []common.Hash) (common.Hash, [][]common.Hash) {
	t.Helper()
	proofs := make([][]common.Hash, len(leaves))
	for target := range leaves {
		level := append([]common.Hash(nil), leaves...)
		index := target
		for len(level) > 1 {
			if len(level)%2 == 1 {
				level = append(level, level[len(level)-1])
			}
			proofs[target] = append(proofs[target], level[index^1])
			next := make([]common.Hash, 0, len(level)/2)
			for i := 0; i < len(level); i += 2 {
				next = append(next, hashPair(level[i], level[i+1]))
			}
			level, index = next, index/2
		}
	}

	level := append([]common.Hash(nil), leaves...)
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]common.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, hashPair(level[i], level[i+1]))
		}
		level = next
	}
	return level[0], proofs
}

func TestItemSetOffer(t *testing.T) {
	tokenIDs := []int64{3, 8, 21, 55}
	leaves := make([]common.Hash, len(tokenIDs))
	for i, id := range tokenIDs {
		leaves[i] = TokenIDLeaf(big.NewInt(id))
	}
	root, proofs := merkleTree(t, leaves)

	for i, id := range tokenIDs {
		require.True(t, VerifyMerkleProof(root, leaves[i], proofs[i]), "token %d", id)
	}
	require.False(t, VerifyMerkleProof(root, TokenIDLeaf(big.NewInt(99)), proofs[0]))

	s := NewAnyItemInASetForFixedPrice(200)
	now := time.Unix(1000, 0)
	bid := makerBid(100, 0, 900, 1100)
	bid.Params = EncodeRootParams(root)

	taker := takerOrder(true, 100, 21)
	taker.Params = EncodeProofParams(proofs[2])
	ok, tokenID, _, err := s.CanExecuteTakerAsk(taker, bid, now)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, tokenID.Cmp(big.NewInt(21)))

	// A token outside the set fails even with a valid proof attached.
	outside := takerOrder(true, 100, 99)
	outside.Params = EncodeProofParams(proofs[2])
	ok, _, _, err = s.CanExecuteTakerAsk(outside, bid, now)
	require.NoError(t, err)
	require.False(t, ok)

	// Undecodable payloads abort with the params error.
	garbled := takerOrder(true, 100, 21)
	garbled.Params = []byte{0x01, 0x02}
	_, _, _, err = s.CanExecuteTakerAsk(garbled, bid, now)
	require.ErrorIs(t, err, ErrBadParams)

	noRoot := makerBid(100, 0, 900, 1100)
	noRoot.Params = nil
	_, _, _, err = s.CanExecuteTakerAsk(taker, noRoot, now)
	require.ErrorIs(t, err, ErrBadParams)
}

func TestDutchAuctionPrice(t *testing.T) {
	start, end := big.NewInt(1000), big.NewInt(100)
	var startTime, endTime uint64 = 10000, 11000

	require.Zero(t, CurrentAuctionPrice(start, end, startTime, endTime, time.Unix(9000, 0)).Cmp(start))
	require.Zero(t, CurrentAuctionPrice(start, end, startTime, endTime, time.Unix(10000, 0)).Cmp(start))
	require.Zero(t, CurrentAuctionPrice(start, end, startTime, endTime, time.Unix(11000, 0)).Cmp(end))
	require.Zero(t, CurrentAuctionPrice(start, end, startTime, endTime, time.Unix(12000, 0)).Cmp(end))
	require.Zero(t, CurrentAuctionPrice(start, end, startTime, endTime, time.Unix(10500, 0)).Cmp(big.NewInt(550)))

	// Non-increasing over the whole window.
	prev := CurrentAuctionPrice(start, end, startTime, endTime, time.Unix(10000, 0))
	for ts := int64(10001); ts <= 11000; ts += 7 {
		cur := CurrentAuctionPrice(start, end, startTime, endTime, time.Unix(ts, 0))
		require.LessOrEqual(t, cur.Cmp(prev), 0, "price rose at %d", ts)
		prev = cur
	}
}

func TestDutchAuction(t *testing.T) {
	s, err := NewDutchAuction(testOwner, 200, 900)
	require.NoError(t, err)

	_, err = NewDutchAuction(testOwner, 200, 899)
	require.ErrorIs(t, err, ErrMinAuctionLengthFloor)

	ask := makerAsk(100, 7, 10000, 11000)
	ask.Params = EncodeUint256Params(big.NewInt(1000))

	// Halfway through, the price is 550.
	half := time.Unix(10500, 0)
	ok, tokenID, _, err := s.CanExecuteTakerBid(takerOrder(false, 550, 7), ask, half)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, tokenID.Cmp(ask.TokenID))

	// Overpaying is fine, underbidding is not.
	ok, _, _, err = s.CanExecuteTakerBid(takerOrder(false, 600, 7), ask, half)
	require.NoError(t, err)
	require.True(t, ok)
	ok, _, _, err = s.CanExecuteTakerBid(takerOrder(false, 549, 7), ask, half)
	require.NoError(t, err)
	require.False(t, ok)

	// Wrong token never matches.
	ok, _, _, err = s.CanExecuteTakerBid(takerOrder(false, 600, 8), ask, half)
	require.NoError(t, err)
	require.False(t, ok)

	// Start price must exceed the end price.
	flat := makerAsk(100, 7, 10000, 11000)
	flat.Params = EncodeUint256Params(big.NewInt(100))
	_, _, _, err = s.CanExecuteTakerBid(takerOrder(false, 100, 7), flat, half)
	require.ErrorIs(t, err, ErrAuctionStartBelowEnd)

	// The window must meet the minimum auction length.
	short := makerAsk(100, 7, 10000, 10400)
	short.Params = EncodeUint256Params(big.NewInt(1000))
	_, _, _, err = s.CanExecuteTakerBid(takerOrder(false, 1000, 7), short, time.Unix(10200, 0))
	require.ErrorIs(t, err, ErrAuctionTooShort)

	// Raising the minimum retroactively rejects shorter auctions.
	require.ErrorIs(t, s.UpdateMinimumAuctionLength(testTaker, 1800), ErrNotOwner)
	require.ErrorIs(t, s.UpdateMinimumAuctionLength(testOwner, 100), ErrMinAuctionLengthFloor)
	require.NoError(t, s.UpdateMinimumAuctionLength(testOwner, 1800))
	_, _, _, err = s.CanExecuteTakerBid(takerOrder(false, 550, 7), ask, half)
	require.ErrorIs(t, err, ErrAuctionTooShort)

	// Auctions are ask-side only.
	ok, _, _, err = s.CanExecuteTakerAsk(takerOrder(true, 550, 7), makerBid(100, 7, 10000, 11000), half)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPrivateSale(t *testing.T) {
	s := NewPrivateSale()
	require.Zero(t, s.ProtocolFeeBps())

	now := time.Unix(1000, 0)
	ask := makerAsk(100, 7, 900, 1100)
	ask.Params = EncodeAddressParams(testTaker)

	ok, tokenID, _, err := s.CanExecuteTakerBid(takerOrder(false, 100, 7), ask, now)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, tokenID.Cmp(ask.TokenID))

	// Anyone but the designated buyer is rejected.
	stranger := takerOrder(false, 100, 7)
	stranger.Taker = common.HexToAddress("0x0000000000000000000000000000000000009999")
	ok, _, _, err = s.CanExecuteTakerBid(stranger, ask, now)
	require.NoError(t, err)
	require.False(t, ok)

	ok, _, _, err = s.CanExecuteTakerBid(takerOrder(false, 99, 7), ask, now)
	require.NoError(t, err)
	require.False(t, ok)

	_, _, _, err = s.CanExecuteTakerBid(takerOrder(false, 100, 7), makerAsk(100, 7, 900, 1100), now)
	require.ErrorIs(t, err, ErrBadParams)

	ok, _, _, err = s.CanExecuteTakerAsk(takerOrder(true, 100, 7), makerBid(100, 7, 900, 1100), now)
	require.NoError(t, err)
	require.False(t, ok)
}
