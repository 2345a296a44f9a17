package strategy

import (
	"bytes"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/palladio-labs/nft-exchange-go/chain"
)

// AnyItemInASetForFixedPrice is a maker bid over a fixed set of token ids,
// committed to as a Merkle root in the maker params. The taker ask supplies
// the proof for its token id in its own params.
type AnyItemInASetForFixedPrice struct {
	protocolFeeBps uint64
}

// NewAnyItemInASetForFixedPrice creates the token-set offer strategy with
// the given protocol fee.
func NewAnyItemInASetForFixedPrice(protocolFeeBps uint64) *AnyItemInASetForFixedPrice {
	return &AnyItemInASetForFixedPrice{protocolFeeBps: protocolFeeBps}
}

// ProtocolFeeBps returns the protocol fee in basis points.
func (s *AnyItemInASetForFixedPrice) ProtocolFeeBps() uint64 { return s.protocolFeeBps }

// CanExecuteTakerBid always rejects: set offers are maker bids.
func (s *AnyItemInASetForFixedPrice) CanExecuteTakerBid(*chain.TakerOrder, *chain.MakerOrder, time.Time) (bool, *big.Int, *big.Int, error) {
	return false, nil, nil, nil
}

// CanExecuteTakerAsk accepts a taker token id whose Merkle proof verifies
// against the root committed in the maker params.
func (s *AnyItemInASetForFixedPrice) CanExecuteTakerAsk(takerAsk *chain.TakerOrder, makerBid *chain.MakerOrder, now time.Time) (bool, *big.Int, *big.Int, error) {
	root, err := decodeRootParams(makerBid.Params)
	if err != nil {
		return false, nil, nil, err
	}
	proof, err := decodeProofParams(takerAsk.Params)
	if err != nil {
		return false, nil, nil, err
	}

	leaf := TokenIDLeaf(takerAsk.TokenID)
	ok := saleable(makerBid, now) &&
		makerBid.Price.Cmp(takerAsk.Price) == 0 &&
		VerifyMerkleProof(root, leaf, proof)
	return ok, takerAsk.TokenID, makerBid.Amount, nil
}

// TokenIDLeaf computes the Merkle leaf for a token id: keccak256 of its
// 32-byte big-endian encoding.
func TokenIDLeaf(tokenID *big.Int) common.Hash {
	return crypto.Keccak256Hash(common.BigToHash(tokenID).Bytes())
}

// VerifyMerkleProof checks a sorted-pair Merkle proof: at each level the
// smaller node hashes first, so the prover does not need to track left/right
// positions.
func VerifyMerkleProof(root, leaf common.Hash, proof []common.Hash) bool {
	computed := leaf
	for _, node := range proof {
		if bytes.Compare(computed.Bytes(), node.Bytes()) <= 0 {
			computed = crypto.Keccak256Hash(computed.Bytes(), node.Bytes())
		} else {
			computed = crypto.Keccak256Hash(node.Bytes(), computed.Bytes())
		}
	}
	return computed == root
}
