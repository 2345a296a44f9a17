package strategy

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrBadParams is returned when a strategy payload does not decode to the
// shape the strategy expects.
var ErrBadParams = errors.New("Strategy: malformed params")

var (
	uint256Type, _    = abi.NewType("uint256", "", nil)
	addressType, _    = abi.NewType("address", "", nil)
	bytes32Type, _    = abi.NewType("bytes32", "", nil)
	bytes32ArrType, _ = abi.NewType("bytes32[]", "", nil)
	uint256Arguments  = abi.Arguments{{Type: uint256Type}}
	addressArguments  = abi.Arguments{{Type: addressType}}
	bytes32Arguments  = abi.Arguments{{Type: bytes32Type}}
	proofArguments    = abi.Arguments{{Type: bytes32ArrType}}
)

// EncodeUint256Params packs a single uint256 strategy payload.
func EncodeUint256Params(v *big.Int) []byte {
	out, err := uint256Arguments.Pack(v)
	if err != nil {
		panic("failed to encode uint256 params: " + err.Error())
	}
	return out
}

// EncodeAddressParams packs a single address strategy payload.
func EncodeAddressParams(addr common.Address) []byte {
	out, err := addressArguments.Pack(addr)
	if err != nil {
		panic("failed to encode address params: " + err.Error())
	}
	return out
}

// EncodeRootParams packs a Merkle root strategy payload.
func EncodeRootParams(root common.Hash) []byte {
	out, err := bytes32Arguments.Pack(root)
	if err != nil {
		panic("failed to encode root params: " + err.Error())
	}
	return out
}

// EncodeProofParams packs a Merkle proof strategy payload.
func EncodeProofParams(proof []common.Hash) []byte {
	raw := make([][32]byte, len(proof))
	for i, h := range proof {
		raw[i] = h
	}
	out, err := proofArguments.Pack(raw)
	if err != nil {
		panic("failed to encode proof params: " + err.Error())
	}
	return out
}

func decodeUint256Params(params []byte) (*big.Int, error) {
	vals, err := uint256Arguments.Unpack(params)
	if err != nil {
		return nil, ErrBadParams
	}
	v, ok := vals[0].(*big.Int)
	if !ok {
		return nil, ErrBadParams
	}
	return v, nil
}

func decodeAddressParams(params []byte) (common.Address, error) {
	vals, err := addressArguments.Unpack(params)
	if err != nil {
		return common.Address{}, ErrBadParams
	}
	addr, ok := vals[0].(common.Address)
	if !ok {
		return common.Address{}, ErrBadParams
	}
	return addr, nil
}

func decodeRootParams(params []byte) (common.Hash, error) {
	vals, err := bytes32Arguments.Unpack(params)
	if err != nil {
		return common.Hash{}, ErrBadParams
	}
	raw, ok := vals[0].([32]byte)
	if !ok {
		return common.Hash{}, ErrBadParams
	}
	return common.Hash(raw), nil
}

func decodeProofParams(params []byte) ([]common.Hash, error) {
	vals, err := proofArguments.Unpack(params)
	if err != nil {
		return nil, ErrBadParams
	}
	raw, ok := vals[0].([][32]byte)
	if !ok {
		return nil, ErrBadParams
	}
	proof := make([]common.Hash, len(raw))
	for i, h := range raw {
		proof[i] = common.Hash(h)
	}
	return proof, nil
}
