package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EIP712 domain constants. Signatures are only valid against the exact name,
// version, chain id and verifying address they were produced for.
const (
	EIP712DomainName    = "PalladioExchange"
	EIP712DomainVersion = "1"
)

// Pre-computed type hashes using keccak256.
var (
	// EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)
	EIP712DomainTypeHash = crypto.Keccak256Hash([]byte(
		"EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)",
	))

	// MakerOrder(bool isOrderAsk,address maker,address collection,uint256 price,uint256 tokenId,uint256 amount,address strategy,address currency,uint256 nonce,uint256 startTime,uint256 endTime,uint256 minPercentageToAsk,bytes params,address interceptor,bytes interceptorExtra)
	MakerOrderTypeHash = crypto.Keccak256Hash([]byte(
		"MakerOrder(bool isOrderAsk,address maker,address collection,uint256 price,uint256 tokenId,uint256 amount,address strategy,address currency,uint256 nonce,uint256 startTime,uint256 endTime,uint256 minPercentageToAsk,bytes params,address interceptor,bytes interceptorExtra)",
	))
)

// EIP712Domain identifies the signing domain of one exchange deployment.
type EIP712Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

// NewEIP712Domain creates a domain with the standard name and version.
func NewEIP712Domain(chainID int64, verifyingContract common.Address) *EIP712Domain {
	return &EIP712Domain{
		Name:              EIP712DomainName,
		Version:           EIP712DomainVersion,
		ChainID:           big.NewInt(chainID),
		VerifyingContract: verifyingContract,
	}
}

// Separator computes the EIP712 domain separator hash.
func (d *EIP712Domain) Separator() common.Hash {
	nameHash := crypto.Keccak256Hash([]byte(d.Name))
	versionHash := crypto.Keccak256Hash([]byte(d.Version))

	bytes32Type, _ := abi.NewType("bytes32", "", nil)
	uint256Type, _ := abi.NewType("uint256", "", nil)
	addressType, _ := abi.NewType("address", "", nil)

	arguments := abi.Arguments{
		{Type: bytes32Type}, // typeHash
		{Type: bytes32Type}, // nameHash
		{Type: bytes32Type}, // versionHash
		{Type: uint256Type}, // chainId
		{Type: addressType}, // verifyingContract
	}

	encoded, err := arguments.Pack(
		EIP712DomainTypeHash,
		nameHash,
		versionHash,
		d.ChainID,
		d.VerifyingContract,
	)
	if err != nil {
		panic("failed to encode domain separator: " + err.Error())
	}

	return crypto.Keccak256Hash(encoded)
}

// OrderHash computes the struct hash of a maker order. The hash is a pure
// function of every signed field; the signature itself is excluded. Dynamic
// bytes fields (params, interceptorExtra) enter as their keccak256 hash per
// the EIP712 encoding of bytes.
func OrderHash(o *MakerOrder) common.Hash {
	bytes32Type, _ := abi.NewType("bytes32", "", nil)
	boolType, _ := abi.NewType("bool", "", nil)
	addressType, _ := abi.NewType("address", "", nil)
	uint256Type, _ := abi.NewType("uint256", "", nil)

	arguments := abi.Arguments{
		{Type: bytes32Type}, // typeHash
		{Type: boolType},    // isOrderAsk
		{Type: addressType}, // maker
		{Type: addressType}, // collection
		{Type: uint256Type}, // price
		{Type: uint256Type}, // tokenId
		{Type: uint256Type}, // amount
		{Type: addressType}, // strategy
		{Type: addressType}, // currency
		{Type: uint256Type}, // nonce
		{Type: uint256Type}, // startTime
		{Type: uint256Type}, // endTime
		{Type: uint256Type}, // minPercentageToAsk
		{Type: bytes32Type}, // keccak256(params)
		{Type: addressType}, // interceptor
		{Type: bytes32Type}, // keccak256(interceptorExtra)
	}

	encoded, err := arguments.Pack(
		MakerOrderTypeHash,
		o.IsOrderAsk,
		o.Maker,
		o.Collection,
		o.Price,
		o.TokenID,
		o.Amount,
		o.Strategy,
		o.Currency,
		new(big.Int).SetUint64(o.Nonce),
		new(big.Int).SetUint64(o.StartTime),
		new(big.Int).SetUint64(o.EndTime),
		new(big.Int).SetUint64(o.MinPercentageToAsk),
		crypto.Keccak256Hash(o.Params),
		o.Interceptor,
		crypto.Keccak256Hash(o.InterceptorExtra),
	)
	if err != nil {
		panic("failed to encode maker order: " + err.Error())
	}

	return crypto.Keccak256Hash(encoded)
}

// SignDigest builds the final digest to be signed:
// keccak256("\x19\x01" ++ domainSeparator ++ structHash).
func SignDigest(domainSeparator, structHash common.Hash) common.Hash {
	data := make([]byte, 0, 2+32+32)
	data = append(data, 0x19, 0x01)
	data = append(data, domainSeparator.Bytes()...)
	data = append(data, structHash.Bytes()...)
	return crypto.Keccak256Hash(data)
}
