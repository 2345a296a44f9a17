package chain

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signature verification errors. Each failure mode is distinct so callers can
// surface the precise reason.
var (
	ErrInvalidVParameter      = errors.New("Signature: invalid v parameter")
	ErrInvalidSParameter      = errors.New("Signature: invalid s parameter")
	ErrInvalidSignatureLength = errors.New("Signature: invalid length")
	ErrInvalidSignature       = errors.New("Signature: Invalid")
)

// ValidSignatureMagic is the value a contract signer returns to accept a
// digest, the first four bytes of keccak256("isValidSignature(bytes32,bytes)").
var ValidSignatureMagic = [4]byte{0x16, 0x26, 0xba, 0x7e}

// secp256k1HalfN is half the curve order. Signatures with s above this value
// are malleable and rejected.
var secp256k1HalfN = new(big.Int).Rsh(crypto.S256().Params().N, 1)

// ContractSigner validates signatures on behalf of a contract account, the
// ERC-1271 capability. A valid signature returns ValidSignatureMagic.
type ContractSigner interface {
	IsValidSignature(digest common.Hash, signature []byte) ([4]byte, error)
}

// ContractSignerResolver reports whether an address has an associated
// contract signer.
type ContractSignerResolver interface {
	ContractSigner(addr common.Address) (ContractSigner, bool)
}

// SignOrder signs a maker order for the given domain and stores the 65-byte
// r||s||v signature on the order. The recovery id is normalized to 27/28.
func SignOrder(priv *ecdsa.PrivateKey, domain *EIP712Domain, order *MakerOrder) error {
	digest := SignDigest(domain.Separator(), OrderHash(order))
	sig, err := crypto.Sign(digest.Bytes(), priv)
	if err != nil {
		return fmt.Errorf("failed to sign order: %w", err)
	}
	sig[64] += 27
	order.Signature = sig
	return nil
}

// VerifySignature checks a maker order signature against the expected signer.
//
// A 65-byte signature is treated as a plain ECDSA signature: s must be in the
// lower half of the curve order, v must be 27 or 28, and the recovered
// address must be non-zero and equal the signer. Any other length dispatches
// to the signer's contract-signature capability; the signature is valid iff
// the contract returns the magic value without error.
func VerifySignature(signer common.Address, domainSeparator, orderHash common.Hash, sig []byte, contracts ContractSignerResolver) error {
	digest := SignDigest(domainSeparator, orderHash)

	if len(sig) != 65 {
		if contracts != nil {
			if cs, ok := contracts.ContractSigner(signer); ok {
				return verifyContractSignature(cs, digest, sig)
			}
		}
		return ErrInvalidSignatureLength
	}

	s := new(big.Int).SetBytes(sig[32:64])
	if s.Cmp(secp256k1HalfN) > 0 {
		return ErrInvalidSParameter
	}
	v := sig[64]
	if v != 27 && v != 28 {
		return ErrInvalidVParameter
	}

	// Contract makers sign through their validation contract even when the
	// signature happens to be 65 bytes long.
	if contracts != nil {
		if cs, ok := contracts.ContractSigner(signer); ok {
			return verifyContractSignature(cs, digest, sig)
		}
	}

	recovery := make([]byte, 65)
	copy(recovery, sig[:64])
	recovery[64] = v - 27

	pub, err := crypto.SigToPub(digest.Bytes(), recovery)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	recovered := crypto.PubkeyToAddress(*pub)
	if recovered == (common.Address{}) || recovered != signer {
		return ErrInvalidSignature
	}
	return nil
}

func verifyContractSignature(cs ContractSigner, digest common.Hash, sig []byte) error {
	magic, err := cs.IsValidSignature(digest, sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if magic != ValidSignatureMagic {
		return ErrInvalidSignature
	}
	return nil
}
