package protocol

import (
	"crypto/subtle"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// VerifySecp256k1 recovers the uncompressed secp256k1 public key that
// produced sig over hash and compares it against want. The recovery id
// selects between the two candidate points; callers obtain it from the
// signer alongside the signature.
func VerifySecp256k1(hash []byte, sig [SignatureLen]byte, recoveryID uint8, want [ExternalPublicKeyLen]byte) error {
	if recoveryID > 1 {
		return fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, recoveryID)
	}
	full := make([]byte, SignatureLen+1)
	copy(full, sig[:])
	full[SignatureLen] = recoveryID

	recovered, err := crypto.Ecrecover(hash, full)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if subtle.ConstantTimeCompare(recovered, want[:]) != 1 {
		return ErrInvalidSignature
	}
	return nil
}

// Keccak256 is the digest the ownership-rotation signature is made
// over. Kept here so every program and client hashes identically.
func Keccak256(data ...[]byte) []byte {
	return crypto.Keccak256(data...)
}
