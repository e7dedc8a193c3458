// Package record owns the admin record account layout. The record is
// created once by the bridge program and read by any program that
// needs the registration as a trust anchor.
package record

import (
	"github.com/gagliardetto/solana-go"

	"github.com/mothvane/bridgectl/internal/protocol"
)

// Size is the exact account data length: one discriminant byte
// followed by the three fixed fields. No variable-length fields.
const Size = 1 + protocol.ExternalPublicKeyLen + protocol.SeedMaterialLen + solana.PublicKeyLength

// discInitialized marks a written record. A zero discriminant is an
// allocated-but-unwritten account and decodes as not initialized.
const discInitialized = 1

// AdminRecord is the decoded account state.
type AdminRecord struct {
	ExternalPublicKey [protocol.ExternalPublicKeyLen]byte
	SeedMaterial      [protocol.SeedMaterialLen]byte
	CommissionProgram solana.PublicKey
}

// Encode renders the record at its fixed offsets:
// [1 disc][65 external pk][32 seed material][32 commission program].
func (r AdminRecord) Encode() []byte {
	buf := make([]byte, Size)
	buf[0] = discInitialized
	copy(buf[1:66], r.ExternalPublicKey[:])
	copy(buf[66:98], r.SeedMaterial[:])
	copy(buf[98:130], r.CommissionProgram[:])
	return buf
}

// Decode parses account data into a record. Data of the wrong length
// is malformed; data of the right length with a zero discriminant is
// not initialized.
func Decode(data []byte) (AdminRecord, error) {
	var r AdminRecord
	if len(data) != Size {
		return r, protocol.ErrMalformedPayload
	}
	if data[0] != discInitialized {
		return r, protocol.ErrNotInitialized
	}
	copy(r.ExternalPublicKey[:], data[1:66])
	copy(r.SeedMaterial[:], data[66:98])
	copy(r.CommissionProgram[:], data[98:130])
	return r, nil
}
