package protocol

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Tag is the leading instruction discriminant. Each program owns its
// own tag space; numbering is append-only and never reassigned so
// already-deployed callers keep decoding correctly.
type Tag uint8

// Bridge program instruction tags.
const (
	TagRegisterAdmin     Tag = 0
	TagTransferOwnership Tag = 1
)

// Commission program instruction tags.
const (
	TagChargeCommission Tag = 0
)

// Upgrade program instruction tags.
const (
	TagInitializeAuthority Tag = 0
	TagProposeAuthority    Tag = 1
	TagAcceptAuthority     Tag = 2
)

// Field widths from the wire contract. All widths are fixed and known
// from the schema; payloads carry no length prefixes.
const (
	ExternalPublicKeyLen = 65
	SeedMaterialLen      = 32
	SignatureLen         = 64

	registerAdminLen     = 1 + ExternalPublicKeyLen + SeedMaterialLen + solana.PublicKeyLength
	transferOwnershipLen = 1 + ExternalPublicKeyLen + SignatureLen + 1
	chargeCommissionLen  = 1 + 8
	authorityArgsLen     = 1 + solana.PublicKeyLength
)

// RegisterAdminArgs is the payload of the bridge RegisterAdmin
// instruction: [65 external pk][32 seed material][32 commission program].
type RegisterAdminArgs struct {
	ExternalPublicKey [ExternalPublicKeyLen]byte
	SeedMaterial      [SeedMaterialLen]byte
	CommissionProgram solana.PublicKey
}

func (a RegisterAdminArgs) Encode() []byte {
	buf := make([]byte, registerAdminLen)
	buf[0] = byte(TagRegisterAdmin)
	copy(buf[1:66], a.ExternalPublicKey[:])
	copy(buf[66:98], a.SeedMaterial[:])
	copy(buf[98:130], a.CommissionProgram[:])
	return buf
}

// DecodeRegisterAdmin parses a full bridge instruction envelope. The
// payload must be exactly the fixed layout; any width mismatch is
// rejected before callers touch account state.
func DecodeRegisterAdmin(data []byte) (RegisterAdminArgs, error) {
	var a RegisterAdminArgs
	if len(data) != registerAdminLen || Tag(data[0]) != TagRegisterAdmin {
		return a, ErrMalformedPayload
	}
	copy(a.ExternalPublicKey[:], data[1:66])
	copy(a.SeedMaterial[:], data[66:98])
	copy(a.CommissionProgram[:], data[98:130])
	return a, nil
}

// TransferOwnershipArgs rotates the external public key stored in an
// admin record: [65 new pk][64 signature][1 recovery id]. The
// signature is produced by the current external key over
// keccak256(new pk).
type TransferOwnershipArgs struct {
	NewExternalPublicKey [ExternalPublicKeyLen]byte
	Signature            [SignatureLen]byte
	RecoveryID           uint8
}

func (a TransferOwnershipArgs) Encode() []byte {
	buf := make([]byte, transferOwnershipLen)
	buf[0] = byte(TagTransferOwnership)
	copy(buf[1:66], a.NewExternalPublicKey[:])
	copy(buf[66:130], a.Signature[:])
	buf[130] = a.RecoveryID
	return buf
}

func DecodeTransferOwnership(data []byte) (TransferOwnershipArgs, error) {
	var a TransferOwnershipArgs
	if len(data) != transferOwnershipLen || Tag(data[0]) != TagTransferOwnership {
		return a, ErrMalformedPayload
	}
	copy(a.NewExternalPublicKey[:], data[1:66])
	copy(a.Signature[:], data[66:130])
	a.RecoveryID = data[130]
	return a, nil
}

// ChargeCommissionArgs carries the transfer amount the commission is
// computed from: [8 amount, little-endian].
type ChargeCommissionArgs struct {
	Amount uint64
}

func (a ChargeCommissionArgs) Encode() []byte {
	buf := make([]byte, chargeCommissionLen)
	buf[0] = byte(TagChargeCommission)
	binary.LittleEndian.PutUint64(buf[1:9], a.Amount)
	return buf
}

func DecodeChargeCommission(data []byte) (ChargeCommissionArgs, error) {
	var a ChargeCommissionArgs
	if len(data) != chargeCommissionLen || Tag(data[0]) != TagChargeCommission {
		return a, ErrMalformedPayload
	}
	a.Amount = binary.LittleEndian.Uint64(data[1:9])
	return a, nil
}

// AuthorityArgs is shared by the upgrade program's initialize and
// propose instructions: [32 authority identity].
type AuthorityArgs struct {
	Authority solana.PublicKey
}

func (a AuthorityArgs) Encode(tag Tag) []byte {
	buf := make([]byte, authorityArgsLen)
	buf[0] = byte(tag)
	copy(buf[1:33], a.Authority[:])
	return buf
}

func DecodeAuthority(tag Tag, data []byte) (AuthorityArgs, error) {
	var a AuthorityArgs
	if len(data) != authorityArgsLen || Tag(data[0]) != tag {
		return a, ErrMalformedPayload
	}
	copy(a.Authority[:], data[1:33])
	return a, nil
}
