// Package pda computes the canonical derived addresses used by the
// bridge protocol. Derivation happens here and nowhere else; every
// program that validates or computes a record address goes through
// this package so the same inputs always yield the same address.
package pda

import (
	"github.com/gagliardetto/solana-go"
)

// seedAdminRecord is the literal seed tag for admin record addresses.
// Changing it would orphan every deployed record.
var seedAdminRecord = []byte("bridge_admin_info")

// seedUpgradeAuthority is the literal seed tag for the upgrade
// program's singleton authority account.
var seedUpgradeAuthority = []byte("upgrade_authority")

// DeriveAdminRecord returns the canonical admin record address for a
// registering signer under the bridge program, along with the
// canonical bump (the lowest bump producing a valid off-curve point).
func DeriveAdminRecord(signer, bridgeProgram solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{seedAdminRecord, signer.Bytes()},
		bridgeProgram,
	)
}

// AdminRecordSeeds returns the full seed set, canonical bump
// included, that authorizes the bridge program to sign for a record
// address during creation.
func AdminRecordSeeds(signer solana.PublicKey, bump uint8) [][]byte {
	return [][]byte{seedAdminRecord, signer.Bytes(), {bump}}
}

// DeriveUpgradeAuthority returns the singleton authority account
// address for the upgrade program.
func DeriveUpgradeAuthority(upgradeProgram solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{seedUpgradeAuthority},
		upgradeProgram,
	)
}

// UpgradeAuthoritySeeds is the signing seed set for the upgrade
// program's singleton authority account.
func UpgradeAuthoritySeeds(bump uint8) [][]byte {
	return [][]byte{seedUpgradeAuthority, {bump}}
}
