// Package client builds protocol instructions with the canonical
// account order and flags each program expects. Program and account
// identities render as base58 at this boundary only; on the wire they
// are raw 32-byte values.
package client

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/mothvane/bridgectl/internal/protocol"
	"github.com/mothvane/bridgectl/internal/protocol/pda"
	"github.com/mothvane/bridgectl/internal/runtime"
	"github.com/mothvane/bridgectl/internal/runtime/token"
)

// RegisterAdmin builds the bridge registration instruction for payer.
// The record address is derived, never supplied: a caller cannot
// target anyone else's record slot.
func RegisterAdmin(bridgeProgram, payer solana.PublicKey, args protocol.RegisterAdminArgs) (runtime.Instruction, error) {
	recordAddr, _, err := pda.DeriveAdminRecord(payer, bridgeProgram)
	if err != nil {
		return runtime.Instruction{}, fmt.Errorf("derive admin record for %s: %w", payer, err)
	}
	return runtime.Instruction{
		ProgramID: bridgeProgram,
		Accounts: []runtime.AccountMeta{
			runtime.WritableSigner(payer),
			runtime.Writable(recordAddr),
			runtime.ReadOnly(solana.SystemProgramID),
		},
		Data: args.Encode(),
	}, nil
}

// TransferOwnership builds the external-key rotation instruction for
// the record registered by authority.
func TransferOwnership(bridgeProgram, authority solana.PublicKey, args protocol.TransferOwnershipArgs) (runtime.Instruction, error) {
	recordAddr, _, err := pda.DeriveAdminRecord(authority, bridgeProgram)
	if err != nil {
		return runtime.Instruction{}, fmt.Errorf("derive admin record for %s: %w", authority, err)
	}
	return runtime.Instruction{
		ProgramID: bridgeProgram,
		Accounts: []runtime.AccountMeta{
			runtime.Writable(recordAddr),
			runtime.ReadOnly(authority),
		},
		Data: args.Encode(),
	}, nil
}

// ChargeCommission builds the fee-movement instruction. The admin
// record is referenced read-only; it is the trust anchor, not a
// mutation target.
func ChargeCommission(commissionProgram, bridgeProgram, authority, source, sourceOwner, collector, mint solana.PublicKey, amount uint64) (runtime.Instruction, error) {
	recordAddr, _, err := pda.DeriveAdminRecord(authority, bridgeProgram)
	if err != nil {
		return runtime.Instruction{}, fmt.Errorf("derive admin record for %s: %w", authority, err)
	}
	collectorAccount, _, err := token.DeriveAssociatedAccount(collector, mint)
	if err != nil {
		return runtime.Instruction{}, fmt.Errorf("derive associated account for %s: %w", collector, err)
	}
	return runtime.Instruction{
		ProgramID: commissionProgram,
		Accounts: []runtime.AccountMeta{
			runtime.ReadOnly(recordAddr),
			runtime.Writable(source),
			runtime.WritableSigner(sourceOwner),
			runtime.Writable(collectorAccount),
			runtime.ReadOnly(collector),
			runtime.ReadOnly(mint),
			runtime.ReadOnly(token.ProgramID),
			runtime.ReadOnly(token.AssociatedProgramID),
			runtime.ReadOnly(solana.SystemProgramID),
		},
		Data: protocol.ChargeCommissionArgs{Amount: amount}.Encode(),
	}, nil
}

// InitializeAuthority builds the upgrade program's initialize
// instruction.
func InitializeAuthority(upgradeProgram, payer, authority solana.PublicKey) (runtime.Instruction, error) {
	stateAddr, _, err := pda.DeriveUpgradeAuthority(upgradeProgram)
	if err != nil {
		return runtime.Instruction{}, fmt.Errorf("derive upgrade authority: %w", err)
	}
	return runtime.Instruction{
		ProgramID: upgradeProgram,
		Accounts: []runtime.AccountMeta{
			runtime.WritableSigner(payer),
			runtime.Writable(stateAddr),
			runtime.ReadOnly(solana.SystemProgramID),
		},
		Data: protocol.AuthorityArgs{Authority: authority}.Encode(protocol.TagInitializeAuthority),
	}, nil
}

// ProposeAuthority builds the first half of the two-phase handoff.
func ProposeAuthority(upgradeProgram, current, next solana.PublicKey) (runtime.Instruction, error) {
	stateAddr, _, err := pda.DeriveUpgradeAuthority(upgradeProgram)
	if err != nil {
		return runtime.Instruction{}, fmt.Errorf("derive upgrade authority: %w", err)
	}
	return runtime.Instruction{
		ProgramID: upgradeProgram,
		Accounts: []runtime.AccountMeta{
			runtime.Writable(stateAddr),
			runtime.Signer(current),
		},
		Data: protocol.AuthorityArgs{Authority: next}.Encode(protocol.TagProposeAuthority),
	}, nil
}

// AcceptAuthority builds the second half of the two-phase handoff.
func AcceptAuthority(upgradeProgram, pending solana.PublicKey) (runtime.Instruction, error) {
	stateAddr, _, err := pda.DeriveUpgradeAuthority(upgradeProgram)
	if err != nil {
		return runtime.Instruction{}, fmt.Errorf("derive upgrade authority: %w", err)
	}
	return runtime.Instruction{
		ProgramID: upgradeProgram,
		Accounts: []runtime.AccountMeta{
			runtime.Writable(stateAddr),
			runtime.Signer(pending),
		},
		Data: []byte{byte(protocol.TagAcceptAuthority)},
	}, nil
}
