package token

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/mothvane/bridgectl/internal/protocol"
	"github.com/mothvane/bridgectl/internal/runtime"
)

// AssociatedProgramID is the associated-account program identity.
var AssociatedProgramID = solana.SPLAssociatedTokenAccountProgramID

// DeriveAssociatedAccount returns the canonical token account address
// holding mint for owner, and its bump.
func DeriveAssociatedAccount(owner, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{owner.Bytes(), ProgramID.Bytes(), mint.Bytes()},
		AssociatedProgramID,
	)
}

// NewCreateAssociatedAccountInstruction allocates and initializes the
// associated token account for (owner, mint), funded by payer.
// Accounts: payer (signer, writable), associated account (writable),
// owner (read-only), mint (read-only), system program (read-only),
// token program (read-only).
func NewCreateAssociatedAccountInstruction(payer, associated, owner, mint solana.PublicKey) runtime.Instruction {
	return runtime.Instruction{
		ProgramID: AssociatedProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.WritableSigner(payer),
			runtime.Writable(associated),
			runtime.ReadOnly(owner),
			runtime.ReadOnly(mint),
			runtime.ReadOnly(solana.SystemProgramID),
			runtime.ReadOnly(ProgramID),
		},
		Data: nil,
	}
}

// AssociatedProgram creates associated token accounts at their
// derived addresses. It signs the allocation with the derivation
// seeds, so the account needs no private key.
type AssociatedProgram struct{}

func (AssociatedProgram) ID() solana.PublicKey { return AssociatedProgramID }

func (AssociatedProgram) Process(env *runtime.Env, accounts []*runtime.AccountView, data []byte) error {
	if len(data) != 0 {
		return protocol.ErrMalformedPayload
	}
	if len(accounts) < 6 {
		return fmt.Errorf("%w: create wants 6 accounts", protocol.ErrMalformedPayload)
	}
	payer, associated, owner, mint := accounts[0], accounts[1], accounts[2], accounts[3]

	if !payer.IsSigner() {
		return fmt.Errorf("%w: payer", protocol.ErrUnauthorized)
	}
	expected, bump, err := DeriveAssociatedAccount(owner.Key(), mint.Key())
	if err != nil {
		return fmt.Errorf("%w: %v", protocol.ErrWrongTokenAccount, err)
	}
	if !expected.Equals(associated.Key()) {
		return fmt.Errorf("%w: %s is not the associated account for (%s, %s)",
			protocol.ErrWrongTokenAccount, associated.Key(), owner.Key(), mint.Key())
	}
	if !associated.IsEmpty() {
		return protocol.ErrAlreadyInitialized
	}

	create := runtime.NewCreateAccountInstruction(
		payer.Key(), associated.Key(), ProgramID,
		runtime.RentExemptMinimum(AccountSize), AccountSize,
	)
	seeds := [][]byte{owner.Key().Bytes(), ProgramID.Bytes(), mint.Key().Bytes(), {bump}}
	if err := env.Invoke(create, seeds); err != nil {
		return err
	}
	return env.Invoke(NewInitializeAccountInstruction(associated.Key(), mint.Key(), owner.Key()))
}
