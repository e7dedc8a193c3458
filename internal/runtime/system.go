package runtime

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// System program instruction tags.
const (
	sysTagCreateAccount uint8 = 0
	sysTagTransfer      uint8 = 1
)

const (
	sysCreateAccountLen = 1 + 8 + 8 + solana.PublicKeyLength
	sysTransferLen      = 1 + 8
)

// NewCreateAccountInstruction funds and allocates a fresh account of
// the given size, assigning it to owner. Accounts: payer
// (signer, writable), new account (signer, writable).
func NewCreateAccountInstruction(payer, newAccount, owner solana.PublicKey, lamports uint64, size int) Instruction {
	data := make([]byte, sysCreateAccountLen)
	data[0] = sysTagCreateAccount
	binary.LittleEndian.PutUint64(data[1:9], lamports)
	binary.LittleEndian.PutUint64(data[9:17], uint64(size))
	copy(data[17:49], owner[:])
	return Instruction{
		ProgramID: solana.SystemProgramID,
		Accounts: []AccountMeta{
			WritableSigner(payer),
			WritableSigner(newAccount),
		},
		Data: data,
	}
}

// NewTransferInstruction moves lamports between system-owned
// accounts. Accounts: from (signer, writable), to (writable).
func NewTransferInstruction(from, to solana.PublicKey, lamports uint64) Instruction {
	data := make([]byte, sysTransferLen)
	data[0] = sysTagTransfer
	binary.LittleEndian.PutUint64(data[1:9], lamports)
	return Instruction{
		ProgramID: solana.SystemProgramID,
		Accounts: []AccountMeta{
			WritableSigner(from),
			Writable(to),
		},
		Data: data,
	}
}

// systemProgram provides account creation and lamport transfers. It
// is registered on every ledger under solana.SystemProgramID.
type systemProgram struct{}

func (systemProgram) ID() solana.PublicKey { return solana.SystemProgramID }

func (s systemProgram) Process(env *Env, accounts []*AccountView, data []byte) error {
	if len(data) == 0 {
		return ErrMalformedData
	}
	switch data[0] {
	case sysTagCreateAccount:
		return s.createAccount(accounts, data)
	case sysTagTransfer:
		return s.transfer(accounts, data)
	default:
		return fmt.Errorf("%w: system tag %d", ErrMalformedData, data[0])
	}
}

func (systemProgram) createAccount(accounts []*AccountView, data []byte) error {
	if len(data) != sysCreateAccountLen {
		return fmt.Errorf("%w: create account payload %d bytes", ErrMalformedData, len(data))
	}
	if len(accounts) < 2 {
		return fmt.Errorf("%w: create account wants 2 accounts", ErrMalformedData)
	}
	payer, newAccount := accounts[0], accounts[1]
	if !payer.IsSigner() || !newAccount.IsSigner() {
		return fmt.Errorf("%w: create account requires payer and new account signatures", ErrMissingSignature)
	}

	lamports := binary.LittleEndian.Uint64(data[1:9])
	size := int(binary.LittleEndian.Uint64(data[9:17]))
	var owner solana.PublicKey
	copy(owner[:], data[17:49])

	if !newAccount.IsEmpty() {
		return fmt.Errorf("%w: %s", ErrAccountInUse, newAccount.Key())
	}
	if lamports < RentExemptMinimum(size) {
		return fmt.Errorf("%w: %d lamports for %d bytes", ErrNotRentExempt, lamports, size)
	}
	if err := payer.Debit(lamports); err != nil {
		return err
	}
	if err := newAccount.Credit(lamports); err != nil {
		return err
	}
	return newAccount.allocate(owner, size)
}

func (systemProgram) transfer(accounts []*AccountView, data []byte) error {
	if len(data) != sysTransferLen {
		return fmt.Errorf("%w: transfer payload %d bytes", ErrMalformedData, len(data))
	}
	if len(accounts) < 2 {
		return fmt.Errorf("%w: transfer wants 2 accounts", ErrMalformedData)
	}
	from, to := accounts[0], accounts[1]
	if !from.IsSigner() {
		return fmt.Errorf("%w: %s", ErrMissingSignature, from.Key())
	}
	lamports := binary.LittleEndian.Uint64(data[1:9])
	if err := from.Debit(lamports); err != nil {
		return err
	}
	return to.Credit(lamports)
}
