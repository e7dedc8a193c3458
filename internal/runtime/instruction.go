package runtime

import "github.com/gagliardetto/solana-go"

// AccountMeta declares one account an instruction touches, with its
// read/write and signer intent. Order is positional and part of each
// program's contract.
type AccountMeta struct {
	Pubkey     solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

func ReadOnly(pk solana.PublicKey) AccountMeta {
	return AccountMeta{Pubkey: pk}
}

func Writable(pk solana.PublicKey) AccountMeta {
	return AccountMeta{Pubkey: pk, IsWritable: true}
}

func Signer(pk solana.PublicKey) AccountMeta {
	return AccountMeta{Pubkey: pk, IsSigner: true}
}

func WritableSigner(pk solana.PublicKey) AccountMeta {
	return AccountMeta{Pubkey: pk, IsSigner: true, IsWritable: true}
}

// Instruction is one program call: target program, positional account
// list, raw instruction data.
type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// Transaction is an ordered batch of instructions sharing one
// commit/rollback boundary. Signers is the set of identities whose
// signatures accompany the submission.
type Transaction struct {
	Instructions []Instruction
	Signers      []solana.PublicKey
}

func (tx Transaction) signed(pk solana.PublicKey) bool {
	for _, s := range tx.Signers {
		if s.Equals(pk) {
			return true
		}
	}
	return false
}
