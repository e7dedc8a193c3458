package runtime

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// accountStorageOverhead and rentPerByte set the rent-exempt minimum.
// The constants are fixed for the lifetime of a ledger; programs must
// query the minimum rather than hardcode balances.
const (
	accountStorageOverhead = 128
	rentPerByte            = 6960
)

// RentExemptMinimum is the smallest balance an account of the given
// data size may hold without being reclaimable by the host.
func RentExemptMinimum(size int) uint64 {
	return uint64(accountStorageOverhead+size) * rentPerByte
}

// Account is the stored state behind one address.
type Account struct {
	Lamports uint64
	Owner    solana.PublicKey
	Data     []byte
}

// fresh reports whether the account is untouched: system-owned with
// zero balance and zero data. Fresh accounts are not persisted.
func (a *Account) fresh() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.Owner.Equals(solana.SystemProgramID)
}

func (a *Account) clone() *Account {
	data := make([]byte, len(a.Data))
	copy(data, a.Data)
	return &Account{Lamports: a.Lamports, Owner: a.Owner, Data: data}
}

// AccountView is a program's handle on one staged account during
// instruction processing. Mutations enforce the declared writable
// flag and the ownership rule: only the owning program writes data or
// debits lamports.
type AccountView struct {
	key        solana.PublicKey
	isSigner   bool
	isWritable bool
	acct       *Account
	env        *Env
}

func (v *AccountView) Key() solana.PublicKey   { return v.key }
func (v *AccountView) IsSigner() bool          { return v.isSigner }
func (v *AccountView) IsWritable() bool        { return v.isWritable }
func (v *AccountView) Lamports() uint64        { return v.acct.Lamports }
func (v *AccountView) Owner() solana.PublicKey { return v.acct.Owner }

// Data returns a copy of the account data. Writes go through SetData.
func (v *AccountView) Data() []byte {
	data := make([]byte, len(v.acct.Data))
	copy(data, v.acct.Data)
	return data
}

// IsEmpty reports whether the account is fresh: unowned (system),
// zero data, zero balance.
func (v *AccountView) IsEmpty() bool { return v.acct.fresh() }

// SetData replaces the account data. The data length must match the
// allocated size; reallocation is not part of this runtime.
func (v *AccountView) SetData(data []byte) error {
	if err := v.mutable(); err != nil {
		return err
	}
	if len(data) != len(v.acct.Data) {
		return fmt.Errorf("%w: data length %d, allocated %d", ErrMalformedData, len(data), len(v.acct.Data))
	}
	copy(v.acct.Data, data)
	return nil
}

// Credit adds lamports. Crediting needs the writable flag but not
// ownership; anyone may fund an account.
func (v *AccountView) Credit(lamports uint64) error {
	if !v.isWritable {
		return fmt.Errorf("%w: %s", ErrNotWritable, v.key)
	}
	v.acct.Lamports += lamports
	return nil
}

// Debit removes lamports. Only the owning program moves funds out.
func (v *AccountView) Debit(lamports uint64) error {
	if err := v.mutable(); err != nil {
		return err
	}
	if v.acct.Lamports < lamports {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, v.acct.Lamports, lamports)
	}
	v.acct.Lamports -= lamports
	return nil
}

// allocate assigns ownership and zeroed data of the given size. Used
// by the system program during account creation.
func (v *AccountView) allocate(owner solana.PublicKey, size int) error {
	if err := v.mutable(); err != nil {
		return err
	}
	v.acct.Owner = owner
	v.acct.Data = make([]byte, size)
	return nil
}

func (v *AccountView) mutable() error {
	if !v.isWritable {
		return fmt.Errorf("%w: %s", ErrNotWritable, v.key)
	}
	if !v.acct.Owner.Equals(v.env.ProgramID()) {
		return fmt.Errorf("%w: %s owned by %s", ErrNotOwner, v.key, v.acct.Owner)
	}
	return nil
}
