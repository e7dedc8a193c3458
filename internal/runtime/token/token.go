// Package token is the minimal token-transfer capability registered
// alongside the protocol programs: fixed-layout token accounts, owner
// signed transfers, and deterministic associated accounts.
package token

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/mothvane/bridgectl/internal/protocol"
	"github.com/mothvane/bridgectl/internal/runtime"
)

// ProgramID is the token program identity.
var ProgramID = solana.TokenProgramID

// Instruction tags.
const (
	tagInitializeAccount uint8 = 0
	tagTransfer          uint8 = 1
	tagMintTo            uint8 = 2
)

// AccountSize is the token account layout:
// [1 disc][32 mint][32 owner][8 amount, little-endian].
const AccountSize = 1 + solana.PublicKeyLength + solana.PublicKeyLength + 8

const discInitialized = 1

// Account is a decoded token account.
type Account struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
}

func (a Account) Encode() []byte {
	buf := make([]byte, AccountSize)
	buf[0] = discInitialized
	copy(buf[1:33], a.Mint[:])
	copy(buf[33:65], a.Owner[:])
	binary.LittleEndian.PutUint64(buf[65:73], a.Amount)
	return buf
}

func DecodeAccount(data []byte) (Account, error) {
	var a Account
	if len(data) != AccountSize {
		return a, protocol.ErrMalformedPayload
	}
	if data[0] != discInitialized {
		return a, protocol.ErrNotInitialized
	}
	copy(a.Mint[:], data[1:33])
	copy(a.Owner[:], data[33:65])
	a.Amount = binary.LittleEndian.Uint64(data[65:73])
	return a, nil
}

// NewInitializeAccountInstruction marks an allocated account as a
// token account for mint held by owner. Accounts: token account
// (writable), mint (read-only), owner (read-only).
func NewInitializeAccountInstruction(account, mint, owner solana.PublicKey) runtime.Instruction {
	return runtime.Instruction{
		ProgramID: ProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.Writable(account),
			runtime.ReadOnly(mint),
			runtime.ReadOnly(owner),
		},
		Data: []byte{tagInitializeAccount},
	}
}

// NewTransferInstruction moves amount between token accounts of the
// same mint. Accounts: source (writable), destination (writable),
// source owner (signer).
func NewTransferInstruction(source, destination, owner solana.PublicKey, amount uint64) runtime.Instruction {
	data := make([]byte, 9)
	data[0] = tagTransfer
	binary.LittleEndian.PutUint64(data[1:9], amount)
	return runtime.Instruction{
		ProgramID: ProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.Writable(source),
			runtime.Writable(destination),
			runtime.Signer(owner),
		},
		Data: data,
	}
}

// NewMintToInstruction credits amount to a token account. The mint's
// own key doubles as the mint authority in this runtime model.
// Accounts: token account (writable), mint (signer).
func NewMintToInstruction(account, mint solana.PublicKey, amount uint64) runtime.Instruction {
	data := make([]byte, 9)
	data[0] = tagMintTo
	binary.LittleEndian.PutUint64(data[1:9], amount)
	return runtime.Instruction{
		ProgramID: ProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.Writable(account),
			runtime.Signer(mint),
		},
		Data: data,
	}
}

// Program is the token program.
type Program struct{}

func (Program) ID() solana.PublicKey { return ProgramID }

func (p Program) Process(env *runtime.Env, accounts []*runtime.AccountView, data []byte) error {
	if len(data) == 0 {
		return protocol.ErrMalformedPayload
	}
	switch data[0] {
	case tagInitializeAccount:
		return p.initializeAccount(accounts, data)
	case tagTransfer:
		return p.transfer(accounts, data)
	case tagMintTo:
		return p.mintTo(accounts, data)
	default:
		return fmt.Errorf("%w: token tag %d", protocol.ErrMalformedPayload, data[0])
	}
}

func (p Program) initializeAccount(accounts []*runtime.AccountView, data []byte) error {
	if len(data) != 1 {
		return protocol.ErrMalformedPayload
	}
	if len(accounts) < 3 {
		return fmt.Errorf("%w: initialize wants 3 accounts", protocol.ErrMalformedPayload)
	}
	account, mint, owner := accounts[0], accounts[1], accounts[2]
	if !account.Owner().Equals(ProgramID) || len(account.Data()) != AccountSize {
		return fmt.Errorf("%w: %s", protocol.ErrWrongTokenAccount, account.Key())
	}
	if account.Data()[0] == discInitialized {
		return protocol.ErrAlreadyInitialized
	}
	state := Account{Mint: mint.Key(), Owner: owner.Key()}
	return account.SetData(state.Encode())
}

func (p Program) transfer(accounts []*runtime.AccountView, data []byte) error {
	if len(data) != 9 {
		return protocol.ErrMalformedPayload
	}
	if len(accounts) < 3 {
		return fmt.Errorf("%w: transfer wants 3 accounts", protocol.ErrMalformedPayload)
	}
	source, destination, owner := accounts[0], accounts[1], accounts[2]
	amount := binary.LittleEndian.Uint64(data[1:9])

	src, err := p.load(source)
	if err != nil {
		return err
	}
	dst, err := p.load(destination)
	if err != nil {
		return err
	}
	if !src.Mint.Equals(dst.Mint) {
		return fmt.Errorf("%w: mint mismatch", protocol.ErrWrongTokenAccount)
	}
	if !owner.IsSigner() || !src.Owner.Equals(owner.Key()) {
		return fmt.Errorf("%w: source owner", protocol.ErrUnauthorized)
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: have %d, need %d", runtime.ErrInsufficientFunds, src.Amount, amount)
	}
	if dst.Amount+amount < dst.Amount {
		return protocol.ErrArithmeticOverflow
	}

	src.Amount -= amount
	dst.Amount += amount
	if err := source.SetData(src.Encode()); err != nil {
		return err
	}
	return destination.SetData(dst.Encode())
}

func (p Program) mintTo(accounts []*runtime.AccountView, data []byte) error {
	if len(data) != 9 {
		return protocol.ErrMalformedPayload
	}
	if len(accounts) < 2 {
		return fmt.Errorf("%w: mint wants 2 accounts", protocol.ErrMalformedPayload)
	}
	account, mint := accounts[0], accounts[1]
	amount := binary.LittleEndian.Uint64(data[1:9])

	state, err := p.load(account)
	if err != nil {
		return err
	}
	if !state.Mint.Equals(mint.Key()) {
		return fmt.Errorf("%w: mint mismatch", protocol.ErrWrongTokenAccount)
	}
	if !mint.IsSigner() {
		return fmt.Errorf("%w: mint authority", protocol.ErrUnauthorized)
	}
	if state.Amount+amount < state.Amount {
		return protocol.ErrArithmeticOverflow
	}
	state.Amount += amount
	return account.SetData(state.Encode())
}

func (p Program) load(view *runtime.AccountView) (Account, error) {
	if !view.Owner().Equals(ProgramID) {
		return Account{}, fmt.Errorf("%w: %s", protocol.ErrWrongTokenAccount, view.Key())
	}
	return DecodeAccount(view.Data())
}
