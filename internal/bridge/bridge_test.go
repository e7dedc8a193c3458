package bridge

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"

	"github.com/mothvane/bridgectl/internal/client"
	"github.com/mothvane/bridgectl/internal/protocol"
	"github.com/mothvane/bridgectl/internal/protocol/pda"
	"github.com/mothvane/bridgectl/internal/protocol/record"
	"github.com/mothvane/bridgectl/internal/runtime"
	"github.com/mothvane/bridgectl/internal/testutil/testlog"
)

func newBridgeLedger(t *testing.T) *runtime.Ledger {
	t.Helper()
	testlog.Start(t)
	ledger := runtime.NewLedger()
	if err := ledger.Register(New(DefaultProgramID)); err != nil {
		t.Fatalf("register bridge program: %v", err)
	}
	return ledger
}

func newExternalKey(t *testing.T) (*ecdsa.PrivateKey, [protocol.ExternalPublicKeyLen]byte) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	var pk [protocol.ExternalPublicKeyLen]byte
	copy(pk[:], crypto.FromECDSAPub(&key.PublicKey))
	return key, pk
}

func registerArgs(t *testing.T, pk [protocol.ExternalPublicKeyLen]byte) protocol.RegisterAdminArgs {
	t.Helper()
	args := protocol.RegisterAdminArgs{
		ExternalPublicKey: pk,
		CommissionProgram: solana.NewWallet().PublicKey(),
	}
	copy(args.SeedMaterial[:], bytes.Repeat([]byte{0x5a}, protocol.SeedMaterialLen))
	return args
}

func registerAdmin(t *testing.T, ledger *runtime.Ledger, payer solana.PublicKey, args protocol.RegisterAdminArgs) solana.PublicKey {
	t.Helper()
	ix, err := client.RegisterAdmin(DefaultProgramID, payer, args)
	if err != nil {
		t.Fatalf("build register instruction: %v", err)
	}
	tx := runtime.Transaction{
		Instructions: []runtime.Instruction{ix},
		Signers:      []solana.PublicKey{payer},
	}
	if err := ledger.Execute(tx); err != nil {
		t.Fatalf("register admin: %v", err)
	}
	recordAddr, _, err := pda.DeriveAdminRecord(payer, DefaultProgramID)
	if err != nil {
		t.Fatalf("derive admin record: %v", err)
	}
	return recordAddr
}

func TestRegisterAdminCreatesRecord(t *testing.T) {
	ledger := newBridgeLedger(t)
	payer := solana.NewWallet().PublicKey()
	ledger.Fund(payer, 10_000_000_000)
	_, pk := newExternalKey(t)
	args := registerArgs(t, pk)

	recordAddr := registerAdmin(t, ledger, payer, args)

	acct, ok := ledger.Account(recordAddr)
	if !ok {
		t.Fatalf("admin record account not created")
	}
	if !acct.Owner.Equals(DefaultProgramID) {
		t.Fatalf("record owned by %s, want bridge program", acct.Owner)
	}
	if want := runtime.RentExemptMinimum(record.Size); acct.Lamports != want {
		t.Fatalf("record lamports = %d, want %d", acct.Lamports, want)
	}
	state, err := record.Decode(acct.Data)
	if err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if state.ExternalPublicKey != args.ExternalPublicKey {
		t.Fatalf("stored external key differs from registered key")
	}
	if state.SeedMaterial != args.SeedMaterial {
		t.Fatalf("stored seed material differs")
	}
	if !state.CommissionProgram.Equals(args.CommissionProgram) {
		t.Fatalf("stored commission program = %s, want %s", state.CommissionProgram, args.CommissionProgram)
	}
}

func TestRegisterAdminRejectsDuplicate(t *testing.T) {
	ledger := newBridgeLedger(t)
	payer := solana.NewWallet().PublicKey()
	ledger.Fund(payer, 10_000_000_000)
	_, pk := newExternalKey(t)
	args := registerArgs(t, pk)

	recordAddr := registerAdmin(t, ledger, payer, args)
	before, _ := ledger.Account(recordAddr)

	// Second registration with different args must change nothing.
	_, pk2 := newExternalKey(t)
	ix, err := client.RegisterAdmin(DefaultProgramID, payer, registerArgs(t, pk2))
	if err != nil {
		t.Fatalf("build register instruction: %v", err)
	}
	tx := runtime.Transaction{
		Instructions: []runtime.Instruction{ix},
		Signers:      []solana.PublicKey{payer},
	}
	if err := ledger.Execute(tx); !errors.Is(err, protocol.ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}

	after, _ := ledger.Account(recordAddr)
	if !bytes.Equal(before.Data, after.Data) {
		t.Fatalf("record data changed across failed re-registration")
	}
}

func TestRegisterAdminRequiresSigner(t *testing.T) {
	ledger := newBridgeLedger(t)
	payer := solana.NewWallet().PublicKey()
	ledger.Fund(payer, 10_000_000_000)
	_, pk := newExternalKey(t)

	recordAddr, _, err := pda.DeriveAdminRecord(payer, DefaultProgramID)
	if err != nil {
		t.Fatalf("derive admin record: %v", err)
	}
	ix := runtime.Instruction{
		ProgramID: DefaultProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.Writable(payer), // not a signer
			runtime.Writable(recordAddr),
			runtime.ReadOnly(solana.SystemProgramID),
		},
		Data: registerArgs(t, pk).Encode(),
	}
	tx := runtime.Transaction{Instructions: []runtime.Instruction{ix}}
	if err := ledger.Execute(tx); !errors.Is(err, protocol.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, ok := ledger.Account(recordAddr); ok {
		t.Fatalf("record created despite missing signature")
	}
}

func TestRegisterAdminRejectsWrongRecordAddress(t *testing.T) {
	ledger := newBridgeLedger(t)
	payer := solana.NewWallet().PublicKey()
	ledger.Fund(payer, 10_000_000_000)
	_, pk := newExternalKey(t)

	ix := runtime.Instruction{
		ProgramID: DefaultProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.WritableSigner(payer),
			runtime.Writable(solana.NewWallet().PublicKey()),
			runtime.ReadOnly(solana.SystemProgramID),
		},
		Data: registerArgs(t, pk).Encode(),
	}
	tx := runtime.Transaction{
		Instructions: []runtime.Instruction{ix},
		Signers:      []solana.PublicKey{payer},
	}
	if err := ledger.Execute(tx); !errors.Is(err, protocol.ErrInvalidDerivedAddress) {
		t.Fatalf("expected ErrInvalidDerivedAddress, got %v", err)
	}
}

func TestRegisterAdminRejectsMalformedPayload(t *testing.T) {
	ledger := newBridgeLedger(t)
	payer := solana.NewWallet().PublicKey()
	ledger.Fund(payer, 10_000_000_000)

	recordAddr, _, err := pda.DeriveAdminRecord(payer, DefaultProgramID)
	if err != nil {
		t.Fatalf("derive admin record: %v", err)
	}
	// Correct tag, one byte short of the fixed payload width.
	_, pk := newExternalKey(t)
	data := registerArgs(t, pk).Encode()
	data = data[:len(data)-1]
	ix := runtime.Instruction{
		ProgramID: DefaultProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.WritableSigner(payer),
			runtime.Writable(recordAddr),
			runtime.ReadOnly(solana.SystemProgramID),
		},
		Data: data,
	}
	tx := runtime.Transaction{
		Instructions: []runtime.Instruction{ix},
		Signers:      []solana.PublicKey{payer},
	}
	if err := ledger.Execute(tx); !errors.Is(err, protocol.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
	if _, ok := ledger.Account(recordAddr); ok {
		t.Fatalf("record created from malformed payload")
	}
}

func TestTransferOwnershipRotatesKey(t *testing.T) {
	ledger := newBridgeLedger(t)
	payer := solana.NewWallet().PublicKey()
	ledger.Fund(payer, 10_000_000_000)
	key, pk := newExternalKey(t)
	args := registerArgs(t, pk)
	recordAddr := registerAdmin(t, ledger, payer, args)

	_, next := newExternalKey(t)
	full, err := crypto.Sign(protocol.Keccak256(next[:]), key)
	if err != nil {
		t.Fatalf("sign rotation: %v", err)
	}
	rotate := protocol.TransferOwnershipArgs{NewExternalPublicKey: next, RecoveryID: full[protocol.SignatureLen]}
	copy(rotate.Signature[:], full[:protocol.SignatureLen])

	ix, err := client.TransferOwnership(DefaultProgramID, payer, rotate)
	if err != nil {
		t.Fatalf("build transfer instruction: %v", err)
	}
	if err := ledger.Execute(runtime.Transaction{Instructions: []runtime.Instruction{ix}}); err != nil {
		t.Fatalf("transfer ownership: %v", err)
	}

	acct, _ := ledger.Account(recordAddr)
	state, err := record.Decode(acct.Data)
	if err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if state.ExternalPublicKey != next {
		t.Fatalf("external key not rotated")
	}
	if state.SeedMaterial != args.SeedMaterial {
		t.Fatalf("seed material changed during rotation")
	}
	if !state.CommissionProgram.Equals(args.CommissionProgram) {
		t.Fatalf("commission binding changed during rotation")
	}
}

func TestTransferOwnershipRejectsForgedSignature(t *testing.T) {
	ledger := newBridgeLedger(t)
	payer := solana.NewWallet().PublicKey()
	ledger.Fund(payer, 10_000_000_000)
	_, pk := newExternalKey(t)
	args := registerArgs(t, pk)
	recordAddr := registerAdmin(t, ledger, payer, args)

	// Signed by a key that is not the registered external key.
	attacker, next := newExternalKey(t)
	full, err := crypto.Sign(protocol.Keccak256(next[:]), attacker)
	if err != nil {
		t.Fatalf("sign rotation: %v", err)
	}
	rotate := protocol.TransferOwnershipArgs{NewExternalPublicKey: next, RecoveryID: full[protocol.SignatureLen]}
	copy(rotate.Signature[:], full[:protocol.SignatureLen])

	ix, err := client.TransferOwnership(DefaultProgramID, payer, rotate)
	if err != nil {
		t.Fatalf("build transfer instruction: %v", err)
	}
	if err := ledger.Execute(runtime.Transaction{Instructions: []runtime.Instruction{ix}}); !errors.Is(err, protocol.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	acct, _ := ledger.Account(recordAddr)
	state, err := record.Decode(acct.Data)
	if err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if state.ExternalPublicKey != pk {
		t.Fatalf("external key rotated by forged signature")
	}
}

func TestTransferOwnershipRejectsUnregistered(t *testing.T) {
	ledger := newBridgeLedger(t)
	authority := solana.NewWallet().PublicKey()
	key, pk := newExternalKey(t)

	full, err := crypto.Sign(protocol.Keccak256(pk[:]), key)
	if err != nil {
		t.Fatalf("sign rotation: %v", err)
	}
	rotate := protocol.TransferOwnershipArgs{NewExternalPublicKey: pk, RecoveryID: full[protocol.SignatureLen]}
	copy(rotate.Signature[:], full[:protocol.SignatureLen])

	ix, err := client.TransferOwnership(DefaultProgramID, authority, rotate)
	if err != nil {
		t.Fatalf("build transfer instruction: %v", err)
	}
	if err := ledger.Execute(runtime.Transaction{Instructions: []runtime.Instruction{ix}}); !errors.Is(err, protocol.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}
