package pda

import (
	"testing"

	"github.com/gagliardetto/solana-go"
)

var (
	testBridgeID = solana.MustPublicKeyFromBase58("Bridge1111111111111111111111111111111111111")
	otherBridge  = solana.MustPublicKeyFromBase58("Upgrade111111111111111111111111111111111111")
)

func TestDeriveAdminRecordIsDeterministic(t *testing.T) {
	signer := solana.NewWallet().PublicKey()

	addr1, bump1, err := DeriveAdminRecord(signer, testBridgeID)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	addr2, bump2, err := DeriveAdminRecord(signer, testBridgeID)
	if err != nil {
		t.Fatalf("derive again: %v", err)
	}
	if !addr1.Equals(addr2) || bump1 != bump2 {
		t.Fatalf("derivation not deterministic: (%s, %d) vs (%s, %d)", addr1, bump1, addr2, bump2)
	}
}

func TestDeriveAdminRecordVariesWithInputs(t *testing.T) {
	signerA := solana.NewWallet().PublicKey()
	signerB := solana.NewWallet().PublicKey()

	addrA, _, err := DeriveAdminRecord(signerA, testBridgeID)
	if err != nil {
		t.Fatalf("derive A: %v", err)
	}
	addrB, _, err := DeriveAdminRecord(signerB, testBridgeID)
	if err != nil {
		t.Fatalf("derive B: %v", err)
	}
	if addrA.Equals(addrB) {
		t.Fatalf("different signers derived the same address %s", addrA)
	}

	addrOther, _, err := DeriveAdminRecord(signerA, otherBridge)
	if err != nil {
		t.Fatalf("derive under other program: %v", err)
	}
	if addrA.Equals(addrOther) {
		t.Fatalf("different programs derived the same address %s", addrA)
	}
}

func TestAdminRecordSeedsReproduceAddress(t *testing.T) {
	signer := solana.NewWallet().PublicKey()
	addr, bump, err := DeriveAdminRecord(signer, testBridgeID)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	rebuilt, err := solana.CreateProgramAddress(AdminRecordSeeds(signer, bump), testBridgeID)
	if err != nil {
		t.Fatalf("create program address: %v", err)
	}
	if !rebuilt.Equals(addr) {
		t.Fatalf("seed set derives %s, want %s", rebuilt, addr)
	}
}

func TestDeriveUpgradeAuthority(t *testing.T) {
	addr, bump, err := DeriveUpgradeAuthority(testBridgeID)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	rebuilt, err := solana.CreateProgramAddress(UpgradeAuthoritySeeds(bump), testBridgeID)
	if err != nil {
		t.Fatalf("create program address: %v", err)
	}
	if !rebuilt.Equals(addr) {
		t.Fatalf("seed set derives %s, want %s", rebuilt, addr)
	}
}
