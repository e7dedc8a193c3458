package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"

	"github.com/mothvane/bridgectl/internal/bridge"
	"github.com/mothvane/bridgectl/internal/client"
	"github.com/mothvane/bridgectl/internal/commission"
	"github.com/mothvane/bridgectl/internal/logging"
	"github.com/mothvane/bridgectl/internal/protocol"
	"github.com/mothvane/bridgectl/internal/protocol/pda"
	"github.com/mothvane/bridgectl/internal/protocol/record"
	"github.com/mothvane/bridgectl/internal/runtime"
	"github.com/mothvane/bridgectl/internal/runtime/token"
	"github.com/mothvane/bridgectl/internal/upgrade"
)

const defaultConfigPath = "bridgectl.toml"

func main() {
	logger := logging.InitLogger("bridgectl")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := loadAppConfig(defaultConfigPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	switch os.Args[1] {
	case "derive":
		err = runDerive(cfg, os.Args[2:])
	case "encode-register":
		err = runEncodeRegister(cfg, os.Args[2:])
	case "demo":
		err = runDemo(cfg)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("command", os.Args[1]).Msg("command failed")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: bridgectl <command>

commands:
  derive <signer>                          print the signer's admin record address
  encode-register <pk-hex> <seed-hex>      print RegisterAdmin instruction data
  demo                                     run registration and fee charge on a local ledger`)
}

func runDerive(cfg appConfig, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("derive wants a signer identity")
	}
	signer, err := solana.PublicKeyFromBase58(args[0])
	if err != nil {
		return fmt.Errorf("parse signer: %w", err)
	}
	addr, bump, err := pda.DeriveAdminRecord(signer, cfg.BridgeProgram)
	if err != nil {
		return fmt.Errorf("derive admin record: %w", err)
	}
	fmt.Printf("record %s bump %d\n", addr, bump)
	return nil
}

func runEncodeRegister(cfg appConfig, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("encode-register wants <external-pk-hex> <seed-hex>")
	}
	pk, err := hex.DecodeString(args[0])
	if err != nil || len(pk) != protocol.ExternalPublicKeyLen {
		return fmt.Errorf("external public key must be %d hex-encoded bytes", protocol.ExternalPublicKeyLen)
	}
	seed, err := hex.DecodeString(args[1])
	if err != nil || len(seed) != protocol.SeedMaterialLen {
		return fmt.Errorf("seed material must be %d hex-encoded bytes", protocol.SeedMaterialLen)
	}

	regArgs := protocol.RegisterAdminArgs{CommissionProgram: cfg.CommissionProgram}
	copy(regArgs.ExternalPublicKey[:], pk)
	copy(regArgs.SeedMaterial[:], seed)
	fmt.Println(hex.EncodeToString(regArgs.Encode()))
	return nil
}

// runDemo drives the whole protocol against a local in-process
// ledger: register an admin record, mint tokens, charge the
// commission, then show the resulting state.
func runDemo(cfg appConfig) error {
	ledger := runtime.NewLedger()
	commissionProgram, err := commission.New(cfg.CommissionProgram, cfg.BridgeProgram, cfg.Commission)
	if err != nil {
		return err
	}
	for _, p := range []runtime.Program{
		bridge.New(cfg.BridgeProgram),
		commissionProgram,
		upgrade.New(cfg.UpgradeProgram),
		token.Program{},
		token.AssociatedProgram{},
	} {
		if err := ledger.Register(p); err != nil {
			return err
		}
	}

	signer := solana.NewWallet().PublicKey()
	collector := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	ledger.Fund(signer, 10_000_000_000)

	externalKey, err := crypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("generate external key: %w", err)
	}
	regArgs := protocol.RegisterAdminArgs{CommissionProgram: cfg.CommissionProgram}
	copy(regArgs.ExternalPublicKey[:], crypto.FromECDSAPub(&externalKey.PublicKey))

	register, err := client.RegisterAdmin(cfg.BridgeProgram, signer, regArgs)
	if err != nil {
		return err
	}
	if err := ledger.Execute(runtime.Transaction{
		Instructions: []runtime.Instruction{register},
		Signers:      []solana.PublicKey{signer},
	}); err != nil {
		return fmt.Errorf("register admin: %w", err)
	}

	// Fund a source token account at the signer's associated address.
	source, _, err := token.DeriveAssociatedAccount(signer, mint)
	if err != nil {
		return err
	}
	if err := ledger.Execute(runtime.Transaction{
		Instructions: []runtime.Instruction{
			token.NewCreateAssociatedAccountInstruction(signer, source, signer, mint),
			token.NewMintToInstruction(source, mint, 1_000_000),
		},
		Signers: []solana.PublicKey{signer, mint},
	}); err != nil {
		return fmt.Errorf("fund source account: %w", err)
	}

	charge, err := client.ChargeCommission(
		cfg.CommissionProgram, cfg.BridgeProgram,
		signer, source, signer, collector, mint, 1_000_000,
	)
	if err != nil {
		return err
	}
	if err := ledger.Execute(runtime.Transaction{
		Instructions: []runtime.Instruction{charge},
		Signers:      []solana.PublicKey{signer},
	}); err != nil {
		return fmt.Errorf("charge commission: %w", err)
	}

	recordAddr, _, err := pda.DeriveAdminRecord(signer, cfg.BridgeProgram)
	if err != nil {
		return err
	}
	acct, _ := ledger.Account(recordAddr)
	state, err := record.Decode(acct.Data)
	if err != nil {
		return err
	}
	collectorAccount, _, err := token.DeriveAssociatedAccount(collector, mint)
	if err != nil {
		return err
	}
	feeAcct, _ := ledger.Account(collectorAccount)
	feeState, err := token.DecodeAccount(feeAcct.Data)
	if err != nil {
		return err
	}

	log.Info().
		Str("record", recordAddr.String()).
		Str("commission_program", state.CommissionProgram.String()).
		Uint64("collected_fee", feeState.Amount).
		Msg("demo complete")
	return nil
}
