package bridge

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mothvane/bridgectl/internal/protocol"
	"github.com/mothvane/bridgectl/internal/protocol/pda"
	"github.com/mothvane/bridgectl/internal/protocol/record"
	"github.com/mothvane/bridgectl/internal/runtime"
)

// DefaultProgramID is the deployed bridge program identity.
var DefaultProgramID = solana.MustPublicKeyFromBase58("Bridge1111111111111111111111111111111111111")

// Program is the bridge program.
type Program struct {
	id  solana.PublicKey
	log zerolog.Logger
}

// New creates a bridge program instance deployed under id.
func New(id solana.PublicKey) *Program {
	return &Program{
		id:  id,
		log: log.With().Str("program", "bridge").Logger(),
	}
}

func (p *Program) ID() solana.PublicKey { return p.id }

func (p *Program) Process(env *runtime.Env, accounts []*runtime.AccountView, data []byte) error {
	if len(data) == 0 {
		return protocol.ErrMalformedPayload
	}
	switch protocol.Tag(data[0]) {
	case protocol.TagRegisterAdmin:
		p.log.Info().Msg("instruction: register admin")
		return p.registerAdmin(env, accounts, data)
	case protocol.TagTransferOwnership:
		p.log.Info().Msg("instruction: transfer ownership")
		return p.transferOwnership(env, accounts, data)
	default:
		return fmt.Errorf("%w: bridge tag %d", protocol.ErrMalformedPayload, data[0])
	}
}

// registerAdmin creates the admin record for the paying signer.
//
// Accounts:
//  0. [writable, signer] payer, the registering signer
//  1. [writable]         admin record account, must not exist yet
//  2. []                 system program
//
// Preconditions run in order; the first failure aborts the
// instruction with nothing written.
func (p *Program) registerAdmin(env *runtime.Env, accounts []*runtime.AccountView, data []byte) error {
	if len(accounts) < 3 {
		return fmt.Errorf("%w: register admin wants 3 accounts", protocol.ErrMalformedPayload)
	}
	payer, adminRecord := accounts[0], accounts[1]

	if !payer.IsSigner() {
		return fmt.Errorf("%w: payer did not sign", protocol.ErrUnauthorized)
	}

	expected, bump, err := pda.DeriveAdminRecord(payer.Key(), p.id)
	if err != nil {
		return fmt.Errorf("%w: %v", protocol.ErrInvalidDerivedAddress, err)
	}
	if !expected.Equals(adminRecord.Key()) {
		return fmt.Errorf("%w: derived %s, got %s", protocol.ErrInvalidDerivedAddress, expected, adminRecord.Key())
	}

	if !adminRecord.IsEmpty() {
		return fmt.Errorf("%w: %s", protocol.ErrAlreadyInitialized, adminRecord.Key())
	}

	args, err := protocol.DecodeRegisterAdmin(data)
	if err != nil {
		return err
	}

	create := runtime.NewCreateAccountInstruction(
		payer.Key(), adminRecord.Key(), p.id,
		runtime.RentExemptMinimum(record.Size), record.Size,
	)
	if err := env.Invoke(create, pda.AdminRecordSeeds(payer.Key(), bump)); err != nil {
		return err
	}

	state := record.AdminRecord{
		ExternalPublicKey: args.ExternalPublicKey,
		SeedMaterial:      args.SeedMaterial,
		CommissionProgram: args.CommissionProgram,
	}
	if err := adminRecord.SetData(state.Encode()); err != nil {
		return err
	}
	p.log.Info().
		Str("signer", payer.Key().String()).
		Str("record", adminRecord.Key().String()).
		Str("commission_program", args.CommissionProgram.String()).
		Msg("admin record created")
	return nil
}

// transferOwnership rotates the external public key stored in an
// admin record. Authorization is a secp256k1 signature over
// keccak256(new key) made by the current external key; the record's
// address, seed material and commission binding never change.
//
// Accounts:
//  0. [writable] admin record account
//  1. []         the registering authority the record was derived from
func (p *Program) transferOwnership(env *runtime.Env, accounts []*runtime.AccountView, data []byte) error {
	if len(accounts) < 2 {
		return fmt.Errorf("%w: transfer ownership wants 2 accounts", protocol.ErrMalformedPayload)
	}
	adminRecord, authority := accounts[0], accounts[1]

	expected, _, err := pda.DeriveAdminRecord(authority.Key(), p.id)
	if err != nil {
		return fmt.Errorf("%w: %v", protocol.ErrInvalidDerivedAddress, err)
	}
	if !expected.Equals(adminRecord.Key()) {
		return fmt.Errorf("%w: derived %s, got %s", protocol.ErrInvalidDerivedAddress, expected, adminRecord.Key())
	}
	if !adminRecord.Owner().Equals(p.id) {
		return fmt.Errorf("%w: record owner %s", protocol.ErrNotInitialized, adminRecord.Owner())
	}

	state, err := record.Decode(adminRecord.Data())
	if err != nil {
		return err
	}

	args, err := protocol.DecodeTransferOwnership(data)
	if err != nil {
		return err
	}

	digest := protocol.Keccak256(args.NewExternalPublicKey[:])
	if err := protocol.VerifySecp256k1(digest, args.Signature, args.RecoveryID, state.ExternalPublicKey); err != nil {
		return err
	}

	state.ExternalPublicKey = args.NewExternalPublicKey
	if err := adminRecord.SetData(state.Encode()); err != nil {
		return err
	}
	p.log.Info().Str("record", adminRecord.Key().String()).Msg("external key rotated")
	return nil
}
