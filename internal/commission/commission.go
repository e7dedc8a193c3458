// Package commission is the program that moves protocol fees. It
// performs a funds movement only when a bridge-owned admin record
// names this program as trusted; trust is carried in the record and
// checked on every action, never inferred from the call site.
package commission

import (
	"fmt"
	"math/bits"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mothvane/bridgectl/internal/protocol"
	"github.com/mothvane/bridgectl/internal/protocol/record"
	"github.com/mothvane/bridgectl/internal/runtime"
	"github.com/mothvane/bridgectl/internal/runtime/token"
)

// DefaultProgramID is the deployed commission program identity.
var DefaultProgramID = solana.MustPublicKeyFromBase58("Commission111111111111111111111111111111111")

// basisPointsDenominator converts a rate in basis points to a
// fraction: 1 bp = 1/10000.
const basisPointsDenominator = 10000

// Program is the commission program.
type Program struct {
	id       solana.PublicKey
	bridgeID solana.PublicKey
	rateBps  uint64
	log      zerolog.Logger
}

// New creates a commission program instance deployed under id,
// trusting records owned by bridgeID and charging cfg.RateBps.
func New(id, bridgeID solana.PublicKey, cfg Config) (*Program, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Program{
		id:       id,
		bridgeID: bridgeID,
		rateBps:  uint64(cfg.RateBps),
		log:      log.With().Str("program", "commission").Logger(),
	}, nil
}

func (p *Program) ID() solana.PublicKey { return p.id }

func (p *Program) Process(env *runtime.Env, accounts []*runtime.AccountView, data []byte) error {
	if len(data) == 0 {
		return protocol.ErrMalformedPayload
	}
	switch protocol.Tag(data[0]) {
	case protocol.TagChargeCommission:
		p.log.Info().Msg("instruction: charge commission")
		return p.chargeCommission(env, accounts, data)
	default:
		return fmt.Errorf("%w: commission tag %d", protocol.ErrMalformedPayload, data[0])
	}
}

// chargeCommission authorizes against the admin record, computes the
// fee, and moves it from the source token account to the collector's
// associated account, creating that account first when absent.
//
// Accounts:
//  0. []                 admin record account, owned by the bridge program
//  1. [writable]         source token account
//  2. [writable, signer] source owner, pays for account creation
//  3. [writable]         collector associated token account
//  4. []                 collector identity
//  5. []                 token mint
//  6. []                 token program
//  7. []                 associated-account program
//  8. []                 system program
//
// Authorization completes before any state mutation begins.
func (p *Program) chargeCommission(env *runtime.Env, accounts []*runtime.AccountView, data []byte) error {
	if len(accounts) < 9 {
		return fmt.Errorf("%w: charge commission wants 9 accounts", protocol.ErrMalformedPayload)
	}
	adminRecord := accounts[0]
	source, sourceOwner := accounts[1], accounts[2]
	collectorAccount, collector, mint := accounts[3], accounts[4], accounts[5]

	// Step 1: authorization. Owner check first, so a forged account
	// with a matching byte layout under another program is rejected.
	if !adminRecord.Owner().Equals(p.bridgeID) {
		return fmt.Errorf("%w: record owned by %s", protocol.ErrUnauthorized, adminRecord.Owner())
	}
	state, err := record.Decode(adminRecord.Data())
	if err != nil {
		return err
	}
	if !state.CommissionProgram.Equals(p.id) {
		return fmt.Errorf("%w: record trusts %s", protocol.ErrUnauthorized, state.CommissionProgram)
	}

	args, err := protocol.DecodeChargeCommission(data)
	if err != nil {
		return err
	}

	// Step 2: fee = floor(amount * rate / 10000). A product beyond
	// 64 bits is a deliberate crash, never a silent truncation.
	fee, err := p.fee(args.Amount)
	if err != nil {
		return err
	}

	// Step 3: effect.
	expected, _, err := token.DeriveAssociatedAccount(collector.Key(), mint.Key())
	if err != nil {
		return fmt.Errorf("%w: %v", protocol.ErrWrongTokenAccount, err)
	}
	if !expected.Equals(collectorAccount.Key()) {
		return fmt.Errorf("%w: %s is not the collector's associated account", protocol.ErrWrongTokenAccount, collectorAccount.Key())
	}
	if collectorAccount.IsEmpty() {
		p.log.Debug().Str("account", collectorAccount.Key().String()).Msg("creating collector associated account")
		create := token.NewCreateAssociatedAccountInstruction(
			sourceOwner.Key(), collectorAccount.Key(), collector.Key(), mint.Key(),
		)
		if err := env.Invoke(create); err != nil {
			return err
		}
	}

	transfer := token.NewTransferInstruction(source.Key(), collectorAccount.Key(), sourceOwner.Key(), fee)
	if err := env.Invoke(transfer); err != nil {
		return err
	}
	p.log.Info().
		Uint64("amount", args.Amount).
		Uint64("fee", fee).
		Str("collector", collector.Key().String()).
		Msg("commission charged")
	return nil
}

// fee computes floor(amount * rateBps / 10000), failing on overflow
// of the intermediate product.
func (p *Program) fee(amount uint64) (uint64, error) {
	hi, lo := bits.Mul64(amount, p.rateBps)
	if hi != 0 {
		return 0, fmt.Errorf("%w: %d * %d bps", protocol.ErrArithmeticOverflow, amount, p.rateBps)
	}
	return lo / basisPointsDenominator, nil
}
