// Package upgrade is the authority-transfer program: a two-phase
// handoff of a stored authority identity. It carries no dependency on
// admin records; the bridge protocol only assumes its interface.
package upgrade

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mothvane/bridgectl/internal/protocol"
	"github.com/mothvane/bridgectl/internal/protocol/pda"
	"github.com/mothvane/bridgectl/internal/runtime"
)

// DefaultProgramID is the deployed upgrade program identity.
var DefaultProgramID = solana.MustPublicKeyFromBase58("Upgrade111111111111111111111111111111111111")

// StateSize is the authority account layout:
// [1 disc][32 authority][32 pending].
const StateSize = 1 + solana.PublicKeyLength + solana.PublicKeyLength

const discInitialized = 1

// State is the decoded authority account.
type State struct {
	Authority solana.PublicKey
	Pending   solana.PublicKey
}

func (s State) Encode() []byte {
	buf := make([]byte, StateSize)
	buf[0] = discInitialized
	copy(buf[1:33], s.Authority[:])
	copy(buf[33:65], s.Pending[:])
	return buf
}

func Decode(data []byte) (State, error) {
	var s State
	if len(data) != StateSize {
		return s, protocol.ErrMalformedPayload
	}
	if data[0] != discInitialized {
		return s, protocol.ErrNotInitialized
	}
	copy(s.Authority[:], data[1:33])
	copy(s.Pending[:], data[33:65])
	return s, nil
}

// Program is the upgrade-authority program.
type Program struct {
	id  solana.PublicKey
	log zerolog.Logger
}

func New(id solana.PublicKey) *Program {
	return &Program{
		id:  id,
		log: log.With().Str("program", "upgrade").Logger(),
	}
}

func (p *Program) ID() solana.PublicKey { return p.id }

func (p *Program) Process(env *runtime.Env, accounts []*runtime.AccountView, data []byte) error {
	if len(data) == 0 {
		return protocol.ErrMalformedPayload
	}
	switch protocol.Tag(data[0]) {
	case protocol.TagInitializeAuthority:
		p.log.Info().Msg("instruction: initialize authority")
		return p.initialize(env, accounts, data)
	case protocol.TagProposeAuthority:
		p.log.Info().Msg("instruction: propose authority")
		return p.propose(env, accounts, data)
	case protocol.TagAcceptAuthority:
		p.log.Info().Msg("instruction: accept authority")
		return p.accept(env, accounts, data)
	default:
		return fmt.Errorf("%w: upgrade tag %d", protocol.ErrMalformedPayload, data[0])
	}
}

// initialize creates the singleton authority account.
//
// Accounts:
//  0. [writable, signer] payer
//  1. [writable]         authority account at the derived address
//  2. []                 system program
func (p *Program) initialize(env *runtime.Env, accounts []*runtime.AccountView, data []byte) error {
	if len(accounts) < 3 {
		return fmt.Errorf("%w: initialize wants 3 accounts", protocol.ErrMalformedPayload)
	}
	payer, state := accounts[0], accounts[1]

	if !payer.IsSigner() {
		return fmt.Errorf("%w: payer did not sign", protocol.ErrUnauthorized)
	}
	expected, bump, err := pda.DeriveUpgradeAuthority(p.id)
	if err != nil {
		return fmt.Errorf("%w: %v", protocol.ErrInvalidDerivedAddress, err)
	}
	if !expected.Equals(state.Key()) {
		return fmt.Errorf("%w: derived %s, got %s", protocol.ErrInvalidDerivedAddress, expected, state.Key())
	}
	if !state.IsEmpty() {
		return fmt.Errorf("%w: %s", protocol.ErrAlreadyInitialized, state.Key())
	}

	args, err := protocol.DecodeAuthority(protocol.TagInitializeAuthority, data)
	if err != nil {
		return err
	}

	create := runtime.NewCreateAccountInstruction(
		payer.Key(), state.Key(), p.id,
		runtime.RentExemptMinimum(StateSize), StateSize,
	)
	if err := env.Invoke(create, pda.UpgradeAuthoritySeeds(bump)); err != nil {
		return err
	}
	return state.SetData(State{Authority: args.Authority}.Encode())
}

// propose stages a new authority. Accounts: authority account
// (writable), current authority (signer).
func (p *Program) propose(env *runtime.Env, accounts []*runtime.AccountView, data []byte) error {
	if len(accounts) < 2 {
		return fmt.Errorf("%w: propose wants 2 accounts", protocol.ErrMalformedPayload)
	}
	stateView, current := accounts[0], accounts[1]

	state, err := p.load(stateView)
	if err != nil {
		return err
	}
	if !current.IsSigner() || !state.Authority.Equals(current.Key()) {
		return fmt.Errorf("%w: current authority", protocol.ErrUnauthorized)
	}

	args, err := protocol.DecodeAuthority(protocol.TagProposeAuthority, data)
	if err != nil {
		return err
	}
	state.Pending = args.Authority
	return stateView.SetData(state.Encode())
}

// accept promotes the pending authority. Accounts: authority account
// (writable), pending authority (signer).
func (p *Program) accept(env *runtime.Env, accounts []*runtime.AccountView, data []byte) error {
	if len(data) != 1 {
		return protocol.ErrMalformedPayload
	}
	if len(accounts) < 2 {
		return fmt.Errorf("%w: accept wants 2 accounts", protocol.ErrMalformedPayload)
	}
	stateView, pending := accounts[0], accounts[1]

	state, err := p.load(stateView)
	if err != nil {
		return err
	}
	if state.Pending.IsZero() {
		return fmt.Errorf("%w: no pending authority", protocol.ErrUnauthorized)
	}
	if !pending.IsSigner() || !state.Pending.Equals(pending.Key()) {
		return fmt.Errorf("%w: pending authority", protocol.ErrUnauthorized)
	}

	state.Authority = state.Pending
	state.Pending = solana.PublicKey{}
	return stateView.SetData(state.Encode())
}

func (p *Program) load(view *runtime.AccountView) (State, error) {
	if !view.Owner().Equals(p.id) {
		return State{}, fmt.Errorf("%w: owner %s", protocol.ErrNotInitialized, view.Owner())
	}
	return Decode(view.Data())
}
