package runtime

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

// maxInvokeDepth bounds synchronous cross-program call chains:
// one top-level instruction plus three nested invocations.
const maxInvokeDepth = 4

// Env is the execution context of one program invocation.
type Env struct {
	stage       *stage
	program     Program
	depth       int
	priv        map[solana.PublicKey]AccountMeta
	seedSigners map[solana.PublicKey]bool
	log         zerolog.Logger
}

// ProgramID is the identity of the executing program.
func (e *Env) ProgramID() solana.PublicKey { return e.program.ID() }

// Log is a logger scoped to the executing program.
func (e *Env) Log() *zerolog.Logger { return &e.log }

// views materializes account views for an instruction's metas and
// records the privileges granted to the executing program, which cap
// what it may pass on through Invoke.
func (e *Env) views(metas []AccountMeta) []*AccountView {
	e.priv = make(map[solana.PublicKey]AccountMeta, len(metas))
	views := make([]*AccountView, len(metas))
	for i, meta := range metas {
		views[i] = &AccountView{
			key:        meta.Pubkey,
			isSigner:   meta.IsSigner,
			isWritable: meta.IsWritable,
			acct:       e.stage.account(meta.Pubkey),
			env:        e,
		}
		// Duplicate metas keep the union of their privileges.
		prev := e.priv[meta.Pubkey]
		prev.Pubkey = meta.Pubkey
		prev.IsSigner = prev.IsSigner || meta.IsSigner
		prev.IsWritable = prev.IsWritable || meta.IsWritable
		e.priv[meta.Pubkey] = prev
	}
	return views
}

// Invoke synchronously executes another program's instruction within
// the same staged transaction. Every invoked account must have been
// passed to the calling instruction, and the call may not escalate
// signer or writable privileges. signerSeeds authorize derived
// addresses of the calling program as signers: each seed group,
// bump included, must reproduce one of the invoked addresses via
// CreateProgramAddress.
func (e *Env) Invoke(ix Instruction, signerSeeds ...[][]byte) error {
	if e.depth+1 > maxInvokeDepth {
		return fmt.Errorf("%w: depth %d", ErrInvokeDepth, e.depth+1)
	}
	program, ok := e.stage.ledger.programs[ix.ProgramID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, ix.ProgramID)
	}

	derived := make(map[solana.PublicKey]bool, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := solana.CreateProgramAddress(seeds, e.program.ID())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
		}
		derived[addr] = true
	}

	for _, meta := range ix.Accounts {
		granted, ok := e.priv[meta.Pubkey]
		if !ok {
			return fmt.Errorf("%w: %s", ErrAccountNotPassed, meta.Pubkey)
		}
		if meta.IsWritable && !granted.IsWritable {
			return fmt.Errorf("%w: %s writable", ErrPrivilegeEscalate, meta.Pubkey)
		}
		if meta.IsSigner && !granted.IsSigner && !e.seedSigners[meta.Pubkey] && !derived[meta.Pubkey] {
			return fmt.Errorf("%w: %s signer", ErrPrivilegeEscalate, meta.Pubkey)
		}
	}

	child := &Env{
		stage:       e.stage,
		program:     program,
		depth:       e.depth + 1,
		seedSigners: derived,
		log:         e.stage.ledger.log.With().Str("program", ix.ProgramID.String()).Int("depth", e.depth+1).Logger(),
	}
	return program.Process(child, child.views(ix.Accounts), ix.Data)
}
