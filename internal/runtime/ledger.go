package runtime

import (
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Program is on-chain logic registered under a stable identity.
type Program interface {
	ID() solana.PublicKey
	Process(env *Env, accounts []*AccountView, data []byte) error
}

// Ledger stores accounts by address and programs by identity.
type Ledger struct {
	programs map[solana.PublicKey]Program
	accounts map[solana.PublicKey]*Account
	log      zerolog.Logger
}

// NewLedger creates an empty ledger with the system program
// registered.
func NewLedger() *Ledger {
	l := &Ledger{
		programs: make(map[solana.PublicKey]Program),
		accounts: make(map[solana.PublicKey]*Account),
		log:      log.With().Str("component", "ledger").Logger(),
	}
	l.programs[solana.SystemProgramID] = systemProgram{}
	return l
}

// Register adds a program to the ledger.
func (l *Ledger) Register(p Program) error {
	if _, ok := l.programs[p.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrProgramExists, p.ID())
	}
	l.programs[p.ID()] = p
	return nil
}

// Fund credits lamports to an address outside any transaction. Test
// and tooling genesis only.
func (l *Ledger) Fund(pk solana.PublicKey, lamports uint64) {
	acct, ok := l.accounts[pk]
	if !ok {
		acct = &Account{Owner: solana.SystemProgramID}
		l.accounts[pk] = acct
	}
	acct.Lamports += lamports
}

// Account returns a copy of the stored account state.
func (l *Ledger) Account(pk solana.PublicKey) (Account, bool) {
	acct, ok := l.accounts[pk]
	if !ok {
		return Account{}, false
	}
	return *acct.clone(), true
}

// Programs lists registered program identities in deterministic order.
func (l *Ledger) Programs() []solana.PublicKey {
	ids := make([]solana.PublicKey, 0, len(l.programs))
	for id := range l.programs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Execute runs every instruction of tx in order against a staged copy
// of the ledger. All instructions succeed or none do; the first
// failure aborts the whole transaction and discards the stage.
func (l *Ledger) Execute(tx Transaction) error {
	st := &stage{
		ledger:   l,
		accounts: make(map[solana.PublicKey]*Account, len(l.accounts)),
		tx:       tx,
	}
	for pk, acct := range l.accounts {
		st.accounts[pk] = acct.clone()
	}

	for i, ix := range tx.Instructions {
		if err := st.run(ix); err != nil {
			l.log.Debug().Int("instruction", i).Str("program", ix.ProgramID.String()).Err(err).Msg("transaction aborted")
			return fmt.Errorf("instruction %d: %w", i, err)
		}
	}

	st.commit()
	return nil
}

// stage is the uncommitted account state of one executing transaction.
type stage struct {
	ledger   *Ledger
	accounts map[solana.PublicKey]*Account
	tx       Transaction
}

// account resolves an address in the stage, materializing missing
// addresses as fresh system-owned accounts.
func (st *stage) account(pk solana.PublicKey) *Account {
	acct, ok := st.accounts[pk]
	if !ok {
		acct = &Account{Owner: solana.SystemProgramID}
		st.accounts[pk] = acct
	}
	return acct
}

// run executes one top-level instruction. Signer flags must be backed
// by a transaction signature.
func (st *stage) run(ix Instruction) error {
	program, ok := st.ledger.programs[ix.ProgramID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, ix.ProgramID)
	}
	for _, meta := range ix.Accounts {
		if meta.IsSigner && !st.tx.signed(meta.Pubkey) {
			return fmt.Errorf("%w: %s", ErrMissingSignature, meta.Pubkey)
		}
	}
	env := &Env{
		stage:   st,
		program: program,
		depth:   1,
		log:     st.ledger.log.With().Str("program", ix.ProgramID.String()).Logger(),
	}
	return program.Process(env, env.views(ix.Accounts), ix.Data)
}

// commit publishes the stage, dropping accounts that remained fresh.
func (st *stage) commit() {
	for pk, acct := range st.accounts {
		if acct.fresh() {
			delete(st.accounts, pk)
		}
	}
	st.ledger.accounts = st.accounts
}
