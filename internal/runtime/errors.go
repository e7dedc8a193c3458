package runtime

import "errors"

var (
	ErrUnknownProgram    = errors.New("runtime: unknown program")
	ErrProgramExists     = errors.New("runtime: program already registered")
	ErrMissingSignature  = errors.New("runtime: account marked signer without a transaction signature")
	ErrAccountNotPassed  = errors.New("runtime: invoked account not passed to calling instruction")
	ErrPrivilegeEscalate = errors.New("runtime: invocation escalates account privileges")
	ErrInvokeDepth       = errors.New("runtime: invocation depth exceeded")
	ErrAccountInUse      = errors.New("runtime: account already in use")
	ErrInsufficientFunds = errors.New("runtime: insufficient funds")
	ErrNotRentExempt     = errors.New("runtime: balance below rent-exempt minimum")
	ErrNotWritable       = errors.New("runtime: account not writable")
	ErrNotOwner          = errors.New("runtime: account not owned by executing program")
	ErrMalformedData     = errors.New("runtime: malformed instruction data")
	ErrInvalidSeeds      = errors.New("runtime: signer seeds do not derive a program address")
)
