package protocol

import "fmt"

// Code is a stable numeric error code shared across programs so client
// tooling can distinguish failure kinds without parsing messages.
// Codes are append-only; existing numbers are never reassigned.
type Code uint32

const (
	CodeUnauthorized          Code = 0
	CodeInvalidDerivedAddress Code = 1
	CodeAlreadyInitialized    Code = 2
	CodeMalformedPayload      Code = 3
	CodeArithmeticOverflow    Code = 4
	CodeNotInitialized        Code = 5
	CodeInvalidSignature      Code = 6
	CodeWrongTokenAccount     Code = 7
)

// Error is a protocol-level failure with a stable code.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("protocol: %s (code %d)", e.Msg, e.Code)
}

// Is matches any *Error carrying the same code, so wrapped program
// errors compare against the package sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrUnauthorized          = &Error{Code: CodeUnauthorized, Msg: "unauthorized"}
	ErrInvalidDerivedAddress = &Error{Code: CodeInvalidDerivedAddress, Msg: "invalid derived address"}
	ErrAlreadyInitialized    = &Error{Code: CodeAlreadyInitialized, Msg: "account already initialized"}
	ErrMalformedPayload      = &Error{Code: CodeMalformedPayload, Msg: "malformed payload"}
	ErrArithmeticOverflow    = &Error{Code: CodeArithmeticOverflow, Msg: "arithmetic overflow"}
	ErrNotInitialized        = &Error{Code: CodeNotInitialized, Msg: "account not initialized"}
	ErrInvalidSignature      = &Error{Code: CodeInvalidSignature, Msg: "invalid signature"}
	ErrWrongTokenAccount     = &Error{Code: CodeWrongTokenAccount, Msg: "wrong token account"}
)
