package chain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a chain failure so callers can tell a transport outage
// from a contract-level revert without parsing messages.
type ErrorKind string

const (
	ErrRpcUnavailable   ErrorKind = "rpc_unavailable"
	ErrContractReverted ErrorKind = "contract_reverted"
	ErrSigningFailed    ErrorKind = "signing_failed"
	ErrReceiptTimeout   ErrorKind = "receipt_timeout"
)

type Error struct {
	Kind ErrorKind
	Op   string // contract method or rpc operation
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("chain: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("chain: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the error kind, or "" for non-chain errors.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
