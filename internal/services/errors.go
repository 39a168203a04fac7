package services

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error categories the service layer reports.
// Handlers switch on the kind; no storage-layer error reaches a caller
// uncategorized.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindSelfPurchase      Kind = "self_purchase"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindUnauthorized      Kind = "unauthorized"
	// KindTransferFailed means the atomic transfer aborted cleanly; the
	// request may be retried.
	KindTransferFailed Kind = "transfer_failed"
	KindPersistence    Kind = "persistence"
	// KindInconsistency means a compensation step itself failed and wallet
	// state needs operator reconciliation.
	KindInconsistency Kind = "inconsistency"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

func Ef(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from err, or KindPersistence for anything the
// service layer failed to tag.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindPersistence
}
