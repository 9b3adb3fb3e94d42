package hbkit

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds. Test them with errors.Is.
var (
	ErrConnectivity   = errors.New("cluster unreachable")
	ErrUseAfterClose  = errors.New("use of closed handle")
	ErrAdmin          = errors.New("admin operation failed")
	ErrTableState     = errors.New("invalid table state")
	ErrMutation       = errors.New("mutation rejected")
	ErrSchemaMismatch = errors.New("table schema mismatch")
)

// Error is returned by every operation of the package.
type Error struct {
	Kind  error
	Op    string
	Table string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Table != "" {
		msg += " " + e.Table
	}
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the error kind, the wrapped cause is reached through Unwrap.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an error of the given kind, used by drivers to classify failures.
func Errorf(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// wrap attaches the operation and table to err. A kind already carried by err
// wins over fallback.
func wrap(fallback error, op, table string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Op == "" {
			return &Error{Kind: e.Kind, Op: op, Table: table, Err: e.Err}
		}
		return err
	}
	return &Error{Kind: fallback, Op: op, Table: table, Err: err}
}

// KindOf returns the kind carried by err, nil if it has none.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
