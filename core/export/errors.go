package export

import (
	"errors"
	"fmt"
)

// Kind classifies why an export failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindConnection
	KindQuery
	KindFilesystem
	KindDriverCleanup
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindConnection:
		return "connection"
	case KindQuery:
		return "query"
	case KindFilesystem:
		return "filesystem"
	case KindDriverCleanup:
		return "driver cleanup"
	default:
		return "unknown"
	}
}

// Error is returned by Runner.Run. Use errors.Is with one of the Err*
// sentinels to test the kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Sentinels matching any Error of the same kind.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrConnection    = &Error{Kind: KindConnection}
	ErrQuery         = &Error{Kind: KindQuery}
	ErrFilesystem    = &Error{Kind: KindFilesystem}
	ErrDriverCleanup = &Error{Kind: KindDriverCleanup}
)

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s error", e.Kind)
	}
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
