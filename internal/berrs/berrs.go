// Package berrs defines the error kinds Berlin's core distinguishes between:
// a bad dataset is fatal at load, a bad query parameter is recoverable and
// surfaced to the caller, and an invariant violation is logged and swallowed
// so a single malformed record cannot take a running service down.
package berrs

import "errors"

// Kind classifies an error the way the core reasons about it.
type Kind int

const (
	// DatasetInvalid means load-time ingestion hit a malformed record or a
	// referential integrity failure (e.g. a subdivision naming an unknown
	// country). Fatal: it aborts initialization.
	DatasetInvalid Kind = iota
	// QueryParamInvalid means a caller-supplied parameter (limit,
	// lev_distance, state) failed validation. Recoverable: it is surfaced to
	// the caller, mapped to HTTP 400 at the web boundary.
	QueryParamInvalid
	// Internal means an unreachable-branch invariant was violated. Call
	// HandleInternal on the resulting error: in production it is a no-op (the
	// caller has already logged and drops the offending record or
	// candidate); built with -tags berlin_strict it panics instead.
	Internal
)

func (k Kind) String() string {
	switch k {
	case DatasetInvalid:
		return "dataset_invalid"
	case QueryParamInvalid:
		return "query_param_invalid"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Kind so callers can branch with
// errors.Is/errors.As instead of string matching.
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

// Is lets errors.Is(err, berrs.DatasetInvalidKind) work by comparing Kind against
// a sentinel constructed with that Kind and no message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

func newf(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Dataset wraps a load-time failure as DatasetInvalid.
func Dataset(msg string, err error) error { return newf(DatasetInvalid, msg, err) }

// QueryParam wraps a caller-facing parameter validation failure.
func QueryParam(msg string, err error) error { return newf(QueryParamInvalid, msg, err) }

// InternalErr wraps an invariant violation.
func InternalErr(msg string, err error) error { return newf(Internal, msg, err) }

// sentinel kinds for errors.Is comparisons, e.g. errors.Is(err, berrs.DatasetInvalidKind)
var (
	DatasetInvalidKind   = &Error{Kind: DatasetInvalid}
	QueryParamInvalidKind = &Error{Kind: QueryParamInvalid}
	InternalKind         = &Error{Kind: Internal}
)
