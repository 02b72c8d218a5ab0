package param

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies recoverable runtime failures.
type ErrorKind string

const (
	KindUnknownClassName     ErrorKind = "unknown_class_name"
	KindUnknownClassID       ErrorKind = "unknown_class_id"
	KindUnknownAttributeName ErrorKind = "unknown_attribute_name"
	KindUnknownAttributeID   ErrorKind = "unknown_attribute_id"
	KindTypeMismatch         ErrorKind = "type_mismatch"
	KindWrongClass           ErrorKind = "wrong_class"
	KindMalformed            ErrorKind = "malformed"
)

// Error is a lookup or decode failure. Context carries the offending
// identifiers for logging.
type Error struct {
	Kind    ErrorKind
	Context map[string]any
}

// Sentinels for errors.Is; only the kind is compared.
var (
	ErrUnknownClassName     = &Error{Kind: KindUnknownClassName}
	ErrUnknownClassID       = &Error{Kind: KindUnknownClassID}
	ErrUnknownAttributeName = &Error{Kind: KindUnknownAttributeName}
	ErrUnknownAttributeID   = &Error{Kind: KindUnknownAttributeID}
	ErrTypeMismatch         = &Error{Kind: KindTypeMismatch}
	ErrWrongClass           = &Error{Kind: KindWrongClass}
	ErrMalformed            = &Error{Kind: KindMalformed}
)

// NewError builds an Error from alternating key/value context arguments.
func NewError(kind ErrorKind, args ...any) *Error {
	n := len(args)
	if n%2 != 0 {
		panic("param: invalid error context args")
	}
	err := &Error{Kind: kind, Context: make(map[string]any, n/2)}
	for i := 0; i < n; i += 2 {
		k, ok := args[i].(string)
		if !ok {
			panic("param: invalid error context args")
		}
		err.Context[k] = args[i+1]
	}
	return err
}

func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return string(e.Kind)
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
	}
	return string(e.Kind) + ": " + strings.Join(parts, " ")
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
