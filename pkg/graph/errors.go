package graph

import "errors"

// Sentinel error kinds. Wrapped with fmt.Errorf("...: %w", Err*) at the
// call site so callers can both log a specific message and match on
// errors.Is against the kind.
var (
	ErrDuplicateID       = errors.New("graph: duplicate id")
	ErrIntegrityViolation = errors.New("graph: integrity violation")
	ErrUnknownNode       = errors.New("graph: unknown node")
	ErrCyclicEdge        = errors.New("graph: edge would create a cycle")
	ErrNotFound          = errors.New("graph: not found")
	ErrInvalidArgument   = errors.New("graph: invalid argument")
)

// Violation describes one integrity failure found by VerifyIntegrity.
type Violation struct {
	Kind    error
	Subject string // node or edge id, stringified
	Detail  string
}
