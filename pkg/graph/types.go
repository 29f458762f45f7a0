// Package graph implements the Merkle-DAG of reasoning events: a
// content-addressed, append-only directed acyclic graph whose nodes are
// reasoning artifacts and whose edges are typed transitions between
// them.
package graph

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NodeID identifies a Node. It is a stable, opaque 128-bit identifier.
type NodeID uuid.UUID

// NewNodeID generates a fresh NodeID.
func NewNodeID() NodeID { return NodeID(uuid.New()) }

func (id NodeID) String() string { return uuid.UUID(id).String() }

// Bytes returns the raw 16 bytes of the id, used by the canonical codec.
func (id NodeID) Bytes() []byte {
	u := uuid.UUID(id)
	return u[:]
}

// IsZero reports whether id is the zero value (never assigned).
func (id NodeID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// EdgeID identifies a TransitionEdge.
type EdgeID uuid.UUID

// NewEdgeID generates a fresh EdgeID.
func NewEdgeID() EdgeID { return EdgeID(uuid.New()) }

func (id EdgeID) String() string { return uuid.UUID(id).String() }

func (id EdgeID) Bytes() []byte {
	u := uuid.UUID(id)
	return u[:]
}

// Payload is the closed sum type for a node's opaque content. It is
// never a bare `any`: every payload kind must know how to reduce itself
// to canonical bytes for hashing.
type Payload interface {
	// CanonicalBytes returns the bytes that participate in the node's
	// content hash. Returning an error maps to codec.ErrNotSerializable.
	CanonicalBytes() ([]byte, error)
}

// BytesPayload is the sealed "opaque bytes" variant: the payload is
// already a byte string and is used as-is.
type BytesPayload []byte

func (p BytesPayload) CanonicalBytes() ([]byte, error) { return []byte(p), nil }

// JSONPayload wraps an arbitrary JSON-serializable value. Its canonical
// bytes are the value's compact JSON encoding; Go's encoding/json
// produces deterministic key ordering for map[string]... only when keys
// are sorted, which the standard library already guarantees for map
// encoding, so this is safe to hash directly.
type JSONPayload struct {
	Value interface{}
}

func (p JSONPayload) CanonicalBytes() ([]byte, error) {
	return json.Marshal(p.Value)
}

// Node is a content-addressed reasoning artifact: a draft, critique,
// improvement, final spec, or any other typed payload.
type Node struct {
	ID        NodeID
	TypeName  string
	Payload   Payload
	ParentIDs []NodeID
	CreatedAt time.Time
	Hash      string
}

// TransitionEdge is a typed hyperedge from one or more input nodes to
// exactly one output node.
type TransitionEdge struct {
	ID            EdgeID
	InputIDs      []NodeID
	OutputID      NodeID
	OperationName string
	Metadata      map[string]string
	Confidence    *float64
	DurationMs    *int64
	CreatedAt     time.Time
	Hash          string
}
