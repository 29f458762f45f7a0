package graph

import (
	"github.com/nerdcore/reflexsub/pkg/codec"
)

// Canonical field tags. Order here is the canonical field order; it
// must never change without bumping codec.Version.
const (
	nodeFieldType      = 1
	nodeFieldPayload   = 2
	nodeFieldParentIDs = 3
	nodeFieldCreatedAt = 4

	edgeFieldInputIDs  = 1
	edgeFieldOutputID  = 2
	edgeFieldOperation = 3
	edgeFieldMetadata  = 4
	edgeFieldHasConf   = 5
	edgeFieldConf      = 6
	edgeFieldHasDur    = 7
	edgeFieldDur       = 8
	edgeFieldCreatedAt = 9
)

// CanonicalNodeBytes returns the canonical encoding of a node's hashed
// fields: type_name, payload, parent_ids (order-preserving), created_at.
func CanonicalNodeBytes(n Node) ([]byte, error) {
	payloadBytes, err := n.Payload.CanonicalBytes()
	if err != nil {
		return nil, codec.ErrNotSerializable
	}

	parents := make([][]byte, len(n.ParentIDs))
	for i, p := range n.ParentIDs {
		parents[i] = p.Bytes()
	}

	enc := codec.NewEncoder(codec.Version1).
		StringField(nodeFieldType, n.TypeName).
		Field(nodeFieldPayload, payloadBytes).
		SequenceField(nodeFieldParentIDs, parents).
		TimeField(nodeFieldCreatedAt, n.CreatedAt)
	return enc.Bytes(), nil
}

// HashNode computes the content hash of a node.
func HashNode(n Node) (string, error) {
	b, err := CanonicalNodeBytes(n)
	if err != nil {
		return "", err
	}
	return codec.ComputeHash(b), nil
}

// CanonicalEdgeBytes returns the canonical encoding of an edge's hashed
// fields: input_ids, output_id, operation_name, metadata, confidence,
// duration_ms, created_at.
func CanonicalEdgeBytes(e TransitionEdge) ([]byte, error) {
	inputs := make([][]byte, len(e.InputIDs))
	for i, id := range e.InputIDs {
		inputs[i] = id.Bytes()
	}

	enc := codec.NewEncoder(codec.Version1).
		SequenceField(edgeFieldInputIDs, inputs).
		Field(edgeFieldOutputID, e.OutputID.Bytes()).
		StringField(edgeFieldOperation, e.OperationName).
		SortedMapField(edgeFieldMetadata, e.Metadata)

	if e.Confidence != nil {
		enc.BoolField(edgeFieldHasConf, true).Float64Field(edgeFieldConf, *e.Confidence)
	} else {
		enc.BoolField(edgeFieldHasConf, false)
	}

	if e.DurationMs != nil {
		enc.BoolField(edgeFieldHasDur, true).Int64Field(edgeFieldDur, *e.DurationMs)
	} else {
		enc.BoolField(edgeFieldHasDur, false)
	}

	enc.TimeField(edgeFieldCreatedAt, e.CreatedAt)
	return enc.Bytes(), nil
}

// HashEdge computes the content hash of an edge.
func HashEdge(e TransitionEdge) (string, error) {
	b, err := CanonicalEdgeBytes(e)
	if err != nil {
		return "", err
	}
	return codec.ComputeHash(b), nil
}
