package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/nerdcore/reflexsub/pkg/graph"
)

const (
	payloadKindBytes = "bytes"
	payloadKindJSON  = "json"
)

func parseNodeID(s string) (graph.NodeID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return graph.NodeID{}, fmt.Errorf("store: malformed node id %q: %w", s, err)
	}
	return graph.NodeID(u), nil
}

func parseEdgeID(s string) (graph.EdgeID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return graph.EdgeID{}, fmt.Errorf("store: malformed edge id %q: %w", s, err)
	}
	return graph.EdgeID(u), nil
}

// encodePayload reduces a graph.Payload to a storable (kind, bytes)
// pair. Only the two sealed variants graph exposes are supported; any
// other implementation is rejected rather than silently mis-stored.
func encodePayload(p graph.Payload) (kind string, data []byte, err error) {
	switch v := p.(type) {
	case graph.BytesPayload:
		return payloadKindBytes, []byte(v), nil
	case graph.JSONPayload:
		data, err := json.Marshal(v.Value)
		if err != nil {
			return "", nil, err
		}
		return payloadKindJSON, data, nil
	default:
		return "", nil, fmt.Errorf("store: unsupported payload type %T", p)
	}
}

func decodePayload(kind string, data []byte) (graph.Payload, error) {
	switch kind {
	case payloadKindBytes:
		return graph.BytesPayload(data), nil
	case payloadKindJSON:
		var v interface{}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("store: malformed json payload: %w", err)
		}
		return graph.JSONPayload{Value: v}, nil
	default:
		return nil, fmt.Errorf("store: unknown payload kind %q", kind)
	}
}
