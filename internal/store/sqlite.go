package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nerdcore/reflexsub/internal/snapshot"
	"github.com/nerdcore/reflexsub/pkg/graph"
)

// SQLitePort is a durable Port backed by SQLite. Connection setup
// follows the usual single-writer-friendly pragma sequence: a busy
// timeout so concurrent writers wait instead of failing immediately,
// WAL so readers never block on a writer, and synchronous=NORMAL since
// WAL already makes that safe.
type SQLitePort struct {
	db *sql.DB
}

// OpenSQLitePort opens (creating if absent) the SQLite database at
// path and brings its schema up to date.
func OpenSQLitePort(path string) (*SQLitePort, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: failed to open sqlite database: %w", err)
	}

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: failed to set %q: %w", p, err)
		}
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLitePort{db: db}, nil
}

func (s *SQLitePort) PutNode(ctx context.Context, n graph.Node) error {
	payloadKind, payloadData, err := encodePayload(n.Payload)
	if err != nil {
		return fmt.Errorf("store: failed to encode payload: %w", err)
	}
	parentIDs := make([]string, len(n.ParentIDs))
	for i, p := range n.ParentIDs {
		parentIDs[i] = p.String()
	}
	parentJSON, err := json.Marshal(parentIDs)
	if err != nil {
		return fmt.Errorf("store: failed to encode parent_ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO nodes (id, type_name, payload_kind, payload_data, parent_ids, created_at, hash)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	type_name=excluded.type_name, payload_kind=excluded.payload_kind,
	payload_data=excluded.payload_data, parent_ids=excluded.parent_ids,
	created_at=excluded.created_at, hash=excluded.hash
`, n.ID.String(), n.TypeName, payloadKind, payloadData, string(parentJSON), n.CreatedAt.UTC().UnixNano(), n.Hash)
	if err != nil {
		return fmt.Errorf("store: failed to put node: %w", err)
	}
	return nil
}

func (s *SQLitePort) GetNode(ctx context.Context, id graph.NodeID) (graph.Node, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, type_name, payload_kind, payload_data, parent_ids, created_at, hash FROM nodes WHERE id = ?`, id.String())
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return graph.Node{}, ErrNotFound
	}
	if err != nil {
		return graph.Node{}, fmt.Errorf("store: failed to get node: %w", err)
	}
	return n, nil
}

func (s *SQLitePort) IterNodes(ctx context.Context) ([]graph.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, type_name, payload_kind, payload_data, parent_ids, created_at, hash FROM nodes`)
	if err != nil {
		return nil, fmt.Errorf("store: failed to iterate nodes: %w", err)
	}
	defer rows.Close()

	var out []graph.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("store: failed to scan node: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLitePort) PutEdge(ctx context.Context, e graph.TransitionEdge) error {
	inputIDs := make([]string, len(e.InputIDs))
	for i, id := range e.InputIDs {
		inputIDs[i] = id.String()
	}
	inputJSON, err := json.Marshal(inputIDs)
	if err != nil {
		return fmt.Errorf("store: failed to encode input_ids: %w", err)
	}
	metaJSON, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("store: failed to encode metadata: %w", err)
	}

	var hasConf int
	var conf sql.NullFloat64
	if e.Confidence != nil {
		hasConf = 1
		conf = sql.NullFloat64{Float64: *e.Confidence, Valid: true}
	}
	var hasDur int
	var dur sql.NullInt64
	if e.DurationMs != nil {
		hasDur = 1
		dur = sql.NullInt64{Int64: *e.DurationMs, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO edges (id, input_ids, output_id, operation_name, metadata, has_confidence, confidence, has_duration, duration_ms, created_at, hash)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	input_ids=excluded.input_ids, output_id=excluded.output_id, operation_name=excluded.operation_name,
	metadata=excluded.metadata, has_confidence=excluded.has_confidence, confidence=excluded.confidence,
	has_duration=excluded.has_duration, duration_ms=excluded.duration_ms,
	created_at=excluded.created_at, hash=excluded.hash
`, e.ID.String(), string(inputJSON), e.OutputID.String(), e.OperationName, string(metaJSON),
		hasConf, conf, hasDur, dur, e.CreatedAt.UTC().UnixNano(), e.Hash)
	if err != nil {
		return fmt.Errorf("store: failed to put edge: %w", err)
	}
	return nil
}

func (s *SQLitePort) GetEdge(ctx context.Context, id graph.EdgeID) (graph.TransitionEdge, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, input_ids, output_id, operation_name, metadata, has_confidence, confidence, has_duration, duration_ms, created_at, hash
FROM edges WHERE id = ?`, id.String())
	e, err := scanEdge(row)
	if err == sql.ErrNoRows {
		return graph.TransitionEdge{}, ErrNotFound
	}
	if err != nil {
		return graph.TransitionEdge{}, fmt.Errorf("store: failed to get edge: %w", err)
	}
	return e, nil
}

func (s *SQLitePort) IterEdges(ctx context.Context) ([]graph.TransitionEdge, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, input_ids, output_id, operation_name, metadata, has_confidence, confidence, has_duration, duration_ms, created_at, hash
FROM edges`)
	if err != nil {
		return nil, fmt.Errorf("store: failed to iterate edges: %w", err)
	}
	defer rows.Close()

	var out []graph.TransitionEdge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("store: failed to scan edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLitePort) PutSnapshot(ctx context.Context, snap snapshot.BranchSnapshot) error {
	eventsJSON, err := json.Marshal(snap.Events)
	if err != nil {
		return fmt.Errorf("store: failed to encode events: %w", err)
	}
	vectorsJSON, err := json.Marshal(snap.Vectors)
	if err != nil {
		return fmt.Errorf("store: failed to encode vectors: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO snapshots (branch_name, hash, captured_at, events, vectors)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(branch_name, hash) DO NOTHING
`, snap.BranchName, snap.Hash, snap.CapturedAt.UTC().UnixNano(), string(eventsJSON), string(vectorsJSON))
	if err != nil {
		return fmt.Errorf("store: failed to put snapshot: %w", err)
	}
	return nil
}

func (s *SQLitePort) GetSnapshot(ctx context.Context, branch string, hash string) (snapshot.BranchSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT branch_name, hash, captured_at, events, vectors FROM snapshots WHERE branch_name = ? AND hash = ?`, branch, hash)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return snapshot.BranchSnapshot{}, ErrNotFound
	}
	if err != nil {
		return snapshot.BranchSnapshot{}, fmt.Errorf("store: failed to get snapshot: %w", err)
	}
	return snap, nil
}

func (s *SQLitePort) IterSnapshots(ctx context.Context, branch string) ([]snapshot.BranchSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT branch_name, hash, captured_at, events, vectors FROM snapshots WHERE branch_name = ? ORDER BY captured_at ASC`, branch)
	if err != nil {
		return nil, fmt.Errorf("store: failed to iterate snapshots: %w", err)
	}
	defer rows.Close()

	var out []snapshot.BranchSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("store: failed to scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *SQLitePort) Close() error { return s.db.Close() }

var _ Port = (*SQLitePort)(nil)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row rowScanner) (graph.Node, error) {
	var id, typeName, payloadKind, parentJSON, hash string
	var payloadData []byte
	var createdAt int64
	if err := row.Scan(&id, &typeName, &payloadKind, &payloadData, &parentJSON, &createdAt, &hash); err != nil {
		return graph.Node{}, err
	}

	nodeID, err := parseNodeID(id)
	if err != nil {
		return graph.Node{}, err
	}
	var parentStrs []string
	if err := json.Unmarshal([]byte(parentJSON), &parentStrs); err != nil {
		return graph.Node{}, fmt.Errorf("store: malformed parent_ids: %w", err)
	}
	parents := make([]graph.NodeID, len(parentStrs))
	for i, p := range parentStrs {
		pid, err := parseNodeID(p)
		if err != nil {
			return graph.Node{}, err
		}
		parents[i] = pid
	}

	payload, err := decodePayload(payloadKind, payloadData)
	if err != nil {
		return graph.Node{}, err
	}

	return graph.Node{
		ID:        nodeID,
		TypeName:  typeName,
		Payload:   payload,
		ParentIDs: parents,
		CreatedAt: time.Unix(0, createdAt).UTC(),
		Hash:      hash,
	}, nil
}

func scanEdge(row rowScanner) (graph.TransitionEdge, error) {
	var id, inputJSON, outputID, operation, metaJSON, hash string
	var hasConf, hasDur int
	var conf sql.NullFloat64
	var dur sql.NullInt64
	var createdAt int64
	if err := row.Scan(&id, &inputJSON, &outputID, &operation, &metaJSON, &hasConf, &conf, &hasDur, &dur, &createdAt, &hash); err != nil {
		return graph.TransitionEdge{}, err
	}

	edgeID, err := parseEdgeID(id)
	if err != nil {
		return graph.TransitionEdge{}, err
	}
	var inputStrs []string
	if err := json.Unmarshal([]byte(inputJSON), &inputStrs); err != nil {
		return graph.TransitionEdge{}, fmt.Errorf("store: malformed input_ids: %w", err)
	}
	inputs := make([]graph.NodeID, len(inputStrs))
	for i, s := range inputStrs {
		nid, err := parseNodeID(s)
		if err != nil {
			return graph.TransitionEdge{}, err
		}
		inputs[i] = nid
	}
	outID, err := parseNodeID(outputID)
	if err != nil {
		return graph.TransitionEdge{}, err
	}
	var metadata map[string]string
	if err := json.Unmarshal([]byte(metaJSON), &metadata); err != nil {
		return graph.TransitionEdge{}, fmt.Errorf("store: malformed metadata: %w", err)
	}

	var confidence *float64
	if hasConf == 1 && conf.Valid {
		v := conf.Float64
		confidence = &v
	}
	var durationMs *int64
	if hasDur == 1 && dur.Valid {
		v := dur.Int64
		durationMs = &v
	}

	return graph.TransitionEdge{
		ID:            edgeID,
		InputIDs:      inputs,
		OutputID:      outID,
		OperationName: operation,
		Metadata:      metadata,
		Confidence:    confidence,
		DurationMs:    durationMs,
		CreatedAt:     time.Unix(0, createdAt).UTC(),
		Hash:          hash,
	}, nil
}

func scanSnapshot(row rowScanner) (snapshot.BranchSnapshot, error) {
	var branchName, hash, eventsJSON, vectorsJSON string
	var capturedAt int64
	if err := row.Scan(&branchName, &hash, &capturedAt, &eventsJSON, &vectorsJSON); err != nil {
		return snapshot.BranchSnapshot{}, err
	}

	var events []snapshot.Event
	if err := json.Unmarshal([]byte(eventsJSON), &events); err != nil {
		return snapshot.BranchSnapshot{}, fmt.Errorf("store: malformed events: %w", err)
	}
	var vectors [][]float64
	if err := json.Unmarshal([]byte(vectorsJSON), &vectors); err != nil {
		return snapshot.BranchSnapshot{}, fmt.Errorf("store: malformed vectors: %w", err)
	}

	return snapshot.BranchSnapshot{
		BranchName: branchName,
		CapturedAt: time.Unix(0, capturedAt).UTC(),
		Events:     events,
		Vectors:    vectors,
		Hash:       hash,
	}, nil
}
