package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no interaction has the requested flow token.
var ErrNotFound = errors.New("flow not found")

// Invocation records that a control changed.
type Invocation struct {
	FlowToken string   `json:"flow_token"`
	Control   string   `json:"control"`
	Selection []string `json:"selection"`
	Seq       int64    `json:"seq"`
}

// Completion records how an invocation ended.
type Completion struct {
	FlowToken string `json:"flow_token"`
	Case      string `json:"case"`
	Traces    int    `json:"traces"`
	Error     string `json:"error,omitempty"`
	Seq       int64  `json:"seq"`
}

// Flow is one interaction. Completion is nil while the handler has not
// finished, or if the process died before it did.
type Flow struct {
	Invocation Invocation  `json:"invocation"`
	Completion *Completion `json:"completion,omitempty"`
}

// WriteInvocation inserts an invocation. Writing the same flow token twice
// is a no-op.
func (s *Store) WriteInvocation(ctx context.Context, inv Invocation) error {
	sel := inv.Selection
	if sel == nil {
		sel = []string{}
	}
	selJSON, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("write invocation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invocations (flow_token, control, selection, seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(flow_token) DO NOTHING
	`, inv.FlowToken, inv.Control, string(selJSON), inv.Seq)
	if err != nil {
		return fmt.Errorf("write invocation: %w", err)
	}
	return nil
}

// WriteCompletion inserts the completion of a recorded invocation.
// The invocation must exist. Only the first completion per flow is kept.
func (s *Store) WriteCompletion(ctx context.Context, comp Completion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO completions (flow_token, output_case, traces, error, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(flow_token) DO NOTHING
	`, comp.FlowToken, comp.Case, comp.Traces, comp.Error, comp.Seq)
	if err != nil {
		return fmt.Errorf("write completion: %w", err)
	}
	return nil
}

const flowColumns = `
	i.flow_token, i.control, i.selection, i.seq,
	c.output_case, c.traces, c.error, c.seq`

// ReadFlow returns the interaction with the given flow token.
func (s *Store) ReadFlow(ctx context.Context, flowToken string) (Flow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+flowColumns+`
		FROM invocations i
		LEFT JOIN completions c ON c.flow_token = i.flow_token
		WHERE i.flow_token = ?
	`, flowToken)

	f, err := scanFlow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Flow{}, fmt.Errorf("%w: %s", ErrNotFound, flowToken)
	}
	if err != nil {
		return Flow{}, fmt.Errorf("read flow: %w", err)
	}
	return f, nil
}

// Filter narrows ListFlows. Zero values match everything.
type Filter struct {
	Control string
	Case    string
	// Limit keeps the most recent n flows; 0 means no limit.
	Limit int
}

// ListFlows returns recorded interactions in seq order.
func (s *Store) ListFlows(ctx context.Context, f Filter) ([]Flow, error) {
	query := `
		SELECT` + flowColumns + `
		FROM invocations i
		LEFT JOIN completions c ON c.flow_token = i.flow_token
		WHERE (? = '' OR i.control = ?)
		  AND (? = '' OR c.output_case = ?)
		ORDER BY i.seq DESC, i.flow_token COLLATE BINARY DESC`
	args := []any{f.Control, f.Control, f.Case, f.Case}
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	defer rows.Close()

	flows := []Flow{}
	for rows.Next() {
		fl, err := scanFlow(rows)
		if err != nil {
			return nil, fmt.Errorf("list flows: %w", err)
		}
		flows = append(flows, fl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flows: %w", err)
	}

	// newest n were selected; report them oldest first
	for i, j := 0, len(flows)-1; i < j; i, j = i+1, j-1 {
		flows[i], flows[j] = flows[j], flows[i]
	}
	return flows, nil
}

// FindIncomplete returns invocations that never got a completion, in seq order.
func (s *Store) FindIncomplete(ctx context.Context) ([]Invocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.flow_token, i.control, i.selection, i.seq
		FROM invocations i
		LEFT JOIN completions c ON c.flow_token = i.flow_token
		WHERE c.flow_token IS NULL
		ORDER BY i.seq ASC, i.flow_token COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("find incomplete: %w", err)
	}
	defer rows.Close()

	invs := []Invocation{}
	for rows.Next() {
		var inv Invocation
		var sel string
		if err := rows.Scan(&inv.FlowToken, &inv.Control, &sel, &inv.Seq); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		if err := json.Unmarshal([]byte(sel), &inv.Selection); err != nil {
			return nil, fmt.Errorf("decode selection of %s: %w", inv.FlowToken, err)
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

// LastSeq returns the highest seq written, or 0 for an empty log.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM (
			SELECT seq FROM invocations
			UNION ALL
			SELECT seq FROM completions
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFlow(row scanner) (Flow, error) {
	var (
		f       Flow
		sel     string
		outCase sql.NullString
		traces  sql.NullInt64
		errText sql.NullString
		compSeq sql.NullInt64
	)
	err := row.Scan(
		&f.Invocation.FlowToken, &f.Invocation.Control, &sel, &f.Invocation.Seq,
		&outCase, &traces, &errText, &compSeq,
	)
	if err != nil {
		return Flow{}, err
	}
	if err := json.Unmarshal([]byte(sel), &f.Invocation.Selection); err != nil {
		return Flow{}, fmt.Errorf("decode selection of %s: %w", f.Invocation.FlowToken, err)
	}
	if outCase.Valid {
		f.Completion = &Completion{
			FlowToken: f.Invocation.FlowToken,
			Case:      outCase.String,
			Traces:    int(traces.Int64),
			Error:     errText.String,
			Seq:       compSeq.Int64,
		}
	}
	return f, nil
}
