package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/varstore"
)

// SaveSnapshot records the settled variable state of one pass.
// Returns whether a new row was inserted: writing the same
// (character, pass token) twice is idempotent and reports inserted=false.
//
// seq is assigned as max(seq)+1 among the character's snapshots inside
// the insert transaction, so snapshot order is a logical counter rather
// than wall time.
func (s *Store) SaveSnapshot(ctx context.Context, characterID, passToken string, snap []varstore.VariableSnapshot) (inserted bool, err error) {
	body, err := json.Marshal(snap)
	if err != nil {
		return false, fmt.Errorf("save snapshot: marshal: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("save snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO pass_snapshots (character_id, pass_token, snapshot, seq)
		VALUES (?, ?, ?, (
			SELECT COALESCE(MAX(seq), 0) + 1 FROM pass_snapshots WHERE character_id = ?
		))
		ON CONFLICT(character_id, pass_token) DO NOTHING
	`, characterID, passToken, string(body), characterID)
	if err != nil {
		return false, fmt.Errorf("save snapshot: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save snapshot: rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("save snapshot: commit: %w", err)
	}
	return n > 0, nil
}

// LatestSnapshot loads a character's most recent settled snapshot.
// Returns ok=false when the character has none.
func (s *Store) LatestSnapshot(ctx context.Context, characterID string) ([]varstore.VariableSnapshot, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT snapshot FROM pass_snapshots
		WHERE character_id = ?
		ORDER BY seq DESC, pass_token COLLATE BINARY DESC
		LIMIT 1
	`, characterID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("latest snapshot: %w", err)
	}

	var snap []varstore.VariableSnapshot
	if err := json.Unmarshal([]byte(body), &snap); err != nil {
		return nil, false, fmt.Errorf("latest snapshot: decode: %w", err)
	}
	return snap, true, nil
}

// SnapshotCount reports how many settled passes a character has recorded.
func (s *Store) SnapshotCount(ctx context.Context, characterID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pass_snapshots WHERE character_id = ?
	`, characterID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("snapshot count: %w", err)
	}
	return n, nil
}
