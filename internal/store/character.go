package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/entity"
)

// ErrNotFound is returned when a requested character does not exist.
var ErrNotFound = errors.New("character not found")

// SaveCharacter upserts a character record.
// Inserts on a new id; updates in place otherwise, bumping the logical
// updated_seq counter. Saving an identical record is safe and still
// bumps the counter (the save happened, even if nothing changed).
func (s *Store) SaveCharacter(ctx context.Context, ch *entity.Character) error {
	feats, err := json.Marshal(orEmptySlice(ch.Feats))
	if err != nil {
		return fmt.Errorf("save character: marshal feats: %w", err)
	}
	inventory, err := json.Marshal(orEmptySlice(ch.Inventory))
	if err != nil {
		return fmt.Errorf("save character: marshal inventory: %w", err)
	}
	details, err := json.Marshal(ch.Details)
	if err != nil {
		return fmt.Errorf("save character: marshal details: %w", err)
	}
	opData, err := json.Marshal(ch.OperationData)
	if err != nil {
		return fmt.Errorf("save character: marshal operation data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO characters
		(id, name, level, class_id, ancestry_id, background_id, heritage_id, archetype_id,
		 feats, inventory, details, operation_data, hp_current, updated_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			level = excluded.level,
			class_id = excluded.class_id,
			ancestry_id = excluded.ancestry_id,
			background_id = excluded.background_id,
			heritage_id = excluded.heritage_id,
			archetype_id = excluded.archetype_id,
			feats = excluded.feats,
			inventory = excluded.inventory,
			details = excluded.details,
			operation_data = excluded.operation_data,
			hp_current = excluded.hp_current,
			updated_seq = characters.updated_seq + 1
	`,
		ch.ID, ch.Name, ch.Level, ch.ClassID, ch.AncestryID, ch.BackgroundID,
		ch.HeritageID, ch.ArchetypeID,
		string(feats), string(inventory), string(details), string(opData),
		ch.HPCurrent,
	)
	if err != nil {
		return fmt.Errorf("save character: %w", err)
	}
	return nil
}

// GetCharacter loads one character by id.
// Returns ErrNotFound when absent.
func (s *Store) GetCharacter(ctx context.Context, id string) (*entity.Character, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, level, class_id, ancestry_id, background_id, heritage_id,
		       archetype_id, feats, inventory, details, operation_data, hp_current
		FROM characters
		WHERE id = ?
	`, id)

	ch, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get character %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get character %q: %w", id, err)
	}
	return ch, nil
}

// ListCharacters returns all characters ordered deterministically by
// name, then id with binary collation. Returns an empty slice, not nil,
// when the store is empty.
func (s *Store) ListCharacters(ctx context.Context) ([]*entity.Character, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, level, class_id, ancestry_id, background_id, heritage_id,
		       archetype_id, feats, inventory, details, operation_data, hp_current
		FROM characters
		ORDER BY name ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	out := []*entity.Character{}
	for rows.Next() {
		ch, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("list characters: %w", err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate characters: %w", err)
	}
	return out, nil
}

// DeleteCharacter removes a character and, via cascade, its snapshots.
// Deleting an absent id is a no-op.
func (s *Store) DeleteCharacter(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete character %q: %w", id, err)
	}
	return nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row scanner) (*entity.Character, error) {
	var ch entity.Character
	var feats, inventory, details, opData string

	err := row.Scan(
		&ch.ID, &ch.Name, &ch.Level, &ch.ClassID, &ch.AncestryID,
		&ch.BackgroundID, &ch.HeritageID, &ch.ArchetypeID,
		&feats, &inventory, &details, &opData, &ch.HPCurrent,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(feats), &ch.Feats); err != nil {
		return nil, fmt.Errorf("decode feats: %w", err)
	}
	if err := json.Unmarshal([]byte(inventory), &ch.Inventory); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	if err := json.Unmarshal([]byte(details), &ch.Details); err != nil {
		return nil, fmt.Errorf("decode details: %w", err)
	}
	if err := json.Unmarshal([]byte(opData), &ch.OperationData); err != nil {
		return nil, fmt.Errorf("decode operation data: %w", err)
	}
	return &ch, nil
}

// orEmptySlice keeps persisted JSON arrays as [] rather than null.
func orEmptySlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
