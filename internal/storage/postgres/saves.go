package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fable-engine/fable/internal/game/player"
)

// ErrSaveNotFound is returned when a save slot lookup yields no results.
var ErrSaveNotFound = errors.New("save not found")

// Save is one named save slot belonging to an account.
type Save struct {
	ID        int64
	AccountID int64
	Slot      string
	State     *player.State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveRepository persists player state snapshots as named save slots.
type SaveRepository struct {
	db *pgxpool.Pool
}

// NewSaveRepository creates a SaveRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSaveRepository(db *pgxpool.Pool) *SaveRepository {
	return &SaveRepository{db: db}
}

// Put writes the given state into the named slot, creating the slot if it
// does not exist and overwriting it if it does.
//
// Precondition: accountID must reference an existing account; slot must be
// non-empty; st must be non-nil.
// Postcondition: Returns the stored Save with ID and timestamps set.
func (r *SaveRepository) Put(ctx context.Context, accountID int64, slot string, st *player.State) (Save, error) {
	payload, err := json.Marshal(st)
	if err != nil {
		return Save{}, fmt.Errorf("encoding player state: %w", err)
	}

	var sv Save
	var raw []byte
	err = r.db.QueryRow(ctx, `
		INSERT INTO saves (account_id, slot, state)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, slot)
		DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()
		RETURNING id, account_id, slot, state, created_at, updated_at`,
		accountID, slot, payload,
	).Scan(&sv.ID, &sv.AccountID, &sv.Slot, &raw, &sv.CreatedAt, &sv.UpdatedAt)
	if err != nil {
		return Save{}, fmt.Errorf("upserting save: %w", err)
	}

	sv.State = &player.State{}
	if err := json.Unmarshal(raw, sv.State); err != nil {
		return Save{}, fmt.Errorf("decoding stored state: %w", err)
	}
	return sv, nil
}

// Get retrieves the save in the named slot for the given account.
//
// Precondition: accountID must be > 0; slot must be non-empty.
// Postcondition: Returns the Save or ErrSaveNotFound.
func (r *SaveRepository) Get(ctx context.Context, accountID int64, slot string) (Save, error) {
	var sv Save
	var raw []byte
	err := r.db.QueryRow(ctx, `
		SELECT id, account_id, slot, state, created_at, updated_at
		FROM saves WHERE account_id = $1 AND slot = $2`,
		accountID, slot,
	).Scan(&sv.ID, &sv.AccountID, &sv.Slot, &raw, &sv.CreatedAt, &sv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Save{}, ErrSaveNotFound
		}
		return Save{}, fmt.Errorf("querying save: %w", err)
	}

	sv.State = &player.State{}
	if err := json.Unmarshal(raw, sv.State); err != nil {
		return Save{}, fmt.Errorf("decoding stored state: %w", err)
	}
	return sv, nil
}

// List returns every save slot for the given account, oldest first.
// The State field is left nil; use Get to load a slot's contents.
//
// Precondition: accountID must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *SaveRepository) List(ctx context.Context, accountID int64) ([]Save, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, account_id, slot, created_at, updated_at
		FROM saves WHERE account_id = $1 ORDER BY created_at ASC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	defer rows.Close()

	saves := make([]Save, 0)
	for rows.Next() {
		var sv Save
		if err := rows.Scan(&sv.ID, &sv.AccountID, &sv.Slot, &sv.CreatedAt, &sv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning save row: %w", err)
		}
		saves = append(saves, sv)
	}
	return saves, rows.Err()
}

// Delete removes the save in the named slot.
//
// Postcondition: Returns nil on success, ErrSaveNotFound if no row matched.
func (r *SaveRepository) Delete(ctx context.Context, accountID int64, slot string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM saves WHERE account_id = $1 AND slot = $2`,
		accountID, slot,
	)
	if err != nil {
		return fmt.Errorf("deleting save: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSaveNotFound
	}
	return nil
}
