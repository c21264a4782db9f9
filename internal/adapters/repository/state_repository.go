package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/planwise/core/internal/ports"
)

// StateRepository persists one schedule State document per user as JSONB.
type StateRepository struct {
	db *sqlx.DB
}

// NewStateRepository creates a new state repository
func NewStateRepository(db *sqlx.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Load fetches the stored State document for a user. A missing row is
// reported as ports.ErrStateNotFound so callers can start from empty.
func (r *StateRepository) Load(ctx context.Context, userID uuid.UUID) (json.RawMessage, error) {
	var doc []byte
	query := `SELECT doc FROM schedule_states WHERE user_id = $1`

	err := r.db.GetContext(ctx, &doc, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state document: %w", err)
	}

	return json.RawMessage(doc), nil
}

// Save upserts the State document for a user.
func (r *StateRepository) Save(ctx context.Context, userID uuid.UUID, doc json.RawMessage) error {
	query := `
		INSERT INTO schedule_states (user_id, doc, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, userID, []byte(doc), time.Now()); err != nil {
		return fmt.Errorf("failed to save state document: %w", err)
	}

	return nil
}
