package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/milight-hub/internal/bulb"
)

// Repository stores state snapshots keyed by bulb.
//
// Implementations must be thread-safe.
type Repository interface {
	// Save inserts or replaces the snapshot for key.
	Save(ctx context.Context, key bulb.Key, snapshot []byte) error

	// Load returns the snapshot for key, or ErrNotFound.
	Load(ctx context.Context, key bulb.Key) ([]byte, error)

	// LoadAll returns every stored snapshot.
	LoadAll(ctx context.Context) (map[bulb.Key][]byte, error)

	// Delete removes the snapshot for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key bulb.Key) error
}

// SQLiteRepository implements Repository on the bulb_states table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over an open, migrated database.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteRepository: Repository instance ready for use
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func validateKey(key bulb.Key) error {
	if key.DeviceType == "" {
		return fmt.Errorf("%w: device type is required", ErrInvalidKey)
	}
	return nil
}

// Save inserts or replaces the snapshot for key.
func (r *SQLiteRepository) Save(ctx context.Context, key bulb.Key, snapshot []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bulb_states (device_type, device_id, group_id, state, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (device_type, device_id, group_id)
		 DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		key.DeviceType,
		int64(key.DeviceID),
		int64(key.GroupID),
		string(snapshot),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving bulb state: %w", err)
	}
	return nil
}

// Load returns the snapshot for key.
func (r *SQLiteRepository) Load(ctx context.Context, key bulb.Key) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var snapshot string
	err := r.db.QueryRowContext(ctx,
		`SELECT state FROM bulb_states
		 WHERE device_type = ? AND device_id = ? AND group_id = ?`,
		key.DeviceType,
		int64(key.DeviceID),
		int64(key.GroupID),
	).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("loading bulb state: %w", err)
	}
	return []byte(snapshot), nil
}

// LoadAll returns every stored snapshot.
func (r *SQLiteRepository) LoadAll(ctx context.Context) (map[bulb.Key][]byte, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT device_type, device_id, group_id, state FROM bulb_states`)
	if err != nil {
		return nil, fmt.Errorf("querying bulb states: %w", err)
	}
	defer rows.Close()

	out := make(map[bulb.Key][]byte)
	for rows.Next() {
		var (
			deviceType string
			deviceID   int64
			groupID    int64
			snapshot   string
		)
		if err := rows.Scan(&deviceType, &deviceID, &groupID, &snapshot); err != nil {
			return nil, fmt.Errorf("scanning bulb state: %w", err)
		}
		key := bulb.Key{DeviceType: deviceType, DeviceID: uint16(deviceID), GroupID: uint8(groupID)}
		out[key] = []byte(snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bulb states: %w", err)
	}
	return out, nil
}

// Delete removes the snapshot for key.
func (r *SQLiteRepository) Delete(ctx context.Context, key bulb.Key) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM bulb_states WHERE device_type = ? AND device_id = ? AND group_id = ?`,
		key.DeviceType,
		int64(key.DeviceID),
		int64(key.GroupID),
	)
	if err != nil {
		return fmt.Errorf("deleting bulb state: %w", err)
	}
	return nil
}
