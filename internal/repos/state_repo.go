package repos

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"
)

// StateRepo keeps small JSON documents per session.
type StateRepo struct{ db *sqlx.DB }

func NewStateRepo(db *sqlx.DB) *StateRepo { return &StateRepo{db: db} }

// Load decodes key into out and reports whether it existed.
func (r *StateRepo) Load(sid, key string, out any) (bool, error) {
	var raw string
	err := r.db.Get(&raw, `SELECT value_json FROM session_state WHERE session_id = ? AND key = ?`, sid, key)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *StateRepo) Save(sid, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		INSERT INTO session_state(session_id, key, value_json, updated_at)
		VALUES(?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id, key) DO UPDATE
		SET value_json = excluded.value_json, updated_at = CURRENT_TIMESTAMP
	`, sid, key, string(b))
	return err
}

func (r *StateRepo) Delete(sid, key string) error {
	_, err := r.db.Exec(`DELETE FROM session_state WHERE session_id = ? AND key = ?`, sid, key)
	return err
}
