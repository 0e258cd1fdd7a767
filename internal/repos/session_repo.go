package repos

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"steeze/internal/domain"
)

type SessionRepo struct{ db *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{db: db} }

type SessionRow struct {
	ID           string         `db:"id"`
	CustomerJSON sql.NullString `db:"customer_json"`
	IsCustomer   bool           `db:"is_customer"`
	IsAdmin      bool           `db:"is_admin"`
	AdminTab     string         `db:"admin_tab"`
	Currency     string         `db:"currency"`
}

// Customer decodes the stored profile snapshot; nil when logged out.
func (r SessionRow) Customer() *domain.Customer {
	if !r.IsCustomer || !r.CustomerJSON.Valid || r.CustomerJSON.String == "" {
		return nil
	}
	var c domain.Customer
	if err := json.Unmarshal([]byte(r.CustomerJSON.String), &c); err != nil {
		return nil
	}
	return &c
}

func (r *SessionRepo) Ensure(sid string) error {
	_, err := r.db.Exec(`
		INSERT INTO sessions(id, last_seen) VALUES(?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET last_seen = CURRENT_TIMESTAMP
	`, sid)
	return err
}

func (r *SessionRepo) Get(sid string) (SessionRow, error) {
	var row SessionRow
	err := r.db.Get(&row, `
		SELECT id, customer_json, is_customer, is_admin, admin_tab, currency
		FROM sessions WHERE id = ?
	`, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRow{ID: sid}, nil
	}
	return row, err
}

// SetCustomer stores the profile snapshot; nil logs the customer out.
func (r *SessionRepo) SetCustomer(sid string, c *domain.Customer) error {
	if err := r.Ensure(sid); err != nil {
		return err
	}
	if c == nil {
		_, err := r.db.Exec(`UPDATE sessions SET customer_json = NULL, is_customer = 0 WHERE id = ?`, sid)
		return err
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`UPDATE sessions SET customer_json = ?, is_customer = 1 WHERE id = ?`, string(b), sid)
	return err
}

func (r *SessionRepo) SetAdmin(sid string, admin bool) error {
	if err := r.Ensure(sid); err != nil {
		return err
	}
	_, err := r.db.Exec(`UPDATE sessions SET is_admin = ? WHERE id = ?`, admin, sid)
	return err
}

func (r *SessionRepo) SetAdminTab(sid, tab string) error {
	if err := r.Ensure(sid); err != nil {
		return err
	}
	_, err := r.db.Exec(`UPDATE sessions SET admin_tab = ? WHERE id = ?`, tab, sid)
	return err
}

func (r *SessionRepo) SetCurrency(sid, code string) error {
	if err := r.Ensure(sid); err != nil {
		return err
	}
	_, err := r.db.Exec(`UPDATE sessions SET currency = ? WHERE id = ?`, code, sid)
	return err
}
