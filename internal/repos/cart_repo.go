package repos

import (
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"steeze/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type cartItemRow struct {
	ProductID   string `db:"product_id"`
	ProductJSON string `db:"product_json"`
	Qty         int    `db:"qty"`
}

// Items returns the cart in the order lines were first added.
func (r *CartRepo) Items(sid string) ([]domain.CartEntry, error) {
	var rows []cartItemRow
	if err := r.db.Select(&rows, `
		SELECT product_id, product_json, qty
		FROM cart_items
		WHERE session_id = ?
		ORDER BY created_at, rowid
	`, sid); err != nil {
		return nil, err
	}
	out := make([]domain.CartEntry, 0, len(rows))
	for _, row := range rows {
		var p domain.Product
		if err := json.Unmarshal([]byte(row.ProductJSON), &p); err != nil {
			// A corrupt snapshot still identifies the line.
			p = domain.Product{ID: domain.ID(row.ProductID)}
		}
		out = append(out, domain.CartEntry{Product: p, Quantity: row.Qty})
	}
	return out, nil
}

// Add inserts a line or increments an existing one, refreshing the snapshot.
func (r *CartRepo) Add(sid string, p domain.Product, qty int) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		INSERT INTO cart_items(session_id, product_id, product_json, qty, created_at)
		VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id, product_id) DO UPDATE
		SET qty = cart_items.qty + excluded.qty,
		    product_json = excluded.product_json,
		    updated_at = CURRENT_TIMESTAMP
	`, sid, p.ID.String(), string(b), qty)
	return err
}

// SetQty overwrites a line's quantity; the caller handles qty <= 0.
func (r *CartRepo) SetQty(sid, productID string, qty int) error {
	_, err := r.db.Exec(`
		UPDATE cart_items SET qty = ?, updated_at = CURRENT_TIMESTAMP
		WHERE session_id = ? AND product_id = ?
	`, qty, sid, productID)
	return err
}

func (r *CartRepo) Remove(sid, productID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE session_id = ? AND product_id = ?`, sid, productID)
	return err
}

func (r *CartRepo) Clear(sid string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE session_id = ?`, sid)
	return err
}
