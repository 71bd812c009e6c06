package store

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"velora/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// Lines returns the session's cart in insertion order.
func (r *CartRepo) Lines(sessionID string) ([]domain.CartLine, error) {
	lines := []domain.CartLine{}
	err := r.db.Select(&lines, `
	  SELECT product_id AS productid, qty
	  FROM cart_items
	  WHERE session_id = ?
	  ORDER BY created_at, product_id
	`, sessionID)
	return lines, err
}

// Qty returns the current quantity for a product, zero when absent.
func (r *CartRepo) Qty(sessionID, productID string) (int, error) {
	var qty int
	err := r.db.Get(&qty, `SELECT qty FROM cart_items WHERE session_id = ? AND product_id = ?`, sessionID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return qty, err
}

// Set stores an absolute quantity; qty <= 0 removes the line entirely.
func (r *CartRepo) Set(sessionID, productID string, qty int) error {
	if qty <= 0 {
		return r.Delete(sessionID, productID)
	}
	_, err := r.db.Exec(`
	  INSERT INTO cart_items(session_id, product_id, qty, created_at, updated_at)
	  VALUES(?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	  ON CONFLICT(session_id, product_id) DO UPDATE
	  SET qty = excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, sessionID, productID, qty)
	return err
}

func (r *CartRepo) Delete(sessionID, productID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE session_id = ? AND product_id = ?`, sessionID, productID)
	return err
}

func (r *CartRepo) Clear(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE session_id = ?`, sessionID)
	return err
}
