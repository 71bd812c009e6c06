package store

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"velora/internal/domain"
)

type SessionRepo struct{ db *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{db: db} }

type sessionRow struct {
	UserID    sql.NullString `db:"user_id"`
	Email     sql.NullString `db:"email"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	Role      sql.NullString `db:"role"`
}

// Bind caches the logged-in user on the session.
func (r *SessionRepo) Bind(sessionID string, u domain.User) error {
	_, err := r.db.Exec(`
	  INSERT INTO sessions(id, user_id, email, first_name, last_name, role, last_seen)
	  VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(id) DO UPDATE SET
	    user_id = excluded.user_id, email = excluded.email,
	    first_name = excluded.first_name, last_name = excluded.last_name,
	    role = excluded.role, last_seen = CURRENT_TIMESTAMP
	`, sessionID, u.MongoID, u.Email, u.FirstName, u.LastName, u.Role)
	return err
}

// User returns the cached user, or nil for anonymous sessions.
func (r *SessionRepo) User(sessionID string) (*domain.User, error) {
	var row sessionRow
	err := r.db.Get(&row, `SELECT user_id, email, first_name, last_name, role FROM sessions WHERE id = ?`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !row.UserID.Valid || row.UserID.String == "" {
		return nil, nil
	}
	return &domain.User{
		MongoID:   row.UserID.String,
		Email:     row.Email.String,
		FirstName: row.FirstName.String,
		LastName:  row.LastName.String,
		Role:      row.Role.String,
	}, nil
}

// Unbind drops the user from the session but keeps the session row (the
// anonymous cart survives logout).
func (r *SessionRepo) Unbind(sessionID string) error {
	_, err := r.db.Exec(`
	  UPDATE sessions
	  SET user_id = NULL, email = NULL, first_name = NULL, last_name = NULL, role = NULL,
	      last_seen = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, sessionID)
	return err
}
