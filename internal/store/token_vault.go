package store

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/pbkdf2"
)

var ErrNoToken = errors.New("no token for session")

// TokenVault seals backend bearer tokens at rest. The SQLite file sits next
// to the binary; a leaked copy must not hand out live sessions.
type TokenVault struct {
	db  *sqlx.DB
	key [32]byte
}

const vaultSalt = "velora-token-vault"

func NewTokenVault(db *sqlx.DB, secret string) *TokenVault {
	v := &TokenVault{db: db}
	derived := pbkdf2.Key([]byte(secret), []byte(vaultSalt), 4096, 32, sha256.New)
	copy(v.key[:], derived)
	return v
}

func (v *TokenVault) Save(sessionID, token string) error {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return err
	}
	sealed := secretbox.Seal(nil, []byte(token), &nonce, &v.key)
	_, err := v.db.Exec(`
	  INSERT INTO tokens(session_id, nonce, ciphertext, updated_at)
	  VALUES(?, ?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(session_id) DO UPDATE SET
	    nonce = excluded.nonce, ciphertext = excluded.ciphertext, updated_at = CURRENT_TIMESTAMP
	`, sessionID, nonce[:], sealed)
	return err
}

func (v *TokenVault) Load(sessionID string) (string, error) {
	var row struct {
		Nonce      []byte `db:"nonce"`
		Ciphertext []byte `db:"ciphertext"`
	}
	err := v.db.Get(&row, `SELECT nonce, ciphertext FROM tokens WHERE session_id = ?`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}
	if len(row.Nonce) != 24 {
		return "", ErrNoToken
	}
	var nonce [24]byte
	copy(nonce[:], row.Nonce)
	plain, ok := secretbox.Open(nil, row.Ciphertext, &nonce, &v.key)
	if !ok {
		// Key rotated or row tampered with; treat as logged out.
		return "", ErrNoToken
	}
	return string(plain), nil
}

func (v *TokenVault) Delete(sessionID string) error {
	_, err := v.db.Exec(`DELETE FROM tokens WHERE session_id = ?`, sessionID)
	return err
}
