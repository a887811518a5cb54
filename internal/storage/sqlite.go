package storage

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const schema = `
CREATE TABLE IF NOT EXISTS reddit_tokens (
	team_id    TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	token_data BLOB NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (team_id, user_id)
);
`

// SQLiteTokenStore implements TokenStore on SQLite. Token payloads are
// encrypted with AES-256-GCM before they touch disk, so a leaked database
// file does not leak credentials.
type SQLiteTokenStore struct {
	db   *sql.DB
	aead cipher.AEAD
}

var _ TokenStore = (*SQLiteTokenStore)(nil)

// NewSQLiteTokenStore opens (creating if needed) the token database at
// path. encryptionKey must be 64 hex characters (a 32-byte AES-256 key).
func NewSQLiteTokenStore(path, encryptionKey string) (*SQLiteTokenStore, error) {
	key, err := hex.DecodeString(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes (64 hex characters), got %d bytes", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteTokenStore{db: db, aead: aead}, nil
}

// SaveToken stores or replaces the token for an identity.
func (s *SQLiteTokenStore) SaveToken(ctx context.Context, teamID, userID string, token *TokenData) error {
	sealed, err := s.encrypt(token)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reddit_tokens (team_id, user_id, token_data)
		VALUES (?, ?, ?)
		ON CONFLICT (team_id, user_id)
		DO UPDATE SET token_data = excluded.token_data, updated_at = CURRENT_TIMESTAMP`,
		teamID, userID, sealed)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// GetToken returns the stored token, or (nil, nil) when none exists.
func (s *SQLiteTokenStore) GetToken(ctx context.Context, teamID, userID string) (*TokenData, error) {
	var sealed []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT token_data FROM reddit_tokens WHERE team_id = ? AND user_id = ?`,
		teamID, userID).Scan(&sealed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	return s.decrypt(sealed)
}

// DeleteToken removes the token for an identity.
func (s *SQLiteTokenStore) DeleteToken(ctx context.Context, teamID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM reddit_tokens WHERE team_id = ? AND user_id = ?`, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteTokenStore) Close() error {
	return s.db.Close()
}

// encrypt seals the token JSON as nonce || ciphertext.
func (s *SQLiteTokenStore) encrypt(token *TokenData) ([]byte, error) {
	plaintext, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token: %w", err)
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *SQLiteTokenStore) decrypt(sealed []byte) (*TokenData, error) {
	if len(sealed) < s.aead.NonceSize() {
		return nil, fmt.Errorf("stored token is truncated")
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]

	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt token: %w", err)
	}

	var token TokenData
	if err := json.Unmarshal(plaintext, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}
