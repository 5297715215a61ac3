package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionStore persists refresh-token sessions. Rows are created once per
// successful verification and never updated in place.
type SessionStore interface {
	Create(ctx context.Context, session Session) error

	// FindByTokenHash returns the live (unexpired) session for a refresh
	// token digest. A missing or expired session yields ErrTokenInvalid.
	FindByTokenHash(ctx context.Context, hash string) (Session, error)
}

// HashRefreshToken returns the hex SHA-256 digest that stands in for the raw
// refresh token at rest. Only this digest ever reaches a SessionStore.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// PostgresSessionStore persists sessions in the sessions table.
type PostgresSessionStore struct {
	db *pgxpool.Pool
}

// NewPostgresSessionStore builds a Postgres-backed session store.
func NewPostgresSessionStore(db *pgxpool.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

func (s *PostgresSessionStore) Create(ctx context.Context, session Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, `INSERT INTO sessions (id, user_id, refresh_token_hash, created_at, expires_at)
        VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.UserID, session.RefreshTokenHash, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return infraError(CodeSessionCreateFailed, "Failed to create session.", err)
	}
	return nil
}

func (s *PostgresSessionStore) FindByTokenHash(ctx context.Context, hash string) (Session, error) {
	row := s.db.QueryRow(ctx, `SELECT id, user_id, refresh_token_hash, created_at, expires_at
        FROM sessions
        WHERE refresh_token_hash = $1 AND expires_at > $2
        ORDER BY created_at DESC LIMIT 1`, hash, time.Now().UTC())

	var session Session
	if err := row.Scan(&session.ID, &session.UserID, &session.RefreshTokenHash, &session.CreatedAt, &session.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrTokenInvalid
		}
		return Session{}, infraError(CodeSessionLookupFailed, "Failed to look up session.", err)
	}
	return session, nil
}
