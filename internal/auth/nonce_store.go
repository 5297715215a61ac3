package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NonceTTL is how long an issued challenge stays consumable.
const NonceTTL = 5 * time.Minute

const nonceBytes = 32

// NonceStore issues and consumes one-time login challenges.
type NonceStore interface {
	// Issue mints a fresh 64-hex-char challenge for wallet and persists it
	// with a NonceTTL expiry.
	Issue(ctx context.Context, wallet string) (Challenge, error)

	// Consume atomically marks the unused (wallet, nonce) challenge as used.
	// At most one concurrent caller succeeds per pair. A missing or
	// already-used challenge yields ErrNonceNotFound; a challenge past its
	// expiry yields ErrNonceExpired and stays burnt.
	Consume(ctx context.Context, wallet, nonce string) (Challenge, error)
}

// PostgresNonceStore persists challenges in the nonces table.
type PostgresNonceStore struct {
	db *pgxpool.Pool
}

// NewPostgresNonceStore builds a Postgres-backed nonce store.
func NewPostgresNonceStore(db *pgxpool.Pool) *PostgresNonceStore {
	return &PostgresNonceStore{db: db}
}

// Issue generates a challenge and durably commits it before returning.
func (s *PostgresNonceStore) Issue(ctx context.Context, wallet string) (Challenge, error) {
	nonce, err := generateNonce()
	if err != nil {
		return Challenge{}, infraError(CodeNonceInsertFailed, "Failed to generate nonce. Please try again.", err)
	}

	now := time.Now().UTC()
	ch := Challenge{
		ID:        uuid.NewString(),
		Wallet:    wallet,
		Nonce:     nonce,
		CreatedAt: now,
		ExpiresAt: now.Add(NonceTTL),
	}

	_, err = s.db.Exec(ctx, `INSERT INTO nonces (id, wallet_address, nonce, created_at, expires_at)
        VALUES ($1, $2, $3, $4, $5)`, ch.ID, ch.Wallet, ch.Nonce, ch.CreatedAt, ch.ExpiresAt)
	if err != nil {
		return Challenge{}, infraError(CodeNonceInsertFailed, "Failed to generate nonce. Please try again.", err)
	}

	return ch, nil
}

// Consume runs the check-unused-and-mark-used step as a single conditional
// UPDATE so the row-level lock guarantees at-most-once consumption without a
// transaction.
func (s *PostgresNonceStore) Consume(ctx context.Context, wallet, nonce string) (Challenge, error) {
	now := time.Now().UTC()

	row := s.db.QueryRow(ctx, `UPDATE nonces SET used_at = $3
        WHERE wallet_address = $1 AND nonce = $2 AND used_at IS NULL
        RETURNING id, created_at, expires_at`, wallet, nonce, now)

	ch := Challenge{Wallet: wallet, Nonce: nonce, UsedAt: &now}
	if err := row.Scan(&ch.ID, &ch.CreatedAt, &ch.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Challenge{}, ErrNonceNotFound
		}
		return Challenge{}, infraError(CodeNonceConsumeFailed, "Failed to verify nonce. Please try again.", err)
	}

	if now.After(ch.ExpiresAt) {
		return Challenge{}, ErrNonceExpired
	}

	return ch, nil
}

// generateNonce returns 32 cryptographically random bytes as 64 lowercase
// hex characters.
func generateNonce() (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
