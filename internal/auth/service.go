package auth

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/lumengate/lumengate/internal/stellar"
	"github.com/lumengate/lumengate/internal/users"
)

var noncePattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Config carries the signing material and lifetimes for the auth core.
// Access and refresh tokens are signed with distinct secrets so leaking one
// key class cannot forge the other; config loading enforces the distinction.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Service orchestrates the wallet authentication pipeline: nonce issuance,
// replay-safe signature verification and token minting. Each attempt is a
// strictly sequential pipeline; all shared state lives in the stores.
type Service struct {
	cfg      Config
	nonces   NonceStore
	sessions SessionStore
	users    users.Repository
}

// NewService creates the auth core with its storage collaborators.
func NewService(cfg Config, nonces NonceStore, sessions SessionStore, repo users.Repository) *Service {
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = AccessTokenTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = RefreshTokenTTL
	}
	return &Service{cfg: cfg, nonces: nonces, sessions: sessions, users: repo}
}

// GenerateNonce issues a fresh challenge for the wallet to sign. Only the
// public fields are returned.
func (s *Service) GenerateNonce(ctx context.Context, wallet string) (NonceChallenge, error) {
	if !stellar.IsValidAddress(wallet) {
		return NonceChallenge{}, validationError("Invalid Stellar wallet address.")
	}

	ch, err := s.nonces.Issue(ctx, wallet)
	if err != nil {
		return NonceChallenge{}, err
	}
	return NonceChallenge{Nonce: ch.Nonce, ExpiresAt: ch.ExpiresAt}, nil
}

// VerifySignature proves possession of the wallet's private key. The nonce
// is consumed before the signature check, so a failed attempt burns it and
// the same challenge can never be retried. This step only authenticates; it
// resolves no identity and issues no tokens.
func (s *Service) VerifySignature(ctx context.Context, wallet, nonce string, signature []byte) error {
	if !stellar.IsValidAddress(wallet) {
		return validationError("Invalid Stellar wallet address.")
	}
	if !noncePattern.MatchString(nonce) {
		return validationError("Nonce must be 64 lowercase hexadecimal characters.")
	}

	if _, err := s.nonces.Consume(ctx, wallet, nonce); err != nil {
		return err
	}

	// The signed message is the raw bytes of the nonce hex string, never a
	// hash of it.
	if !stellar.Verify(wallet, []byte(nonce), signature) {
		return ErrSignatureInvalid
	}
	return nil
}

// GenerateTokens resolves or creates the wallet's identity and mints the
// access/refresh pair, persisting a hashed session for the refresh token.
// A blocked account is rejected before any token is signed.
func (s *Service) GenerateTokens(ctx context.Context, wallet string) (TokenPair, error) {
	user, err := s.users.ResolveOrCreate(ctx, wallet)
	if err != nil {
		return TokenPair{}, infraError(CodeUserUpsertFailed, "Failed to create or update user record.", err)
	}
	if user.Status == users.StatusBlocked {
		return TokenPair{}, ErrUserBlocked
	}

	access, err := SignToken(wallet, TokenKindAccess, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return TokenPair{}, infraError(CodeTokenSignFailed, "Failed to issue tokens.", err)
	}
	refresh, err := SignToken(wallet, TokenKindRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, infraError(CodeTokenSignFailed, "Failed to issue tokens.", err)
	}

	now := time.Now().UTC()
	session := Session{
		UserID:           user.ID,
		RefreshTokenHash: HashRefreshToken(refresh),
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.cfg.RefreshTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTTL.Seconds()),
		TokenType:    TokenType,
	}, nil
}

// Refresh exchanges a live refresh token for a new access token. The token
// must verify against the refresh secret, its hashed session must still be
// live (which keeps refresh revocable server-side), and the account must not
// have been blocked since issuance.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	wallet, err := VerifyToken(refreshToken, TokenKindRefresh, s.cfg.RefreshSecret)
	if err != nil {
		return "", 0, err
	}

	if _, err := s.sessions.FindByTokenHash(ctx, HashRefreshToken(refreshToken)); err != nil {
		return "", 0, err
	}

	// A vanished user row means the token no longer maps to an account; any
	// other failure is a storage problem and must not read as a dead token.
	user, err := s.users.FindByWallet(ctx, wallet)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return "", 0, ErrTokenInvalid
		}
		return "", 0, infraError(CodeUserLookupFailed, "Failed to look up user record.", err)
	}
	if user.Status == users.StatusBlocked {
		return "", 0, ErrUserBlocked
	}

	access, err := SignToken(wallet, TokenKindAccess, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return "", 0, infraError(CodeTokenSignFailed, "Failed to issue tokens.", err)
	}
	return access, int64(s.cfg.AccessTTL.Seconds()), nil
}
