package auth

import "time"

// Challenge is a single-use login nonce issued to a wallet. A challenge is
// mutated exactly once, when its UsedAt is set during consumption; it is
// never reusable after that.
type Challenge struct {
	ID        string
	Wallet    string
	Nonce     string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// Session binds the one-way digest of a refresh token to a user. The raw
// refresh token is never persisted.
type Session struct {
	ID               string
	UserID           string
	RefreshTokenHash string
	CreatedAt        time.Time
	ExpiresAt        time.Time
}

// TokenPair is the credential set returned after a successful verification.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
}

// NonceChallenge is the public view of an issued challenge. Internal row
// identifiers are never exposed.
type NonceChallenge struct {
	Nonce     string
	ExpiresAt time.Time
}
