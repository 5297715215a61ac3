package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no user exists for the given wallet.
var ErrNotFound = errors.New("user not found")

// Repository persists wallet identities and their profiles.
type Repository interface {
	// ResolveOrCreate upserts the identity for wallet: the first call creates
	// the account, every call refreshes last_seen_at. The surrogate ID and
	// status are owned by the repository.
	ResolveOrCreate(ctx context.Context, wallet string) (User, error)

	FindByWallet(ctx context.Context, wallet string) (User, error)

	// UpdateProfile upserts the profile fields present in update and returns
	// the resulting user row.
	UpdateProfile(ctx context.Context, wallet string, update ProfileUpdate) (User, error)

	// Preferences returns the stored preferences for userID, or the defaults
	// when none exist yet.
	Preferences(ctx context.Context, userID string) (Preferences, error)

	UpdatePreferences(ctx context.Context, userID string, update PreferencesUpdate) (Preferences, error)
}

// PostgresRepository implements Repository on the users and user_preferences
// tables.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed users repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ResolveOrCreate(ctx context.Context, wallet string) (User, error) {
	now := time.Now().UTC()
	row := r.db.QueryRow(ctx, `INSERT INTO users (id, wallet_address, status, created_at, last_seen_at, updated_at)
        VALUES ($1, $2, $3, $4, $4, $4)
        ON CONFLICT (wallet_address) DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at
        RETURNING id, wallet_address, status, COALESCE(display_name, ''), COALESCE(avatar_url, ''),
                  created_at, last_seen_at, updated_at`,
		uuid.NewString(), wallet, StatusActive, now)
	return scanUser(row)
}

func (r *PostgresRepository) FindByWallet(ctx context.Context, wallet string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, wallet_address, status, COALESCE(display_name, ''), COALESCE(avatar_url, ''),
                  created_at, last_seen_at, updated_at
        FROM users WHERE wallet_address = $1`, wallet)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, wallet string, update ProfileUpdate) (User, error) {
	now := time.Now().UTC()
	// Upsert so a first profile edit before a full login flow still creates
	// the row. Nil fields fall through to the stored values.
	row := r.db.QueryRow(ctx, `INSERT INTO users (id, wallet_address, status, display_name, avatar_url, created_at, last_seen_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $6, $6)
        ON CONFLICT (wallet_address) DO UPDATE SET
            display_name = COALESCE($4, users.display_name),
            avatar_url   = COALESCE($5, users.avatar_url),
            updated_at   = $6
        RETURNING id, wallet_address, status, COALESCE(display_name, ''), COALESCE(avatar_url, ''),
                  created_at, last_seen_at, updated_at`,
		uuid.NewString(), wallet, StatusActive, update.Name, update.Avatar, now)
	return scanUser(row)
}

func (r *PostgresRepository) Preferences(ctx context.Context, userID string) (Preferences, error) {
	row := r.db.QueryRow(ctx, `SELECT notifications_enabled, language, theme
        FROM user_preferences WHERE user_id = $1`, userID)

	var prefs Preferences
	if err := row.Scan(&prefs.Notifications, &prefs.Language, &prefs.Theme); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DefaultPreferences(), nil
		}
		return Preferences{}, err
	}
	return prefs, nil
}

func (r *PostgresRepository) UpdatePreferences(ctx context.Context, userID string, update PreferencesUpdate) (Preferences, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO user_preferences (user_id, notifications_enabled, language, theme)
        VALUES ($1, COALESCE($2, true), COALESCE($3, 'en'), COALESCE($4, 'system'))
        ON CONFLICT (user_id) DO UPDATE SET
            notifications_enabled = COALESCE($2, user_preferences.notifications_enabled),
            language              = COALESCE($3, user_preferences.language),
            theme                 = COALESCE($4, user_preferences.theme)
        RETURNING notifications_enabled, language, theme`,
		userID, update.Notifications, update.Language, update.Theme)

	var prefs Preferences
	if err := row.Scan(&prefs.Notifications, &prefs.Language, &prefs.Theme); err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Wallet, &user.Status, &user.DisplayName, &user.AvatarURL,
		&user.CreatedAt, &user.LastSeenAt, &user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.LastSeenAt = user.LastSeenAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, nil
}
