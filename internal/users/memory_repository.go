package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.Mutex
	users map[string]User
	prefs map[string]Preferences
}

// NewMemoryRepository builds an in-memory user store for testing and
// dev-mode runs without a database.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		users: make(map[string]User),
		prefs: make(map[string]Preferences),
	}
}

func (r *memoryRepository) ResolveOrCreate(_ context.Context, wallet string) (User, error) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[wallet]
	if !ok {
		user = User{
			ID:        uuid.NewString(),
			Wallet:    wallet,
			Status:    StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	user.LastSeenAt = now
	r.users[wallet] = user
	return user, nil
}

func (r *memoryRepository) FindByWallet(_ context.Context, wallet string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[wallet]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) UpdateProfile(_ context.Context, wallet string, update ProfileUpdate) (User, error) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[wallet]
	if !ok {
		user = User{
			ID:         uuid.NewString(),
			Wallet:     wallet,
			Status:     StatusActive,
			CreatedAt:  now,
			LastSeenAt: now,
		}
	}
	if update.Name != nil {
		user.DisplayName = *update.Name
	}
	if update.Avatar != nil {
		user.AvatarURL = *update.Avatar
	}
	user.UpdatedAt = now
	r.users[wallet] = user
	return user, nil
}

func (r *memoryRepository) Preferences(_ context.Context, userID string) (Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefs, ok := r.prefs[userID]
	if !ok {
		return DefaultPreferences(), nil
	}
	return prefs, nil
}

func (r *memoryRepository) UpdatePreferences(_ context.Context, userID string, update PreferencesUpdate) (Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefs, ok := r.prefs[userID]
	if !ok {
		prefs = DefaultPreferences()
	}
	if update.Notifications != nil {
		prefs.Notifications = *update.Notifications
	}
	if update.Language != nil {
		prefs.Language = *update.Language
	}
	if update.Theme != nil {
		prefs.Theme = *update.Theme
	}
	r.prefs[userID] = prefs
	return prefs, nil
}

// SetStatus overrides an account status. Intended for tests and admin
// tooling; blocked accounts are rejected during token issuance.
func (r *memoryRepository) SetStatus(wallet, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[wallet]; ok {
		user.Status = status
		r.users[wallet] = user
		return
	}
	now := time.Now().UTC()
	r.users[wallet] = User{
		ID:         uuid.NewString(),
		Wallet:     wallet,
		Status:     status,
		CreatedAt:  now,
		LastSeenAt: now,
		UpdatedAt:  now,
	}
}
