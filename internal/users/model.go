package users

import "time"

// Account statuses. Blocked accounts never receive tokens.
const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// User is a wallet-keyed identity. The wallet address is the stable external
// key; the surrogate ID is minted by the repository on first sight and never
// mutated afterwards.
type User struct {
	ID          string
	Wallet      string
	Status      string
	DisplayName string
	AvatarURL   string
	CreatedAt   time.Time
	LastSeenAt  time.Time
	UpdatedAt   time.Time
}

// Preferences holds per-user UI settings.
type Preferences struct {
	Notifications bool   `json:"notifications"`
	Language      string `json:"language"`
	Theme         string `json:"theme"`
}

// DefaultPreferences is returned when no preferences row exists yet.
func DefaultPreferences() Preferences {
	return Preferences{Notifications: true, Language: "en", Theme: "system"}
}

// ProfileUpdate carries optional profile fields; nil means leave unchanged.
type ProfileUpdate struct {
	Name        *string
	Avatar      *string
	Preferences *PreferencesUpdate
}

// PreferencesUpdate carries optional preference fields; nil means unchanged.
type PreferencesUpdate struct {
	Notifications *bool
	Language      *string
	Theme         *string
}

// Profile is the client-facing view of a user.
type Profile struct {
	Wallet      string      `json:"wallet"`
	Name        string      `json:"name"`
	Avatar      string      `json:"avatar"`
	Preferences Preferences `json:"preferences"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
