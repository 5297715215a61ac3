package users

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// ErrAvatarScheme is returned when an avatar URL does not use HTTPS.
var ErrAvatarScheme = errors.New("avatar URL must use HTTPS")

var (
	htmlBlockPattern = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	htmlTagPattern   = regexp.MustCompile(`<[^>]*>`)
)

// Service manages identity profiles.
type Service struct {
	repo Repository
}

// NewService creates a new users service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Profile returns the stored profile for a wallet.
func (s *Service) Profile(ctx context.Context, wallet string) (Profile, error) {
	user, err := s.repo.FindByWallet(ctx, wallet)
	if err != nil {
		return Profile{}, err
	}
	prefs, err := s.repo.Preferences(ctx, user.ID)
	if err != nil {
		return Profile{}, err
	}
	return toProfile(user, prefs), nil
}

// UpdateProfile applies a partial profile update for the wallet. Display
// names are stripped of HTML so markup can never be stored, and avatar URLs
// must be HTTPS even when the transport-level validation was bypassed.
func (s *Service) UpdateProfile(ctx context.Context, wallet string, update ProfileUpdate) (Profile, error) {
	if update.Avatar != nil && !strings.HasPrefix(*update.Avatar, "https://") {
		return Profile{}, ErrAvatarScheme
	}

	if update.Name != nil {
		cleaned := stripHTML(*update.Name)
		update.Name = &cleaned
	}

	user, err := s.repo.UpdateProfile(ctx, wallet, update)
	if err != nil {
		return Profile{}, err
	}

	var prefs Preferences
	if update.Preferences != nil {
		prefs, err = s.repo.UpdatePreferences(ctx, user.ID, *update.Preferences)
	} else {
		prefs, err = s.repo.Preferences(ctx, user.ID)
	}
	if err != nil {
		return Profile{}, err
	}

	return toProfile(user, prefs), nil
}

// stripHTML removes script/style blocks with their content, then any
// remaining tags.
func stripHTML(s string) string {
	s = htmlBlockPattern.ReplaceAllString(s, "")
	s = htmlTagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func toProfile(user User, prefs Preferences) Profile {
	return Profile{
		Wallet:      user.Wallet,
		Name:        user.DisplayName,
		Avatar:      user.AvatarURL,
		Preferences: prefs,
		UpdatedAt:   user.UpdatedAt,
	}
}
