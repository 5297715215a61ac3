package users

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the profile endpoints for the authenticated wallet.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type updateProfileRequest struct {
	Name        *string `json:"name"`
	Avatar      *string `json:"avatar"`
	Preferences *struct {
		Notifications *bool   `json:"notifications"`
		Language      *string `json:"language"`
		Theme         *string `json:"theme"`
	} `json:"preferences"`
}

// Me returns the profile of the authenticated wallet.
func (h *Handler) Me(c *fiber.Ctx) error {
	wallet, _ := c.Locals("wallet").(string)
	if wallet == "" {
		return respondError(c, http.StatusUnauthorized, "AUTH_TOKEN_INVALID", "Missing authenticated wallet.")
	}

	profile, err := h.svc.Profile(c.UserContext(), wallet)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respondError(c, http.StatusNotFound, "USERS_NOT_FOUND", "No profile exists for this wallet yet.")
		}
		return respondError(c, http.StatusInternalServerError, "DATABASE_USER_LOOKUP_FAILED", "Failed to load user profile.")
	}
	return c.Status(http.StatusOK).JSON(profile)
}

// UpdateMe applies a partial profile update; only provided fields change.
func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	wallet, _ := c.Locals("wallet").(string)
	if wallet == "" {
		return respondError(c, http.StatusUnauthorized, "AUTH_TOKEN_INVALID", "Missing authenticated wallet.")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "USERS_INVALID_BODY", "Invalid request body.")
	}

	update := ProfileUpdate{Name: req.Name, Avatar: req.Avatar}
	if req.Preferences != nil {
		update.Preferences = &PreferencesUpdate{
			Notifications: req.Preferences.Notifications,
			Language:      req.Preferences.Language,
			Theme:         req.Preferences.Theme,
		}
	}

	profile, err := h.svc.UpdateProfile(c.UserContext(), wallet, update)
	if err != nil {
		if errors.Is(err, ErrAvatarScheme) {
			return respondError(c, http.StatusBadRequest, "USERS_AVATAR_INVALID_SCHEME", "Avatar URL must use HTTPS.")
		}
		return respondError(c, http.StatusInternalServerError, "DATABASE_USER_UPDATE_FAILED", "Failed to update user profile.")
	}
	return c.Status(http.StatusOK).JSON(profile)
}

func respondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"code": code, "message": message})
}
