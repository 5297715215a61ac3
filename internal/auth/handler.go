package auth

import (
	"encoding/base64"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
)

var walletPattern = regexp.MustCompile(`^G[A-Z2-7]{55}$`)

// Handler exposes the wallet authentication endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type nonceRequest struct {
	Wallet string `json:"wallet"`
}

// Nonce issues a signing challenge for the wallet.
func (h *Handler) Nonce(c *fiber.Ctx) error {
	var req nonceRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, validationError("Invalid request body."))
	}
	if !walletPattern.MatchString(req.Wallet) {
		return respondError(c, validationError("Invalid Stellar wallet address. Must start with G and have 55 base32 characters [A-Z2-7]."))
	}

	ch, err := h.svc.GenerateNonce(c.UserContext(), req.Wallet)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"nonce":     ch.Nonce,
		"expiresAt": ch.ExpiresAt.UTC().Format(time.RFC3339Nano),
	})
}

type verifyRequest struct {
	Wallet    string `json:"wallet"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

// Verify checks the signed challenge and returns a token pair. Request shape
// is validated before the core is called; the core performs its own format
// checks before touching storage.
func (h *Handler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, validationError("Invalid request body."))
	}
	if !walletPattern.MatchString(req.Wallet) {
		return respondError(c, validationError("Invalid Stellar wallet address. Must start with G and have 55 base32 characters [A-Z2-7]."))
	}
	if !noncePattern.MatchString(req.Nonce) {
		return respondError(c, validationError("Nonce must be 64 lowercase hexadecimal characters."))
	}
	signature, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil || len(signature) == 0 {
		return respondError(c, validationError("Signature must be base64 encoded."))
	}

	if err := h.svc.VerifySignature(c.UserContext(), req.Wallet, req.Nonce, signature); err != nil {
		return respondError(c, err)
	}

	pair, err := h.svc.GenerateTokens(c.UserContext(), req.Wallet)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh exchanges a refresh token for a new access token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, validationError("Invalid request body."))
	}
	if req.RefreshToken == "" {
		return respondError(c, validationError("Refresh token is required."))
	}

	access, expiresIn, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"accessToken": access,
		"expiresIn":   expiresIn,
		"tokenType":   TokenType,
	})
}

// respondError renders the stable {code, message} error body for a domain
// error. Non-domain errors are masked behind a generic server failure so no
// internals leak.
func respondError(c *fiber.Ctx, err error) error {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Code: "INTERNAL_ERROR", Message: "Unexpected server error."}
	}
	return c.Status(HTTPStatus(err)).JSON(fiber.Map{"code": e.Code, "message": e.Message})
}
