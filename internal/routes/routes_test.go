package routes

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/lumengate/lumengate/internal/config"
	"github.com/lumengate/lumengate/internal/logging"
	"github.com/lumengate/lumengate/internal/stellar"
)

func devConfig() config.Config {
	return config.Config{
		AppEnv:        "development",
		AccessSecret:  "routes-test-access-secret",
		RefreshSecret: "routes-test-refresh-secret",
	}
}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	err := Setup(app, Deps{Cfg: devConfig(), Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
	return resp.StatusCode, decoded
}

func TestSetupRequiresBackendsOutsideDev(t *testing.T) {
	cfg := devConfig()
	cfg.AppEnv = "production"

	err := Setup(fiber.New(), Deps{Cfg: cfg, Logger: logging.Discard()})
	if err == nil {
		t.Fatalf("expected setup to fail without a database in production")
	}
}

func TestHealthz(t *testing.T) {
	app := newApp(t)

	status, body := doJSON(t, app, fiber.MethodGet, "/healthz", nil, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", status, body)
	}
}

func TestLoginAndProfileFlow(t *testing.T) {
	app := newApp(t)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	wallet := stellar.EncodeAddress(pub)

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/nonce", map[string]string{"wallet": wallet}, nil)
	if status != fiber.StatusOK {
		t.Fatalf("nonce: expected 200, got %d (%v)", status, body)
	}
	nonce := body["nonce"].(string)

	sig := ed25519.Sign(priv, []byte(nonce))
	status, body = doJSON(t, app, fiber.MethodPost, "/api/v1/auth/verify", map[string]string{
		"wallet":    wallet,
		"nonce":     nonce,
		"signature": base64.StdEncoding.EncodeToString(sig),
	}, nil)
	if status != fiber.StatusOK {
		t.Fatalf("verify: expected 200, got %d (%v)", status, body)
	}
	access := body["accessToken"].(string)

	authz := map[string]string{fiber.HeaderAuthorization: "Bearer " + access}
	status, body = doJSON(t, app, fiber.MethodGet, "/api/v1/users/me", nil, authz)
	if status != fiber.StatusOK {
		t.Fatalf("me: expected 200, got %d (%v)", status, body)
	}
	if body["wallet"] != wallet {
		t.Fatalf("expected profile wallet %s, got %v", wallet, body["wallet"])
	}

	status, body = doJSON(t, app, fiber.MethodPatch, "/api/v1/users/me", map[string]string{"name": "Ada"}, authz)
	if status != fiber.StatusOK {
		t.Fatalf("update: expected 200, got %d (%v)", status, body)
	}
	if body["name"] != "Ada" {
		t.Fatalf("expected updated name, got %v", body["name"])
	}
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	app := newApp(t)

	status, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/users/me", nil, nil)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}
