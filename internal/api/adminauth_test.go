package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rfqapi/pkg/config"
	"rfqapi/pkg/shopify"
)

func adminConfig(appEnv string) config.Config {
	return config.Config{
		AppEnv:      appEnv,
		AdminEmails: []string{"admin@example.com"},
		Shopify: config.ShopifyConfig{
			APIKey:    "test_api_key",
			APISecret: "test_secret",
		},
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := AdminFromContext(r.Context())
		if a == nil {
			http.Error(w, "no admin in context", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(a.Email))
	})
}

func signedToken(t *testing.T, email string) string {
	t.Helper()
	claims := shopify.SessionTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  []string{"test_api_key"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Minute)),
		},
		Dest:  "https://my-shop.myshopify.com",
		Email: email,
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test_secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestAdminAuth_ValidTokenOnAllowlist(t *testing.T) {
	h := AdminAuth(adminConfig("prod"))(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/rfq/quotes/1/send-invoice", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "admin@example.com"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "admin@example.com" {
		t.Fatalf("admin not attached to context: %q", rec.Body.String())
	}
}

func TestAdminAuth_ValidTokenNotOnAllowlist(t *testing.T) {
	h := AdminAuth(adminConfig("prod"))(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/rfq/quotes/1/send-invoice", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "intruder@example.com"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAdminAuth_MissingTokenInProd(t *testing.T) {
	h := AdminAuth(adminConfig("prod"))(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/rfq/quotes/1/send-invoice", nil)
	req.Header.Set("X-Admin-Email", "admin@example.com") // ignored in prod
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Unauthorized" {
		t.Fatalf("unexpected error code: %q", body.Error)
	}
}

func TestAdminAuth_DevHeaderFallback(t *testing.T) {
	h := AdminAuth(adminConfig("dev"))(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/rfq/quotes/1/send-invoice", nil)
	req.Header.Set("X-Admin-Email", "Admin@Example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 via dev fallback, got %d", rec.Code)
	}
}

func TestAdminAuth_GarbageToken(t *testing.T) {
	h := AdminAuth(adminConfig("dev"))(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/rfq/quotes/1/send-invoice", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
