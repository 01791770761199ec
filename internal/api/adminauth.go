package api

import (
	"net/http"
	"strings"
	"time"

	"rfqapi/pkg/config"
	"rfqapi/pkg/shopify"
)

// AdminAuth guards the admin endpoints (quote update, invoice send).
//
// Expected header:
// - Authorization: Bearer <JWT> (HS256, signed with the app API secret,
//   carrying the staff email claim)
//
// The authenticated email must be on the configured admin allowlist.
// In dev, if Authorization is missing, an X-Admin-Email header keeps local
// testing simple.
func AdminAuth(cfg config.Config) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		allowed[strings.ToLower(strings.TrimSpace(e))] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token := strings.TrimSpace(authz[7:])
				vs, err := shopify.VerifySessionToken(token, cfg.Shopify.APIKey, cfg.Shopify.APISecret, time.Now())
				if err != nil {
					WriteError(w, http.StatusUnauthorized, "Unauthorized", "invalid session token")
					return
				}
				if vs.Email == "" || !allowed[vs.Email] {
					WriteError(w, http.StatusForbidden, "Forbidden", "email not on admin allowlist")
					return
				}

				next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), &Admin{Email: vs.Email})))
				return
			}

			// Dev fallback
			if cfg.AppEnv != "prod" {
				email := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Admin-Email")))
				if email != "" && allowed[email] {
					next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), &Admin{Email: email})))
					return
				}
			}

			WriteError(w, http.StatusUnauthorized, "Unauthorized", "missing session token")
		})
	}
}
