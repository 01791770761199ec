package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rfqapi/internal/api"
	"rfqapi/internal/audit"
	"rfqapi/internal/orderfiles"
	"rfqapi/internal/quote"
	"rfqapi/internal/upload"
	"rfqapi/pkg/config"
	"rfqapi/pkg/shopify"
)

type Dependencies struct {
	Cfg config.Config

	// DB is optional; nil disables the audit log.
	DB *pgxpool.Pool
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.MethodNotAllowed(api.MethodNotAllowed)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	client := shopify.Client{
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
		ShopDomain:  deps.Cfg.Shopify.ShopDomain,
		AccessToken: deps.Cfg.Shopify.AccessToken,
		APIVersion:  deps.Cfg.Shopify.APIVersion,
	}

	auditRepo := audit.NewRepository(deps.DB)

	quoteHandlers := quote.Handlers{Shopify: client, Audit: auditRepo}
	uploadHandlers := upload.Handlers{
		Shopify:        client,
		Audit:          auditRepo,
		MetaobjectType: deps.Cfg.Shopify.UploadMetaobjectType,
		MaxBytes:       deps.Cfg.UploadMaxBytes,
	}
	filesHandlers := orderfiles.Handlers{
		Orders: client,
		Materializer: &orderfiles.Materializer{
			HTTP: client.HTTPClient,
			Resolver: &orderfiles.MetaobjectResolver{
				Records: client,
				Type:    deps.Cfg.Shopify.UploadMetaobjectType,
			},
		},
		Audit: auditRepo,
	}

	// v1
	r.Route("/v1/rfq", func(r chi.Router) {
		// CORS sits on the sub-router itself so pre-flight OPTIONS requests
		// reach it before method resolution; an inline group would only wrap
		// the registered methods and pre-flights would 405.
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: deps.Cfg.AllowedOrigins,
			MaxAgeSeconds:  600,
		}))

		// Storefront endpoints, called cross-origin by the theme frontend.
		// Only explicitly configured origins are allowed.
		r.Post("/quotes", quoteHandlers.Create)
		r.Get("/quotes/{id}", quoteHandlers.Get)
		r.Post("/uploads", uploadHandlers.Create)

		// Batch file download; the query-param form is the one the admin
		// dashboard links to.
		r.Get("/download-order-files", filesHandlers.DownloadArchive)
		r.Get("/quotes/{id}/files/archive", filesHandlers.DownloadArchive)

		// Admin endpoints (session token + email allowlist).
		r.Group(func(r chi.Router) {
			r.Use(api.AdminAuth(deps.Cfg))

			r.Put("/quotes/{id}", quoteHandlers.Update)
			r.Post("/quotes/{id}/send-invoice", quoteHandlers.SendInvoice)
		})
	})

	return r
}
