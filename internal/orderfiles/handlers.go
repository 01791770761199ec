package orderfiles

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"rfqapi/internal/api"
	"rfqapi/internal/audit"
	"rfqapi/pkg/shopify"
)

const usageHint = "GET /v1/rfq/download-order-files?draftOrderId=<id>"

// OrderClient is the slice of the Shopify client the handler needs.
type OrderClient interface {
	GetDraftOrder(ctx context.Context, id string) (*shopify.DraftOrder, error)
}

type Handlers struct {
	Orders       OrderClient
	Materializer *Materializer
	Audit        *audit.Repository

	// Now is injectable for deterministic archive filenames in tests.
	Now func() time.Time
}

// DownloadArchive resolves a draft order's line-item file references,
// fetches every resolvable file, and streams them back as one zip.
// Per-file failures become ERROR_*.txt placeholder entries; only a fully
// failed batch (or a failed order lookup) turns into an error response.
func (h Handlers) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("draftOrderId")
	if id == "" {
		id = chi.URLParam(r, "id")
	}
	if id == "" {
		api.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error":   CodeMissingParameter,
			"message": "draftOrderId query parameter is required",
			"usage":   usageHint,
		})
		return
	}

	order, err := h.Orders.GetDraftOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, shopify.ErrDraftOrderNotFound) {
			api.WriteError(w, http.StatusNotFound, CodeNotFound, fmt.Sprintf("draft order %s not found", id))
			return
		}
		log.Printf("orderfiles: draft order lookup %s failed: %v", id, err)
		api.WriteError(w, http.StatusBadGateway, CodeUpstreamError, "draft order lookup failed")
		return
	}

	entries := ExtractEntries(order.LineItems)
	for _, e := range entries {
		if e.Kind == KindMissing {
			log.Printf("orderfiles: %s line %d (%s) has no file reference, skipping", order.Name, e.LineIndex, e.FileName)
		}
	}

	processable := Processable(entries)
	if len(processable) == 0 {
		api.WriteError(w, http.StatusNotFound, CodeNoFilesFound, "no downloadable files on this draft order")
		return
	}

	results := h.Materializer.MaterializeAll(r.Context(), processable)
	for _, res := range results {
		if res.Err != nil {
			log.Printf("orderfiles: %s: %q failed: %v", order.Name, res.FileName, res.Err)
		}
	}

	archive, successes, failures, err := BuildArchive(results)
	if err != nil {
		var perr PipelineError
		if errors.As(err, &perr) && perr.Code == CodeAllDownloadsFailed {
			api.WriteError(w, http.StatusInternalServerError, CodeAllDownloadsFailed, perr.Message)
			return
		}
		log.Printf("orderfiles: %s: archive assembly failed: %v", order.Name, err)
		api.WriteError(w, http.StatusInternalServerError, CodeConfigurationUnavailable, "archive assembly failed")
		return
	}

	h.Audit.Record(r.Context(), "order_files.download", actor(r), order.ID, map[string]any{
		"orderName": order.Name,
		"successes": successes,
		"failures":  failures,
	})

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	filename := archiveFilename(order.Name, now())

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", url.PathEscape(filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(archive)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func archiveFilename(orderName string, now time.Time) string {
	if orderName == "" {
		orderName = "draft-order"
	}
	return fmt.Sprintf("%s_files_%s.zip", orderName, now.UTC().Format("20060102_150405"))
}

func actor(r *http.Request) string {
	if a := api.AdminFromContext(r.Context()); a != nil {
		return a.Email
	}
	return "storefront"
}
