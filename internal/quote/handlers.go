package quote

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"rfqapi/internal/api"
	"rfqapi/internal/audit"
	"rfqapi/internal/orderfiles"
	"rfqapi/pkg/shopify"
)

type Handlers struct {
	Shopify shopify.Client
	Audit   *audit.Repository
}

type LineItemRequest struct {
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`

	// File attachment attributes written onto the line item; the download
	// pipeline reads these back.
	FileName string `json:"fileName,omitempty"`
	FileURL  string `json:"fileUrl,omitempty"`
	FileID   string `json:"fileId,omitempty"`
}

type CreateRequest struct {
	Email     string            `json:"email"`
	Note      string            `json:"note,omitempty"`
	LineItems []LineItemRequest `json:"lineItems"`
}

type UpdateRequest struct {
	Email     *string           `json:"email,omitempty"`
	Note      *string           `json:"note,omitempty"`
	LineItems []LineItemRequest `json:"lineItems,omitempty"`
}

type QuoteResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	InvoiceURL string `json:"invoiceUrl,omitempty"`
}

// Create proxies an RFQ submission into draftOrderCreate.
func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "ValidationFailed", "invalid json")
		return
	}
	if len(req.LineItems) == 0 {
		api.WriteError(w, http.StatusBadRequest, "ValidationFailed", "at least one line item is required")
		return
	}

	items, err := lineItemInputs(req.LineItems)
	if err != nil {
		api.WriteErrorDetails(w, http.StatusBadRequest, "ValidationFailed", "invalid line items", err.Error())
		return
	}

	input := shopify.DraftOrderInput{
		Email:     strings.TrimSpace(req.Email),
		Note:      req.Note,
		Tags:      []string{"RFQ"},
		LineItems: items,
	}

	order, err := h.Shopify.CreateDraftOrder(r.Context(), input)
	if err != nil {
		log.Printf("quote: draftOrderCreate failed: %v", err)
		api.WriteError(w, http.StatusBadGateway, "UpstreamError", "could not create draft order")
		return
	}

	h.Audit.Record(r.Context(), "quote.create", actor(r), order.ID, map[string]any{
		"name":      order.Name,
		"lineItems": len(items),
	})

	api.WriteJSON(w, http.StatusCreated, QuoteResponse{
		ID:         shopify.NumericID(order.ID),
		Name:       order.Name,
		InvoiceURL: order.InvoiceURL,
	})
}

// Get proxies a draft order query, including line items and their file
// attributes.
func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "ValidationFailed", "missing id")
		return
	}

	order, err := h.Shopify.GetDraftOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, shopify.ErrDraftOrderNotFound) {
			api.WriteError(w, http.StatusNotFound, "NotFound", fmt.Sprintf("draft order %s not found", id))
			return
		}
		log.Printf("quote: draft order lookup %s failed: %v", id, err)
		api.WriteError(w, http.StatusBadGateway, "UpstreamError", "draft order lookup failed")
		return
	}

	type lineItem struct {
		Title      string            `json:"title"`
		Quantity   int               `json:"quantity"`
		Attributes map[string]string `json:"attributes,omitempty"`
	}
	items := make([]lineItem, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		attrs := make(map[string]string, len(li.CustomAttributes))
		for _, a := range li.CustomAttributes {
			attrs[a.Key] = a.Value
		}
		items = append(items, lineItem{Title: li.Title, Quantity: li.Quantity, Attributes: attrs})
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"id":         shopify.NumericID(order.ID),
		"name":       order.Name,
		"status":     order.Status,
		"email":      order.Email,
		"note":       order.Note,
		"invoiceUrl": order.InvoiceURL,
		"totalPrice": order.TotalPrice,
		"lineItems":  items,
	})
}

// Update proxies draftOrderUpdate; admin-only.
func (h Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "ValidationFailed", "missing id")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "ValidationFailed", "invalid json")
		return
	}

	var input shopify.DraftOrderInput
	if req.Email != nil {
		input.Email = strings.TrimSpace(*req.Email)
	}
	if req.Note != nil {
		input.Note = *req.Note
	}
	if len(req.LineItems) > 0 {
		items, err := lineItemInputs(req.LineItems)
		if err != nil {
			api.WriteErrorDetails(w, http.StatusBadRequest, "ValidationFailed", "invalid line items", err.Error())
			return
		}
		input.LineItems = items
	}

	order, err := h.Shopify.UpdateDraftOrder(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, shopify.ErrDraftOrderNotFound) {
			api.WriteError(w, http.StatusNotFound, "NotFound", fmt.Sprintf("draft order %s not found", id))
			return
		}
		log.Printf("quote: draftOrderUpdate %s failed: %v", id, err)
		api.WriteError(w, http.StatusBadGateway, "UpstreamError", "could not update draft order")
		return
	}

	h.Audit.Record(r.Context(), "quote.update", actor(r), order.ID, nil)

	api.WriteJSON(w, http.StatusOK, QuoteResponse{
		ID:         shopify.NumericID(order.ID),
		Name:       order.Name,
		InvoiceURL: order.InvoiceURL,
	})
}

type SendInvoiceRequest struct {
	To      string `json:"to,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message,omitempty"`
}

// SendInvoice proxies draftOrderInvoiceSend; admin-only.
func (h Handlers) SendInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "ValidationFailed", "missing id")
		return
	}

	var req SendInvoiceRequest
	if r.Body != nil {
		// Body is optional; Shopify sends its default invoice without one.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var email *shopify.InvoiceEmail
	if req.To != "" || req.Subject != "" || req.Message != "" {
		email = &shopify.InvoiceEmail{To: req.To, Subject: req.Subject, CustomMessage: req.Message}
	}

	sentAt, err := h.Shopify.SendDraftOrderInvoice(r.Context(), id, email)
	if err != nil {
		if errors.Is(err, shopify.ErrDraftOrderNotFound) {
			api.WriteError(w, http.StatusNotFound, "NotFound", fmt.Sprintf("draft order %s not found", id))
			return
		}
		log.Printf("quote: draftOrderInvoiceSend %s failed: %v", id, err)
		api.WriteError(w, http.StatusBadGateway, "UpstreamError", "could not send invoice")
		return
	}

	h.Audit.Record(r.Context(), "quote.send_invoice", actor(r), shopify.DraftOrderGID(id), map[string]any{
		"to": req.To,
	})

	api.WriteJSON(w, http.StatusOK, map[string]string{"sentAt": sentAt})
}

// lineItemInputs validates the quoted prices and maps the request items to
// Shopify inputs, attaching the file attributes the download pipeline reads.
func lineItemInputs(items []LineItemRequest) ([]shopify.DraftOrderLineItemInput, error) {
	out := make([]shopify.DraftOrderLineItemInput, 0, len(items))
	for i, li := range items {
		title := strings.TrimSpace(li.Title)
		if title == "" {
			return nil, fmt.Errorf("line item %d: title is required", i+1)
		}

		qty := li.Quantity
		if qty <= 0 {
			qty = 1
		}

		price, err := decimal.NewFromString(strings.TrimSpace(li.UnitPrice))
		if err != nil {
			return nil, fmt.Errorf("line item %d: invalid unitPrice %q", i+1, li.UnitPrice)
		}
		if price.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("line item %d: unitPrice must be > 0", i+1)
		}

		var attrs []shopify.Attribute
		if v := strings.TrimSpace(li.FileName); v != "" {
			attrs = append(attrs, shopify.Attribute{Key: orderfiles.AttrFileName, Value: v})
		}
		if v := strings.TrimSpace(li.FileURL); v != "" {
			attrs = append(attrs, shopify.Attribute{Key: orderfiles.AttrFileURL, Value: v})
		}
		if v := strings.TrimSpace(li.FileID); v != "" {
			attrs = append(attrs, shopify.Attribute{Key: orderfiles.AttrFileID, Value: v})
		}

		out = append(out, shopify.DraftOrderLineItemInput{
			Title:             title,
			Quantity:          qty,
			OriginalUnitPrice: price.StringFixed(2),
			CustomAttributes:  attrs,
		})
	}
	return out, nil
}

func actor(r *http.Request) string {
	if a := api.AdminFromContext(r.Context()); a != nil {
		return a.Email
	}
	return "storefront"
}
