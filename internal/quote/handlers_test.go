package quote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rfqapi/internal/api"
	"rfqapi/internal/orderfiles"
)

func TestLineItemInputs_ValidatesPrice(t *testing.T) {
	cases := []struct {
		name  string
		price string
		ok    bool
	}{
		{"plain", "10.5", true},
		{"integer", "42", true},
		{"zero", "0", false},
		{"negative", "-1.00", false},
		{"garbage", "ten dollars", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		_, err := lineItemInputs([]LineItemRequest{
			{Title: "part", Quantity: 1, UnitPrice: tc.price},
		})
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestCreate_InvalidLineItemCarriesDetails(t *testing.T) {
	// Validation fails before any Shopify call, so the zero-value client is
	// never touched.
	h := Handlers{}
	body := strings.NewReader(`{"email":"c@example.com","lineItems":[{"title":"part","quantity":1,"unitPrice":"-5"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/rfq/quotes", body)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var got api.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Error != "ValidationFailed" {
		t.Fatalf("expected ValidationFailed, got %q", got.Error)
	}
	if !strings.Contains(got.Details, "unitPrice") {
		t.Fatalf("details should name the bad field: %q", got.Details)
	}
}

func TestLineItemInputs_FormatsPriceToTwoPlaces(t *testing.T) {
	items, err := lineItemInputs([]LineItemRequest{
		{Title: "part", Quantity: 2, UnitPrice: "10.5"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].OriginalUnitPrice != "10.50" {
		t.Fatalf("expected 10.50, got %q", items[0].OriginalUnitPrice)
	}
	if items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", items[0].Quantity)
	}
}

func TestLineItemInputs_RequiresTitle(t *testing.T) {
	_, err := lineItemInputs([]LineItemRequest{
		{Title: "   ", Quantity: 1, UnitPrice: "5.00"},
	})
	if err == nil || !strings.Contains(err.Error(), "title") {
		t.Fatalf("expected title error, got %v", err)
	}
}

func TestLineItemInputs_DefaultsQuantity(t *testing.T) {
	items, err := lineItemInputs([]LineItemRequest{
		{Title: "part", UnitPrice: "5.00"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", items[0].Quantity)
	}
}

func TestLineItemInputs_AttachesFileAttributes(t *testing.T) {
	items, err := lineItemInputs([]LineItemRequest{
		{
			Title:     "part",
			Quantity:  1,
			UnitPrice: "5.00",
			FileName:  "bracket.stl",
			FileURL:   "https://cdn.example.com/bracket.stl",
			FileID:    "rfq-abc",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	attrs := map[string]string{}
	for _, a := range items[0].CustomAttributes {
		attrs[a.Key] = a.Value
	}
	if attrs[orderfiles.AttrFileName] != "bracket.stl" {
		t.Fatalf("file name attribute missing: %v", attrs)
	}
	if attrs[orderfiles.AttrFileURL] != "https://cdn.example.com/bracket.stl" {
		t.Fatalf("file url attribute missing: %v", attrs)
	}
	if attrs[orderfiles.AttrFileID] != "rfq-abc" {
		t.Fatalf("file id attribute missing: %v", attrs)
	}
}

func TestLineItemInputs_SkipsEmptyFileAttributes(t *testing.T) {
	items, err := lineItemInputs([]LineItemRequest{
		{Title: "part", Quantity: 1, UnitPrice: "5.00"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items[0].CustomAttributes) != 0 {
		t.Fatalf("expected no attributes, got %v", items[0].CustomAttributes)
	}
}
