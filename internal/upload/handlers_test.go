package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rfqapi/pkg/shopify"
)

type fakeStore struct {
	stagedErr error
	putErr    error
	createErr error
	metaErr   error

	fileID string

	metaType   string
	metaHandle string
	metaFields map[string]string
}

func (f *fakeStore) StagedUploadCreate(ctx context.Context, fileName, mimeType string, size int64) (*shopify.StagedTarget, error) {
	if f.stagedErr != nil {
		return nil, f.stagedErr
	}
	return &shopify.StagedTarget{URL: "https://upload.example.com/put", ResourceURL: "https://cdn.example.com/tmp/1"}, nil
}

func (f *fakeStore) UploadToStagedTarget(ctx context.Context, target *shopify.StagedTarget, mimeType string, data []byte) error {
	return f.putErr
}

func (f *fakeStore) FileCreate(ctx context.Context, resourceURL, alt string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	if f.fileID == "" {
		return "gid://shopify/MediaImage/42", nil
	}
	return f.fileID, nil
}

func (f *fakeStore) CreateMetaobject(ctx context.Context, mtype, handle string, fields map[string]string) (*shopify.Metaobject, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	f.metaType = mtype
	f.metaHandle = handle
	f.metaFields = fields
	return &shopify.Metaobject{ID: "gid://shopify/Metaobject/1", Handle: handle, Fields: fields}, nil
}

func newHandlers(store FileStore) Handlers {
	return Handlers{Shopify: store, MetaobjectType: "rfq_file", MaxBytes: 64}
}

func doCreate(h Handlers, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, "/v1/rfq/uploads", &buf)
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func uploadRequest(data []byte) Request {
	return Request{
		FileName:    "bracket.stl",
		ContentType: "model/stl",
		Data:        base64.StdEncoding.EncodeToString(data),
	}
}

func TestCreate_ValidationFailures(t *testing.T) {
	h := newHandlers(&fakeStore{})
	cases := []struct {
		name string
		req  Request
	}{
		{"missing file name", Request{Data: base64.StdEncoding.EncodeToString([]byte("x"))}},
		{"missing data", Request{FileName: "a.stl"}},
		{"data not base64", Request{FileName: "a.stl", Data: "%%%not-base64%%%"}},
	}
	for _, tc := range cases {
		rec := doCreate(h, tc.req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, rec.Code)
		}
	}
}

func TestCreate_EnforcesSizeCap(t *testing.T) {
	h := newHandlers(&fakeStore{})
	rec := doCreate(h, uploadRequest(bytes.Repeat([]byte{'a'}, 65)))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "FileTooLarge" {
		t.Fatalf("expected FileTooLarge, got %q", body["error"])
	}
}

func TestCreate_StagedUploadPath(t *testing.T) {
	h := newHandlers(&fakeStore{})
	rec := doCreate(h, uploadRequest([]byte("solid bracket")))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Storage != "cdn" {
		t.Fatalf("expected cdn storage, got %q", resp.Storage)
	}
	if resp.FileID != "42" {
		t.Fatalf("expected numeric file id, got %q", resp.FileID)
	}
	if resp.URL != "https://cdn.example.com/tmp/1" {
		t.Fatalf("unexpected url: %q", resp.URL)
	}
}

func TestCreate_FallsBackToMetaobject(t *testing.T) {
	payload := []byte("solid bracket")
	store := &fakeStore{stagedErr: errors.New("staged uploads unavailable")}
	h := newHandlers(store)

	rec := doCreate(h, uploadRequest(payload))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Storage != "metaobject" {
		t.Fatalf("expected metaobject storage, got %q", resp.Storage)
	}
	if !strings.HasPrefix(resp.FileID, "rfq-") {
		t.Fatalf("expected generated rfq- handle, got %q", resp.FileID)
	}

	// The record must be readable by the download pipeline: same type, the
	// handle doubling as file_id, and the original base64 payload.
	if store.metaType != "rfq_file" {
		t.Fatalf("unexpected metaobject type: %q", store.metaType)
	}
	if store.metaFields["file_id"] != store.metaHandle {
		t.Fatalf("file_id %q does not match handle %q", store.metaFields["file_id"], store.metaHandle)
	}
	if store.metaFields["file_name"] != "bracket.stl" {
		t.Fatalf("unexpected file_name: %q", store.metaFields["file_name"])
	}
	if store.metaFields["data"] != base64.StdEncoding.EncodeToString(payload) {
		t.Fatalf("payload not stored verbatim")
	}
}

func TestCreate_BothPathsFail(t *testing.T) {
	h := newHandlers(&fakeStore{
		stagedErr: errors.New("staged uploads unavailable"),
		metaErr:   errors.New("metaobjects unavailable"),
	})
	rec := doCreate(h, uploadRequest([]byte("x")))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "UpstreamError" {
		t.Fatalf("expected UpstreamError, got %q", body["error"])
	}
}
