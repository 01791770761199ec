package upload

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"rfqapi/internal/api"
	"rfqapi/internal/audit"
	"rfqapi/pkg/shopify"
)

// FileStore is the slice of the Shopify client the upload proxy needs.
type FileStore interface {
	StagedUploadCreate(ctx context.Context, fileName, mimeType string, size int64) (*shopify.StagedTarget, error)
	UploadToStagedTarget(ctx context.Context, target *shopify.StagedTarget, mimeType string, data []byte) error
	FileCreate(ctx context.Context, resourceURL, alt string) (string, error)
	CreateMetaobject(ctx context.Context, mtype, handle string, fields map[string]string) (*shopify.Metaobject, error)
}

type Handlers struct {
	Shopify FileStore
	Audit   *audit.Repository

	// MetaobjectType is the definition used for fallback file records.
	MetaobjectType string

	// MaxBytes caps the decoded upload size.
	MaxBytes int64
}

type Request struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType,omitempty"`
	Data        string `json:"data"` // base64
}

type Response struct {
	FileID  string `json:"fileId"`
	URL     string `json:"url,omitempty"`
	Storage string `json:"storage"` // cdn | metaobject
}

// Create accepts a base64 payload from the theme frontend and pushes it into
// Shopify. The primary path is a staged upload plus fileCreate (CDN-backed);
// when that path is unavailable the bytes are kept inline on a metaobject
// record, which the download pipeline knows how to read back.
func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "ValidationFailed", "invalid json")
		return
	}
	req.FileName = strings.TrimSpace(req.FileName)
	if req.FileName == "" {
		api.WriteError(w, http.StatusBadRequest, "ValidationFailed", "fileName is required")
		return
	}
	if strings.TrimSpace(req.Data) == "" {
		api.WriteError(w, http.StatusBadRequest, "ValidationFailed", "data is required")
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "ValidationFailed", "data must be base64")
		return
	}
	if h.MaxBytes > 0 && int64(len(data)) > h.MaxBytes {
		api.WriteError(w, http.StatusRequestEntityTooLarge, "FileTooLarge", "file exceeds the upload size limit")
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if resp, err := h.stagedUpload(r, req.FileName, contentType, data); err == nil {
		api.WriteJSON(w, http.StatusCreated, resp)
		return
	} else {
		log.Printf("upload: staged upload for %q failed, falling back to metaobject record: %v", req.FileName, err)
	}

	resp, err := h.metaobjectFallback(r, req.FileName, req.Data)
	if err != nil {
		log.Printf("upload: metaobject fallback for %q failed: %v", req.FileName, err)
		api.WriteError(w, http.StatusBadGateway, "UpstreamError", "could not store file")
		return
	}
	api.WriteJSON(w, http.StatusCreated, resp)
}

func (h Handlers) stagedUpload(r *http.Request, fileName, contentType string, data []byte) (*Response, error) {
	ctx := r.Context()

	target, err := h.Shopify.StagedUploadCreate(ctx, fileName, contentType, int64(len(data)))
	if err != nil {
		return nil, err
	}
	if err := h.Shopify.UploadToStagedTarget(ctx, target, contentType, data); err != nil {
		return nil, err
	}
	fileID, err := h.Shopify.FileCreate(ctx, target.ResourceURL, fileName)
	if err != nil {
		return nil, err
	}

	h.Audit.Record(ctx, "upload.cdn", actor(r), "", map[string]any{
		"fileName": fileName,
		"fileId":   fileID,
		"bytes":    len(data),
	})

	return &Response{
		FileID:  shopify.NumericID(fileID),
		URL:     target.ResourceURL,
		Storage: "cdn",
	}, nil
}

func (h Handlers) metaobjectFallback(r *http.Request, fileName, encoded string) (*Response, error) {
	ctx := r.Context()

	handle, err := newFileHandle()
	if err != nil {
		return nil, err
	}

	_, err = h.Shopify.CreateMetaobject(ctx, h.MetaobjectType, handle, map[string]string{
		"file_id":   handle,
		"file_name": fileName,
		"data":      encoded,
	})
	if err != nil {
		return nil, err
	}

	h.Audit.Record(ctx, "upload.metaobject", actor(r), "", map[string]any{
		"fileName": fileName,
		"fileId":   handle,
	})

	return &Response{FileID: handle, Storage: "metaobject"}, nil
}

func newFileHandle() (string, error) {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "rfq-" + hex.EncodeToString(b), nil
}

func actor(r *http.Request) string {
	if a := api.AdminFromContext(r.Context()); a != nil {
		return a.Email
	}
	return "storefront"
}
