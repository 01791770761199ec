package orderfiles

import (
	"context"
	"encoding/base64"
	"log"

	"rfqapi/pkg/shopify"
)

// Metaobject field keys used by uploaded file records.
const (
	fieldFileID   = "file_id"
	fieldFileName = "file_name"
	fieldURL      = "url"
	fieldData     = "data"
)

// RecordLookup is the slice of the Shopify client the resolver needs.
type RecordLookup interface {
	MetaobjectByHandle(ctx context.Context, mtype, handle string) (*shopify.Metaobject, error)
	ListMetaobjects(ctx context.Context, mtype string, first int) ([]*shopify.Metaobject, error)
}

// Resolution is the outcome of resolving an indirect reference: either a
// secondary URL to download, or the decoded inline payload.
type Resolution struct {
	URL  string
	Data []byte
}

type resolutionState int

const (
	resolutionFound resolutionState = iota
	resolutionFallbackNeeded
	resolutionNotFound
)

// MetaobjectResolver resolves indirect file references stored as metaobject
// records. Lookup is a two-step fallback chain: exact handle first, then a
// bounded list scan matching the file_id field.
type MetaobjectResolver struct {
	Records RecordLookup
	Type    string

	// ListLimit bounds the fallback scan. Zero means 100.
	ListLimit int
}

func (r *MetaobjectResolver) Resolve(ctx context.Context, indirectID string) (*Resolution, error) {
	record, state := r.byHandle(ctx, indirectID)
	if state == resolutionFallbackNeeded {
		record, state = r.byListScan(ctx, indirectID)
	}
	if state != resolutionFound {
		return nil, errCode(CodeRecordNotFound, "no file record for id %q", indirectID)
	}
	return recordResolution(record, indirectID)
}

// byHandle attempts the exact-handle query. Both an upstream error and an
// empty result ask for the fallback scan; errors here are not terminal
// because the record may still be findable by field match.
func (r *MetaobjectResolver) byHandle(ctx context.Context, indirectID string) (*shopify.Metaobject, resolutionState) {
	record, err := r.Records.MetaobjectByHandle(ctx, r.Type, indirectID)
	if err != nil {
		log.Printf("orderfiles: metaobject handle lookup failed for %q, falling back to list scan: %v", indirectID, err)
		return nil, resolutionFallbackNeeded
	}
	if record == nil {
		return nil, resolutionFallbackNeeded
	}
	return record, resolutionFound
}

func (r *MetaobjectResolver) byListScan(ctx context.Context, indirectID string) (*shopify.Metaobject, resolutionState) {
	limit := r.ListLimit
	if limit <= 0 {
		limit = 100
	}
	records, err := r.Records.ListMetaobjects(ctx, r.Type, limit)
	if err != nil {
		log.Printf("orderfiles: metaobject list scan failed for %q: %v", indirectID, err)
		return nil, resolutionNotFound
	}
	for _, rec := range records {
		if rec.Fields[fieldFileID] == indirectID || rec.Handle == indirectID {
			return rec, resolutionFound
		}
	}
	return nil, resolutionNotFound
}

func recordResolution(record *shopify.Metaobject, indirectID string) (*Resolution, error) {
	if u := record.Fields[fieldURL]; u != "" {
		return &Resolution{URL: u}, nil
	}
	if encoded := record.Fields[fieldData]; encoded != "" {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, wrapCode(CodeRecordNotFound, err, "file record %q has undecodable payload", indirectID)
		}
		return &Resolution{Data: data}, nil
	}
	return nil, errCode(CodeRecordNotFound, "file record %q has neither url nor payload", indirectID)
}
