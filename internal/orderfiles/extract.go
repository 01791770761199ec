package orderfiles

import (
	"fmt"
	"strings"

	"rfqapi/pkg/shopify"
)

// Custom attribute keys the theme frontend writes onto each RFQ line item.
const (
	AttrFileName = "File Name"
	AttrFileURL  = "File URL"
	AttrFileID   = "File Id"

	// The theme writes this literal when a slot exists but no file was attached.
	PlaceholderValue = "N/A"
)

type SourceKind int

const (
	KindMissing SourceKind = iota
	KindDirectURL
	KindIndirect
)

func (k SourceKind) String() string {
	switch k {
	case KindDirectURL:
		return "direct_url"
	case KindIndirect:
		return "indirect_reference"
	default:
		return "missing"
	}
}

// FileEntry is the classified file reference of one line item. Exactly one
// entry exists per line item; entries with KindMissing are logged and skipped
// rather than materialized.
type FileEntry struct {
	FileName   string
	Kind       SourceKind
	URL        string
	IndirectID string
	LineIndex  int
}

// ExtractEntries classifies the file reference of every line item.
//
// Priority, first match wins:
//  1. a present, non-placeholder, http-prefixed File URL -> direct download
//  2. a present File Id -> indirect (metaobject) reference
//  3. otherwise missing
//
// A present but non-http URL is deliberately treated the same as an absent
// one; the theme has historically written junk there and the File Id gives a
// second chance.
func ExtractEntries(items []shopify.LineItem) []FileEntry {
	out := make([]FileEntry, 0, len(items))
	for i, item := range items {
		name := attrValue(item.CustomAttributes, AttrFileName)
		if name == "" {
			name = fmt.Sprintf("file_%d", i+1)
		}

		e := FileEntry{FileName: name, Kind: KindMissing, LineIndex: i}

		if u := attrValue(item.CustomAttributes, AttrFileURL); u != "" && u != PlaceholderValue && strings.HasPrefix(u, "http") {
			e.Kind = KindDirectURL
			e.URL = u
		} else if id := attrValue(item.CustomAttributes, AttrFileID); id != "" && id != PlaceholderValue {
			e.Kind = KindIndirect
			e.IndirectID = id
		}

		out = append(out, e)
	}
	return out
}

// Processable filters out the missing entries.
func Processable(entries []FileEntry) []FileEntry {
	out := make([]FileEntry, 0, len(entries))
	for _, e := range entries {
		if e.Kind != KindMissing {
			out = append(out, e)
		}
	}
	return out
}

func attrValue(attrs []shopify.Attribute, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}
