package shopify

import (
	"fmt"
	"strings"
)

// DraftOrderGID converts a caller-supplied identifier into the GID form the
// Admin API expects. Numeric ids become gid://shopify/DraftOrder/<n>; values
// already in gid form pass through.
func DraftOrderGID(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "gid://") {
		return id
	}
	return fmt.Sprintf("gid://shopify/DraftOrder/%s", id)
}

// NumericID extracts the trailing numeric id from a GID
// (gid://shopify/DraftOrder/123 -> "123"). Non-GID input passes through.
func NumericID(gid string) string {
	gid = strings.TrimSpace(gid)
	if i := strings.LastIndex(gid, "/"); i >= 0 && i < len(gid)-1 {
		return gid[i+1:]
	}
	return gid
}
