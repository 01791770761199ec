package orderfiles

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency caps the materialization fan-out. File fetches are
// I/O-bound, so a small cap keeps latency well under the platform timeout
// without hammering the CDN.
const DefaultConcurrency = 4

// Result is the per-entry outcome. Data and Err are mutually exclusive;
// failures become placeholder entries in the archive, never request errors.
type Result struct {
	FileName string
	Data     []byte
	Err      error
}

type Materializer struct {
	HTTP     *http.Client
	Resolver *MetaobjectResolver

	Concurrency int
}

// MaterializeAll fetches every entry's bytes with a bounded concurrent
// fan-out. Results keep the source order of entries. An entry's failure is
// recorded in its Result and never aborts the others.
func (m *Materializer) MaterializeAll(ctx context.Context, entries []FileEntry) []Result {
	limit := m.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]Result, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			data, err := m.materialize(gctx, e)
			results[i] = Result{FileName: e.FileName, Data: data, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (m *Materializer) materialize(ctx context.Context, e FileEntry) ([]byte, error) {
	switch e.Kind {
	case KindDirectURL:
		return m.download(ctx, e.URL)
	case KindIndirect:
		res, err := m.Resolver.Resolve(ctx, e.IndirectID)
		if err != nil {
			return nil, err
		}
		if res.URL != "" {
			return m.download(ctx, res.URL)
		}
		return res.Data, nil
	default:
		return nil, errCode(CodeMaterializationFailed, "no resolvable source for %q", e.FileName)
	}
}

func (m *Materializer) download(ctx context.Context, url string) ([]byte, error) {
	client := m.HTTP
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, wrapCode(CodeDownloadFailed, err, "bad file url %q", url)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, wrapCode(CodeDownloadFailed, err, "fetch %q", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errCode(CodeDownloadFailed, "fetch %q: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapCode(CodeDownloadFailed, err, "read body of %q", url)
	}
	return data, nil
}
