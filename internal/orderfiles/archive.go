package orderfiles

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// errorEntryPrefix names the placeholder text entry written for a failed
// file, so the archive documents its own partial failures.
const errorEntryPrefix = "ERROR_"

// BuildArchive assembles the per-entry results into one zip. Successful
// results become entries under their display name with the exact bytes;
// failed ones become ERROR_<name>.txt entries holding the failure reason.
// When not a single result succeeded, no archive is produced and the whole
// operation fails with AllDownloadsFailed.
func BuildArchive(results []Result) (data []byte, successes, failures int, err error) {
	for _, r := range results {
		if r.Err == nil {
			successes++
		} else {
			failures++
		}
	}
	if successes == 0 {
		return nil, 0, failures, errCode(CodeAllDownloadsFailed, "all %d file downloads failed", failures)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	seen := map[string]int{}
	for _, r := range results {
		if r.Err == nil {
			w, werr := zw.Create(uniqueName(seen, r.FileName))
			if werr == nil {
				_, werr = w.Write(r.Data)
			}
			if werr != nil {
				return nil, successes, failures, wrapCode(CodeConfigurationUnavailable, werr, "write archive entry %q", r.FileName)
			}
			continue
		}

		name := uniqueName(seen, errorEntryPrefix+r.FileName+".txt")
		w, werr := zw.Create(name)
		if werr == nil {
			_, werr = fmt.Fprintf(w, "Failed to download %s: %v\n", r.FileName, r.Err)
		}
		if werr != nil {
			return nil, successes, failures, wrapCode(CodeConfigurationUnavailable, werr, "write archive entry %q", name)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, successes, failures, wrapCode(CodeConfigurationUnavailable, err, "finalize archive")
	}
	return buf.Bytes(), successes, failures, nil
}

// uniqueName disambiguates duplicate display names so no entry silently
// overwrites another.
func uniqueName(seen map[string]int, name string) string {
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%d_%s", n, name)
}
