package orderfiles

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	out := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		out[f.Name] = b
	}
	return out
}

func TestBuildArchive_MixedResults(t *testing.T) {
	payload := []byte{0x00, 0x01, 0xfe, 0xff, 'z', 'i', 'p'}
	results := []Result{
		{FileName: "bracket.stl", Data: payload},
		{FileName: "broken.step", Err: errCode(CodeDownloadFailed, "fetch failed: status 403")},
	}

	data, successes, failures, err := BuildArchive(results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if successes != 1 || failures != 1 {
		t.Fatalf("expected 1/1, got %d/%d", successes, failures)
	}

	entries := readArchive(t, data)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Round-trip: the stored bytes must be identical to the fetched ones.
	if !bytes.Equal(entries["bracket.stl"], payload) {
		t.Fatalf("bracket.stl content mismatch")
	}
	placeholder, ok := entries["ERROR_broken.step.txt"]
	if !ok {
		t.Fatalf("missing error placeholder entry, have %v", keys(entries))
	}
	if !strings.Contains(string(placeholder), "broken.step") || !strings.Contains(string(placeholder), "403") {
		t.Fatalf("placeholder not self-documenting: %q", placeholder)
	}
}

func TestBuildArchive_AllFailed(t *testing.T) {
	results := []Result{
		{FileName: "a", Err: errCode(CodeDownloadFailed, "nope")},
		{FileName: "b", Err: errCode(CodeRecordNotFound, "nope")},
	}
	data, successes, failures, err := BuildArchive(results)
	if err == nil {
		t.Fatalf("expected error")
	}
	var perr PipelineError
	if !errors.As(err, &perr) || perr.Code != CodeAllDownloadsFailed {
		t.Fatalf("expected AllDownloadsFailed, got %v", err)
	}
	if data != nil {
		t.Fatalf("expected no archive bytes")
	}
	if successes != 0 || failures != 2 {
		t.Fatalf("expected 0/2, got %d/%d", successes, failures)
	}
}

func TestBuildArchive_DuplicateNamesKept(t *testing.T) {
	results := []Result{
		{FileName: "part.stl", Data: []byte("one")},
		{FileName: "part.stl", Data: []byte("two")},
	}
	data, _, _, err := BuildArchive(results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries := readArchive(t, data)
	if len(entries) != 2 {
		t.Fatalf("duplicate entry was dropped: %v", keys(entries))
	}
	if string(entries["part.stl"]) != "one" || string(entries["1_part.stl"]) != "two" {
		t.Fatalf("unexpected names/contents: %v", keys(entries))
	}
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
