package assets

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"labbook/internal/services"
	"labbook/internal/testsupport"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		ref  string
		id   string
		kind Kind
	}{
		{"https://docs.google.com/drawings/d/1AbC-def_9/edit", "1AbC-def_9", KindDrawing},
		{"https://docs.google.com/document/d/docid42/edit?usp=sharing", "docid42", KindDocument},
		{"https://docs.google.com/spreadsheets/d/sheetid/edit#gid=0", "sheetid", KindSpreadsheet},
		{"https://drive.google.com/file/d/fileid123/view?usp=drive_link", "fileid123", KindFile},
	}
	for _, tc := range cases {
		id, kind, err := Classify(tc.ref)
		if err != nil {
			t.Fatalf("Classify(%s): %v", tc.ref, err)
		}
		if id != tc.id || kind != tc.kind {
			t.Fatalf("Classify(%s) = %s/%s, want %s/%s", tc.ref, id, kind, tc.id, tc.kind)
		}
	}
}

func TestClassifyNoDriveID(t *testing.T) {
	_, _, err := Classify("https://example.com/paper.pdf")
	if !errors.Is(err, services.ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

type recordingIndex struct {
	records [][3]string
}

func (r *recordingIndex) RecordAsset(_ context.Context, moduleID, ref, localPath string) error {
	r.records = append(r.records, [3]string{moduleID, ref, localPath})
	return nil
}

func testFetcher(t *testing.T, handler http.Handler, index Index) (*Fetcher, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Assets.Enabled = true
	f := New(cfg, nil, index)
	f.docsBase = server.URL
	f.driveBase = server.URL
	return f, server
}

func TestFetchDrawingAlwaysRefetches(t *testing.T) {
	hits := 0
	index := &recordingIndex{}
	f, _ := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if !strings.HasSuffix(r.URL.Path, "/export/png") {
			t.Errorf("unexpected export path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, "png-bytes")
	}), index)

	ref := "https://docs.google.com/drawings/d/draw1/edit"
	first, err := f.Fetch(context.Background(), "1.1", ref)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	second, err := f.Fetch(context.Background(), "1.1", ref)
	if err != nil {
		t.Fatalf("Fetch again: %v", err)
	}

	if first != second {
		t.Fatalf("expected stable cache path, got %s and %s", first, second)
	}
	if hits != 2 {
		t.Fatalf("drawings must refetch every time, got %d hits", hits)
	}
	if !strings.HasSuffix(first, ".png") {
		t.Fatalf("expected png extension, got %s", first)
	}
	data, err := os.ReadFile(first)
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("unexpected cached content %q (%v)", data, err)
	}
	if len(index.records) != 2 || index.records[0][0] != "1.1" {
		t.Fatalf("unexpected index records %v", index.records)
	}
}

func TestFetchFileReusesCache(t *testing.T) {
	hits := 0
	f, _ := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/uc" || r.URL.Query().Get("id") != "file9" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = io.WriteString(w, "csv,data")
	}), nil)

	ref := "https://drive.google.com/file/d/file9/view"
	if _, err := f.Fetch(context.Background(), "2.3", ref); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if _, err := f.Fetch(context.Background(), "2.3", ref); err != nil {
		t.Fatalf("Fetch again: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected cache reuse, got %d hits", hits)
	}
}

func TestFetchDocumentExportsPDF(t *testing.T) {
	f, _ := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/document/d/doc7/export") || r.URL.Query().Get("format") != "pdf" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = io.WriteString(w, "%PDF")
	}), nil)

	path, err := f.Fetch(context.Background(), "3.1", "https://docs.google.com/document/d/doc7/edit")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.HasSuffix(path, ".pdf") {
		t.Fatalf("expected pdf extension, got %s", path)
	}
}

func TestFetchServerErrorIsTransient(t *testing.T) {
	f, _ := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}), nil)

	_, err := f.Fetch(context.Background(), "1.1", "https://docs.google.com/drawings/d/draw1/edit")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestFetchDisabledIsConfigError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Assets.Enabled = false
	f := New(cfg, nil, nil)

	_, err := f.Fetch(context.Background(), "1.1", "https://docs.google.com/drawings/d/draw1/edit")
	if !errors.Is(err, services.ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}
