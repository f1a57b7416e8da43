package serializer

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	if err := os.WriteFile(path, []byte("name: vault\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := ReadSource(path, "")
	if err != nil {
		t.Fatalf("ReadSource failed: %v", err)
	}
	if string(data) != "name: vault\n" {
		t.Errorf("unexpected data: %q", data)
	}
}

func TestReadSourceFileMissing(t *testing.T) {
	_, err := ReadSource(filepath.Join(t.TempDir(), "missing.yaml"), "")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestReadSourceHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("name: remote\n"))
	}))
	defer srv.Close()

	data, err := ReadSource(srv.URL, "")
	if err != nil {
		t.Fatalf("ReadSource failed: %v", err)
	}
	if string(data) != "name: remote\n" {
		t.Errorf("unexpected data: %q", data)
	}
}

func TestReadSourceHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := ReadSource(srv.URL, "")
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestFromFileDecodesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	if err := os.WriteFile(path, []byte("name: vault\nvalue: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FromFile[releaseSummary](path)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if got.Name != "vault" || got.Value != 7 {
		t.Errorf("unexpected decode: %+v", got)
	}
}

func TestFromFileDecodesJSON(t *testing.T) {
	// JSON is a YAML subset, so JSON sources decode through the same
	// path.
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(`{"name":"vault","value":7}`), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FromFile[releaseSummary](path)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if got.Name != "vault" || got.Value != 7 {
		t.Errorf("unexpected decode: %+v", got)
	}
}

func TestFromFileBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	if err := os.WriteFile(path, []byte(":\t not yaml ["), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := FromFile[releaseSummary](path)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !strings.Contains(err.Error(), "failed to decode") {
		t.Errorf("unexpected error message: %v", err)
	}
}
