package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dominic0df/2023-amse/internal/httpclient"
)

func serveFile(t *testing.T, name string) *httptest.Server {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != BrowserUserAgent {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

func newGetter() *httpclient.Client {
	return httpclient.New(httpclient.Options{Timeout: 5 * time.Second, MaxAttempts: 1, UserAgent: BrowserUserAgent})
}

func TestFetch(t *testing.T) {
	server := serveFile(t, "moin.ttl.bz2")

	text, err := NewFetcher(newGetter(), server.URL, "").Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.HasPrefix(text, "@prefix moin: <http://moin-project.org/data/> .") {
		t.Errorf("unexpected document start: %q", text[:min(60, len(text))])
	}
	if !strings.Contains(text, `moino:duration "PT322M"`) {
		t.Errorf("document body missing:\n%s", text)
	}
}

func TestFetchLatin1(t *testing.T) {
	server := serveFile(t, "latin1.ttl.bz2")

	text, err := NewFetcher(newGetter(), server.URL, "iso-8859-1").Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(text, "Müllheim im Markgräflerland") {
		t.Errorf("latin-1 text not decoded: %q", text)
	}
}

func TestFetchNotCompressed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain text, not bzip2"))
	}))
	defer server.Close()

	if _, err := NewFetcher(newGetter(), server.URL, "").Fetch(context.Background()); err == nil {
		t.Error("expected decompression error")
	}
}

func TestDecodeUnknownEncoding(t *testing.T) {
	if _, err := Decode(strings.NewReader(""), "klingon-8"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}
