// Package source retrieves the compressed MOIN Turtle dump and returns it as text.
package source

import (
	"bytes"
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/encoding/htmlindex"
)

// BrowserUserAgent is sent with source downloads; the host rejects bare clients.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// Getter fetches a URL. *httpclient.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string, header http.Header) ([]byte, error)
}

// Fetcher downloads, decompresses and decodes the source document.
type Fetcher struct {
	getter   Getter
	url      string
	encoding string
}

// NewFetcher returns a Fetcher for url. encoding is any WHATWG label; empty means utf-8.
func NewFetcher(getter Getter, url, encoding string) *Fetcher {
	if encoding == "" {
		encoding = "utf-8"
	}
	return &Fetcher{getter: getter, url: url, encoding: encoding}
}

// Fetch returns the decompressed, decoded document.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	raw, err := f.getter.Get(ctx, f.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to download source: %w", err)
	}
	log.Info("source downloaded", "url", f.url, "bytes", len(raw))

	text, err := Decode(bytes.NewReader(raw), f.encoding)
	if err != nil {
		return "", err
	}
	log.Info("source decompressed", "chars", len(text), "lines", strings.Count(text, "\n"))
	return text, nil
}

// Decode decompresses a bzip2 stream and decodes it from the named charset.
func Decode(r io.Reader, encoding string) (string, error) {
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return "", fmt.Errorf("unknown source encoding %q: %w", encoding, err)
	}

	decoded := enc.NewDecoder().Reader(bzip2.NewReader(r))
	data, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("failed to decompress source: %w", err)
	}
	return string(data), nil
}
