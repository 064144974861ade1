// Package client implements the archive download client used by archivectl:
// it requests a document bundle from the API, validates the response, and
// saves the ZIP with a filesystem-safe name.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docarchive/internal/archive"
	"docarchive/internal/model"
)

var (
	// ErrEmptyDocument is reported by the pre-check before any network call.
	ErrEmptyDocument = errors.New("document has no papers")
	// ErrUnexpectedContentType marks a response whose declared content type
	// is not the archive MIME type, regardless of HTTP status.
	ErrUnexpectedContentType = errors.New("invalid response format")
)

// Notifier receives the user-facing outcome of a download. Every download
// attempt ends in exactly one Success or Failure call; nothing is swallowed.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// Downloader issues bundle requests against the archive API.
type Downloader struct {
	baseURL  string
	http     *http.Client
	notifier Notifier
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient replaces the default traced HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Downloader) { d.http = c }
}

// New creates a Downloader against baseURL (e.g. "http://localhost:8080").
func New(baseURL string, n Notifier, opts ...Option) *Downloader {
	d := &Downloader{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		notifier: n,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FetchDocument retrieves a document with its paper list, as needed for the
// pre-check before downloading.
func (d *Downloader) FetchDocument(ctx context.Context, id string) (*model.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/api/documents/"+id, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errorMessage(resp.Body, "could not fetch document"))
	}
	var doc model.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// Download bundles and saves a document's papers as a ZIP file under destDir,
// returning the saved path. The document's paper list is pre-checked locally
// so an empty document never costs a round-trip. The notifier is always
// informed of the outcome.
func (d *Downloader) Download(ctx context.Context, doc *model.Document, destDir string) (string, error) {
	if len(doc.Papers) == 0 {
		d.notifier.Failure("document is empty: there are no papers to download")
		return "", ErrEmptyDocument
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/api/documents/"+doc.ID+"/download", nil)
	if err != nil {
		d.notifier.Failure("download failed: " + err.Error())
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		d.notifier.Failure("download failed: " + err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := errorMessage(resp.Body, "download failed")
		d.notifier.Failure(msg)
		return "", errors.New(msg)
	}

	// A misconfigured proxy can answer 200 with an HTML error page; the
	// declared content type is authoritative, not the status.
	ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if ct != archive.MIMEType {
		d.notifier.Failure("invalid response format: expected " + archive.MIMEType)
		return "", ErrUnexpectedContentType
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		d.notifier.Failure("download failed: " + err.Error())
		return "", err
	}

	path := filepath.Join(destDir, archive.SanitizeFilename(doc.Title)+".zip")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		d.notifier.Failure("could not save archive: " + err.Error())
		return "", err
	}

	d.notifier.Success("saved " + path)
	return path, nil
}

// errorMessage extracts the message field from a JSON error body, falling
// back to the given generic message.
func errorMessage(r io.Reader, fallback string) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r).Decode(&body); err == nil && body.Message != "" {
		return body.Message
	}
	return fallback
}
