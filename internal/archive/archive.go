// Package archive builds the ZIP bundles served by the document download
// endpoint and holds the filename rules shared by server and client.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"

	"docarchive/internal/model"
)

// MIMEType is the content type of every bundle produced by Build.
const MIMEType = "application/zip"

// Entry is one (name, content) unit inside the produced archive.
type Entry struct {
	Name    string
	Content []byte
}

// Build encodes the entries, in order, into a single ZIP buffer using the
// format's default deflate compression. Duplicate names are written as-is;
// deduplication is left to callers. A zero-entry input yields a valid empty
// archive.
func Build(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range entries {
		f, err := zw.Create(e.Name)
		if err != nil {
			return nil, fmt.Errorf("create archive entry %q: %w", e.Name, err)
		}
		if _, err := f.Write(e.Content); err != nil {
			return nil, fmt.Errorf("write archive entry %q: %w", e.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// EntryName derives the archive entry name for a paper:
// "{title}.{file_type}", falling back to "paper_{id}" when the paper has no
// title and to "txt" when it has no file type.
func EntryName(p model.Paper) string {
	name := p.Title
	if name == "" {
		name = "paper_" + p.ID
	}
	ext := p.FileType
	if ext == "" {
		ext = "txt"
	}
	return name + "." + ext
}

// unsafeFilenameRunes matches every rune that is not an ASCII letter, an
// ASCII digit, or part of the Arabic Unicode block (U+0600-U+06FF).
var unsafeFilenameRunes = regexp.MustCompile(`[^A-Za-z0-9\x{0600}-\x{06FF}]`)

// SanitizeFilename replaces every rune outside [A-Za-z0-9] and the Arabic
// block with "_". The result is safe for Content-Disposition headers and
// local filesystems, and sanitizing is idempotent.
func SanitizeFilename(name string) string {
	return unsafeFilenameRunes.ReplaceAllString(name, "_")
}
