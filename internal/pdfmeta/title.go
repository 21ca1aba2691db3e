// Package pdfmeta reads display metadata from fetched PDF documents.
package pdfmeta

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// illegalChars matches characters that must not appear in filenames.
var illegalChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// Title extracts the embedded /Title from the PDF Info dictionary at path
// and sanitizes it for use as a filename.
//
// ok=false covers every failure mode: unreadable or malformed files,
// missing Info dictionary, missing or non-string /Title, and titles that
// are empty after sanitization. Parse failures are swallowed, never
// propagated; a missing display name is not a sync failure.
func Title(path string) (title string, ok bool) {
	// The underlying parser panics on some malformed inputs.
	defer func() {
		if recover() != nil {
			title, ok = "", false
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	v := r.Trailer().Key("Info").Key("Title")
	if v.Kind() != pdf.String {
		return "", false
	}

	title = Sanitize(v.Text())
	if title == "" {
		return "", false
	}
	return title, true
}

// Sanitize strips characters illegal in filenames and surrounding
// whitespace.
func Sanitize(s string) string {
	return strings.TrimSpace(illegalChars.ReplaceAllString(s, ""))
}
