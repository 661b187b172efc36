// Package extract converts uploaded résumé documents (PDF, DOC, DOCX)
// into plain text for the profile extraction pipeline.
package extract

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxUploadSize is the document size cap enforced at the API boundary.
const MaxUploadSize = 5 * 1024 * 1024 // 5MB

// Media types accepted for upload.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOC  = "application/msword"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Text extracts plain text from a document, choosing the decoder from the
// filename extension. Returns UnsupportedFormatError, CorruptDocumentError
// or EmptyDocumentError.
func Text(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return fromPDF(data)
	case ".docx":
		return fromDOCX(data)
	case ".doc":
		return fromDOC(data)
	default:
		return "", &UnsupportedFormatError{Format: ext}
	}
}

// TextByMediaType extracts plain text choosing the decoder from a declared
// media type instead of the filename.
func TextByMediaType(mediaType string, data []byte) (string, error) {
	switch mediaType {
	case MediaTypePDF:
		return fromPDF(data)
	case MediaTypeDOCX:
		return fromDOCX(data)
	case MediaTypeDOC:
		return fromDOC(data)
	default:
		return "", &UnsupportedFormatError{Format: mediaType}
	}
}

func fromPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &CorruptDocumentError{Format: "PDF", Cause: err}
	}
	rs, err := r.GetPlainText()
	if err != nil {
		return "", &CorruptDocumentError{Format: "PDF", Cause: err}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return "", &CorruptDocumentError{Format: "PDF", Cause: err}
	}
	return finish("PDF", buf.String())
}

var xmlTagRe = regexp.MustCompile(`<[^>]+>`)

func fromDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &CorruptDocumentError{Format: "DOCX", Cause: err}
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", &CorruptDocumentError{Format: "DOCX", Cause: err}
			}
			docXML, err = io.ReadAll(rc)
			_ = rc.Close()
			if err != nil {
				return "", &CorruptDocumentError{Format: "DOCX", Cause: err}
			}
			break
		}
	}
	if len(docXML) == 0 {
		return "", &EmptyDocumentError{Format: "DOCX"}
	}

	// Paragraph and tab markers become whitespace before tags are dropped.
	text := string(docXML)
	text = strings.ReplaceAll(text, "</w:p>", "\n")
	text = strings.ReplaceAll(text, "<w:tab/>", "\t")
	text = xmlTagRe.ReplaceAllString(text, " ")

	return finish("DOCX", text)
}

// fromDOC handles the legacy binary Word format by scanning for printable
// runs. Crude, but legacy .doc uploads are rare and a best-effort text
// stream is enough for the extraction heuristics downstream.
func fromDOC(data []byte) (string, error) {
	if len(data) == 0 {
		return "", &EmptyDocumentError{Format: "DOC"}
	}

	var sb strings.Builder
	var run []byte
	flush := func() {
		// Runs shorter than 4 bytes are almost always binary noise.
		if len(run) >= 4 {
			sb.Write(run)
			sb.WriteByte('\n')
		}
		run = run[:0]
	}
	for _, b := range data {
		if b >= 0x20 && b < 0x7F || b == '\t' {
			run = append(run, b)
		} else {
			flush()
		}
	}
	flush()

	return finish("DOC", sb.String())
}

func finish(format, text string) (string, error) {
	text = CleanText(text)
	if text == "" {
		return "", &EmptyDocumentError{Format: format}
	}
	return text, nil
}
