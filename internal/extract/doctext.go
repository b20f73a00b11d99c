package extract

import (
	"bytes"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/dslipak/pdf"
)

// TextForDocument extracts readable text from an embedded document for
// the RAG dataset export. PDF content goes through a PDF text reader;
// plain-text formats pass through. Binary or unreadable content yields
// an empty string, never an error.
func TextForDocument(filename string, data []byte) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return pdfText(data)
	case ".txt", ".md", ".csv", ".json", ".xml", ".html":
		if utf8.Valid(data) {
			return string(data)
		}
		return ""
	default:
		return ""
	}
}

// pdfText pulls plain text from a PDF held in memory. Encrypted or
// malformed PDFs yield an empty string.
func pdfText(data []byte) (text string) {
	// The PDF reader panics on some malformed cross-reference tables.
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return ""
	}
	return buf.String()
}

// typeForFilename maps a filename extension to a coarse document type.
func typeForFilename(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".txt", ".md":
		return "text/plain"
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".xml":
		return "application/xml"
	case ".html":
		return "text/html"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
