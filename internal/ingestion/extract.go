// Package ingestion turns uploaded documents and raw form text into clean plain text.
package ingestion

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	"github.com/jonathan/resume-scorer/internal/apperr"
)

// Defaults
const (
	DefaultMaxUploadBytes = 5 * 1024 * 1024
	DefaultMaxPDFPages    = 20
)

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Extractor pulls text out of uploads.
type Extractor struct {
	MaxUploadBytes int64
	MaxPDFPages    int
}

// NewExtractor returns an Extractor; non-positive limits take the defaults.
func NewExtractor(maxUploadBytes int64, maxPDFPages int) *Extractor {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	if maxPDFPages <= 0 {
		maxPDFPages = DefaultMaxPDFPages
	}
	return &Extractor{MaxUploadBytes: maxUploadBytes, MaxPDFPages: maxPDFPages}
}

type format int

const (
	formatText format = iota
	formatPDF
	formatHTML
)

func detectFormat(u Upload) format {
	ct := strings.ToLower(strings.TrimSpace(u.ContentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	ext := strings.ToLower(filepath.Ext(u.Filename))

	switch {
	case ct == "application/pdf" || ct == "application/x-pdf" || ext == ".pdf":
		return formatPDF
	case ct == "text/html" || ct == "application/xhtml+xml" || ext == ".html" || ext == ".htm":
		return formatHTML
	default:
		return formatText
	}
}

// ExtractText returns the cleaned text of u.
func (e *Extractor) ExtractText(u Upload) (string, error) {
	name := u.Filename
	if name == "" {
		name = "upload"
	}
	if len(u.Data) == 0 {
		return "", apperr.Client(apperr.CodeEmptyUpload, fmt.Sprintf("Uploaded file '%s' is empty.", name))
	}
	if int64(len(u.Data)) > e.MaxUploadBytes {
		return "", apperr.TooLarge(apperr.CodeUploadTooLarge,
			fmt.Sprintf("Uploaded file '%s' is too large (>%d bytes).", name, e.MaxUploadBytes))
	}

	var (
		text string
		err  error
	)
	switch detectFormat(u) {
	case formatPDF:
		text, err = e.pdfText(u.Data)
		if err != nil {
			return "", apperr.Wrap(apperr.KindClient, apperr.CodeUndecodable,
				fmt.Sprintf("Failed to read PDF '%s'.", name), err)
		}
	case formatHTML:
		text, err = htmlText(u.Data)
		if err != nil {
			return "", apperr.Wrap(apperr.KindClient, apperr.CodeUndecodable,
				fmt.Sprintf("Failed to parse HTML '%s'.", name), err)
		}
	default:
		text = strings.ToValidUTF8(string(u.Data), "")
	}

	text = CleanText(text)
	if text == "" {
		return "", apperr.Client(apperr.CodeNoText, fmt.Sprintf("No readable text found in file '%s'.", name))
	}
	return text, nil
}

// pdfText reads at most MaxPDFPages pages. The PDF library panics on some malformed
// inputs, so panics are turned into errors.
func (e *Extractor) pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	pages := r.NumPage()
	if pages > e.MaxPDFPages {
		pages = e.MaxPDFPages
	}
	parts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		parts = append(parts, content)
	}
	return strings.Join(parts, "\n"), nil
}

// htmlText drops non-content elements and keeps a line break after block elements.
func htmlText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, template, head").Remove()
	doc.Find("p, div, li, br, tr, h1, h2, h3, h4, h5, h6, section, article").AppendHtml("\n")
	return doc.Text(), nil
}
