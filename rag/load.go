package rag

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// Loader parses a file at the given path into one or more Documents.
// Implementations exist per content type and are routed to by the
// DocumentLoader based on the declared MIME type.
type Loader interface {
	Load(ctx context.Context, filePath string) ([]Document, error)
}

// DocumentLoader converts a raw source (file path plus declared content
// type, or a URL) into a sequence of Documents with provenance metadata.
type DocumentLoader struct {
	loaders map[string]Loader
	client  *http.Client
	logger  Logger
}

// LoaderOption configures a DocumentLoader.
type LoaderOption func(*DocumentLoader)

// WithLoaderLogger sets the logger used by the DocumentLoader.
func WithLoaderLogger(logger Logger) LoaderOption {
	return func(d *DocumentLoader) {
		d.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used for URL ingestion.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(d *DocumentLoader) {
		d.client = client
	}
}

// Loader routing keys. Declared content types are normalized onto these.
const (
	loaderPDF  = "pdf"
	loaderDocx = "docx"
	loaderText = "text"
)

// NewDocumentLoader creates a DocumentLoader with the default per-format
// loaders registered.
func NewDocumentLoader(opts ...LoaderOption) *DocumentLoader {
	d := &DocumentLoader{
		loaders: map[string]Loader{
			loaderPDF:  &PDFLoader{},
			loaderDocx: &DocxLoader{},
			loaderText: &TextLoader{},
		},
		client: http.DefaultClient,
		logger: NopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AddLoader registers a loader under the given routing key, replacing any
// existing one.
func (d *DocumentLoader) AddLoader(key string, loader Loader) {
	d.loaders[key] = loader
}

// Load parses the file at sourceRef according to its declared content type:
//
//   - application/pdf: one Document per page, with page-number metadata
//   - types containing "officedocument": full-text DOCX extraction
//   - text/plain: the whole file as one Document
//   - application/octet-stream: best effort, treated as plain text
//   - empty: the content type is sniffed from the file itself
//
// Any other declared type yields an empty slice and no error, so an
// unsupported file silently contributes nothing to ingestion.
func (d *DocumentLoader) Load(ctx context.Context, sourceRef, declaredType string) ([]Document, error) {
	key, ok := d.routeContentType(sourceRef, declaredType)
	if !ok {
		d.logger.Warn("unsupported content type, ingesting nothing", "source", sourceRef, "type", declaredType)
		return nil, nil
	}
	loader, ok := d.loaders[key]
	if !ok {
		d.logger.Warn("no loader registered", "key", key, "source", sourceRef)
		return nil, nil
	}
	d.logger.Debug("loading document", "source", sourceRef, "loader", key)
	docs, err := loader.Load(ctx, sourceRef)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", sourceRef, err)
	}
	return docs, nil
}

func (d *DocumentLoader) routeContentType(sourceRef, declaredType string) (string, bool) {
	switch {
	case declaredType == "application/pdf":
		return loaderPDF, true
	case strings.Contains(declaredType, "officedocument"):
		return loaderDocx, true
	case declaredType == "text/plain", declaredType == "application/octet-stream":
		return loaderText, true
	case declaredType == "":
		return d.sniffContentType(sourceRef)
	default:
		return "", false
	}
}

// sniffContentType detects the content type from the file itself. Used when
// the caller did not declare one, e.g. CLI ingestion without a browser
// supplying the MIME type.
func (d *DocumentLoader) sniffContentType(sourceRef string) (string, bool) {
	mtype, err := mimetype.DetectFile(sourceRef)
	if err != nil {
		d.logger.Warn("content type detection failed", "source", sourceRef, "error", err)
		return "", false
	}
	switch {
	case mtype.Is("application/pdf"):
		return loaderPDF, true
	case strings.Contains(mtype.String(), "officedocument"):
		return loaderDocx, true
	case strings.HasPrefix(mtype.String(), "text/"):
		return loaderText, true
	default:
		d.logger.Warn("unrecognized sniffed type", "source", sourceRef, "type", mtype.String())
		return "", false
	}
}

var titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// LoadURL fetches the given HTTP(S) URL, strips the markup and returns a
// single Document whose metadata records the source URL and page title.
// Every failure mode (DNS, connection, HTTP status, conversion) comes back
// as a *FetchError so callers can surface it and carry on.
func (d *DocumentLoader) LoadURL(ctx context.Context, url string) ([]Document, error) {
	d.logger.Debug("fetching url", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	raw := string(body)
	metadata := map[string]interface{}{"source": url}

	text := raw
	if isHTML(resp.Header.Get("Content-Type"), raw) {
		if m := titleRe.FindStringSubmatch(raw); m != nil {
			metadata["title"] = strings.TrimSpace(m[1])
		}
		converted, err := htmltomarkdown.ConvertString(raw)
		if err != nil {
			return nil, &FetchError{URL: url, Err: fmt.Errorf("strip markup: %w", err)}
		}
		text = converted
	}

	d.logger.Debug("fetched url", "url", url, "bytes", len(body))
	return []Document{{Content: text, Metadata: metadata}}, nil
}

func isHTML(contentType, body string) bool {
	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(body))
	if len(head) > 256 {
		head = head[:256]
	}
	return strings.Contains(head, "<!doctype html") || strings.Contains(head, "<html")
}

// PDFLoader extracts text from PDF files page by page, producing one
// Document per page so page-level provenance survives chunking.
type PDFLoader struct{}

// Load implements Loader for PDF files.
func (p *PDFLoader) Load(ctx context.Context, filePath string) ([]Document, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	reader, err := pdf.NewReader(file, fileInfo.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	numPages := reader.NumPage()
	docs := make([]Document, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		docs = append(docs, Document{
			Content: content,
			Metadata: map[string]interface{}{
				"source":      filePath,
				"page":        i,
				"total_pages": numPages,
			},
		})
	}
	return docs, nil
}

// DocxLoader extracts the full text of an Office Open XML word processing
// document. A .docx file is a zip archive; the body text lives in
// word/document.xml as runs of <w:t> elements grouped into <w:p> paragraphs.
type DocxLoader struct{}

// Load implements Loader for .docx files.
func (l *DocxLoader) Load(ctx context.Context, filePath string) ([]Document, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx archive: %w", err)
	}
	defer r.Close()

	var docXML io.ReadCloser
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open document.xml: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("not a docx file: word/document.xml missing")
	}
	defer docXML.Close()

	content, err := extractDocxText(docXML)
	if err != nil {
		return nil, fmt.Errorf("failed to extract docx text: %w", err)
	}

	return []Document{{
		Content:  content,
		Metadata: map[string]interface{}{"source": filePath},
	}}, nil
}

func extractDocxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

// TextLoader reads a whole file as one plain-text Document. It also backs
// the application/octet-stream case, where the content is treated as text
// on a best-effort basis.
type TextLoader struct{}

// Load implements Loader for plain text files.
func (l *TextLoader) Load(ctx context.Context, filePath string) ([]Document, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return []Document{{
		Content:  string(content),
		Metadata: map[string]interface{}{"source": filePath},
	}}, nil
}
