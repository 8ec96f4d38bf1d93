// Package loader reads supported document formats into plain text.
package loader

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"docchat/internal/domain"
	"docchat/internal/errs"
)

// FileLoader produces Documents from .txt, .pdf and .csv files.
type FileLoader struct{}

func New() *FileLoader { return &FileLoader{} }

// Load reads a single file. Unknown extensions fail with an
// UnsupportedFormatError so callers can skip the file and continue.
func (l *FileLoader) Load(path string) (domain.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt":
		return l.loadText(path)
	case ".pdf":
		return l.loadPDF(path)
	case ".csv":
		return l.loadCSV(path)
	default:
		return domain.Document{}, &errs.UnsupportedFormatError{Path: path, Ext: ext}
	}
}

// Skipped records a document that could not be loaded.
type Skipped struct {
	Path string
	Err  error
}

// LoadAll loads every path it can, absorbing per-file failures into the
// skip list so one bad document does not abort the batch.
func (l *FileLoader) LoadAll(paths []string) ([]domain.Document, []Skipped) {
	var docs []domain.Document
	var skipped []Skipped
	for _, p := range paths {
		doc, err := l.Load(p)
		if err != nil {
			skipped = append(skipped, Skipped{Path: p, Err: err})
			continue
		}
		docs = append(docs, doc)
	}
	return docs, skipped
}

func (l *FileLoader) loadText(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}
	content := string(data)
	return domain.Document{
		Content:  content,
		Metadata: l.metadata(path, "txt", content, nil),
	}, nil
}

func (l *FileLoader) loadPDF(path string) (domain.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	// One page at a time, pages separated by a blank line.
	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return domain.Document{}, fmt.Errorf("extracting pdf page %d of %s: %w", i, path, err)
		}
		if t := strings.TrimSpace(text); t != "" {
			pages = append(pages, t)
		}
	}

	content := strings.Join(pages, "\n\n")
	return domain.Document{
		Content: content,
		Metadata: l.metadata(path, "pdf", content, map[string]any{
			"num_pages": r.NumPage(),
		}),
	}, nil
}

func (l *FileLoader) loadCSV(path string) (domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Document{}, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return domain.Document{}, fmt.Errorf("reading csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return domain.Document{
			Content:  "",
			Metadata: l.metadata(path, "csv", "", map[string]any{"num_rows": 0, "num_columns": 0}),
		}, nil
	}

	// First record is the header; each data row becomes "col: val | col: val".
	header := records[0]
	lines := make([]string, 0, len(records)-1)
	for _, row := range records[1:] {
		fields := make([]string, 0, len(row))
		for i, val := range row {
			name := fmt.Sprintf("col%d", i)
			if i < len(header) {
				name = header[i]
			}
			fields = append(fields, name+": "+val)
		}
		lines = append(lines, strings.Join(fields, " | "))
	}
	content := strings.Join(lines, "\n")

	return domain.Document{
		Content: content,
		Metadata: l.metadata(path, "csv", content, map[string]any{
			"num_rows":    len(records) - 1,
			"num_columns": len(header),
			"columns":     header,
		}),
	}, nil
}

// metadata assembles provenance metadata, canonicalizing any non-scalar
// extras (such as a CSV column list) to their string form.
func (l *FileLoader) metadata(path, fileType, content string, extra map[string]any) domain.Metadata {
	raw := map[string]any{
		"document_id": uuid.NewString(),
		"source":      path,
		"file_type":   fileType,
		"total_chars": utf8.RuneCountInString(content),
	}
	for k, v := range extra {
		raw[k] = v
	}
	meta, coerced := domain.Canonicalize(raw)
	if len(coerced) > 0 {
		log.Printf("loader: coerced non-scalar metadata to string for %s: %s", path, strings.Join(coerced, ", "))
	}
	return meta
}
