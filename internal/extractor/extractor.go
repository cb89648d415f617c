// Package extractor turns source documents into ordered per-page text.
// PDF is the primary format; docx, txt, markdown and spreadsheet files
// are also accepted, with sheets standing in for pages where the format
// has none.
package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gtext "github.com/yuin/goldmark/text"

	"pdf-rag/internal/models"
)

// Extractor reads documents from disk. It is stateless; one instance
// serves any number of files.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract returns the ordered page texts of the document at path. Page
// numbers are 1-based. Pages without extractable text (scanned or
// image-only) come through with an empty Text rather than an error so
// the caller can skip them.
func (e *Extractor) Extract(path string) ([]models.PageText, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, path)
	}

	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return extractPDF(path, name)
	case ".docx":
		return extractDOCX(path, name)
	case ".md":
		return extractMarkdown(path, name)
	case ".txt":
		return extractText(path, name)
	case ".xlsx":
		return extractXLSX(path, name)
	case ".ods":
		return extractODS(path, name)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func extractPDF(path, name string) ([]models.PageText, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var pages []models.PageText
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Scanned or malformed pages yield no text but must not
			// abort the rest of the document.
			log.Warn().Err(err).Int("page", i).Str("file", name).Msg("No extractable text on page")
			text = ""
		}
		pages = append(pages, models.PageText{PDFName: name, PageNumber: i, Text: text})
	}
	return pages, nil
}

func extractDOCX(path, name string) ([]models.PageText, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	// DOCX has no page boundaries; the whole body is page 1.
	content := r.Editable().GetContent()
	return []models.PageText{{PDFName: name, PageNumber: 1, Text: content}}, nil
}

func extractText(path, name string) ([]models.PageText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return []models.PageText{{PDFName: name, PageNumber: 1, Text: string(data)}}, nil
}

// extractMarkdown parses the file with goldmark and collects the text
// nodes, so markup does not leak into chunks or embeddings.
func extractMarkdown(path, name string) ([]models.PageText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(gtext.NewReader(data))

	var buf strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(data))
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			buf.WriteString("\n\n")
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(buf.String())
	return []models.PageText{{PDFName: name, PageNumber: 1, Text: text}}, nil
}

func extractXLSX(path, name string) ([]models.PageText, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, err
	}

	var pages []models.PageText
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		// Sheets stand in for pages, 1-based.
		pages = append(pages, models.PageText{PDFName: name, PageNumber: sheetNum + 1, Text: text.String()})
	}
	return pages, nil
}

func extractODS(path, name string) ([]models.PageText, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []models.PageText
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		pages = append(pages, models.PageText{PDFName: name, PageNumber: sheetNum + 1, Text: text.String()})
	}
	return pages, nil
}
