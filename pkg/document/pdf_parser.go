package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-tutoring-be/internal/entity"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

type textExtractor func(data []byte) (string, error)

// PDFParser extracts the text layer of a PDF and chunks it on word boundaries.
type PDFParser struct {
	rule    formatRule
	extract textExtractor
	chunker *Chunker
}

func NewPDFParser() *PDFParser {
	return &PDFParser{
		rule: formatRule{
			label:      "PDF",
			extensions: []string{".pdf"},
			mimeTypes:  []string{"application/pdf"},
			maxSize:    MaxPDFSize,
		},
		extract: extractPDFText,
		chunker: NewChunker(BoundaryWord),
	}
}

func (p *PDFParser) Validate(file File) ParserValidation {
	return p.rule.validate(file)
}

func (p *PDFParser) Parse(ctx context.Context, file File) (*entity.ParsedDocument, error) {
	data, err := file.ReadAll(ctx)
	if err != nil {
		return nil, newParseError(FileTypePDF, err)
	}
	if !mimetype.Detect(data).Is("application/pdf") {
		return nil, newParseError(FileTypePDF, errors.New("content is not a PDF document"))
	}

	text, err := p.extract(data)
	if err != nil {
		return nil, newParseError(FileTypePDF, err)
	}
	text = strings.TrimSpace(text)

	meta := newMetadata(file, text, "en", "pdf-text")
	pages := estimatePages(meta.WordCount)
	meta.PageCount = &pages

	return &entity.ParsedDocument{
		Text:     text,
		Metadata: meta,
		Chunks:   p.chunker.Chunk(text),
	}, nil
}

func extractPDFText(data []byte) (text string, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("corrupt pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read text layer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read text layer: %w", err)
	}
	return buf.String(), nil
}
