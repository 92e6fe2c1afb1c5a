package document

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"ai-tutoring-be/internal/entity"
)

const docxBodyPart = "word/document.xml"

// DOCXParser reads the OOXML body and chunks it on paragraph boundaries.
type DOCXParser struct {
	rule    formatRule
	chunker *Chunker
}

func NewDOCXParser() *DOCXParser {
	return &DOCXParser{
		rule: formatRule{
			label:      "DOCX",
			extensions: []string{".docx"},
			mimeTypes: []string{
				"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
				"application/msword",
			},
			maxSize: MaxDOCXSize,
		},
		chunker: NewChunker(BoundaryParagraph),
	}
}

func (p *DOCXParser) Validate(file File) ParserValidation {
	return p.rule.validate(file)
}

func (p *DOCXParser) Parse(ctx context.Context, file File) (*entity.ParsedDocument, error) {
	data, err := file.ReadAll(ctx)
	if err != nil {
		return nil, newParseError(FileTypeDOCX, err)
	}

	paragraphs, err := readDocxParagraphs(data)
	if err != nil {
		return nil, newParseError(FileTypeDOCX, err)
	}
	text := strings.TrimSpace(strings.Join(paragraphs, "\n\n"))

	return &entity.ParsedDocument{
		Text:     text,
		Metadata: newMetadata(file, text, "en", "docx-xml"),
		Chunks:   p.chunker.Chunk(text),
	}, nil
}

func readDocxParagraphs(data []byte) ([]string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}

	var body *zip.File
	for _, f := range archive.File {
		if f.Name == docxBodyPart {
			body = f
			break
		}
	}
	if body == nil {
		return nil, errors.New("missing " + docxBodyPart)
	}

	rc, err := body.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", docxBodyPart, err)
	}
	defer rc.Close()

	return decodeParagraphs(rc)
}

// decodeParagraphs walks w:p elements collecting w:t runs, tabs and breaks.
func decodeParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", docxBodyPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if p := strings.TrimSpace(current.String()); p != "" {
					paragraphs = append(paragraphs, p)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
