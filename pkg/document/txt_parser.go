package document

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"ai-tutoring-be/internal/entity"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const (
	EncodingUTF8        = "utf-8"
	EncodingUTF16LE     = "utf-16le"
	EncodingUTF16BE     = "utf-16be"
	EncodingWindows1252 = "windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// TXTParser decodes plain text and chunks it on line boundaries.
type TXTParser struct {
	rule    formatRule
	chunker *Chunker
}

func NewTXTParser() *TXTParser {
	return &TXTParser{
		rule: formatRule{
			label:      "TXT",
			extensions: []string{".txt", ".text"},
			mimeTypes:  []string{"text/plain"},
			maxSize:    MaxTXTSize,
		},
		chunker: NewChunker(BoundaryLine),
	}
}

func (p *TXTParser) Validate(file File) ParserValidation {
	return p.rule.validate(file)
}

func (p *TXTParser) Parse(ctx context.Context, file File) (*entity.ParsedDocument, error) {
	data, err := file.ReadAll(ctx)
	if err != nil {
		return nil, newParseError(FileTypeTXT, err)
	}

	text, enc, err := decodeText(data)
	if err != nil {
		return nil, newParseError(FileTypeTXT, err)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)

	meta := newMetadata(file, text, DetectLanguage(text), "plain-text")
	meta.Encoding = enc

	return &entity.ParsedDocument{
		Text:     text,
		Metadata: meta,
		Chunks:   p.chunker.Chunk(text),
	}, nil
}

func decodeText(data []byte) (string, string, error) {
	var (
		dec  *encoding.Decoder
		name string
	)

	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), EncodingUTF8, nil
	case bytes.HasPrefix(data, bomUTF16LE):
		dec = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		name = EncodingUTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		dec = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		name = EncodingUTF16BE
	case utf8.Valid(data):
		return string(data), EncodingUTF8, nil
	default:
		dec = charmap.Windows1252.NewDecoder()
		name = EncodingWindows1252
	}

	out, err := dec.Bytes(data)
	if err != nil {
		return "", "", fmt.Errorf("decode %s: %w", name, err)
	}
	return string(out), name, nil
}
