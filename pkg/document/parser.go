package document

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/pkg/utils"
)

type FileType string

const (
	FileTypePDF     FileType = "pdf"
	FileTypeDOCX    FileType = "docx"
	FileTypeTXT     FileType = "txt"
	FileTypeUnknown FileType = "unknown"
)

const (
	megabyte = 1024 * 1024

	MaxPDFSize  int64 = 10 * megabyte
	MaxDOCXSize int64 = 10 * megabyte
	MaxTXTSize  int64 = 5 * megabyte
)

// Parser extracts text and metadata from one file format.
type Parser interface {
	Parse(ctx context.Context, file File) (*entity.ParsedDocument, error)
	Validate(file File) ParserValidation
}

type ParserValidation struct {
	Valid  bool
	Errors []string
}

type formatRule struct {
	label      string
	extensions []string
	mimeTypes  []string
	maxSize    int64
}

func (r formatRule) validate(file File) ParserValidation {
	var errs []string

	ext := strings.ToLower(filepath.Ext(file.Name()))
	mimeType := strings.ToLower(file.Type())

	matched := false
	for _, e := range r.extensions {
		if ext == e {
			matched = true
			break
		}
	}
	if !matched {
		for _, m := range r.mimeTypes {
			if strings.HasPrefix(mimeType, m) {
				matched = true
				break
			}
		}
	}
	if !matched {
		errs = append(errs, fmt.Sprintf("File must be a %s document", r.label))
	}
	if file.Size() > r.maxSize {
		errs = append(errs, fmt.Sprintf("%s file must be smaller than %s", r.label, FormatFileSize(r.maxSize)))
	}
	if file.Size() == 0 {
		errs = append(errs, "File is empty")
	}

	return ParserValidation{Valid: len(errs) == 0, Errors: errs}
}

func newMetadata(file File, text, language, method string) entity.DocumentMetadata {
	return entity.DocumentMetadata{
		OriginalName:     file.Name(),
		WordCount:        utils.CountWords(text),
		Language:         language,
		ExtractionMethod: method,
		ProcessedAt:      time.Now(),
	}
}

// estimatePages assumes roughly 500 words per page.
func estimatePages(wordCount int) int {
	pages := int(math.Ceil(float64(wordCount) / 500))
	if pages < 1 {
		return 1
	}
	return pages
}
