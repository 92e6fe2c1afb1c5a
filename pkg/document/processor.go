package document

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/pkg/utils"
)

const (
	largeFileWarningSize = 5 * megabyte
	longFileNameLimit    = 100

	logModule = "DocumentProcessor"
)

var (
	sizeLimits = map[FileType]int64{
		FileTypePDF:  MaxPDFSize,
		FileTypeDOCX: MaxDOCXSize,
		FileTypeTXT:  MaxTXTSize,
	}

	baseLatency = map[FileType]time.Duration{
		FileTypePDF:     3000 * time.Millisecond,
		FileTypeDOCX:    2000 * time.Millisecond,
		FileTypeTXT:     1000 * time.Millisecond,
		FileTypeUnknown: 5000 * time.Millisecond,
	}

	perMegabyteLatency = 500 * time.Millisecond
)

// Processor validates uploads and dispatches them to the matching format parser.
type Processor struct {
	parsers    map[FileType]Parser
	summarizer Summarizer
	logger     logger.ILogger
}

type ProcessorOption func(*Processor)

// WithParser replaces the parser registered for a file type.
func WithParser(fileType FileType, parser Parser) ProcessorOption {
	return func(p *Processor) {
		p.parsers[fileType] = parser
	}
}

// WithSummarizer plugs in a model-backed summarizer; GenerateSummary stays the fallback.
func WithSummarizer(s Summarizer) ProcessorOption {
	return func(p *Processor) {
		p.summarizer = s
	}
}

func NewProcessor(log logger.ILogger, opts ...ProcessorOption) *Processor {
	p := &Processor{
		parsers: map[FileType]Parser{
			FileTypePDF:  NewPDFParser(),
			FileTypeDOCX: NewDOCXParser(),
			FileTypeTXT:  NewTXTParser(),
		},
		logger: log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetFileType checks the extension first, then the MIME type.
func (p *Processor) GetFileType(file File) FileType {
	switch strings.ToLower(filepath.Ext(file.Name())) {
	case ".pdf":
		return FileTypePDF
	case ".docx":
		return FileTypeDOCX
	case ".txt", ".text":
		return FileTypeTXT
	}

	mimeType := strings.ToLower(file.Type())
	switch {
	case strings.Contains(mimeType, "pdf"):
		return FileTypePDF
	case strings.Contains(mimeType, "wordprocessingml"), strings.Contains(mimeType, "msword"):
		return FileTypeDOCX
	case strings.Contains(mimeType, "text/plain"):
		return FileTypeTXT
	}
	return FileTypeUnknown
}

func (p *Processor) ValidateFile(file File) entity.UploadValidationResult {
	errs := []string{}
	warnings := []string{}
	fileType := p.GetFileType(file)

	if file.Size() == 0 {
		errs = append(errs, "File is empty")
	}

	limit, supported := sizeLimits[fileType]
	if !supported {
		errs = append(errs, "Unsupported file type. Please upload a PDF, DOCX, or TXT file")
	} else if file.Size() > limit {
		errs = append(errs, fmt.Sprintf("File size exceeds the %s limit for %s files",
			FormatFileSize(limit), strings.ToUpper(string(fileType))))
	}

	if file.Size() > largeFileWarningSize {
		warnings = append(warnings, "Large file may take longer to process")
	}
	if utils.CharLen(file.Name()) > longFileNameLimit {
		warnings = append(warnings, "File name is very long and may be truncated")
	}

	return entity.UploadValidationResult{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
		FileInfo: entity.FileInfo{
			Name:          file.Name(),
			Size:          file.Size(),
			Type:          string(fileType),
			FormattedSize: FormatFileSize(file.Size()),
		},
	}
}

// ProcessDocument never returns a Go error; every failure becomes a result.
func (p *Processor) ProcessDocument(ctx context.Context, file File) (result entity.ProcessingResult) {
	validation := p.ValidateFile(file)
	if !validation.Valid {
		return entity.ProcessingResult{
			Success: false,
			Error:   strings.Join(validation.Errors, ", "),
		}
	}

	fileType := p.GetFileType(file)
	parser, ok := p.parsers[fileType]
	if !ok {
		return entity.ProcessingResult{
			Success: false,
			Error:   fmt.Sprintf("Unsupported file type: %s", fileType),
		}
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(logModule, "Parser panicked", map[string]interface{}{
				"file":  file.Name(),
				"type":  fileType,
				"panic": fmt.Sprint(r),
			})
			result = entity.ProcessingResult{
				Success: false,
				Error:   fmt.Sprintf("failed to parse %s: %v", fileType, r),
			}
		}
	}()

	start := time.Now()
	doc, err := parser.Parse(ctx, file)
	if err != nil {
		p.logger.Warn(logModule, "Document parsing failed", map[string]interface{}{
			"file":  file.Name(),
			"type":  fileType,
			"error": err.Error(),
		})
		return entity.ProcessingResult{Success: false, Error: err.Error()}
	}

	p.logger.Info(logModule, "Document processed", map[string]interface{}{
		"file":        file.Name(),
		"type":        fileType,
		"words":       doc.Metadata.WordCount,
		"chunks":      len(doc.Chunks),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return entity.ProcessingResult{Success: true, Document: doc}
}

// Summarize prefers the configured summarizer and falls back to GenerateSummary.
func (p *Processor) Summarize(ctx context.Context, text string) string {
	if p.summarizer != nil {
		summary, err := p.summarizer.Summarize(ctx, text)
		if err == nil && strings.TrimSpace(summary) != "" {
			return strings.TrimSpace(summary)
		}
		if err != nil {
			p.logger.Warn(logModule, "Summarizer failed, using extractive summary", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return p.GenerateSummary(text)
}

func (p *Processor) GenerateSummary(text string) string {
	return ExtractiveSummary(text)
}

// EstimateProcessingTime is a linear cost model for progress indicators only.
func (p *Processor) EstimateProcessingTime(file File) time.Duration {
	base, ok := baseLatency[p.GetFileType(file)]
	if !ok {
		base = baseLatency[FileTypeUnknown]
	}
	sizeMB := float64(file.Size()) / float64(megabyte)
	return base + time.Duration(sizeMB*float64(perMegabyteLatency))
}
