package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/pkg/document"

	"github.com/fatih/color"
)

func main() {
	if len(os.Args) < 2 {
		color.Red("Usage: inspect_document <file>")
		os.Exit(1)
	}

	path := os.Args[1]
	data, err := os.ReadFile(path)
	if err != nil {
		color.Red("Failed to read %s: %v", path, err)
		os.Exit(1)
	}

	processor := document.NewProcessor(logger.NewNopLogger())
	file := document.NewBytesFile(filepath.Base(path), "", data)

	color.Cyan("Inspecting %s (%s, %s)", file.Name(), file.Type(), document.FormatFileSize(file.Size()))

	validation := processor.ValidateFile(file)
	for _, w := range validation.Warnings {
		color.Yellow("warning: %s", w)
	}
	if !validation.Valid {
		for _, e := range validation.Errors {
			color.Red("error: %s", e)
		}
		os.Exit(1)
	}
	color.Green("Detected type: %s, estimated processing: %s",
		processor.GetFileType(file), processor.EstimateProcessingTime(file))

	result := processor.ProcessDocument(context.Background(), file)
	if !result.Success {
		color.Red("Processing failed: %s", result.Error)
		os.Exit(1)
	}

	meta := result.Document.Metadata
	color.Yellow("\nMetadata")
	fmt.Printf("  words:    %d\n", meta.WordCount)
	fmt.Printf("  language: %s\n", meta.Language)
	fmt.Printf("  method:   %s\n", meta.ExtractionMethod)
	if meta.PageCount != nil {
		fmt.Printf("  pages:    %d\n", *meta.PageCount)
	}

	color.Yellow("\nChunks (%d)", len(result.Document.Chunks))
	for _, c := range result.Document.Chunks {
		color.Cyan("#%d [%s] confidence=%.2f chars=%d", c.ChunkIndex, c.ContentType, c.Metadata.Confidence, len(c.Content))
		fmt.Println(preview(c.Content, 160))
	}

	color.Yellow("\nSummary")
	fmt.Println(processor.Summarize(context.Background(), result.Document.Text))
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
