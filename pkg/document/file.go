package document

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

// File is the opaque upload handle the pipeline consumes.
type File interface {
	Name() string
	Size() int64
	Type() string
	ReadAll(ctx context.Context) ([]byte, error)
}

type bytesFile struct {
	name     string
	mimeType string
	data     []byte
}

// NewBytesFile wraps in-memory content. An empty mimeType is sniffed from the content.
func NewBytesFile(name, mimeType string, data []byte) File {
	if mimeType == "" && len(data) > 0 {
		mimeType = mimetype.Detect(data).String()
	}
	return &bytesFile{name: name, mimeType: mimeType, data: data}
}

func (f *bytesFile) Name() string { return f.name }
func (f *bytesFile) Size() int64  { return int64(len(f.data)) }
func (f *bytesFile) Type() string { return f.mimeType }

func (f *bytesFile) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.data, nil
}

type multipartFile struct {
	header   *multipart.FileHeader
	mimeType string
}

// NewMultipartFile adapts an uploaded form file.
func NewMultipartFile(header *multipart.FileHeader) (File, error) {
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		src, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", err)
		}
		defer src.Close()

		mt, err := mimetype.DetectReader(src)
		if err == nil {
			mimeType = mt.String()
		}
	}
	return &multipartFile{header: header, mimeType: mimeType}, nil
}

func (f *multipartFile) Name() string { return f.header.Filename }
func (f *multipartFile) Size() int64  { return f.header.Size }
func (f *multipartFile) Type() string { return f.mimeType }

func (f *multipartFile) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := f.header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return io.ReadAll(src)
}
