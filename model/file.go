package model

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// File is an in-memory file attachment.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Size returns the attachment size in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

func (f File) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(f.MIME), "image/")
}

// LoadFile reads a file from disk and determines its MIME type from the
// extension, falling back to content sniffing.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read file: %w", err)
	}
	return NewFile(filepath.Base(path), data), nil
}

// NewFile wraps raw bytes as a File, detecting the MIME type.
func NewFile(name string, data []byte) File {
	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if mt == "" {
		mt = http.DetectContentType(data)
	}
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return File{Name: name, MIME: mt, Data: data}
}
