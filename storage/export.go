package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"intake/model"
)

// Exporter writes entities in a serialization format.
type Exporter interface {
	Export(w io.Writer, entities []model.Entity) error
	Extension() string
}

// NewExporter returns the exporter for "json" or "yaml".
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return JSONExporter{}, nil
	case "yaml", "yml":
		return YAMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (use json or yaml)", format)
	}
}

type JSONExporter struct{}

func (JSONExporter) Extension() string { return ".json" }

func (JSONExporter) Export(w io.Writer, entities []model.Entity) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entities); err != nil {
		return fmt.Errorf("failed to encode entities: %w", err)
	}
	return nil
}

type YAMLExporter struct{}

func (YAMLExporter) Extension() string { return ".yaml" }

func (YAMLExporter) Export(w io.Writer, entities []model.Entity) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entities); err != nil {
		return fmt.Errorf("failed to encode entities: %w", err)
	}
	return enc.Close()
}

// GenerateExportPath builds a timestamped export file name in dir.
func GenerateExportPath(dir, name string, exp Exporter) string {
	name = SanitizeFilename(name, "entities")
	stamp := time.Now().Format("2006-01-02-150405")
	return filepath.Join(dir, fmt.Sprintf("intake-%s-%s%s", name, stamp, exp.Extension()))
}

// ExportToFile writes entities to path, creating parent directories.
func ExportToFile(path string, entities []model.Entity, exp Exporter) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := exp.Export(f, entities); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	return nil
}
