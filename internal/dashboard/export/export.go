// Package export serialises a dashboard collection for download.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml". Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", &domain.ValidationError{Field: "format", Message: fmt.Sprintf("unsupported export format %q", s)}
	}
}

func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

func (f Format) Extension() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// Document is the exported envelope.
type Document[T any] struct {
	Kind       string             `json:"kind" yaml:"kind"`
	ExportedAt time.Time          `json:"exported_at" yaml:"exported_at"`
	Count      int                `json:"count" yaml:"count"`
	Items      []domain.Record[T] `json:"items" yaml:"items"`
}

func NewDocument[T any](kind string, items []domain.Record[T], at time.Time) Document[T] {
	if items == nil {
		items = []domain.Record[T]{}
	}
	return Document[T]{Kind: kind, ExportedAt: at.UTC(), Count: len(items), Items: items}
}

// Filename is "<kind>-<yyyymmdd>.<ext>".
func Filename(kind string, f Format, at time.Time) string {
	return fmt.Sprintf("%s-%s.%s", kind, at.UTC().Format("20060102"), f.Extension())
}

func Write[T any](w io.Writer, f Format, doc Document[T]) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml export: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json export: %w", err)
		}
		return nil
	}
}
