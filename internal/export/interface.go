package export

import (
	"fmt"
	"io"

	"github.com/iksnae/taskchat/internal"
)

// Exporter writes a session transcript in one format
type Exporter interface {
	Export(transcript *internal.Transcript, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "sqlite", "db":
		return &SQLiteExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json, sqlite)", format)
	}
}

// Formats lists the canonical format names accepted by NewExporter
func Formats() []string {
	return []string{"json", "jsonl", "md", "yaml", "sqlite"}
}
