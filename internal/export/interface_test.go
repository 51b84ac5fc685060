package export

import (
	"testing"
)

func TestNewExporter(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		wantType string
		wantExt  string
		wantErr  bool
	}{
		{name: "jsonl format", format: "jsonl", wantType: "JSONLExporter", wantExt: "jsonl"},
		{name: "markdown format", format: "md", wantType: "MarkdownExporter", wantExt: "md"},
		{name: "markdown format long", format: "markdown", wantType: "MarkdownExporter", wantExt: "md"},
		{name: "yaml format", format: "yaml", wantType: "YAMLExporter", wantExt: "yaml"},
		{name: "yml alias", format: "yml", wantType: "YAMLExporter", wantExt: "yaml"},
		{name: "json format", format: "json", wantType: "JSONExporter", wantExt: "json"},
		{name: "sqlite format", format: "sqlite", wantType: "SQLiteExporter", wantExt: "db"},
		{name: "unsupported format", format: "xml", wantErr: true},
		{name: "empty format", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewExporter() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr {
				if exporter != nil {
					t.Errorf("NewExporter() returned exporter %T, want nil", exporter)
				}
				return
			}

			if got := exporter.Extension(); got != tt.wantExt {
				t.Errorf("Exporter.Extension() = %v, want %v", got, tt.wantExt)
			}

			var ok bool
			switch tt.wantType {
			case "JSONLExporter":
				_, ok = exporter.(*JSONLExporter)
			case "MarkdownExporter":
				_, ok = exporter.(*MarkdownExporter)
			case "YAMLExporter":
				_, ok = exporter.(*YAMLExporter)
			case "JSONExporter":
				_, ok = exporter.(*JSONExporter)
			case "SQLiteExporter":
				_, ok = exporter.(*SQLiteExporter)
			}
			if !ok {
				t.Errorf("Expected %s, got %T", tt.wantType, exporter)
			}
		})
	}
}

func TestFormatsAreSupported(t *testing.T) {
	for _, format := range Formats() {
		if _, err := NewExporter(format); err != nil {
			t.Errorf("NewExporter(%q) error = %v", format, err)
		}
	}
}
