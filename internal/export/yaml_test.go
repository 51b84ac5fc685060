package export

import (
	"bytes"
	"testing"

	"github.com/iksnae/taskchat/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	transcript := internal.CreateTestTranscript("test1")

	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(transcript, &buf); err != nil {
		t.Fatalf("YAMLExporter.Export() error = %v", err)
	}

	var decoded internal.Transcript
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid YAML: %v\n%s", err, buf.String())
	}
	if decoded.ID != "test1" {
		t.Errorf("decoded ID = %q, want test1", decoded.ID)
	}
	if len(decoded.Tasks) != 2 || !decoded.Tasks[1].Completed {
		t.Errorf("decoded tasks = %+v, want two with the second completed", decoded.Tasks)
	}
	if decoded.Messages[0].Role != internal.RoleUser {
		t.Errorf("decoded role = %q, want user", decoded.Messages[0].Role)
	}
}

func TestYAMLExporter_Extension(t *testing.T) {
	if got := (&YAMLExporter{}).Extension(); got != "yaml" {
		t.Errorf("YAMLExporter.Extension() = %v, want yaml", got)
	}
}
