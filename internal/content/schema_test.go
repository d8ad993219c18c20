package content

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestSchema_AcceptsSeedAndSampleContent(t *testing.T) {
	schema, err := CompileSchema(filepath.Join("..", "..", "schemas", "expedition.schema.json"))
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}

	for _, d := range Seed() {
		raw, _ := json.Marshal(d)
		var v any
		_ = json.Unmarshal(raw, &v)
		if err := schema.Validate(v); err != nil {
			t.Fatalf("seed %s rejected by schema: %v", d.ID, err)
		}
	}

	sample, err := os.ReadFile(filepath.Join("..", "..", "configs", "expeditions", "coastal_fishing.json"))
	if err != nil {
		t.Fatalf("read sample content: %v", err)
	}
	var v any
	if err := json.Unmarshal(sample, &v); err != nil {
		t.Fatalf("sample content not JSON: %v", err)
	}
	if err := schema.Validate(v); err != nil {
		t.Fatalf("sample content rejected by schema: %v", err)
	}

	r := NewRegistry()
	rep := r.LoadRaw([][]byte{sample}, schema)
	if rep.Loaded != 1 || len(rep.Failed) != 0 {
		t.Fatalf("sample content failed to load: %v", rep.Failed)
	}
}

func TestSchema_RejectsMalformedRecord(t *testing.T) {
	schema, err := CompileSchema(filepath.Join("..", "..", "schemas", "expedition.schema.json"))
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}
	r := NewRegistry()
	rep := r.LoadRaw([][]byte{[]byte(`{"id":"expeditions:nope","unknown_field":true}`)}, schema)
	if rep.Loaded != 0 || len(rep.Failed) != 1 {
		t.Fatalf("malformed record must fail: %+v", rep)
	}
}
