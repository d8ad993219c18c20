package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// EntryFailure records why one raw content record was rejected.
type EntryFailure struct {
	ExpeditionID string   `json:"expedition_id"`
	Reasons      []string `json:"reasons"`
}

// Report is the outcome of a bulk load: per-entry recovery, never
// all-or-nothing.
type Report struct {
	Loaded int            `json:"loaded"`
	Failed []EntryFailure `json:"failed,omitempty"`
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "expedition content load: %d loaded, %d failed\n", r.Loaded, len(r.Failed))
	for _, f := range r.Failed {
		id := f.ExpeditionID
		if id == "" {
			id = "<unknown>"
		}
		fmt.Fprintf(&b, "  %s: %s\n", id, strings.Join(f.Reasons, "; "))
	}
	return b.String()
}

// LoadRaw folds an ordered list of raw definition records into the
// registry. Malformed entries are skipped and reported, and loading
// continues with the rest. schema may be nil to skip structural
// validation.
func (r *Registry) LoadRaw(records [][]byte, schema *jsonschema.Schema) Report {
	var rep Report
	for _, raw := range records {
		id, reasons := r.loadOne(raw, schema)
		if len(reasons) > 0 {
			rep.Failed = append(rep.Failed, EntryFailure{ExpeditionID: id, Reasons: reasons})
			continue
		}
		rep.Loaded++
	}
	return rep
}

func (r *Registry) loadOne(raw []byte, schema *jsonschema.Schema) (id string, reasons []string) {
	var probe struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &probe)
	id = probe.ID

	if schema != nil {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return id, []string{fmt.Sprintf("not valid JSON: %v", err)}
		}
		if err := schema.Validate(v); err != nil {
			return id, []string{fmt.Sprintf("schema: %v", err)}
		}
	}

	var d Definition
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return id, []string{fmt.Sprintf("decode: %v", err)}
	}
	if vr := d.Validate(); len(vr) > 0 {
		return d.ID, vr
	}
	if err := r.Register(d); err != nil {
		return d.ID, []string{err.Error()}
	}
	return d.ID, nil
}

// ReadContentDir collects raw definition records from every *.json file
// under dir, in lexical order. A missing or unreadable directory degrades
// to an empty list; a per-file read error skips that file, both reported
// through logf (may be nil).
func ReadContentDir(dir string, logf func(format string, v ...any)) [][]byte {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		logf("content dir %s: %v", dir, err)
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var out [][]byte
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logf("content file %s: %v", name, err)
			continue
		}
		out = append(out, b)
	}
	return out
}

// CompileSchema compiles the expedition definition schema. A missing
// schema file is not fatal; callers fall back to Go-side validation only.
func CompileSchema(path string) (*jsonschema.Schema, error) {
	return jsonschema.Compile(path)
}
