package content

import (
	"encoding/json"
	"testing"
)

func TestRegistry_RegisterAndQueries(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(validDef()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(validDef()); err == nil {
		t.Fatalf("expected duplicate id rejection")
	}
	bad := validDef()
	bad.ID = "expeditions:bad"
	bad.DurationTicks = 0
	if err := r.Register(bad); err == nil {
		t.Fatalf("expected invalid definition rejection")
	}

	d2 := validDef()
	d2.ID = "expeditions:second"
	d2.CategoryKey = "expedition.category.other"
	d2.DailyEligible = false
	if err := r.Register(d2); err != nil {
		t.Fatalf("register second: %v", err)
	}

	all := r.All()
	if len(all) != 2 || all[0].ID != "expeditions:test_run" || all[1].ID != "expeditions:second" {
		t.Fatalf("All order unstable: %v", all)
	}
	if got := r.ByCategory("expedition.category.other"); len(got) != 1 || got[0].ID != d2.ID {
		t.Fatalf("ByCategory mismatch: %v", got)
	}
	if got := r.DailyEligible(); len(got) != 1 || got[0].ID != "expeditions:test_run" {
		t.Fatalf("DailyEligible mismatch: %v", got)
	}
	if _, ok := r.TryGet("expeditions:missing"); ok {
		t.Fatalf("TryGet must miss unknown ids")
	}
}

func TestRegistry_DefensiveCopyOnRegister(t *testing.T) {
	r := NewRegistry()
	d := validDef()
	if err := r.Register(d); err != nil {
		t.Fatalf("register: %v", err)
	}
	d.Deliverables[0].RequiredCount = 99

	stored, ok := r.TryGet(d.ID)
	if !ok {
		t.Fatalf("TryGet miss")
	}
	if stored.Deliverables[0].RequiredCount == 99 {
		t.Fatalf("registry aliased by caller-held slice")
	}
}

func TestRegistry_ForPlayerStableKey(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(validDef()); err != nil {
		t.Fatalf("register: %v", err)
	}
	a, ok := r.ForPlayer("expeditions:test_run", "alice")
	if !ok || a.StableProgressKey == "" {
		t.Fatalf("ForPlayer alice failed")
	}
	b, _ := r.ForPlayer("expeditions:test_run", "bob")
	if a.StableProgressKey == b.StableProgressKey {
		t.Fatalf("stable key must differ per player")
	}
	a2, _ := r.ForPlayer("expeditions:test_run", "alice")
	if a.StableProgressKey != a2.StableProgressKey {
		t.Fatalf("stable key must be deterministic per player")
	}
	if _, ok := r.ForPlayer("expeditions:missing", "alice"); ok {
		t.Fatalf("ForPlayer must miss unknown ids")
	}
}

func TestLoadRaw_PerEntryRecovery(t *testing.T) {
	r := NewRegistry()

	good, _ := json.Marshal(validDef())
	dup := good
	var records [][]byte
	records = append(records, good)
	records = append(records, []byte(`{not json`))
	records = append(records, []byte(`{"id":"expeditions:broken","display_name_key":"n","description_key":"d","category_key":"c","duration_ticks":0,"difficulty":1}`))
	records = append(records, dup)

	rep := r.LoadRaw(records, nil)
	if rep.Loaded != 1 {
		t.Fatalf("loaded=%d want 1", rep.Loaded)
	}
	if len(rep.Failed) != 3 {
		t.Fatalf("failed=%d want 3: %v", len(rep.Failed), rep.Failed)
	}
	if rep.Failed[1].ExpeditionID != "expeditions:broken" {
		t.Fatalf("failure should carry the entry id: %v", rep.Failed[1])
	}
	if r.Len() != 1 {
		t.Fatalf("registry len=%d want 1", r.Len())
	}
	if rep.String() == "" {
		t.Fatalf("report must render")
	}
}

func TestLoadSeed_AllValid(t *testing.T) {
	r := NewRegistry()
	rep := r.LoadSeed()
	if len(rep.Failed) != 0 {
		t.Fatalf("seed load failures: %v", rep.Failed)
	}
	if rep.Loaded != len(Seed()) || r.Len() != len(Seed()) {
		t.Fatalf("seed count mismatch: loaded=%d registry=%d", rep.Loaded, r.Len())
	}
	if _, ok := r.TryGet("expeditions:forest_scout"); !ok {
		t.Fatalf("forest_scout missing from seed")
	}
}
