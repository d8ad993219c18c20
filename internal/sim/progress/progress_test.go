package progress

import (
	"testing"

	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/content"
)

func testRegistry(t *testing.T) *content.Registry {
	t.Helper()
	r := content.NewRegistry()
	if rep := r.LoadSeed(); len(rep.Failed) != 0 {
		t.Fatalf("seed: %v", rep.Failed)
	}
	return r
}

func startScout(t *testing.T, s *Set, reg *content.Registry) {
	t.Helper()
	pd, ok := reg.ForPlayer("expeditions:forest_scout", s.PlayerID())
	if !ok {
		t.Fatalf("forest_scout missing")
	}
	if !s.Start(pd, 10) {
		t.Fatalf("start failed")
	}
}

func TestStart_CreatesSingleActiveRecord(t *testing.T) {
	reg := testRegistry(t)
	s := NewSet("alice", reg)
	startScout(t, s, reg)

	if !s.IsActive("expeditions:forest_scout") {
		t.Fatalf("expected active after start")
	}
	r := s.Get("expeditions:forest_scout")
	if r == nil || r.StartTick != 10 || r.Completed || r.RewardsClaimed {
		t.Fatalf("bad record: %+v", r)
	}
	if r.ConditionProgress["item:wood"] != 0 {
		t.Fatalf("counters must start at zero")
	}

	pd, _ := reg.ForPlayer("expeditions:forest_scout", "alice")
	if s.Start(pd, 20) {
		t.Fatalf("second structural start must refuse; one record per expedition")
	}
	if s.Len() != 1 {
		t.Fatalf("len=%d want 1", s.Len())
	}
}

func TestReportCondition_ClampsAndReportsChange(t *testing.T) {
	reg := testRegistry(t)
	s := NewSet("alice", reg)
	startScout(t, s, reg)

	if s.ReportCondition("item:wood", 0) {
		t.Fatalf("zero amount must be a no-op")
	}
	if s.ReportCondition("item:wood", -5) {
		t.Fatalf("negative amount must be a no-op")
	}
	if !s.ReportCondition("item:wood", 10) {
		t.Fatalf("expected change")
	}
	if got := s.Get("expeditions:forest_scout").ConditionProgress["item:wood"]; got != 10 {
		t.Fatalf("counter=%d want 10", got)
	}
	if !s.ReportCondition("item:wood", 1_000_000) {
		t.Fatalf("expected clamped change")
	}
	if got := s.Get("expeditions:forest_scout").ConditionProgress["item:wood"]; got != 30 {
		t.Fatalf("counter=%d want clamp at 30", got)
	}
	if s.ReportCondition("item:wood", 1) {
		t.Fatalf("already at required count; no change expected")
	}
	if s.ReportCondition("item:granite", 5) {
		t.Fatalf("undeclared condition must not change anything")
	}
}

func TestReportCondition_CaseInsensitiveKeys(t *testing.T) {
	reg := testRegistry(t)
	s := NewSet("alice", reg)
	startScout(t, s, reg)

	if !s.ReportCondition("ITEM:Wood", 5) {
		t.Fatalf("cross-case condition id must match")
	}
	if got := s.Get("Expeditions:Forest_Scout").ConditionProgress["item:wood"]; got != 5 {
		t.Fatalf("counter=%d want 5", got)
	}
	if !s.IsActive("EXPEDITIONS:FOREST_SCOUT") {
		t.Fatalf("cross-case expedition lookup must match")
	}
}

func TestMarkCompletedAndClaimed_Idempotent(t *testing.T) {
	reg := testRegistry(t)
	s := NewSet("alice", reg)
	startScout(t, s, reg)

	s.ReportCondition("item:wood", 30)
	if !s.DeliverablesSatisfied("expeditions:forest_scout") {
		t.Fatalf("deliverables should be satisfied")
	}
	if !s.MarkCompleted("expeditions:forest_scout") {
		t.Fatalf("first MarkCompleted must change")
	}
	if s.MarkCompleted("expeditions:forest_scout") {
		t.Fatalf("second MarkCompleted must report no change")
	}
	r := s.Get("expeditions:forest_scout")
	if !r.Active || !r.Completed {
		t.Fatalf("completed record stays active until claim: %+v", r)
	}

	if !s.MarkClaimed("expeditions:forest_scout") {
		t.Fatalf("first MarkClaimed must change")
	}
	if s.MarkClaimed("expeditions:forest_scout") {
		t.Fatalf("second MarkClaimed must report no change")
	}
	if r.Active || !r.RewardsClaimed {
		t.Fatalf("claim must deactivate: %+v", r)
	}
}

func TestReportCondition_SkipsCompletedAndOrphaned(t *testing.T) {
	reg := testRegistry(t)
	s := NewSet("alice", reg)
	startScout(t, s, reg)

	s.ReportCondition("item:wood", 30)
	s.MarkCompleted("expeditions:forest_scout")
	if s.ReportCondition("item:wood", 1) {
		t.Fatalf("completed expedition must not accept progress")
	}

	s.Get("expeditions:forest_scout").Orphaned = true
	if s.IsActive("expeditions:forest_scout") || s.IsCompleted("expeditions:forest_scout") {
		t.Fatalf("orphaned records are excluded from gameplay")
	}
}

func TestRestart_RearmsRepeatable(t *testing.T) {
	reg := testRegistry(t)
	s := NewSet("alice", reg)
	startScout(t, s, reg)
	s.ReportCondition("item:wood", 30)
	s.MarkCompleted("expeditions:forest_scout")
	s.MarkClaimed("expeditions:forest_scout")

	pd, _ := reg.ForPlayer("expeditions:forest_scout", "alice")
	if !s.Restart(pd, 99) {
		t.Fatalf("restart failed")
	}
	r := s.Get("expeditions:forest_scout")
	if !r.Active || r.Completed || r.RewardsClaimed || r.StartTick != 99 {
		t.Fatalf("restart did not re-arm: %+v", r)
	}
	if r.ConditionProgress["item:wood"] != 0 {
		t.Fatalf("restart must zero counters")
	}
	if s.Len() != 1 {
		t.Fatalf("restart must reuse the record")
	}
}
