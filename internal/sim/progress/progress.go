// Package progress owns per-player expedition progress. A Set is the only
// component that mutates progress fields directly; gameplay rules live in
// internal/sim/expedition.
//
// All string keys (expedition ids, condition ids) compare
// case-insensitively: keys are folded with strings.ToLower on every write
// and lookup, while records keep the original spelling for serialization.
package progress

import (
	"strings"

	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/content"
)

// Record is the mutable per-player, per-expedition state. One record
// exists per (player, expedition) pair that has ever been started.
type Record struct {
	ExpeditionID      string `json:"expedition_id"`
	StableProgressKey string `json:"stable_progress_key"`
	StartTick         uint64 `json:"start_tick"`

	Active         bool `json:"active"`
	Completed      bool `json:"completed"`
	RewardsClaimed bool `json:"rewards_claimed"`
	// Orphaned marks a record whose backing definition can no longer be
	// resolved. It is retained for diagnostics but excluded from gameplay.
	Orphaned bool `json:"orphaned,omitempty"`

	// ConditionProgress counters are keyed by folded condition id.
	ConditionProgress map[string]int `json:"condition_progress"`
}

// Set holds the full progress collection for one player.
type Set struct {
	playerID string
	reg      *content.Registry

	byID  map[string]*Record // key: folded expedition id
	order []string           // folded ids in creation order
}

func NewSet(playerID string, reg *content.Registry) *Set {
	return &Set{
		playerID: playerID,
		reg:      reg,
		byID:     map[string]*Record{},
	}
}

func (s *Set) PlayerID() string { return s.playerID }

func fold(id string) string { return strings.ToLower(id) }

// Get returns the record for id, nil if never started.
func (s *Set) Get(id string) *Record { return s.byID[fold(id)] }

// IsActive reports whether the expedition is active. Orphaned records are
// excluded from gameplay and never report active.
func (s *Set) IsActive(id string) bool {
	r := s.byID[fold(id)]
	return r != nil && !r.Orphaned && r.Active
}

// IsCompleted reports whether the expedition has ever been completed.
func (s *Set) IsCompleted(id string) bool {
	r := s.byID[fold(id)]
	return r != nil && !r.Orphaned && r.Completed
}

// Start creates a fresh record. It performs no business-rule checks; the
// lifecycle service validates before calling. Returns false if a record
// already exists for the expedition.
func (s *Set) Start(pd content.PlayerDefinition, atTick uint64) bool {
	key := fold(pd.ID)
	if _, exists := s.byID[key]; exists {
		return false
	}
	r := &Record{
		ExpeditionID:      pd.ID,
		StableProgressKey: pd.StableProgressKey,
		StartTick:         atTick,
		Active:            true,
		ConditionProgress: map[string]int{},
	}
	for _, d := range pd.Deliverables {
		r.ConditionProgress[fold(d.ID)] = 0
	}
	s.byID[key] = r
	s.order = append(s.order, key)
	return true
}

// Restart re-arms an existing record: counters zeroed, active again,
// completion flags cleared. The lifecycle service has already checked
// repeatability. An orphaned record whose definition resolves again is
// re-adopted here: the stable key is refreshed and the flag cleared, so
// content drift never locks a player out of a resolvable expedition.
func (s *Set) Restart(pd content.PlayerDefinition, atTick uint64) bool {
	r := s.byID[fold(pd.ID)]
	if r == nil {
		return false
	}
	r.StableProgressKey = pd.StableProgressKey
	r.StartTick = atTick
	r.Active = true
	r.Completed = false
	r.RewardsClaimed = false
	r.Orphaned = false
	r.ConditionProgress = map[string]int{}
	for _, d := range pd.Deliverables {
		r.ConditionProgress[fold(d.ID)] = 0
	}
	return true
}

// ReportCondition adds amount to the named counter on every active record
// whose definition declares that condition, clamped to the declared
// required count. Returns whether any record changed. amount <= 0 is a
// no-op.
func (s *Set) ReportCondition(conditionID string, amount int) bool {
	if amount <= 0 {
		return false
	}
	key := fold(conditionID)
	changed := false
	for _, id := range s.order {
		r := s.byID[id]
		if r.Orphaned || !r.Active || r.Completed {
			continue
		}
		def, ok := s.reg.TryGet(r.ExpeditionID)
		if !ok {
			continue
		}
		required, declared := requiredCount(def, key)
		if !declared {
			continue
		}
		cur := r.ConditionProgress[key]
		if cur >= required {
			continue
		}
		next := cur + amount
		if next > required {
			next = required
		}
		r.ConditionProgress[key] = next
		changed = true
	}
	return changed
}

// requiredCount resolves the clamp target for a folded condition id.
// Deliverables take precedence over prerequisite conditions when both
// declare the same id.
func requiredCount(def content.Definition, foldedID string) (int, bool) {
	for _, d := range def.Deliverables {
		if fold(d.ID) == foldedID {
			return d.RequiredCount, true
		}
	}
	for _, c := range def.Prerequisites {
		if fold(c.ID) == foldedID {
			return c.RequiredCount, true
		}
	}
	return 0, false
}

// DeliverablesSatisfied reports whether every deliverable counter of the
// record has reached its required count.
func (s *Set) DeliverablesSatisfied(id string) bool {
	r := s.byID[fold(id)]
	if r == nil || r.Orphaned {
		return false
	}
	def, ok := s.reg.TryGet(r.ExpeditionID)
	if !ok || len(def.Deliverables) == 0 {
		return false
	}
	for _, d := range def.Deliverables {
		if r.ConditionProgress[fold(d.ID)] < d.RequiredCount {
			return false
		}
	}
	return true
}

// MarkCompleted flags the record completed. Active stays true so a
// turn-in NPC can still validate ownership until claim. Idempotent;
// returns whether the call changed anything.
func (s *Set) MarkCompleted(id string) bool {
	r := s.byID[fold(id)]
	if r == nil || r.Orphaned || r.Completed {
		return false
	}
	r.Completed = true
	return true
}

// MarkClaimed flags rewards claimed and deactivates the record.
// Idempotent; returns whether the call changed anything.
func (s *Set) MarkClaimed(id string) bool {
	r := s.byID[fold(id)]
	if r == nil || r.Orphaned || r.RewardsClaimed {
		return false
	}
	r.RewardsClaimed = true
	r.Active = false
	return true
}

// All returns every record in creation order, orphans included.
func (s *Set) All() []*Record {
	out := make([]*Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Len reports the number of records, orphans included.
func (s *Set) Len() int { return len(s.order) }
