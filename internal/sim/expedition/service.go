// Package expedition enforces the gameplay rules for expedition state
// transitions. It is the single authority: every public operation refuses
// to run on a non-authoritative side before touching state.
package expedition

import (
	"log"
	"math/rand"

	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/content"
	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/sim/progress"
)

// Failure codes returned by service operations. The command/network layer
// maps them to user-facing messages; they never cross the wire.
const (
	ErrNotAuthoritative = "E_NOT_AUTHORITATIVE"
	ErrNotFound         = "E_NOT_FOUND"
	ErrAlreadyActive    = "E_ALREADY_ACTIVE"
	ErrAlreadyCompleted = "E_ALREADY_COMPLETED"
	ErrNotActive        = "E_NOT_ACTIVE"
	ErrNotCompleted     = "E_NOT_COMPLETED"
	ErrAlreadyClaimed   = "E_ALREADY_CLAIMED"
	ErrBadAmount        = "E_BAD_AMOUNT"
	ErrPrereqUnmet      = "E_PREREQ_UNMET"
)

// RewardSink performs the game-specific grant of an item to a player. The
// service computes what to grant, never how items enter inventory.
type RewardSink interface {
	Grant(playerID, itemID string, count int)
}

// PrereqEvaluator decides whether one prerequisite condition holds for a
// player. The default implementation always satisfies; real evaluation
// against world state is an extension point, not solved here.
type PrereqEvaluator interface {
	Satisfied(playerID string, c content.Condition) bool
}

// AlwaysSatisfied is the stub evaluator. Deliberately a placeholder: the
// observed behavior treats every prerequisite as met.
type AlwaysSatisfied struct{}

func (AlwaysSatisfied) Satisfied(string, content.Condition) bool { return true }

type Service struct {
	reg           *content.Registry
	authoritative bool
	sink          RewardSink
	eval          PrereqEvaluator
	rng           *rand.Rand
	logger        *log.Logger
}

// NewService wires the service with explicit dependencies; there is no
// global registry lookup. authoritative must be true only on the server
// or single-player host.
func NewService(reg *content.Registry, authoritative bool, sink RewardSink, eval PrereqEvaluator, rng *rand.Rand, logger *log.Logger) *Service {
	if eval == nil {
		eval = AlwaysSatisfied{}
	}
	return &Service{
		reg:           reg,
		authoritative: authoritative,
		sink:          sink,
		eval:          eval,
		rng:           rng,
		logger:        logger,
	}
}

// Start validates and activates an expedition for the player owning the
// set. Empty code means success.
func (s *Service) Start(set *progress.Set, id string, atTick uint64) string {
	if !s.authoritative {
		return ErrNotAuthoritative
	}
	def, ok := s.reg.TryGet(id)
	if !ok {
		return ErrNotFound
	}
	if set.IsActive(id) {
		return ErrAlreadyActive
	}
	if set.IsCompleted(id) && !def.Repeatable {
		return ErrAlreadyCompleted
	}
	for _, c := range def.Prerequisites {
		if !s.eval.Satisfied(set.PlayerID(), c) {
			return ErrPrereqUnmet
		}
	}
	pd, _ := s.reg.ForPlayer(id, set.PlayerID())
	if set.Get(id) != nil {
		set.Restart(pd, atTick)
		return ""
	}
	if !set.Start(pd, atTick) {
		return ErrAlreadyActive
	}
	return ""
}

// ReportProgress routes a counter increment to the set and completes any
// expedition whose deliverables are now all satisfied. changed reports
// whether a re-sync is needed.
func (s *Service) ReportProgress(set *progress.Set, conditionID string, amount int) (changed bool, code string) {
	if !s.authoritative {
		return false, ErrNotAuthoritative
	}
	if amount <= 0 {
		return false, ErrBadAmount
	}
	changed = set.ReportCondition(conditionID, amount)
	if !changed {
		return false, ""
	}
	for _, r := range set.All() {
		if r.Orphaned || !r.Active || r.Completed {
			continue
		}
		if set.DeliverablesSatisfied(r.ExpeditionID) {
			set.MarkCompleted(r.ExpeditionID)
		}
	}
	return true, ""
}

// Complete is the explicit completion check, used when completion is
// driven by hand-in validation rather than counter increments. An
// already-completed expedition is not an error, but changed=false tells
// the caller no re-sync is needed.
func (s *Service) Complete(set *progress.Set, id string) (changed bool, code string) {
	if !s.authoritative {
		return false, ErrNotAuthoritative
	}
	if _, ok := s.reg.TryGet(id); !ok {
		return false, ErrNotFound
	}
	if !set.IsActive(id) {
		return false, ErrNotActive
	}
	if set.IsCompleted(id) {
		return false, ""
	}
	if !set.DeliverablesSatisfied(id) {
		return false, ErrNotCompleted
	}
	set.MarkCompleted(id)
	return true, ""
}

// ClaimRewards grants rewards exactly once and retires the record from
// the active list.
func (s *Service) ClaimRewards(set *progress.Set, id string) string {
	if !s.authoritative {
		return ErrNotAuthoritative
	}
	def, ok := s.reg.TryGet(id)
	if !ok {
		return ErrNotFound
	}
	r := set.Get(id)
	if r == nil || r.Orphaned || !r.Completed {
		return ErrNotCompleted
	}
	if r.RewardsClaimed {
		return ErrAlreadyClaimed
	}
	s.grantAll(set.PlayerID(), def.Rewards)
	if def.DailyEligible {
		s.grantAll(set.PlayerID(), def.DailyRewards)
	}
	set.MarkClaimed(id)
	return ""
}

// IsExpeditionGiver reports whether the NPC offers at least one
// expedition the player could start right now.
func (s *Service) IsExpeditionGiver(set *progress.Set, npcID int) bool {
	for _, def := range s.reg.All() {
		if def.QuestGiverNPC != npcID {
			continue
		}
		if set.IsActive(def.ID) {
			continue
		}
		if set.IsCompleted(def.ID) && !def.Repeatable {
			continue
		}
		if !s.prereqsMet(set.PlayerID(), def) {
			continue
		}
		return true
	}
	return false
}

func (s *Service) prereqsMet(playerID string, def content.Definition) bool {
	for _, c := range def.Prerequisites {
		if !s.eval.Satisfied(playerID, c) {
			return false
		}
	}
	return true
}
