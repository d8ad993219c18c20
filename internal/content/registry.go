package content

import (
	"fmt"
)

// Registry is the authoritative catalog of expedition definitions. It is
// populated once at session start and read-only afterwards, so concurrent
// reads from player-processing paths need no locking.
type Registry struct {
	byID  map[string]regEntry
	order []string
}

type regEntry struct {
	def  Definition
	hash string
}

func NewRegistry() *Registry {
	return &Registry{byID: map[string]regEntry{}}
}

// Register validates the definition and stores a defensive copy. Fails if
// the id already exists. The lookup map and the iteration-order list are
// updated together.
func (r *Registry) Register(d Definition) error {
	if reasons := d.Validate(); len(reasons) > 0 {
		return fmt.Errorf("invalid definition %q: %s", d.ID, reasons[0])
	}
	if _, exists := r.byID[d.ID]; exists {
		return fmt.Errorf("duplicate definition id %q", d.ID)
	}
	c := d.Clone()
	r.byID[d.ID] = regEntry{def: c, hash: c.ContentHash()}
	r.order = append(r.order, d.ID)
	return nil
}

// TryGet looks up a definition by exact id.
func (r *Registry) TryGet(id string) (Definition, bool) {
	e, ok := r.byID[id]
	return e.def, ok
}

// Hash returns the stored content hash for id.
func (r *Registry) Hash(id string) (string, bool) {
	e, ok := r.byID[id]
	return e.hash, ok
}

// All returns every definition in stable registration order.
func (r *Registry) All() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].def)
	}
	return out
}

// ByCategory filters All by category key.
func (r *Registry) ByCategory(key string) []Definition {
	var out []Definition
	for _, d := range r.All() {
		if d.CategoryKey == key {
			out = append(out, d)
		}
	}
	return out
}

// DailyEligible filters All to daily-eligible definitions.
func (r *Registry) DailyEligible() []Definition {
	var out []Definition
	for _, d := range r.All() {
		if d.DailyEligible {
			out = append(out, d)
		}
	}
	return out
}

// ForPlayer hands out a cloned definition with the player's stable
// progress key pre-computed, without letting callers reach the canonical
// copy.
func (r *Registry) ForPlayer(id, playerID string) (PlayerDefinition, bool) {
	e, ok := r.byID[id]
	if !ok {
		return PlayerDefinition{}, false
	}
	return PlayerDefinition{
		Definition:        e.def.Clone(),
		StableProgressKey: sha256Hex([]byte(e.hash + "|" + playerID)),
	}, true
}

// Len reports the number of registered definitions.
func (r *Registry) Len() int { return len(r.order) }
