package expedition

import (
	"strings"

	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/content"
)

// grantAll rolls each reward line and feeds the hits to the sink. A
// reward with drop_chance < 1 is skipped when the uniform draw in [0,1)
// exceeds the chance; the stack count is uniform in [min,max] inclusive.
// Unparsable reward identifiers are skipped with a warning, never fatal.
func (s *Service) grantAll(playerID string, rewards []content.Reward) {
	for _, rw := range rewards {
		itemID, ok := parseRewardID(rw.ID)
		if !ok {
			if s.logger != nil {
				s.logger.Printf("skipping unsupported reward id %q", rw.ID)
			}
			continue
		}
		if rw.DropChance < 1 && s.rng.Float64() > rw.DropChance {
			continue
		}
		count := rw.MinStack
		if rw.MaxStack > rw.MinStack {
			count += s.rng.Intn(rw.MaxStack - rw.MinStack + 1)
		}
		if s.sink != nil {
			s.sink.Grant(playerID, itemID, count)
		}
	}
}

// parseRewardID accepts "item:<id>" identifiers. Other namespaces are
// unsupported for now.
func parseRewardID(id string) (string, bool) {
	rest, ok := strings.CutPrefix(id, "item:")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}
