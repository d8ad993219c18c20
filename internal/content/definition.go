package content

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Condition is a prerequisite that must hold before an expedition can start.
type Condition struct {
	ID            string `json:"id"`
	RequiredCount int    `json:"required_count"`
	Description   string `json:"description,omitempty"`
}

// Deliverable is a countable objective that completes an expedition.
type Deliverable struct {
	ID            string `json:"id"`
	RequiredCount int    `json:"required_count"`
	ConsumesItems bool   `json:"consumes_items,omitempty"`
	Description   string `json:"description,omitempty"`
}

// Reward is one potential payout line. DropChance is in [0,1].
type Reward struct {
	ID         string  `json:"id"`
	MinStack   int     `json:"min_stack"`
	MaxStack   int     `json:"max_stack"`
	DropChance float64 `json:"drop_chance"`
}

// Definition describes one expedition. Values stored in the Registry are
// never handed back by reference; treat a Definition as read-only once
// registered.
type Definition struct {
	ID             string `json:"id"`
	DisplayNameKey string `json:"display_name_key"`
	DescriptionKey string `json:"description_key"`
	CategoryKey    string `json:"category_key"`

	Rarity         int  `json:"rarity"`
	DurationTicks  int  `json:"duration_ticks"`
	Difficulty     int  `json:"difficulty"`
	MinPlayerLevel int  `json:"min_player_level"`
	Repeatable     bool `json:"repeatable"`
	DailyEligible  bool `json:"daily_eligible"`
	QuestGiverNPC  int  `json:"quest_giver_npc_id"`

	Prerequisites []Condition   `json:"prerequisites,omitempty"`
	Deliverables  []Deliverable `json:"deliverables,omitempty"`
	Rewards       []Reward      `json:"rewards,omitempty"`
	DailyRewards  []Reward      `json:"daily_rewards,omitempty"`
}

// PlayerDefinition pairs a Definition with the per-player stable progress
// key, so per-player specialization never mutates the canonical copy.
type PlayerDefinition struct {
	Definition
	StableProgressKey string
}

// ContentHash digests every field including nested collections in order.
// Identical field values always produce identical hashes; any field change
// changes the hash. Used to detect stale save data across content updates.
func (d Definition) ContentHash() string {
	b, err := json.Marshal(d)
	if err != nil {
		// Definition contains only plain data; Marshal cannot fail.
		panic(fmt.Sprintf("content: hash %s: %v", d.ID, err))
	}
	return sha256Hex(b)
}

// Validate returns every invariant violation, empty for a valid definition.
func (d Definition) Validate() []string {
	var reasons []string
	if d.ID == "" {
		reasons = append(reasons, "missing id")
	}
	if d.DisplayNameKey == "" {
		reasons = append(reasons, "missing display_name_key")
	}
	if d.DescriptionKey == "" {
		reasons = append(reasons, "missing description_key")
	}
	if d.CategoryKey == "" {
		reasons = append(reasons, "missing category_key")
	}
	if d.DurationTicks <= 0 {
		reasons = append(reasons, "duration_ticks must be > 0")
	}
	if d.Difficulty <= 0 {
		reasons = append(reasons, "difficulty must be > 0")
	}
	if d.MinPlayerLevel < 0 {
		reasons = append(reasons, "min_player_level must be >= 0")
	}
	if d.Rarity < 0 {
		reasons = append(reasons, "rarity must be >= 0")
	}
	for i, c := range d.Prerequisites {
		if c.ID == "" {
			reasons = append(reasons, fmt.Sprintf("prerequisites[%d]: missing id", i))
		}
		if c.RequiredCount < 1 {
			reasons = append(reasons, fmt.Sprintf("prerequisites[%d]: required_count must be >= 1", i))
		}
	}
	for i, dl := range d.Deliverables {
		if dl.ID == "" {
			reasons = append(reasons, fmt.Sprintf("deliverables[%d]: missing id", i))
		}
		if dl.RequiredCount < 1 {
			reasons = append(reasons, fmt.Sprintf("deliverables[%d]: required_count must be >= 1", i))
		}
	}
	reasons = append(reasons, validateRewards("rewards", d.Rewards)...)
	reasons = append(reasons, validateRewards("daily_rewards", d.DailyRewards)...)
	return reasons
}

func validateRewards(field string, rewards []Reward) []string {
	var reasons []string
	for i, r := range rewards {
		if r.ID == "" {
			reasons = append(reasons, fmt.Sprintf("%s[%d]: missing id", field, i))
		}
		if r.MinStack < 1 {
			reasons = append(reasons, fmt.Sprintf("%s[%d]: min_stack must be >= 1", field, i))
		}
		if r.MaxStack < r.MinStack {
			reasons = append(reasons, fmt.Sprintf("%s[%d]: max_stack must be >= min_stack", field, i))
		}
		if r.DropChance < 0 || r.DropChance > 1 {
			reasons = append(reasons, fmt.Sprintf("%s[%d]: drop_chance must be in [0,1]", field, i))
		}
	}
	return reasons
}

// Clone deep-copies the definition so registry state is never aliased by
// caller-held slices.
func (d Definition) Clone() Definition {
	c := d
	c.Prerequisites = append([]Condition(nil), d.Prerequisites...)
	c.Deliverables = append([]Deliverable(nil), d.Deliverables...)
	c.Rewards = append([]Reward(nil), d.Rewards...)
	c.DailyRewards = append([]Reward(nil), d.DailyRewards...)
	return c
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
