package content

// Seed is the built-in expedition set. External JSON content loads on top
// of it; a duplicate id in external content is rejected by Register and
// lands in the load report.
func Seed() []Definition {
	return []Definition{
		{
			ID:             "expeditions:forest_scout",
			DisplayNameKey: "expedition.forest_scout.name",
			DescriptionKey: "expedition.forest_scout.desc",
			CategoryKey:    "expedition.category.gathering",
			Rarity:         0,
			DurationTicks:  28800,
			Difficulty:     1,
			MinPlayerLevel: 0,
			Repeatable:     true,
			DailyEligible:  true,
			QuestGiverNPC:  1001,
			Deliverables: []Deliverable{
				{ID: "item:wood", RequiredCount: 30, ConsumesItems: true, Description: "Gather wood for the scouts"},
			},
			Rewards: []Reward{
				{ID: "item:copper_coin", MinStack: 25, MaxStack: 50, DropChance: 1},
			},
			DailyRewards: []Reward{
				{ID: "item:copper_coin", MinStack: 5, MaxStack: 10, DropChance: 1},
			},
		},
		{
			ID:             "expeditions:mine_survey",
			DisplayNameKey: "expedition.mine_survey.name",
			DescriptionKey: "expedition.mine_survey.desc",
			CategoryKey:    "expedition.category.mining",
			Rarity:         1,
			DurationTicks:  57600,
			Difficulty:     2,
			MinPlayerLevel: 5,
			Repeatable:     true,
			DailyEligible:  false,
			QuestGiverNPC:  1002,
			Prerequisites: []Condition{
				{ID: "cond:scouted_forest", RequiredCount: 1, Description: "Complete a forest scouting run"},
			},
			Deliverables: []Deliverable{
				{ID: "item:iron_ore", RequiredCount: 16, ConsumesItems: true, Description: "Survey samples of iron ore"},
				{ID: "item:coal", RequiredCount: 8, ConsumesItems: true, Description: "Coal for the assay furnace"},
			},
			Rewards: []Reward{
				{ID: "item:silver_coin", MinStack: 4, MaxStack: 9, DropChance: 1},
				{ID: "item:iron_pickaxe", MinStack: 1, MaxStack: 1, DropChance: 0.25},
			},
		},
		{
			ID:             "expeditions:relic_hunt",
			DisplayNameKey: "expedition.relic_hunt.name",
			DescriptionKey: "expedition.relic_hunt.desc",
			CategoryKey:    "expedition.category.exploration",
			Rarity:         3,
			DurationTicks:  115200,
			Difficulty:     4,
			MinPlayerLevel: 15,
			Repeatable:     false,
			DailyEligible:  false,
			QuestGiverNPC:  1003,
			Prerequisites: []Condition{
				{ID: "cond:mine_surveyed", RequiredCount: 1, Description: "Hand in a mine survey"},
			},
			Deliverables: []Deliverable{
				{ID: "item:ancient_shard", RequiredCount: 3, ConsumesItems: true, Description: "Shards of the buried relic"},
			},
			Rewards: []Reward{
				{ID: "item:gold_coin", MinStack: 10, MaxStack: 20, DropChance: 1},
				{ID: "item:relic_compass", MinStack: 1, MaxStack: 1, DropChance: 0.5},
			},
		},
	}
}

// LoadSeed registers the built-in set. Seed definitions are maintained in
// this file and must always validate; a failure here is a programming
// error surfaced through the report like any other entry.
func (r *Registry) LoadSeed() Report {
	var rep Report
	for _, d := range Seed() {
		if err := r.Register(d); err != nil {
			rep.Failed = append(rep.Failed, EntryFailure{ExpeditionID: d.ID, Reasons: []string{err.Error()}})
			continue
		}
		rep.Loaded++
	}
	return rep
}
