package streak

// Stage is one garden tier.
type Stage struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	MinStreak int    `json:"min_streak"`
}

// Stages lists the garden tiers in ascending order of required streak.
var Stages = [...]Stage{
	{0, "Bare Soil", 0},
	{1, "Seed", 1},
	{2, "Sprout", 3},
	{3, "Seedling", 7},
	{4, "Young Plant", 14},
	{5, "Budding", 30},
	{6, "Flowering", 60},
	{7, "Sapling", 100},
	{8, "Young Tree", 200},
	{9, "Mature Tree", 365},
	{10, "Ancient Grove", 1000},
}

// MaxStage is the index of the top tier.
const MaxStage = len(Stages) - 1

// GardenStage returns the highest tier whose threshold streak reaches.
func GardenStage(streak int) int {
	stage := 0
	for i := range Stages {
		if streak >= Stages[i].MinStreak {
			stage = i
		}
	}
	return stage
}

// StageInfo returns the tier at index, clamped to the table.
func StageInfo(index int) Stage {
	return Stages[min(max(index, 0), MaxStage)]
}

// ResolveStage applies a display override on top of the computed stage.
// The override only takes effect when it is set, in range and the viewer is
// authorized to use it.
func ResolveStage(computed int, override *int, authorized bool) (stage int, overridden bool) {
	if override == nil || !authorized {
		return computed, false
	}
	if *override < 0 || *override > MaxStage {
		return computed, false
	}
	return *override, true
}
