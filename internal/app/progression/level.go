package progression

import (
	"github.com/snapsolve/snapsolve/internal/domain"
)

const (
	// SolvesPerLevel is how many solves one level takes.
	SolvesPerLevel = 10
	// MaxLevel caps the cosmetic level.
	MaxLevel = 20
)

// Level returns the cosmetic level: min(TotalSolves/10 + 1, 20).
func Level(s domain.ProgressionState) int {
	return LevelForSolves(s.TotalSolves)
}

// LevelForSolves returns the level reached after n solves.
func LevelForSolves(n int) int {
	if n < 0 {
		n = 0
	}
	return min(n/SolvesPerLevel+1, MaxLevel)
}

// IsLocked reports whether an item requiring requiredLevel is still locked.
func IsLocked(requiredLevel int, s domain.ProgressionState) bool {
	return Level(s) < requiredLevel
}

// SolvesToNextLevel returns solves remaining until the next level,
// 0 at the cap.
func SolvesToNextLevel(s domain.ProgressionState) int {
	level := Level(s)
	if level >= MaxLevel {
		return 0
	}
	return level*SolvesPerLevel - s.TotalSolves
}

// CosmeticStatus pairs an item with its lock state.
type CosmeticStatus struct {
	domain.CosmeticItem `yaml:",inline"`
	Locked              bool `json:"locked" yaml:"locked"`
}

// LevelGate reports lock status for the cosmetic catalog.
// No persisted state of its own.
type LevelGate struct {
	items []domain.CosmeticItem
}

// NewLevelGate creates a gate over items, which must be ordered by
// RequiredLevel.
func NewLevelGate(items []domain.CosmeticItem) *LevelGate {
	return &LevelGate{items: items}
}

// Items lists every cosmetic with its lock state.
func (g *LevelGate) Items(s domain.ProgressionState) []CosmeticStatus {
	out := make([]CosmeticStatus, 0, len(g.items))
	for _, item := range g.items {
		out = append(out, CosmeticStatus{CosmeticItem: item, Locked: IsLocked(item.RequiredLevel, s)})
	}
	return out
}

// NextUnlock returns the lowest-level item still locked.
func (g *LevelGate) NextUnlock(s domain.ProgressionState) (domain.CosmeticItem, bool) {
	for _, item := range g.items {
		if IsLocked(item.RequiredLevel, s) {
			return item, true
		}
	}
	return domain.CosmeticItem{}, false
}

// UnlockedBetween returns items that unlock when moving from level from to
// level to (exclusive of from).
func (g *LevelGate) UnlockedBetween(from, to int) []domain.CosmeticItem {
	var out []domain.CosmeticItem
	for _, item := range g.items {
		if item.RequiredLevel > from && item.RequiredLevel <= to {
			out = append(out, item)
		}
	}
	return out
}

// DefaultCosmetics returns the shipped cosmetic catalog.
func DefaultCosmetics() []domain.CosmeticItem {
	return []domain.CosmeticItem{
		{ID: "theme_classic", Name: "Classic Paper", Kind: "theme", RequiredLevel: 1},
		{ID: "pencil_graphite", Name: "Graphite Pencil", Kind: "pencil", RequiredLevel: 1},
		{ID: "theme_chalkboard", Name: "Chalkboard", Kind: "theme", RequiredLevel: 2},
		{ID: "frame_bronze", Name: "Bronze Frame", Kind: "frame", RequiredLevel: 3},
		{ID: "pencil_neon", Name: "Neon Marker", Kind: "pencil", RequiredLevel: 5},
		{ID: "theme_blueprint", Name: "Blueprint", Kind: "theme", RequiredLevel: 7},
		{ID: "frame_silver", Name: "Silver Frame", Kind: "frame", RequiredLevel: 10},
		{ID: "theme_midnight", Name: "Midnight Glass", Kind: "theme", RequiredLevel: 12},
		{ID: "pencil_fountain", Name: "Fountain Pen", Kind: "pencil", RequiredLevel: 15},
		{ID: "frame_gold", Name: "Gold Frame", Kind: "frame", RequiredLevel: 18},
		{ID: "theme_aurora", Name: "Aurora", Kind: "theme", RequiredLevel: 20},
	}
}
