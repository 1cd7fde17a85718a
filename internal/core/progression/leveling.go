package progression

// LevelThresholds holds the total XP needed for levels 1..5.
var LevelThresholds = []int{0, 50, 150, 300, 500}

// LevelNames runs parallel to LevelThresholds.
var LevelNames = []string{"Novice", "Apprentice", "Adept", "Master", "Grandmaster"}

// MaxLevelName labels the progress line once the last threshold is reached.
const MaxLevelName = "Max Level"

// MilestoneLevel is the level whose arrival unlocks bonus content.
const MilestoneLevel = 2

type LevelInfo struct {
	Level int
	Name  string
	// NextXP is the threshold of the following level, 0 at max level.
	NextXP int
	Max    bool
}

// LevelFor returns 1 + the highest index whose threshold does not exceed xp.
// XP below every threshold (negative XP) clamps to level 1.
func LevelFor(xp int) LevelInfo {
	level := 1
	for i := len(LevelThresholds) - 1; i >= 0; i-- {
		if xp >= LevelThresholds[i] {
			level = i + 1
			break
		}
	}

	info := LevelInfo{Level: level, Name: LevelNames[level-1]}
	if level < len(LevelThresholds) {
		info.NextXP = LevelThresholds[level]
	} else {
		info.Max = true
	}
	return info
}
