package entities

// ProgressionState is the session-wide gamification state.
type ProgressionState struct {
	XP                  int    `json:"xp"`
	Coins               int    `json:"coins"`
	Level               int    `json:"level"`
	LevelName           string `json:"level_name"`
	NextLevelXP         int    `json:"next_level_xp"`
	MaxLevel            bool   `json:"max_level"`
	TasksCompletedToday int    `json:"tasks_completed_today"`
	TasksResolvedToday  int    `json:"tasks_resolved_today"`
	QuestTasksCompleted int    `json:"quest_tasks_completed"`
	QuestAchieved       bool   `json:"quest_achieved"`
	ThemeUnlocked       bool   `json:"theme_unlocked"`
	TotalTasksInDeck    int    `json:"total_tasks_in_deck"`
}

func NewProgressionState(totalTasks int) ProgressionState {
	if totalTasks < 0 {
		totalTasks = 0
	}
	return ProgressionState{
		Level:            1,
		TotalTasksInDeck: totalTasks,
	}
}

// AddQuestProgress counts one task toward the quest and reports whether this
// call achieved it. Once achieved, further calls are no-ops.
func (p *ProgressionState) AddQuestProgress(goal int) bool {
	if p.QuestAchieved {
		return false
	}

	p.QuestTasksCompleted++
	if p.QuestTasksCompleted >= goal {
		p.QuestTasksCompleted = goal
		p.QuestAchieved = true
		return true
	}
	return false
}

// UnlockTheme flips the theme flag and reports whether it changed.
func (p *ProgressionState) UnlockTheme() bool {
	if p.ThemeUnlocked {
		return false
	}
	p.ThemeUnlocked = true
	return true
}

// Theme is the card theme name the UI should render.
func (p ProgressionState) Theme() string {
	if p.ThemeUnlocked {
		return "unlocked"
	}
	return "default"
}
