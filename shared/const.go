package shared

const (
	// Rewards granted once per completed lesson.
	StarsPerLesson = 10
	XPPerLesson    = 20

	// Stars needed to redeem the completion reward.
	RewardStarCost = 50

	// XP required per level. Level is always XP/LevelStepXP + 1.
	LevelStepXP = 100

	// Daily XP target shown alongside daily progress.
	DailyGoalXP = 100

	ProgressKeyPrefix = "excel_master_progress"
)
