package engine

import (
	"fmt"

	"uplay-player-service/internal/domain"
)

var (
	achievementStreakMaster = domain.Achievement{
		ID:          "streak-master",
		Name:        "Streak Master",
		Description: "Answer 10 questions correctly in a row",
		Icon:        "🔥",
		Rarity:      domain.RarityEpic,
	}
	achievementFirstCorrect = domain.Achievement{
		ID:          "first-correct",
		Name:        "First Steps",
		Description: "Answer your first question correctly",
		Icon:        "🎯",
		Rarity:      domain.RarityCommon,
	}
	achievementKnowledgeGuardian = domain.Achievement{
		ID:          "knowledge-guardian",
		Name:        "Knowledge Guardian",
		Description: "Answer 50 questions correctly",
		Icon:        "🛡️",
		Rarity:      domain.RarityRare,
	}
)

// EvaluateAchievement compares two metric snapshots and returns the
// highest-priority threshold crossed by this update, or nil. Crossing
// detection means a rule fires only on the update that reaches its
// threshold, never again for the same session.
func EvaluateAchievement(prev, next domain.PlayerMetrics) *domain.Achievement {
	if prev.CurrentStreak < 10 && next.CurrentStreak == 10 {
		a := achievementStreakMaster
		return &a
	}
	if prev.CorrectAnswers == 0 && next.CorrectAnswers == 1 {
		a := achievementFirstCorrect
		return &a
	}
	if prev.CorrectAnswers < 50 && next.CorrectAnswers == 50 {
		a := achievementKnowledgeGuardian
		return &a
	}
	if next.Level > prev.Level {
		a := levelAchievement(next.Level)
		return &a
	}
	return nil
}

// levelAchievement builds the badge for reaching a new level. Rarity
// escalates with the level reached.
func levelAchievement(level int) domain.Achievement {
	rarity := domain.RarityCommon
	switch {
	case level >= 10:
		rarity = domain.RarityEpic
	case level >= 5:
		rarity = domain.RarityRare
	}
	return domain.Achievement{
		ID:          fmt.Sprintf("level-%d", level),
		Name:        fmt.Sprintf("Level %d", level),
		Description: fmt.Sprintf("Reach level %d", level),
		Icon:        "⭐",
		Rarity:      rarity,
	}
}
