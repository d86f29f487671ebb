package engine

import (
	"math"

	"uplay-player-service/internal/domain"
)

// CalculateReward computes the payout for one resolved question. It is a
// pure function of its inputs: an incorrect answer earns nothing, a
// correct one earns the question's base reward scaled by speed,
// difficulty, and level multipliers (merits) and the streak multiplier
// (ondas). Multipliers are applied unrounded; only final products are
// rounded, half up.
func CalculateReward(q domain.Question, correct bool, responseTime, level, streak int) domain.Reward {
	if !correct {
		return domain.Reward{}
	}
	speed := speedMultiplier(responseTime, q.TimeLimit)
	diff := difficultyMultiplier(q.Difficulty)
	return domain.Reward{
		Merits:     roundHalfUp(float64(q.Reward.Merits) * speed * diff * levelMultiplier(level)),
		Ondas:      roundHalfUp(float64(q.Reward.Ondas) * streakMultiplier(streak)),
		Experience: roundHalfUp(10 * diff * speed),
	}
}

// speedMultiplier rewards fast answers by the ratio of response time to
// the question's time limit.
func speedMultiplier(responseTime, timeLimit int) float64 {
	if timeLimit <= 0 {
		return 1.0
	}
	ratio := float64(responseTime) / float64(timeLimit)
	switch {
	case ratio <= 0.3:
		return 1.5
	case ratio <= 0.6:
		return 1.2
	case ratio <= 0.8:
		return 1.0
	default:
		return 0.8
	}
}

func difficultyMultiplier(d domain.Difficulty) float64 {
	switch d {
	case domain.DifficultyHard:
		return 1.6
	case domain.DifficultyMedium:
		return 1.3
	default:
		return 1.0
	}
}

func levelMultiplier(level int) float64 {
	if level < 1 {
		level = 1
	}
	return 1 + float64(level-1)*0.1
}

// streakMultiplier applies to ondas only.
func streakMultiplier(streak int) float64 {
	switch {
	case streak >= 10:
		return 2.0
	case streak >= 5:
		return 1.5
	case streak >= 3:
		return 1.2
	default:
		return 1.0
	}
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
