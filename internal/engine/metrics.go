package engine

import (
	"math"

	"uplay-player-service/internal/domain"
)

// Aggregator owns one session's cumulative PlayerMetrics. No other
// component writes to them; collaborators receive value snapshots.
type Aggregator struct {
	metrics domain.PlayerMetrics
}

func NewAggregator() *Aggregator {
	return &Aggregator{metrics: domain.PlayerMetrics{Level: 1}}
}

// Metrics returns the current snapshot.
func (a *Aggregator) Metrics() domain.PlayerMetrics {
	return a.metrics
}

// ApplyAnswer records one answered question. The reward is computed
// against the metrics as they stood before this update, then counters,
// streak, experience, level, and currency totals are advanced. Returns
// the new snapshot and the reward earned.
func (a *Aggregator) ApplyAnswer(q domain.Question, correct bool, responseTime int) (domain.PlayerMetrics, domain.Reward) {
	reward := CalculateReward(q, correct, responseTime, a.metrics.Level, a.metrics.CurrentStreak)

	m := a.metrics
	m.QuestionsAnswered++
	if correct {
		m.CorrectAnswers++
		m.CurrentStreak++
	} else {
		m.CurrentStreak = 0
	}
	if m.CurrentStreak > m.MaxStreak {
		m.MaxStreak = m.CurrentStreak
	}
	m.Experience += reward.Experience
	m.Level = levelForExperience(m.Experience)
	m.Merits += reward.Merits
	m.Ondas += reward.Ondas

	a.metrics = m
	return m, reward
}

// RecordWatchTime adds watched seconds; no other side effects.
func (a *Aggregator) RecordWatchTime(seconds float64) {
	a.metrics.TotalWatchTime += seconds
}

// ResetStreak breaks the streak; used on skip and timeout.
func (a *Aggregator) ResetStreak() {
	a.metrics.CurrentStreak = 0
}

// AddBonus credits currency outside the answer path (completion bonus).
// Experience is unaffected, so the level cannot change here.
func (a *Aggregator) AddBonus(r domain.Reward) domain.PlayerMetrics {
	a.metrics.Merits += r.Merits
	a.metrics.Ondas += r.Ondas
	return a.metrics
}

// RecordVideoCompleted bumps the completed-video counter.
func (a *Aggregator) RecordVideoCompleted() {
	a.metrics.VideosCompleted++
}

// levelForExperience derives level from total experience:
// floor(sqrt(exp/100)) + 1. Monotonic non-decreasing in exp.
func levelForExperience(exp int) int {
	if exp <= 0 {
		return 1
	}
	return int(math.Sqrt(float64(exp)/100)) + 1
}
