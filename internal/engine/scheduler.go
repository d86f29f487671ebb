package engine

import "uplay-player-service/internal/domain"

// Outcome classifies how an active question was resolved.
type Outcome string

const (
	OutcomeAnswered Outcome = "answered"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeTimedOut Outcome = "timedOut"
)

// ActiveQuestion tracks the single question currently presented to the
// player. At most one exists per session.
type ActiveQuestion struct {
	Question  domain.Question
	Selected  string // option id, empty until the player picks one
	Remaining int    // countdown seconds left
	Elapsed   int    // whole seconds since activation
}

// Resolution describes a completed question for collaborators: the
// outcome, the reward (zero unless answered correctly, carrying any
// achievement crossed by it), and the metrics snapshot after the update.
type Resolution struct {
	Question     domain.Question
	Outcome      Outcome
	Correct      bool
	ResponseTime int
	Reward       domain.Reward
	Metrics      domain.PlayerMetrics
}

// Scheduler is the question-activation state machine for one catalog.
// It is the sole writer of the answered-id set: ids are added exactly
// once, at resolution, never at activation.
type Scheduler struct {
	questions []domain.Question
	metrics   *Aggregator
	answered  map[int]struct{}
	active    *ActiveQuestion
}

func NewScheduler(questions []domain.Question, metrics *Aggregator) *Scheduler {
	return &Scheduler{
		questions: questions,
		metrics:   metrics,
		answered:  make(map[int]struct{}),
	}
}

// Active returns the currently presented question, or nil.
func (s *Scheduler) Active() *ActiveQuestion {
	return s.active
}

// Answered reports whether a question id has been resolved this session.
func (s *Scheduler) Answered(id int) bool {
	_, ok := s.answered[id]
	return ok
}

// AnsweredCount returns how many questions have been resolved.
func (s *Scheduler) AnsweredCount() int {
	return len(s.answered)
}

// CheckActivation activates the first unresolved question in catalog
// order whose window covers playback second t, provided no question is
// already active. First match wins when windows overlap; a question
// whose window lapses while another is active simply never activates.
func (s *Scheduler) CheckActivation(t int) *ActiveQuestion {
	if s.active != nil {
		return nil
	}
	for i := range s.questions {
		q := s.questions[i]
		if _, done := s.answered[q.ID]; done {
			continue
		}
		if t >= q.Timestamp && t <= q.EndTimestamp {
			s.active = &ActiveQuestion{Question: q, Remaining: q.TimeLimit}
			return s.active
		}
	}
	return nil
}

// CountdownTick advances the active question's countdown by one second
// and resolves it as timed out when it hits zero. A tick arriving after
// the question was already resolved is ignored.
func (s *Scheduler) CountdownTick() *Resolution {
	if s.active == nil {
		return nil
	}
	s.active.Elapsed++
	s.active.Remaining--
	if s.active.Remaining > 0 {
		return nil
	}
	return s.resolve(OutcomeTimedOut, false)
}

// SelectAnswer records a pending answer without resolving. Unknown
// option ids are ignored.
func (s *Scheduler) SelectAnswer(optionID string) bool {
	if s.active == nil {
		return false
	}
	for _, opt := range s.active.Question.Options {
		if opt.ID == optionID {
			s.active.Selected = optionID
			return true
		}
	}
	return false
}

// Submit resolves the pending answer. Without a selection it is a
// no-op, per the caller contract.
func (s *Scheduler) Submit() *Resolution {
	if s.active == nil || s.active.Selected == "" {
		return nil
	}
	correct := s.active.Selected == s.active.Question.CorrectAnswerID
	return s.resolve(OutcomeAnswered, correct)
}

// Skip resolves the active question with no reward and breaks the streak.
func (s *Scheduler) Skip() *Resolution {
	if s.active == nil {
		return nil
	}
	return s.resolve(OutcomeSkipped, false)
}

func (s *Scheduler) resolve(outcome Outcome, correct bool) *Resolution {
	active := s.active
	s.active = nil
	s.answered[active.Question.ID] = struct{}{}

	res := &Resolution{
		Question:     active.Question,
		Outcome:      outcome,
		Correct:      correct,
		ResponseTime: active.Elapsed,
	}
	if outcome == OutcomeAnswered {
		prev := s.metrics.Metrics()
		metrics, reward := s.metrics.ApplyAnswer(active.Question, correct, active.Elapsed)
		reward.Achievement = EvaluateAchievement(prev, metrics)
		res.Reward = reward
		res.Metrics = metrics
	} else {
		s.metrics.ResetStreak()
		res.Metrics = s.metrics.Metrics()
	}
	return res
}
