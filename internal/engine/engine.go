package engine

import (
	"math"

	"uplay-player-service/internal/domain"
)

// positionEpsilon is the playback-position delta below which a proposed
// snapshot is considered identical to the current one. Ticks move in
// whole seconds, so real progress always publishes; sub-second jitter
// from seeks does not.
const positionEpsilon = 0.5

// EventType enumerates the engine's notifications to the presentation layer.
type EventType string

const (
	EventQuestionActivated   EventType = "questionActivated"
	EventQuestionResolved    EventType = "questionResolved"
	EventAchievementUnlocked EventType = "achievementUnlocked"
	EventRewardEarned        EventType = "rewardEarned"
	EventVideoEnded          EventType = "videoEnded"
	EventPlaybackError       EventType = "playbackError"
)

// Event is a transient notification; the snapshot remains the source of
// truth for durable state.
type Event struct {
	Seq         int                 `json:"seq"`
	Type        EventType           `json:"type"`
	QuestionID  int                 `json:"questionId,omitempty"`
	Outcome     Outcome             `json:"outcome,omitempty"`
	Correct     bool                `json:"correct,omitempty"`
	Reward      *domain.Reward      `json:"reward,omitempty"`
	Achievement *domain.Achievement `json:"achievement,omitempty"`
	Message     string              `json:"message,omitempty"`
}

// PlaybackState is the clock's snapshot view.
type PlaybackState struct {
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
	Volume   float64 `json:"volume"`
	Muted    bool    `json:"muted"`
	Playing  bool    `json:"playing"`
	Loading  bool    `json:"loading"`
	Ended    bool    `json:"ended"`
	Error    string  `json:"error,omitempty"`
}

// ActiveQuestionView is the presentation-facing view of the active question.
type ActiveQuestionView struct {
	Question  domain.Question `json:"question"`
	Selected  string          `json:"selected,omitempty"`
	Remaining int             `json:"remaining"`
}

// Snapshot combines playback, scheduler, and metrics state into one
// consistent view.
type Snapshot struct {
	Playback PlaybackState        `json:"playback"`
	Active   *ActiveQuestionView  `json:"activeQuestion,omitempty"`
	Metrics  domain.PlayerMetrics `json:"metrics"`
}

// Engine composes the playback clock, question scheduler, and metrics
// aggregator behind a single snapshot with dedup-on-write: a proposed
// transition that is semantically identical to the current snapshot is
// dropped and produces no notification. The engine is not goroutine
// safe; the owning session serializes access.
type Engine struct {
	clock     *Clock
	metrics   *Aggregator
	scheduler *Scheduler

	snapshot Snapshot
	events   []Event
	seq      int
}

func New(catalog domain.Catalog) *Engine {
	metrics := NewAggregator()
	e := &Engine{
		clock:     NewClock(catalog.Duration),
		metrics:   metrics,
		scheduler: NewScheduler(catalog.Questions, metrics),
	}
	e.snapshot = e.build()
	return e
}

// Snapshot returns the current authoritative view.
func (e *Engine) Snapshot() Snapshot {
	return e.snapshot
}

// DrainEvents returns pending events and clears the queue.
func (e *Engine) DrainEvents() []Event {
	events := e.events
	e.events = nil
	return events
}

// Tick is the 1 Hz entry point. While a question is active the tick
// drives its countdown and the playback clock stays paused; otherwise
// the clock advances, watch time accrues, and question activation is
// checked at the new whole second. Routing both timers through one
// entry point makes a second activation while one is active impossible.
func (e *Engine) Tick() bool {
	if e.scheduler.Active() != nil {
		if res := e.scheduler.CountdownTick(); res != nil {
			e.emitResolution(res)
		}
		return e.commit()
	}

	advanced, ended := e.clock.Advance()
	if !advanced {
		return e.commit()
	}
	e.metrics.RecordWatchTime(1)
	if ended {
		e.finishVideo()
		return e.commit()
	}
	if active := e.scheduler.CheckActivation(int(e.clock.Position())); active != nil {
		// Showing a question pauses the video until the player resumes.
		e.clock.Pause()
		e.emit(Event{Type: EventQuestionActivated, QuestionID: active.Question.ID})
	}
	return e.commit()
}

// Playback commands.

func (e *Engine) Play() bool  { e.clock.Play(); return e.commit() }
func (e *Engine) Pause() bool { e.clock.Pause(); return e.commit() }

func (e *Engine) Toggle() bool { e.clock.Toggle(); return e.commit() }

func (e *Engine) Seek(t float64) bool { e.clock.Seek(t); return e.commit() }

func (e *Engine) SeekRelative(d float64) bool { e.clock.SeekRelative(d); return e.commit() }

func (e *Engine) SetVolume(v float64) bool { e.clock.SetVolume(v); return e.commit() }

func (e *Engine) ToggleMute() bool { e.clock.ToggleMute(); return e.commit() }

// MarkReady maps the media element's can-play signal.
func (e *Engine) MarkReady() bool { e.clock.MarkReady(); return e.commit() }

// FailPlayback records a playback error. Metrics and the answered set
// stay intact; only playback stops.
func (e *Engine) FailPlayback(message string) bool {
	e.clock.Fail(message)
	e.emit(Event{Type: EventPlaybackError, Message: message})
	return e.commit()
}

// Question commands.

func (e *Engine) SelectAnswer(optionID string) bool {
	e.scheduler.SelectAnswer(optionID)
	return e.commit()
}

func (e *Engine) SubmitAnswer() bool {
	if res := e.scheduler.Submit(); res != nil {
		e.emitResolution(res)
	}
	return e.commit()
}

func (e *Engine) SkipQuestion() bool {
	if res := e.scheduler.Skip(); res != nil {
		e.emitResolution(res)
	}
	return e.commit()
}

func (e *Engine) emitResolution(res *Resolution) {
	event := Event{
		Type:       EventQuestionResolved,
		QuestionID: res.Question.ID,
		Outcome:    res.Outcome,
		Correct:    res.Correct,
	}
	if !res.Reward.IsZero() {
		reward := res.Reward
		event.Reward = &reward
	}
	e.emit(event)
	if res.Reward.Achievement != nil {
		e.emit(Event{Type: EventAchievementUnlocked, Achievement: res.Reward.Achievement})
	}
}

// finishVideo credits the completion bonus and announces the end of the
// media. The bonus scales merits by completion rate and ondas by answer
// accuracy.
func (e *Engine) finishVideo() {
	e.metrics.RecordVideoCompleted()
	m := e.metrics.Metrics()

	state := e.clock.State()
	completionRate := 0.0
	if state.Duration > 0 {
		completionRate = math.Min(m.TotalWatchTime/state.Duration, 1)
	}
	accuracy := 0.0
	if m.QuestionsAnswered > 0 {
		accuracy = float64(m.CorrectAnswers) / float64(m.QuestionsAnswered)
	}

	bonus := domain.Reward{
		Merits: roundHalfUp(20 * completionRate),
		Ondas:  roundHalfUp(10 * accuracy),
	}
	if !bonus.IsZero() {
		e.metrics.AddBonus(bonus)
		e.emit(Event{Type: EventRewardEarned, Reward: &bonus})
	}
	e.emit(Event{Type: EventVideoEnded})
}

func (e *Engine) emit(event Event) {
	e.seq++
	event.Seq = e.seq
	e.events = append(e.events, event)
}

// commit rebuilds the snapshot and installs it only if it differs
// semantically from the current one. Returns whether anything changed.
func (e *Engine) commit() bool {
	next := e.build()
	if snapshotsEquivalent(e.snapshot, next) {
		return false
	}
	e.snapshot = next
	return true
}

func (e *Engine) build() Snapshot {
	snap := Snapshot{
		Playback: e.clock.State(),
		Metrics:  e.metrics.Metrics(),
	}
	if active := e.scheduler.Active(); active != nil {
		snap.Active = &ActiveQuestionView{
			Question:  active.Question,
			Selected:  active.Selected,
			Remaining: active.Remaining,
		}
	}
	return snap
}

// snapshotsEquivalent treats position deltas under positionEpsilon as
// no change; every other field must match exactly.
func snapshotsEquivalent(a, b Snapshot) bool {
	pa, pb := a.Playback, b.Playback
	if math.Abs(pa.Position-pb.Position) >= positionEpsilon {
		return false
	}
	pa.Position, pb.Position = 0, 0
	if pa != pb {
		return false
	}
	if a.Metrics != b.Metrics {
		return false
	}
	switch {
	case a.Active == nil && b.Active == nil:
		return true
	case a.Active == nil || b.Active == nil:
		return false
	}
	return a.Active.Question.ID == b.Active.Question.ID &&
		a.Active.Selected == b.Active.Selected &&
		a.Active.Remaining == b.Active.Remaining
}
