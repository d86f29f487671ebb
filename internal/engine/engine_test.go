package engine

import (
	"testing"

	"uplay-player-service/internal/domain"
)

func testCatalog() domain.Catalog {
	return domain.Catalog{
		VideoID:  "video-1",
		Duration: 120,
		Questions: []domain.Question{
			windowQuestion(1, 3, 30, 5),
		},
	}
}

func readyEngine(t *testing.T, catalog domain.Catalog) *Engine {
	t.Helper()
	e := New(catalog)
	e.MarkReady()
	e.DrainEvents()
	return e
}

func TestTickActivatesAndPausesPlayback(t *testing.T) {
	e := readyEngine(t, testCatalog())
	e.Play()

	for i := 0; i < 3; i++ {
		e.Tick()
	}

	snap := e.Snapshot()
	if snap.Active == nil || snap.Active.Question.ID != 1 {
		t.Fatalf("expected question active at t=3, got %+v", snap.Active)
	}
	if snap.Playback.Playing {
		t.Fatalf("expected playback paused while question is shown")
	}
	if snap.Active.Remaining != 5 {
		t.Fatalf("expected full countdown remaining, got %d", snap.Active.Remaining)
	}

	events := e.DrainEvents()
	if len(events) == 0 || events[len(events)-1].Type != EventQuestionActivated {
		t.Fatalf("expected activation event, got %+v", events)
	}
}

func TestTickDrivesCountdownNotClock(t *testing.T) {
	e := readyEngine(t, testCatalog())
	e.Play()
	for i := 0; i < 3; i++ {
		e.Tick()
	}
	e.DrainEvents()
	position := e.Snapshot().Playback.Position

	e.Tick()
	snap := e.Snapshot()
	if snap.Playback.Position != position {
		t.Fatalf("clock must not advance during a question, got %v", snap.Playback.Position)
	}
	if snap.Active == nil || snap.Active.Remaining != 4 {
		t.Fatalf("expected countdown at 4, got %+v", snap.Active)
	}
}

func TestCountdownTimeoutReturnsToIdle(t *testing.T) {
	e := readyEngine(t, testCatalog())
	e.Play()
	for i := 0; i < 3; i++ {
		e.Tick()
	}
	e.DrainEvents()

	for i := 0; i < 5; i++ {
		e.Tick()
	}
	snap := e.Snapshot()
	if snap.Active != nil {
		t.Fatalf("expected idle after timeout, got %+v", snap.Active)
	}
	events := e.DrainEvents()
	var resolved *Event
	for i := range events {
		if events[i].Type == EventQuestionResolved {
			resolved = &events[i]
		}
	}
	if resolved == nil || resolved.Outcome != OutcomeTimedOut {
		t.Fatalf("expected timed-out resolution event, got %+v", events)
	}
}

func TestAnswerFlowEmitsRewardAndAchievement(t *testing.T) {
	e := readyEngine(t, testCatalog())
	e.Play()
	for i := 0; i < 3; i++ {
		e.Tick()
	}
	e.DrainEvents()

	e.SelectAnswer("a")
	e.SubmitAnswer()

	events := e.DrainEvents()
	var resolved, unlocked bool
	for _, event := range events {
		switch event.Type {
		case EventQuestionResolved:
			resolved = true
			if event.Reward == nil || event.Reward.Merits == 0 {
				t.Fatalf("expected reward on correct resolution, got %+v", event)
			}
			if event.Reward.Achievement == nil || event.Reward.Achievement.ID != "first-correct" {
				t.Fatalf("expected reward to carry the unlocked achievement, got %+v", event.Reward)
			}
		case EventAchievementUnlocked:
			unlocked = true
		}
	}
	if !resolved || !unlocked {
		t.Fatalf("expected resolution and achievement events, got %+v", events)
	}
	if e.Snapshot().Metrics.CorrectAnswers != 1 {
		t.Fatalf("expected metrics updated, got %+v", e.Snapshot().Metrics)
	}
}

func TestDedupDropsRedundantTransitions(t *testing.T) {
	e := readyEngine(t, testCatalog())

	if !e.Play() {
		t.Fatalf("expected first play to change state")
	}
	if e.Play() {
		t.Fatalf("expected second play to be dropped")
	}
	if e.Pause() != true {
		t.Fatalf("expected pause to change state")
	}
	if e.Pause() {
		t.Fatalf("expected second pause to be dropped")
	}
	if e.SetVolume(0.4) != true {
		t.Fatalf("expected volume change to publish")
	}
	if e.SetVolume(0.4) {
		t.Fatalf("expected identical volume to be dropped")
	}
}

func TestSeekClampsToDuration(t *testing.T) {
	e := readyEngine(t, testCatalog())
	e.Seek(500)
	if got := e.Snapshot().Playback.Position; got != 120 {
		t.Fatalf("expected clamp to duration, got %v", got)
	}
	e.Seek(-10)
	if got := e.Snapshot().Playback.Position; got != 0 {
		t.Fatalf("expected clamp to zero, got %v", got)
	}
	e.SeekRelative(30.2)
	if got := e.Snapshot().Playback.Position; got != 30.2 {
		t.Fatalf("expected relative seek, got %v", got)
	}
}

func TestEndOfVideoPaysCompletionBonus(t *testing.T) {
	catalog := domain.Catalog{VideoID: "short", Duration: 3}
	e := readyEngine(t, catalog)
	e.Play()

	for i := 0; i < 3; i++ {
		e.Tick()
	}

	snap := e.Snapshot()
	if !snap.Playback.Ended || snap.Playback.Playing {
		t.Fatalf("expected ended playback, got %+v", snap.Playback)
	}
	// Full watch -> completion rate 1 -> 20 merits; nothing answered -> 0 ondas.
	if snap.Metrics.Merits != 20 || snap.Metrics.Ondas != 0 {
		t.Fatalf("unexpected bonus: %+v", snap.Metrics)
	}
	if snap.Metrics.VideosCompleted != 1 {
		t.Fatalf("expected completed counter bump, got %+v", snap.Metrics)
	}

	events := e.DrainEvents()
	var sawReward, sawEnded bool
	for _, event := range events {
		if event.Type == EventRewardEarned {
			sawReward = true
		}
		if event.Type == EventVideoEnded {
			sawEnded = true
		}
	}
	if !sawReward || !sawEnded {
		t.Fatalf("expected reward and ended events, got %+v", events)
	}

	// The clock stopped; further ticks change nothing.
	if e.Tick() {
		t.Fatalf("expected no change after end of media")
	}
}

func TestPlaybackFailureKeepsMetricsIntact(t *testing.T) {
	e := readyEngine(t, testCatalog())
	e.Play()
	for i := 0; i < 3; i++ {
		e.Tick()
	}
	e.SelectAnswer("a")
	e.SubmitAnswer()
	e.DrainEvents()
	before := e.Snapshot().Metrics

	e.FailPlayback("unsupported source")
	snap := e.Snapshot()
	if snap.Playback.Error != "unsupported source" || snap.Playback.Playing {
		t.Fatalf("expected stopped errored playback, got %+v", snap.Playback)
	}
	if snap.Metrics != before {
		t.Fatalf("metrics must survive a playback failure: %+v vs %+v", before, snap.Metrics)
	}
	if e.Tick() {
		t.Fatalf("expected no ticking after failure")
	}
}
