package app

import (
	"context"
	"sync"
	"time"

	"uplay-player-service/internal/domain"
	"uplay-player-service/internal/engine"
)

// SessionRepository abstracts how live player sessions are tracked
// (in-memory, Redis-marked, etc).
type SessionRepository interface {
	GetOrCreate(key string, catalog domain.Catalog) *Session
	Get(key string) (*Session, bool)
	DeleteIfEmpty(key string)
}

// CatalogRepository loads question catalogs (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, videoID string) (domain.Catalog, error)
}

// Command is a presentation-layer instruction for a player session.
type Command struct {
	Type     string
	Seconds  float64 // seek, seekRelative
	Volume   float64 // setVolume
	OptionID string  // selectAnswer
	Message  string  // mediaError
}

// Update couples a deduped snapshot with the events that produced it.
type Update struct {
	Snapshot engine.Snapshot `json:"snapshot"`
	Events   []engine.Event  `json:"events,omitempty"`
}

// PlayerService contains the player-session use cases.
type PlayerService struct {
	sessions SessionRepository
	catalogs CatalogRepository
}

func NewPlayerService(sessions SessionRepository, catalogs CatalogRepository) *PlayerService {
	return &PlayerService{sessions: sessions, catalogs: catalogs}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(key string, catalog domain.Catalog) *Session {
	return newSession(key, catalog, time.Second)
}

// NewSessionWithInterval is test-only for fast deterministic ticking.
func NewSessionWithInterval(key string, catalog domain.Catalog, interval time.Duration) *Session {
	return newSession(key, catalog, interval)
}

// Open creates or reuses the player session for a video and viewer and
// returns its current snapshot. Unknown videos cannot be opened.
func (s *PlayerService) Open(ctx context.Context, videoID, userID string) (engine.Snapshot, error) {
	catalog, err := s.catalogs.GetCatalog(ctx, videoID)
	if err != nil {
		return engine.Snapshot{}, err
	}
	session := s.sessions.GetOrCreate(SessionKey(videoID, userID), catalog)
	return session.CurrentSnapshot(), nil
}

// Apply dispatches a command to an open session.
func (s *PlayerService) Apply(_ context.Context, videoID, userID string, cmd Command) error {
	session, ok := s.sessions.Get(SessionKey(videoID, userID))
	if !ok {
		return domain.ErrSessionNotFound
	}
	return session.Apply(cmd)
}

// Subscribe returns a channel that receives snapshot updates for a
// session. The caller must invoke the returned cancel function to avoid
// leaks.
func (s *PlayerService) Subscribe(_ context.Context, videoID, userID string) (<-chan Update, func(), error) {
	session, ok := s.sessions.Get(SessionKey(videoID, userID))
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Close drops the session if nobody is subscribed anymore, stopping its
// drive loop. The emptiness check lives in the repository so it runs
// under the store lock; checking here first would race with other
// viewers joining.
func (s *PlayerService) Close(_ context.Context, videoID, userID string) {
	s.sessions.DeleteIfEmpty(SessionKey(videoID, userID))
}

// SessionKey identifies one viewer's run of one video.
func SessionKey(videoID, userID string) string {
	return videoID + ":" + userID
}

// Session drives one player engine at a fixed cadence and fans updates
// out to subscribers. All engine access goes through its mutex, so
// engine operations never run concurrently with each other.
type Session struct {
	key    string
	cancel context.CancelFunc
	done   chan struct{}

	mu          sync.Mutex
	engine      *engine.Engine
	subscribers map[chan Update]struct{}
}

func newSession(key string, catalog domain.Catalog, interval time.Duration) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		key:         key,
		cancel:      cancel,
		done:        make(chan struct{}),
		engine:      engine.New(catalog),
		subscribers: make(map[chan Update]struct{}),
	}
	go s.run(ctx, interval)
	return s
}

// run is the session's only periodic callback. One ticker serves both
// the playback clock and the question countdown; cancelling the context
// stops it, so a reset session cannot leak a countdown.
func (s *Session) run(ctx context.Context, interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Session) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.engine.Tick()
	s.publishLocked(changed)
}

// Apply runs one command against the engine.
func (s *Session) Apply(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed bool
	switch cmd.Type {
	case "play":
		changed = s.engine.Play()
	case "pause":
		changed = s.engine.Pause()
	case "toggle":
		changed = s.engine.Toggle()
	case "seek":
		changed = s.engine.Seek(cmd.Seconds)
	case "seekRelative":
		changed = s.engine.SeekRelative(cmd.Seconds)
	case "setVolume":
		changed = s.engine.SetVolume(cmd.Volume)
	case "toggleMute":
		changed = s.engine.ToggleMute()
	case "mediaReady":
		changed = s.engine.MarkReady()
	case "mediaError":
		changed = s.engine.FailPlayback(cmd.Message)
	case "selectAnswer":
		changed = s.engine.SelectAnswer(cmd.OptionID)
	case "submitAnswer":
		changed = s.engine.SubmitAnswer()
	case "skipQuestion":
		changed = s.engine.SkipQuestion()
	default:
		return domain.ErrUnknownCommand
	}
	s.publishLocked(changed)
	return nil
}

// CurrentSnapshot returns the engine's authoritative view.
func (s *Session) CurrentSnapshot() engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

// IsEmpty reports whether the session has no subscribers.
func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers) == 0
}

// Stop cancels the drive loop and waits for it to exit.
func (s *Session) Stop() {
	s.cancel()
	<-s.done
}

func (s *Session) subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := Update{Snapshot: s.engine.Snapshot()}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// publishLocked fans the current snapshot out when the commit changed
// it or produced events. Dropped transitions stay silent; that is the
// dedup contract.
func (s *Session) publishLocked(changed bool) {
	events := s.engine.DrainEvents()
	if !changed && len(events) == 0 {
		return
	}
	update := Update{Snapshot: s.engine.Snapshot(), Events: events}
	for ch := range s.subscribers {
		select {
		case ch <- update:
		default:
			// Drop the stalest update so slow clients never block the loop.
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}
