package engine

// Clock owns playback position and transport-level flags for one video.
// It has no timer of its own; the session drive loop calls Advance once
// per elapsed second while playing.
type Clock struct {
	position float64
	duration float64
	volume   float64
	muted    bool
	playing  bool
	loading  bool
	ended    bool
	err      string
}

func NewClock(duration float64) *Clock {
	return &Clock{duration: duration, volume: 1, loading: true}
}

// MarkReady corresponds to the media element's can-play signal.
func (c *Clock) MarkReady() {
	c.loading = false
}

// Fail records a non-fatal playback error (unsupported source, network
// failure). Playback stops; no retry is attempted.
func (c *Clock) Fail(message string) {
	c.err = message
	c.playing = false
	c.loading = false
}

func (c *Clock) Play() {
	if c.loading || c.err != "" || c.ended {
		return
	}
	c.playing = true
}

func (c *Clock) Pause() {
	c.playing = false
}

func (c *Clock) Toggle() {
	if c.playing {
		c.Pause()
	} else {
		c.Play()
	}
}

// Seek clamps to [0, duration]; out-of-range requests are clamped, not
// rejected. Seeking back from the end re-arms playback.
func (c *Clock) Seek(t float64) {
	if t < 0 {
		t = 0
	}
	if c.duration > 0 && t > c.duration {
		t = c.duration
	}
	c.position = t
	if c.ended && c.position < c.duration {
		c.ended = false
	}
}

func (c *Clock) SeekRelative(delta float64) {
	c.Seek(c.position + delta)
}

// SetVolume clamps to [0, 1]. Setting zero mutes, matching media
// element behavior.
func (c *Clock) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.volume = v
	c.muted = v == 0
}

func (c *Clock) ToggleMute() {
	c.muted = !c.muted
}

// Advance moves the clock one second forward. It reports whether the
// position moved and whether the media reached its end on this tick; at
// the end the clock stops ticking until a seek re-arms it.
func (c *Clock) Advance() (advanced, ended bool) {
	if !c.playing || c.loading || c.err != "" {
		return false, false
	}
	c.position += 1
	if c.duration > 0 && c.position >= c.duration {
		c.position = c.duration
		c.playing = false
		c.ended = true
		return true, true
	}
	return true, false
}

func (c *Clock) Position() float64 { return c.position }
func (c *Clock) Playing() bool     { return c.playing }

// State returns the snapshot-friendly view.
func (c *Clock) State() PlaybackState {
	return PlaybackState{
		Position: c.position,
		Duration: c.duration,
		Volume:   c.volume,
		Muted:    c.muted,
		Playing:  c.playing,
		Loading:  c.loading,
		Ended:    c.ended,
		Error:    c.err,
	}
}
