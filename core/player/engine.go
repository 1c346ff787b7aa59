// Package player holds the playback session: one audio resource, a queue of
// songs, and the transport state machine. An Engine is an explicit object
// owned by whoever hosts the session (one per WebSocket connection); there
// is no ambient global instance.
package player

import (
	"math/rand"
	"sync"
	"time"

	"wavefm/logger"
	"wavefm/model"
)

// StateListener receives a state snapshot after every mutation.
type StateListener func(State)

// Engine is the single source of truth for what is playing and how.
// Commands never panic or return errors to the caller; playback failures
// force the transport to paused and are logged.
type Engine struct {
	mu    sync.Mutex
	audio Audio

	queue []*model.Song
	index int

	current  *model.Song
	playing  bool
	volume   float64
	progress float64
	duration float64
	elapsed  float64
	repeat   RepeatMode
	shuffle  bool

	rng      *rand.Rand
	onChange StateListener
}

// NewEngine creates an engine with session defaults: paused, volume 0.7,
// repeat none, shuffle off.
func NewEngine(audio Audio) *Engine {
	return &Engine{
		audio:  audio,
		index:  -1,
		volume: 0.7,
		repeat: RepeatNone,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetOnChange registers the state broadcast callback.
func (e *Engine) SetOnChange(listener StateListener) {
	e.mu.Lock()
	e.onChange = listener
	e.mu.Unlock()
}

// State returns a snapshot of the transport.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// snapshot must be called with the lock held.
func (e *Engine) snapshot() State {
	return State{
		Current:     e.current,
		Playing:     e.playing,
		Volume:      e.volume,
		Progress:    e.progress,
		Duration:    e.duration,
		Elapsed:     e.elapsed,
		Repeat:      e.repeat,
		Shuffle:     e.shuffle,
		QueueLength: len(e.queue),
		Index:       e.index,
	}
}

// notify broadcasts the given snapshot. Called after the lock is released
// so listeners may call back into the engine.
func (e *Engine) notify(state State, listener StateListener) {
	if listener != nil {
		listener(state)
	}
}

// Play replaces the queue with list (when non-empty), sets the current
// index, and starts playing song. An index outside the new queue is
// clamped to 0; the caller may be a remote client and the engine must
// never be left pointing outside its own queue. A load or play failure
// leaves the transport paused.
func (e *Engine) Play(song *model.Song, list []*model.Song, index int) {
	e.mu.Lock()

	if len(list) > 0 {
		e.queue = make([]*model.Song, len(list))
		copy(e.queue, list)
		if index < 0 || index >= len(list) {
			index = 0
		}
		e.index = index
	}
	e.startLocked(song)

	state, listener := e.snapshot(), e.onChange
	e.mu.Unlock()
	e.notify(state, listener)
}

// startLocked loads and plays a song. Must be called with the lock held.
func (e *Engine) startLocked(song *model.Song) {
	e.current = song
	e.progress = 0
	e.elapsed = 0
	e.duration = float64(song.Duration)

	if err := e.audio.Load(song.FileURL); err != nil {
		logger.Warn("audio load failed", logger.String("songId", song.ID), logger.ErrorField(err))
		e.playing = false
		return
	}
	e.audio.SetVolume(e.volume)
	if err := e.audio.Play(); err != nil {
		logger.Warn("audio play failed", logger.String("songId", song.ID), logger.ErrorField(err))
		e.playing = false
		return
	}
	e.playing = true
}

// TogglePlay flips paused and playing. No-op without a current song.
func (e *Engine) TogglePlay() {
	e.mu.Lock()

	if e.current == nil {
		e.mu.Unlock()
		return
	}

	if e.playing {
		e.audio.Pause()
		e.playing = false
	} else {
		if err := e.audio.Play(); err != nil {
			logger.Warn("audio resume failed", logger.ErrorField(err))
			e.playing = false
		} else {
			e.playing = true
		}
	}

	state, listener := e.snapshot(), e.onChange
	e.mu.Unlock()
	e.notify(state, listener)
}

// Next advances the queue. Shuffle and repeat are independent axes:
// repeat-one always wins once triggered, shuffle picks a uniformly random
// candidate, and a candidate equal to the current index with repeat off
// means the queue is exhausted. Sequential wrap-around with repeat off
// lands on the first track paused rather than looping forever.
func (e *Engine) Next() {
	e.mu.Lock()

	n := len(e.queue)
	if n == 0 {
		e.playing = false
		state, listener := e.snapshot(), e.onChange
		e.mu.Unlock()
		e.notify(state, listener)
		return
	}

	var candidate int
	if e.shuffle {
		candidate = e.rng.Intn(n)
	} else {
		candidate = (e.index + 1) % n
	}

	// Exhaustion: the only remaining choice is the track already playing.
	// With a single-song queue shuffle always lands here; only repeat
	// all/one keeps it going.
	if candidate == e.index && e.repeat == RepeatNone {
		e.playing = false
		state, listener := e.snapshot(), e.onChange
		e.mu.Unlock()
		e.notify(state, listener)
		return
	}

	if e.repeat == RepeatOne {
		e.audio.Seek(0)
		e.elapsed = 0
		e.progress = 0
		if err := e.audio.Play(); err != nil {
			logger.Warn("audio replay failed", logger.ErrorField(err))
			e.playing = false
		} else {
			e.playing = true
		}
		state, listener := e.snapshot(), e.onChange
		e.mu.Unlock()
		e.notify(state, listener)
		return
	}

	// Sequential wrap with repeat off: the queue has been played through.
	// Park on the first track, loaded but paused.
	if !e.shuffle && candidate < e.index && e.repeat == RepeatNone {
		e.index = candidate
		song := e.queue[candidate]
		e.current = song
		e.duration = float64(song.Duration)
		e.elapsed = 0
		e.progress = 0
		if err := e.audio.Load(song.FileURL); err != nil {
			logger.Warn("audio load failed", logger.String("songId", song.ID), logger.ErrorField(err))
		}
		e.playing = false
		state, listener := e.snapshot(), e.onChange
		e.mu.Unlock()
		e.notify(state, listener)
		return
	}

	e.index = candidate
	e.startLocked(e.queue[candidate])

	state, listener := e.snapshot(), e.onChange
	e.mu.Unlock()
	e.notify(state, listener)
}

// Previous moves to the prior track, wrapping to the last element from
// index 0, and always plays it regardless of repeat and shuffle.
func (e *Engine) Previous() {
	e.mu.Lock()

	n := len(e.queue)
	if n == 0 {
		e.mu.Unlock()
		return
	}

	if e.index > 0 {
		e.index--
	} else {
		e.index = n - 1
	}
	e.startLocked(e.queue[e.index])

	state, listener := e.snapshot(), e.onChange
	e.mu.Unlock()
	e.notify(state, listener)
}

// Seek relocates playback to percent (0-100) of the duration. A no-op when
// the duration is unknown; progress state updates immediately otherwise.
func (e *Engine) Seek(percent float64) {
	e.mu.Lock()

	if e.duration <= 0 {
		e.mu.Unlock()
		return
	}
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}

	e.elapsed = percent / 100 * e.duration
	e.progress = percent
	e.audio.Seek(e.elapsed)

	state, listener := e.snapshot(), e.onChange
	e.mu.Unlock()
	e.notify(state, listener)
}

// SetVolume sets the output level. Out-of-range values are clamped to
// [0, 1], so the audio resource never sees an invalid level.
func (e *Engine) SetVolume(level float64) {
	e.mu.Lock()

	if level < 0 {
		level = 0
	} else if level > 1 {
		level = 1
	}
	e.volume = level
	e.audio.SetVolume(level)

	state, listener := e.snapshot(), e.onChange
	e.mu.Unlock()
	e.notify(state, listener)
}

// SetRepeatMode sets the repeat mode. Pure state, no playback side effect.
func (e *Engine) SetRepeatMode(mode RepeatMode) {
	e.mu.Lock()
	switch mode {
	case RepeatNone, RepeatOne, RepeatAll:
		e.repeat = mode
	}
	state, listener := e.snapshot(), e.onChange
	e.mu.Unlock()
	e.notify(state, listener)
}

// SetShuffle sets the shuffle flag. Pure state, no playback side effect.
func (e *Engine) SetShuffle(enabled bool) {
	e.mu.Lock()
	e.shuffle = enabled
	state, listener := e.snapshot(), e.onChange
	e.mu.Unlock()
	e.notify(state, listener)
}

// OnMetadata records the total duration reported by the audio resource.
func (e *Engine) OnMetadata(duration float64) {
	e.mu.Lock()
	e.duration = duration
	state, listener := e.snapshot(), e.onChange
	e.mu.Unlock()
	e.notify(state, listener)
}

// OnProgress records a progress tick. Progress is elapsed/duration*100, or
// 0 while the duration is unknown.
func (e *Engine) OnProgress(elapsed float64) {
	e.mu.Lock()
	e.elapsed = elapsed
	if e.duration > 0 {
		e.progress = elapsed / e.duration * 100
	} else {
		e.progress = 0
	}
	state, listener := e.snapshot(), e.onChange
	e.mu.Unlock()
	e.notify(state, listener)
}

// OnEnded handles track completion by advancing the queue.
func (e *Engine) OnEnded() {
	e.Next()
}

// OnError handles an audio resource fault: transport reverts to paused and
// the failure is logged. The user can retry manually.
func (e *Engine) OnError(err error) {
	e.mu.Lock()
	logger.Warn("audio resource error", logger.ErrorField(err))
	e.playing = false
	state, listener := e.snapshot(), e.onChange
	e.mu.Unlock()
	e.notify(state, listener)
}
