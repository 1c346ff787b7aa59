package player

// Audio is the single playback output resource owned by an Engine. Load and
// Play may fail asynchronously on the real resource; implementations report
// such failures back through Engine.OnError. The resource serializes load
// requests itself, so a new Load supersedes any in-flight one.
type Audio interface {
	Load(src string) error
	Play() error
	Pause()
	Seek(seconds float64)
	SetVolume(level float64)
}
