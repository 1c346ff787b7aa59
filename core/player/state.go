package player

import "wavefm/model"

// RepeatMode controls what happens when the queue advances.
type RepeatMode string

const (
	RepeatNone RepeatMode = "none"
	RepeatOne  RepeatMode = "one"
	RepeatAll  RepeatMode = "all"
)

// State is a snapshot of the transport. It is what the UI renders.
type State struct {
	Current     *model.Song `json:"current"`
	Playing     bool        `json:"playing"`
	Volume      float64     `json:"volume"`
	Progress    float64     `json:"progress"` // 0-100 percent
	Duration    float64     `json:"duration"` // seconds
	Elapsed     float64     `json:"elapsed"`  // seconds
	Repeat      RepeatMode  `json:"repeat"`
	Shuffle     bool        `json:"shuffle"`
	QueueLength int         `json:"queueLength"`
	Index       int         `json:"index"`
}
