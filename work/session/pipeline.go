package session

import "context"

// Pipeline is a single media decode session. The controller owns at most
// one at a time: teardown of the previous pipeline always completes before
// a new one is attached.
type Pipeline interface {
	// Load fetches and decodes the stream manifest, emitting OnReady or
	// OnError exactly once. Cancelling ctx abandons the load silently.
	Load(ctx context.Context)

	// Play requests playback. The error corresponds to an autoplay
	// rejection and is logged by the controller, never surfaced.
	Play() error

	// Pause halts playback.
	Pause()

	// SetVolume pushes a volume level and mute flag into the pipeline,
	// which echoes them back through OnVolume.
	SetVolume(level float64, muted bool)

	// Position reports current playback position and total duration in
	// seconds. Duration is 0 for live streams.
	Position() (pos, dur float64)

	// Close tears the session down. It is idempotent and must leave
	// nothing running in the background.
	Close()
}

// PipelineEvents carries the callbacks a pipeline uses to notify the
// controller. Events arriving after teardown are discarded by generation
// checks in the controller.
type PipelineEvents struct {
	OnReady  func()
	OnError  func(reason string)
	OnPlay   func()
	OnPause  func()
	OnVolume func(level float64, muted bool)
}

// PipelineFactory builds a decode session for a stream URL.
type PipelineFactory func(url string, ev PipelineEvents) Pipeline
