package events

const (
	// KindPlaybackStarted identifies the start of a playback session.
	KindPlaybackStarted Kind = "assistant_playback.started"
	// KindPlaybackEnded identifies the end of a playback session, whether it
	// completed or was stopped.
	KindPlaybackEnded Kind = "assistant_playback.ended"
)

// PlaybackStarted marks a new playback session. Starting one implies any
// previous session was already stopped.
type PlaybackStarted struct {
	Base
	SessionID string
}

func NewPlaybackStarted(sessionID string) PlaybackStarted {
	return PlaybackStarted{Base: NewBase(KindPlaybackStarted), SessionID: sessionID}
}

// PlaybackEnded marks the end of a playback session. Completed is false when
// the session was stopped before the stream finished.
type PlaybackEnded struct {
	Base
	SessionID string
	Completed bool
}

func NewPlaybackEnded(sessionID string, completed bool) PlaybackEnded {
	return PlaybackEnded{Base: NewBase(KindPlaybackEnded), SessionID: sessionID, Completed: completed}
}
