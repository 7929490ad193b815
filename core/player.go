package conversation

import (
	"errors"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"
)

const playbackChunkSize = 4096

// playbackSession is one response stream being copied to the audio output.
// At most one session is live at a time; starting a new one fully halts the
// previous session first.
type playbackSession struct {
	id     string
	stream io.ReadCloser

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newPlaybackSession(stream io.ReadCloser) *playbackSession {
	return &playbackSession{
		id:     uuid.NewString(),
		stream: stream,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// halt requests the session to end and blocks until its goroutine has
// returned. Closing the stream unblocks a Read in progress.
func (s *playbackSession) halt() {
	if s == nil {
		return
	}

	s.stopOnce.Do(func() {
		close(s.stop)
		s.stream.Close()
	})
	<-s.done
}

func (s *playbackSession) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// streamingPlayer copies response audio streams to the output client chunk
// by chunk, so playback starts as soon as the first bytes arrive instead of
// waiting for the full response body.
type streamingPlayer struct {
	mu      sync.Mutex
	session *playbackSession

	output *audioOutput

	onStarted func(sessionID string)
	onEnded   func(sessionID string, completed bool)
}

func newStreamingPlayer(output *audioOutput) *streamingPlayer {
	return &streamingPlayer{
		output:    output,
		onStarted: func(string) {},
		onEnded:   func(string, bool) {},
	}
}

func (p *streamingPlayer) SetCallbacks(onStarted func(sessionID string), onEnded func(sessionID string, completed bool)) {
	if p == nil {
		return
	}

	if onStarted != nil {
		p.onStarted = onStarted
	}
	if onEnded != nil {
		p.onEnded = onEnded
	}
}

// Play halts any live session, then streams the body to the output until it
// is exhausted or the session is stopped. onEnded fires with completed=true
// only when the stream reached its natural end and the buffered audio has
// drained.
func (p *streamingPlayer) Play(stream io.ReadCloser) {
	if p == nil || stream == nil {
		return
	}

	p.mu.Lock()
	previous := p.session
	p.mu.Unlock()
	previous.halt()

	session := newPlaybackSession(stream)
	p.mu.Lock()
	p.session = session
	p.mu.Unlock()

	p.onStarted(session.id)
	go p.run(session)
}

func (p *streamingPlayer) run(session *playbackSession) {
	defer close(session.done)
	defer session.stream.Close()

	buffer := make([]byte, playbackChunkSize)
	for {
		if session.stopped() {
			p.onEnded(session.id, false)
			return
		}

		n, err := session.stream.Read(buffer)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buffer[:n])
			p.output.SendAudio(chunk)
		}

		if err != nil {
			if session.stopped() {
				p.onEnded(session.id, false)
				return
			}

			if !errors.Is(err, io.EOF) {
				log.Printf("Playback stream ended with error: %v", err)
				p.onEnded(session.id, false)
				return
			}

			p.output.AwaitDrain()
			if session.stopped() {
				p.onEnded(session.id, false)
				return
			}

			p.onEnded(session.id, true)
			return
		}
	}
}

// Stop halts the live session, if any, and flushes buffered output. Safe to
// call when nothing is playing.
func (p *streamingPlayer) Stop() {
	if p == nil {
		return
	}

	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session == nil {
		return
	}

	session.halt()
	p.output.Clear()
}

func (p *streamingPlayer) IsPlaying() bool {
	if p == nil {
		return false
	}

	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session == nil {
		return false
	}

	select {
	case <-session.done:
		return false
	default:
		return true
	}
}
