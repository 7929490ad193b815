// Package conversation implements a voice conversation client: it captures
// microphone audio, segments it into utterances, submits each utterance (or
// typed input) to a backend together with the running transcript, and plays
// the synthesized reply while keeping the microphone gated so the assistant
// never hears itself.
package conversation

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/voicylabs/voicy-core/core/backend"
	"github.com/voicylabs/voicy-core/core/events"
	"github.com/voicylabs/voicy-core/core/vad"
)

const segmenterUnavailableMessage = "Voice detection failed to load."

type Client struct {
	transcript transcript
	turns      turnState

	backend Backend

	// audioInput is the capture facade used to normalize device behavior.
	audioInput *audioInput
	// audioOutput is the playback facade; player streams through it.
	audioOutput *audioOutput
	player      *streamingPlayer

	// segmenter is the segmentation facade used to handle optional client
	// wiring and availability tracking.
	segmenter        *speechSegmenter
	segmenterOptions []vad.Option

	micGate      *micGate
	capabilities Capabilities

	initialMicEnabled bool

	emitter     eventEmitter
	baseContext context.Context

	closeOnce sync.Once
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseContext:       context.Background(),
		initialMicEnabled: true,
		capabilities:      ResolveCapabilities(),
		emitter:           noopEventEmitter,
	}

	c.audioOutput = newAudioOutput(nil)
	c.player = newStreamingPlayer(c.audioOutput)
	c.segmenter = newSpeechSegmenter(nil)
	c.audioInput = newAudioInput(nil, func(audio []byte) {
		c.segmenter.Process(audio)
	})

	for _, opt := range opts {
		opt(c)
	}

	c.micGate = newMicGate(c.segmenter, c.capabilities.UnreliableCaptureResume)
	c.micGate.userEnabled = c.initialMicEnabled

	return c
}

// Converse starts the conversation loop: the segmenter is brought up, the
// capture stream begins, and the client reacts to utterances until ctx is
// cancelled or Close is called.
//
// Contract: call Converse at most once per client instance. Repeated or
// concurrent calls are unsupported and may race while callbacks are being
// reconfigured.
func (c *Client) Converse(ctx context.Context, opts ...ConverseOption) {
	options := ConverseOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	c.baseContext = ctx
	c.emitter = newCallbackEventEmitter(c, options)

	c.micGate.setOnChange(func(userEnabled, suppressed, effective bool) {
		c.emit(events.NewMicStateChanged(userEnabled, suppressed, effective))
	})
	c.player.SetCallbacks(c.onPlaybackStarted, c.onPlaybackEnded)

	c.startSegmenter()
	c.micGate.sync()
	c.audioInput.Start(ctx)

	go func() {
		<-ctx.Done()
		c.Close()
	}()
}

// startSegmenter builds the default voice-activity detector unless a custom
// segmenter was configured, then binds the utterance callbacks. A detector
// that fails to load disables voice capture for the session; typed input
// keeps working.
func (c *Client) startSegmenter() {
	if c.segmenter.client == nil {
		c.segmenter.setLoading(true)
		c.emit(events.NewSegmenterStateChanged(true, false))

		detector, err := vad.New(c.segmenterOptions...)
		if err != nil {
			log.Printf("Failed to load speech segmenter: %v", err)
			c.segmenter.markErrored()
			c.emit(events.NewSegmenterStateChanged(false, true))
			c.emit(events.NewNotification(events.ReasonSegmenterUnavailable, segmenterUnavailableMessage))
			return
		}

		c.segmenter.set(detector)
		c.segmenter.setLoading(false)
		c.emit(events.NewSegmenterStateChanged(false, false))
	}

	c.segmenter.bind(c.onSpeechStart, c.onSpeechEnd)
}

func (c *Client) emit(event events.Event) {
	if c.emitter != nil {
		c.emitter(event)
	}
}

func (c *Client) onSpeechStart() {
	c.emit(events.NewUserSpeechStarted())
}

func (c *Client) onSpeechEnd(utterance []byte) {
	c.emit(events.NewUserSpeechEnded())

	// Gate transitions race the tail of an utterance; speech that ends
	// while capture is off is discarded, never submitted late.
	if !c.micGate.Effective() {
		return
	}
	if len(utterance) == 0 {
		return
	}

	c.emit(events.NewUserUtteranceCaptured(utterance))
	if err := c.submitTurn(c.baseContext, turnInput{utterance: utterance}); err != nil {
		log.Printf("Dropping utterance: %v", err)
	}
}

// SubmitText submits typed input as a turn. Blank input is ignored. Returns
// [ErrTurnInFlight] when another turn is active; the input is dropped, not
// queued.
func (c *Client) SubmitText(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	return c.submitTurn(c.baseContext, turnInput{text: text})
}

// SetMicEnabled records the user's capture preference. While a reply is
// playing the preference is stored and takes effect once playback ends.
func (c *Client) SetMicEnabled(enabled bool) {
	c.micGate.SetUserIntent(enabled)
}

// MicEnabled reports the user's capture preference, regardless of whether a
// playback suppression currently overrides it.
func (c *Client) MicEnabled() bool { return c.micGate.UserEnabled() }

// MicEffective reports whether capture is actually active right now.
func (c *Client) MicEffective() bool { return c.micGate.Effective() }

func (c *Client) IsUserSpeaking() bool { return c.segmenter.IsSpeaking() }

func (c *Client) SegmenterLoading() bool { return c.segmenter.IsLoading() }
func (c *Client) SegmenterErrored() bool { return c.segmenter.IsErrored() }

// Transcript returns a point-in-time copy of the conversation history,
// oldest first.
func (c *Client) Transcript() []backend.Message { return c.transcript.Snapshot() }

// IsBusy reports whether a turn is anywhere between submission and end of
// playback.
func (c *Client) IsBusy() bool { return c.turns.Phase() != phaseIdle }

// StopPlayback halts the current reply early. The turn still counts as
// completed; the transcript keeps both entries.
func (c *Client) StopPlayback() { c.player.Stop() }

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.player.Stop()
		c.segmenter.Pause()
		c.audioInput.Close()
	})
}
