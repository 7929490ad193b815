package conversation

import (
	"context"

	"github.com/voicylabs/voicy-core/core/audio"
	"github.com/voicylabs/voicy-core/core/backend"
	"github.com/voicylabs/voicy-core/core/events"
	"github.com/voicylabs/voicy-core/core/vad"
)

type ClientOption func(*Client)

// Backend submits one turn and returns a validated streaming response. The
// production implementation is [backend.Client]; tests substitute doubles.
type Backend interface {
	Submit(ctx context.Context, request backend.Request) (*backend.Response, error)
}

// WithBackend configures the submission backend directly.
func WithBackend(client Backend) ClientOption {
	return func(c *Client) { c.backend = client }
}

// WithBackendURL configures the default HTTP backend against endpoint.
func WithBackendURL(endpoint string) ClientOption {
	return func(c *Client) { c.backend = backend.NewClient(endpoint) }
}

// AudioInput is a capture device client streaming raw PCM chunks.
type AudioInput interface {
	EncodingInfo() audio.EncodingInfo
	Stream(ctx context.Context, onAudio func(audio []byte)) error
	Close()
}

func WithAudioInput(client AudioInput) ClientOption {
	return func(c *Client) { c.audioInput.Set(client) }
}

// AudioOutput is a playback device client consuming raw audio chunks.
type AudioOutput interface {
	EncodingInfo() audio.EncodingInfo
	SendAudio(audio []byte) error
	ClearBuffer()
}

// AudioOutputDrainer is an optional output capability: block until audio
// already sent has actually been played. Outputs without it are assumed to
// play near-synchronously.
type AudioOutputDrainer interface {
	AwaitDrain()
}

func WithAudioOutput(client AudioOutput) ClientOption {
	return func(c *Client) { c.audioOutput.Set(client) }
}

// SpeechSegmenter evaluates captured audio and produces utterances. Start
// and Pause must be idempotent; Pause must stop frame evaluation within one
// frame interval.
type SpeechSegmenter interface {
	Start()
	Pause()
	Process(audio []byte)
	IsSpeaking() bool
}

// SpeechSegmenterBindable is an optional segmenter capability letting the
// core attach its utterance callbacks. [vad.Detector] supports it.
type SpeechSegmenterBindable interface {
	SpeechSegmenter
	SetCallbacks(onSpeechStart func(), onSpeechEnd func(utterance []byte))
}

// WithSegmenter replaces the default voice-activity detector with a custom
// segmentation engine.
func WithSegmenter(client SpeechSegmenter) ClientOption {
	return func(c *Client) { c.segmenter.set(client) }
}

// WithSegmenterOptions configures the default [vad.Detector] built during
// [Client.Converse]. Ignored when a custom segmenter is set.
func WithSegmenterOptions(opts ...vad.Option) ClientOption {
	return func(c *Client) { c.segmenterOptions = append(c.segmenterOptions, opts...) }
}

// WithCapabilities overrides the platform capabilities resolved at startup.
func WithCapabilities(capabilities Capabilities) ClientOption {
	return func(c *Client) { c.capabilities = capabilities }
}

// WithMicEnabled sets the initial user intent for microphone capture.
// Defaults to enabled.
func WithMicEnabled(enabled bool) ClientOption {
	return func(c *Client) { c.initialMicEnabled = enabled }
}

type ConverseOptions struct {
	onEvent                 func(event events.Event)
	onNotification          func(reason events.NotificationReason, message string)
	onTranscriptUpdated     func(messages []backend.Message)
	onSpeakingStateChanged  func(isSpeaking bool)
	onMicStateChanged       func(effective bool)
	onPlaybackStateChanged  func(isPlaying bool)
	onBusyStateChanged      func(isBusy bool)
	onSegmenterStateChanged func(errored bool)
}

type ConverseOption func(*ConverseOptions)

// WithEventCallback registers a callback receiving every core event. It runs
// inline on the emitting path and should not block.
func WithEventCallback(callback func(event events.Event)) ConverseOption {
	return func(o *ConverseOptions) { o.onEvent = callback }
}

// WithNotificationCallback registers a callback for transient user-facing
// failure notices (rate limiting, submission failures, segmenter loss).
func WithNotificationCallback(callback func(reason events.NotificationReason, message string)) ConverseOption {
	return func(o *ConverseOptions) { o.onNotification = callback }
}

// WithTranscriptCallback registers a callback fired after each successful
// turn with a snapshot of the full transcript.
func WithTranscriptCallback(callback func(messages []backend.Message)) ConverseOption {
	return func(o *ConverseOptions) { o.onTranscriptUpdated = callback }
}

// WithSpeakingStateChangedCallback registers a callback for segmenter
// speaking-state updates. Observability only; not used for control flow.
func WithSpeakingStateChangedCallback(callback func(isSpeaking bool)) ConverseOption {
	return func(o *ConverseOptions) { o.onSpeakingStateChanged = callback }
}

// WithMicStateChangedCallback registers a callback for effective capture
// state transitions.
func WithMicStateChangedCallback(callback func(effective bool)) ConverseOption {
	return func(o *ConverseOptions) { o.onMicStateChanged = callback }
}

func WithPlaybackStateChangedCallback(callback func(isPlaying bool)) ConverseOption {
	return func(o *ConverseOptions) { o.onPlaybackStateChanged = callback }
}

// WithBusyStateChangedCallback registers a callback tracking whether a turn
// is in flight, from submission through end of playback. Intended for UI
// input disabling; the core rejects concurrent submissions regardless.
func WithBusyStateChangedCallback(callback func(isBusy bool)) ConverseOption {
	return func(o *ConverseOptions) { o.onBusyStateChanged = callback }
}

func WithSegmenterStateChangedCallback(callback func(errored bool)) ConverseOption {
	return func(o *ConverseOptions) { o.onSegmenterStateChanged = callback }
}
