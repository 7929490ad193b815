package conversation

import (
	"reflect"

	"github.com/voicylabs/voicy-core/core/audio"
)

// audioOutput normalizes playback clients behind one nil-safe facade.
//
// The facade caches the optional drain capability derived from base so
// per-session code can route without repeated type assertions.
//
// NOTE: methods intentionally do best-effort forwarding and ignore client
// return errors because playback is a non-fatal side effect of a turn.
type audioOutput struct {
	// base stores the configured output client.
	base AudioOutput
	// drainer is set when the output client can block until buffered audio
	// has actually been played.
	drainer AudioOutputDrainer
}

// newAudioOutput builds a facade and applies Set immediately so capabilities
// are computed once at construction.
func newAudioOutput(client AudioOutput) *audioOutput {
	audioOutput := audioOutput{}
	audioOutput.Set(client)
	return &audioOutput
}

// Set replaces the configured output client and recomputes capabilities. Nil
// and typed-nil clients are treated as unconfigured.
func (a *audioOutput) Set(client AudioOutput) {
	if a == nil {
		return
	}

	a.base = nil
	a.drainer = nil

	if isNilAudioOutput(client) {
		return
	}
	a.base = client

	if drainer, ok := client.(AudioOutputDrainer); ok {
		a.drainer = drainer
	}
}

func (a *audioOutput) isConfigured() bool {
	return a != nil && a.base != nil
}

// SendAudio forwards a chunk to the configured output client. If no client
// is configured, the chunk is dropped.
func (a *audioOutput) SendAudio(audio []byte) {
	if a == nil || a.base == nil {
		return
	}

	a.base.SendAudio(audio)
}

// AwaitDrain blocks until audio already sent has been played. Outputs
// without the capability are assumed to play near-synchronously, so this
// returns immediately for them.
func (a *audioOutput) AwaitDrain() {
	if a == nil || a.drainer == nil {
		return
	}

	a.drainer.AwaitDrain()
}

// Clear flushes buffered output on the configured client.
func (a *audioOutput) Clear() {
	if a == nil || a.base == nil {
		return
	}

	a.base.ClearBuffer()
}

// EncodingInfo returns the active output encoding metadata. If no client is
// configured, the project default encoding is used.
func (a *audioOutput) EncodingInfo() audio.EncodingInfo {
	if a == nil || a.base == nil {
		return audio.GetDefaultEncodingInfo()
	}

	return a.base.EncodingInfo()
}

// isNilAudioOutput detects nil and typed-nil interface values so Set can
// avoid storing unusable interface wrappers as configured clients.
func isNilAudioOutput(client AudioOutput) bool {
	if client == nil {
		return true
	}

	v := reflect.ValueOf(client)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
