package conversation

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/voicylabs/voicy-core/core/audio"
)

// audioInput wraps the configured capture client behind a nil-safe surface.
// The stream runs continuously for the whole conversation; whether captured
// frames reach the segmenter is decided by the mic gate, not here.
type audioInput struct {
	// base stores the configured capture client used for streaming audio.
	base AudioInput

	// connected reports whether a concrete capture client is configured.
	connected atomic.Bool
	// isCapturing reports whether the capture stream is currently running.
	isCapturing atomic.Bool

	// onInputAudio is called for every captured chunk.
	onInputAudio func(audio []byte)
}

func newAudioInput(client AudioInput, onInputAudio func(audio []byte)) *audioInput {
	if onInputAudio == nil {
		onInputAudio = func(audio []byte) {}
	}

	audioInput := audioInput{onInputAudio: onInputAudio}
	audioInput.Set(client)
	return &audioInput
}

func (a *audioInput) Set(client AudioInput) {
	if a == nil {
		return
	}

	a.base = client
	a.connected.Store(false)
	a.isCapturing.Store(false)

	if client == nil {
		return
	}

	a.connected.Store(true)
}

func (a *audioInput) IsConfigured() bool { return a != nil && a.connected.Load() }
func (a *audioInput) IsCapturing() bool  { return a != nil && a.isCapturing.Load() }

// Start launches the capture stream. Safe to call when no client is
// configured or the stream is already running.
func (a *audioInput) Start(ctx context.Context) {
	if a == nil || !a.IsConfigured() {
		return
	}

	if !a.isCapturing.CompareAndSwap(false, true) {
		return
	}

	go func() {
		if err := a.base.Stream(ctx, a.onInputAudio); err != nil {
			a.isCapturing.Store(false)
			// TODO: Find a way to propagate this error
			log.Printf("Failed to start audio input: %v", err)
		}
	}()
}

func (a *audioInput) Close() {
	if a == nil {
		return
	}

	if a.base != nil && a.IsConfigured() {
		a.base.Close()
	}
	a.isCapturing.Store(false)
}

func (a *audioInput) EncodingInfo() audio.EncodingInfo {
	if a == nil || a.base == nil {
		return audio.GetDefaultEncodingInfo()
	}

	return a.base.EncodingInfo()
}
