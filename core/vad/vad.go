// Package vad segments a continuous PCM stream into discrete utterances
// using a frame-level speech probability model.
package vad

import (
	"encoding/binary"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

const (
	DefaultPositiveSpeechThreshold = 0.6
	DefaultNegativeSpeechThreshold = 0.35
	DefaultMinSpeechFrames         = 4
	DefaultPreSpeechPadFrames      = 1
	DefaultRedemptionFrames        = 8
	// DefaultFrameSamples is 32ms of audio at 16kHz.
	DefaultFrameSamples = 512
)

// Model scores one PCM frame with a speech probability in [0, 1].
type Model interface {
	Predict(frame []int16) (float64, error)
}

// Detector consumes PCM16 audio through [Detector.Process] and emits an
// utterance buffer when it judges the user stopped speaking.
//
// Speech begins once a frame scores at or above the positive threshold and
// ends after RedemptionFrames consecutive frames score below the negative
// threshold. Utterances that never accumulate MinSpeechFrames positive
// frames are discarded as transients. The emitted buffer spans from
// PreSpeechPadFrames before detected start through detected end.
type Detector struct {
	model Model

	positiveSpeechThreshold float64
	negativeSpeechThreshold float64
	minSpeechFrames         int
	preSpeechPadFrames      int
	redemptionFrames        int
	frameSamples            int

	modelPath   string
	threads     int
	modelLoader func(path string, threads int) (Model, error)

	// enabled gates frame evaluation; checked once per frame so a pause
	// takes effect within one frame interval.
	enabled  atomic.Bool
	speaking atomic.Bool

	mu             sync.Mutex
	pending        []byte
	preSpeech      [][]byte
	utterance      [][]byte
	positiveFrames int
	redemption     int
	inSpeech       bool

	onSpeechStart func()
	onSpeechEnd   func(utterance []byte)
}

// New builds a detector. A model load failure is returned to the caller and
// should be treated as a persistent unavailable state; there is no retry.
func New(opts ...Option) (*Detector, error) {
	detector := &Detector{
		positiveSpeechThreshold: DefaultPositiveSpeechThreshold,
		negativeSpeechThreshold: DefaultNegativeSpeechThreshold,
		minSpeechFrames:         DefaultMinSpeechFrames,
		preSpeechPadFrames:      DefaultPreSpeechPadFrames,
		redemptionFrames:        DefaultRedemptionFrames,
		frameSamples:            DefaultFrameSamples,
		threads:                 1,
	}

	for _, opt := range opts {
		opt(detector)
	}

	if detector.model == nil {
		if detector.modelLoader != nil {
			model, err := detector.modelLoader(detector.modelPath, detector.threads)
			if err != nil {
				return nil, fmt.Errorf("failed to load speech model: %w", err)
			}
			detector.model = model
		} else {
			detector.model = NewEnergyModel()
		}
	}

	return detector, nil
}

// Start resumes frame evaluation. Idempotent.
func (d *Detector) Start() {
	if d == nil {
		return
	}

	d.enabled.Store(true)
}

// Pause stops frame evaluation and discards any partially accumulated
// utterance so resuming cannot emit a spurious trigger. Idempotent.
func (d *Detector) Pause() {
	if d == nil {
		return
	}

	if !d.enabled.CompareAndSwap(true, false) {
		return
	}

	d.mu.Lock()
	d.resetLocked()
	d.mu.Unlock()
	d.speaking.Store(false)
}

// SetCallbacks replaces the speech callbacks. Intended for hosts that build
// the detector before the callback targets exist.
func (d *Detector) SetCallbacks(onSpeechStart func(), onSpeechEnd func(utterance []byte)) {
	if d == nil {
		return
	}

	d.mu.Lock()
	d.onSpeechStart = onSpeechStart
	d.onSpeechEnd = onSpeechEnd
	d.mu.Unlock()
}

// IsEnabled reports whether frames are currently evaluated.
func (d *Detector) IsEnabled() bool { return d != nil && d.enabled.Load() }

// IsSpeaking reports whether the detector currently judges the user to be
// mid-utterance. Observability only, not used for control flow.
func (d *Detector) IsSpeaking() bool { return d != nil && d.speaking.Load() }

// Process feeds captured PCM16 bytes into the detector. Chunks do not need
// to align to frame boundaries. Dropped entirely while paused.
func (d *Detector) Process(audio []byte) {
	if d == nil || !d.enabled.Load() {
		return
	}

	frameBytes := d.frameSamples * 2

	d.mu.Lock()
	d.pending = append(d.pending, audio...)
	var emitStart bool
	var emitEnd []byte
	for len(d.pending) >= frameBytes {
		frame := make([]byte, frameBytes)
		copy(frame, d.pending[:frameBytes])
		d.pending = d.pending[frameBytes:]

		started, ended := d.evaluateLocked(frame)
		emitStart = emitStart || started
		if ended != nil {
			emitEnd = ended
		}

		if !d.enabled.Load() {
			break
		}
	}
	onSpeechStart := d.onSpeechStart
	onSpeechEnd := d.onSpeechEnd
	d.mu.Unlock()

	if emitStart && onSpeechStart != nil {
		onSpeechStart()
	}
	if emitEnd != nil && onSpeechEnd != nil {
		onSpeechEnd(emitEnd)
	}
}

func (d *Detector) evaluateLocked(frame []byte) (speechStarted bool, utterance []byte) {
	probability, err := d.model.Predict(bytesToSamples(frame))
	if err != nil {
		// Scoring failures skip the frame; a persistently broken model
		// surfaces as a load error at construction, not here.
		log.Printf("speech model failed to score frame: %v", err)
		return false, nil
	}

	if !d.inSpeech {
		if probability >= d.positiveSpeechThreshold {
			d.inSpeech = true
			d.positiveFrames = 1
			d.redemption = 0
			d.utterance = append(d.utterance[:0:0], d.preSpeech...)
			d.utterance = append(d.utterance, frame)
			d.preSpeech = nil
			d.speaking.Store(true)
			return true, nil
		}

		d.preSpeech = append(d.preSpeech, frame)
		if len(d.preSpeech) > d.preSpeechPadFrames {
			d.preSpeech = d.preSpeech[len(d.preSpeech)-d.preSpeechPadFrames:]
		}
		return false, nil
	}

	d.utterance = append(d.utterance, frame)

	switch {
	case probability >= d.positiveSpeechThreshold:
		d.positiveFrames++
		d.redemption = 0
	case probability < d.negativeSpeechThreshold:
		d.redemption++
		if d.redemption >= d.redemptionFrames {
			captured := d.utterance
			sustained := d.positiveFrames >= d.minSpeechFrames
			d.resetLocked()
			d.speaking.Store(false)
			if sustained {
				return false, flatten(captured)
			}
		}
	}

	return false, nil
}

func (d *Detector) resetLocked() {
	d.inSpeech = false
	d.positiveFrames = 0
	d.redemption = 0
	d.utterance = nil
	d.preSpeech = nil
	d.pending = nil
}

func flatten(frames [][]byte) []byte {
	total := 0
	for _, frame := range frames {
		total += len(frame)
	}

	utterance := make([]byte, 0, total)
	for _, frame := range frames {
		utterance = append(utterance, frame...)
	}
	return utterance
}

func bytesToSamples(frame []byte) []int16 {
	samples := make([]int16, len(frame)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(frame[i*2:]))
	}
	return samples
}
