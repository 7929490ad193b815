package vad

import (
	"sync/atomic"
	"testing"
)

type scriptedModel struct {
	probabilities []float64
	calls         atomic.Int32
}

func (m *scriptedModel) Predict(frame []int16) (float64, error) {
	call := int(m.calls.Add(1)) - 1
	if call >= len(m.probabilities) {
		return 0, nil
	}
	return m.probabilities[call], nil
}

func pcmFrame(value byte, samples int) []byte {
	frame := make([]byte, samples*2)
	for i := range frame {
		frame[i] = value
	}
	return frame
}

func newTestDetector(t *testing.T, model Model, opts ...Option) *Detector {
	t.Helper()

	opts = append([]Option{
		WithModel(model),
		WithFrameSamples(4),
		WithMinSpeechFrames(2),
		WithRedemptionFrames(2),
		WithPreSpeechPadFrames(1),
	}, opts...)

	detector, err := New(opts...)
	if err != nil {
		t.Fatalf("expected detector construction to succeed, got %v", err)
	}
	return detector
}

func TestDetectorEmitsUtteranceAfterSustainedSpeech(t *testing.T) {
	model := &scriptedModel{probabilities: []float64{0.1, 0.9, 0.9, 0.9, 0.1, 0.1}}

	var speechStarts atomic.Int32
	utterances := make(chan []byte, 1)
	detector := newTestDetector(t, model,
		WithSpeechStartCallback(func() { speechStarts.Add(1) }),
		WithSpeechEndCallback(func(utterance []byte) { utterances <- utterance }),
	)
	detector.Start()

	for i := 0; i < 6; i++ {
		detector.Process(pcmFrame(byte(i), 4))
	}

	if got := speechStarts.Load(); got != 1 {
		t.Fatalf("expected exactly one speech start, got %d", got)
	}

	select {
	case utterance := <-utterances:
		// pre-speech pad frame + 3 positive frames + 2 redemption frames
		if got, want := len(utterance), 6*8; got != want {
			t.Fatalf("expected utterance of %d bytes, got %d", want, got)
		}
	default:
		t.Fatalf("expected an utterance to be emitted")
	}
}

func TestDetectorDiscardsTransientBlips(t *testing.T) {
	// A single positive frame followed by silence never reaches
	// MinSpeechFrames so nothing is delivered.
	model := &scriptedModel{probabilities: []float64{0.9, 0.1, 0.1, 0.1}}

	var utterances atomic.Int32
	detector := newTestDetector(t, model,
		WithSpeechEndCallback(func([]byte) { utterances.Add(1) }),
	)
	detector.Start()

	for i := 0; i < 4; i++ {
		detector.Process(pcmFrame(0x00, 4))
	}

	if got := utterances.Load(); got != 0 {
		t.Fatalf("expected transient to be discarded, got %d utterances", got)
	}
	if detector.IsSpeaking() {
		t.Fatalf("expected speaking flag to clear after transient")
	}
}

func TestDetectorPauseStopsEvaluationImmediately(t *testing.T) {
	model := &scriptedModel{probabilities: []float64{0.9, 0.9, 0.9, 0.9}}

	var speechStarts atomic.Int32
	detector := newTestDetector(t, model,
		WithSpeechStartCallback(func() { speechStarts.Add(1) }),
	)

	// Never started: frames are dropped without evaluation.
	detector.Process(pcmFrame(0x00, 4))
	if got := model.calls.Load(); got != 0 {
		t.Fatalf("expected no model calls before Start, got %d", got)
	}

	detector.Start()
	detector.Process(pcmFrame(0x00, 4))
	if got := speechStarts.Load(); got != 1 {
		t.Fatalf("expected speech start after enabling, got %d", got)
	}

	detector.Pause()
	callsAtPause := model.calls.Load()
	detector.Process(pcmFrame(0x00, 4))
	if got := model.calls.Load(); got != callsAtPause {
		t.Fatalf("expected no evaluation while paused, got %d extra calls", got-callsAtPause)
	}
	if detector.IsSpeaking() {
		t.Fatalf("expected pause to clear the speaking flag")
	}
}

func TestDetectorPauseDiscardsPartialUtterance(t *testing.T) {
	model := &scriptedModel{probabilities: []float64{0.9, 0.9, 0.1, 0.1, 0.1, 0.1}}

	var utterances atomic.Int32
	detector := newTestDetector(t, model,
		WithSpeechEndCallback(func([]byte) { utterances.Add(1) }),
	)
	detector.Start()

	detector.Process(pcmFrame(0x00, 4))
	detector.Process(pcmFrame(0x00, 4))
	detector.Pause()
	detector.Start()

	for i := 0; i < 4; i++ {
		detector.Process(pcmFrame(0x00, 4))
	}

	if got := utterances.Load(); got != 0 {
		t.Fatalf("expected paused utterance to be discarded, got %d utterances", got)
	}
}

func TestDetectorHandlesUnalignedChunks(t *testing.T) {
	model := &scriptedModel{probabilities: []float64{0.9, 0.9, 0.9, 0.1, 0.1}}

	utterances := make(chan []byte, 1)
	detector := newTestDetector(t, model,
		WithSpeechEndCallback(func(utterance []byte) { utterances <- utterance }),
	)
	detector.Start()

	// 5 frames of 8 bytes delivered as uneven chunks.
	stream := make([]byte, 5*8)
	detector.Process(stream[:3])
	detector.Process(stream[3:17])
	detector.Process(stream[17:])

	select {
	case <-utterances:
	default:
		t.Fatalf("expected utterance despite unaligned chunk delivery")
	}
}

func TestEnergyModelSeparatesSilenceFromSpeech(t *testing.T) {
	model := NewEnergyModel()

	silence := make([]int16, 512)
	if probability, _ := model.Predict(silence); probability != 0 {
		t.Fatalf("expected zero probability for silence, got %f", probability)
	}

	loud := make([]int16, 512)
	for i := range loud {
		loud[i] = 8000
	}
	probability, err := model.Predict(loud)
	if err != nil {
		t.Fatalf("expected prediction to succeed, got %v", err)
	}
	if probability < DefaultPositiveSpeechThreshold {
		t.Fatalf("expected loud frame to score above %f, got %f", DefaultPositiveSpeechThreshold, probability)
	}
}

func TestNewSurfacesModelLoadFailure(t *testing.T) {
	_, err := New(
		WithModelPath("/nonexistent/model.onnx"),
		WithModelLoader(func(path string, threads int) (Model, error) {
			return nil, errTestLoad
		}),
	)
	if err == nil {
		t.Fatalf("expected model load failure to surface from New")
	}
}

var errTestLoad = &loadError{}

type loadError struct{}

func (*loadError) Error() string { return "load failed" }
