package conversation

import "sync/atomic"

// speechSegmenter is the facade normalizing segmentation engines behind one
// nil-safe surface and tracking their observable status flags.
type speechSegmenter struct {
	client SpeechSegmenter

	loading atomic.Bool
	errored atomic.Bool
}

func newSpeechSegmenter(client SpeechSegmenter) *speechSegmenter {
	segmenter := &speechSegmenter{}
	segmenter.set(client)
	return segmenter
}

func (s *speechSegmenter) set(client SpeechSegmenter) {
	if s == nil {
		return
	}

	s.client = client
}

func (s *speechSegmenter) isConfigured() bool {
	return s != nil && s.client != nil && !s.errored.Load()
}

// bind attaches the core's utterance callbacks when the engine supports it.
func (s *speechSegmenter) bind(onSpeechStart func(), onSpeechEnd func(utterance []byte)) {
	if s == nil || s.client == nil {
		return
	}

	if bindable, ok := s.client.(SpeechSegmenterBindable); ok {
		bindable.SetCallbacks(onSpeechStart, onSpeechEnd)
	}
}

func (s *speechSegmenter) Start() {
	if !s.isConfigured() {
		return
	}

	s.client.Start()
}

func (s *speechSegmenter) Pause() {
	if s == nil || s.client == nil {
		return
	}

	s.client.Pause()
}

func (s *speechSegmenter) Process(audio []byte) {
	if !s.isConfigured() {
		return
	}

	s.client.Process(audio)
}

func (s *speechSegmenter) IsSpeaking() bool {
	return s.isConfigured() && s.client.IsSpeaking()
}

func (s *speechSegmenter) IsLoading() bool { return s != nil && s.loading.Load() }

// IsErrored reports a persistent segmentation failure. Voice capture is
// disabled for the rest of the session; typed input stays available.
func (s *speechSegmenter) IsErrored() bool { return s != nil && s.errored.Load() }

func (s *speechSegmenter) setLoading(loading bool) {
	if s != nil {
		s.loading.Store(loading)
	}
}

func (s *speechSegmenter) markErrored() {
	if s != nil {
		s.errored.Store(true)
		s.loading.Store(false)
	}
}
