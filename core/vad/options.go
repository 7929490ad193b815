package vad

type Option func(*Detector)

// WithModel configures the speech probability model directly.
func WithModel(model Model) Option {
	return func(d *Detector) { d.model = model }
}

// WithModelLoader configures a loader for an external model resource. The
// loader receives the configured model path and inference thread count and
// runs once during [New]; engines without multithreaded inference should be
// given a thread count of 1.
func WithModelLoader(loader func(path string, threads int) (Model, error)) Option {
	return func(d *Detector) { d.modelLoader = loader }
}

func WithModelPath(path string) Option {
	return func(d *Detector) { d.modelPath = path }
}

func WithThreads(threads int) Option {
	return func(d *Detector) {
		if threads > 0 {
			d.threads = threads
		}
	}
}

// WithPositiveSpeechThreshold sets the probability at or above which a frame
// counts as speech.
func WithPositiveSpeechThreshold(threshold float64) Option {
	return func(d *Detector) { d.positiveSpeechThreshold = threshold }
}

// WithNegativeSpeechThreshold sets the probability below which a frame
// counts toward ending the utterance.
func WithNegativeSpeechThreshold(threshold float64) Option {
	return func(d *Detector) { d.negativeSpeechThreshold = threshold }
}

// WithMinSpeechFrames sets how many positive frames an utterance must
// accumulate before it is delivered instead of discarded as a transient.
func WithMinSpeechFrames(frames int) Option {
	return func(d *Detector) {
		if frames > 0 {
			d.minSpeechFrames = frames
		}
	}
}

func WithPreSpeechPadFrames(frames int) Option {
	return func(d *Detector) {
		if frames >= 0 {
			d.preSpeechPadFrames = frames
		}
	}
}

func WithRedemptionFrames(frames int) Option {
	return func(d *Detector) {
		if frames > 0 {
			d.redemptionFrames = frames
		}
	}
}

func WithFrameSamples(samples int) Option {
	return func(d *Detector) {
		if samples > 0 {
			d.frameSamples = samples
		}
	}
}

func WithSpeechStartCallback(callback func()) Option {
	return func(d *Detector) { d.onSpeechStart = callback }
}

func WithSpeechEndCallback(callback func(utterance []byte)) Option {
	return func(d *Detector) { d.onSpeechEnd = callback }
}
