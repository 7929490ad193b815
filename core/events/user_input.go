package events

const (
	// KindUserSpeechStarted identifies start of detected user speech.
	KindUserSpeechStarted Kind = "user_input.speech_started"
	// KindUserSpeechEnded identifies end of detected user speech.
	KindUserSpeechEnded Kind = "user_input.speech_ended"
	// KindUserUtteranceCaptured identifies a complete captured utterance.
	KindUserUtteranceCaptured Kind = "user_input.utterance_captured"
)

// UserSpeechStarted marks when the segmenter detects speech beginning.
type UserSpeechStarted struct{ Base }

func NewUserSpeechStarted() UserSpeechStarted {
	return UserSpeechStarted{Base: NewBase(KindUserSpeechStarted)}
}

// UserSpeechEnded marks when the segmenter detects speech ending.
type UserSpeechEnded struct{ Base }

func NewUserSpeechEnded() UserSpeechEnded {
	return UserSpeechEnded{Base: NewBase(KindUserSpeechEnded)}
}

// UserUtteranceCaptured carries one bounded utterance buffer. The buffer is
// consumed exactly once by encoding and discarded after submission.
type UserUtteranceCaptured struct {
	Base
	Audio []byte
}

func NewUserUtteranceCaptured(audio []byte) UserUtteranceCaptured {
	return UserUtteranceCaptured{Base: NewBase(KindUserUtteranceCaptured), Audio: audio}
}
