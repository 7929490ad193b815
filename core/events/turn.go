package events

import "time"

const (
	// KindTurnSubmitted identifies the start of a request/response cycle.
	KindTurnSubmitted Kind = "turn.submitted"
	// KindTurnCompleted identifies a turn that appended to the transcript.
	KindTurnCompleted Kind = "turn.completed"
	// KindTurnRejected identifies a submission dropped because another turn
	// was already in flight.
	KindTurnRejected Kind = "turn.rejected"
	// KindTurnFailed identifies a turn that ended without transcript changes.
	KindTurnFailed Kind = "turn.failed"
)

// TurnSubmitted marks a turn leaving the idle state.
type TurnSubmitted struct {
	Base
	TurnID string
	// VoiceInput is true for utterance submissions, false for typed input.
	VoiceInput bool
}

func NewTurnSubmitted(turnID string, voiceInput bool) TurnSubmitted {
	return TurnSubmitted{Base: NewBase(KindTurnSubmitted), TurnID: turnID, VoiceInput: voiceInput}
}

// TurnCompleted carries the decoded transcript pair appended for this turn.
type TurnCompleted struct {
	Base
	TurnID     string
	Transcript string
	Reply      string
	Latency    time.Duration
}

func NewTurnCompleted(turnID, transcript, reply string, latency time.Duration) TurnCompleted {
	return TurnCompleted{
		Base:       NewBase(KindTurnCompleted),
		TurnID:     turnID,
		Transcript: transcript,
		Reply:      reply,
		Latency:    latency,
	}
}

// TurnRejected marks a dropped concurrent submission. The in-flight turn is
// unaffected; nothing is queued.
type TurnRejected struct{ Base }

func NewTurnRejected() TurnRejected {
	return TurnRejected{Base: NewBase(KindTurnRejected)}
}

// TurnFailed marks a terminal turn failure. The transcript is unchanged and
// the controller has returned to idle.
type TurnFailed struct {
	Base
	TurnID string
}

func NewTurnFailed(turnID string) TurnFailed {
	return TurnFailed{Base: NewBase(KindTurnFailed), TurnID: turnID}
}
