package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/voicylabs/voicy-core/core/audio"
	"github.com/voicylabs/voicy-core/core/backend"
	"github.com/voicylabs/voicy-core/core/events"
)

// ErrTurnInFlight is returned when a submission arrives while another turn
// is anywhere between submission and end of playback. The new input is
// dropped, not queued.
var ErrTurnInFlight = errors.New("a turn is already in flight")

// Fallback strings shown to the user when the backend gives us nothing
// better to say.
const (
	rateLimitedMessage  = "Too many requests. Please try again later."
	genericErrorMessage = "An error occurred."
)

type turnPhase int

const (
	phaseIdle turnPhase = iota
	phaseSubmitting
	phaseAwaitingResponse
	phasePlaying
)

func (p turnPhase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseSubmitting:
		return "submitting"
	case phaseAwaitingResponse:
		return "awaiting-response"
	case phasePlaying:
		return "playing"
	}
	return fmt.Sprintf("unknown(%d)", int(p))
}

// turnState serializes the turn lifecycle. Exactly one turn can hold a
// non-idle phase at a time; begin is the single admission point.
type turnState struct {
	mu     sync.Mutex
	phase  turnPhase
	turnID string
}

// begin admits a new turn if the controller is idle. It returns the assigned
// turn id, or false when another turn is in flight.
func (s *turnState) begin() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != phaseIdle {
		return "", false
	}

	s.phase = phaseSubmitting
	s.turnID = uuid.NewString()
	return s.turnID, true
}

// advance moves the turn from one phase to the next. It fails when the
// current phase is not the expected one, which happens when the turn was
// concurrently terminated.
func (s *turnState) advance(from, to turnPhase) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != from {
		return false
	}

	s.phase = to
	if to == phaseIdle {
		s.turnID = ""
	}
	return true
}

// finish returns the controller to idle unconditionally.
func (s *turnState) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = phaseIdle
	s.turnID = ""
}

func (s *turnState) Phase() turnPhase {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phase
}

// turnInput is one submission payload. Exactly one of text or utterance is
// set; utterance submissions carry raw PCM that still needs encoding.
type turnInput struct {
	text      string
	utterance []byte
}

func (i turnInput) voice() bool { return len(i.utterance) > 0 }

// submitTurn admits the input and runs the turn asynchronously. A rejection
// is reported through the event stream as well as the returned error so
// callers that ignore errors still observe it.
func (c *Client) submitTurn(ctx context.Context, input turnInput) error {
	turnID, ok := c.turns.begin()
	if !ok {
		c.emit(events.NewTurnRejected())
		return ErrTurnInFlight
	}

	c.emit(events.NewTurnSubmitted(turnID, input.voice()))
	go c.runTurn(ctx, turnID, input)
	return nil
}

func (c *Client) runTurn(ctx context.Context, turnID string, input turnInput) {
	ctx, span := tracer.Start(ctx, "conversation turn")
	defer span.End()
	span.SetAttributes(
		attribute.String("turn.id", turnID),
		attribute.Bool("turn.voice_input", input.voice()),
	)

	request := backend.Request{History: c.transcript.Snapshot()}
	if input.voice() {
		encoded, err := audio.EncodeWAV(input.utterance, c.audioInput.EncodingInfo())
		if err != nil {
			// Nothing worth submitting was captured. Not a user-facing
			// failure; just return to idle.
			log.Printf("Dropping utterance: %v", err)
			span.RecordError(err)
			c.turns.finish()
			c.emit(events.NewTurnFailed(turnID))
			return
		}
		request.Audio = encoded
		request.AudioContentType = audio.MIMETypeWAV
	} else {
		request.Text = input.text
	}

	if !c.turns.advance(phaseSubmitting, phaseAwaitingResponse) {
		return
	}

	submittedAt := time.Now()
	response, err := c.backend.Submit(ctx, request)
	latency := time.Since(submittedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.failTurn(turnID, err)
		return
	}

	if !c.turns.advance(phaseAwaitingResponse, phasePlaying) {
		response.Body.Close()
		return
	}

	// Capture is suppressed before the first audio chunk can reach the
	// speakers, so the segmenter never hears the assistant.
	c.micGate.Suppress()

	c.transcript.appendExchange(
		backend.Message{Role: backend.RoleUser, Content: response.Transcript},
		backend.Message{Role: backend.RoleAssistant, Content: response.Reply, Latency: latency.Milliseconds()},
	)
	c.emit(events.NewTurnCompleted(turnID, response.Transcript, response.Reply, latency))

	c.player.Play(response.Body)
}

// failTurn terminates the turn without transcript changes. The controller
// returns to idle before the notification goes out, so the user can retry
// immediately.
func (c *Client) failTurn(turnID string, err error) {
	c.turns.finish()
	c.emit(events.NewTurnFailed(turnID))

	reason := events.ReasonSubmissionFailed
	message := genericErrorMessage

	var submissionErr *backend.SubmissionError
	switch {
	case errors.Is(err, backend.ErrRateLimited):
		reason = events.ReasonRateLimited
		message = rateLimitedMessage
	case errors.As(err, &submissionErr):
		if submissionErr.Message != "" {
			message = submissionErr.Message
		}
	}

	c.emit(events.NewNotification(reason, message))
}

// onPlaybackStarted and onPlaybackEnded bridge the player into the turn
// lifecycle. Playback ending, completed or stopped, is what returns the
// controller to idle and lifts the capture suppression.
func (c *Client) onPlaybackStarted(sessionID string) {
	c.emit(events.NewPlaybackStarted(sessionID))
}

func (c *Client) onPlaybackEnded(sessionID string, completed bool) {
	c.turns.advance(phasePlaying, phaseIdle)
	c.micGate.Release()
	c.emit(events.NewPlaybackEnded(sessionID, completed))
}
