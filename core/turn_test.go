package conversation

import (
	"testing"

	"github.com/voicylabs/voicy-core/core/backend"
	"github.com/voicylabs/voicy-core/core/events"
)

func failingSubmit(err error) func(backend.Request) (*backend.Response, error) {
	return func(backend.Request) (*backend.Response, error) { return nil, err }
}

func awaitNotification(t *testing.T, observed chan events.Event) events.Notification {
	t.Helper()
	event := awaitEvent(t, observed, events.KindNotification)
	notification, ok := event.(events.Notification)
	if !ok {
		t.Fatalf("expected a notification event, got %T", event)
	}
	return notification
}

func TestRateLimitedSubmissionNotifiesDistinctly(t *testing.T) {
	backendStub := &backendStub{submit: failingSubmit(backend.ErrRateLimited)}
	client, observed := newTestClient(t, backendStub, &segmenterStub{})

	if err := client.SubmitText("hello"); err != nil {
		t.Fatalf("expected submission to be admitted, got %v", err)
	}

	awaitEvent(t, observed, events.KindTurnFailed)
	notification := awaitNotification(t, observed)
	if notification.Reason != events.ReasonRateLimited {
		t.Fatalf("expected rate-limited reason, got %q", notification.Reason)
	}
	if notification.Message != "Too many requests. Please try again later." {
		t.Fatalf("unexpected rate-limit message %q", notification.Message)
	}

	if len(client.Transcript()) != 0 {
		t.Fatalf("expected failed turn to leave the transcript unchanged")
	}
	if client.IsBusy() {
		t.Fatalf("expected client to return to idle after the failure")
	}
}

func TestFailedSubmissionSurfacesServerMessage(t *testing.T) {
	backendStub := &backendStub{submit: failingSubmit(&backend.SubmissionError{StatusCode: 500, Message: "model overloaded"})}
	client, observed := newTestClient(t, backendStub, &segmenterStub{})

	if err := client.SubmitText("hello"); err != nil {
		t.Fatalf("expected submission to be admitted, got %v", err)
	}

	notification := awaitNotification(t, observed)
	if notification.Reason != events.ReasonSubmissionFailed {
		t.Fatalf("expected submission-failed reason, got %q", notification.Reason)
	}
	if notification.Message != "model overloaded" {
		t.Fatalf("expected the server message to be surfaced, got %q", notification.Message)
	}
}

func TestFailedSubmissionWithoutBodyFallsBackToGenericMessage(t *testing.T) {
	backendStub := &backendStub{submit: failingSubmit(&backend.SubmissionError{StatusCode: 502})}
	client, observed := newTestClient(t, backendStub, &segmenterStub{})

	if err := client.SubmitText("hello"); err != nil {
		t.Fatalf("expected submission to be admitted, got %v", err)
	}

	if notification := awaitNotification(t, observed); notification.Message != "An error occurred." {
		t.Fatalf("expected the generic fallback message, got %q", notification.Message)
	}
}

func TestFailedTurnAllowsImmediateRetry(t *testing.T) {
	backendStub := &backendStub{submit: failingSubmit(&backend.SubmissionError{StatusCode: 500})}
	client, observed := newTestClient(t, backendStub, &segmenterStub{})

	if err := client.SubmitText("first"); err != nil {
		t.Fatalf("expected submission to be admitted, got %v", err)
	}
	awaitEvent(t, observed, events.KindTurnFailed)

	backendStub.submit = successResponse("first", "retry worked", nil)
	if err := client.SubmitText("again"); err != nil {
		t.Fatalf("expected retry to be admitted after failure, got %v", err)
	}
	awaitEvent(t, observed, events.KindTurnCompleted)

	if transcript := client.Transcript(); len(transcript) != 2 {
		t.Fatalf("expected only the successful turn in the transcript, got %d entries", len(transcript))
	}
}

func TestTurnStateAdvanceRejectsStalePhase(t *testing.T) {
	state := turnState{}

	turnID, ok := state.begin()
	if !ok || turnID == "" {
		t.Fatalf("expected idle controller to admit a turn")
	}
	if _, ok := state.begin(); ok {
		t.Fatalf("expected a second begin to be rejected")
	}

	if !state.advance(phaseSubmitting, phaseAwaitingResponse) {
		t.Fatalf("expected advance from the current phase to succeed")
	}
	if state.advance(phaseSubmitting, phaseAwaitingResponse) {
		t.Fatalf("expected advance from a stale phase to fail")
	}

	state.finish()
	if state.Phase() != phaseIdle {
		t.Fatalf("expected finish to return the controller to idle, got %v", state.Phase())
	}
}
