package conversation

import (
	"reflect"
	"testing"
)

type captureControlsStub struct {
	calls []string
}

func (c *captureControlsStub) Start() { c.calls = append(c.calls, "start") }
func (c *captureControlsStub) Pause() { c.calls = append(c.calls, "pause") }

func TestMicGateSuppressAndReleaseCallControlsOncePerChange(t *testing.T) {
	controls := &captureControlsStub{}
	gate := newMicGate(controls, false)
	gate.sync()

	gate.Suppress()
	gate.Suppress()
	gate.Release()
	gate.Release()

	expected := []string{"start", "pause", "start"}
	if !reflect.DeepEqual(controls.calls, expected) {
		t.Fatalf("expected control calls %v, got %v", expected, controls.calls)
	}
}

func TestMicGateUserDisableDuringSuppressionStaysOffAfterRelease(t *testing.T) {
	controls := &captureControlsStub{}
	gate := newMicGate(controls, false)
	gate.sync()

	gate.Suppress()
	gate.SetUserIntent(false)
	gate.Release()

	expected := []string{"start", "pause"}
	if !reflect.DeepEqual(controls.calls, expected) {
		t.Fatalf("expected control calls %v, got %v", expected, controls.calls)
	}
	if gate.Effective() {
		t.Fatalf("expected capture to stay off after release when user disabled it")
	}
	if gate.UserEnabled() {
		t.Fatalf("expected user intent to remain disabled")
	}
}

func TestMicGateUserEnableDuringSuppressionDefersUntilRelease(t *testing.T) {
	controls := &captureControlsStub{}
	gate := newMicGate(controls, false)
	gate.userEnabled = false
	gate.sync()

	gate.Suppress()
	gate.SetUserIntent(true)
	if gate.Effective() {
		t.Fatalf("expected capture to stay off while suppressed")
	}

	gate.Release()
	if !gate.Effective() {
		t.Fatalf("expected capture to resume after release")
	}

	expected := []string{"pause", "start"}
	if !reflect.DeepEqual(controls.calls, expected) {
		t.Fatalf("expected control calls %v, got %v", expected, controls.calls)
	}
}

func TestMicGateForceResumeIssuesCorrectiveCalls(t *testing.T) {
	controls := &captureControlsStub{}
	gate := newMicGate(controls, true)
	gate.sync()
	gate.sync()

	if expected := []string{"start", "start"}; !reflect.DeepEqual(controls.calls, expected) {
		t.Fatalf("expected corrective start on every sync, got %v", controls.calls)
	}

	controls.calls = nil
	gate.SetUserIntent(false)
	gate.Suppress()
	gate.Release()

	// The release changed nothing effective, but force mode still issues a
	// corrective call matching the current state.
	if expected := []string{"pause", "pause"}; !reflect.DeepEqual(controls.calls, expected) {
		t.Fatalf("expected corrective pause on release while disabled, got %v", controls.calls)
	}
}

func TestMicGateNotifiesOnlyOnActualChanges(t *testing.T) {
	type change struct {
		userEnabled bool
		suppressed  bool
		effective   bool
	}

	gate := newMicGate(&captureControlsStub{}, false)
	changes := []change{}
	gate.setOnChange(func(userEnabled, suppressed, effective bool) {
		changes = append(changes, change{userEnabled, suppressed, effective})
	})

	gate.SetUserIntent(true) // already enabled, no change
	gate.Suppress()
	gate.Suppress() // already suppressed, no change
	gate.SetUserIntent(false)
	gate.Release()

	expected := []change{
		{true, true, false},
		{false, true, false},
		{false, false, false},
	}
	if !reflect.DeepEqual(changes, expected) {
		t.Fatalf("expected changes %v, got %v", expected, changes)
	}
}
