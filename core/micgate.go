package conversation

import "sync"

// captureControls is the slice of the segmenter the gate drives.
type captureControls interface {
	Start()
	Pause()
}

// micGate is the single authority on whether speech capture is active. It
// combines two independent booleans — explicit user intent and a
// system-driven suppression used during playback — into one effective state:
// userEnabled && !suppressed.
//
// The booleans are deliberately never collapsed into a single flag: a user
// who disables the mic while suppressed must stay off after the suppression
// is released.
type micGate struct {
	mu sync.Mutex

	userEnabled bool
	suppressed  bool
	// engaged tracks the effective state last applied to the controls so
	// each actual change produces exactly one Start or Pause call.
	engaged bool

	// forceResume issues a corrective Start after every release even when
	// bookkeeping says nothing changed, for platforms where the segmenter's
	// own resume is unreliable.
	forceResume bool

	controls captureControls
	onChange func(userEnabled, suppressed, effective bool)
}

func newMicGate(controls captureControls, forceResume bool) *micGate {
	return &micGate{
		userEnabled: true,
		controls:    controls,
		forceResume: forceResume,
	}
}

func (g *micGate) setOnChange(onChange func(userEnabled, suppressed, effective bool)) {
	if g == nil {
		return
	}

	g.mu.Lock()
	g.onChange = onChange
	g.mu.Unlock()
}

// SetUserIntent records the explicit user preference and recomputes the
// effective state. While suppressed, the intent is stored but capture does
// not change until the suppression is released.
func (g *micGate) SetUserIntent(enabled bool) {
	if g == nil {
		return
	}

	g.mu.Lock()
	if g.userEnabled == enabled {
		g.mu.Unlock()
		return
	}
	g.userEnabled = enabled
	g.reconcileLocked(false)
	notify := g.notifierLocked()
	g.mu.Unlock()

	notify()
}

// Suppress disables capture for the duration of a playback session.
// Suppression is a single boolean, not a counter: one Suppress is matched by
// one Release.
func (g *micGate) Suppress() {
	if g == nil {
		return
	}

	g.mu.Lock()
	if g.suppressed {
		g.mu.Unlock()
		return
	}
	g.suppressed = true
	g.reconcileLocked(false)
	notify := g.notifierLocked()
	g.mu.Unlock()

	notify()
}

// Release lifts the playback suppression. Capture resumes only if user
// intent is still enabled at this moment.
func (g *micGate) Release() {
	if g == nil {
		return
	}

	g.mu.Lock()
	if !g.suppressed {
		g.mu.Unlock()
		return
	}
	g.suppressed = false
	g.reconcileLocked(g.forceResume)
	notify := g.notifierLocked()
	g.mu.Unlock()

	notify()
}

// Effective reports whether capture should currently be active.
func (g *micGate) Effective() bool {
	if g == nil {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.userEnabled && !g.suppressed
}

func (g *micGate) UserEnabled() bool {
	if g == nil {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.userEnabled
}

func (g *micGate) Suppressed() bool {
	if g == nil {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.suppressed
}

// sync applies the current effective state to the controls. Called once when
// the conversation starts so the segmenter matches the initial intent.
func (g *micGate) sync() {
	if g == nil {
		return
	}

	g.mu.Lock()
	g.reconcileLocked(true)
	g.mu.Unlock()
}

// reconcileLocked applies the effective state to the controls, calling Start
// or Pause exactly once per actual change. When force is set and the state
// is effective, a corrective Start is issued regardless; the controls are
// required to be idempotent so this is safe.
func (g *micGate) reconcileLocked(force bool) {
	effective := g.userEnabled && !g.suppressed

	if effective == g.engaged {
		if force && g.controls != nil {
			if effective {
				g.controls.Start()
			} else {
				g.controls.Pause()
			}
		}
		return
	}

	g.engaged = effective
	if g.controls == nil {
		return
	}

	if effective {
		g.controls.Start()
	} else {
		g.controls.Pause()
	}
}

// notifierLocked captures the state to report and returns a closure safe to
// invoke after the lock is dropped, since observers may call back into the
// gate.
func (g *micGate) notifierLocked() func() {
	onChange := g.onChange
	if onChange == nil {
		return func() {}
	}

	userEnabled := g.userEnabled
	suppressed := g.suppressed
	effective := userEnabled && !suppressed
	return func() { onChange(userEnabled, suppressed, effective) }
}
