package conversation

// Capabilities holds platform quirks resolved once at startup so the
// orchestration logic stays platform-agnostic.
type Capabilities struct {
	// UnreliableCaptureResume marks platforms where the segmenter cannot be
	// trusted to resume evaluation when a suppression is released. The mic
	// gate then issues an explicit corrective start after every release
	// instead of relying on its own bookkeeping.
	UnreliableCaptureResume bool
}

// ResolveCapabilities probes the platform once. The defaults assume a
// well-behaved segmenter; callers that know better override with
// [WithCapabilities].
func ResolveCapabilities() Capabilities {
	return Capabilities{}
}
