package events

const (
	// KindNotification identifies a transient, user-facing notice.
	KindNotification Kind = "notification"
	// KindMicStateChanged identifies a change to effective capture state.
	KindMicStateChanged Kind = "mic.state_changed"
	// KindSegmenterStateChanged identifies segmenter availability changes.
	KindSegmenterStateChanged Kind = "segmenter.state_changed"
)

type NotificationReason string

const (
	// ReasonRateLimited reports a submission rejected by rate limiting.
	ReasonRateLimited NotificationReason = "rate_limited"
	// ReasonSubmissionFailed reports any other terminal submission failure.
	ReasonSubmissionFailed NotificationReason = "submission_failed"
	// ReasonSegmenterUnavailable reports a persistent speech model failure;
	// typed input remains available.
	ReasonSegmenterUnavailable NotificationReason = "segmenter_unavailable"
)

// Notification is a transient user-facing notice. Every failure kind is
// terminal for its turn; none of them end the session.
type Notification struct {
	Base
	Reason  NotificationReason
	Message string
}

func NewNotification(reason NotificationReason, message string) Notification {
	return Notification{Base: NewBase(KindNotification), Reason: reason, Message: message}
}

// MicStateChanged reports the mic gate's state after any transition. Effective
// is always UserEnabled && !Suppressed.
type MicStateChanged struct {
	Base
	UserEnabled bool
	Suppressed  bool
	Effective   bool
}

func NewMicStateChanged(userEnabled, suppressed, effective bool) MicStateChanged {
	return MicStateChanged{
		Base:        NewBase(KindMicStateChanged),
		UserEnabled: userEnabled,
		Suppressed:  suppressed,
		Effective:   effective,
	}
}

// SegmenterStateChanged reports segmenter lifecycle changes. Errored is
// persistent for the session once set.
type SegmenterStateChanged struct {
	Base
	Loading bool
	Errored bool
}

func NewSegmenterStateChanged(loading, errored bool) SegmenterStateChanged {
	return SegmenterStateChanged{Base: NewBase(KindSegmenterStateChanged), Loading: loading, Errored: errored}
}
