package conversation

import events "github.com/voicylabs/voicy-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(client *Client, opts ConverseOptions) eventEmitter {
	return func(event events.Event) {
		if opts.onEvent != nil {
			opts.onEvent(event)
		}

		switch typedEvent := event.(type) {
		case events.UserSpeechStarted:
			if opts.onSpeakingStateChanged != nil {
				opts.onSpeakingStateChanged(true)
			}
		case events.UserSpeechEnded:
			if opts.onSpeakingStateChanged != nil {
				opts.onSpeakingStateChanged(false)
			}
		case events.TurnSubmitted:
			if opts.onBusyStateChanged != nil {
				opts.onBusyStateChanged(true)
			}
		case events.TurnCompleted:
			if opts.onTranscriptUpdated != nil {
				opts.onTranscriptUpdated(client.Transcript())
			}
		case events.TurnFailed:
			if opts.onBusyStateChanged != nil {
				opts.onBusyStateChanged(false)
			}
		case events.PlaybackStarted:
			if opts.onPlaybackStateChanged != nil {
				opts.onPlaybackStateChanged(true)
			}
		case events.PlaybackEnded:
			if opts.onPlaybackStateChanged != nil {
				opts.onPlaybackStateChanged(false)
			}
			if opts.onBusyStateChanged != nil {
				opts.onBusyStateChanged(false)
			}
		case events.MicStateChanged:
			if opts.onMicStateChanged != nil {
				opts.onMicStateChanged(typedEvent.Effective)
			}
		case events.SegmenterStateChanged:
			if opts.onSegmenterStateChanged != nil {
				opts.onSegmenterStateChanged(typedEvent.Errored)
			}
		case events.Notification:
			if opts.onNotification != nil {
				opts.onNotification(typedEvent.Reason, typedEvent.Message)
			}
		}
	}
}
