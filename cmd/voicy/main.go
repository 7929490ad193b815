package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	conversation "github.com/voicylabs/voicy-core/core"
	"github.com/voicylabs/voicy-core/core/audio/miniaudio"
	"github.com/voicylabs/voicy-core/core/audio/portaudio"
	"github.com/voicylabs/voicy-core/core/events"
)

func main() {
	config, err := LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration", "error", err)
	}

	var (
		audioInput  conversation.AudioInput
		audioOutput conversation.AudioOutput
		closeAudio  func()
	)

	switch config.Device {
	case "portaudio":
		device, err := portaudio.NewClient(config.BufferSize)
		if err != nil {
			log.Fatal("Failed to open audio device", "device", config.Device, "error", err)
		}
		audioInput, audioOutput, closeAudio = device, device, device.Close
	default:
		device, err := miniaudio.NewClient()
		if err != nil {
			log.Fatal("Failed to open audio device", "device", config.Device, "error", err)
		}
		audioInput, audioOutput, closeAudio = device, device, device.Close
	}
	defer closeAudio()

	client := conversation.NewClient(
		conversation.WithBackendURL(config.BackendURL),
		conversation.WithAudioInput(audioInput),
		conversation.WithAudioOutput(audioOutput),
		conversation.WithMicEnabled(config.MicEnabled),
	)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	incoming := make(chan events.Event, 64)
	client.Converse(ctx, conversation.WithEventCallback(func(event events.Event) {
		incoming <- event
	}))

	program := tea.NewProgram(initialModel(client, incoming, config.MicEnabled))
	if _, err := program.Run(); err != nil {
		log.Fatal("Conversation UI crashed", "error", err)
	}
}
